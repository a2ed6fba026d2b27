// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package remote

import "errors"

// Failure taxonomy for a remote run. Every phase error the pipeline returns
// wraps exactly one of these, so callers can map failures to messages and
// exit codes with errors.Is. Transient network blips never appear here; only
// exhaustion of a retry budget does.
var (
	// ErrPreparationFailed is returned when sanitize+encrypt (or sizing the
	// resulting payload) fails before any upload.
	ErrPreparationFailed = errors.New("payload preparation failed")

	// ErrPayloadTooLarge is returned for payloads of 4 GB or more. No upload
	// is attempted.
	ErrPayloadTooLarge = errors.New("payload exceeds the 4 GB upload limit")

	// ErrUploadFailed is returned when the selected upload channel fails.
	// There is no automatic fallback between channels.
	ErrUploadFailed = errors.New("payload upload failed")

	// ErrTriggerRejected is returned when the dispatch call itself errors.
	// Never retried: re-triggering risks duplicate concurrent jobs.
	ErrTriggerRejected = errors.New("job dispatch rejected")

	// ErrLocateTimeout is returned when no job carrying the run's
	// correlation token appeared within the locate attempt budget.
	ErrLocateTimeout = errors.New("remote job not found within locate budget")

	// ErrRemoteJobFailed is returned when the job completed with a failure
	// outcome. Re-running is a caller decision.
	ErrRemoteJobFailed = errors.New("remote job completed with failure")

	// ErrArtifactUnavailable is returned when the output artifact could not
	// be downloaded within the retry budget.
	ErrArtifactUnavailable = errors.New("output artifact unavailable")

	// ErrDecryptionFailed is returned when the downloaded artifact could not
	// be decrypted.
	ErrDecryptionFailed = errors.New("artifact decryption failed")
)
