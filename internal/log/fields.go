// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRunToken  = "run_token"
	FieldJobID     = "job_id"
	FieldPayloadID = "payload_id"
	FieldTag       = "tag"

	// Process / pipeline fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldStage     = "stage"
	FieldChannel   = "channel"
	FieldAttempt   = "attempt"

	// Path fields
	FieldPath      = "path"
	FieldFinalPath = "final_path"
)
