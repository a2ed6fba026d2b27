// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package remote orchestrates one video transcode run on a remote CI
// backend: upload, dispatch, locate, watch, download, cleanup.
package remote

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Channel is the upload path chosen for a payload. Exactly one channel is
// used per run.
type Channel string

const (
	// ChannelReleaseAsset stages the payload as an asset on a temporary
	// release (payloads under 2 GiB).
	ChannelReleaseAsset Channel = "release-asset"
	// ChannelDirectLink pushes the payload to a generic file host and hands
	// the job a retrieval URL (2 GiB to 4 GB).
	ChannelDirectLink Channel = "direct-link"
)

// Stage is the coarse execution stage of a remote job instance.
type Stage string

const (
	StageQueued    Stage = "queued"
	StageRunning   Stage = "running"
	StageCompleted Stage = "completed"
)

// Outcome is the result of a completed job. Only meaningful once the stage
// is StageCompleted.
type Outcome string

const (
	OutcomeUnknown Outcome = "unknown"
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Snapshot is one point-in-time read of a job's status. Snapshots are never
// mutated, only superseded by the next poll.
type Snapshot struct {
	Stage   Stage
	Outcome Outcome
	// StepLabel is the job's current sub-step, for progress reporting only.
	// An empty label never alters state transitions.
	StepLabel string
}

// RunRef identifies one job instance in a run listing.
type RunRef struct {
	ID    int64
	Title string // display title; carries the correlation token for our runs
}

// DispatchInputs is everything one job dispatch carries.
type DispatchInputs struct {
	Options          string // serialized processing options
	OutputName       string // expected output artifact name
	CorrelationToken string // becomes part of the run's display title
	ReleaseTag       string // exactly one of ReleaseTag / UploadURL is set
	UploadURL        string
}

// JobAPI is the job-execution backend as consumed by this package.
type JobAPI interface {
	// ListRuns returns recent job instances of the configured workflow,
	// newest first. Errors are transient from the caller's perspective.
	ListRuns(ctx context.Context) ([]RunRef, error)
	// Status fetches a status snapshot for one job instance.
	Status(ctx context.Context, id int64) (Snapshot, error)
	// Dispatch submits one job. Nothing is returned synchronously; the
	// created instance must be located via ListRuns.
	Dispatch(ctx context.Context, in DispatchInputs) error
	// DownloadArtifact downloads the named output artifact into dir.
	DownloadArtifact(ctx context.Context, id int64, name, dir string) error
}

// ReleaseAPI is the release/object storage surface used by the
// release-asset channel.
type ReleaseAPI interface {
	PublishTag(ctx context.Context, tag string) error
	CreateRelease(ctx context.Context, tag, title string) error
	UploadAsset(ctx context.Context, tag, path string) error
	DeleteRelease(ctx context.Context, tag string) error
	DeleteRemoteTag(ctx context.Context, tag string) error
	// RollbackTag removes a tag locally and remotely after a failed upload,
	// best effort.
	RollbackTag(ctx context.Context, tag string)
}

// DirectUpload is the direct-link channel.
type DirectUpload interface {
	// Upload pushes the file and returns its retrieval URL.
	Upload(ctx context.Context, path string) (string, error)
}

// Observer receives advisory progress reports. Implementations must not
// influence orchestration.
type Observer interface {
	Report(stage, detail string)
}

// NopObserver discards all reports.
type NopObserver struct{}

func (NopObserver) Report(string, string) {}

// JobRun is the state of one orchestrator invocation. It is created at run
// start, owned by exactly one invocation, and discarded when the run ends;
// nothing persists across runs.
type JobRun struct {
	// CorrelationToken is generated locally before any remote call and
	// embedded in the job's display title. Unique per run, including across
	// machines sharing the backend.
	CorrelationToken string
	// PayloadID names the uploaded artifact and the expected output
	// artifact. Distinct from CorrelationToken.
	PayloadID string

	Channel    Channel
	ReleaseTag string // set only when Channel == ChannelReleaseAsset
	UploadURL  string // set only when Channel == ChannelDirectLink

	// RemoteJobID is bound once by the locator and never changes afterwards.
	RemoteJobID int64
}

// NewJobRun creates a run with fresh identifiers.
func NewJobRun() *JobRun {
	return &JobRun{
		CorrelationToken: "renc-" + uuid.NewString(),
		PayloadID:        shortToken(),
	}
}

// shortToken returns a 16-hex-char token for artifact and tag names.
func shortToken() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:16]
}
