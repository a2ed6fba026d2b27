// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package remote

import (
	"context"
	"os"
	"path/filepath"
	"sync"
)

// fakeJobAPI scripts the job-execution backend. Response slices are consumed
// per call; the last element repeats once exhausted.
type fakeJobAPI struct {
	mu sync.Mutex

	listResponses []listResponse
	listCalls     int

	statusResponses []statusResponse
	statusCalls     int
	statusIDs       []int64

	dispatchErr error
	dispatched  []DispatchInputs

	downloadErrs  []error
	downloadCalls int
	// downloadPayload, when non-nil, is written to <dir>/<name>.gpg on a
	// successful download, mimicking gh run download.
	downloadPayload []byte
}

type listResponse struct {
	runs []RunRef
	err  error
}

type statusResponse struct {
	snap Snapshot
	err  error
}

func (f *fakeJobAPI) ListRuns(context.Context) ([]RunRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := pick(f.listResponses, f.listCalls)
	f.listCalls++
	return r.runs, r.err
}

func (f *fakeJobAPI) Status(_ context.Context, id int64) (Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := pick(f.statusResponses, f.statusCalls)
	f.statusCalls++
	f.statusIDs = append(f.statusIDs, id)
	return r.snap, r.err
}

func (f *fakeJobAPI) Dispatch(_ context.Context, in DispatchInputs) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dispatched = append(f.dispatched, in)
	return f.dispatchErr
}

func (f *fakeJobAPI) DownloadArtifact(_ context.Context, _ int64, name, dir string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var err error
	if f.downloadCalls < len(f.downloadErrs) {
		err = f.downloadErrs[f.downloadCalls]
	}
	f.downloadCalls++
	if err != nil {
		return err
	}
	if f.downloadPayload != nil {
		return os.WriteFile(filepath.Join(dir, name+".gpg"), f.downloadPayload, 0o600)
	}
	return nil
}

func pick[T any](responses []T, call int) T {
	var zero T
	if len(responses) == 0 {
		return zero
	}
	if call >= len(responses) {
		return responses[len(responses)-1]
	}
	return responses[call]
}

// recordingReleases records the release/tag call sequence and injects errors
// per operation.
type recordingReleases struct {
	mu    sync.Mutex
	calls []string

	publishErr error
	createErr  error
	uploadErr  error
	delRelErr  error
	delTagErr  error
}

func (r *recordingReleases) record(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *recordingReleases) sequence() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recordingReleases) count(call string) int {
	n := 0
	for _, c := range r.sequence() {
		if c == call {
			n++
		}
	}
	return n
}

func (r *recordingReleases) PublishTag(_ context.Context, _ string) error {
	r.record("publish-tag")
	return r.publishErr
}

func (r *recordingReleases) CreateRelease(_ context.Context, _, _ string) error {
	r.record("create-release")
	return r.createErr
}

func (r *recordingReleases) UploadAsset(_ context.Context, _, _ string) error {
	r.record("upload-asset")
	return r.uploadErr
}

func (r *recordingReleases) DeleteRelease(_ context.Context, _ string) error {
	r.record("delete-release")
	return r.delRelErr
}

func (r *recordingReleases) DeleteRemoteTag(_ context.Context, _ string) error {
	r.record("delete-tag")
	return r.delTagErr
}

func (r *recordingReleases) RollbackTag(_ context.Context, _ string) {
	r.record("rollback-tag")
}

// fakeDirect is a scripted direct-link uploader.
type fakeDirect struct {
	url   string
	err   error
	calls int
}

func (f *fakeDirect) Upload(context.Context, string) (string, error) {
	f.calls++
	return f.url, f.err
}

// fakePrep writes a placeholder encrypted payload.
type fakePrep struct {
	err       error
	recipient string
}

func (f *fakePrep) SanitizeEncrypt(_ context.Context, _, out, recipient string) error {
	f.recipient = recipient
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(out, []byte("ciphertext"), 0o600)
}

// fakeDecrypt returns the requested output path and deletes the input like
// the real gpg wrapper does.
type fakeDecrypt struct {
	err   error
	calls int
}

func (f *fakeDecrypt) Decrypt(_ context.Context, in, out, _ string) (string, error) {
	f.calls++
	_ = os.Remove(in)
	if f.err != nil {
		return "", f.err
	}
	if err := os.WriteFile(out, []byte("plaintext"), 0o600); err != nil {
		return "", err
	}
	return out, nil
}

type fakeMeta struct {
	err   error
	calls int
}

func (f *fakeMeta) Restore(context.Context, string, string) error {
	f.calls++
	return f.err
}

// recordingObserver captures progress reports.
type recordingObserver struct {
	mu      sync.Mutex
	reports []string
}

func (o *recordingObserver) Report(stage, detail string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.reports = append(o.reports, stage+": "+detail)
}
