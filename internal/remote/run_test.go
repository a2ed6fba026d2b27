// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package remote

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pipelineFixture struct {
	jobs     *fakeJobAPI
	releases *recordingReleases
	direct   *fakeDirect
	prep     *fakePrep
	decrypt  *fakeDecrypt
	meta     *fakeMeta
	size     int64
	inputDir string
	pipeline *Pipeline
}

// matchFirstTry scripts a backend where the dispatched run shows up on the
// first locate poll and succeeds after two running polls.
func matchFirstTry(jobs *fakeJobAPI) {
	jobs.listResponses = []listResponse{{runs: []RunRef{{ID: 1234, Title: "placeholder"}}}}
	jobs.statusResponses = []statusResponse{
		{snap: Snapshot{Stage: StageRunning}},
		{snap: Snapshot{Stage: StageRunning}},
		{snap: Snapshot{Stage: StageCompleted, Outcome: OutcomeSuccess}},
	}
	jobs.downloadPayload = []byte("encrypted-result")
}

func newFixture(t *testing.T, size int64) *pipelineFixture {
	t.Helper()
	f := &pipelineFixture{
		jobs:     &fakeJobAPI{},
		releases: &recordingReleases{},
		direct:   &fakeDirect{url: "https://temp.sh/dl/xyz"},
		prep:     &fakePrep{},
		decrypt:  &fakeDecrypt{},
		meta:     &fakeMeta{},
		size:     size,
		inputDir: t.TempDir(),
	}
	f.pipeline = NewPipeline(
		PipelineConfig{
			ActionRecipient: "0xACTION",
			UserRecipient:   "0xUSER",
			SettleDelay:     0,
			Watch:           fastWatchConfig(4),
			Retrieve:        RetrieveConfig{Attempts: 3, BaseDelay: time.Millisecond},
			TempDir:         t.TempDir(),
			DownloadDir:     t.TempDir(),
		},
		Deps{
			Jobs:     f.jobs,
			Releases: f.releases,
			Direct:   f.direct,
			Preparer: f.prep,
			Decrypt:  f.decrypt,
			Metadata: f.meta,
			FileSize: func(string) (int64, error) { return f.size, nil },
		},
	)
	return f
}

func (f *pipelineFixture) input(t *testing.T) string {
	t.Helper()
	path := filepath.Join(f.inputDir, "holiday.mp4")
	require.NoError(t, os.WriteFile(path, []byte("raw video"), 0o600))
	return path
}

// bindTitles makes the scripted run listing carry the real correlation token
// once a dispatch recorded it. The fake listing is static, so instead the
// listing titles are rewritten from the dispatch record by this helper.
func (f *pipelineFixture) bindTitles() {
	f.jobs.mu.Lock()
	defer f.jobs.mu.Unlock()
	if len(f.jobs.dispatched) == 0 {
		return
	}
	token := f.jobs.dispatched[0].CorrelationToken
	for i := range f.jobs.listResponses {
		for j := range f.jobs.listResponses[i].runs {
			f.jobs.listResponses[i].runs[j].Title = "Remote transcode " + token
		}
	}
}

func TestExecuteReleaseChannelEndToEnd(t *testing.T) {
	f := newFixture(t, 1_000_000)
	matchFirstTry(f.jobs)

	input := f.input(t)
	// The static listing script can't know the generated token up front;
	// rewrite its titles the moment the dispatch records it.
	wrapped := &dispatchHook{fakeJobAPI: f.jobs, after: f.bindTitles}
	f.pipeline.trigger.Jobs = wrapped
	f.pipeline.watcher.Jobs = wrapped
	f.pipeline.retriever.Jobs = wrapped

	final, err := f.pipeline.Execute(context.Background(), input, "-c:v libx265 -crf 28")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(f.inputDir, "holiday!.mp4"), final)
	assert.FileExists(t, final)

	// Release-asset channel: staged, asset uploaded, then both teardown
	// calls attempted at run end.
	want := []string{"publish-tag", "create-release", "upload-asset", "delete-release", "delete-tag"}
	if diff := cmp.Diff(want, f.releases.sequence()); diff != "" {
		t.Errorf("release call sequence mismatch (-want +got):\n%s", diff)
	}

	// Dispatch carried the tag, not an upload URL, plus the token.
	require.Len(t, f.jobs.dispatched, 1)
	d := f.jobs.dispatched[0]
	assert.NotEmpty(t, d.ReleaseTag)
	assert.Empty(t, d.UploadURL)
	assert.NotEmpty(t, d.CorrelationToken)
	assert.JSONEq(t, `{"command":"-c:v libx265 -crf 28"}`, d.Options)

	assert.Zero(t, f.direct.calls, "direct channel must not be touched")
	assert.Equal(t, 1, f.meta.calls)
	assert.Equal(t, "0xACTION", f.prep.recipient)
}

func TestExecuteTooLargePayloadMakesNoRemoteCalls(t *testing.T) {
	f := newFixture(t, 3_000_000_000_000)

	_, err := f.pipeline.Execute(context.Background(), f.input(t), "-c:v copy")
	require.ErrorIs(t, err, ErrPayloadTooLarge)

	assert.Zero(t, f.jobs.listCalls)
	assert.Zero(t, f.jobs.statusCalls)
	assert.Zero(t, f.jobs.downloadCalls)
	assert.Empty(t, f.jobs.dispatched)
	assert.Zero(t, f.direct.calls)
	assert.Empty(t, f.releases.sequence(), "no remote object may be created")
}

func TestExecuteTriggerRejectedSkipsLocator(t *testing.T) {
	// 3 GB payload: direct-link channel, so no release exists to clean up.
	f := newFixture(t, 3_000_000_000)
	f.jobs.dispatchErr = errors.New("HTTP 422: workflow inputs invalid")

	_, err := f.pipeline.Execute(context.Background(), f.input(t), "-c:v copy")
	require.ErrorIs(t, err, ErrTriggerRejected)

	assert.Equal(t, 1, f.direct.calls)
	assert.Zero(t, f.jobs.listCalls, "locator must never run after a rejected dispatch")
	assert.Empty(t, f.releases.sequence(), "cleanup with no release is a no-op")
}

func TestExecuteCleanupRunsAfterDownloadFailure(t *testing.T) {
	f := newFixture(t, 1_000_000)
	matchFirstTry(f.jobs)
	f.jobs.downloadErrs = []error{errors.New("410"), errors.New("410"), errors.New("410")}

	wrapped := &dispatchHook{fakeJobAPI: f.jobs, after: f.bindTitles}
	f.pipeline.trigger.Jobs = wrapped
	f.pipeline.watcher.Jobs = wrapped
	f.pipeline.retriever.Jobs = wrapped

	_, err := f.pipeline.Execute(context.Background(), f.input(t), "-c:v copy")
	require.ErrorIs(t, err, ErrArtifactUnavailable)

	// Both deletions attempted even though the pipeline died mid-flight.
	assert.Equal(t, 1, f.releases.count("delete-release"))
	assert.Equal(t, 1, f.releases.count("delete-tag"))
	assert.Zero(t, f.decrypt.calls)
}

func TestExecuteCleanupDeletionsAreIndependent(t *testing.T) {
	f := newFixture(t, 1_000_000)
	matchFirstTry(f.jobs)
	f.releases.delRelErr = errors.New("release already gone")

	wrapped := &dispatchHook{fakeJobAPI: f.jobs, after: f.bindTitles}
	f.pipeline.trigger.Jobs = wrapped
	f.pipeline.watcher.Jobs = wrapped
	f.pipeline.retriever.Jobs = wrapped

	final, err := f.pipeline.Execute(context.Background(), f.input(t), "-c:v copy")
	require.NoError(t, err, "cleanup failures must never fail the run")
	assert.FileExists(t, final)
	assert.Equal(t, 1, f.releases.count("delete-tag"), "tag deletion still attempted")
}

func TestExecutePreparationFailureShortCircuits(t *testing.T) {
	f := newFixture(t, 1_000_000)
	f.prep.err = errors.New("exiftool choked")

	_, err := f.pipeline.Execute(context.Background(), f.input(t), "-c:v copy")
	require.ErrorIs(t, err, ErrPreparationFailed)
	assert.Empty(t, f.releases.sequence())
	assert.Empty(t, f.jobs.dispatched)
}

func TestExecuteRemovesEncryptedIntermediate(t *testing.T) {
	f := newFixture(t, 1_000_000)
	matchFirstTry(f.jobs)

	wrapped := &dispatchHook{fakeJobAPI: f.jobs, after: f.bindTitles}
	f.pipeline.trigger.Jobs = wrapped
	f.pipeline.watcher.Jobs = wrapped
	f.pipeline.retriever.Jobs = wrapped

	_, err := f.pipeline.Execute(context.Background(), f.input(t), "-c:v copy")
	require.NoError(t, err)

	entries, err := os.ReadDir(f.pipeline.cfg.TempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "encrypted intermediate must be deleted at run end")
}

func TestResultPath(t *testing.T) {
	assert.Equal(t, filepath.Join("/videos", "clip!.mp4"), resultPath("/videos/clip.mp4"))
	assert.Equal(t, "noext!", resultPath("noext"))
}

// dispatchHook runs a callback after a successful dispatch, letting the
// static listing script learn the generated correlation token.
type dispatchHook struct {
	*fakeJobAPI
	after func()
}

func (h *dispatchHook) Dispatch(ctx context.Context, in DispatchInputs) error {
	err := h.fakeJobAPI.Dispatch(ctx, in)
	if err == nil && h.after != nil {
		h.after()
	}
	return err
}
