// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package remote

import (
	"context"

	"github.com/rs/zerolog"
)

// Cleaner tears down the temporary remote objects a run created. It runs on
// every exit path. Deletions are best-effort and independent: a failed
// release deletion does not stop the tag deletion, neither failure is
// retried, and nothing here ever escalates to a run failure; the run's
// outcome is already decided by the time cleanup executes.
type Cleaner struct {
	Releases ReleaseAPI
	Log      zerolog.Logger
}

// Cleanup deletes the run's release and tag, if the release-asset channel
// created any. A run that never uploaded, or uploaded via direct link, has
// nothing to tear down.
func (c *Cleaner) Cleanup(ctx context.Context, run *JobRun) {
	if run.ReleaseTag == "" {
		return
	}

	log := c.Log.With().Str("tag", run.ReleaseTag).Logger()
	log.Info().Msg("cleaning up temporary release")

	if err := c.Releases.DeleteRelease(ctx, run.ReleaseTag); err != nil {
		log.Warn().Err(err).Msg("release deletion failed, leftover release remains")
	}
	if err := c.Releases.DeleteRemoteTag(ctx, run.ReleaseTag); err != nil {
		log.Warn().Err(err).Msg("tag deletion failed, leftover tag remains")
	}
}
