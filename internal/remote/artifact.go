// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package remote

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
)

// RetrieveConfig tunes the artifact download retry policy.
type RetrieveConfig struct {
	Attempts  int           // total download attempts before giving up
	BaseDelay time.Duration // first backoff delay, doubled each retry
}

// Retriever downloads a run's output artifact with exponential backoff.
type Retriever struct {
	Jobs     JobAPI
	Cfg      RetrieveConfig
	Log      zerolog.Logger
	Observer Observer
}

// Download fetches the artifact named name for job id into dir and returns
// the path of the encrypted file. Any pre-existing file at the target path
// is deleted before every attempt, so a stale file can never masquerade as a
// fresh download. Exhausting the retry budget returns ErrArtifactUnavailable.
func (r *Retriever) Download(ctx context.Context, id int64, name, dir string) (string, error) {
	target := filepath.Join(dir, name+".gpg")
	r.Observer.Report("download", "retrieving output artifact")

	attempt := 0
	op := func() (string, error) {
		attempt++
		if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
			// Not transient: the path is blocked by something we cannot remove.
			return "", backoff.Permanent(fmt.Errorf("clear stale artifact: %w", err))
		}
		if err := r.Jobs.DownloadArtifact(ctx, id, name, dir); err != nil {
			return "", err
		}
		return target, nil
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = r.Cfg.BaseDelay
	expo.RandomizationFactor = 0
	expo.Multiplier = 2
	expo.MaxInterval = 10 * time.Minute

	path, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(uint(r.Cfg.Attempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			r.Log.Warn().
				Err(err).
				Int("attempt", attempt).
				Dur("retry_in", next).
				Msg("artifact download failed, retrying")
		}),
	)
	if err != nil {
		return "", fmt.Errorf("%w: after %d attempts: %v", ErrArtifactUnavailable, attempt, err)
	}

	r.Log.Info().Str("path", path).Msg("artifact downloaded")
	return path, nil
}
