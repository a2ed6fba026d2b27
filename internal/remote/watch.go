// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package remote

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ManuGH/renc/internal/fsm"
	"github.com/rs/zerolog"
)

// Watch states and events. Dispatching a job does not return its id, so a
// run is first located by correlation token, then watched to a terminal
// state.
type watchState string
type watchEvent string

const (
	stateLocating      watchState = "locating"
	stateWatching      watchState = "watching"
	stateSucceeded     watchState = "succeeded"
	stateFailedRemote  watchState = "failed_remote"
	stateLocateTimeout watchState = "locate_timeout"

	eventFound           watchEvent = "found"
	eventExhausted       watchEvent = "exhausted"
	eventCompletedOK     watchEvent = "completed_ok"
	eventCompletedFailed watchEvent = "completed_failed"
)

func newWatchMachine() (*fsm.Machine[watchState, watchEvent], error) {
	return fsm.New(stateLocating, []fsm.Transition[watchState, watchEvent]{
		{From: stateLocating, Event: eventFound, To: stateWatching},
		{From: stateLocating, Event: eventExhausted, To: stateLocateTimeout},
		{From: stateWatching, Event: eventCompletedOK, To: stateSucceeded},
		{From: stateWatching, Event: eventCompletedFailed, To: stateFailedRemote},
	})
}

// WatchConfig tunes the locate and poll loops.
type WatchConfig struct {
	// LocateAttempts bounds how many run listings are fetched before the
	// locator gives up. Exactly this many ListRuns calls are made on a miss.
	LocateAttempts int
	// LocateInterval is the fixed delay between locate attempts.
	LocateInterval time.Duration
	// PollInterval is the fixed delay between status polls while watching.
	// Watching has no attempt budget: a long job simply polls for a long
	// time, and transient fetch errors never count against anything.
	PollInterval time.Duration
}

// Watcher finds the job instance carrying a run's correlation token and
// tracks it to a terminal state.
type Watcher struct {
	Jobs     JobAPI
	Cfg      WatchConfig
	Log      zerolog.Logger
	Observer Observer

	machine *fsm.Machine[watchState, watchEvent]
}

// Run locates the job for token and watches it until completion. It returns
// the remote job id (bound permanently for the run) and a nil error only
// when the job completed successfully.
func (w *Watcher) Run(ctx context.Context, token string) (int64, error) {
	m, err := newWatchMachine()
	if err != nil {
		return 0, err
	}
	w.machine = m

	id, err := w.locate(ctx, token)
	if err != nil {
		if _, ferr := m.Fire(eventExhausted); ferr != nil {
			w.Log.Error().Err(ferr).Msg("watch machine rejected transition")
		}
		return 0, err
	}
	if _, err := m.Fire(eventFound); err != nil {
		return 0, err
	}

	w.Log.Info().Int64("job_id", id).Msg("remote job located")
	w.Observer.Report("watch", fmt.Sprintf("watching job %d", id))

	if err := w.watch(ctx, id); err != nil {
		if _, ferr := m.Fire(eventCompletedFailed); ferr != nil {
			w.Log.Error().Err(ferr).Msg("watch machine rejected transition")
		}
		return id, err
	}
	if _, err := m.Fire(eventCompletedOK); err != nil {
		return id, err
	}
	return id, nil
}

// locate lists recent job instances up to the attempt budget and picks the
// one whose title contains the token. A listing error consumes an attempt
// like a miss does, keeping the budget an exact upper bound on calls.
func (w *Watcher) locate(ctx context.Context, token string) (int64, error) {
	for attempt := 1; attempt <= w.Cfg.LocateAttempts; attempt++ {
		runs, err := w.Jobs.ListRuns(ctx)
		if err != nil {
			w.Log.Debug().Err(err).Int("attempt", attempt).Msg("run listing failed, will retry")
		} else if id, ok := matchRun(runs, token); ok {
			return id, nil
		}

		if attempt < w.Cfg.LocateAttempts {
			if err := sleepCtx(ctx, w.Cfg.LocateInterval); err != nil {
				return 0, fmt.Errorf("%w: %v", ErrLocateTimeout, err)
			}
		}
	}
	return 0, fmt.Errorf("%w: no run titled with token after %d attempts",
		ErrLocateTimeout, w.Cfg.LocateAttempts)
}

// matchRun returns the id of the run whose title contains the token. Token
// uniqueness makes multiple matches impossible in practice; if it happens
// anyway the lowest id wins so the choice is deterministic.
func matchRun(runs []RunRef, token string) (int64, bool) {
	var matches []int64
	for _, r := range runs {
		if token != "" && containsToken(r.Title, token) {
			matches = append(matches, r.ID)
		}
	}
	if len(matches) == 0 {
		return 0, false
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i] < matches[j] })
	return matches[0], true
}

// watch polls the job at a fixed interval until it completes. Transient
// fetch errors are absorbed: they neither change state nor count toward any
// budget. An upper bound on total watch time is the caller's concern.
func (w *Watcher) watch(ctx context.Context, id int64) error {
	for {
		snap, err := w.Jobs.Status(ctx, id)
		switch {
		case err != nil:
			w.Log.Debug().Err(err).Int64("job_id", id).Msg("status fetch failed, polling continues")
		case snap.Stage == StageCompleted:
			if snap.Outcome == OutcomeSuccess {
				return nil
			}
			return fmt.Errorf("%w: job %d", ErrRemoteJobFailed, id)
		default:
			if snap.StepLabel != "" {
				w.Observer.Report("watch", snap.StepLabel)
			}
		}

		if err := sleepCtx(ctx, w.Cfg.PollInterval); err != nil {
			return fmt.Errorf("%w: %v", ErrRemoteJobFailed, err)
		}
	}
}

// state exposes the machine state for logging and tests.
func (w *Watcher) state() watchState {
	if w.machine == nil {
		return stateLocating
	}
	return w.machine.State()
}

func containsToken(title, token string) bool {
	// Titles are short; a plain substring check mirrors how the backend
	// filters run names.
	return strings.Contains(title, token)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
