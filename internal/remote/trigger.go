// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package remote

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
)

// Trigger submits the remote job. Dispatch is deliberately not retried: the
// call returns no job id, so a retry after an ambiguous failure could leave
// two concurrent jobs processing the same payload.
type Trigger struct {
	Jobs     JobAPI
	Log      zerolog.Logger
	Observer Observer
}

// Dispatch submits one job for the run. The correlation token travels in the
// dispatch inputs and surfaces in the job's display title, which is the only
// reliable way the locator can find the instance later.
func (t *Trigger) Dispatch(ctx context.Context, run *JobRun, command string) error {
	options, err := json.Marshal(map[string]string{"command": command})
	if err != nil {
		return fmt.Errorf("%w: encode options: %v", ErrTriggerRejected, err)
	}

	in := DispatchInputs{
		Options:          string(options),
		OutputName:       run.PayloadID,
		CorrelationToken: run.CorrelationToken,
	}
	switch run.Channel {
	case ChannelReleaseAsset:
		in.ReleaseTag = run.ReleaseTag
	case ChannelDirectLink:
		in.UploadURL = run.UploadURL
	default:
		return fmt.Errorf("%w: no upload channel bound", ErrTriggerRejected)
	}

	t.Observer.Report("trigger", "dispatching remote job")
	if err := t.Jobs.Dispatch(ctx, in); err != nil {
		return fmt.Errorf("%w: %v", ErrTriggerRejected, err)
	}

	t.Log.Info().
		Str("run_token", run.CorrelationToken).
		Str("channel", string(run.Channel)).
		Msg("remote job dispatched")
	return nil
}
