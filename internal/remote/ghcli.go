// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ManuGH/renc/internal/execx"
	"github.com/rs/zerolog"
)

// GHClient drives the GitHub Actions and release surfaces through the gh
// and git executables. It implements JobAPI and ReleaseAPI.
type GHClient struct {
	Runner   execx.Runner
	Repo     string // owner/name slug
	Workflow string // workflow file name
	Branch   string // ref jobs are dispatched on
	GitDir   string // local clone used for tag pushes
	Log      zerolog.Logger
}

var (
	_ JobAPI     = (*GHClient)(nil)
	_ ReleaseAPI = (*GHClient)(nil)
)

const runListLimit = "30"

type runListEntry struct {
	DatabaseID   int64  `json:"databaseId"`
	DisplayTitle string `json:"displayTitle"`
}

func (c *GHClient) ListRuns(ctx context.Context) ([]RunRef, error) {
	res, err := c.Runner.Run(ctx, execx.Spec{
		Name: "gh",
		Args: []string{
			"run", "list",
			"--workflow", c.Workflow,
			"--repo", c.Repo,
			"--limit", runListLimit,
			"--json", "databaseId,displayTitle",
		},
	})
	if err != nil {
		return nil, err
	}

	var entries []runListEntry
	if err := json.Unmarshal(res.Stdout, &entries); err != nil {
		return nil, fmt.Errorf("decode run list: %w", err)
	}
	runs := make([]RunRef, 0, len(entries))
	for _, e := range entries {
		runs = append(runs, RunRef{ID: e.DatabaseID, Title: e.DisplayTitle})
	}
	return runs, nil
}

type runView struct {
	Status     string `json:"status"`
	Conclusion string `json:"conclusion"`
	Jobs       []struct {
		Name   string `json:"name"`
		Status string `json:"status"`
		Steps  []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"steps"`
	} `json:"jobs"`
}

func (c *GHClient) Status(ctx context.Context, id int64) (Snapshot, error) {
	res, err := c.Runner.Run(ctx, execx.Spec{
		Name: "gh",
		Args: []string{
			"run", "view", strconv.FormatInt(id, 10),
			"--repo", c.Repo,
			"--json", "status,conclusion,jobs",
		},
	})
	if err != nil {
		return Snapshot{}, err
	}

	var view runView
	if err := json.Unmarshal(res.Stdout, &view); err != nil {
		return Snapshot{}, fmt.Errorf("decode run view: %w", err)
	}
	return view.snapshot(), nil
}

func (v runView) snapshot() Snapshot {
	snap := Snapshot{Stage: StageQueued, Outcome: OutcomeUnknown}
	switch v.Status {
	case "in_progress":
		snap.Stage = StageRunning
	case "completed":
		snap.Stage = StageCompleted
	}
	switch v.Conclusion {
	case "":
		// still unknown
	case "success":
		snap.Outcome = OutcomeSuccess
	default:
		snap.Outcome = OutcomeFailure
	}
	snap.StepLabel = v.currentStep()
	return snap
}

// currentStep names the first in-progress step, for progress display only.
func (v runView) currentStep() string {
	for _, job := range v.Jobs {
		if job.Status != "in_progress" {
			continue
		}
		for _, step := range job.Steps {
			if step.Status == "in_progress" {
				return job.Name + ": " + step.Name
			}
		}
		return job.Name
	}
	return ""
}

func (c *GHClient) Dispatch(ctx context.Context, in DispatchInputs) error {
	args := []string{
		"workflow", "run", c.Workflow,
		"--repo", c.Repo,
		"--ref", c.Branch,
		"-f", "ffmpeg_options=" + in.Options,
		"-f", "output_filename_base=" + in.OutputName,
		"-f", "run_label=" + in.CorrelationToken,
	}
	switch {
	case in.ReleaseTag != "":
		args = append(args, "-f", "release_tag="+in.ReleaseTag)
	case in.UploadURL != "":
		args = append(args, "-f", "upload_url="+in.UploadURL)
	default:
		return fmt.Errorf("dispatch carries neither release tag nor upload url")
	}

	_, err := c.Runner.Run(ctx, execx.Spec{Name: "gh", Args: args})
	return err
}

func (c *GHClient) DownloadArtifact(ctx context.Context, id int64, name, dir string) error {
	_, err := c.Runner.Run(ctx, execx.Spec{
		Name: "gh",
		Args: []string{
			"run", "download", strconv.FormatInt(id, 10),
			"--repo", c.Repo,
			"--name", name,
			"--dir", dir,
		},
	})
	return err
}

func (c *GHClient) PublishTag(ctx context.Context, tag string) error {
	if _, err := c.Runner.Run(ctx, execx.Spec{
		Name: "git",
		Args: []string{"-C", c.GitDir, "tag", tag},
	}); err != nil {
		return err
	}
	_, err := c.Runner.Run(ctx, execx.Spec{
		Name: "git",
		Args: []string{"-C", c.GitDir, "push", "origin", tag},
	})
	return err
}

func (c *GHClient) CreateRelease(ctx context.Context, tag, title string) error {
	_, err := c.Runner.Run(ctx, execx.Spec{
		Name: "gh",
		Args: []string{
			"release", "create", tag,
			"--repo", c.Repo,
			"--prerelease",
			"--title", title,
		},
	})
	return err
}

func (c *GHClient) UploadAsset(ctx context.Context, tag, path string) error {
	_, err := c.Runner.Run(ctx, execx.Spec{
		Name: "gh",
		Args: []string{
			"release", "upload", tag, path,
			"--repo", c.Repo,
			"--clobber",
		},
	})
	return err
}

func (c *GHClient) DeleteRelease(ctx context.Context, tag string) error {
	_, err := c.Runner.Run(ctx, execx.Spec{
		Name: "gh",
		Args: []string{
			"release", "delete", tag,
			"--repo", c.Repo,
			"--yes",
		},
	})
	return err
}

func (c *GHClient) DeleteRemoteTag(ctx context.Context, tag string) error {
	_, err := c.Runner.Run(ctx, execx.Spec{
		Name: "git",
		Args: []string{"-C", c.GitDir, "push", "--delete", "origin", tag},
	})
	return err
}

// RollbackTag removes a half-published tag after a failed upload. Both
// deletions are best-effort; the tag may never have reached the remote.
func (c *GHClient) RollbackTag(ctx context.Context, tag string) {
	if _, err := c.Runner.Run(ctx, execx.Spec{
		Name: "git",
		Args: []string{"-C", c.GitDir, "tag", "-d", tag},
	}); err != nil {
		c.Log.Debug().Err(err).Str("tag", tag).Msg("local tag rollback failed")
	}
	if _, err := c.Runner.Run(ctx, execx.Spec{
		Name: "git",
		Args: []string{"-C", c.GitDir, "push", "--delete", "origin", tag},
	}); err != nil {
		c.Log.Debug().Err(err).Str("tag", tag).Msg("remote tag rollback failed")
	}
}
