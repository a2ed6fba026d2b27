// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package remote

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ManuGH/renc/internal/log"
	"github.com/rs/zerolog"
)

// Preparer sanitizes and encrypts the source video into an upload payload.
type Preparer interface {
	SanitizeEncrypt(ctx context.Context, source, out, recipient string) error
}

// Decrypter decrypts a downloaded artifact and removes the encrypted input.
type Decrypter interface {
	Decrypt(ctx context.Context, in, out, recipient string) (string, error)
}

// MetadataRestorer copies metadata from the original onto the result.
type MetadataRestorer interface {
	Restore(ctx context.Context, source, target string) error
}

// PipelineConfig is what the orchestrator itself needs to know; transport
// details (repo, workflow, endpoints) live in the clients.
type PipelineConfig struct {
	ActionRecipient string
	UserRecipient   string
	SettleDelay     time.Duration // wait between dispatch and first locate
	Watch           WatchConfig
	Retrieve        RetrieveConfig
	TempDir         string // staging dir for the encrypted payload
	DownloadDir     string // where the artifact lands; empty means cwd
}

// Deps wires the pipeline's collaborators. Every field except Logger and
// Observer is required.
type Deps struct {
	Jobs     JobAPI
	Releases ReleaseAPI
	Direct   DirectUpload
	Preparer Preparer
	Decrypt  Decrypter
	Metadata MetadataRestorer
	Observer Observer
	Logger   zerolog.Logger
	// FileSize is injectable for tests; defaults to stat.
	FileSize func(path string) (int64, error)
}

// Pipeline sequences one remote transcode run: prepare, upload, trigger,
// locate+watch, download, decrypt, restore. Phases run strictly in order,
// the first failure short-circuits the rest, and cleanup of remote side
// effects runs on every exit path.
type Pipeline struct {
	cfg  PipelineConfig
	deps Deps

	uploader  *ReleaseUploader
	trigger   *Trigger
	watcher   *Watcher
	retriever *Retriever
	cleaner   *Cleaner
}

// NewPipeline builds a pipeline from config and dependencies.
func NewPipeline(cfg PipelineConfig, deps Deps) *Pipeline {
	if deps.Observer == nil {
		deps.Observer = NopObserver{}
	}
	if deps.FileSize == nil {
		deps.FileSize = func(path string) (int64, error) {
			info, err := os.Stat(path)
			if err != nil {
				return 0, err
			}
			return info.Size(), nil
		}
	}
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}

	return &Pipeline{
		cfg:  cfg,
		deps: deps,
		uploader: &ReleaseUploader{
			Releases: deps.Releases,
			Log:      deps.Logger,
			Observer: deps.Observer,
		},
		trigger: &Trigger{
			Jobs:     deps.Jobs,
			Log:      deps.Logger,
			Observer: deps.Observer,
		},
		watcher: &Watcher{
			Jobs:     deps.Jobs,
			Cfg:      cfg.Watch,
			Log:      deps.Logger,
			Observer: deps.Observer,
		},
		retriever: &Retriever{
			Jobs:     deps.Jobs,
			Cfg:      cfg.Retrieve,
			Log:      deps.Logger,
			Observer: deps.Observer,
		},
		cleaner: &Cleaner{
			Releases: deps.Releases,
			Log:      deps.Logger,
		},
	}
}

// Execute runs the full pipeline for one video and returns the path of the
// decrypted result. Every returned error wraps one taxonomy kind from
// errors.go (or execx.ErrToolMissing).
func (p *Pipeline) Execute(ctx context.Context, videoPath, command string) (string, error) {
	run := NewJobRun()
	ctx = log.ContextWithRunToken(ctx, run.CorrelationToken)
	logger := log.WithContext(ctx, p.deps.Logger)
	logger.Info().
		Str("payload_id", run.PayloadID).
		Str("path", videoPath).
		Msg("starting remote transcode run")

	encPath := filepath.Join(p.cfg.TempDir, run.PayloadID+".gpg")

	// Remote side effects and the local encrypted intermediate are released
	// on every exit path, success or failure. Cleanup must still reach the
	// backend when the run context was canceled.
	cleanupCtx := context.WithoutCancel(ctx)
	defer func() {
		if err := os.Remove(encPath); err == nil {
			logger.Debug().Str("path", encPath).Msg("removed encrypted intermediate")
		}
		p.cleaner.Cleanup(cleanupCtx, run)
	}()

	// Phase 1: sanitize + encrypt.
	p.deps.Observer.Report("prepare", "sanitizing and encrypting")
	if err := p.deps.Preparer.SanitizeEncrypt(ctx, videoPath, encPath, p.cfg.ActionRecipient); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPreparationFailed, err)
	}

	// Phase 2: size the payload and upload through exactly one channel.
	size, err := p.deps.FileSize(encPath)
	if err != nil {
		return "", fmt.Errorf("%w: size payload: %v", ErrPreparationFailed, err)
	}
	channel, err := SelectChannel(size)
	if err != nil {
		return "", err
	}
	run.Channel = channel
	logger.Info().
		Int64("size", size).
		Str("channel", string(channel)).
		Msg("upload channel selected")

	switch channel {
	case ChannelReleaseAsset:
		tag, err := p.uploader.Upload(ctx, run, encPath)
		if err != nil {
			return "", err
		}
		run.ReleaseTag = tag
	case ChannelDirectLink:
		url, err := p.deps.Direct.Upload(ctx, encPath)
		if err != nil {
			return "", err
		}
		run.UploadURL = url
	}

	// Phase 3: dispatch.
	if err := p.trigger.Dispatch(ctx, run, command); err != nil {
		return "", err
	}

	// Give the backend a moment to materialize the job instance before the
	// locate budget starts ticking.
	if err := sleepCtx(ctx, p.cfg.SettleDelay); err != nil {
		return "", fmt.Errorf("%w: %v", ErrLocateTimeout, err)
	}

	// Phase 4: locate + watch to terminal state.
	jobID, err := p.watcher.Run(ctx, run.CorrelationToken)
	if err != nil {
		return "", err
	}
	run.RemoteJobID = jobID
	ctx = log.ContextWithJobID(ctx, fmt.Sprintf("%d", jobID))
	logger = log.WithContext(ctx, p.deps.Logger)

	// Phase 5: download the encrypted result.
	downloadDir := p.cfg.DownloadDir
	if downloadDir == "" {
		if downloadDir, err = os.Getwd(); err != nil {
			return "", fmt.Errorf("%w: %v", ErrArtifactUnavailable, err)
		}
	}
	downloaded, err := p.retriever.Download(ctx, jobID, run.PayloadID, downloadDir)
	if err != nil {
		return "", err
	}

	// Decrypt next to the original input, then restore its metadata.
	finalPath := resultPath(videoPath)
	p.deps.Observer.Report("decrypt", "decrypting result")
	out, err := p.deps.Decrypt.Decrypt(ctx, downloaded, finalPath, p.cfg.UserRecipient)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}

	p.deps.Observer.Report("restore", "restoring metadata")
	if err := p.deps.Metadata.Restore(ctx, videoPath, out); err != nil {
		// Best-effort: a result without original metadata is still a result.
		logger.Warn().Err(err).Msg("metadata restore failed")
	}

	logger.Info().Str("final_path", out).Msg("remote transcode run finished")
	return out, nil
}

// resultPath places the decrypted result next to the input as <stem>!<ext>.
func resultPath(videoPath string) string {
	ext := filepath.Ext(videoPath)
	stem := strings.TrimSuffix(filepath.Base(videoPath), ext)
	return filepath.Join(filepath.Dir(videoPath), stem+"!"+ext)
}
