// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// renc offloads video transcoding to a remote CI runner: the input is
// sanitized and encrypted locally, processed remotely, and only the
// encrypted result ever travels back.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ManuGH/renc/internal/backend"
	"github.com/ManuGH/renc/internal/config"
	"github.com/ManuGH/renc/internal/execx"
	rlog "github.com/ManuGH/renc/internal/log"
	"github.com/ManuGH/renc/internal/media"
	"github.com/ManuGH/renc/internal/preset"
	"github.com/ManuGH/renc/internal/remote"
	"github.com/ManuGH/renc/internal/vault"
)

var (
	version   = "v0.3.0"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) > 0 {
		switch args[0] {
		case "config":
			return runConfigCmd(args[1:])
		case "version":
			fmt.Printf("renc %s (commit: %s, built: %s)\n", version, commit, buildDate)
			return 0
		}
	}

	fs := flag.NewFlagSet("renc", flag.ContinueOnError)
	backendName := fs.String("backend", "github", "backend to use: 'local' or 'github'")
	configPath := fs.String("config", "", "path to config file (YAML)")
	presetID := fs.String("preset", "", "preset id to use without prompting")
	verbose := fs.Bool("verbose", false, "debug logging")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: renc [flags] <video-file>")
		fmt.Fprintln(fs.Output(), "       renc config init")
		fmt.Fprintln(fs.Output(), "       renc version")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	videoPath := fs.Arg(0)

	level := "info"
	if *verbose {
		level = "debug"
	}
	rlog.Configure(rlog.Config{Level: level, Console: true})
	logger := rlog.WithComponent("cli")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := os.Stat(videoPath); err != nil {
		logger.Error().Err(err).Str("path", videoPath).Msg("input file not accessible")
		return 1
	}

	cfg, err := config.NewLoader(*configPath).Load()
	if err != nil {
		logger.Error().Err(err).Msg("failed to load configuration")
		return 1
	}
	if !*verbose {
		rlog.Reconfigure(rlog.Config{Level: cfg.LogLevel, Console: true})
	}

	command, err := resolveCommand(cfg, *presetID)
	if err != nil {
		logger.Error().Err(err).Msg("no encoding command selected")
		return 1
	}
	logger.Info().Str("command", command).Msg("encoding command selected")

	b, err := buildBackend(cfg, *backendName)
	if err != nil {
		logger.Error().Err(err).Msg("backend setup failed")
		return 1
	}

	finalPath, err := b.Execute(ctx, videoPath, command)
	if err != nil {
		logger.Error().Msg(failureMessage(err))
		return 1
	}

	logger.Info().Str("final_path", finalPath).Msg("processing complete")
	fmt.Println(finalPath)
	return 0
}

func resolveCommand(cfg config.AppConfig, presetID string) (string, error) {
	presets, err := preset.Load(cfg.PresetsPath)
	if err != nil {
		// A missing preset file is fine unless a specific preset was
		// requested; the chooser falls back to a custom command.
		if !errors.Is(err, os.ErrNotExist) || presetID != "" {
			return "", err
		}
		presets = map[string]preset.Preset{}
	}
	if presetID != "" {
		return preset.ByID(presets, presetID)
	}
	return preset.Choose(os.Stdin, os.Stderr, presets)
}

func buildBackend(cfg config.AppConfig, name string) (backend.Backend, error) {
	runner := &execx.SystemRunner{Log: rlog.WithComponent("exec")}

	switch name {
	case "local":
		return &backend.Local{Runner: runner, Log: rlog.WithComponent("local")}, nil
	case "github":
		if err := cfg.ValidateRemote(); err != nil {
			return nil, err
		}
		client := &remote.GHClient{
			Runner:   runner,
			Repo:     cfg.Repo,
			Workflow: cfg.WorkflowFile,
			Branch:   cfg.DefaultBranch,
			GitDir:   cfg.GitContextDir,
			Log:      rlog.WithComponent("ghcli"),
		}
		return remote.NewPipeline(
			remote.PipelineConfig{
				ActionRecipient: cfg.ActionRecipient,
				UserRecipient:   cfg.UserRecipient,
				SettleDelay:     cfg.SettleDelay,
				Watch: remote.WatchConfig{
					LocateAttempts: cfg.LocateAttempts,
					LocateInterval: cfg.LocateInterval,
					PollInterval:   cfg.PollInterval,
				},
				Retrieve: remote.RetrieveConfig{
					Attempts:  cfg.DownloadAttempts,
					BaseDelay: cfg.DownloadBaseDelay,
				},
				DownloadDir: cfg.DownloadDir,
			},
			remote.Deps{
				Jobs:     client,
				Releases: client,
				Direct: &remote.DirectUploader{
					Endpoint: cfg.DirectUploadURL,
					Log:      rlog.WithComponent("upload"),
					Observer: progressObserver{},
				},
				Preparer: &vault.Vault{Runner: runner, Log: rlog.WithComponent("vault")},
				Decrypt:  &vault.Vault{Runner: runner, Log: rlog.WithComponent("vault")},
				Metadata: &media.Restorer{Runner: runner, Log: rlog.WithComponent("media")},
				Observer: progressObserver{},
				Logger:   rlog.WithComponent("pipeline"),
			},
		), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (choose 'local' or 'github')", name)
	}
}

// progressObserver surfaces pipeline progress on the console log.
type progressObserver struct{}

func (progressObserver) Report(stage, detail string) {
	logger := rlog.WithComponent("progress")
	logger.Info().Str("stage", stage).Msg(detail)
}

// failureMessage maps a taxonomy error to the single terminal message the
// user sees.
func failureMessage(err error) string {
	switch {
	case errors.Is(err, remote.ErrPreparationFailed):
		return "preparation failed: could not sanitize and encrypt the input"
	case errors.Is(err, remote.ErrPayloadTooLarge):
		return "the encrypted payload exceeds the 4 GB upload limit"
	case errors.Is(err, remote.ErrUploadFailed):
		return "payload upload failed"
	case errors.Is(err, remote.ErrTriggerRejected):
		return "the remote job dispatch was rejected"
	case errors.Is(err, remote.ErrLocateTimeout):
		return "the remote job never appeared; it may not have started"
	case errors.Is(err, remote.ErrRemoteJobFailed):
		return "the remote job ran but failed"
	case errors.Is(err, remote.ErrArtifactUnavailable):
		return "the output artifact could not be downloaded"
	case errors.Is(err, remote.ErrDecryptionFailed):
		return "the downloaded artifact could not be decrypted"
	case errors.Is(err, execx.ErrToolMissing):
		return fmt.Sprintf("a required tool is missing: %v", err)
	default:
		return fmt.Sprintf("processing failed: %v", err)
	}
}
