// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader resolves configuration with precedence ENV > file > defaults.
type Loader struct {
	configPath string
}

// NewLoader creates a configuration loader. An empty path skips the file layer.
func NewLoader(configPath string) *Loader {
	return &Loader{configPath: configPath}
}

// Load resolves the effective configuration. The file is decoded strictly:
// unknown keys are errors so typos fail fast instead of silently defaulting.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()

	if l.configPath != "" {
		if err := l.applyFile(&cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	l.applyEnv(&cfg)

	if err := cfg.validateTuning(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (l *Loader) applyFile(cfg *AppConfig) error {
	f, err := os.Open(l.configPath)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck

	data, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return fmt.Errorf("parse %s: %w", l.configPath, err)
	}
	return nil
}

func (l *Loader) applyEnv(cfg *AppConfig) {
	cfg.Repo = ParseString("RENC_REPO", cfg.Repo)
	cfg.WorkflowFile = ParseString("RENC_WORKFLOW_FILE", cfg.WorkflowFile)
	cfg.DefaultBranch = ParseString("RENC_DEFAULT_BRANCH", cfg.DefaultBranch)
	cfg.GitContextDir = ParseString("RENC_GIT_CONTEXT_DIR", cfg.GitContextDir)
	cfg.ActionRecipient = ParseString("RENC_ACTION_RECIPIENT", cfg.ActionRecipient)
	cfg.UserRecipient = ParseString("RENC_USER_RECIPIENT", cfg.UserRecipient)
	cfg.DirectUploadURL = ParseString("RENC_DIRECT_UPLOAD_URL", cfg.DirectUploadURL)
	cfg.LocateAttempts = ParseInt("RENC_LOCATE_ATTEMPTS", cfg.LocateAttempts)
	cfg.LocateInterval = ParseDuration("RENC_LOCATE_INTERVAL", cfg.LocateInterval)
	cfg.PollInterval = ParseDuration("RENC_POLL_INTERVAL", cfg.PollInterval)
	cfg.SettleDelay = ParseDuration("RENC_SETTLE_DELAY", cfg.SettleDelay)
	cfg.DownloadAttempts = ParseInt("RENC_DOWNLOAD_ATTEMPTS", cfg.DownloadAttempts)
	cfg.DownloadBaseDelay = ParseDuration("RENC_DOWNLOAD_BASE_DELAY", cfg.DownloadBaseDelay)
	cfg.PresetsPath = ParseString("RENC_PRESETS_PATH", cfg.PresetsPath)
	cfg.DownloadDir = ParseString("RENC_DOWNLOAD_DIR", cfg.DownloadDir)
	cfg.LogLevel = ParseString("RENC_LOG_LEVEL", cfg.LogLevel)
}
