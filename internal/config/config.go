// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package config loads tool configuration with precedence ENV > file > defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// AppConfig is the resolved configuration for one invocation.
type AppConfig struct {
	// Remote backend identity
	Repo          string `yaml:"repo"`           // owner/name slug
	WorkflowFile  string `yaml:"workflow_file"`  // workflow file name, e.g. transcode.yml
	DefaultBranch string `yaml:"default_branch"` // ref the workflow is dispatched on
	GitContextDir string `yaml:"git_context_dir"`

	// Encryption recipients
	ActionRecipient string `yaml:"action_recipient"` // key the runner can decrypt with
	UserRecipient   string `yaml:"user_recipient"`   // key the result is encrypted to

	// Upload
	DirectUploadURL string `yaml:"direct_upload_url"`

	// Orchestration tuning. Product-tuned defaults, not backend contracts.
	LocateAttempts    int           `yaml:"locate_attempts"`
	LocateInterval    time.Duration `yaml:"locate_interval"`
	PollInterval      time.Duration `yaml:"poll_interval"`
	SettleDelay       time.Duration `yaml:"settle_delay"`
	DownloadAttempts  int           `yaml:"download_attempts"`
	DownloadBaseDelay time.Duration `yaml:"download_base_delay"`

	// Local paths
	PresetsPath string `yaml:"presets_path"`
	DownloadDir string `yaml:"download_dir"` // empty: current working directory

	LogLevel string `yaml:"log_level"`
}

// Defaults returns the built-in configuration values.
func Defaults() AppConfig {
	return AppConfig{
		DefaultBranch:     "main",
		GitContextDir:     ".",
		DirectUploadURL:   "https://temp.sh/upload",
		LocateAttempts:    24,
		LocateInterval:    5 * time.Second,
		PollInterval:      15 * time.Second,
		SettleDelay:       8 * time.Second,
		DownloadAttempts:  3,
		DownloadBaseDelay: 5 * time.Second,
		PresetsPath:       "presets.yaml",
		LogLevel:          "info",
	}
}

// ValidateRemote checks the fields the github backend requires. The local
// backend needs none of them, so this is not part of Load.
func (c AppConfig) ValidateRemote() error {
	var missing []string
	if c.Repo == "" {
		missing = append(missing, "repo")
	}
	if c.WorkflowFile == "" {
		missing = append(missing, "workflow_file")
	}
	if c.ActionRecipient == "" {
		missing = append(missing, "action_recipient")
	}
	if c.UserRecipient == "" {
		missing = append(missing, "user_recipient")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config keys: %s", strings.Join(missing, ", "))
	}
	if c.Repo != "" && !strings.Contains(c.Repo, "/") {
		return fmt.Errorf("repo %q is not an owner/name slug", c.Repo)
	}
	return c.validateTuning()
}

func (c AppConfig) validateTuning() error {
	if c.LocateAttempts < 1 {
		return errors.New("locate_attempts must be at least 1")
	}
	if c.LocateInterval < 0 || c.PollInterval <= 0 {
		return errors.New("locate_interval and poll_interval must be positive")
	}
	if c.DownloadAttempts < 1 {
		return errors.New("download_attempts must be at least 1")
	}
	if c.DownloadBaseDelay < 0 || c.SettleDelay < 0 {
		return errors.New("delays must not be negative")
	}
	return nil
}
