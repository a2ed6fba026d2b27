// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := NewLoader("").Load()
	require.NoError(t, err)

	assert.Equal(t, 24, cfg.LocateAttempts)
	assert.Equal(t, 5*time.Second, cfg.LocateInterval)
	assert.Equal(t, 15*time.Second, cfg.PollInterval)
	assert.Equal(t, 8*time.Second, cfg.SettleDelay)
	assert.Equal(t, 3, cfg.DownloadAttempts)
	assert.Equal(t, "https://temp.sh/upload", cfg.DirectUploadURL)
	assert.Equal(t, "main", cfg.DefaultBranch)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"repo: alice/transcode\nworkflow_file: enc.yml\npoll_interval: 3s\n"), 0o600))

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "alice/transcode", cfg.Repo)
	assert.Equal(t, "enc.yml", cfg.WorkflowFile)
	assert.Equal(t, 3*time.Second, cfg.PollInterval)
	// Untouched keys keep defaults.
	assert.Equal(t, 24, cfg.LocateAttempts)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("repo: alice/transcode\n"), 0o600))

	t.Setenv("RENC_REPO", "bob/encoder")
	t.Setenv("RENC_LOCATE_ATTEMPTS", "7")

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "bob/encoder", cfg.Repo)
	assert.Equal(t, 7, cfg.LocateAttempts)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("repos: typo/value\n"), 0o600))

	_, err := NewLoader(path).Load()
	assert.Error(t, err)
}

func TestValidateRemote(t *testing.T) {
	cfg := Defaults()
	err := cfg.ValidateRemote()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "repo")

	cfg.Repo = "alice/transcode"
	cfg.WorkflowFile = "enc.yml"
	cfg.ActionRecipient = "0xACTION"
	cfg.UserRecipient = "0xUSER"
	assert.NoError(t, cfg.ValidateRemote())

	cfg.Repo = "not-a-slug"
	assert.Error(t, cfg.ValidateRemote())
}

func TestWriteDefaultRefusesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefault(path))

	// The starter file itself must load cleanly.
	_, err := NewLoader(path).Load()
	require.NoError(t, err)

	assert.Error(t, WriteDefault(path))
}
