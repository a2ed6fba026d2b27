// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package backend

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ManuGH/renc/internal/execx"
	"github.com/rs/zerolog"
)

// Local runs ffmpeg on this machine. No upload, no encryption, no cleanup.
type Local struct {
	Runner execx.Runner
	Log    zerolog.Logger
}

var _ Backend = (*Local)(nil)

// Execute assembles `ffmpeg -i <input> <options> <output>` and runs it,
// writing the result next to the input as <stem>-processed<ext>.
func (l *Local) Execute(ctx context.Context, videoPath, command string) (string, error) {
	ext := filepath.Ext(videoPath)
	stem := strings.TrimSuffix(filepath.Base(videoPath), ext)
	outputPath := filepath.Join(filepath.Dir(videoPath), stem+"-processed"+ext)

	options, err := execx.SplitArgs(command)
	if err != nil {
		return "", fmt.Errorf("parse command options: %w", err)
	}

	args := append([]string{"-i", videoPath}, options...)
	args = append(args, outputPath)

	l.Log.Info().
		Str("path", videoPath).
		Str("final_path", outputPath).
		Msg("running ffmpeg locally")

	if _, err := l.Runner.Run(ctx, execx.Spec{Name: "ffmpeg", Args: args}); err != nil {
		return "", fmt.Errorf("local ffmpeg run: %w", err)
	}
	return outputPath, nil
}
