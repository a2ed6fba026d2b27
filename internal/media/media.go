// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package media holds local video file helpers: size inspection and
// exiftool-based metadata restore.
package media

import (
	"context"
	"fmt"
	"os"

	"github.com/ManuGH/renc/internal/execx"
	"github.com/rs/zerolog"
)

// FileSize returns the file size in bytes.
func FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.Size(), nil
}

// Restorer copies metadata from the original input onto a processed file.
type Restorer struct {
	Runner execx.Runner
	Log    zerolog.Logger
}

// Restore wipes the target's metadata and copies all tags from source,
// overwriting the target in place. Callers treat failure as best-effort.
func (r *Restorer) Restore(ctx context.Context, source, target string) error {
	_, err := r.Runner.Run(ctx, execx.Spec{
		Name: "exiftool",
		Args: []string{
			"-q",
			"-all=",
			"-tagsfromfile", source,
			"-all:all", "-unsafe",
			"-overwrite_original",
			target,
		},
	})
	if err != nil {
		return fmt.Errorf("metadata restore: %w", err)
	}
	r.Log.Debug().Str("path", target).Msg("metadata restored")
	return nil
}
