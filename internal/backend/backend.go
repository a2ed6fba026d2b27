// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package backend defines the execution backends a run can target.
package backend

import "context"

// Backend executes one video processing task and returns the path of the
// produced file.
type Backend interface {
	Execute(ctx context.Context, videoPath, command string) (string, error)
}
