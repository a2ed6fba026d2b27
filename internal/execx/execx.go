// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package execx wraps external tool execution (gh, git, gpg, exiftool,
// ffmpeg, curl-class HTTP is not handled here). Higher layers depend on the
// Runner interface so tests can substitute fakes.
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// ErrToolMissing is returned when a required external executable is absent
// from PATH. It is raised at first use, not pre-flight-checked.
var ErrToolMissing = errors.New("required external tool not found")

// Spec describes one external command invocation.
type Spec struct {
	Name  string
	Args  []string
	Dir   string    // working directory, empty for inherited
	Stdin io.Reader // optional
}

// Result carries the captured output of a finished command.
type Result struct {
	Stdout []byte
	Stderr []byte
}

// Runner executes external commands.
type Runner interface {
	// Run executes a single command and waits for it to exit.
	Run(ctx context.Context, spec Spec) (Result, error)
	// Pipe connects producer stdout to consumer stdin and waits for both.
	Pipe(ctx context.Context, producer, consumer Spec) error
}

// SystemRunner is the os/exec backed Runner.
type SystemRunner struct {
	Log zerolog.Logger
}

var _ Runner = (*SystemRunner)(nil)

func (r *SystemRunner) Run(ctx context.Context, spec Spec) (Result, error) {
	cmd := exec.CommandContext(ctx, spec.Name, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Stdin = spec.Stdin

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.Log.Debug().
		Str("tool", spec.Name).
		Strs("args", spec.Args).
		Msg("exec")

	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err != nil {
		return res, classify(spec.Name, err, res.Stderr)
	}
	return res, nil
}

func (r *SystemRunner) Pipe(ctx context.Context, producer, consumer Spec) error {
	prod := exec.CommandContext(ctx, producer.Name, producer.Args...)
	prod.Dir = producer.Dir
	cons := exec.CommandContext(ctx, consumer.Name, consumer.Args...)
	cons.Dir = consumer.Dir

	out, err := prod.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%s: stdout pipe: %w", producer.Name, err)
	}
	cons.Stdin = out

	var prodErr, consErr bytes.Buffer
	prod.Stderr = &prodErr
	cons.Stderr = &consErr

	if err := prod.Start(); err != nil {
		return classify(producer.Name, err, nil)
	}
	if err := cons.Start(); err != nil {
		_ = prod.Process.Kill()
		_ = prod.Wait()
		return classify(consumer.Name, err, nil)
	}

	// Consumer first: it observes producer EOF, and a consumer failure
	// explains a producer SIGPIPE exit.
	consWait := cons.Wait()
	prodWait := prod.Wait()

	if consWait != nil {
		return classify(consumer.Name, consWait, consErr.Bytes())
	}
	if prodWait != nil {
		return classify(producer.Name, prodWait, prodErr.Bytes())
	}
	return nil
}

// classify maps exec errors into this package's taxonomy and attaches a
// trimmed stderr excerpt for operator-facing messages.
func classify(name string, err error, stderr []byte) error {
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrToolMissing, name)
	}
	if msg := excerpt(stderr); msg != "" {
		return fmt.Errorf("%s: %w: %s", name, err, msg)
	}
	return fmt.Errorf("%s: %w", name, err)
}

func excerpt(stderr []byte) string {
	s := strings.TrimSpace(string(stderr))
	const limit = 400
	if len(s) > limit {
		s = s[:limit] + "..."
	}
	return s
}
