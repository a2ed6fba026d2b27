// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package preset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrNoCommand is returned when the user provides no command at all.
var ErrNoCommand = errors.New("no encoding command provided")

// Choose runs the two-step command selection over the given reader/writer:
// pick a preset (or custom) from a numbered list, then confirm or replace the
// chosen command. Returns the final command string.
func Choose(in io.Reader, out io.Writer, presets map[string]Preset) (string, error) {
	ids := sortedIDs(presets)

	nameWidth := 0
	for _, id := range ids {
		if n := len(presets[id].Name); n > nameWidth {
			nameWidth = n
		}
	}

	fmt.Fprintln(out, "Step 1 of 2: choose an encoding command")
	for i, id := range ids {
		p := presets[id]
		fmt.Fprintf(out, "  %2d) %-*s  %s\n", i+1, nameWidth, p.Name, p.Command)
	}
	fmt.Fprintf(out, "  %2d) custom command\n", len(ids)+1)
	fmt.Fprint(out, "> ")

	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return "", ErrNoCommand
	}
	sel, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil || sel < 1 || sel > len(ids)+1 {
		return "", fmt.Errorf("invalid selection %q", strings.TrimSpace(scanner.Text()))
	}

	initial := ""
	if sel <= len(ids) {
		initial = presets[ids[sel-1]].Command
	}

	fmt.Fprintln(out, "Step 2 of 2: confirm the command")
	if initial != "" {
		fmt.Fprintf(out, "  current: %s\n", initial)
		fmt.Fprint(out, "Press enter to accept, or type a replacement: ")
	} else {
		fmt.Fprint(out, "Enter the ffmpeg options to run remotely: ")
	}

	if !scanner.Scan() {
		if initial != "" {
			return initial, nil
		}
		return "", ErrNoCommand
	}
	final := strings.TrimSpace(scanner.Text())
	if final == "" {
		final = initial
	}
	if final == "" {
		return "", ErrNoCommand
	}
	return final, nil
}
