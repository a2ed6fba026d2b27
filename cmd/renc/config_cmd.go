// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ManuGH/renc/internal/config"
)

// runConfigCmd handles the `renc config <verb>` subcommand tree.
func runConfigCmd(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: renc config init [-o <path>]")
		return 2
	}

	switch args[0] {
	case "init":
		fs := flag.NewFlagSet("config init", flag.ContinueOnError)
		out := fs.String("o", "renc.yaml", "where to write the starter config")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if err := config.WriteDefault(*out); err != nil {
			fmt.Fprintf(os.Stderr, "config init: %v\n", err)
			return 1
		}
		fmt.Printf("wrote %s\n", *out)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown config command %q\n", args[0])
		return 2
	}
}
