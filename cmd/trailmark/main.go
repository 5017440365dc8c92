// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/tomtom215/trailmark/internal/config"
	"github.com/tomtom215/trailmark/internal/logging"
)

// errUsage marks command line mistakes; main exits with status 2 for them.
var errUsage = errors.New("usage error")

// command is one trailmark subcommand.
type command struct {
	name        string
	description string
	run         func(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error
}

func commands() map[string]*command {
	return map[string]*command{
		"report": {
			name:        "report",
			description: "Aggregate an events file once and print or save the result",
			run:         runReport,
		},
		"serve": {
			name:        "serve",
			description: "Run cache sweepers and the scheduled rollup until interrupted",
			run:         runServe,
		},
	}
}

func main() {
	err := execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case err == nil:
	case errors.Is(err, flag.ErrHelp):
	case errors.Is(err, errUsage):
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	default:
		logging.Err(err).Msg("trailmark failed")
		os.Exit(1)
	}
}

// execute dispatches to a subcommand after loading configuration and
// initializing logging.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cmds := commands()
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		usage(stderr, cmds)
		if len(args) == 0 {
			return fmt.Errorf("%w: missing command", errUsage)
		}
		return nil
	}

	cmd, ok := cmds[args[0]]
	if !ok {
		usage(stderr, cmds)
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logging.Init(cfg.LoggingSettings())

	return cmd.run(ctx, cfg, args[1:], stdout)
}

func usage(w io.Writer, cmds map[string]*command) {
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(w, "Usage: trailmark <command> [flags]\n\nCommands:\n")
	for _, name := range names {
		fmt.Fprintf(w, "  %-10s %s\n", name, cmds[name].description)
	}
	fmt.Fprintf(w, "\nRun 'trailmark <command> -h' for command flags.\n")
}
