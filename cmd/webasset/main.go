// Package main provides the webasset CLI entrypoint.
//
// Usage:
//
//	webasset <command> [subcommand] [options]
//
// Exit codes for `fetch`:
//   - 0: success
//   - 1: transport or configuration error
//   - 2: asset not found
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/webasset/cli/cmd"
	"github.com/pithecene-io/webasset/types"
)

// Commit is set via ldflags at build time.
var commit = "unknown"

func main() {
	app := &cli.App{
		Name:           "webasset",
		Usage:          "Remote asset retrieval, caching and live reload CLI",
		Version:        fmt.Sprintf("%s (commit: %s)", types.Version, commit),
		ExitErrHandler: exitErrHandler,
		Commands: []*cli.Command{
			cmd.FetchCommand(),
			cmd.CacheCommand(),
			cmd.WatchCommand(),
			cmd.VersionCommand(commit),
		},
	}

	if err := app.Run(os.Args); err != nil {
		// ExitErrHandler already handled the exit for cli.ExitCoder errors.
		// This branch handles unexpected errors that weren't wrapped.
		os.Exit(1)
	}
}

// exitErrHandler handles errors from the CLI, preserving exit codes from
// cli.Exit() so that fetch outcomes map onto stable process exit codes.
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}

	// Check for ExitCoder (from cli.Exit), handles wrapped errors
	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()

		// Only print if there's a real message (not just "exit status N")
		// cli.Exit("", N).Error() returns "exit status N", so skip those
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(code)
	}

	// Unexpected error - print and exit with code 1
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
