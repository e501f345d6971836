package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/webasset/fetch"
	"github.com/pithecene-io/webasset/iox"
)

// Exit codes for fetch.
const (
	exitSuccess  = 0
	exitError    = 1
	exitNotFound = 2
)

// FetchCommand returns the fetch command.
func FetchCommand() *cli.Command {
	flags := RequestFlags()
	flags = append(flags, CacheFlags()...)
	flags = append(flags,
		&cli.BoolFlag{
			Name:  "meta",
			Usage: "Fetch the sidecar metadata file instead of the asset",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write the asset to a file instead of stdout",
		},
	)

	return &cli.Command{
		Name:      "fetch",
		Usage:     "Fetch one remote asset through the cache pipeline",
		ArgsUsage: "<host/path/to/asset>",
		Flags:     flags,
		Action:    fetchAction,
	}
}

func fetchAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("fetch requires exactly one asset path argument", exitError)
	}
	assetPath := c.Args().First()

	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), exitError)
	}

	ctx, cancel := signalContext()
	defer cancel()

	reader, client, _, err := buildReader(ctx, cfg, c, "fetch")
	if err != nil {
		return cli.Exit(err.Error(), exitError)
	}
	defer iox.DiscardClose(client)

	var data []byte
	if c.Bool("meta") {
		data, err = reader.ReadMeta(ctx, assetPath)
	} else {
		data, err = reader.Read(ctx, assetPath)
	}
	if err != nil {
		if errors.Is(err, fetch.ErrNotFound) {
			return cli.Exit(fmt.Sprintf("not found: %v", err), exitNotFound)
		}
		return cli.Exit(fmt.Sprintf("fetch failed: %v", err), exitError)
	}

	if out := c.String("output"); out != "" {
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return cli.Exit(fmt.Sprintf("write output: %v", err), exitError)
		}
		return nil
	}

	if _, err := os.Stdout.Write(data); err != nil {
		return cli.Exit(fmt.Sprintf("write stdout: %v", err), exitError)
	}
	return nil
}

// signalContext returns a context canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
