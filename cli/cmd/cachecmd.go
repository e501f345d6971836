package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/webasset/cache"
)

// CacheCommand returns the cache command with its subcommands.
// Both subcommands operate on the disk backend; the s3 backend is a
// shared cache and is managed out of band.
func CacheCommand() *cli.Command {
	flags := []cli.Flag{
		ConfigFlag,
		CacheDirFlag,
		CacheCompressFlag,
	}

	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect and manage the local asset cache",
		Subcommands: []*cli.Command{
			{
				Name:   "path",
				Usage:  "Print the cache root directory",
				Flags:  flags,
				Action: cachePathAction,
			},
			{
				Name:   "clear",
				Usage:  "Remove all cached assets",
				Flags:  flags,
				Action: cacheClearAction,
			},
		},
	}
}

func openDiskCache(c *cli.Context) (*cache.DiskCache, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	dir := c.String("cache-dir")
	if dir == "" {
		dir = cfg.Cache.Dir
	}
	return cache.NewDiskCache(cache.DiskOptions{Dir: dir})
}

func cachePathAction(c *cli.Context) error {
	dc, err := openDiskCache(c)
	if err != nil {
		return cli.Exit(err.Error(), exitError)
	}
	fmt.Fprintln(c.App.Writer, dc.Root())
	return nil
}

func cacheClearAction(c *cli.Context) error {
	dc, err := openDiskCache(c)
	if err != nil {
		return cli.Exit(err.Error(), exitError)
	}
	if err := dc.Clear(); err != nil {
		return cli.Exit(fmt.Sprintf("clear cache: %v", err), exitError)
	}
	fmt.Fprintf(c.App.Writer, "cleared %s\n", dc.Root())
	return nil
}
