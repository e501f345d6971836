package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/webasset/cli/config"
	"github.com/pithecene-io/webasset/cli/tui"
	"github.com/pithecene-io/webasset/ipc"
	"github.com/pithecene-io/webasset/log"
	"github.com/pithecene-io/webasset/metrics"
	"github.com/pithecene-io/webasset/notify"
	redisnotify "github.com/pithecene-io/webasset/notify/redis"
	"github.com/pithecene-io/webasset/notify/webhook"
	"github.com/pithecene-io/webasset/watch"
)

// DefaultDrainInterval is the default event drain cadence.
const DefaultDrainInterval = 200 * time.Millisecond

// WatchCommand returns the watch command.
func WatchCommand() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Watch an asset directory and emit reload events",
		ArgsUsage: "[root]",
		Flags: []cli.Flag{
			ConfigFlag,
			VerboseFlag,
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "Event drain interval",
			},
			&cli.BoolFlag{
				Name:  "frames",
				Usage: "Emit msgpack frames on stdout instead of JSON lines",
			},
			&cli.BoolFlag{
				Name:  "tui",
				Usage: "Show a live reload dashboard",
			},
			&cli.StringFlag{
				Name:  "notify",
				Usage: "Reload notifier: webhook or redis",
			},
			&cli.StringFlag{
				Name:  "notify-url",
				Usage: "Notifier endpoint URL",
			},
			&cli.StringFlag{
				Name:  "notify-channel",
				Usage: "Redis pub/sub channel for the redis notifier",
			},
		},
		Action: watchAction,
	}
}

func watchAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), exitError)
	}

	root := c.Args().First()
	if root == "" {
		root = cfg.Watch.Root
	}
	if root == "" {
		return cli.Exit("watch requires a root directory (argument or watch.root config)", exitError)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return cli.Exit(fmt.Sprintf("resolve root: %v", err), exitError)
	}

	interval := c.Duration("interval")
	if interval == 0 {
		interval = cfg.Watch.Interval.Duration
	}
	if interval == 0 {
		interval = DefaultDrainInterval
	}

	if c.Bool("frames") && c.Bool("tui") {
		return cli.Exit("--frames and --tui are mutually exclusive", exitError)
	}

	logger := log.Nop()
	if c.Bool("verbose") {
		logger = log.NewLogger("watch")
	}

	notifier, err := buildNotifier(cfg, c)
	if err != nil {
		return cli.Exit(err.Error(), exitError)
	}
	if notifier != nil {
		defer func() { _ = notifier.Close() }()
	}

	watcher, err := watch.NewWatcher(logger)
	if err != nil {
		return cli.Exit(fmt.Sprintf("start watcher: %v", err), exitError)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Watch(absRoot); err != nil {
		return cli.Exit(fmt.Sprintf("watch %s: %v", absRoot, err), exitError)
	}

	ctx, cancel := signalContext()
	defer cancel()

	collector := metrics.NewCollector("watch")

	return runWatchLoop(ctx, cancel, c, watchLoopDeps{
		watcher:   watcher,
		root:      absRoot,
		interval:  interval,
		logger:    logger,
		collector: collector,
		notifier:  notifier,
	})
}

// watchLoopDeps bundles the collaborators of the watch loop.
type watchLoopDeps struct {
	watcher   *watch.Watcher
	root      string
	interval  time.Duration
	logger    *log.Logger
	collector *metrics.Collector
	notifier  notify.Notifier
}

func runWatchLoop(ctx context.Context, cancel context.CancelFunc, c *cli.Context, deps watchLoopDeps) error {
	var seq int64

	emitJSON := json.NewEncoder(os.Stdout)
	var frames *ipc.FrameEncoder
	if c.Bool("frames") {
		frames = ipc.NewFrameEncoder(os.Stdout)
	}

	// Set before the bridge goroutine starts in TUI mode.
	var program interface{ Send(msg tea.Msg) }

	reload := func(relativePath string) {
		seq++
		event := notify.NewReloadEvent(deps.root, relativePath, seq)

		switch {
		case frames != nil:
			if err := frames.WriteEvent(event); err != nil {
				deps.logger.Warn("frame write failed", map[string]any{"error": err.Error()})
			}
		case program != nil:
			program.Send(tui.ReloadMsg{Path: relativePath, Seq: seq, Time: time.Now()})
		default:
			if err := emitJSON.Encode(event); err != nil {
				deps.logger.Warn("event write failed", map[string]any{"error": err.Error()})
			}
		}

		if deps.notifier != nil {
			if err := deps.notifier.Publish(ctx, event); err != nil {
				deps.logger.Warn("reload notify failed", map[string]any{
					"path":  relativePath,
					"error": err.Error(),
				})
			}
		}
	}

	bridge := watch.NewBridge(deps.watcher, deps.root, reload, watch.BridgeOptions{
		Logger:  deps.logger,
		Metrics: deps.collector,
	})

	if c.Bool("tui") {
		p := tui.RunWatchTUI(deps.root, deps.collector)
		program = p

		go func() {
			bridge.Run(ctx, deps.interval)
			p.Quit()
		}()

		_, err := p.Run()
		cancel()
		if err != nil {
			return cli.Exit(fmt.Sprintf("tui failed: %v", err), exitError)
		}
		return nil
	}

	bridge.Run(ctx, deps.interval)
	return nil
}

// buildNotifier constructs the configured reload notifier, flags over
// config. Returns nil when no notifier is configured.
func buildNotifier(cfg *config.Config, c *cli.Context) (notify.Notifier, error) {
	kind := firstNonEmpty(c.String("notify"), cfg.Notify.Type)
	if kind == "" {
		return nil, nil
	}

	url := firstNonEmpty(c.String("notify-url"), cfg.Notify.URL)
	retries := 0
	if cfg.Notify.Retries != nil {
		retries = *cfg.Notify.Retries
	}

	switch kind {
	case "webhook":
		return webhook.New(webhook.Config{
			URL:     url,
			Headers: cfg.Notify.Headers,
			Timeout: cfg.Notify.Timeout.Duration,
			Retries: retries,
		})
	case "redis":
		return redisnotify.New(redisnotify.Config{
			URL:     url,
			Channel: firstNonEmpty(c.String("notify-channel"), cfg.Notify.Channel),
			Timeout: cfg.Notify.Timeout.Duration,
			Retries: retries,
		})
	default:
		return nil, fmt.Errorf("unknown notifier %q (expected webhook or redis)", kind)
	}
}
