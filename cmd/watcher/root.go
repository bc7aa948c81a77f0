package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"FaceRec/internal/watcher"
	"FaceRec/pkg/log"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	transportHTTP      = "http"
	transportWebsocket = "ws"
	defaultBodyLimit   = 2 * 1024 * 1024
)

// Options holds the watcher flags. Every flag defaults from a WATCHER_* variable.
type Options struct {
	RelayURL    string
	Source      string
	IntervalMs  int
	BodyLimit   int
	Transport   string
	Timeout     time.Duration
	Interactive bool
}

func newRootCmd() *cobra.Command {
	var opts Options

	cmd := &cobra.Command{
		Use:          "watcher",
		Short:        "Poll a camera and print facial analysis from the relay",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.RelayURL, "relay", "r", envString("WATCHER_RELAY_URL", "http://localhost:8000"), "Relay base URL")
	flags.StringVarP(&opts.Source, "source", "s", envString("WATCHER_SOURCE", ""), "Snapshot URL or directory of still images")
	flags.IntVarP(&opts.IntervalMs, "interval", "i", envInt("WATCHER_INTERVAL_MS", int(watcher.DefaultInterval.Milliseconds())), "Polling interval in milliseconds")
	flags.IntVar(&opts.BodyLimit, "body-limit", envInt("WATCHER_BODY_LIMIT", defaultBodyLimit), "Largest request body the relay accepts, in bytes")
	flags.StringVarP(&opts.Transport, "transport", "t", envString("WATCHER_TRANSPORT", transportHTTP), "Relay transport: http or ws")
	flags.DurationVar(&opts.Timeout, "timeout", envDuration("WATCHER_TIMEOUT", 10*time.Second), "Per-request timeout")
	flags.BoolVar(&opts.Interactive, "interactive", false, "Read start, stop and quit commands from stdin")

	return cmd
}

func (o Options) validate() error {
	if o.Source == "" {
		return fmt.Errorf("--source is required")
	}
	if o.IntervalMs <= 0 {
		return watcher.ErrInvalidInterval
	}
	if o.BodyLimit <= 0 {
		return fmt.Errorf("--body-limit must be positive")
	}
	switch o.Transport {
	case transportHTTP, transportWebsocket:
	default:
		return fmt.Errorf("unknown transport %q", o.Transport)
	}
	return nil
}

func (o Options) interval() time.Duration {
	return time.Duration(o.IntervalMs) * time.Millisecond
}

func newFrameSource(o Options) (watcher.FrameSource, error) {
	if strings.HasPrefix(o.Source, "http://") || strings.HasPrefix(o.Source, "https://") {
		return watcher.NewSnapshotSource(o.Source, o.Timeout), nil
	}

	info, err := os.Stat(o.Source)
	if err != nil {
		return nil, fmt.Errorf("frame source: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("frame source %s is not a directory", o.Source)
	}
	return watcher.NewDirectorySource(o.Source), nil
}

func newRelayClient(o Options) (watcher.RelayClient, error) {
	if o.Transport == transportWebsocket {
		return watcher.NewWebsocketRelayClient(o.RelayURL, o.Timeout)
	}
	return watcher.NewHTTPRelayClient(o.RelayURL, o.Timeout), nil
}

func run(ctx context.Context, opts Options, in io.Reader, out io.Writer) error {
	if err := opts.validate(); err != nil {
		return err
	}

	logger := log.NewLogger()

	source, err := newFrameSource(opts)
	if err != nil {
		return err
	}
	relay, err := newRelayClient(opts)
	if err != nil {
		return err
	}
	defer relay.Close()

	controller := watcher.NewController(
		watcher.NewCapture(source, opts.BodyLimit),
		relay,
		watcher.NewScene(),
		watcher.NewTerminalPresenter(out),
		logger,
		opts.interval(),
	)

	logger.WithFields(log.Fields{
		"relay":       opts.RelayURL,
		"source":      opts.Source,
		"transport":   opts.Transport,
		"interval_ms": opts.IntervalMs,
	}).Info("Watcher starting")

	if !opts.Interactive {
		return controller.Run(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go readCommands(in, out, controller, opts.interval(), cancel, logger)

	return controller.Run(ctx)
}

// readCommands drives the controller from line commands until quit or EOF.
func readCommands(in io.Reader, out io.Writer, c *watcher.Controller, interval time.Duration, quit context.CancelFunc, logger *logrus.Logger) {
	defer quit()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "start":
			if err := c.Start(interval); err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
			}
		case "stop":
			c.Stop()
		case "status":
			fmt.Fprintf(out, "%s (skipped %d)\n", c.State(), c.Skipped())
		case "quit", "exit":
			return
		case "":
		default:
			fmt.Fprintln(out, "commands: start, stop, status, quit")
		}
	}
	if err := scanner.Err(); err != nil {
		logger.WithField("error", err.Error()).Warn("Error reading commands")
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}
