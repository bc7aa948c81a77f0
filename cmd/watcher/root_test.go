package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"FaceRec/internal/watcher"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOptions(t *testing.T) Options {
	return Options{
		RelayURL:   "http://localhost:8000",
		Source:     t.TempDir(),
		IntervalMs: 2000,
		BodyLimit:  defaultBodyLimit,
		Transport:  transportHTTP,
		Timeout:    time.Second,
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Options) {}},
		{name: "websocket transport", mutate: func(o *Options) { o.Transport = transportWebsocket }},
		{name: "missing source", mutate: func(o *Options) { o.Source = "" }, wantErr: true},
		{name: "zero interval", mutate: func(o *Options) { o.IntervalMs = 0 }, wantErr: true},
		{name: "negative body limit", mutate: func(o *Options) { o.BodyLimit = -1 }, wantErr: true},
		{name: "unknown transport", mutate: func(o *Options) { o.Transport = "grpc" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := validOptions(t)
			tt.mutate(&opts)
			if tt.wantErr {
				assert.Error(t, opts.validate())
				return
			}
			assert.NoError(t, opts.validate())
		})
	}
}

func TestNewFrameSourcePicksImplementation(t *testing.T) {
	opts := validOptions(t)

	source, err := newFrameSource(opts)
	require.NoError(t, err)
	assert.IsType(t, &watcher.DirectorySource{}, source)

	opts.Source = "http://camera.local/snapshot.jpg"
	source, err = newFrameSource(opts)
	require.NoError(t, err)
	assert.IsType(t, &watcher.SnapshotSource{}, source)

	opts.Source = t.TempDir() + "/missing"
	_, err = newFrameSource(opts)
	assert.Error(t, err)
}

func TestNewRelayClientPicksTransport(t *testing.T) {
	opts := validOptions(t)

	client, err := newRelayClient(opts)
	require.NoError(t, err)
	assert.IsType(t, &watcher.HTTPRelayClient{}, client)

	opts.Transport = transportWebsocket
	client, err = newRelayClient(opts)
	require.NoError(t, err)
	assert.IsType(t, &watcher.WebsocketRelayClient{}, client)
}

func TestFlagsDefaultFromEnvironment(t *testing.T) {
	t.Setenv("WATCHER_RELAY_URL", "http://relay:9000")
	t.Setenv("WATCHER_INTERVAL_MS", "500")
	t.Setenv("WATCHER_TRANSPORT", "ws")
	t.Setenv("WATCHER_TIMEOUT", "3s")

	flags := newRootCmd().Flags()

	relay, _ := flags.GetString("relay")
	interval, _ := flags.GetInt("interval")
	transport, _ := flags.GetString("transport")
	timeout, _ := flags.GetDuration("timeout")

	assert.Equal(t, "http://relay:9000", relay)
	assert.Equal(t, 500, interval)
	assert.Equal(t, "ws", transport)
	assert.Equal(t, 3*time.Second, timeout)
}

func TestReadCommandsDrivesController(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	controller := watcher.NewController(
		watcher.NewCapture(watcher.NewDirectorySource(t.TempDir()), defaultBodyLimit),
		watcher.NewHTTPRelayClient("http://localhost:0", time.Second),
		watcher.NewScene(),
		watcher.NewTerminalPresenter(io.Discard),
		logger,
		time.Hour,
	)

	ctx, cancel := context.WithCancel(context.Background())
	var out bytes.Buffer
	readCommands(strings.NewReader("start\nstatus\nstart\nstop\nhelp\nquit\nstart\n"), &out, controller, time.Hour, cancel, logger)

	assert.Error(t, ctx.Err())
	assert.Equal(t, watcher.Idle, controller.State())
	assert.Contains(t, out.String(), "polling (skipped 0)")
	assert.Contains(t, out.String(), "poll loop is already running")
	assert.Contains(t, out.String(), "commands: start, stop, status, quit")
}

func TestRunRejectsInvalidOptions(t *testing.T) {
	opts := validOptions(t)
	opts.Source = ""

	err := run(context.Background(), opts, strings.NewReader(""), io.Discard)
	assert.ErrorContains(t, err, "--source is required")
}
