package watcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"FaceRec/pkg/log"
	"github.com/sirupsen/logrus"
)

const DefaultInterval = 2000 * time.Millisecond

type State int

const (
	Idle State = iota
	Polling
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Polling:
		return "polling"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Snapshotter is the capture side of a tick.
type Snapshotter interface {
	Open(ctx context.Context) error
	Snapshot(ctx context.Context) ([]byte, error)
	Close() error
}

// Controller runs capture, relay and render on a fixed interval.
//
// At most one tick is processed at a time; a tick that fires while another
// is in flight is skipped. Stop does not cancel an in-flight relay call, but
// its result is dropped if polling was stopped or restarted meanwhile.
type Controller struct {
	capture   Snapshotter
	relay     RelayClient
	scene     *Scene
	presenter Presenter
	log       *logrus.Logger

	mu         sync.Mutex
	state      State
	interval   time.Duration
	generation uint64
	cancel     context.CancelFunc
	parent     context.Context

	inFlight atomic.Bool
	skipped  atomic.Uint64
}

func NewController(
	capture Snapshotter,
	relay RelayClient,
	scene *Scene,
	presenter Presenter,
	logger *logrus.Logger,
	interval time.Duration,
) *Controller {
	return &Controller{
		capture:   capture,
		relay:     relay,
		scene:     scene,
		presenter: presenter,
		log:       logger,
		interval:  interval,
		parent:    context.Background(),
	}
}

// Run opens the camera, starts polling and blocks until ctx is done.
// Polling never starts when the camera cannot be opened.
func (c *Controller) Run(ctx context.Context) error {
	if err := c.capture.Open(ctx); err != nil {
		err = fmt.Errorf("failed to get camera feed: %w", err)
		c.presenter.Report(err)
		return err
	}
	defer c.capture.Close()

	c.mu.Lock()
	c.parent = ctx
	interval := c.interval
	c.mu.Unlock()

	if err := c.Start(interval); err != nil {
		return err
	}

	<-ctx.Done()
	c.Stop()
	return nil
}

func (c *Controller) Start(interval time.Duration) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Polling {
		return ErrAlreadyPolling
	}

	loopCtx, cancel := context.WithCancel(c.parent)
	c.state = Polling
	c.interval = interval
	c.generation++
	c.cancel = cancel

	go c.loop(loopCtx, time.NewTicker(interval), c.generation)

	c.log.WithFields(log.Fields{
		"interval_ms": interval.Milliseconds(),
		"generation":  c.generation,
	}).Info("Snapshot polling started")

	return nil
}

func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Idle {
		return
	}

	c.cancel()
	c.cancel = nil
	c.state = Idle

	c.log.WithField("generation", c.generation).Info("Snapshot polling stopped")
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) IsActive() bool {
	return c.State() == Polling
}

func (c *Controller) Interval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interval
}

// Skipped counts ticks dropped because the previous one was still running.
func (c *Controller) Skipped() uint64 {
	return c.skipped.Load()
}

func (c *Controller) loop(ctx context.Context, ticker *time.Ticker, generation uint64) {
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.trigger(generation)
		}
	}
}

// trigger starts a tick unless one is already running. It reports whether
// the tick was started.
func (c *Controller) trigger(generation uint64) bool {
	if !c.inFlight.CompareAndSwap(false, true) {
		c.skipped.Add(1)
		c.log.WithField("generation", generation).Debug("Previous snapshot still in flight, skipping tick")
		return false
	}

	c.mu.Lock()
	parent := c.parent
	c.mu.Unlock()

	go func() {
		defer c.inFlight.Store(false)
		_ = c.tick(parent, generation)
	}()
	return true
}

// tick runs one capture, relay and render cycle. Every failure is reported
// and leaves the scene untouched.
func (c *Controller) tick(ctx context.Context, generation uint64) error {
	snapshot, err := c.capture.Snapshot(ctx)
	if err != nil {
		c.fail(ctx, err, "Snapshot capture failed")
		return err
	}

	result, err := c.relay.Analyze(ctx, snapshot)
	if err == nil {
		err = statusError(result)
	}
	if err != nil {
		c.fail(ctx, err, "Facial analysis failed")
		return err
	}

	if !c.isCurrent(generation) {
		c.log.WithFields(log.Fields{
			"generation": generation,
			"request_id": result.Metadata.RequestID,
		}).Debug("Discarding analysis that arrived after polling stopped")
		return nil
	}

	c.scene.Render(result.FaceDetails)
	c.presenter.Present(c.scene)

	c.log.WithFields(log.Fields{
		"request_id": result.Metadata.RequestID,
		"faces":      len(result.FaceDetails),
	}).Debug("Scene updated")

	return nil
}

// fail reports err to the user unless the tick was cut short by shutdown.
func (c *Controller) fail(ctx context.Context, err error, msg string) {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		c.log.WithField("error", err.Error()).Debug(msg + " during shutdown")
		return
	}

	c.log.WithField("error", err.Error()).Warn(msg)
	c.presenter.Report(err)
}

func (c *Controller) isCurrent(generation uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == Polling && c.generation == generation
}
