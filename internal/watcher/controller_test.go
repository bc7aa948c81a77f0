package watcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"FaceRec/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController(capture Snapshotter, relay RelayClient) (*Controller, *Scene, *recordingPresenter) {
	scene := NewScene()
	presenter := &recordingPresenter{}
	return NewController(capture, relay, scene, presenter, quietLogger(), DefaultInterval), scene, presenter
}

func TestControllerStateMachine(t *testing.T) {
	c, _, _ := newTestController(&fakeSnapshotter{}, &fakeRelay{result: okResponse()})

	assert.Equal(t, Idle, c.State())
	assert.ErrorIs(t, c.Start(0), ErrInvalidInterval)
	assert.Equal(t, Idle, c.State())

	require.NoError(t, c.Start(time.Hour))
	assert.True(t, c.IsActive())
	assert.Equal(t, time.Hour, c.Interval())
	assert.ErrorIs(t, c.Start(time.Hour), ErrAlreadyPolling)

	c.Stop()
	assert.Equal(t, Idle, c.State())
	c.Stop()
	assert.Equal(t, "idle", c.State().String())

	require.NoError(t, c.Start(time.Minute))
	assert.Equal(t, "polling", c.State().String())
	c.Stop()
}

func TestControllerTicksOnTimer(t *testing.T) {
	relay := &fakeRelay{result: okResponse(sampleFace())}
	c, scene, _ := newTestController(&fakeSnapshotter{snapshot: []byte("png")}, relay)

	require.NoError(t, c.Start(5*time.Millisecond))
	defer c.Stop()

	require.Eventually(t, func() bool { return scene.Renders() >= 2 }, 2*time.Second, 5*time.Millisecond)
	assert.Len(t, scene.Faces(), 1)
}

func TestControllerSkipsTickWhileOneIsInFlight(t *testing.T) {
	relay := &fakeRelay{
		result:  okResponse(sampleFace()),
		release: make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	c, scene, _ := newTestController(&fakeSnapshotter{snapshot: []byte("png")}, relay)
	require.NoError(t, c.Start(time.Hour))
	defer c.Stop()
	generation := c.generation

	require.True(t, c.trigger(generation))
	<-relay.entered

	assert.False(t, c.trigger(generation))
	assert.False(t, c.trigger(generation))
	assert.Equal(t, uint64(2), c.Skipped())

	close(relay.release)
	require.Eventually(t, func() bool { return !c.inFlight.Load() }, time.Second, time.Millisecond)

	assert.Equal(t, 1, relay.Calls())
	assert.Equal(t, 1, scene.Renders())
}

func TestControllerStatusGateKeepsScene(t *testing.T) {
	relay := &fakeRelay{result: okResponse(sampleFace(), sampleFace())}
	c, scene, presenter := newTestController(&fakeSnapshotter{snapshot: []byte("png")}, relay)
	require.NoError(t, c.Start(time.Hour))
	defer c.Stop()

	require.NoError(t, c.tick(context.Background(), c.generation))
	before := scene.Faces()
	require.Len(t, before, 2)

	relay.result = &entity.AnalysisResponse{
		Metadata: entity.Metadata{HTTPStatusCode: http.StatusInternalServerError, RequestID: "r-500"},
	}
	err := c.tick(context.Background(), c.generation)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, before, scene.Faces())
	assert.Equal(t, 1, scene.Renders())
	require.Len(t, presenter.Reports(), 1)
}

func TestControllerFailuresAreReportedAndSceneKept(t *testing.T) {
	tests := []struct {
		name    string
		capture *fakeSnapshotter
		relay   *fakeRelay
		want    error
	}{
		{
			name:    "capture too large",
			capture: &fakeSnapshotter{err: ErrSnapshotTooLarge},
			relay:   &fakeRelay{result: okResponse()},
			want:    ErrSnapshotTooLarge,
		},
		{
			name:    "relay unreachable",
			capture: &fakeSnapshotter{snapshot: []byte("png")},
			relay:   &fakeRelay{err: ErrRelayUnreachable},
			want:    ErrRelayUnreachable,
		},
		{
			name:    "malformed response",
			capture: &fakeSnapshotter{snapshot: []byte("png")},
			relay:   &fakeRelay{err: ErrMalformedResponse},
			want:    ErrMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, scene, presenter := newTestController(tt.capture, tt.relay)
			scene.Render([]entity.FaceDetail{sampleFace()})
			require.NoError(t, c.Start(time.Hour))
			defer c.Stop()

			err := c.tick(context.Background(), c.generation)
			assert.ErrorIs(t, err, tt.want)
			assert.Len(t, scene.Faces(), 1)
			assert.Equal(t, 1, scene.Renders())
			require.Len(t, presenter.Reports(), 1)
			assert.ErrorIs(t, presenter.Reports()[0], tt.want)
		})
	}
}

func TestControllerDiscardsResultAfterStop(t *testing.T) {
	relay := &fakeRelay{result: okResponse(sampleFace())}
	c, scene, presenter := newTestController(&fakeSnapshotter{snapshot: []byte("png")}, relay)

	require.NoError(t, c.Start(time.Hour))
	staleGeneration := c.generation
	c.Stop()

	require.NoError(t, c.tick(context.Background(), staleGeneration))
	assert.Zero(t, scene.Renders())

	require.NoError(t, c.Start(time.Hour))
	defer c.Stop()
	require.NoError(t, c.tick(context.Background(), staleGeneration))
	assert.Zero(t, scene.Renders())
	assert.Empty(t, presenter.Reports())
	assert.Equal(t, 2, relay.Calls())
}

func TestControllerLoopSurvivesFailedTicks(t *testing.T) {
	capture := &fakeSnapshotter{err: errors.New("camera glitch")}
	c, _, presenter := newTestController(capture, &fakeRelay{result: okResponse()})

	require.NoError(t, c.Start(5*time.Millisecond))
	defer c.Stop()

	require.Eventually(t, func() bool { return len(presenter.Reports()) >= 3 }, 2*time.Second, 5*time.Millisecond)
	assert.True(t, c.IsActive())
}

func TestRunDoesNotStartWhenCameraUnavailable(t *testing.T) {
	capture := &fakeSnapshotter{openErr: errors.New("permission denied")}
	c, _, presenter := newTestController(capture, &fakeRelay{})

	err := c.Run(context.Background())
	assert.ErrorContains(t, err, "failed to get camera feed")
	assert.Equal(t, Idle, c.State())
	require.Len(t, presenter.Reports(), 1)
}

func TestRunPollsUntilContextDone(t *testing.T) {
	relay := &fakeRelay{result: okResponse(sampleFace())}
	capture := &fakeSnapshotter{snapshot: []byte("png")}
	scene := NewScene()
	c := NewController(capture, relay, scene, &recordingPresenter{}, quietLogger(), 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool { return scene.Renders() >= 1 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, Idle, c.State())
}

func TestControllerStaysQuietWhenTickIsCancelled(t *testing.T) {
	relay := &fakeRelay{err: fmt.Errorf("%w: %v", ErrRelayUnreachable, context.Canceled)}
	capture := &fakeSnapshotter{snapshot: []byte("png")}
	c, scene, presenter := newTestController(capture, relay)
	require.NoError(t, c.Start(time.Hour))
	defer c.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, c.tick(ctx, c.generation))

	capture.err = context.Canceled
	assert.ErrorIs(t, c.tick(context.Background(), c.generation), context.Canceled)

	assert.Empty(t, presenter.Reports())
	assert.Zero(t, scene.Renders())
}
