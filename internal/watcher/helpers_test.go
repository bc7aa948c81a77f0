package watcher

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"sync"
	"testing"

	"FaceRec/internal/entity"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 7), G: uint8(y * 13), B: uint8(x ^ y), A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type fakeSource struct {
	frame   image.Image
	err     error
	openErr error
	opened  bool
	closed  bool
}

func (f *fakeSource) Open(context.Context) error {
	f.opened = true
	return f.openErr
}

func (f *fakeSource) Frame(context.Context) (image.Image, error) {
	return f.frame, f.err
}

func (f *fakeSource) Close() error {
	f.closed = true
	return nil
}

type fakeSnapshotter struct {
	mu       sync.Mutex
	snapshot []byte
	err      error
	openErr  error
	calls    int
}

func (f *fakeSnapshotter) Open(context.Context) error { return f.openErr }
func (f *fakeSnapshotter) Close() error               { return nil }

func (f *fakeSnapshotter) Snapshot(context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.snapshot, f.err
}

type fakeRelay struct {
	mu      sync.Mutex
	result  *entity.AnalysisResponse
	err     error
	calls   int
	release chan struct{}
	entered chan struct{}
}

func (f *fakeRelay) Analyze(context.Context, []byte) (*entity.AnalysisResponse, error) {
	f.mu.Lock()
	f.calls++
	result, err, release, entered := f.result, f.err, f.release, f.entered
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if release != nil {
		<-release
	}
	return result, err
}

func (f *fakeRelay) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeRelay) Close() error { return nil }

type recordingPresenter struct {
	mu       sync.Mutex
	presents int
	reports  []error
}

func (p *recordingPresenter) Present(*Scene) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.presents++
}

func (p *recordingPresenter) Report(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reports = append(p.reports, err)
}

func (p *recordingPresenter) Reports() []error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]error(nil), p.reports...)
}

func okResponse(faces ...entity.FaceDetail) *entity.AnalysisResponse {
	if faces == nil {
		faces = []entity.FaceDetail{}
	}
	return &entity.AnalysisResponse{
		Metadata:    entity.Metadata{HTTPStatusCode: http.StatusOK, RequestID: "req-ok"},
		FaceDetails: faces,
	}
}

func sampleFace() entity.FaceDetail {
	return entity.FaceDetail{
		Confidence:  99.87654,
		BoundingBox: entity.BoundingBox{Top: 0.25, Left: 0.1, Height: 0.4, Width: 0.3},
		AgeRange:    entity.AgeRange{Low: 25, High: 35},
		Gender:      entity.Gender{Value: "Male", Confidence: 99.1},
		Landmarks: []entity.Landmark{
			{Type: "eyeLeft", X: 0.2, Y: 0.35},
			{Type: "eyeRight", X: 0.3, Y: 0.35},
			{Type: "mouthLeft", X: 0.22, Y: 0.55},
			{Type: "mouthRight", X: 0.28, Y: 0.55},
			{Type: "nose", X: 0.25, Y: 0.45},
			{Type: "leftEyeBrowUp", X: 0.2, Y: 0.3},
		},
	}
}
