package watcher

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

// FrameSource is a live camera feed.
type FrameSource interface {
	// Open acquires the device. It is called once before polling starts.
	Open(ctx context.Context) error
	// Frame returns the current frame at native resolution.
	Frame(ctx context.Context) (image.Image, error)
	Close() error
}

// SnapshotSource reads still images from an IP camera snapshot URL.
type SnapshotSource struct {
	url     string
	timeout time.Duration
}

func NewSnapshotSource(url string, timeout time.Duration) *SnapshotSource {
	return &SnapshotSource{url: url, timeout: timeout}
}

func (s *SnapshotSource) Open(ctx context.Context) error {
	_, err := s.Frame(ctx)
	return err
}

func (s *SnapshotSource) Frame(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	agent := fiber.Get(s.url).Timeout(requestTimeout(ctx, s.timeout))
	if err := agent.Parse(); err != nil {
		return nil, fmt.Errorf("camera %s: %w", s.url, err)
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("camera %s: %w", s.url, errs[0])
	}
	if code != fiber.StatusOK {
		return nil, fmt.Errorf("camera %s: unexpected status %d", s.url, code)
	}

	frame, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("camera %s: decode frame: %w", s.url, err)
	}

	return frame, nil
}

func (s *SnapshotSource) Close() error {
	return nil
}

// DirectorySource replays the image files of a folder in name order,
// wrapping around at the end. The folder is re-read on every frame so files
// dropped in by a camera are picked up.
type DirectorySource struct {
	dir string

	mu   sync.Mutex
	next int
}

var frameExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}

func NewDirectorySource(dir string) *DirectorySource {
	return &DirectorySource{dir: dir}
}

func (d *DirectorySource) Open(_ context.Context) error {
	files, err := d.frames()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("%s: %w", d.dir, ErrNoFrames)
	}
	return nil
}

func (d *DirectorySource) Frame(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	files, err := d.frames()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", d.dir, ErrNoFrames)
	}

	d.mu.Lock()
	name := files[d.next%len(files)]
	d.next = (d.next + 1) % len(files)
	d.mu.Unlock()

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	frame, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}

	return frame, nil
}

func (d *DirectorySource) Close() error {
	return nil
}

func (d *DirectorySource) frames() ([]string, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !frameExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		files = append(files, filepath.Join(d.dir, entry.Name()))
	}
	sort.Strings(files)

	return files, nil
}

// requestTimeout shortens fallback to the context deadline when one is set.
func requestTimeout(ctx context.Context, fallback time.Duration) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return fallback
	}
	if remaining := time.Until(deadline); remaining < fallback || fallback <= 0 {
		return remaining
	}
	return fallback
}
