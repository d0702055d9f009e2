package rawproc

import (
	"fmt"
	"os"

	"github.com/SwanFlutter/image-picker-master/internal/camera"
)

// Source is an activated subprocess-backed device. It holds no OS handle;
// each reader spawns its own process per frame.
type Source struct {
	component string
	build     Builder
	width     int
	height    int
}

// NewSource creates a source whose readers default to width x height
func NewSource(component string, build Builder, width, height int) *Source {
	return &Source{component: component, build: build, width: width, height: height}
}

// NewReader creates a reader; a size in opts overrides the source default
func (s *Source) NewReader(opts camera.ReaderOptions) (camera.Reader, error) {
	if s.build == nil {
		return nil, fmt.Errorf("no capture command for %s", s.component)
	}
	w, h := s.width, s.height
	if opts.Width > 0 && opts.Height > 0 {
		w, h = opts.Width, opts.Height
	}
	return NewReader(s.component, w, h, s.build), nil
}

// Close is a no-op; see Source
func (s *Source) Close() error { return nil }

// ProbeDevice opens and closes a device node to surface permission,
// presence and contention problems before any process is spawned.
func ProbeDevice(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		if cause := ClassifyOpen(err); cause != err {
			return fmt.Errorf("%w: %v", cause, err)
		}
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f.Close()
}
