// Package backend selects the camera platform for the running host.
package backend

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/SwanFlutter/image-picker-master/internal/camera"
	"github.com/SwanFlutter/image-picker-master/internal/camera/ffmpeg"
	"github.com/SwanFlutter/image-picker-master/internal/camera/gstreamer"
	"github.com/SwanFlutter/image-picker-master/internal/camera/synthetic"
	"github.com/SwanFlutter/image-picker-master/internal/logger"
)

// Auto picks the first backend that starts
const Auto = "auto"

// Settings are the backend-independent camera options
type Settings struct {
	Width         int
	Height        int
	FFmpegPath    string
	GstLaunchPath string
	// Faults is a synthetic fault spec, see synthetic.ParseFaults
	Faults string
}

// Factory builds a platform from settings
type Factory func(Settings) (camera.Platform, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
	// autoOrder is the preference order for Auto; synthetic is never auto-selected
	autoOrder = []string{"ffmpeg", "gstreamer"}
)

// Register adds a named backend. Backends behind build tags call it from init.
func Register(name string, f Factory, auto bool) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = f
	if auto {
		autoOrder = append(autoOrder, name)
	}
}

func init() {
	Register("ffmpeg", func(s Settings) (camera.Platform, error) {
		return ffmpeg.New(ffmpeg.Options{Path: s.FFmpegPath, Width: s.Width, Height: s.Height}), nil
	}, false)
	Register("gstreamer", func(s Settings) (camera.Platform, error) {
		return gstreamer.New(gstreamer.Options{LaunchPath: s.GstLaunchPath, Width: s.Width, Height: s.Height}), nil
	}, false)
	Register("synthetic", func(s Settings) (camera.Platform, error) {
		faults, err := synthetic.ParseFaults(s.Faults)
		if err != nil {
			return nil, err
		}
		return synthetic.New(synthetic.Options{Width: s.Width, Height: s.Height, Faults: faults}), nil
	}, false)
}

// Names lists the registered backends
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry)+1)
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return append([]string{Auto}, names...)
}

// Router is a camera.Platform that delegates to the first candidate
// backend whose Startup succeeds
type Router struct {
	name       string
	candidates []camera.Platform
	active     camera.Platform
	mu         sync.RWMutex
}

// Open builds a router for name, which is Auto or a registered backend
func Open(name string, s Settings) (*Router, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = Auto
	}

	registryMu.RLock()
	defer registryMu.RUnlock()

	var order []string
	if name == Auto {
		order = autoOrder
	} else {
		if _, ok := registry[name]; !ok {
			return nil, fmt.Errorf("unknown camera backend %q (available: %s)", name, strings.Join(namesLocked(), ", "))
		}
		order = []string{name}
	}

	r := &Router{name: name}
	for _, n := range order {
		p, err := registry[n](s)
		if err != nil {
			return nil, fmt.Errorf("failed to configure %s backend: %w", n, err)
		}
		r.candidates = append(r.candidates, p)
	}
	return r, nil
}

func namesLocked() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewRouter wraps explicit candidates, tried in order
func NewRouter(candidates ...camera.Platform) *Router {
	return &Router{name: Auto, candidates: candidates}
}

// Name reports the active backend, or the requested one before Startup
func (r *Router) Name() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.active != nil {
		return r.active.Name()
	}
	return r.name
}

// Startup starts candidates in order and keeps the first that succeeds
func (r *Router) Startup() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := logger.WithComponent("camera-router")
	var errs []string
	for _, p := range r.candidates {
		if err := p.Startup(); err != nil {
			log.Debug().Err(err).Str("backend", p.Name()).Msg("Camera backend not available")
			if r.name != Auto && len(r.candidates) == 1 {
				// an explicitly chosen backend reports its own cause
				return fmt.Errorf("%s: %w", p.Name(), err)
			}
			errs = append(errs, p.Name()+": "+err.Error())
			continue
		}
		r.active = p
		log.Info().Str("backend", p.Name()).Msg("Camera backend selected")
		return nil
	}
	return fmt.Errorf("%w: no camera backend available (%s)", camera.ErrNotSupported, strings.Join(errs, "; "))
}

// Shutdown stops the active backend
func (r *Router) Shutdown() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == nil {
		return nil
	}
	err := r.active.Shutdown()
	r.active = nil
	return err
}

func (r *Router) current() (camera.Platform, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.active == nil {
		return nil, fmt.Errorf("%w: camera backend not started", camera.ErrNotSupported)
	}
	return r.active, nil
}

func (r *Router) EnumerateDevices(ctx context.Context) ([]camera.Device, error) {
	p, err := r.current()
	if err != nil {
		return nil, err
	}
	return p.EnumerateDevices(ctx)
}

func (r *Router) Activate(ctx context.Context, dev camera.Device) (camera.Source, error) {
	p, err := r.current()
	if err != nil {
		return nil, err
	}
	return p.Activate(ctx, dev)
}
