package camera

import (
	"context"
	"errors"
	"sync"

	"github.com/SwanFlutter/image-picker-master/internal/logger"
)

// Runtime owns the process-wide lifecycle of a Platform: started once on
// construction and shut down once on Close.
type Runtime struct {
	platform Platform
	startErr error

	closeOnce sync.Once
	closeErr  error
}

// Start initializes the platform. A startup failure is kept and reported
// by every later capture instead of failing construction.
func Start(p Platform) *Runtime {
	r := &Runtime{platform: p}
	log := logger.WithComponent("camera")

	if err := p.Startup(); err != nil {
		r.startErr = err
		log.Warn().Err(err).Str("platform", p.Name()).Msg("Camera platform failed to start")
		return r
	}
	log.Debug().Str("platform", p.Name()).Msg("Camera platform started")
	return r
}

// Platform returns the wrapped platform
func (r *Runtime) Platform() Platform {
	return r.platform
}

// Err returns the startup error as a camera error, or nil
func (r *Runtime) Err() error {
	if r.startErr == nil {
		return nil
	}
	code := CodeInitFailed
	if errors.Is(r.startErr, ErrNotSupported) {
		code = CodeNotSupported
	}
	return newError(StateUninitialized, code, r.startErr)
}

// Devices enumerates capture devices without running a capture
func (r *Runtime) Devices(ctx context.Context) ([]Device, error) {
	if err := r.Err(); err != nil {
		return nil, err
	}
	devs, err := r.platform.EnumerateDevices(ctx)
	if err != nil {
		return nil, newError(StateUninitialized, CodeNoCameraFound, err)
	}
	return devs, nil
}

// Close shuts the platform down. Safe to call more than once.
func (r *Runtime) Close() error {
	r.closeOnce.Do(func() {
		if r.startErr != nil {
			return
		}
		r.closeErr = r.platform.Shutdown()
		logger.WithComponent("camera").Debug().Str("platform", r.platform.Name()).Msg("Camera platform shut down")
	})
	return r.closeErr
}
