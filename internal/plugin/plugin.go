// Package plugin wires the method handlers of the image_picker_master
// channel to the file dialog and the camera pipeline.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/SwanFlutter/image-picker-master/internal/camera"
	"github.com/SwanFlutter/image-picker-master/internal/camera/backend"
	"github.com/SwanFlutter/image-picker-master/internal/channel"
	"github.com/SwanFlutter/image-picker-master/internal/config"
	"github.com/SwanFlutter/image-picker-master/internal/dialog"
	"github.com/SwanFlutter/image-picker-master/internal/files"
	"github.com/SwanFlutter/image-picker-master/internal/imaging"
	"github.com/SwanFlutter/image-picker-master/internal/logger"
	"github.com/SwanFlutter/image-picker-master/internal/mime"
	"github.com/SwanFlutter/image-picker-master/internal/platform"
	"github.com/SwanFlutter/image-picker-master/internal/tempfiles"
)

// Method names
const (
	MethodPlatformVersion = "getPlatformVersion"
	MethodPickFiles       = "pickFiles"
	MethodCapturePhoto    = "capturePhoto"
	MethodClearTemp       = "clearTemporaryFiles"
)

// Options overrides the collaborators New would build from the config
type Options struct {
	Config   *config.Config
	Platform camera.Platform
	Chooser  dialog.Chooser
	// Parent finds the window dialogs attach to. Nil selects the X11
	// active window on unix desktops.
	Parent dialog.WindowFinder
	// Version overrides the getPlatformVersion probe
	Version func() string
}

// Plugin owns every resource behind the channel
type Plugin struct {
	cfg        *config.Config
	temp       *tempfiles.Manager
	picker     *dialog.Picker
	runtime    *camera.Runtime
	pipeline   *camera.Pipeline
	dispatcher *channel.Dispatcher
	version    func() string

	closeOnce sync.Once
}

// New builds the plugin, starts the camera platform and registers the
// channel methods.
func New(opts Options) (*Plugin, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Defaults()
	}
	log := logger.WithComponent("plugin")

	chooser := opts.Chooser
	if chooser == nil {
		var err error
		chooser, err = dialog.New(cfg.Dialog.Backend, cfg.Dialog.StaticPaths)
		if err != nil {
			return nil, fmt.Errorf("failed to create file chooser: %w", err)
		}
	}

	cam := opts.Platform
	if cam == nil {
		router, err := backend.Open(cfg.Camera.Backend, backend.Settings{
			Width:         cfg.Camera.Width,
			Height:        cfg.Camera.Height,
			FFmpegPath:    cfg.Camera.FFmpegPath,
			GstLaunchPath: cfg.Camera.GstLaunchPath,
			Faults:        cfg.Camera.Faults,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create camera backend: %w", err)
		}
		cam = router
	}

	parent := opts.Parent
	if parent == nil && runtime.GOOS != "windows" && runtime.GOOS != "darwin" {
		parent = dialog.ActiveWindow
	}

	version := opts.Version
	if version == nil {
		version = platform.Version
	}

	p := &Plugin{
		cfg:     cfg,
		temp:    tempfiles.NewManager(cfg.Temp.Dir, cfg.Temp.Prefix),
		runtime: camera.Start(cam),
		version: version,
	}
	p.picker = dialog.NewPicker(chooser, p.temp, cfg.Dialog.Title, parent)
	p.pipeline = camera.NewPipeline(p.runtime, p.temp,
		camera.WithDevice(cfg.Camera.Device),
		camera.WithResolution(cfg.Camera.Width, cfg.Camera.Height),
		camera.WithReadTimeout(cfg.Camera.ReadTimeout),
	)

	p.dispatcher = channel.NewDispatcher(cfg.Channel)
	p.dispatcher.Register(MethodPlatformVersion, p.handlePlatformVersion)
	p.dispatcher.Register(MethodPickFiles, p.handlePickFiles)
	p.dispatcher.Register(MethodCapturePhoto, p.handleCapturePhoto)
	p.dispatcher.Register(MethodClearTemp, p.handleClearTemp)

	log.Info().
		Str("channel", cfg.Channel).
		Str("chooser", chooser.Name()).
		Str("camera", cam.Name()).
		Str("temp_dir", p.temp.Dir()).
		Msg("Plugin registered")
	return p, nil
}

// Channel returns the channel name calls are addressed to
func (p *Plugin) Channel() string { return p.cfg.Channel }

// Invoke runs one method call on the dispatch goroutine
func (p *Plugin) Invoke(ctx context.Context, call channel.MethodCall) (channel.Response, error) {
	return p.dispatcher.Invoke(ctx, call)
}

// Devices lists the capture devices of the active camera backend
func (p *Plugin) Devices(ctx context.Context) ([]camera.Device, error) {
	return p.runtime.Devices(ctx)
}

// CameraBackend reports the camera platform in use
func (p *Plugin) CameraBackend() string { return p.runtime.Platform().Name() }

// Methods lists the method names the channel answers
func (p *Plugin) Methods() []string { return p.dispatcher.Methods() }

// TempFiles returns the tracked temporary paths
func (p *Plugin) TempFiles() []string { return p.temp.Paths() }

// Close stops dispatching, shuts the camera platform down and deletes
// every temporary file. Safe to call more than once.
func (p *Plugin) Close() error {
	var err error
	p.closeOnce.Do(func() {
		p.dispatcher.Close()
		err = p.runtime.Close()
		removed := p.temp.Clear()
		logger.WithComponent("plugin").Debug().Int("removed", removed).Msg("Plugin closed")
	})
	return err
}

func (p *Plugin) handlePlatformVersion(ctx context.Context, args channel.Arguments) (interface{}, error) {
	return p.version(), nil
}

// PickOptions parses pickFiles arguments
func PickOptions(args channel.Arguments) dialog.Options {
	d := dialog.DefaultOptions()
	return dialog.Options{
		Category:           mime.ParseCategory(args.String("type", string(d.Category))),
		AllowedExtensions:  args.StringList("allowedExtensions"),
		AllowMultiple:      args.Bool("allowMultiple", d.AllowMultiple),
		WithData:           args.Bool("withData", d.WithData),
		AllowCompression:   args.Bool("allowCompression", d.AllowCompression),
		CompressionQuality: args.Int("compressionQuality", imaging.DefaultQuality),
	}
}

func (p *Plugin) handlePickFiles(ctx context.Context, args channel.Arguments) (interface{}, error) {
	picked, err := p.picker.Pick(ctx, PickOptions(args))
	if err != nil {
		var de *dialog.Error
		if errors.As(err, &de) {
			return nil, channel.NewError(de.Code, de.Message)
		}
		return nil, err
	}
	if picked == nil {
		return nil, nil
	}
	return files.List(picked), nil
}

// CaptureOptions parses capturePhoto arguments
func CaptureOptions(args channel.Arguments) camera.CaptureRequest {
	d := camera.DefaultRequest()
	return camera.CaptureRequest{
		AllowCompression:   args.Bool("allowCompression", d.AllowCompression),
		CompressionQuality: args.Int("compressionQuality", d.CompressionQuality),
		WithData:           args.Bool("withData", d.WithData),
	}
}

func (p *Plugin) handleCapturePhoto(ctx context.Context, args channel.Arguments) (interface{}, error) {
	desc, err := p.pipeline.Capture(ctx, CaptureOptions(args))
	if err != nil {
		var ce *camera.Error
		if errors.As(err, &ce) {
			return nil, channel.NewError(string(ce.Code), ce.Message())
		}
		return nil, err
	}
	return files.List([]files.Descriptor{desc}), nil
}

func (p *Plugin) handleClearTemp(ctx context.Context, args channel.Arguments) (interface{}, error) {
	p.temp.Clear()
	return nil, nil
}
