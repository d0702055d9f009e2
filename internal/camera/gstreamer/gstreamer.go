// Package gstreamer captures stills by running a gst-launch-1.0 pipeline
// that ends in fdsink on stdout. Running the tool as a subprocess keeps
// GStreamer's cgo bindings out of the process.
package gstreamer

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/SwanFlutter/image-picker-master/internal/camera"
	"github.com/SwanFlutter/image-picker-master/internal/camera/rawproc"
	"github.com/SwanFlutter/image-picker-master/internal/logger"
)

const component = "gstreamer"

// Options configures the backend
type Options struct {
	// LaunchPath is the gst-launch-1.0 binary; empty searches PATH
	LaunchPath string
	// MonitorPath is the gst-device-monitor-1.0 binary; empty searches PATH
	MonitorPath string
	Width       int
	Height      int
}

// Platform implements camera.Platform with gst-launch-1.0
type Platform struct {
	opts       Options
	goos       string
	launchPath string
	monitor    string
}

// New creates a gstreamer platform for the running OS
func New(opts Options) *Platform {
	if opts.LaunchPath == "" {
		opts.LaunchPath = "gst-launch-1.0"
	}
	if opts.MonitorPath == "" {
		opts.MonitorPath = "gst-device-monitor-1.0"
	}
	return &Platform{opts: opts, goos: runtime.GOOS}
}

func (p *Platform) Name() string { return component }

// Startup resolves the tools
func (p *Platform) Startup() error {
	path, err := exec.LookPath(p.opts.LaunchPath)
	if err != nil {
		return fmt.Errorf("%w: %s not found", camera.ErrNotSupported, p.opts.LaunchPath)
	}
	p.launchPath = path
	if m, err := exec.LookPath(p.opts.MonitorPath); err == nil {
		p.monitor = m
	}
	logger.WithComponent(component).Debug().
		Str("launch", p.launchPath).
		Str("monitor", p.monitor).
		Msg("Using GStreamer")
	return nil
}

// Shutdown is a no-op; no process outlives a capture
func (p *Platform) Shutdown() error { return nil }

// EnumerateDevices lists V4L2 nodes on Linux and asks the device monitor elsewhere
func (p *Platform) EnumerateDevices(ctx context.Context) ([]camera.Device, error) {
	if p.goos == "linux" {
		return rawproc.ListV4L2(rawproc.V4L2DevDir, rawproc.V4L2SysDir)
	}
	if p.monitor == "" {
		return nil, fmt.Errorf("%s not available for device discovery", p.opts.MonitorPath)
	}
	out, err := exec.CommandContext(ctx, p.monitor, "Video/Source").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to run device monitor: %w", err)
	}
	return parseDeviceMonitor(string(out)), nil
}

// Activate probes the device and returns a source over it
func (p *Platform) Activate(ctx context.Context, dev camera.Device) (camera.Source, error) {
	log := logger.WithComponent(component)
	if strings.HasPrefix(dev.Path, "/dev/") {
		if err := rawproc.ProbeDevice(dev.Path); err != nil {
			return nil, err
		}
	}

	src := sourceElement(dev)
	width, height := p.opts.Width, p.opts.Height
	if width <= 0 || height <= 0 {
		w, h, err := p.probeDimensions(ctx, src)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to probe video dimensions, using defaults")
			w, h = 1280, 720
		}
		width, height = w, h
	}
	log.Debug().Str("source", src).Int("width", width).Int("height", height).Msg("Camera source activated")

	return rawproc.NewSource(component, p.builder(src), width, height), nil
}

// sourceElement returns the gst-launch description of the device's source
func sourceElement(dev camera.Device) string {
	if strings.HasPrefix(dev.Path, "/dev/") {
		return "v4l2src device=" + dev.Path
	}
	return dev.Path
}

func (p *Platform) builder(src string) rawproc.Builder {
	return func(width, height int) rawproc.Command {
		return rawproc.Command{Path: p.launchPath, Args: pipelineArgs(src, width, height)}
	}
}

// pipelineArgs builds: -q <src> num-buffers=1 ! videoconvert ! videoscale !
// video/x-raw,format=BGRA,width=W,height=H ! fdsink fd=1 sync=false
func pipelineArgs(src string, width, height int) []string {
	args := []string{"-q"}
	args = append(args, strings.Fields(src)...)
	args = append(args,
		"num-buffers=1", "!",
		"videoconvert", "!",
		"videoscale", "!",
		fmt.Sprintf("video/x-raw,format=BGRA,width=%d,height=%d", width, height), "!",
		"fdsink", "fd=1", "sync=false",
	)
	return args
}

// probeDimensions runs a one-buffer pipeline with -v and reads the
// negotiated caps from its output
func (p *Platform) probeDimensions(ctx context.Context, src string) (int, int, error) {
	args := append([]string{"-v"}, strings.Fields(src)...)
	args = append(args, "num-buffers=1", "!", "fakesink")

	output, err := exec.CommandContext(ctx, p.launchPath, args...).CombinedOutput()
	if err != nil {
		// Caps are often printed before the error
		logger.WithComponent(component).Debug().Str("output", string(output)).Msg("Probe command output")
	}
	if w, h := dimensionsFromCaps(string(output)); w > 0 && h > 0 {
		return w, h, nil
	}
	if err != nil {
		if cause := rawproc.Classify(string(output)); cause != nil {
			return 0, 0, fmt.Errorf("%w: probe failed", cause)
		}
	}
	return 0, 0, fmt.Errorf("could not determine video dimensions")
}
