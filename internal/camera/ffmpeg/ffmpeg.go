// Package ffmpeg captures stills by running ffmpeg against the OS capture
// framework: v4l2 on Linux, avfoundation on macOS and dshow on Windows.
package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"

	"github.com/SwanFlutter/image-picker-master/internal/camera"
	"github.com/SwanFlutter/image-picker-master/internal/camera/rawproc"
	"github.com/SwanFlutter/image-picker-master/internal/logger"
)

const component = "ffmpeg"

// Options configures the backend
type Options struct {
	// Path to the ffmpeg binary. Empty searches the usual install locations.
	Path   string
	Width  int
	Height int
}

// candidate locations tried when no path is configured
var searchPaths = []string{
	"ffmpeg",
	"/opt/homebrew/bin/ffmpeg",
	"/usr/local/bin/ffmpeg",
	"/usr/bin/ffmpeg",
}

// Platform implements camera.Platform on top of ffmpeg
type Platform struct {
	opts Options
	goos string
	path string
	// devices enumerates; replaced in tests
	devices func(ctx context.Context) ([]camera.Device, error)
}

// New creates an ffmpeg platform for the running OS
func New(opts Options) *Platform {
	p := &Platform{opts: opts, goos: runtime.GOOS}
	p.devices = p.enumerate
	return p
}

func (p *Platform) Name() string { return component }

// Startup resolves the ffmpeg binary
func (p *Platform) Startup() error {
	candidates := searchPaths
	if p.opts.Path != "" {
		candidates = []string{p.opts.Path}
	}
	for _, c := range candidates {
		if resolved, err := exec.LookPath(c); err == nil {
			p.path = resolved
			logger.WithComponent(component).Debug().Str("path", resolved).Msg("Using ffmpeg")
			return nil
		}
	}
	return fmt.Errorf("%w: ffmpeg not found", camera.ErrNotSupported)
}

// Shutdown is a no-op; no process outlives a capture
func (p *Platform) Shutdown() error { return nil }

// EnumerateDevices lists video capture devices
func (p *Platform) EnumerateDevices(ctx context.Context) ([]camera.Device, error) {
	return p.devices(ctx)
}

func (p *Platform) enumerate(ctx context.Context) ([]camera.Device, error) {
	switch p.goos {
	case "linux":
		return rawproc.ListV4L2(rawproc.V4L2DevDir, rawproc.V4L2SysDir)
	case "darwin":
		out, err := p.listDevices(ctx, "-f", "avfoundation", "-list_devices", "true", "-i", "")
		if err != nil {
			return nil, err
		}
		return parseAVFoundation(out), nil
	case "windows":
		out, err := p.listDevices(ctx, "-list_devices", "true", "-f", "dshow", "-i", "dummy")
		if err != nil {
			return nil, err
		}
		return parseDShow(out), nil
	}
	return nil, fmt.Errorf("%w: no ffmpeg capture input for %s", camera.ErrNotSupported, p.goos)
}

// listDevices runs an ffmpeg listing. ffmpeg exits non-zero because the
// input is bogus; the listing is on stderr either way.
func (p *Platform) listDevices(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, p.path, append([]string{"-hide_banner"}, args...)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil && stderr.Len() == 0 {
		return "", fmt.Errorf("failed to list devices: %w", err)
	}
	return stderr.String(), nil
}

// Activate checks the device is reachable and returns a source for it
func (p *Platform) Activate(ctx context.Context, dev camera.Device) (camera.Source, error) {
	if p.goos == "linux" {
		if err := rawproc.ProbeDevice(dev.Path); err != nil {
			return nil, err
		}
	}
	input := p.inputArgs(dev)
	if input == nil {
		return nil, fmt.Errorf("%w: no ffmpeg capture input for %s", camera.ErrDeviceInvalidated, p.goos)
	}
	return rawproc.NewSource(component, p.builder(input), p.opts.Width, p.opts.Height), nil
}

func (p *Platform) inputArgs(dev camera.Device) []string {
	switch p.goos {
	case "linux":
		return []string{"-f", "v4l2", "-i", dev.Path}
	case "darwin":
		return []string{"-f", "avfoundation", "-framerate", "30", "-i", dev.Path}
	case "windows":
		return []string{"-f", "dshow", "-i", "video=" + dev.Path}
	}
	return nil
}

// builder produces: ffmpeg <input> -frames:v 1 -vf scale=W:H -f rawvideo -pix_fmt bgra pipe:1
func (p *Platform) builder(input []string) rawproc.Builder {
	return func(width, height int) rawproc.Command {
		args := []string{"-hide_banner", "-loglevel", "error", "-nostdin"}
		args = append(args, input...)
		args = append(args,
			"-frames:v", "1",
			"-vf", "scale="+strconv.Itoa(width)+":"+strconv.Itoa(height),
			"-f", "rawvideo",
			"-pix_fmt", "bgra",
			"pipe:1",
		)
		return rawproc.Command{Path: p.path, Args: args}
	}
}
