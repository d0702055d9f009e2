package rawproc

import (
	"errors"
	"io/fs"
	"strings"
	"syscall"

	"github.com/SwanFlutter/image-picker-master/internal/camera"
)

// stderr fragments printed by ffmpeg, gst-launch and the drivers under them
var stderrPatterns = []struct {
	fragment string
	err      error
}{
	{"permission denied", camera.ErrAccessDenied},
	{"not authorized", camera.ErrAccessDenied},
	{"access denied", camera.ErrAccessDenied},
	{"device or resource busy", camera.ErrDeviceInUse},
	{"in use", camera.ErrDeviceInUse},
	{"busy", camera.ErrDeviceInUse},
	{"no such device", camera.ErrDeviceDisconnected},
	{"no such file or directory", camera.ErrDeviceDisconnected},
	{"could not find video device", camera.ErrDeviceDisconnected},
	{"not-negotiated", camera.ErrUnsupportedMediaType},
	{"not negotiated", camera.ErrUnsupportedMediaType},
}

// Classify maps subprocess error output onto a camera sentinel, or nil
func Classify(stderr string) error {
	lower := strings.ToLower(stderr)
	for _, p := range stderrPatterns {
		if strings.Contains(lower, p.fragment) {
			return p.err
		}
	}
	return nil
}

// ClassifyOpen maps an error from opening a device node onto a camera sentinel
func ClassifyOpen(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrPermission):
		return camera.ErrAccessDenied
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ENODEV), errors.Is(err, syscall.ENXIO):
		return camera.ErrDeviceInvalidated
	case errors.Is(err, syscall.EBUSY):
		return camera.ErrDeviceInUse
	}
	return err
}
