package ffmpeg

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SwanFlutter/image-picker-master/internal/camera"
)

const avfoundationListing = `[AVFoundation indev @ 0x7f8e4c] AVFoundation video devices:
[AVFoundation indev @ 0x7f8e4c] [0] FaceTime HD Camera
[AVFoundation indev @ 0x7f8e4c] [1] Capture screen 0
[AVFoundation indev @ 0x7f8e4c] [2] OBS Virtual Camera
[AVFoundation indev @ 0x7f8e4c] AVFoundation audio devices:
[AVFoundation indev @ 0x7f8e4c] [0] MacBook Pro Microphone
: Input/output error`

const dshowListing = `[dshow @ 000001] "Integrated Webcam" (video)
[dshow @ 000001]   Alternative name "@device_pnp_\\?\usb#vid_0bda"
[dshow @ 000001] "Microphone Array" (audio)
[dshow @ 000001]   Alternative name "@device_cm_{33D9A762}"`

const dshowLegacyListing = `[dshow @ 0000] DirectShow video devices (some may be both video and audio devices)
[dshow @ 0000]  "USB2.0 HD UVC WebCam"
[dshow @ 0000] DirectShow audio devices
[dshow @ 0000]  "Stereo Mix"`

func TestParseAVFoundation(t *testing.T) {
	devs := parseAVFoundation(avfoundationListing)
	require.Len(t, devs, 2)
	assert.Equal(t, camera.Device{ID: "avfoundation:0", Name: "FaceTime HD Camera", Path: "0"}, devs[0])
	assert.Equal(t, "2", devs[1].Path)
}

func TestParseDShow(t *testing.T) {
	devs := parseDShow(dshowListing)
	require.Len(t, devs, 1)
	assert.Equal(t, "Integrated Webcam", devs[0].Name)

	devs = parseDShow(dshowLegacyListing)
	require.Len(t, devs, 1)
	assert.Equal(t, "USB2.0 HD UVC WebCam", devs[0].Path)
}

func TestBuilder(t *testing.T) {
	p := New(Options{})
	p.goos = "linux"
	p.path = "/usr/bin/ffmpeg"

	cmd := p.builder(p.inputArgs(camera.Device{Path: "/dev/video0"}))(640, 480)
	assert.Equal(t, "/usr/bin/ffmpeg", cmd.Path)
	assert.Contains(t, cmd.String(), "-f v4l2 -i /dev/video0")
	assert.Contains(t, cmd.String(), "-vf scale=640:480")
	assert.Contains(t, cmd.String(), "-pix_fmt bgra pipe:1")

	p.goos = "windows"
	assert.Equal(t, []string{"-f", "dshow", "-i", "video=Integrated Webcam"}, p.inputArgs(camera.Device{Path: "Integrated Webcam"}))
	p.goos = "plan9"
	assert.Nil(t, p.inputArgs(camera.Device{}))
}

func TestStartup_MissingBinary(t *testing.T) {
	p := New(Options{Path: "/nonexistent/ffmpeg"})
	assert.ErrorIs(t, p.Startup(), camera.ErrNotSupported)
}

func TestActivate_MissingNode(t *testing.T) {
	p := New(Options{Width: 320, Height: 240})
	p.goos = "linux"
	_, err := p.Activate(context.Background(), camera.Device{Path: filepath.Join(t.TempDir(), "video0")})
	assert.ErrorIs(t, err, camera.ErrDeviceInvalidated)
}

func TestEnumerate_UnsupportedOS(t *testing.T) {
	p := New(Options{})
	p.goos = "plan9"
	_, err := p.EnumerateDevices(context.Background())
	assert.ErrorIs(t, err, camera.ErrNotSupported)
}
