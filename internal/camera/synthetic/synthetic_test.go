package synthetic

import (
	"context"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SwanFlutter/image-picker-master/internal/camera"
)

type nopAllocator struct{ dir string }

func (a nopAllocator) Create(ext string) (string, error) { return a.dir + "/shot." + ext, nil }
func (a nopAllocator) Forget(string)                     {}

func capture(t *testing.T, p *Platform) error {
	t.Helper()
	rt := camera.Start(p)
	defer rt.Close()
	_, err := camera.NewPipeline(rt, nopAllocator{dir: t.TempDir()}).Capture(context.Background(), camera.DefaultRequest())
	return err
}

func TestCapture_Succeeds(t *testing.T) {
	p := New(Options{Width: 64, Height: 48})
	require.NoError(t, capture(t, p))
	assert.Equal(t, uint64(1), p.Frames())
	assert.Equal(t, 0, p.Active())
}

func TestFaults(t *testing.T) {
	tests := []struct {
		spec string
		want camera.ErrorCode
	}{
		{"startup", camera.CodeInitFailed},
		{"enumerate", camera.CodeNoCameraFound},
		{"activate=busy", camera.CodeInUse},
		{"activate=denied", camera.CodeAccessDenied},
		{"reader=denied", camera.CodeReaderAccessDenied},
		{"output=unsupported", camera.CodeMediaTypeNotSupported},
		{"read=eos", camera.CodeDisconnected},
		{"read=stream_error", camera.CodeFrameReadFailed},
		{"read=no_sample", camera.CodeFrameCaptureFailed},
		{"read=streaming", camera.CodeStreamingStartFailed},
		{"lock", camera.CodeBufferLockFailed},
		{"media_type", camera.CodeMediaTypeQueryFailed},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			faults, err := ParseFaults(tt.spec)
			require.NoError(t, err)
			p := New(Options{Width: 32, Height: 32, Faults: faults})

			code, ok := camera.CodeOf(capture(t, p))
			require.True(t, ok)
			assert.Equal(t, tt.want, code)
			assert.Equal(t, 0, p.Active())
		})
	}
}

func TestNoDevices(t *testing.T) {
	p := New(Options{Devices: -1})
	code, _ := camera.CodeOf(capture(t, p))
	assert.Equal(t, camera.CodeNoCameraDevicesFound, code)
	assert.Zero(t, p.Frames())
}

func TestParseFaults_Errors(t *testing.T) {
	_, err := ParseFaults("explode=busy")
	assert.Error(t, err)
	_, err = ParseFaults("read=gremlins")
	assert.Error(t, err)

	faults, err := ParseFaults(" ")
	require.NoError(t, err)
	assert.Empty(t, faults)
}

func TestRender(t *testing.T) {
	img := Render(70, 40, "x")
	assert.Equal(t, color.RGBA{255, 255, 0, 255}, img.RGBAAt(15, 2), "second bar is yellow")
	assert.Equal(t, uint8(255), img.RGBAAt(69, 39).R, "gradient ends white")
}
