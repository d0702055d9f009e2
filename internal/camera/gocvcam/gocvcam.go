//go:build gocv

package gocvcam

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gocv.io/x/gocv"

	"github.com/SwanFlutter/image-picker-master/internal/camera"
	"github.com/SwanFlutter/image-picker-master/internal/logger"
)

// Options configures the backend
type Options struct {
	Width  int
	Height int
	// MaxProbe is how many device indices enumeration tries
	MaxProbe int
}

// Platform implements camera.Platform over gocv.VideoCapture
type Platform struct {
	opts Options
}

// New creates an OpenCV platform
func New(opts Options) *Platform {
	if opts.MaxProbe <= 0 {
		opts.MaxProbe = 4
	}
	return &Platform{opts: opts}
}

func (p *Platform) Name() string { return "gocv" }

func (p *Platform) Startup() error { return nil }

func (p *Platform) Shutdown() error { return nil }

// EnumerateDevices opens each index in turn; OpenCV has no listing API
func (p *Platform) EnumerateDevices(ctx context.Context) ([]camera.Device, error) {
	var devs []camera.Device
	for i := 0; i < p.opts.MaxProbe; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cam, err := gocv.VideoCaptureDevice(i)
		if err != nil {
			continue
		}
		if cam.IsOpened() {
			devs = append(devs, camera.Device{
				ID:   "gocv:" + strconv.Itoa(i),
				Name: fmt.Sprintf("OpenCV device %d", i),
				Path: strconv.Itoa(i),
			})
		}
		cam.Close()
	}
	return devs, nil
}

func (p *Platform) Activate(ctx context.Context, dev camera.Device) (camera.Source, error) {
	idx, err := strconv.Atoi(strings.TrimPrefix(dev.Path, "gocv:"))
	if err != nil {
		return nil, fmt.Errorf("%w: bad device index %q", camera.ErrDeviceInvalidated, dev.Path)
	}
	cam, err := gocv.VideoCaptureDevice(idx)
	if err != nil {
		return nil, fmt.Errorf("failed to open device: %v", err)
	}
	if !cam.IsOpened() {
		cam.Close()
		return nil, fmt.Errorf("%w: device %d did not open", camera.ErrDeviceInvalidated, idx)
	}
	return &source{cam: cam, width: p.opts.Width, height: p.opts.Height}, nil
}

type source struct {
	cam    *gocv.VideoCapture
	width  int
	height int
}

func (s *source) NewReader(opts camera.ReaderOptions) (camera.Reader, error) {
	w, h := s.width, s.height
	if opts.Width > 0 && opts.Height > 0 {
		w, h = opts.Width, opts.Height
	}
	if w > 0 && h > 0 {
		s.cam.Set(gocv.VideoCaptureFrameWidth, float64(w))
		s.cam.Set(gocv.VideoCaptureFrameHeight, float64(h))
	}
	return &reader{cam: s.cam, frame: gocv.NewMat(), started: time.Now()}, nil
}

func (s *source) Close() error {
	return s.cam.Close()
}

type reader struct {
	cam     *gocv.VideoCapture
	frame   gocv.Mat
	mt      camera.MediaType
	set     bool
	started time.Time
}

func (r *reader) SetOutputType(mt camera.MediaType) error {
	if mt.Subtype != camera.SubtypeRGB32 {
		return fmt.Errorf("%w: %s", camera.ErrUnsupportedMediaType, mt.Subtype)
	}
	r.set = true
	return nil
}

// ReadSample blocks in OpenCV; ctx is only checked around the call
func (r *reader) ReadSample(ctx context.Context) (camera.ReadResult, error) {
	if err := ctx.Err(); err != nil {
		return camera.ReadResult{}, err
	}
	if !r.cam.Read(&r.frame) {
		return camera.ReadResult{}, fmt.Errorf("%w: cannot read frame", camera.ErrDeviceDisconnected)
	}
	if err := ctx.Err(); err != nil {
		return camera.ReadResult{}, err
	}
	if r.frame.Empty() {
		return camera.ReadResult{}, nil
	}

	bgra := gocv.NewMat()
	defer bgra.Close()
	gocv.CvtColor(r.frame, &bgra, gocv.ColorBGRToBGRA)

	r.mt = camera.MediaType{
		Subtype: camera.SubtypeRGB32,
		Width:   bgra.Cols(),
		Height:  bgra.Rows(),
		Stride:  bgra.Cols() * 4,
	}
	logger.WithComponent("gocv").Debug().Int("width", r.mt.Width).Int("height", r.mt.Height).Msg("Frame read")

	// ToBytes copies, so the sample outlives the Mat
	return camera.ReadResult{Sample: camera.NewMemorySample(bgra.ToBytes(), time.Since(r.started))}, nil
}

func (r *reader) CurrentMediaType() (camera.MediaType, error) {
	if r.mt.Width == 0 {
		return camera.MediaType{}, fmt.Errorf("no frame read yet")
	}
	return r.mt, nil
}

func (r *reader) Close() error {
	return r.frame.Close()
}
