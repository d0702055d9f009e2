// Package synthetic is a camera platform that renders a test pattern
// instead of talking to hardware. Faults can be injected at any stage.
package synthetic

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/SwanFlutter/image-picker-master/internal/camera"
	"github.com/SwanFlutter/image-picker-master/internal/imaging"
)

// Point is a stage at which a fault can be injected
type Point string

const (
	FaultStartup   Point = "startup"
	FaultEnumerate Point = "enumerate"
	FaultActivate  Point = "activate"
	FaultReader    Point = "reader"
	FaultOutput    Point = "output"
	FaultRead      Point = "read"
	FaultLock      Point = "lock"
	FaultMediaType Point = "media_type"
)

// Result faults that are flags rather than errors
var (
	// ErrEndOfStream makes the read return FlagEndOfStream
	ErrEndOfStream = errors.New("end of stream")
	// ErrStreamError makes the read return FlagStreamError
	ErrStreamError = errors.New("stream error")
	// ErrNoSample makes the read return a nil sample
	ErrNoSample = errors.New("no sample")
)

var causes = map[string]error{
	"denied":       camera.ErrAccessDenied,
	"busy":         camera.ErrDeviceInUse,
	"invalidated":  camera.ErrDeviceInvalidated,
	"unsupported":  camera.ErrUnsupportedMediaType,
	"disconnected": camera.ErrDeviceDisconnected,
	"streaming":    camera.ErrStreamingStart,
	"timeout":      context.DeadlineExceeded,
	"eos":          ErrEndOfStream,
	"stream_error": ErrStreamError,
	"no_sample":    ErrNoSample,
	"error":        errors.New("injected failure"),
}

// ParseFaults reads "point=cause" pairs separated by commas,
// e.g. "activate=busy,read=eos". A bare point uses the generic cause.
func ParseFaults(spec string) (map[Point]error, error) {
	faults := make(map[Point]error)
	for _, item := range strings.Split(spec, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, cause, _ := strings.Cut(item, "=")
		point := Point(strings.TrimSpace(name))
		switch point {
		case FaultStartup, FaultEnumerate, FaultActivate, FaultReader, FaultOutput, FaultRead, FaultLock, FaultMediaType:
		default:
			return nil, fmt.Errorf("unknown fault point %q", name)
		}
		if cause == "" {
			cause = "error"
		}
		err, ok := causes[strings.TrimSpace(cause)]
		if !ok {
			return nil, fmt.Errorf("unknown fault cause %q", cause)
		}
		faults[point] = err
	}
	return faults, nil
}

// Options configures the synthetic platform
type Options struct {
	Width  int
	Height int
	// Devices is the number of devices reported; negative reports none
	Devices int
	// Label is stamped on every frame
	Label  string
	Faults map[Point]error
}

// Platform implements camera.Platform with generated frames
type Platform struct {
	opts   Options
	frames atomic.Uint64

	mu     sync.Mutex
	active int
}

// New creates a synthetic platform with sane defaults for unset options
func New(opts Options) *Platform {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 640, 480
	}
	if opts.Devices == 0 {
		opts.Devices = 1
	}
	if opts.Label == "" {
		opts.Label = "image_picker_master"
	}
	return &Platform{opts: opts}
}

func (p *Platform) fault(pt Point) error {
	return p.opts.Faults[pt]
}

func (p *Platform) Name() string { return "synthetic" }

func (p *Platform) Startup() error { return p.fault(FaultStartup) }

func (p *Platform) Shutdown() error { return nil }

// Active returns the number of sources and readers currently open
func (p *Platform) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

func (p *Platform) track(delta int) {
	p.mu.Lock()
	p.active += delta
	p.mu.Unlock()
}

// Frames returns how many frames have been rendered
func (p *Platform) Frames() uint64 { return p.frames.Load() }

func (p *Platform) EnumerateDevices(ctx context.Context) ([]camera.Device, error) {
	if err := p.fault(FaultEnumerate); err != nil {
		return nil, err
	}
	var devs []camera.Device
	for i := 0; i < p.opts.Devices; i++ {
		devs = append(devs, camera.Device{
			ID:   fmt.Sprintf("synthetic%d", i),
			Name: fmt.Sprintf("Synthetic Camera %d", i),
		})
	}
	return devs, nil
}

func (p *Platform) Activate(ctx context.Context, dev camera.Device) (camera.Source, error) {
	if err := p.fault(FaultActivate); err != nil {
		return nil, err
	}
	p.track(1)
	return &source{p: p, dev: dev}, nil
}

type source struct {
	p      *Platform
	dev    camera.Device
	closed bool
}

func (s *source) NewReader(opts camera.ReaderOptions) (camera.Reader, error) {
	if err := s.p.fault(FaultReader); err != nil {
		return nil, err
	}
	w, h := s.p.opts.Width, s.p.opts.Height
	if opts.Width > 0 && opts.Height > 0 {
		w, h = opts.Width, opts.Height
	}
	s.p.track(1)
	return &reader{src: s, width: w, height: h, started: time.Now()}, nil
}

func (s *source) Close() error {
	if !s.closed {
		s.closed = true
		s.p.track(-1)
	}
	return nil
}

type reader struct {
	src     *source
	width   int
	height  int
	set     bool
	closed  bool
	started time.Time
}

func (r *reader) SetOutputType(mt camera.MediaType) error {
	if err := r.src.p.fault(FaultOutput); err != nil {
		return err
	}
	if mt.Subtype != camera.SubtypeRGB32 {
		return fmt.Errorf("%w: %s", camera.ErrUnsupportedMediaType, mt.Subtype)
	}
	r.set = true
	return nil
}

func (r *reader) ReadSample(ctx context.Context) (camera.ReadResult, error) {
	err := r.src.p.fault(FaultRead)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		<-ctx.Done()
		return camera.ReadResult{}, ctx.Err()
	case errors.Is(err, ErrEndOfStream):
		return camera.ReadResult{Flags: camera.FlagEndOfStream}, nil
	case errors.Is(err, ErrStreamError):
		return camera.ReadResult{Flags: camera.FlagStreamError}, nil
	case errors.Is(err, ErrNoSample):
		return camera.ReadResult{}, nil
	case err != nil:
		return camera.ReadResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return camera.ReadResult{}, err
	}

	n := r.src.p.frames.Add(1)
	img := Render(r.width, r.height, fmt.Sprintf("%s  %s  #%d", r.src.p.opts.Label, r.src.dev.ID, n))
	frame := imaging.FromRGBA(img)

	var sample camera.Sample = camera.NewMemorySample(frame.Pix, time.Since(r.started))
	if lockErr := r.src.p.fault(FaultLock); lockErr != nil {
		sample = &failingSample{Sample: sample, err: lockErr}
	}
	return camera.ReadResult{Sample: sample}, nil
}

func (r *reader) CurrentMediaType() (camera.MediaType, error) {
	if err := r.src.p.fault(FaultMediaType); err != nil {
		return camera.MediaType{}, err
	}
	return camera.MediaType{
		Subtype: camera.SubtypeRGB32,
		Width:   r.width,
		Height:  r.height,
		Stride:  r.width * imaging.BytesPerPixel,
	}, nil
}

func (r *reader) Close() error {
	if !r.closed {
		r.closed = true
		r.src.p.track(-1)
	}
	return nil
}

type failingSample struct {
	camera.Sample
	err error
}

func (s *failingSample) Buffer() (camera.MediaBuffer, error) {
	return nil, s.err
}

// Render draws colour bars, a gradient strip and a text stamp
func Render(width, height int, label string) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	bars := []color.RGBA{
		{255, 255, 255, 255},
		{255, 255, 0, 255},
		{0, 255, 255, 255},
		{0, 255, 0, 255},
		{255, 0, 255, 255},
		{255, 0, 0, 255},
		{0, 0, 255, 255},
	}
	barHeight := height * 3 / 4
	for i, c := range bars {
		x0 := i * width / len(bars)
		x1 := (i + 1) * width / len(bars)
		draw.Draw(img, image.Rect(x0, 0, x1, barHeight), &image.Uniform{C: c}, image.Point{}, draw.Src)
	}
	for x := 0; x < width; x++ {
		v := uint8(x * 255 / max(width-1, 1))
		draw.Draw(img, image.Rect(x, barHeight, x+1, height), &image.Uniform{C: color.RGBA{v, v, v, 255}}, image.Point{}, draw.Src)
	}

	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{0, 0, 0, 255}),
		Face: face,
	}
	textWidth := d.MeasureString(label).Ceil()
	pad := 4
	boxH := face.Height + pad*2
	y := barHeight - boxH - pad
	if y < 0 {
		y = 0
	}
	draw.Draw(img, image.Rect(pad, y, pad+textWidth+pad*2, y+boxH), &image.Uniform{C: color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)
	d.Dot = fixed.Point26_6{X: fixed.I(pad * 2), Y: fixed.I(y + pad + face.Ascent)}
	d.DrawString(label)

	return img
}
