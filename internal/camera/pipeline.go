package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/rs/zerolog"

	"github.com/SwanFlutter/image-picker-master/internal/files"
	"github.com/SwanFlutter/image-picker-master/internal/imaging"
	"github.com/SwanFlutter/image-picker-master/internal/logger"
	"github.com/SwanFlutter/image-picker-master/internal/mime"
)

// TempAllocator hands out tracked output paths
type TempAllocator interface {
	Create(ext string) (string, error)
	Forget(path string)
}

// Pipeline runs one capture per Capture call. It holds no device state
// between calls: every capture enumerates, activates and closes again.
type Pipeline struct {
	runtime     *Runtime
	temp        TempAllocator
	deviceID    string
	width       int
	height      int
	readTimeout time.Duration
	observe     func(State)
	log         *zerolog.Logger
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithDevice selects the device with the given ID instead of the first one
func WithDevice(id string) Option {
	return func(p *Pipeline) { p.deviceID = id }
}

// WithResolution asks the reader for a frame size. Backends may ignore it.
func WithResolution(width, height int) Option {
	return func(p *Pipeline) { p.width, p.height = width, height }
}

// WithReadTimeout bounds the frame read. Zero waits forever.
func WithReadTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.readTimeout = d }
}

// WithStageObserver is called each time a stage completes
func WithStageObserver(fn func(State)) Option {
	return func(p *Pipeline) { p.observe = fn }
}

// NewPipeline creates a pipeline over rt writing into temp
func NewPipeline(rt *Runtime, temp TempAllocator, opts ...Option) *Pipeline {
	p := &Pipeline{
		runtime: rt,
		temp:    temp,
		log:     logger.WithComponent("camera"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) advance(s State) {
	p.log.Debug().Str("state", s.String()).Msg("Capture stage complete")
	if p.observe != nil {
		p.observe(s)
	}
}

// Capture takes one photo. Every failure is a *Error; resources acquired
// along the way are released before it returns.
func (p *Pipeline) Capture(ctx context.Context, req CaptureRequest) (files.Descriptor, error) {
	desc, err := p.capture(ctx, req)
	if err != nil {
		var ce *Error
		if errors.As(err, &ce) {
			p.log.Warn().Err(ce.Err).Str("code", string(ce.Code)).Str("stage", ce.Stage.String()).Msg("Capture failed")
		}
		return files.Descriptor{}, err
	}
	p.log.Info().Str("path", desc.Path).Int64("size", desc.Size).Msg("Photo captured")
	return desc, nil
}

func (p *Pipeline) capture(ctx context.Context, req CaptureRequest) (files.Descriptor, error) {
	if err := p.runtime.Err(); err != nil {
		return files.Descriptor{}, err
	}
	platform := p.runtime.Platform()

	dev, err := p.discover(ctx, platform)
	if err != nil {
		return files.Descriptor{}, err
	}
	p.advance(StateDeviceEnumerated)

	src, err := platform.Activate(ctx, dev)
	if err != nil {
		return files.Descriptor{}, newError(StateDeviceEnumerated, activationCode(err), err)
	}
	defer src.Close()
	p.advance(StateSourceActivated)

	reader, err := p.configure(src)
	if err != nil {
		return files.Descriptor{}, err
	}
	defer reader.Close()
	p.advance(StateReaderConfigured)

	sample, err := p.readFrame(ctx, reader)
	if err != nil {
		return files.Descriptor{}, err
	}
	defer sample.Release()
	p.advance(StateFrameRead)

	img, err := p.decode(reader, sample)
	if err != nil {
		return files.Descriptor{}, err
	}
	p.advance(StateBitmapDecoded)

	path, err := p.encode(img, req.Quality())
	if err != nil {
		return files.Descriptor{}, err
	}
	p.advance(StateJpegEncoded)

	desc := files.Describe(path, files.Options{WithData: req.WithData, MimeType: mime.JPEG})
	p.advance(StateDone)
	return desc, nil
}

func (p *Pipeline) discover(ctx context.Context, platform Platform) (Device, error) {
	devs, err := platform.EnumerateDevices(ctx)
	if err != nil {
		return Device{}, newError(StateUninitialized, CodeNoCameraFound, err)
	}
	if len(devs) == 0 {
		return Device{}, newError(StateUninitialized, CodeNoCameraDevicesFound, nil)
	}
	if p.deviceID == "" {
		return devs[0], nil
	}
	for _, d := range devs {
		if d.ID == p.deviceID {
			return d, nil
		}
	}
	return Device{}, newError(StateUninitialized, CodeNoCameraDevicesFound,
		fmt.Errorf("device %q not among %d enumerated", p.deviceID, len(devs)))
}

func (p *Pipeline) configure(src Source) (Reader, error) {
	reader, err := src.NewReader(ReaderOptions{
		EnableVideoProcessing: true,
		Width:                 p.width,
		Height:                p.height,
	})
	if err != nil {
		return nil, newError(StateSourceActivated, readerCreationCode(err), err)
	}

	if err := reader.SetOutputType(MediaType{Subtype: SubtypeRGB32}); err != nil {
		reader.Close()
		return nil, newError(StateSourceActivated, mediaTypeCode(err), err)
	}
	return reader, nil
}

func (p *Pipeline) readFrame(ctx context.Context, reader Reader) (Sample, error) {
	if p.readTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.readTimeout)
		defer cancel()
	}

	res, err := reader.ReadSample(ctx)
	if err != nil {
		if res.Sample != nil {
			res.Sample.Release()
		}
		return nil, newError(StateReaderConfigured, readCode(err), err)
	}

	var code ErrorCode
	switch {
	case res.Flags.Has(FlagStreamError):
		code = CodeFrameReadFailed
	case res.Flags.Has(FlagEndOfStream):
		code = CodeDisconnected
	case res.Sample == nil:
		code = CodeFrameCaptureFailed
	}
	if code != "" {
		if res.Sample != nil {
			res.Sample.Release()
		}
		return nil, newError(StateReaderConfigured, code, fmt.Errorf("read flags %#x", uint32(res.Flags)))
	}
	return res.Sample, nil
}

// decode locks the sample buffer and converts it while the lock is held
func (p *Pipeline) decode(reader Reader, sample Sample) (*image.RGBA, error) {
	buf, err := sample.Buffer()
	if err != nil {
		return nil, newError(StateFrameRead, CodeBufferLockFailed, err)
	}
	data, n, err := buf.Lock()
	if err != nil {
		return nil, newError(StateFrameRead, CodeBufferLockFailed, err)
	}
	defer buf.Unlock()
	if n >= 0 && n < len(data) {
		data = data[:n]
	}

	mt, err := reader.CurrentMediaType()
	if err != nil {
		return nil, newError(StateFrameRead, CodeMediaTypeQueryFailed, err)
	}
	if mt.Width <= 0 || mt.Height <= 0 {
		return nil, newError(StateFrameRead, CodeMediaTypeQueryFailed,
			fmt.Errorf("reader reported %dx%d", mt.Width, mt.Height))
	}

	frame := imaging.Frame{
		Width:     mt.Width,
		Height:    mt.Height,
		Stride:    mt.Stride,
		Pix:       data,
		Timestamp: sample.Timestamp(),
	}
	img, err := frame.ToRGBA()
	if err != nil {
		return nil, newError(StateFrameRead, CodeBitmapCreationFailed, err)
	}
	return img, nil
}

func (p *Pipeline) encode(img *image.RGBA, quality int) (string, error) {
	path, err := p.temp.Create("jpg")
	if err != nil {
		return "", newError(StateBitmapDecoded, CodeFileProcessingError, err)
	}
	if err := imaging.WriteJPEG(path, img, quality); err != nil {
		p.temp.Forget(path)
		return "", newError(StateBitmapDecoded, CodeFileProcessingError, err)
	}
	return path, nil
}
