// Package rawproc reads single raw BGRA frames from capture subprocesses.
//
// The ffmpeg and gstreamer backends both run a tool that writes exactly one
// frame of packed BGRA to stdout; this package owns the process handling,
// the frame read and the stderr classification they share.
package rawproc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/SwanFlutter/image-picker-master/internal/camera"
	"github.com/SwanFlutter/image-picker-master/internal/logger"
)

// Command is one subprocess invocation
type Command struct {
	Path string
	Args []string
}

func (c Command) String() string {
	return c.Path + " " + strings.Join(c.Args, " ")
}

// Builder returns the command that emits one frame of the given size
type Builder func(width, height int) Command

// Reader implements camera.Reader by spawning one process per ReadSample
type Reader struct {
	component string
	build     Builder
	width     int
	height    int
	outputSet bool
	closed    bool
}

// NewReader creates a reader that asks build for frames of width x height
func NewReader(component string, width, height int, build Builder) *Reader {
	return &Reader{component: component, build: build, width: width, height: height}
}

// SetOutputType accepts only the packed BGRA layout the tools are told to emit
func (r *Reader) SetOutputType(mt camera.MediaType) error {
	if mt.Subtype != camera.SubtypeRGB32 {
		return fmt.Errorf("%w: %s", camera.ErrUnsupportedMediaType, mt.Subtype)
	}
	if mt.Width > 0 && mt.Height > 0 {
		r.width, r.height = mt.Width, mt.Height
	}
	if r.width <= 0 || r.height <= 0 {
		return fmt.Errorf("%w: no frame size", camera.ErrUnsupportedMediaType)
	}
	r.outputSet = true
	return nil
}

// CurrentMediaType reports the forced output layout
func (r *Reader) CurrentMediaType() (camera.MediaType, error) {
	if !r.outputSet {
		return camera.MediaType{}, errors.New("output type not set")
	}
	return camera.MediaType{
		Subtype: camera.SubtypeRGB32,
		Width:   r.width,
		Height:  r.height,
		Stride:  r.width * 4,
	}, nil
}

// ReadSample runs the capture command and reads exactly one frame from it
func (r *Reader) ReadSample(ctx context.Context) (camera.ReadResult, error) {
	if r.closed {
		return camera.ReadResult{}, errors.New("reader closed")
	}
	if !r.outputSet {
		return camera.ReadResult{}, fmt.Errorf("%w: output type not set", camera.ErrStreamingStart)
	}

	log := logger.WithComponent(r.component)
	c := r.build(r.width, r.height)
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return camera.ReadResult{}, fmt.Errorf("failed to get stdout pipe: %w", err)
	}

	log.Debug().Str("command", c.String()).Msg("Starting capture subprocess")
	start := time.Now()
	if err := cmd.Start(); err != nil {
		return camera.ReadResult{}, fmt.Errorf("%w: %v", camera.ErrStreamingStart, err)
	}

	frame := make([]byte, r.width*r.height*4)
	n, readErr := io.ReadFull(stdout, frame)
	// Drain so the tool is not blocked on a full pipe while we wait for it
	io.Copy(io.Discard, stdout)
	waitErr := cmd.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return camera.ReadResult{}, ctxErr
	}

	if readErr != nil {
		msg := strings.TrimSpace(stderr.String())
		log.Debug().Err(readErr).Int("bytes_read", n).Str("stderr", msg).Msg("Capture subprocess produced no frame")
		if cause := Classify(msg); cause != nil {
			return camera.ReadResult{}, fmt.Errorf("%w: %s", cause, lastLine(msg))
		}
		if n == 0 {
			return camera.ReadResult{}, fmt.Errorf("%w: %s", camera.ErrStreamingStart, lastLine(msg))
		}
		// The stream ended part way through the frame
		return camera.ReadResult{Flags: camera.FlagEndOfStream}, nil
	}
	if waitErr != nil {
		log.Debug().Err(waitErr).Msg("Capture subprocess exited with error after a full frame")
	}

	log.Debug().Dur("elapsed", time.Since(start)).Int("bytes", n).Msg("Frame read")
	return camera.ReadResult{Sample: camera.NewMemorySample(frame, time.Since(start))}, nil
}

// Close marks the reader unusable. No process outlives ReadSample.
func (r *Reader) Close() error {
	r.closed = true
	return nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
