// Package dialog opens a native file chooser and turns the selection into
// file descriptors, recompressing images on request.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/SwanFlutter/image-picker-master/internal/files"
	"github.com/SwanFlutter/image-picker-master/internal/imaging"
	"github.com/SwanFlutter/image-picker-master/internal/logger"
	"github.com/SwanFlutter/image-picker-master/internal/mime"
)

var (
	// ErrCancelled is returned by a chooser when the user dismisses it
	ErrCancelled = errors.New("selection cancelled")
	// ErrUnavailable means the chooser cannot run on this host
	ErrUnavailable = errors.New("file chooser unavailable")
	// ErrBadResult means the chooser ran but its result could not be read
	ErrBadResult = errors.New("unreadable chooser result")
)

// Request is what a chooser is asked to show
type Request struct {
	Title    string
	Filter   mime.Filter
	Multiple bool
	// ParentWindow is an X11 window ID to attach to, 0 for none
	ParentWindow uint32
}

// Chooser shows a selection surface and returns absolute local paths.
// Cancellation is reported as ErrCancelled.
type Chooser interface {
	Name() string
	Choose(ctx context.Context, req Request) ([]string, error)
}

// Error codes reported across the method channel
const (
	CodePickerError     = "FILE_PICKER_ERROR"
	CodeGetResultError  = "GET_RESULT_ERROR"
	CodeGetResultsError = "GET_RESULTS_ERROR"
	CodeProcessingError = "PROCESSING_ERROR"
)

// Error is a failed pick. Message is caller facing; Err is only logged.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Options are the parsed pickFiles arguments
type Options struct {
	Category           mime.Category
	AllowedExtensions  []string
	AllowMultiple      bool
	WithData           bool
	AllowCompression   bool
	CompressionQuality int
}

// DefaultOptions holds the pickFiles argument defaults
func DefaultOptions() Options {
	return Options{
		Category:           mime.CategoryAny,
		AllowCompression:   true,
		CompressionQuality: imaging.DefaultQuality,
	}
}

// TempAllocator hands out tracked paths for recompressed copies
type TempAllocator interface {
	Create(ext string) (string, error)
	Forget(path string)
}

// WindowFinder returns the window a dialog should be parented to
type WindowFinder func() uint32

// Picker runs a chooser and builds descriptors for the selection
type Picker struct {
	chooser Chooser
	temp    TempAllocator
	title   string
	parent  WindowFinder
}

// NewPicker creates a picker. parent may be nil.
func NewPicker(chooser Chooser, temp TempAllocator, title string, parent WindowFinder) *Picker {
	if title == "" {
		title = "Select Files"
	}
	return &Picker{chooser: chooser, temp: temp, title: title, parent: parent}
}

// Pick shows the chooser. A cancelled selection returns nil, nil.
func (p *Picker) Pick(ctx context.Context, opts Options) ([]files.Descriptor, error) {
	log := logger.WithComponent("dialog")

	req := Request{
		Title:    p.title,
		Filter:   mime.FilterFor(opts.Category, opts.AllowedExtensions),
		Multiple: opts.AllowMultiple,
	}
	if p.parent != nil {
		req.ParentWindow = p.parent()
	}

	log.Debug().
		Str("chooser", p.chooser.Name()).
		Str("filter", req.Filter.Name).
		Bool("multiple", req.Multiple).
		Msg("Opening file chooser")

	paths, err := p.chooser.Choose(ctx, req)
	switch {
	case errors.Is(err, ErrCancelled):
		log.Debug().Msg("File selection cancelled")
		return nil, nil
	case errors.Is(err, ErrBadResult):
		if opts.AllowMultiple {
			return nil, &Error{Code: CodeGetResultsError, Message: "Failed to get selected files", Err: err}
		}
		return nil, &Error{Code: CodeGetResultError, Message: "Failed to get selected file", Err: err}
	case err != nil:
		return nil, &Error{Code: CodePickerError, Message: "Failed to create file picker", Err: err}
	}

	if !opts.AllowMultiple && len(paths) > 1 {
		paths = paths[:1]
	}

	var out []files.Descriptor
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, &Error{Code: CodeProcessingError, Message: "Failed to process selected files", Err: err}
		}
		if path == "" {
			continue
		}
		out = append(out, p.describe(path, opts))
	}

	log.Info().Int("count", len(out)).Msg("Files selected")
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// describe builds one descriptor, substituting recompressed bytes when asked
func (p *Picker) describe(path string, opts Options) files.Descriptor {
	path = filepath.Clean(path)
	fopts := files.Options{WithData: opts.WithData}

	quality := imaging.Clamp(opts.CompressionQuality)
	if opts.WithData && opts.AllowCompression && quality < 100 && mime.IsImage(mime.Extension(path)) {
		if dst, err := p.recompress(path, quality); err == nil {
			fopts.DataPath = dst
		} else {
			logger.WithComponent("dialog").Debug().Err(err).Str("path", path).Msg("Recompression skipped")
		}
	}
	return files.Describe(path, fopts)
}

func (p *Picker) recompress(path string, quality int) (string, error) {
	if p.temp == nil {
		return "", errors.New("no temp allocator")
	}
	dst, err := p.temp.Create("jpg")
	if err != nil {
		return "", err
	}
	if err := imaging.Recompress(path, dst, quality); err != nil {
		p.temp.Forget(dst)
		return "", err
	}
	return dst, nil
}
