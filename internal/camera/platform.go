// Package camera captures a single JPEG still from a video capture device.
//
// The capture path is a fixed sequence of stages driven by Pipeline. The
// OS media stack sits behind the Platform, Source, Reader, Sample and
// MediaBuffer interfaces; backends live in the subpackages.
package camera

import (
	"context"
	"time"
)

// SubtypeRGB32 is the 32-bit BGRA layout every reader is forced into
const SubtypeRGB32 = "RGB32"

// Device identifies one enumerable capture device
type Device struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// Path is the backend-specific address (device node, avfoundation index, dshow name)
	Path string `json:"path,omitempty"`
}

// MediaType describes the frames a reader delivers
type MediaType struct {
	Subtype string
	Width   int
	Height  int
	// Stride in bytes, 0 means Width*4
	Stride int
}

// ReaderOptions configures reader creation
type ReaderOptions struct {
	// EnableVideoProcessing lets the backend convert and scale into the forced output type
	EnableVideoProcessing bool
	Width                 int
	Height                int
}

// ReadFlags are the stream flags returned with a read
type ReadFlags uint32

const (
	FlagStreamError ReadFlags = 1 << iota
	FlagEndOfStream
	FlagStreamTick
)

// Has reports whether all bits of f2 are set
func (f ReadFlags) Has(f2 ReadFlags) bool { return f&f2 == f2 }

// ReadResult is the outcome of one synchronous read. Sample may be nil.
type ReadResult struct {
	StreamIndex int
	Flags       ReadFlags
	Sample      Sample
}

// Platform is the process-wide media stack. Startup and Shutdown are each
// called once, by Runtime.
type Platform interface {
	Name() string
	Startup() error
	Shutdown() error
	EnumerateDevices(ctx context.Context) ([]Device, error)
	Activate(ctx context.Context, dev Device) (Source, error)
}

// Source is a live, activated capture device
type Source interface {
	NewReader(opts ReaderOptions) (Reader, error)
	Close() error
}

// Reader pulls samples synchronously from the first video stream of a source
type Reader interface {
	SetOutputType(mt MediaType) error
	// ReadSample blocks until a sample arrives, the stream fails or ctx ends
	ReadSample(ctx context.Context) (ReadResult, error)
	CurrentMediaType() (MediaType, error)
	Close() error
}

// Sample is one timestamped frame delivery
type Sample interface {
	Timestamp() time.Duration
	Buffer() (MediaBuffer, error)
	Release()
}

// MediaBuffer is the raw pixel range behind a sample
type MediaBuffer interface {
	// Lock returns the buffer and its valid length. The slice is only
	// valid until Unlock.
	Lock() ([]byte, int, error)
	Unlock()
}
