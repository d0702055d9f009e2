package camera

import (
	"errors"
	"sync"
	"time"
)

// ErrBufferLocked is returned when a memory buffer is locked twice
var ErrBufferLocked = errors.New("buffer already locked")

// memorySample is a Sample over a byte slice the backend already owns
type memorySample struct {
	pix []byte
	ts  time.Duration
	buf *memoryBuffer
}

// NewMemorySample wraps pix as a sample. Backends that read whole frames
// into Go memory (subprocess pipes, decoded images) use it.
func NewMemorySample(pix []byte, ts time.Duration) Sample {
	return &memorySample{pix: pix, ts: ts, buf: &memoryBuffer{pix: pix}}
}

func (s *memorySample) Timestamp() time.Duration { return s.ts }

func (s *memorySample) Buffer() (MediaBuffer, error) {
	if s.buf == nil {
		return nil, errors.New("sample released")
	}
	return s.buf, nil
}

func (s *memorySample) Release() {
	s.buf = nil
	s.pix = nil
}

type memoryBuffer struct {
	mu     sync.Mutex
	pix    []byte
	locked bool
}

func (b *memoryBuffer) Lock() ([]byte, int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.locked {
		return nil, 0, ErrBufferLocked
	}
	b.locked = true
	return b.pix, len(b.pix), nil
}

func (b *memoryBuffer) Unlock() {
	b.mu.Lock()
	b.locked = false
	b.mu.Unlock()
}
