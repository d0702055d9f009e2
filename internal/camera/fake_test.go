package camera

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"
)

// recordingPlatform is a scripted Platform that logs every call it receives
type recordingPlatform struct {
	mu    sync.Mutex
	calls []string

	startErr    error
	devices     []Device
	enumErr     error
	activateErr error
	readerErr   error
	outputErr   error
	readErr     error
	readFlags   ReadFlags
	nilSample   bool
	bufferErr   error
	lockErr     error
	mediaErr    error
	mediaType   MediaType
	pix         []byte
	block       bool

	open int
}

func newRecordingPlatform() *recordingPlatform {
	w, h := 4, 3
	pix := make([]byte, w*h*4)
	for i := range pix {
		pix[i] = byte(i * 7)
	}
	return &recordingPlatform{
		devices:   []Device{{ID: "cam0", Name: "Front"}, {ID: "cam1", Name: "Back"}},
		mediaType: MediaType{Subtype: SubtypeRGB32, Width: w, Height: h},
		pix:       pix,
	}
}

func (p *recordingPlatform) record(format string, args ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, fmt.Sprintf(format, args...))
}

func (p *recordingPlatform) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func (p *recordingPlatform) acquire() { p.mu.Lock(); p.open++; p.mu.Unlock() }
func (p *recordingPlatform) release() { p.mu.Lock(); p.open--; p.mu.Unlock() }

// Open returns the number of handles not yet released
func (p *recordingPlatform) Open() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

func (p *recordingPlatform) Name() string { return "recording" }

func (p *recordingPlatform) Startup() error {
	p.record("startup")
	return p.startErr
}

func (p *recordingPlatform) Shutdown() error {
	p.record("shutdown")
	return nil
}

func (p *recordingPlatform) EnumerateDevices(ctx context.Context) ([]Device, error) {
	p.record("enumerate")
	return p.devices, p.enumErr
}

func (p *recordingPlatform) Activate(ctx context.Context, dev Device) (Source, error) {
	p.record("activate %s", dev.ID)
	if p.activateErr != nil {
		return nil, p.activateErr
	}
	p.acquire()
	return &recordingSource{p: p}, nil
}

type recordingSource struct{ p *recordingPlatform }

func (s *recordingSource) NewReader(opts ReaderOptions) (Reader, error) {
	s.p.record("new_reader processing=%t", opts.EnableVideoProcessing)
	if s.p.readerErr != nil {
		return nil, s.p.readerErr
	}
	s.p.acquire()
	return &recordingReader{p: s.p}, nil
}

func (s *recordingSource) Close() error {
	s.p.record("close_source")
	s.p.release()
	return nil
}

type recordingReader struct{ p *recordingPlatform }

func (r *recordingReader) SetOutputType(mt MediaType) error {
	r.p.record("set_output %s", mt.Subtype)
	return r.p.outputErr
}

func (r *recordingReader) ReadSample(ctx context.Context) (ReadResult, error) {
	r.p.record("read_sample")
	if r.p.block {
		<-ctx.Done()
		return ReadResult{}, ctx.Err()
	}
	if r.p.readErr != nil {
		return ReadResult{}, r.p.readErr
	}
	res := ReadResult{Flags: r.p.readFlags}
	if !r.p.nilSample {
		r.p.acquire()
		res.Sample = &recordingSample{p: r.p}
	}
	return res, nil
}

func (r *recordingReader) CurrentMediaType() (MediaType, error) {
	r.p.record("media_type")
	return r.p.mediaType, r.p.mediaErr
}

func (r *recordingReader) Close() error {
	r.p.record("close_reader")
	r.p.release()
	return nil
}

type recordingSample struct{ p *recordingPlatform }

func (s *recordingSample) Timestamp() time.Duration { return 40 * time.Millisecond }

func (s *recordingSample) Buffer() (MediaBuffer, error) {
	if s.p.bufferErr != nil {
		return nil, s.p.bufferErr
	}
	return &recordingBuffer{p: s.p}, nil
}

func (s *recordingSample) Release() {
	s.p.record("release_sample")
	s.p.release()
}

type recordingBuffer struct{ p *recordingPlatform }

func (b *recordingBuffer) Lock() ([]byte, int, error) {
	b.p.record("lock")
	if b.p.lockErr != nil {
		return nil, 0, b.p.lockErr
	}
	b.p.acquire()
	return b.p.pix, len(b.p.pix), nil
}

func (b *recordingBuffer) Unlock() {
	b.p.record("unlock")
	b.p.release()
}

// dirAllocator is a TempAllocator writing into a test directory
type dirAllocator struct {
	dir     string
	n       int
	created []string
	forgot  []string
	err     error
}

func (a *dirAllocator) Create(ext string) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.n++
	p := filepath.Join(a.dir, fmt.Sprintf("capture-%d.%s", a.n, ext))
	a.created = append(a.created, p)
	return p, nil
}

func (a *dirAllocator) Forget(path string) {
	a.forgot = append(a.forgot, path)
}
