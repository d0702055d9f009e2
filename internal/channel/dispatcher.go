package channel

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/SwanFlutter/image-picker-master/internal/logger"
)

// ErrClosed is returned by Invoke after Close
var ErrClosed = errors.New("dispatcher closed")

// Handler executes one method. The returned error is converted with ResponseFor.
type Handler func(ctx context.Context, args Arguments) (interface{}, error)

type job struct {
	ctx   context.Context
	call  MethodCall
	reply chan Response
}

// Dispatcher runs every call on a single goroutine in arrival order.
// Transports may call Invoke concurrently.
type Dispatcher struct {
	name     string
	mu       sync.RWMutex
	handlers map[string]Handler
	queue    chan job
	done     chan struct{}
	once     sync.Once
	wg       sync.WaitGroup
}

// NewDispatcher starts the dispatch goroutine for the named channel
func NewDispatcher(name string) *Dispatcher {
	d := &Dispatcher{
		name:     name,
		handlers: make(map[string]Handler),
		queue:    make(chan job, 16),
		done:     make(chan struct{}),
	}
	d.wg.Add(1)
	go d.loop()
	return d
}

// Name returns the channel name
func (d *Dispatcher) Name() string { return d.name }

// Register binds a handler to a method name, replacing any previous one
func (d *Dispatcher) Register(method string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[method] = h
}

// Methods returns the registered method names in sorted order
func (d *Dispatcher) Methods() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke queues call and waits for its response. If ctx ends first the
// call may still run later, with ctx already cancelled.
func (d *Dispatcher) Invoke(ctx context.Context, call MethodCall) (Response, error) {
	j := job{ctx: ctx, call: call, reply: make(chan Response, 1)}

	select {
	case <-d.done:
		return Response{}, ErrClosed
	default:
	}

	select {
	case d.queue <- j:
	case <-d.done:
		return Response{}, ErrClosed
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}

	select {
	case r := <-j.reply:
		return r, nil
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

// Close stops the dispatch goroutine after the running call returns.
// Queued calls that have not started are dropped.
func (d *Dispatcher) Close() {
	d.once.Do(func() { close(d.done) })
	d.wg.Wait()
}

func (d *Dispatcher) loop() {
	defer d.wg.Done()
	for {
		select {
		case <-d.done:
			return
		case j := <-d.queue:
			j.reply <- d.execute(j.ctx, j.call)
		}
	}
}

func (d *Dispatcher) execute(ctx context.Context, call MethodCall) (resp Response) {
	log := logger.WithComponent("channel")

	d.mu.RLock()
	h, ok := d.handlers[call.Method]
	d.mu.RUnlock()
	if !ok {
		log.Debug().Str("method", call.Method).Msg("Method not implemented")
		return NotImplemented()
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("method", call.Method).Interface("panic", r).Msg("Handler panicked")
			resp = Failure(CodeInternal, fmt.Sprintf("%s failed: %v", call.Method, r), nil)
		}
	}()

	log.Debug().Str("channel", d.name).Str("method", call.Method).Msg("Dispatching method call")
	result, err := h(ctx, ArgumentsOf(call.Arguments))
	resp = ResponseFor(result, err)
	if resp.Status == StatusError {
		log.Warn().Str("method", call.Method).Str("code", resp.Code).Msg(resp.Message)
	}
	return resp
}
