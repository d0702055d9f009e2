package api

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/SwanFlutter/image-picker-master/internal/channel"
	"github.com/SwanFlutter/image-picker-master/internal/logger"
)

// maxLineSize bounds one stdio frame; replies with file bytes can be large
const maxLineSize = 64 << 20

// Stdio serves frames as JSON lines, one reply line per request line
type Stdio struct {
	bridge Bridge
	in     io.Reader
	out    io.Writer
	mu     sync.Mutex
}

// NewStdio creates a stdio transport over in and out
func NewStdio(bridge Bridge, in io.Reader, out io.Writer) *Stdio {
	return &Stdio{bridge: bridge, in: in, out: out}
}

// Serve reads until EOF or ctx ends. Requests run in arrival order.
func (s *Stdio) Serve(ctx context.Context) error {
	log := logger.WithComponent("stdio")
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lines := make(chan []byte)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
	}()

	log.Debug().Str("channel", s.bridge.Channel()).Msg("Serving stdio")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errc:
					if err != nil {
						return fmt.Errorf("failed to read stdin: %w", err)
					}
				default:
				}
				return nil
			}
			if len(line) == 0 {
				continue
			}
			if err := s.write(s.handleLine(ctx, line)); err != nil {
				return fmt.Errorf("failed to write reply: %w", err)
			}
		}
	}
}

func (s *Stdio) handleLine(ctx context.Context, line []byte) Reply {
	var f Frame
	if err := json.Unmarshal(line, &f); err != nil {
		return Reply{Response: channel.Failure(CodeBadRequest, err.Error(), nil)}
	}
	return handleFrame(ctx, s.bridge, f)
}

func (s *Stdio) write(r Reply) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.out.Write(append(data, '\n'))
	return err
}
