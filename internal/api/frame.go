package api

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/SwanFlutter/image-picker-master/internal/camera"
	"github.com/SwanFlutter/image-picker-master/internal/channel"
)

// Error codes produced by the transports themselves
const (
	CodeBadRequest      = "BAD_REQUEST"
	CodeUnknownChannel  = "UNKNOWN_CHANNEL"
	CodeUnavailable     = "BRIDGE_UNAVAILABLE"
	CodeForbiddenOrigin = "FORBIDDEN_ORIGIN"
)

// Bridge is the plugin as seen by the transports
type Bridge interface {
	Channel() string
	Methods() []string
	Invoke(ctx context.Context, call channel.MethodCall) (channel.Response, error)
	Devices(ctx context.Context) ([]camera.Device, error)
	CameraBackend() string
}

// Frame is one request on a streaming transport (WebSocket or stdio).
// Channel may be omitted on transports already bound to a channel.
type Frame struct {
	ID        json.RawMessage `json:"id,omitempty"`
	Channel   string          `json:"channel,omitempty"`
	Method    string          `json:"method"`
	Arguments interface{}     `json:"arguments,omitempty"`
}

// Reply echoes the frame ID next to the response fields
type Reply struct {
	ID json.RawMessage `json:"id,omitempty"`
	channel.Response
}

// handleFrame runs one frame against the bridge
func handleFrame(ctx context.Context, b Bridge, f Frame) Reply {
	reply := Reply{ID: f.ID}
	switch {
	case f.Channel != "" && f.Channel != b.Channel():
		reply.Response = channel.Failure(CodeUnknownChannel, "no plugin registered on channel "+f.Channel, nil)
		return reply
	case f.Method == "":
		reply.Response = channel.Failure(CodeBadRequest, "missing method", nil)
		return reply
	}

	resp, err := b.Invoke(ctx, channel.MethodCall{Method: f.Method, Arguments: f.Arguments})
	if err != nil {
		reply.Response = invokeFailure(err)
		return reply
	}
	reply.Response = resp
	return reply
}

func invokeFailure(err error) channel.Response {
	if errors.Is(err, channel.ErrClosed) {
		return channel.Failure(CodeUnavailable, "bridge is shutting down", nil)
	}
	return channel.Failure(CodeUnavailable, err.Error(), nil)
}
