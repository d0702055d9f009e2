package channel

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgumentsOf_NonMapIsEmpty(t *testing.T) {
	for _, v := range []interface{}{nil, "x", 3, []interface{}{1}} {
		args := ArgumentsOf(v)
		assert.NotNil(t, args)
		assert.Empty(t, args)
		assert.Equal(t, 85, args.Int("compressionQuality", 85))
	}
}

func TestArguments_Accessors(t *testing.T) {
	var decoded interface{}
	require.NoError(t, json.Unmarshal([]byte(`{
		"type": "image",
		"allowMultiple": true,
		"compressionQuality": 42,
		"allowedExtensions": ["png", 7, "jpg", null],
		"withData": "yes"
	}`), &decoded))
	args := ArgumentsOf(decoded)

	assert.Equal(t, "image", args.String("type", "any"))
	assert.Equal(t, "any", args.String("missing", "any"))
	assert.True(t, args.Bool("allowMultiple", false))
	assert.False(t, args.Bool("withData", false), "mistyped value falls back")
	assert.Equal(t, 42, args.Int("compressionQuality", 85))
	assert.Equal(t, []string{"png", "jpg"}, args.StringList("allowedExtensions"))
	assert.Nil(t, args.StringList("type"))
}

func TestArguments_IntTypes(t *testing.T) {
	args := Arguments{"a": 7, "b": int64(8), "c": float32(9.5), "d": uint32(10), "e": "11", "f": float32(12)}
	assert.Equal(t, 7, args.Int("a", 0))
	assert.Equal(t, 8, args.Int("b", 0))
	assert.Equal(t, -1, args.Int("c", -1), "fractional values fall back")
	assert.Equal(t, 10, args.Int("d", 0))
	assert.Equal(t, -1, args.Int("e", -1))
	assert.Equal(t, 12, args.Int("f", 0))
}

func TestArguments_IntRejectsUnrepresentableNumbers(t *testing.T) {
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(`{"q": 85.9, "big": 1e30, "neg": -1e30, "ok": 70, "exp": 5e1}`), &decoded))
	args := ArgumentsOf(decoded)

	assert.Equal(t, 100, args.Int("q", 100))
	assert.Equal(t, 100, args.Int("big", 100))
	assert.Equal(t, 100, args.Int("neg", 100))
	assert.Equal(t, 70, args.Int("ok", 100))
	assert.Equal(t, 50, args.Int("exp", 100))

	raw := Arguments{"nan": math.NaN(), "inf": math.Inf(1), "huge": uint64(math.MaxUint64)}
	assert.Equal(t, 3, raw.Int("nan", 3))
	assert.Equal(t, 3, raw.Int("inf", 3))
	assert.Equal(t, 3, raw.Int("huge", 3))
}

func TestResponseFor(t *testing.T) {
	assert.Equal(t, Success("ok"), ResponseFor("ok", nil))

	r := ResponseFor(nil, &Error{Code: "CAMERA_IN_USE", Message: "busy", Details: "dev0"})
	assert.Equal(t, StatusError, r.Status)
	assert.Equal(t, "CAMERA_IN_USE", r.Code)
	assert.Equal(t, "dev0", r.Details)

	r = ResponseFor(nil, errors.New("boom"))
	assert.Equal(t, CodeInternal, r.Code)
	assert.Equal(t, "boom", r.Message)
}

func TestResponse_JSON(t *testing.T) {
	data, err := json.Marshal(Success(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"success","result":null}`, string(data))

	data, err = json.Marshal(Failure("X", "y", nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"error","result":null,"code":"X","message":"y"}`, string(data))
}

func TestDispatcher_RoutesAndNotImplemented(t *testing.T) {
	d := NewDispatcher("test")
	defer d.Close()

	d.Register("echo", func(ctx context.Context, args Arguments) (interface{}, error) {
		return args.String("v", ""), nil
	})
	d.Register("fail", func(ctx context.Context, args Arguments) (interface{}, error) {
		return nil, NewError("NOPE", "did not work")
	})

	r, err := d.Invoke(context.Background(), MethodCall{Method: "echo", Arguments: map[string]interface{}{"v": "hi"}})
	require.NoError(t, err)
	assert.Equal(t, Success("hi"), r)

	r, err = d.Invoke(context.Background(), MethodCall{Method: "fail"})
	require.NoError(t, err)
	assert.Equal(t, "NOPE", r.Code)

	r, err = d.Invoke(context.Background(), MethodCall{Method: "unknown"})
	require.NoError(t, err)
	assert.Equal(t, StatusNotImplemented, r.Status)

	assert.Equal(t, []string{"echo", "fail"}, d.Methods())
}

func TestDispatcher_SerializesCalls(t *testing.T) {
	d := NewDispatcher("test")
	defer d.Close()

	var mu sync.Mutex
	active, peak, total := 0, 0, 0
	d.Register("work", func(ctx context.Context, args Arguments) (interface{}, error) {
		mu.Lock()
		active++
		if active > peak {
			peak = active
		}
		mu.Unlock()
		time.Sleep(2 * time.Millisecond)
		mu.Lock()
		active--
		total++
		mu.Unlock()
		return nil, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := d.Invoke(context.Background(), MethodCall{Method: "work"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, peak)
	assert.Equal(t, 10, total)
}

func TestDispatcher_PanicBecomesError(t *testing.T) {
	d := NewDispatcher("test")
	defer d.Close()
	d.Register("panic", func(ctx context.Context, args Arguments) (interface{}, error) {
		panic("kaboom")
	})

	r, err := d.Invoke(context.Background(), MethodCall{Method: "panic"})
	require.NoError(t, err)
	assert.Equal(t, CodeInternal, r.Code)
	assert.Contains(t, r.Message, "kaboom")

	d.Register("ok", func(ctx context.Context, args Arguments) (interface{}, error) { return 1, nil })
	r, err = d.Invoke(context.Background(), MethodCall{Method: "ok"})
	require.NoError(t, err)
	assert.Equal(t, 1, r.Result, "dispatcher survives a panic")
}

func TestDispatcher_ContextAndClose(t *testing.T) {
	d := NewDispatcher("test")
	release := make(chan struct{})
	d.Register("block", func(ctx context.Context, args Arguments) (interface{}, error) {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil, ctx.Err()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := d.Invoke(ctx, MethodCall{Method: "block"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	d.Close()
	d.Close()

	_, err = d.Invoke(context.Background(), MethodCall{Method: "block"})
	assert.ErrorIs(t, err, ErrClosed)
}
