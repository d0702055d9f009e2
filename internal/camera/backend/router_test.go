package backend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SwanFlutter/image-picker-master/internal/camera"
	"github.com/SwanFlutter/image-picker-master/internal/camera/synthetic"
)

type unavailable struct{ name string }

func (u unavailable) Name() string    { return u.name }
func (u unavailable) Startup() error  { return errors.New("missing binary") }
func (u unavailable) Shutdown() error { return nil }
func (u unavailable) EnumerateDevices(context.Context) ([]camera.Device, error) {
	return nil, errors.New("not started")
}
func (u unavailable) Activate(context.Context, camera.Device) (camera.Source, error) {
	return nil, errors.New("not started")
}

func TestRouter_FallsThroughToFirstWorking(t *testing.T) {
	r := NewRouter(unavailable{"ffmpeg"}, synthetic.New(synthetic.Options{}), unavailable{"later"})
	require.NoError(t, r.Startup())
	assert.Equal(t, "synthetic", r.Name())

	devs, err := r.EnumerateDevices(context.Background())
	require.NoError(t, err)
	assert.Len(t, devs, 1)

	require.NoError(t, r.Shutdown())
	_, err = r.EnumerateDevices(context.Background())
	assert.ErrorIs(t, err, camera.ErrNotSupported)
}

func TestRouter_NothingAvailableIsNotSupported(t *testing.T) {
	r := NewRouter(unavailable{"ffmpeg"}, unavailable{"gstreamer"})
	err := r.Startup()
	assert.ErrorIs(t, err, camera.ErrNotSupported)
	assert.Contains(t, err.Error(), "gstreamer: missing binary")

	code, _ := camera.CodeOf(camera.Start(r).Err())
	assert.Equal(t, camera.CodeNotSupported, code)
}

func TestOpen(t *testing.T) {
	r, err := Open("Synthetic", Settings{Width: 16, Height: 16})
	require.NoError(t, err)
	require.NoError(t, r.Startup())
	assert.Equal(t, "synthetic", r.Name())

	_, err = Open("quicktime", Settings{})
	assert.ErrorContains(t, err, "unknown camera backend")

	_, err = Open("synthetic", Settings{Faults: "read=gremlins"})
	assert.Error(t, err)

	r, err = Open("", Settings{})
	require.NoError(t, err)
	assert.Equal(t, Auto, r.Name())
	assert.GreaterOrEqual(t, len(r.candidates), 2)
}

func TestNames(t *testing.T) {
	names := Names()
	assert.Equal(t, Auto, names[0])
	assert.Contains(t, names, "ffmpeg")
	assert.Contains(t, names, "gstreamer")
	assert.Contains(t, names, "synthetic")
}
