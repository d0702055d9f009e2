//go:build gocv

package backend

import (
	"github.com/SwanFlutter/image-picker-master/internal/camera"
	"github.com/SwanFlutter/image-picker-master/internal/camera/gocvcam"
)

func init() {
	Register("gocv", func(s Settings) (camera.Platform, error) {
		return gocvcam.New(gocvcam.Options{Width: s.Width, Height: s.Height}), nil
	}, true)
}
