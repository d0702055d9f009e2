package imaging

import (
	"errors"
	"fmt"
	"image"
	"time"
)

// ErrShortBuffer is returned when a frame holds fewer bytes than its geometry needs
var ErrShortBuffer = errors.New("frame buffer shorter than stride*height")

// BytesPerPixel of the 32-bit BGRA layout every reader is configured for
const BytesPerPixel = 4

// Frame is one uncompressed BGRA picture copied out of a media buffer.
// Rows are Stride bytes apart; Stride is Width*4 unless the reader reports padding.
type Frame struct {
	Width     int
	Height    int
	Stride    int
	Pix       []byte
	Timestamp time.Duration
}

// NewFrame wraps pix as a tightly packed BGRA frame
func NewFrame(width, height int, pix []byte) Frame {
	return Frame{Width: width, Height: height, Stride: width * BytesPerPixel, Pix: pix}
}

// Validate checks the geometry against the pixel data
func (f Frame) Validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("invalid frame size %dx%d", f.Width, f.Height)
	}
	stride := f.Stride
	if stride == 0 {
		stride = f.Width * BytesPerPixel
	}
	if stride < f.Width*BytesPerPixel {
		return fmt.Errorf("stride %d below row width %d", stride, f.Width*BytesPerPixel)
	}
	if need := stride * f.Height; len(f.Pix) < need {
		return fmt.Errorf("%w: have %d, need %d", ErrShortBuffer, len(f.Pix), need)
	}
	return nil
}

// ToRGBA converts the BGRA rows into a new RGBA image with opaque alpha.
// Webcam pipelines leave the X byte of RGB32 undefined, so alpha is forced.
func (f Frame) ToRGBA() (*image.RGBA, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	stride := f.Stride
	if stride == 0 {
		stride = f.Width * BytesPerPixel
	}

	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		src := f.Pix[y*stride : y*stride+f.Width*BytesPerPixel]
		dst := img.Pix[y*img.Stride : y*img.Stride+f.Width*BytesPerPixel]
		for x := 0; x < len(src); x += BytesPerPixel {
			dst[x+0] = src[x+2]
			dst[x+1] = src[x+1]
			dst[x+2] = src[x+0]
			dst[x+3] = 0xff
		}
	}
	return img, nil
}

// FromRGBA packs an RGBA image into a BGRA frame. Backends that decode
// into Go images use it to present the layout the pipeline expects.
func FromRGBA(img *image.RGBA) Frame {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := make([]byte, w*h*BytesPerPixel)
	for y := 0; y < h; y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		src := img.Pix[off : off+w*BytesPerPixel]
		dst := pix[y*w*BytesPerPixel : (y+1)*w*BytesPerPixel]
		for x := 0; x < len(src); x += BytesPerPixel {
			dst[x+0] = src[x+2]
			dst[x+1] = src[x+1]
			dst[x+2] = src[x+0]
			dst[x+3] = src[x+3]
		}
	}
	return NewFrame(w, h, pix)
}
