package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"os"

	// Decoders for every extension the picker recompresses
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/SwanFlutter/image-picker-master/internal/logger"
	"github.com/SwanFlutter/image-picker-master/internal/mime"
)

const partialSuffix = ".partial"

// WriteJPEG encodes img to path at the given quality. The data is written
// to a sibling .partial file and renamed into place, so path either holds
// a complete JPEG or does not exist.
func WriteJPEG(path string, img image.Image, quality int) (err error) {
	tmp := path + partialSuffix
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()

	if err = jpeg.Encode(f, img, &jpeg.Options{Quality: jpegQuality(quality)}); err != nil {
		return fmt.Errorf("failed to encode JPEG: %w", err)
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("failed to flush output file: %w", err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to move output file into place: %w", err)
	}
	return nil
}

// Decode reads any supported raster image from path
func Decode(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// Recompress re-encodes the image at src as a JPEG at dst. Transparent
// areas are flattened onto white. Content that does not sniff as a
// raster image is rejected before decoding.
func Recompress(src, dst string, quality int) error {
	if !mime.IsRasterContent(src) {
		return fmt.Errorf("%s is not a raster image", src)
	}

	img, format, err := Decode(src)
	if err != nil {
		return err
	}

	b := img.Bounds()
	flat := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(flat, flat.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), img, b.Min, draw.Over)

	if err := WriteJPEG(dst, flat, quality); err != nil {
		return err
	}

	logger.WithComponent("imaging").Debug().
		Str("src", src).
		Str("format", format).
		Int("quality", Clamp(quality)).
		Msg("Image recompressed")
	return nil
}
