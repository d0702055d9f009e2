// Package imaging turns raw frames and picked images into JPEG files.
package imaging

// DefaultQuality is the encoder level used when compression is disabled
const DefaultQuality = 85

// Clamp limits an encoder quality to [0, 100]
func Clamp(quality int) int {
	switch {
	case quality < 0:
		return 0
	case quality > 100:
		return 100
	}
	return quality
}

// EffectiveQuality returns the level the encoder should run at
func EffectiveQuality(allowCompression bool, quality int) int {
	if !allowCompression {
		return DefaultQuality
	}
	return Clamp(quality)
}

// jpegQuality maps a clamped level onto the range image/jpeg accepts
func jpegQuality(quality int) int {
	if q := Clamp(quality); q > 0 {
		return q
	}
	return 1
}
