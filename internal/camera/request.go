package camera

import "github.com/SwanFlutter/image-picker-master/internal/imaging"

// CaptureRequest is parsed from one capturePhoto call and never outlives it
type CaptureRequest struct {
	AllowCompression   bool
	CompressionQuality int
	WithData           bool
}

// DefaultCaptureQuality is the capturePhoto quality when the caller sends none
const DefaultCaptureQuality = 80

// DefaultRequest holds the capturePhoto argument defaults
func DefaultRequest() CaptureRequest {
	return CaptureRequest{AllowCompression: true, CompressionQuality: DefaultCaptureQuality}
}

// Quality is the encoder level this request resolves to
func (r CaptureRequest) Quality() int {
	return imaging.EffectiveQuality(r.AllowCompression, r.CompressionQuality)
}

// State is a pipeline stage
type State int

const (
	StateUninitialized State = iota
	StateDeviceEnumerated
	StateSourceActivated
	StateReaderConfigured
	StateFrameRead
	StateBitmapDecoded
	StateJpegEncoded
	StateDone
)

var stateNames = [...]string{
	"uninitialized",
	"device_enumerated",
	"source_activated",
	"reader_configured",
	"frame_read",
	"bitmap_decoded",
	"jpeg_encoded",
	"done",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}
