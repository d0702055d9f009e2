package camera

import (
	"context"
	"errors"
	"fmt"
)

// ErrorCode tags the stage-specific reason a capture failed. Only the code
// and its fixed message cross the method channel.
type ErrorCode string

const (
	CodeInitFailed                   ErrorCode = "CAMERA_INIT_FAILED"
	CodeNotSupported                 ErrorCode = "CAMERA_NOT_SUPPORTED"
	CodeNoCameraFound                ErrorCode = "NO_CAMERA_FOUND"
	CodeNoCameraDevicesFound         ErrorCode = "NO_CAMERA_DEVICES_FOUND"
	CodeDeviceInvalidated            ErrorCode = "CAMERA_DEVICE_INVALIDATED"
	CodeAccessDenied                 ErrorCode = "CAMERA_ACCESS_DENIED"
	CodeInUse                        ErrorCode = "CAMERA_IN_USE"
	CodeActivationFailed             ErrorCode = "CAMERA_ACTIVATION_FAILED"
	CodeSourceReaderCreationFailed   ErrorCode = "SOURCE_READER_CREATION_FAILED"
	CodeReaderAccessDenied           ErrorCode = "READER_ACCESS_DENIED"
	CodeMediaTypeNotSupported        ErrorCode = "MEDIA_TYPE_NOT_SUPPORTED"
	CodeMediaTypeConfigurationFailed ErrorCode = "MEDIA_TYPE_CONFIGURATION_FAILED"
	CodeStreamingStartFailed         ErrorCode = "STREAMING_START_FAILED"
	CodeDisconnected                 ErrorCode = "CAMERA_DISCONNECTED"
	CodeCaptureAccessDenied          ErrorCode = "CAPTURE_ACCESS_DENIED"
	CodeFrameReadFailed              ErrorCode = "FRAME_READ_FAILED"
	CodeFrameCaptureFailed           ErrorCode = "FRAME_CAPTURE_FAILED"
	CodeCaptureTimeout               ErrorCode = "CAPTURE_TIMEOUT"
	CodeBufferLockFailed             ErrorCode = "BUFFER_LOCK_FAILED"
	CodeMediaTypeQueryFailed         ErrorCode = "MEDIA_TYPE_QUERY_FAILED"
	CodeBitmapCreationFailed         ErrorCode = "BITMAP_CREATION_FAILED"
	CodeFileProcessingError          ErrorCode = "FILE_PROCESSING_ERROR"
)

var messages = map[ErrorCode]string{
	CodeInitFailed:                   "Failed to initialize the camera subsystem",
	CodeNotSupported:                 "Camera capture is not supported on this platform",
	CodeNoCameraFound:                "No camera found on this device",
	CodeNoCameraDevicesFound:         "No camera devices available",
	CodeDeviceInvalidated:            "Camera device is no longer available",
	CodeAccessDenied:                 "Camera access denied. Please check privacy settings",
	CodeInUse:                        "Camera is being used by another application",
	CodeActivationFailed:             "Failed to activate camera",
	CodeSourceReaderCreationFailed:   "Failed to create camera reader",
	CodeReaderAccessDenied:           "Access denied while configuring camera reader",
	CodeMediaTypeNotSupported:        "Camera does not support the required image format",
	CodeMediaTypeConfigurationFailed: "Failed to configure camera image format",
	CodeStreamingStartFailed:         "Failed to start camera streaming",
	CodeDisconnected:                 "Camera was disconnected during capture",
	CodeCaptureAccessDenied:          "Access denied during capture",
	CodeFrameReadFailed:              "Failed to read frame from camera",
	CodeFrameCaptureFailed:           "Failed to capture frame",
	CodeCaptureTimeout:               "Timed out waiting for a camera frame",
	CodeBufferLockFailed:             "Failed to access frame data",
	CodeMediaTypeQueryFailed:         "Failed to read camera image format",
	CodeBitmapCreationFailed:         "Failed to create image from frame",
	CodeFileProcessingError:          "Failed to save captured photo",
}

// Message returns the fixed human readable text for the code
func (c ErrorCode) Message() string {
	if m, ok := messages[c]; ok {
		return m
	}
	return "Unknown camera error: " + string(c)
}

// Codes lists every known code in declaration order
func Codes() []ErrorCode {
	return []ErrorCode{
		CodeInitFailed, CodeNotSupported, CodeNoCameraFound, CodeNoCameraDevicesFound,
		CodeDeviceInvalidated, CodeAccessDenied, CodeInUse, CodeActivationFailed,
		CodeSourceReaderCreationFailed, CodeReaderAccessDenied, CodeMediaTypeNotSupported,
		CodeMediaTypeConfigurationFailed, CodeStreamingStartFailed, CodeDisconnected,
		CodeCaptureAccessDenied, CodeFrameReadFailed, CodeFrameCaptureFailed, CodeCaptureTimeout,
		CodeBufferLockFailed, CodeMediaTypeQueryFailed, CodeBitmapCreationFailed, CodeFileProcessingError,
	}
}

// Backend sentinels. Platforms wrap their native failures with these so the
// pipeline can pick the right code for the stage it is in.
var (
	ErrNotSupported         = errors.New("camera capture not supported")
	ErrDeviceInvalidated    = errors.New("capture device invalidated")
	ErrAccessDenied         = errors.New("camera access denied")
	ErrDeviceInUse          = errors.New("capture device in use")
	ErrUnsupportedMediaType = errors.New("media type not supported")
	ErrDeviceDisconnected   = errors.New("capture device disconnected")
	ErrStreamingStart       = errors.New("streaming failed to start")
)

// Error is a failed capture. Stage is the last stage that completed before
// the failure; Err is the backend cause and is only logged.
type Error struct {
	Code  ErrorCode
	Stage State
	Err   error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %v", e.Code, e.Stage, e.Err)
	}
	return fmt.Sprintf("%s (%s)", e.Code, e.Stage)
}

func (e *Error) Unwrap() error { return e.Err }

// Message returns the fixed caller-facing message
func (e *Error) Message() string { return e.Code.Message() }

func newError(stage State, code ErrorCode, cause error) *Error {
	return &Error{Code: code, Stage: stage, Err: cause}
}

// CodeOf extracts the code carried by err. ok is false when err is not a
// camera error.
func CodeOf(err error) (ErrorCode, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code, true
	}
	return "", false
}

func activationCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrDeviceInvalidated), errors.Is(err, ErrDeviceDisconnected):
		return CodeDeviceInvalidated
	case errors.Is(err, ErrAccessDenied):
		return CodeAccessDenied
	case errors.Is(err, ErrDeviceInUse):
		return CodeInUse
	}
	return CodeActivationFailed
}

func readerCreationCode(err error) ErrorCode {
	if errors.Is(err, ErrAccessDenied) {
		return CodeReaderAccessDenied
	}
	return CodeSourceReaderCreationFailed
}

func mediaTypeCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrUnsupportedMediaType):
		return CodeMediaTypeNotSupported
	case errors.Is(err, ErrAccessDenied):
		return CodeReaderAccessDenied
	}
	return CodeMediaTypeConfigurationFailed
}

func readCode(err error) ErrorCode {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return CodeCaptureTimeout
	case errors.Is(err, ErrStreamingStart):
		return CodeStreamingStartFailed
	case errors.Is(err, ErrDeviceDisconnected), errors.Is(err, ErrDeviceInvalidated):
		return CodeDisconnected
	case errors.Is(err, ErrAccessDenied):
		return CodeCaptureAccessDenied
	}
	return CodeFrameReadFailed
}
