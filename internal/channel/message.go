// Package channel implements the method-channel bridge: call and response
// envelopes, argument accessors and a serial dispatcher.
package channel

import (
	"errors"
	"fmt"
)

// MethodCall is one named invocation from the application layer
type MethodCall struct {
	Method    string      `json:"method"`
	Arguments interface{} `json:"arguments,omitempty"`
}

// Response statuses
const (
	StatusSuccess        = "success"
	StatusError          = "error"
	StatusNotImplemented = "not_implemented"
)

// CodeInternal is reported for handler errors that carry no code of their own
const CodeInternal = "INTERNAL_ERROR"

// Response is the reply envelope. Result is set on success; Code, Message
// and Details on error.
type Response struct {
	Status  string      `json:"status"`
	Result  interface{} `json:"result"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// Success wraps a handler result
func Success(result interface{}) Response {
	return Response{Status: StatusSuccess, Result: result}
}

// Failure builds an error response
func Failure(code, message string, details interface{}) Response {
	return Response{Status: StatusError, Code: code, Message: message, Details: details}
}

// NotImplemented is the reply for an unregistered method
func NotImplemented() Response {
	return Response{Status: StatusNotImplemented}
}

// Error is a coded handler failure. Only Code, Message and Details cross
// the bridge.
type Error struct {
	Code    string
	Message string
	Details interface{}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError creates a coded error without details
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// ResponseFor turns a handler outcome into a response
func ResponseFor(result interface{}, err error) Response {
	if err == nil {
		return Success(result)
	}
	var ce *Error
	if errors.As(err, &ce) {
		return Failure(ce.Code, ce.Message, ce.Details)
	}
	return Failure(CodeInternal, err.Error(), nil)
}
