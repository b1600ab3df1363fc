// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package rpc

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/juju/errors"
)

const (
	// ErrNotConnected is returned when a call is made on a connection
	// that is not in the Connected state.
	ErrNotConnected = errors.ConstError("rpc: not connected")

	// ErrAlreadyConnected is returned when Connect is called on a
	// connection that is not Disconnected.
	ErrAlreadyConnected = errors.ConstError("rpc: already connected")

	// ErrDuplicateID is returned when a request id is registered while
	// another request with the same id is still pending.
	ErrDuplicateID = errors.ConstError("rpc: duplicate request id")

	// ErrConnectionClosed is returned to every pending call when the
	// connection is torn down before its response arrives.
	ErrConnectionClosed = errors.ConstError("rpc: connection closed")

	// ErrShutdown is returned when a connection that has been torn down
	// is used again.
	ErrShutdown = errors.ConstError("rpc: connection is shut down")

	// ErrCallTimeout is returned when no response arrives within the
	// call timeout.
	ErrCallTimeout = errors.ConstError("rpc: call timed out")
)

// IsShutdownErr returns true if the error reports that the connection
// went away, either before or while the call was in progress.
func IsShutdownErr(err error) bool {
	return errors.Is(err, ErrShutdown) || errors.Is(err, ErrConnectionClosed)
}

// RequestError represents an error returned by the server in place of a
// result.
type RequestError struct {
	// Code holds the numeric JSON-RPC error code.
	Code int

	// Message holds the human readable error message.
	Message string

	// Data holds the decoded "data" member of the error, if any.
	Data any

	// Payload holds the complete error object as sent by the server.
	Payload map[string]any
}

func (e *RequestError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "unknown error"
	}
	if e.Code != 0 {
		return fmt.Sprintf("request error: %s (code %d)", msg, e.Code)
	}
	return "request error: " + msg
}

// ErrorCode returns the error code associated with the error.
func (e *RequestError) ErrorCode() int {
	return e.Code
}

// UnmarshalData unmarshals the Data member of the error into the value
// pointed to by to.
func (e *RequestError) UnmarshalData(to any) error {
	if reflect.ValueOf(to).Kind() != reflect.Ptr {
		return errors.New("UnmarshalData expects a pointer as an argument")
	}
	data, err := json.Marshal(e.Data)
	if err != nil {
		return errors.Annotate(err, "could not marshal error data")
	}
	if err := json.Unmarshal(data, to); err != nil {
		return errors.Annotate(err, "could not unmarshal error data to provided target")
	}
	return nil
}
