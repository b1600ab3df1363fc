// Copyright 2015, 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package params

import (
	"github.com/juju/errors"

	"github.com/juju/xorpc/rpc"
)

// The error codes defined by JSON-RPC 2.0.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// ErrCode returns the error code associated with the given error, or 0
// if the error was not returned by the server.
func ErrCode(err error) int {
	var reqErr *rpc.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.ErrorCode()
	}
	return 0
}

// TranslateWellKnownError attaches a juju/errors type to the server
// errors that have a local equivalent, so callers can test for them
// with errors.Is. Other errors are returned unchanged.
func TranslateWellKnownError(err error) error {
	switch ErrCode(err) {
	case CodeMethodNotFound:
		return errors.WithType(err, errors.NotImplemented)
	case CodeInvalidParams:
		return errors.WithType(err, errors.NotValid)
	case CodeParseError, CodeInvalidRequest:
		return errors.WithType(err, errors.BadRequest)
	}
	return err
}
