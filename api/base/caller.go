// Copyright 2015, 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package base holds the interfaces shared by the API client facades.
package base

import (
	"context"

	"github.com/juju/errors"

	"github.com/juju/xorpc/rpc/params"
)

// APICaller is implemented by the client-facing connection used by the
// facades. *rpc.Conn satisfies it.
type APICaller interface {
	// Call invokes the named remote method and decodes its result into
	// result, which should be a pointer or nil.
	Call(ctx context.Context, method string, args, result any) error
}

// CallRequest invokes req on caller. Errors returned by the server for
// well known failures are given a juju/errors type.
func CallRequest(ctx context.Context, caller APICaller, req *params.Request, result any) error {
	if req == nil || req.Method == "" {
		return errors.NotValidf("empty request")
	}
	err := caller.Call(ctx, req.Method, req, result)
	return errors.Trace(params.TranslateWellKnownError(err))
}
