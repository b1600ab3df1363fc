// Copyright 2013, 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package testing provides helpers for testing the API client facades.
package testing

import (
	"context"
	"encoding/json"

	"github.com/juju/errors"

	"github.com/juju/xorpc/api/base"
)

// APICallerFunc is a function type that implements APICaller.
type APICallerFunc func(method string, args, result any) error

var _ base.APICaller = APICallerFunc(nil)

// Call implements base.APICaller.
func (f APICallerFunc) Call(ctx context.Context, method string, args, result any) error {
	return f(method, args, result)
}

// ArgsOf returns args as decoded from its wire form.
func ArgsOf(args any) (map[string]any, error) {
	data, err := json.Marshal(args)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Trace(err)
	}
	return out, nil
}

// FillResponse sets result to value as if value had been sent over the
// wire.
func FillResponse(result, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(json.Unmarshal(data, result))
}
