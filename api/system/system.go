// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package system provides access to the introspection methods of the
// API.
package system

import (
	"context"
	"sort"

	"github.com/juju/errors"

	"github.com/juju/xorpc/api/base"
	"github.com/juju/xorpc/rpc/params"
)

// Client provides access to the system methods.
type Client struct {
	caller base.APICaller
}

// NewClient returns a new system client.
func NewClient(caller base.APICaller) *Client {
	return &Client{caller: caller}
}

// MethodsInfo returns the description of every method the server
// provides, keyed by method name.
func (c *Client) MethodsInfo(ctx context.Context) (map[string]params.MethodInfo, error) {
	var result map[string]params.MethodInfo
	req := params.NewRequest("system.getMethodsInfo")
	if err := base.CallRequest(ctx, c.caller, req, &result); err != nil {
		return nil, errors.Trace(err)
	}
	return result, nil
}

// MethodNames returns the sorted names of the methods the server
// provides.
func (c *Client) MethodNames(ctx context.Context) ([]string, error) {
	info, err := c.MethodsInfo(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	names := make([]string, 0, len(info))
	for name := range info {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Method returns the description of the named method.
func (c *Client) Method(ctx context.Context, name string) (params.MethodInfo, error) {
	info, err := c.MethodsInfo(ctx)
	if err != nil {
		return params.MethodInfo{}, errors.Trace(err)
	}
	m, ok := info[name]
	if !ok {
		return params.MethodInfo{}, errors.NotFoundf("method %q", name)
	}
	return m, nil
}

// Validate checks req against the parameters its method declares.
func (c *Client) Validate(ctx context.Context, req *params.Request) error {
	m, err := c.Method(ctx, req.Method)
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(req.Validate(m))
}
