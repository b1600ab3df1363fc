// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package params holds the types sent to and received from the remote
// JSON-RPC API.
package params

import (
	"encoding/json"
	"reflect"
	"sort"
	"strings"

	"github.com/juju/collections/set"
	"github.com/juju/errors"
)

// Request is a method call with an explicit set of named parameters.
// It marshals as its parameter object, so it can be passed directly as
// the params of rpc.Conn.Call.
type Request struct {
	Method string
	params map[string]any
}

// NewRequest returns a request for method with no parameters.
func NewRequest(method string) *Request {
	return &Request{
		Method: method,
		params: make(map[string]any),
	}
}

// Set sets a parameter. The key is always sent, even when value is nil.
func (r *Request) Set(key string, value any) *Request {
	r.params[key] = value
	return r
}

// SetOptional sets a parameter unless value is nil or a nil pointer,
// map or slice.
func (r *Request) SetOptional(key string, value any) *Request {
	if isNil(value) {
		delete(r.params, key)
		return r
	}
	return r.Set(key, value)
}

// Params returns a copy of the parameters.
func (r *Request) Params() map[string]any {
	out := make(map[string]any, len(r.params))
	for k, v := range r.params {
		out[k] = v
	}
	return out
}

// Keys returns the sorted parameter names.
func (r *Request) Keys() []string {
	keys := make([]string, 0, len(r.params))
	for k := range r.params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MarshalJSON implements json.Marshaler.
func (r *Request) MarshalJSON() ([]byte, error) {
	if len(r.params) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(r.params)
}

// Validate checks the request against the parameters a method declares.
// It returns a NotValid error naming any missing required parameters or
// parameters the method does not accept.
func (r *Request) Validate(info MethodInfo) error {
	given := set.NewStrings(r.Keys()...)
	declared := set.NewStrings()
	required := set.NewStrings()
	for name, p := range info.Params {
		declared.Add(name)
		if !p.Optional {
			required.Add(name)
		}
	}
	if missing := required.Difference(given); !missing.IsEmpty() {
		return errors.NotValidf("%q without required parameters %s", r.Method, strings.Join(missing.SortedValues(), ", "))
	}
	if unknown := given.Difference(declared); !unknown.IsEmpty() {
		return errors.NotValidf("%q with unknown parameters %s", r.Method, strings.Join(unknown.SortedValues(), ", "))
	}
	return nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
