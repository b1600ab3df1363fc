// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package objects provides lookups in the server's object directory.
package objects

import (
	"context"

	"github.com/juju/collections/set"
	"github.com/juju/errors"
	"github.com/mitchellh/mapstructure"

	"github.com/juju/xorpc/api/base"
	"github.com/juju/xorpc/rpc/params"
)

// Object is an entry of the object directory.
type Object struct {
	ID              string `mapstructure:"id"`
	UUID            string `mapstructure:"uuid"`
	Type            string `mapstructure:"type"`
	NameLabel       string `mapstructure:"name_label"`
	NameDescription string `mapstructure:"name_description"`

	// Attributes holds every other property of the object.
	Attributes map[string]any `mapstructure:",remain"`
}

// Client provides access to the object directory.
type Client struct {
	caller base.APICaller
}

// NewClient returns a new objects client.
func NewClient(caller base.APICaller) *Client {
	return &Client{caller: caller}
}

// All returns the objects matching filter, keyed by id.
func (c *Client) All(ctx context.Context, filter params.ObjectFilter) (map[string]Object, error) {
	var raw map[string]map[string]any
	req := params.NewRequest("xo.getAllObjects").Set("filter", filter)
	if err := base.CallRequest(ctx, c.caller, req, &raw); err != nil {
		return nil, errors.Trace(err)
	}
	result := make(map[string]Object, len(raw))
	for id, props := range raw {
		obj, err := decodeObject(props)
		if err != nil {
			return nil, errors.Annotatef(err, "decoding object %q", id)
		}
		if obj.ID == "" {
			obj.ID = id
		}
		result[id] = obj
	}
	return result, nil
}

// FindByName returns the sorted ids of the objects of the given type
// whose name label is name.
func (c *Client) FindByName(ctx context.Context, objType, name string) ([]string, error) {
	found, err := c.All(ctx, params.ObjectFilter{
		Type:      objType,
		NameLabel: name,
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	ids := set.NewStrings()
	for id := range found {
		ids.Add(id)
	}
	return ids.SortedValues(), nil
}

// Get returns the object of the given type with the given id.
func (c *Client) Get(ctx context.Context, objType, id string) (Object, error) {
	found, err := c.All(ctx, params.ObjectFilter{Type: objType})
	if err != nil {
		return Object{}, errors.Trace(err)
	}
	obj, ok := found[id]
	if !ok {
		return Object{}, errors.NotFoundf("%s %q", objType, id)
	}
	return obj, nil
}

func decodeObject(props map[string]any) (Object, error) {
	var obj Object
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &obj,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Object{}, errors.Trace(err)
	}
	if err := decoder.Decode(props); err != nil {
		return Object{}, errors.Trace(err)
	}
	return obj, nil
}
