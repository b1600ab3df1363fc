// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package params

import "encoding/json"

// Well known object types.
const (
	TypeVM         = "VM"
	TypeVMTemplate = "VM-template"
	TypeVDI        = "VDI"
	TypeSR         = "SR"
	TypeHost       = "host"
	TypePool       = "pool"
	TypeNetwork    = "network"
)

// ObjectFilter selects objects by property. Empty fields are not sent.
type ObjectFilter struct {
	Type      string
	NameLabel string

	// Properties holds any further properties to match.
	Properties map[string]any
}

// MarshalJSON implements json.Marshaler.
func (f ObjectFilter) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(f.Properties)+2)
	for k, v := range f.Properties {
		m[k] = v
	}
	if f.Type != "" {
		m["type"] = f.Type
	}
	if f.NameLabel != "" {
		m["name_label"] = f.NameLabel
	}
	return json.Marshal(m)
}

// GetAllObjectsArgs holds the params of xo.getAllObjects.
type GetAllObjectsArgs struct {
	Filter ObjectFilter `json:"filter"`
	Limit  int          `json:"limit,omitempty"`
}
