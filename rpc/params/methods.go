// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package params

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/juju/errors"
)

// MethodInfo describes a method as reported by system.getMethodsInfo.
type MethodInfo struct {
	Description string               `json:"description,omitempty"`
	Permission  string               `json:"permission,omitempty"`
	Params      map[string]ParamInfo `json:"params,omitempty"`
}

// ParamInfo describes a single method parameter.
type ParamInfo struct {
	Type        Types  `json:"type,omitempty"`
	Optional    bool   `json:"optional,omitempty"`
	Description string `json:"description,omitempty"`
}

// Types holds the accepted types of a parameter. On the wire it is
// either a single string or an array of strings.
type Types []string

// String returns the types separated by "|".
func (t Types) String() string {
	return strings.Join(t, "|")
}

// MarshalJSON implements json.Marshaler.
func (t Types) MarshalJSON() ([]byte, error) {
	if len(t) == 1 {
		return json.Marshal(t[0])
	}
	return json.Marshal([]string(t))
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Types) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*t = Types{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return errors.NotValidf("parameter type %s", data)
	}
	*t = many
	return nil
}

// Required returns the sorted names of the parameters that must be set.
func (m MethodInfo) Required() []string {
	var names []string
	for name, p := range m.Params {
		if !p.Optional {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Signature renders a one line usage string for the method, such as
//
//	vm.create name_label=<string> [memory=<integer|string>]
//
// Optional parameters are bracketed.
func (m MethodInfo) Signature(name string) string {
	names := make([]string, 0, len(m.Params))
	for p := range m.Params {
		names = append(names, p)
	}
	sort.Strings(names)

	parts := []string{name}
	for _, p := range names {
		info := m.Params[p]
		s := p + "="
		if len(info.Type) > 0 {
			s += "<" + info.Type.String() + ">"
		}
		if info.Optional {
			s = "[" + s + "]"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}
