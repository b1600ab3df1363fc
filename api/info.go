// Copyright 2012, 2013, 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package api

import (
	"net/http"
	"net/url"

	"github.com/juju/errors"
)

// Info encapsulates information about a server holding the JSON-RPC API
// and how to reach it.
type Info struct {
	// Addr holds the host:port of the server. The API is expected at
	// ws://<Addr>/api/.
	Addr string

	// URL, if set, is the complete websocket URL of the API. It takes
	// precedence over Addr.
	URL string

	// Header holds additional headers sent with the websocket
	// handshake.
	Header http.Header
}

// Validate validates the API info.
func (info *Info) Validate() error {
	if info.URL == "" && info.Addr == "" {
		return errors.NotValidf("missing address")
	}
	if info.URL != "" {
		u, err := url.Parse(info.URL)
		if err != nil {
			return errors.NotValidf("URL %q", info.URL)
		}
		if u.Scheme != "ws" && u.Scheme != "wss" {
			return errors.NotValidf("URL scheme %q", u.Scheme)
		}
	}
	return nil
}

// Endpoint returns the websocket URL to dial.
func (info *Info) Endpoint() string {
	if info.URL != "" {
		return info.URL
	}
	u := url.URL{
		Scheme: "ws",
		Host:   info.Addr,
		Path:   "/api/",
	}
	return u.String()
}

// handshakeHeader returns the headers sent with the websocket handshake.
func (info *Info) handshakeHeader() http.Header {
	header := make(http.Header)
	for k, v := range info.Header {
		header[k] = append([]string(nil), v...)
	}
	header.Set("Content-Type", "application/json")
	header.Set("Accept", "application/json-rpc")
	return header
}
