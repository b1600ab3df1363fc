// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package jsoncodec

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/juju/errors"

	"github.com/juju/xorpc/rpc"
)

// Version is the JSON-RPC protocol version carried by every request.
const Version = "2.0"

// ErrMalformed is returned by DecodeFrame for frames that are not a
// JSON-RPC message.
const ErrMalformed = errors.ConstError("malformed frame")

// outMsg is the wire form of a request. The version travels under the
// standard JSON-RPC 2.0 "jsonrpc" key, which is what XO servers expect.
type outMsg struct {
	Version string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	ID      uint64 `json:"id"`
}

// inMsg is the wire form of any inbound frame.
type inMsg struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Result json.RawMessage `json:"result"`
	Error  json.RawMessage `json:"error"`
}

// Inbound is a decoded inbound frame.
type Inbound struct {
	// ID holds the correlation id. It is only meaningful if HasID
	// is true.
	ID    uint64
	HasID bool

	// Method is set on frames initiated by the server.
	Method string

	// Result holds the raw result of a successful response.
	Result json.RawMessage

	// Error holds the error of a failed response.
	Error *rpc.RequestError
}

// IsNotification reports whether the frame correlates to no request.
func (in *Inbound) IsNotification() bool {
	return !in.HasID
}

// EncodeRequest returns the wire form of a request. Nil params are sent
// as an empty object.
func EncodeRequest(id uint64, method string, params any) ([]byte, error) {
	if params == nil {
		params = struct{}{}
	}
	data, err := json.Marshal(outMsg{
		Version: Version,
		Method:  method,
		Params:  params,
		ID:      id,
	})
	if err != nil {
		return nil, errors.WithType(errors.Annotatef(err, "cannot encode %q request", method), errors.NotValid)
	}
	return data, nil
}

// DecodeFrame decodes an inbound frame. It returns an error satisfying
// errors.Is(err, ErrMalformed) if the frame is not a JSON-RPC message.
func DecodeFrame(data []byte) (*Inbound, error) {
	var msg inMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, errors.Annotatef(ErrMalformed, "%v", err)
	}
	in := &Inbound{
		Method: msg.Method,
	}
	if !isNull(msg.ID) {
		id, err := strconv.ParseUint(string(bytes.TrimSpace(msg.ID)), 10, 64)
		if err != nil || id == 0 || id > rpc.MaxRequestID {
			return nil, errors.Annotatef(ErrMalformed, "invalid id %s", msg.ID)
		}
		in.ID = id
		in.HasID = true
	}
	if !isNull(msg.Error) {
		in.Error = decodeError(msg.Error)
		return in, nil
	}
	if len(msg.Result) > 0 {
		in.Result = msg.Result
	}
	return in, nil
}

// decodeError turns an error member into a RequestError. Servers are
// expected to send an object with code, message and data, but anything
// else is kept rather than lost.
func decodeError(raw json.RawMessage) *rpc.RequestError {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return &rpc.RequestError{Message: string(raw)}
	}
	switch v := v.(type) {
	case map[string]any:
		reqErr := &rpc.RequestError{
			Data:    v["data"],
			Payload: v,
		}
		if code, ok := v["code"].(float64); ok {
			reqErr.Code = int(code)
		}
		if message, ok := v["message"].(string); ok {
			reqErr.Message = message
		}
		return reqErr
	case string:
		return &rpc.RequestError{
			Message: v,
			Payload: map[string]any{"message": v},
		}
	}
	return &rpc.RequestError{Message: string(raw)}
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}
