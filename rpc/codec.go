// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package rpc

import "context"

// A Codec implements reading and writing of messages in an RPC session.
// The RPC code calls WriteMessage to write a request to the connection
// and calls ReadHeader and ReadBody in pairs to read responses.
type Codec interface {
	// ReadHeader reads the next response header into hdr. Frames that
	// cannot be decoded, and frames that carry no request id, are
	// dropped by the codec and never reach the caller. An error is only
	// returned when the underlying transport fails or is closed.
	ReadHeader(hdr *Header) error

	// ReadBody decodes the result of the response most recently read
	// by ReadHeader into body. A nil body discards the result.
	ReadBody(body any) error

	// WriteMessage writes a request with the given header and params.
	// If the params cannot be encoded it returns an error satisfying
	// errors.Is(err, errors.NotValid) and nothing is written. Any other
	// error means the transport has failed.
	WriteMessage(hdr *Header, params any) error

	// Close closes the codec. It may be called concurrently with the
	// other methods and must cause a blocked ReadHeader to return.
	Close() error
}

// Header is the envelope of a single message, without its body. A
// request carries a Method; a response carries either an Error or a
// result body.
type Header struct {
	// RequestId holds the correlation id of the request.
	RequestId uint64

	// Method holds the name of the remote method to invoke.
	Method string

	// Error holds the error returned by the server, if any.
	Error *RequestError
}

// Dialer opens the transport underlying a connection.
type Dialer interface {
	Dial(ctx context.Context) (Codec, error)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(ctx context.Context) (Codec, error)

// Dial implements Dialer.
func (f DialerFunc) Dial(ctx context.Context) (Codec, error) {
	return f(ctx)
}
