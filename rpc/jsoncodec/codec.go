// Copyright 2012, 2013, 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package jsoncodec implements the JSON-RPC 2.0 wire format used by the
// rpc package, over any transport that carries one message per frame.
package jsoncodec

import (
	"encoding/json"
	"io"
	"sync"
	"sync/atomic"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/juju/xorpc/rpc"
)

var logger = loggo.GetLogger("xorpc.rpc.jsoncodec")

// MessageConn is a transport that carries whole messages.
type MessageConn interface {
	// ReadMessage blocks until the next message arrives. It returns
	// io.EOF when the peer closes the connection cleanly.
	ReadMessage() ([]byte, error)

	// WriteMessage writes a single message.
	WriteMessage(data []byte) error

	// Close closes the transport, unblocking ReadMessage.
	Close() error
}

// Codec implements rpc.Codec on top of a MessageConn.
type Codec struct {
	conn MessageConn

	// result holds the result of the response last returned by
	// ReadHeader. It is only used by the reading goroutine.
	result json.RawMessage

	closing   int32
	closeOnce sync.Once
	closeErr  error
}

var _ rpc.Codec = (*Codec)(nil)

// New returns an rpc.Codec that uses conn for transport.
func New(conn MessageConn) *Codec {
	return &Codec{conn: conn}
}

// ReadHeader implements rpc.Codec. Malformed frames, notifications and
// requests initiated by the server are logged and skipped.
func (c *Codec) ReadHeader(hdr *rpc.Header) error {
	for {
		data, err := c.conn.ReadMessage()
		if err != nil {
			if atomic.LoadInt32(&c.closing) == 1 {
				// If we're closing, return io.EOF to indicate that
				// the connection has gone away rather than failed.
				return io.EOF
			}
			return errors.Trace(err)
		}
		if logger.IsTraceEnabled() {
			logger.Tracef("<- %s", data)
		}
		in, err := DecodeFrame(data)
		switch {
		case err != nil:
			logger.Debugf("dropping frame: %v", err)
			continue
		case in.IsNotification():
			logger.Tracef("dropping notification %q", in.Method)
			continue
		case in.Method != "":
			logger.Debugf("dropping server request %q (id %d)", in.Method, in.ID)
			continue
		}
		*hdr = rpc.Header{
			RequestId: in.ID,
			Error:     in.Error,
		}
		c.result = in.Result
		return nil
	}
}

// ReadBody implements rpc.Codec.
func (c *Codec) ReadBody(body any) error {
	result := c.result
	c.result = nil
	if body == nil || len(result) == 0 {
		return nil
	}
	return errors.Trace(json.Unmarshal(result, body))
}

// WriteMessage implements rpc.Codec.
func (c *Codec) WriteMessage(hdr *rpc.Header, params any) error {
	data, err := EncodeRequest(hdr.RequestId, hdr.Method, params)
	if err != nil {
		return errors.Trace(err)
	}
	if logger.IsTraceEnabled() {
		logger.Tracef("-> %s", data)
	}
	return errors.Trace(c.conn.WriteMessage(data))
}

// Close implements rpc.Codec. Only the first call closes the transport.
func (c *Codec) Close() error {
	c.closeOnce.Do(func() {
		atomic.StoreInt32(&c.closing, 1)
		c.closeErr = c.conn.Close()
	})
	return errors.Trace(c.closeErr)
}
