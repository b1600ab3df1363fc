// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package rpctesting provides an in-memory transport for exercising an
// rpc.Conn without a network.
package rpctesting

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/juju/errors"

	"github.com/juju/xorpc/rpc"
	"github.com/juju/xorpc/rpc/jsoncodec"
)

// ErrClosed is returned by a closed Conn.
const ErrClosed = errors.ConstError("rpctesting: connection closed")

// Conn is a jsoncodec.MessageConn controlled by a test. Messages written
// by the client are queued for Next; messages passed to Deliver are
// returned by ReadMessage in order.
type Conn struct {
	written  chan []byte
	incoming chan []byte

	mu       sync.Mutex
	closed   chan struct{}
	readErr  error
	writeErr error
	hold     chan struct{}
	closes   int
	nwritten int
}

var _ jsoncodec.MessageConn = (*Conn)(nil)

// NewConn returns a new, open Conn.
func NewConn() *Conn {
	return &Conn{
		written:  make(chan []byte, 256),
		incoming: make(chan []byte, 256),
		closed:   make(chan struct{}),
	}
}

// Dialer returns an rpc.Dialer that hands out a jsoncodec codec on c.
func (c *Conn) Dialer() rpc.Dialer {
	return rpc.DialerFunc(func(context.Context) (rpc.Codec, error) {
		return jsoncodec.New(c), nil
	})
}

// ReadMessage implements jsoncodec.MessageConn.
func (c *Conn) ReadMessage() ([]byte, error) {
	select {
	case data := <-c.incoming:
		return data, nil
	case <-c.closed:
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.readErr != nil {
			return nil, c.readErr
		}
		return nil, io.EOF
	}
}

// WriteMessage implements jsoncodec.MessageConn.
func (c *Conn) WriteMessage(data []byte) error {
	select {
	case <-c.closed:
		return ErrClosed
	default:
	}
	msg := append([]byte(nil), data...)
	c.mu.Lock()
	if err := c.writeErr; err != nil {
		c.mu.Unlock()
		return err
	}
	c.nwritten++
	c.mu.Unlock()
	select {
	case c.written <- msg:
		return nil
	case <-c.closed:
		return ErrClosed
	}
}

// Close implements jsoncodec.MessageConn.
func (c *Conn) Close() error {
	c.mu.Lock()
	hold := c.hold
	c.mu.Unlock()
	if hold != nil {
		<-hold
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closes++
	if c.closes == 1 {
		close(c.closed)
	}
	return nil
}

// Deliver queues a frame to be read by the client.
func (c *Conn) Deliver(frame string) {
	c.incoming <- []byte(frame)
}

// Fail makes the transport break: pending and future reads return err.
func (c *Conn) Fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readErr = err
	c.closes++
	if c.closes == 1 {
		close(c.closed)
	}
}

// FailWrites makes every later write return err.
func (c *Conn) FailWrites(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeErr = err
}

// HoldClose makes Close block until the returned function is called.
func (c *Conn) HoldClose() (release func()) {
	hold := make(chan struct{})
	c.mu.Lock()
	c.hold = hold
	c.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(hold) }) }
}

// Next returns the next frame written by the client, waiting at most
// timeout for it.
func (c *Conn) Next(timeout time.Duration) ([]byte, error) {
	select {
	case data := <-c.written:
		return data, nil
	case <-time.After(timeout):
		return nil, errors.Timeoutf("waiting for written frame")
	}
}

// Written returns the number of frames written so far.
func (c *Conn) Written() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nwritten
}

// Closes returns how many times the transport has been closed or failed.
func (c *Conn) Closes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closes
}
