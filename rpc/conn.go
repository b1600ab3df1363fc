// Copyright 2012, 2013, 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package rpc implements a client that multiplexes many concurrent calls
// over a single message oriented connection.
//
// Every call is given a request id and registered in a pending table
// before its request is written. A single receive loop per connection
// reads responses, which may arrive in any order, and hands each one to
// the call with the matching id. When the connection fails or is closed
// every pending call is released with ErrConnectionClosed.
package rpc

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"gopkg.in/tomb.v2"
)

var logger = loggo.GetLogger("xorpc.rpc")

// State is the lifecycle state of a connection.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	Closing
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Closing:
		return "closing"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Config holds the configuration of a connection.
type Config struct {
	// Dialer opens the transport when Connect is called.
	Dialer Dialer

	// Clock is used for call timeouts.
	Clock clock.Clock

	// NewID returns request ids. RandomID is used if it is nil.
	NewID IDGenerator

	// CallTimeout bounds how long a call waits for its response.
	// Zero means calls wait until they are answered or the
	// connection goes away.
	CallTimeout time.Duration

	// Observer, if non-nil, is told about every call.
	Observer Observer
}

// Validate returns an error if the config cannot be used.
func (cfg Config) Validate() error {
	if cfg.Dialer == nil {
		return errors.NotValidf("nil Dialer")
	}
	if cfg.Clock == nil {
		return errors.NotValidf("nil Clock")
	}
	if cfg.CallTimeout < 0 {
		return errors.NotValidf("negative CallTimeout")
	}
	return nil
}

// Conn represents an RPC client connection. There may be multiple
// outstanding Calls on a single Conn, and a Conn may be used by multiple
// goroutines simultaneously.
//
// A Conn is connected at most once. Once it has been closed, or its
// transport has failed, a new Conn must be created to reconnect.
type Conn struct {
	dialer      Dialer
	clock       clock.Clock
	newID       IDGenerator
	callTimeout time.Duration
	observer    Observer

	// sending guards the write side of the codec - it ensures
	// that codec.WriteMessage is not called concurrently.
	sending sync.Mutex

	// mutex guards the following values.
	mutex sync.Mutex

	// state holds the lifecycle state of the connection.
	state State

	// codec holds the underlying transport while Connected.
	codec Codec

	// shutdown is set when teardown starts. Once set the connection
	// can never be used again.
	shutdown bool

	// started is set when the receive loop has been started.
	started bool

	// pending holds the calls that are waiting for a response.
	pending *pendingTable

	// tomb tracks the receive loop.
	tomb tomb.Tomb

	// dead is closed when teardown has finished.
	dead chan struct{}
}

// NewConn returns a new, disconnected connection. Conn.Connect must be
// called before any calls are made.
func NewConn(cfg Config) (*Conn, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	conn := &Conn{
		dialer:      cfg.Dialer,
		clock:       cfg.Clock,
		newID:       cfg.NewID,
		callTimeout: cfg.CallTimeout,
		observer:    cfg.Observer,
		pending:     newPendingTable(),
		dead:        make(chan struct{}),
	}
	if conn.newID == nil {
		conn.newID = RandomID
	}
	if conn.observer == nil {
		conn.observer = noopObserver{}
	}
	return conn, nil
}

// Connect opens the transport and starts the receive loop. It returns
// once the connection is established; the receive loop keeps running in
// the background until the connection is torn down.
func (conn *Conn) Connect(ctx context.Context) error {
	conn.mutex.Lock()
	switch {
	case conn.shutdown:
		conn.mutex.Unlock()
		return errors.Trace(ErrShutdown)
	case conn.state != Disconnected:
		state := conn.state
		conn.mutex.Unlock()
		return errors.Annotatef(ErrAlreadyConnected, "connection is %s", state)
	}
	conn.state = Connecting
	conn.mutex.Unlock()

	codec, err := conn.dialer.Dial(ctx)

	conn.mutex.Lock()
	defer conn.mutex.Unlock()
	if err != nil {
		conn.state = Disconnected
		return errors.Annotate(err, "cannot connect")
	}
	if conn.shutdown {
		// Closed while we were dialling.
		conn.state = Disconnected
		if err := codec.Close(); err != nil {
			logger.Debugf("error closing codec: %v", err)
		}
		return errors.Trace(ErrShutdown)
	}
	conn.codec = codec
	conn.state = Connected
	conn.started = true
	conn.tomb.Go(func() error {
		return conn.loop(codec)
	})
	logger.Debugf("connected")
	return nil
}

// State returns the current lifecycle state of the connection.
func (conn *Conn) State() State {
	conn.mutex.Lock()
	defer conn.mutex.Unlock()
	return conn.state
}

// Dead returns a channel that is closed once the connection has been
// torn down, either by Close or because its transport failed.
func (conn *Conn) Dead() <-chan struct{} {
	return conn.dead
}

// Close closes the connection and its transport. Every call still
// waiting for a response fails with ErrConnectionClosed. Close waits for
// the receive loop to stop. It may be called more than once; calls after
// the first have no effect.
func (conn *Conn) Close() error {
	conn.teardown(nil)
	_ = conn.Wait()
	return nil
}

// Kill implements worker.Worker. It stops the connection and releases
// pending calls without waiting for the transport to close.
func (conn *Conn) Kill() {
	if codec, ok := conn.stop(nil); ok {
		go conn.finish(codec)
	}
}

// Wait implements worker.Worker. It blocks until the connection has been
// torn down and returns the transport error that caused it, or nil if
// the connection was closed deliberately.
func (conn *Conn) Wait() error {
	<-conn.dead
	conn.mutex.Lock()
	started := conn.started
	conn.mutex.Unlock()
	if !started {
		return nil
	}
	return conn.tomb.Wait()
}

// teardown is the single shutdown path, used by Close, by a failed
// write and by the receive loop when the transport fails. reason is nil
// for a deliberate close.
func (conn *Conn) teardown(reason error) {
	if codec, ok := conn.stop(reason); ok {
		conn.finish(codec)
	}
}

// stop marks the connection as shut down and aborts every pending call.
// It returns false if the connection was already shut down.
func (conn *Conn) stop(reason error) (Codec, bool) {
	conn.mutex.Lock()
	if conn.shutdown {
		conn.mutex.Unlock()
		return nil, false
	}
	conn.shutdown = true
	if conn.state == Connected {
		conn.state = Closing
	}
	codec := conn.codec
	conn.mutex.Unlock()

	abortErr := error(ErrConnectionClosed)
	if reason != nil {
		abortErr = fmt.Errorf("%w: %w", ErrConnectionClosed, reason)
	}
	if n := conn.pending.abortAll(abortErr); n > 0 {
		logger.Debugf("aborted %d pending calls", n)
	}
	conn.tomb.Kill(reason)
	return codec, true
}

// finish closes the transport, which causes the receive loop to
// terminate, and marks the connection dead.
func (conn *Conn) finish(codec Codec) {
	if codec != nil {
		if err := codec.Close(); err != nil {
			logger.Debugf("error closing codec: %v", err)
		}
	}
	conn.mutex.Lock()
	if conn.state == Closing {
		conn.state = Disconnected
	}
	conn.codec = nil
	conn.mutex.Unlock()
	close(conn.dead)
}

// loop reads responses from the codec until it fails.
func (conn *Conn) loop(codec Codec) error {
	for {
		var hdr Header
		if err := codec.ReadHeader(&hdr); err != nil {
			conn.mutex.Lock()
			deliberate := conn.shutdown
			conn.mutex.Unlock()
			if deliberate {
				return nil
			}
			if errors.Is(err, io.EOF) {
				logger.Debugf("connection closed by peer")
			} else {
				logger.Warningf("receive failed: %v", err)
			}
			conn.teardown(err)
			return errors.Trace(err)
		}
		conn.handleResponse(codec, &hdr)
	}
}
