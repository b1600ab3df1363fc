// Copyright 2012, 2013, 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package api opens JSON-RPC connections to a server over a websocket.
package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/juju/retry"

	"github.com/juju/xorpc/rpc"
	"github.com/juju/xorpc/rpc/jsoncodec"
)

var logger = loggo.GetLogger("xorpc.api")

// DialOpts holds configuration parameters that control the
// Dialing behavior when connecting to a server.
type DialOpts struct {
	// DialTimeout is the amount of time to wait for a single dial
	// attempt, including the websocket handshake.
	DialTimeout time.Duration

	// DialAttempts is the number of times the dial is attempted
	// before giving up.
	DialAttempts int

	// RetryDelay is the amount of time to wait between
	// unsuccessful connection attempts.
	RetryDelay time.Duration

	// CallTimeout bounds how long a call waits for its response.
	// Zero means no limit.
	CallTimeout time.Duration

	// ReadLimit is the largest message the connection accepts, in
	// bytes. Zero means no limit.
	ReadLimit int64

	// Clock is used for retry delays and call timeouts. The wall
	// clock is used if it is nil.
	Clock clock.Clock

	// Observer, if non-nil, is told about every call made on the
	// connection.
	Observer rpc.Observer

	// TrackConnections logs the creation and closing of every
	// network connection, with the stack that created it.
	TrackConnections bool
}

// DefaultDialOpts returns a DialOpts representing the default
// parameters for contacting a server.
func DefaultDialOpts() DialOpts {
	return DialOpts{
		DialTimeout:  30 * time.Second,
		DialAttempts: 3,
		RetryDelay:   time.Second,
		ReadLimit:    32 << 20,
		Clock:        clock.WallClock,
	}
}

// Validate returns an error if the options cannot be used.
func (opts DialOpts) Validate() error {
	if opts.DialTimeout < 0 {
		return errors.NotValidf("negative DialTimeout")
	}
	if opts.DialAttempts < 1 {
		return errors.NotValidf("DialAttempts %d", opts.DialAttempts)
	}
	if opts.RetryDelay <= 0 {
		return errors.NotValidf("non-positive RetryDelay")
	}
	if opts.CallTimeout < 0 {
		return errors.NotValidf("negative CallTimeout")
	}
	if opts.ReadLimit < 0 {
		return errors.NotValidf("negative ReadLimit")
	}
	return nil
}

// HandshakeError is returned when the server refuses the websocket
// handshake.
type HandshakeError struct {
	StatusCode int
	Status     string
}

func (e *HandshakeError) Error() string {
	return fmt.Sprintf("websocket handshake failed: %s", e.Status)
}

// isFatalDialError reports whether a dial should not be retried. Servers
// refusing the handshake with a client error will refuse it again.
func isFatalDialError(err error) bool {
	var hsErr *HandshakeError
	if errors.As(err, &hsErr) {
		return hsErr.StatusCode >= 400 && hsErr.StatusCode < 500
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

type dialer struct {
	info     Info
	opts     DialOpts
	endpoint string
	ws       *websocket.Dialer
}

// NewDialer returns an rpc.Dialer that connects to the API described
// by info.
func NewDialer(info Info, opts DialOpts) (rpc.Dialer, error) {
	if err := info.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	if opts.Clock == nil {
		opts.Clock = clock.WallClock
	}
	if err := opts.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	netDialer := &net.Dialer{}
	dialContext := netDialer.DialContext
	if opts.TrackConnections {
		dialContext = WrapDialContext(dialContext)
	}
	return &dialer{
		info:     info,
		opts:     opts,
		endpoint: info.Endpoint(),
		ws: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			NetDialContext:   dialContext,
			HandshakeTimeout: opts.DialTimeout,
		},
	}, nil
}

// Dial implements rpc.Dialer.
func (d *dialer) Dial(ctx context.Context) (rpc.Codec, error) {
	var (
		ws      *websocket.Conn
		lastErr error
	)
	err := retry.Call(retry.CallArgs{
		Func: func() error {
			var err error
			ws, err = d.dialOnce(ctx)
			return err
		},
		IsFatalError: isFatalDialError,
		NotifyFunc: func(err error, attempt int) {
			logger.Debugf("dial %s attempt %d failed: %v", d.endpoint, attempt, err)
			lastErr = err
		},
		Attempts: d.opts.DialAttempts,
		Delay:    d.opts.RetryDelay,
		Clock:    d.opts.Clock,
		Stop:     ctx.Done(),
	})
	if retry.IsAttemptsExceeded(err) && lastErr != nil {
		err = lastErr
	}
	if err != nil {
		return nil, errors.Annotatef(err, "cannot dial %s", d.endpoint)
	}
	if d.opts.ReadLimit > 0 {
		ws.SetReadLimit(d.opts.ReadLimit)
	}
	logger.Debugf("dialed %s", d.endpoint)
	return jsoncodec.NewWebsocket(ws), nil
}

func (d *dialer) dialOnce(ctx context.Context) (*websocket.Conn, error) {
	if d.opts.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.opts.DialTimeout)
		defer cancel()
	}
	ws, resp, err := d.ws.DialContext(ctx, d.endpoint, d.info.handshakeHeader())
	if err == nil {
		return ws, nil
	}
	if resp != nil {
		_ = resp.Body.Close()
		if errors.Is(err, websocket.ErrBadHandshake) {
			return nil, &HandshakeError{
				StatusCode: resp.StatusCode,
				Status:     resp.Status,
			}
		}
	}
	return nil, errors.Trace(err)
}

// Open establishes a connection to the API described by info and returns
// it once the receive loop has started. The caller must Close the
// returned connection.
func Open(ctx context.Context, info Info, opts DialOpts) (*rpc.Conn, error) {
	d, err := NewDialer(info, opts)
	if err != nil {
		return nil, errors.Trace(err)
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.WallClock
	}
	conn, err := rpc.NewConn(rpc.Config{
		Dialer:      d,
		Clock:       clk,
		CallTimeout: opts.CallTimeout,
		Observer:    opts.Observer,
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	if err := conn.Connect(ctx); err != nil {
		_ = conn.Close()
		return nil, errors.Trace(err)
	}
	return conn, nil
}
