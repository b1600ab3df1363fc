// Copyright 2025, 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package api

import (
	"context"
	"net"
	"runtime/debug"
	"sync/atomic"

	"github.com/juju/loggo/v2"
)

var connCount int64

var diagnosticLogger = loggo.GetLogger("xorpc.api.diagnostic")

// trackedConn wraps a [net.Conn] so that its creation and closure are
// logged.
type trackedConn struct {
	net.Conn

	createdStack []byte
	closed       int32
	id           int64
}

func newTrackedConn(c net.Conn, addr string) *trackedConn {
	tc := &trackedConn{
		Conn:         c,
		createdStack: debug.Stack(),
		id:           atomic.AddInt64(&connCount, 1),
	}
	diagnosticLogger.Infof("opened conn id=%d to %s; created by:\n%s", tc.id, addr, tc.createdStack)
	return tc
}

func (t *trackedConn) Close() error {
	if atomic.CompareAndSwapInt32(&t.closed, 0, 1) {
		diagnosticLogger.Infof("closing conn id=%d", t.id)
	} else {
		diagnosticLogger.Warningf("close called again on conn id=%d; created by:\n%s", t.id, t.createdStack)
	}
	return t.Conn.Close()
}

// WrapDialContext is a [net.Dialer.DialContext] wrapper that logs the
// life of every dialled connection. It is used when
// DialOpts.TrackConnections is set to find code that leaks connections.
func WrapDialContext(
	dial func(ctx context.Context, network, addr string) (net.Conn, error),
) func(ctx context.Context, network, addr string) (net.Conn, error) {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		c, err := dial(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		return newTrackedConn(c, addr), nil
	}
}
