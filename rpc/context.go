// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package rpc

import (
	"context"
	"time"
)

type callTimeoutKey struct{}

// WithCallTimeout returns a context that makes calls made with it time
// out after d, overriding the connection's default call timeout. A
// non-positive d disables the timeout for those calls.
func WithCallTimeout(ctx context.Context, d time.Duration) context.Context {
	return context.WithValue(ctx, callTimeoutKey{}, d)
}

// CallTimeoutFromContext returns the call timeout stored in ctx by
// WithCallTimeout.
func CallTimeoutFromContext(ctx context.Context) (time.Duration, bool) {
	d, ok := ctx.Value(callTimeoutKey{}).(time.Duration)
	return d, ok
}
