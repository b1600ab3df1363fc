// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package rpc

import (
	"context"
	"time"

	"github.com/juju/errors"
)

// Outcome classifies how a call finished.
type Outcome string

const (
	OutcomeOK        Outcome = "ok"
	OutcomeError     Outcome = "error"
	OutcomeClosed    Outcome = "closed"
	OutcomeTimeout   Outcome = "timeout"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeFailed    Outcome = "failed"
)

// Observer is notified about the calls made on a connection.
// Implementations must be safe for concurrent use.
type Observer interface {
	// CallStarted is called once a call has been registered and is
	// about to be written.
	CallStarted(method string)

	// CallFinished is called once for every started call.
	CallFinished(method string, outcome Outcome, elapsed time.Duration)

	// UnmatchedResponse is called when a response arrives for an id
	// that is not pending.
	UnmatchedResponse(id uint64)
}

type noopObserver struct{}

func (noopObserver) CallStarted(string)                          {}
func (noopObserver) CallFinished(string, Outcome, time.Duration) {}
func (noopObserver) UnmatchedResponse(uint64)                    {}

// OutcomeOf classifies the error returned by Conn.Call.
func OutcomeOf(err error) Outcome {
	var reqErr *RequestError
	switch {
	case err == nil:
		return OutcomeOK
	case errors.As(err, &reqErr):
		return OutcomeError
	case errors.Is(err, ErrCallTimeout):
		return OutcomeTimeout
	case IsShutdownErr(err), errors.Is(err, ErrNotConnected):
		return OutcomeClosed
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCancelled
	default:
		return OutcomeFailed
	}
}
