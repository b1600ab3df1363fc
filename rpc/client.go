// Copyright 2012, 2013, 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package rpc

import (
	"context"
	"time"

	"github.com/juju/errors"
)

// Call represents an active RPC.
type Call struct {
	RequestId uint64
	Method    string
	Params    any
	Result    any
	Error     error
	Done      chan *Call
}

func (call *Call) done() {
	select {
	case call.Done <- call:
		// ok
	default:
		// We don't want to block here. Done is created with room for
		// exactly one completion, so this only happens when a call is
		// completed twice.
		logger.Errorf("discarding reply for request %d (%s): call already completed", call.RequestId, call.Method)
	}
}

// Call invokes the named remote method with the given params and waits
// for its response. The result is unmarshalled into result, which should
// be a pointer, or nil to discard it. If the server returns an error the
// returned error is a *RequestError.
//
// Call returns ErrNotConnected without writing anything unless the
// connection is Connected, and ErrConnectionClosed if the connection is
// torn down before the response arrives. If ctx is cancelled, or the call
// timeout expires, the call is forgotten: a response arriving later is
// discarded.
func (conn *Conn) Call(ctx context.Context, method string, params, result any) error {
	// Before sending the request, check if the context has been canceled.
	// This is done to prevent any unnecessary work from being done if the
	// context has been canceled.
	if ctx.Err() != nil {
		return context.Cause(ctx)
	}

	call := &Call{
		Method: method,
		Params: params,
		Result: result,
		Done:   make(chan *Call, 1),
	}
	start := conn.clock.Now()
	registered, err := conn.send(call)
	if !registered {
		return err
	}
	if err == nil {
		err = conn.wait(ctx, call)
	}
	conn.observer.CallFinished(method, OutcomeOf(err), conn.clock.Now().Sub(start))
	return err
}

// send registers the call and writes its request. It reports whether the
// call was registered; a registered call is always finished by wait or by
// the returned error. A write failure tears the connection down.
func (conn *Conn) send(call *Call) (bool, error) {
	conn.mutex.Lock()
	if conn.state != Connected {
		state := conn.state
		conn.mutex.Unlock()
		return false, errors.Annotatef(ErrNotConnected, "cannot call %q: connection is %s", call.Method, state)
	}
	codec := conn.codec
	if err := conn.register(call); err != nil {
		conn.mutex.Unlock()
		return false, errors.Annotatef(err, "cannot call %q", call.Method)
	}
	conn.mutex.Unlock()
	conn.observer.CallStarted(call.Method)

	hdr := &Header{
		RequestId: call.RequestId,
		Method:    call.Method,
	}
	conn.sending.Lock()
	err := codec.WriteMessage(hdr, call.Params)
	conn.sending.Unlock()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, errors.NotValid) {
		if conn.pending.resolve(call.RequestId) != nil {
			return true, errors.Annotatef(err, "cannot send %q", call.Method)
		}
		result := <-call.Done
		return true, result.Error
	}
	// A failed write leaves the transport unusable, so the whole
	// connection goes down and the call is aborted with the others.
	logger.Warningf("send failed: %v", err)
	conn.teardown(errors.Annotatef(err, "cannot send %q", call.Method))
	result := <-call.Done
	return true, result.Error
}

// register draws request ids until one is free in the pending table.
func (conn *Conn) register(call *Call) error {
	var err error
	for i := 0; i < maxIDAttempts; i++ {
		err = conn.pending.register(conn.newID(), call)
		if !errors.Is(err, ErrDuplicateID) {
			return err
		}
		logger.Debugf("%v; drawing another request id", err)
	}
	return err
}

func (conn *Conn) wait(ctx context.Context, call *Call) error {
	timeout := conn.callTimeout
	if d, ok := CallTimeoutFromContext(ctx); ok {
		timeout = d
	}
	var expired <-chan time.Time
	if timeout > 0 {
		timer := conn.clock.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.Chan()
	}

	select {
	case result := <-call.Done:
		return result.Error
	case <-expired:
		if conn.cancel(call.RequestId) {
			return errors.Annotatef(ErrCallTimeout, "%q after %v", call.Method, timeout)
		}
	case <-ctx.Done():
		if conn.cancel(call.RequestId) {
			return context.Cause(ctx)
		}
	}
	// The call was completed before we could cancel it, so its result is
	// already on its way.
	result := <-call.Done
	return result.Error
}

// cancel forgets a pending call. It returns false if the call had
// already been completed.
func (conn *Conn) cancel(reqId uint64) bool {
	if conn.pending.resolve(reqId) == nil {
		return false
	}
	logger.Debugf("abandoned request %d", reqId)
	return true
}

func (conn *Conn) handleResponse(codec Codec, hdr *Header) {
	call := conn.pending.resolve(hdr.RequestId)
	if call == nil {
		// We've got no pending call. That usually means the call was
		// cancelled or timed out; there is no one to give the result to.
		logger.Debugf("discarding response to unknown request %d", hdr.RequestId)
		conn.observer.UnmatchedResponse(hdr.RequestId)
		_ = codec.ReadBody(nil)
		return
	}
	if hdr.Error != nil {
		call.Error = hdr.Error
	} else if err := codec.ReadBody(call.Result); err != nil {
		call.Error = errors.Annotatef(err, "cannot decode result of %q", call.Method)
	}
	call.done()
}
