// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package rpc

import (
	"sync"

	"github.com/juju/errors"
)

// pendingTable holds the calls that have been sent and are waiting for
// a response. A call is removed from the table at the moment it is
// completed, so whoever removes it owns its completion.
type pendingTable struct {
	mu      sync.Mutex
	calls   map[uint64]*Call
	aborted bool
}

func newPendingTable() *pendingTable {
	return &pendingTable{
		calls: make(map[uint64]*Call),
	}
}

// register records call under id. It must be called before the request
// is written so that a fast response always finds its call.
func (t *pendingTable) register(id uint64, call *Call) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.aborted {
		return errors.Trace(ErrShutdown)
	}
	if _, ok := t.calls[id]; ok {
		return errors.Annotatef(ErrDuplicateID, "id %d", id)
	}
	call.RequestId = id
	t.calls[id] = call
	return nil
}

// resolve removes and returns the call registered under id. It returns
// nil if there is no such call, which happens when the call has already
// been cancelled or aborted, or the id was never ours.
func (t *pendingTable) resolve(id uint64) *Call {
	t.mu.Lock()
	defer t.mu.Unlock()
	call, ok := t.calls[id]
	if !ok {
		return nil
	}
	delete(t.calls, id)
	return call
}

// abortAll completes every pending call with err and refuses any further
// registration.
func (t *pendingTable) abortAll(err error) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.aborted = true
	n := len(t.calls)
	for id, call := range t.calls {
		delete(t.calls, id)
		call.Error = err
		call.done()
	}
	return n
}

func (t *pendingTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.calls)
}
