// Copyright 2012, 2013, 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package rpc_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	"github.com/juju/worker/v4"
	gc "gopkg.in/check.v1"

	"github.com/juju/xorpc/rpc"
	"github.com/juju/xorpc/rpc/rpctesting"
)

const longWait = 10 * time.Second

type connSuite struct {
	testing.IsolationSuite

	clock     *testclock.Clock
	transport *rpctesting.Conn
	observer  *recordingObserver
}

var _ = gc.Suite(&connSuite{})

func (s *connSuite) SetUpTest(c *gc.C) {
	s.IsolationSuite.SetUpTest(c)
	s.clock = testclock.NewClock(time.Now())
	s.transport = rpctesting.NewConn()
	s.observer = &recordingObserver{}
}

func (s *connSuite) config(ids ...uint64) rpc.Config {
	cfg := rpc.Config{
		Dialer:   s.transport.Dialer(),
		Clock:    s.clock,
		Observer: s.observer,
	}
	if len(ids) > 0 {
		cfg.NewID = sequence(ids...)
	}
	return cfg
}

func (s *connSuite) newConn(c *gc.C, cfg rpc.Config) *rpc.Conn {
	conn, err := rpc.NewConn(cfg)
	c.Assert(err, jc.ErrorIsNil)
	s.AddCleanup(func(*gc.C) { _ = conn.Close() })
	return conn
}

func (s *connSuite) connect(c *gc.C, cfg rpc.Config) *rpc.Conn {
	conn := s.newConn(c, cfg)
	err := conn.Connect(context.Background())
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(conn.State(), gc.Equals, rpc.Connected)
	return conn
}

// sequence returns an id generator that hands out ids in order,
// wrapping around at the end.
func sequence(ids ...uint64) rpc.IDGenerator {
	var mu sync.Mutex
	var i int
	return func() uint64 {
		mu.Lock()
		defer mu.Unlock()
		id := ids[i%len(ids)]
		i++
		return id
	}
}

type request struct {
	JSONRPC string         `json:"jsonrpc"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params"`
	ID      uint64         `json:"id"`
}

func (s *connSuite) nextRequest(c *gc.C) request {
	data, err := s.transport.Next(longWait)
	c.Assert(err, jc.ErrorIsNil)
	var req request
	err = json.Unmarshal(data, &req)
	c.Assert(err, jc.ErrorIsNil)
	return req
}

type callResult struct {
	result any
	err    error
}

func goCall(ctx context.Context, conn *rpc.Conn, method string, params any) <-chan callResult {
	ch := make(chan callResult, 1)
	go func() {
		var result any
		err := conn.Call(ctx, method, params, &result)
		ch <- callResult{result: result, err: err}
	}()
	return ch
}

func waitResult(c *gc.C, ch <-chan callResult) callResult {
	select {
	case r := <-ch:
		return r
	case <-time.After(longWait):
		c.Fatalf("timed out waiting for call to return")
	}
	panic("unreachable")
}

func assertNotReturned(c *gc.C, ch <-chan callResult) {
	select {
	case r := <-ch:
		c.Fatalf("call returned unexpectedly: %#v", r)
	case <-time.After(10 * time.Millisecond):
	}
}

func (s *connSuite) TestNewConnValidatesConfig(c *gc.C) {
	cfg := s.config()
	cfg.Dialer = nil
	_, err := rpc.NewConn(cfg)
	c.Assert(err, jc.ErrorIs, errors.NotValid)

	cfg = s.config()
	cfg.Clock = nil
	_, err = rpc.NewConn(cfg)
	c.Assert(err, jc.ErrorIs, errors.NotValid)

	cfg = s.config()
	cfg.CallTimeout = -time.Second
	_, err = rpc.NewConn(cfg)
	c.Assert(err, gc.ErrorMatches, "negative CallTimeout not valid")
}

func (s *connSuite) TestCallBeforeConnect(c *gc.C) {
	conn := s.newConn(c, s.config())
	c.Assert(conn.State(), gc.Equals, rpc.Disconnected)

	err := conn.Call(context.Background(), "user.getAll", nil, nil)
	c.Assert(err, jc.ErrorIs, rpc.ErrNotConnected)
	c.Assert(err, gc.ErrorMatches, `cannot call "user.getAll": connection is disconnected: rpc: not connected`)
	c.Assert(s.transport.Written(), gc.Equals, 0)
	c.Assert(s.observer.startedCount(), gc.Equals, 0)
}

func (s *connSuite) TestConnectTwice(c *gc.C) {
	conn := s.connect(c, s.config())
	err := conn.Connect(context.Background())
	c.Assert(err, jc.ErrorIs, rpc.ErrAlreadyConnected)
	c.Assert(conn.State(), gc.Equals, rpc.Connected)
}

func (s *connSuite) TestConnectAfterClose(c *gc.C) {
	conn := s.connect(c, s.config())
	c.Assert(conn.Close(), jc.ErrorIsNil)
	err := conn.Connect(context.Background())
	c.Assert(err, jc.ErrorIs, rpc.ErrShutdown)
	c.Assert(conn.State(), gc.Equals, rpc.Disconnected)
}

func (s *connSuite) TestDialFailure(c *gc.C) {
	failures := 1
	cfg := s.config()
	cfg.Dialer = rpc.DialerFunc(func(ctx context.Context) (rpc.Codec, error) {
		if failures > 0 {
			failures--
			return nil, errors.New("connection refused")
		}
		return s.transport.Dialer().Dial(ctx)
	})
	conn := s.newConn(c, cfg)

	err := conn.Connect(context.Background())
	c.Assert(err, gc.ErrorMatches, "cannot connect: connection refused")
	c.Assert(conn.State(), gc.Equals, rpc.Disconnected)

	err = conn.Connect(context.Background())
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(conn.State(), gc.Equals, rpc.Connected)
}

func (s *connSuite) TestCall(c *gc.C) {
	conn := s.connect(c, s.config(1))

	result := goCall(context.Background(), conn, "user.create", map[string]any{
		"email":    "a@b",
		"password": "x",
	})
	req := s.nextRequest(c)
	c.Assert(req, jc.DeepEquals, request{
		JSONRPC: "2.0",
		Method:  "user.create",
		Params: map[string]any{
			"email":    "a@b",
			"password": "x",
		},
		ID: 1,
	})

	s.transport.Deliver(`{"jsonrpc":"2.0","id":1,"result":"user-42"}`)
	r := waitResult(c, result)
	c.Assert(r.err, jc.ErrorIsNil)
	c.Assert(r.result, gc.Equals, "user-42")

	c.Assert(s.observer.finishedOutcomes(), jc.DeepEquals, []rpc.Outcome{rpc.OutcomeOK})
}

func (s *connSuite) TestCallNilParamsSendsEmptyObject(c *gc.C) {
	conn := s.connect(c, s.config(5))

	result := goCall(context.Background(), conn, "system.getMethodsInfo", nil)
	data, err := s.transport.Next(longWait)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(string(data), gc.Equals, `{"jsonrpc":"2.0","method":"system.getMethodsInfo","params":{},"id":5}`)

	s.transport.Deliver(`{"jsonrpc":"2.0","id":5,"result":{}}`)
	r := waitResult(c, result)
	c.Assert(r.err, jc.ErrorIsNil)
	c.Assert(r.result, jc.DeepEquals, map[string]any{})
}

func (s *connSuite) TestResponsesOutOfOrder(c *gc.C) {
	conn := s.connect(c, s.config(1, 2))

	resultA := goCall(context.Background(), conn, "a", nil)
	c.Assert(s.nextRequest(c).ID, gc.Equals, uint64(1))
	resultB := goCall(context.Background(), conn, "b", nil)
	c.Assert(s.nextRequest(c).ID, gc.Equals, uint64(2))

	s.transport.Deliver(`{"jsonrpc":"2.0","id":2,"result":"B"}`)
	r := waitResult(c, resultB)
	c.Assert(r.err, jc.ErrorIsNil)
	c.Assert(r.result, gc.Equals, "B")
	assertNotReturned(c, resultA)

	s.transport.Deliver(`{"jsonrpc":"2.0","id":1,"result":"A"}`)
	r = waitResult(c, resultA)
	c.Assert(r.err, jc.ErrorIsNil)
	c.Assert(r.result, gc.Equals, "A")
}

func (s *connSuite) TestConcurrentCalls(c *gc.C) {
	conn := s.connect(c, s.config())

	const n = 50
	results := make([]<-chan callResult, n)
	for i := range results {
		results[i] = goCall(context.Background(), conn, "echo", map[string]any{"n": i})
	}

	// Answer in the reverse of the order the requests were written.
	reqs := make([]request, n)
	for i := range reqs {
		reqs[i] = s.nextRequest(c)
	}
	for i := n - 1; i >= 0; i-- {
		s.transport.Deliver(fmt.Sprintf(`{"jsonrpc":"2.0","id":%d,"result":%v}`, reqs[i].ID, reqs[i].Params["n"]))
	}

	for i, ch := range results {
		r := waitResult(c, ch)
		c.Assert(r.err, jc.ErrorIsNil)
		c.Check(r.result, gc.Equals, float64(i))
	}
}

func (s *connSuite) TestErrorResponse(c *gc.C) {
	conn := s.connect(c, s.config(3))

	result := goCall(context.Background(), conn, "vm.start", map[string]any{"id": "vm-1"})
	s.nextRequest(c)
	s.transport.Deliver(`{"jsonrpc":"2.0","id":3,"error":{"code":-32000,"message":"no such object","data":{"id":"vm-1","type":"VM"}}}`)

	r := waitResult(c, result)
	c.Assert(r.err, gc.ErrorMatches, `request error: no such object \(code -32000\)`)
	var reqErr *rpc.RequestError
	c.Assert(errors.As(r.err, &reqErr), jc.IsTrue)
	c.Assert(reqErr.Code, gc.Equals, -32000)
	c.Assert(reqErr.Message, gc.Equals, "no such object")
	c.Assert(reqErr.Payload, jc.DeepEquals, map[string]any{
		"code":    float64(-32000),
		"message": "no such object",
		"data": map[string]any{
			"id":   "vm-1",
			"type": "VM",
		},
	})

	var data struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	}
	err := reqErr.UnmarshalData(&data)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(data.ID, gc.Equals, "vm-1")
	c.Assert(data.Type, gc.Equals, "VM")

	c.Assert(s.observer.finishedOutcomes(), jc.DeepEquals, []rpc.Outcome{rpc.OutcomeError})
}

func (s *connSuite) TestResultDecodeFailure(c *gc.C) {
	conn := s.connect(c, s.config(1, 2))

	done := make(chan error, 1)
	go func() {
		var n int
		done <- conn.Call(context.Background(), "count", nil, &n)
	}()
	s.nextRequest(c)
	s.transport.Deliver(`{"jsonrpc":"2.0","id":1,"result":"many"}`)
	select {
	case err := <-done:
		c.Assert(err, gc.ErrorMatches, `cannot decode result of "count": .*`)
	case <-time.After(longWait):
		c.Fatalf("timed out waiting for call")
	}

	// The connection is still usable.
	result := goCall(context.Background(), conn, "count", nil)
	s.nextRequest(c)
	s.transport.Deliver(`{"jsonrpc":"2.0","id":2,"result":7}`)
	r := waitResult(c, result)
	c.Assert(r.err, jc.ErrorIsNil)
	c.Assert(r.result, gc.Equals, float64(7))
}

func (s *connSuite) TestIgnoresUnmatchedAndMalformedFrames(c *gc.C) {
	conn := s.connect(c, s.config(1))

	result := goCall(context.Background(), conn, "acl.get", nil)
	s.nextRequest(c)

	s.transport.Deliver(`{not json`)
	s.transport.Deliver(`{"jsonrpc":"2.0","method":"all","params":{"type":"enter"}}`)
	s.transport.Deliver(`{"jsonrpc":"2.0","id":"x","result":1}`)
	s.transport.Deliver(`{"jsonrpc":"2.0","id":999,"result":1}`)
	s.transport.Deliver(`{"jsonrpc":"2.0","id":1,"result":[]}`)

	r := waitResult(c, result)
	c.Assert(r.err, jc.ErrorIsNil)
	c.Assert(r.result, jc.DeepEquals, []any{})
	c.Assert(s.observer.unmatchedIDs(), jc.DeepEquals, []uint64{999})
	c.Assert(conn.State(), gc.Equals, rpc.Connected)
}

func (s *connSuite) TestCloseReleasesPendingCalls(c *gc.C) {
	conn := s.connect(c, s.config())

	results := make([]<-chan callResult, 3)
	for i := range results {
		results[i] = goCall(context.Background(), conn, "vm.stop", nil)
		s.nextRequest(c)
	}

	c.Assert(conn.Close(), jc.ErrorIsNil)
	for _, ch := range results {
		r := waitResult(c, ch)
		c.Check(r.err, jc.ErrorIs, rpc.ErrConnectionClosed)
		c.Check(rpc.IsShutdownErr(r.err), jc.IsTrue)
	}
	c.Assert(conn.State(), gc.Equals, rpc.Disconnected)
	c.Assert(conn.Wait(), jc.ErrorIsNil)
	select {
	case <-conn.Dead():
	default:
		c.Fatalf("connection not dead after Close")
	}

	// Closing again is a no-op.
	c.Assert(conn.Close(), jc.ErrorIsNil)
	c.Assert(s.transport.Closes(), gc.Equals, 1)

	err := conn.Call(context.Background(), "vm.stop", nil, nil)
	c.Assert(err, jc.ErrorIs, rpc.ErrNotConnected)
	c.Assert(s.observer.finishedOutcomes(), jc.DeepEquals, []rpc.Outcome{
		rpc.OutcomeClosed, rpc.OutcomeClosed, rpc.OutcomeClosed,
	})
}

func (s *connSuite) TestCloseBeforeConnect(c *gc.C) {
	conn := s.newConn(c, s.config())
	c.Assert(conn.Close(), jc.ErrorIsNil)
	c.Assert(conn.Wait(), jc.ErrorIsNil)
	c.Assert(conn.State(), gc.Equals, rpc.Disconnected)
	c.Assert(s.transport.Closes(), gc.Equals, 0)
}

func (s *connSuite) TestTransportFailureReleasesPendingCalls(c *gc.C) {
	conn := s.connect(c, s.config())

	results := make([]<-chan callResult, 5)
	for i := range results {
		results[i] = goCall(context.Background(), conn, "vm.getAll", nil)
		s.nextRequest(c)
	}

	s.transport.Fail(errors.New("connection reset by peer"))
	for _, ch := range results {
		r := waitResult(c, ch)
		c.Check(r.err, jc.ErrorIs, rpc.ErrConnectionClosed)
		c.Check(r.err, gc.ErrorMatches, "rpc: connection closed: .*connection reset by peer")
	}

	select {
	case <-conn.Dead():
	case <-time.After(longWait):
		c.Fatalf("connection not torn down")
	}
	c.Assert(conn.Wait(), gc.ErrorMatches, ".*connection reset by peer")
	c.Assert(conn.State(), gc.Equals, rpc.Disconnected)

	err := conn.Call(context.Background(), "vm.getAll", nil, nil)
	c.Assert(err, jc.ErrorIs, rpc.ErrNotConnected)
}

func (s *connSuite) TestWriteFailureTearsDown(c *gc.C) {
	conn := s.connect(c, s.config(1, 2, 3))

	pending := goCall(context.Background(), conn, "vm.list", nil)
	s.nextRequest(c)

	s.transport.FailWrites(errors.New("broken pipe"))
	err := conn.Call(context.Background(), "vm.start", nil, nil)
	c.Assert(err, jc.ErrorIs, rpc.ErrConnectionClosed)
	c.Assert(err, gc.ErrorMatches, `rpc: connection closed: cannot send "vm.start": broken pipe`)

	r := waitResult(c, pending)
	c.Assert(r.err, jc.ErrorIs, rpc.ErrConnectionClosed)
	c.Assert(r.err, gc.ErrorMatches, `rpc: connection closed: cannot send "vm.start": broken pipe`)

	c.Assert(conn.Wait(), gc.ErrorMatches, `cannot send "vm.start": broken pipe`)
	c.Assert(conn.State(), gc.Equals, rpc.Disconnected)
	c.Assert(s.transport.Closes(), gc.Equals, 1)

	err = conn.Call(context.Background(), "vm.start", nil, nil)
	c.Assert(err, jc.ErrorIs, rpc.ErrNotConnected)
	c.Assert(s.observer.finishedOutcomes(), jc.SameContents, []rpc.Outcome{
		rpc.OutcomeClosed, rpc.OutcomeClosed,
	})
}

func (s *connSuite) TestUnencodableParamsKeepConnection(c *gc.C) {
	conn := s.connect(c, s.config(1, 2))

	err := conn.Call(context.Background(), "vm.start", make(chan int), nil)
	c.Assert(err, jc.ErrorIs, errors.NotValid)
	c.Assert(conn.State(), gc.Equals, rpc.Connected)
	c.Assert(s.transport.Written(), gc.Equals, 0)

	result := goCall(context.Background(), conn, "vm.start", nil)
	c.Assert(s.nextRequest(c).ID, gc.Equals, uint64(2))
	s.transport.Deliver(`{"jsonrpc":"2.0","id":2,"result":"started"}`)
	c.Assert(waitResult(c, result).result, gc.Equals, "started")
}

func (s *connSuite) TestPeerClosesConnection(c *gc.C) {
	conn := s.connect(c, s.config())

	result := goCall(context.Background(), conn, "session.signIn", nil)
	s.nextRequest(c)
	s.transport.Fail(io.EOF)

	r := waitResult(c, result)
	c.Assert(r.err, jc.ErrorIs, rpc.ErrConnectionClosed)
	c.Assert(r.err, jc.ErrorIs, io.EOF)
	c.Assert(conn.Wait(), jc.ErrorIs, io.EOF)
}

func (s *connSuite) TestCallTimeout(c *gc.C) {
	cfg := s.config(1, 2)
	cfg.CallTimeout = time.Minute
	conn := s.connect(c, cfg)

	result := goCall(context.Background(), conn, "vm.snapshot", nil)
	s.nextRequest(c)
	err := s.clock.WaitAdvance(time.Minute, longWait, 1)
	c.Assert(err, jc.ErrorIsNil)

	r := waitResult(c, result)
	c.Assert(r.err, jc.ErrorIs, rpc.ErrCallTimeout)
	c.Assert(r.err, gc.ErrorMatches, `"vm.snapshot" after 1m0s: rpc: call timed out`)

	// The late response is discarded and the connection keeps working.
	s.transport.Deliver(`{"jsonrpc":"2.0","id":1,"result":"late"}`)
	result = goCall(context.Background(), conn, "vm.snapshot", nil)
	c.Assert(s.nextRequest(c).ID, gc.Equals, uint64(2))
	s.transport.Deliver(`{"jsonrpc":"2.0","id":2,"result":"snap"}`)
	r = waitResult(c, result)
	c.Assert(r.err, jc.ErrorIsNil)
	c.Assert(r.result, gc.Equals, "snap")

	c.Assert(s.observer.unmatchedIDs(), jc.DeepEquals, []uint64{1})
	c.Assert(s.observer.finishedOutcomes(), jc.DeepEquals, []rpc.Outcome{
		rpc.OutcomeTimeout, rpc.OutcomeOK,
	})
}

func (s *connSuite) TestCallTimeoutFromContext(c *gc.C) {
	cfg := s.config(1)
	cfg.CallTimeout = time.Hour
	conn := s.connect(c, cfg)

	ctx := rpc.WithCallTimeout(context.Background(), time.Second)
	result := goCall(ctx, conn, "disk.create", nil)
	s.nextRequest(c)
	err := s.clock.WaitAdvance(time.Second, longWait, 1)
	c.Assert(err, jc.ErrorIsNil)

	r := waitResult(c, result)
	c.Assert(r.err, jc.ErrorIs, rpc.ErrCallTimeout)
}

func (s *connSuite) TestCallContextCancelled(c *gc.C) {
	conn := s.connect(c, s.config(1))

	ctx, cancel := context.WithCancel(context.Background())
	result := goCall(ctx, conn, "vm.migrate", nil)
	s.nextRequest(c)
	cancel()

	r := waitResult(c, result)
	c.Assert(r.err, jc.ErrorIs, context.Canceled)
	c.Assert(s.observer.finishedOutcomes(), jc.DeepEquals, []rpc.Outcome{rpc.OutcomeCancelled})
}

func (s *connSuite) TestCallContextAlreadyCancelled(c *gc.C) {
	conn := s.connect(c, s.config())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := conn.Call(ctx, "vm.migrate", nil, nil)
	c.Assert(err, jc.ErrorIs, context.Canceled)
	c.Assert(s.transport.Written(), gc.Equals, 0)
}

func (s *connSuite) TestDuplicateIDIsRedrawn(c *gc.C) {
	conn := s.connect(c, s.config(7, 7, 8))

	resultA := goCall(context.Background(), conn, "a", nil)
	c.Assert(s.nextRequest(c).ID, gc.Equals, uint64(7))
	resultB := goCall(context.Background(), conn, "b", nil)
	c.Assert(s.nextRequest(c).ID, gc.Equals, uint64(8))

	s.transport.Deliver(`{"jsonrpc":"2.0","id":8,"result":"B"}`)
	s.transport.Deliver(`{"jsonrpc":"2.0","id":7,"result":"A"}`)
	c.Assert(waitResult(c, resultA).result, gc.Equals, "A")
	c.Assert(waitResult(c, resultB).result, gc.Equals, "B")
}

func (s *connSuite) TestDuplicateIDGivesUp(c *gc.C) {
	conn := s.connect(c, s.config(7))

	result := goCall(context.Background(), conn, "a", nil)
	s.nextRequest(c)

	err := conn.Call(context.Background(), "b", nil, nil)
	c.Assert(err, jc.ErrorIs, rpc.ErrDuplicateID)
	c.Assert(s.transport.Written(), gc.Equals, 1)

	s.transport.Deliver(`{"jsonrpc":"2.0","id":7,"result":"A"}`)
	c.Assert(waitResult(c, result).result, gc.Equals, "A")
}

func (s *connSuite) TestWorker(c *gc.C) {
	conn := s.connect(c, s.config())

	var w worker.Worker = conn
	c.Assert(worker.Stop(w), jc.ErrorIsNil)
	c.Assert(conn.State(), gc.Equals, rpc.Disconnected)
}

func (s *connSuite) TestKillDoesNotWaitForTransport(c *gc.C) {
	conn := s.connect(c, s.config())

	result := goCall(context.Background(), conn, "vm.list", nil)
	s.nextRequest(c)

	release := s.transport.HoldClose()
	defer release()
	killed := make(chan struct{})
	go func() {
		conn.Kill()
		close(killed)
	}()
	select {
	case <-killed:
	case <-time.After(longWait):
		c.Fatalf("Kill blocked on closing the transport")
	}
	c.Assert(waitResult(c, result).err, jc.ErrorIs, rpc.ErrConnectionClosed)
	select {
	case <-conn.Dead():
		c.Fatalf("connection dead before its transport closed")
	default:
	}

	release()
	c.Assert(conn.Wait(), jc.ErrorIsNil)
	c.Assert(conn.State(), gc.Equals, rpc.Disconnected)
}

func (s *connSuite) TestStateString(c *gc.C) {
	c.Check(rpc.Disconnected.String(), gc.Equals, "disconnected")
	c.Check(rpc.Connecting.String(), gc.Equals, "connecting")
	c.Check(rpc.Connected.String(), gc.Equals, "connected")
	c.Check(rpc.Closing.String(), gc.Equals, "closing")
	c.Check(rpc.State(42).String(), gc.Equals, "State(42)")
}

type recordingObserver struct {
	mu        sync.Mutex
	started   []string
	finished  []rpc.Outcome
	unmatched []uint64
}

func (o *recordingObserver) CallStarted(method string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started = append(o.started, method)
}

func (o *recordingObserver) CallFinished(method string, outcome rpc.Outcome, elapsed time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished = append(o.finished, outcome)
}

func (o *recordingObserver) UnmatchedResponse(id uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.unmatched = append(o.unmatched, id)
}

func (o *recordingObserver) startedCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.started)
}

func (o *recordingObserver) finishedOutcomes() []rpc.Outcome {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]rpc.Outcome(nil), o.finished...)
}

func (o *recordingObserver) unmatchedIDs() []uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]uint64(nil), o.unmatched...)
}
