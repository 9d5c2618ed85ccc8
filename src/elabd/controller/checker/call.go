package checker

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/uber/elabd/src/elabd/internal/clock"
	"go.lsp.dev/jsonrpc2"
)

// Call is the pending result of a request to the checker.
// It is resolved exactly once: with the checker's result, a checker error, a timeout, or the loss of the session.
type Call struct {
	method    string
	params    json.RawMessage
	seq       uint64
	submitted time.Time

	// mu guards the timer and the fields set when the call is written to a process instance.
	mu       sync.Mutex
	id       jsonrpc2.ID
	instance int
	timer    clock.Timer

	once sync.Once
	done chan struct{}

	result json.RawMessage
	err    error
}

func newCall(method string, params any, seq uint64, now time.Time) (*Call, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshaling %q params: %w", method, err)
	}
	return &Call{
		method:    method,
		params:    raw,
		seq:       seq,
		submitted: now,
		done:      make(chan struct{}),
	}, nil
}

// Method returns the method being called.
func (c *Call) Method() string {
	return c.method
}

// ID returns the correlation id assigned when the call was sent. It is only meaningful once the call has been written.
func (c *Call) ID() jsonrpc2.ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

// Submitted returns the time the call was issued.
func (c *Call) Submitted() time.Time {
	return c.submitted
}

// Done is closed once the call is resolved.
func (c *Call) Done() <-chan struct{} {
	return c.done
}

// Await blocks until the call is resolved or ctx is done.
// Cancelling ctx abandons only this wait; the call itself stays pending until it resolves.
func (c *Call) Await(ctx context.Context) (json.RawMessage, error) {
	select {
	case <-c.done:
		return c.result, c.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// resolve settles the call. It reports false if the call was already resolved.
func (c *Call) resolve(result json.RawMessage, err error) bool {
	resolved := false
	c.once.Do(func() {
		c.mu.Lock()
		if c.timer != nil {
			c.timer.Stop()
		}
		c.mu.Unlock()
		c.result = result
		c.err = err
		close(c.done)
		resolved = true
	})
	return resolved
}

func (c *Call) setTimer(t clock.Timer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timer = t
}

// assign records the instance the call is written to and its correlation id there.
func (c *Call) assign(instance int, id jsonrpc2.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.instance = instance
	c.id = id
}

func (c *Call) key() pendingKey {
	c.mu.Lock()
	defer c.mu.Unlock()
	return pendingKey{instance: c.instance, id: c.id}
}

func (c *Call) message() (*jsonrpc2.Call, error) {
	return jsonrpc2.NewCall(c.ID(), c.method, c.params)
}

func sortCalls(calls []*Call) {
	sort.Slice(calls, func(i, j int) bool { return calls[i].seq < calls[j].seq })
}
