package checker

import (
	"sync"

	"go.lsp.dev/jsonrpc2"
)

// pendingKey scopes a correlation id to the process instance it was sent to, since ids restart from 1 with every instance.
type pendingKey struct {
	instance int
	id       jsonrpc2.ID
}

// pendingStore tracks calls that were written to the checker and are waiting for a response.
type pendingStore struct {
	calls map[pendingKey]*Call
	mu    sync.Mutex
}

func (p *pendingStore) add(instance int, call *Call) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.calls == nil {
		p.calls = make(map[pendingKey]*Call)
	}
	p.calls[pendingKey{instance: instance, id: call.ID()}] = call
}

// take removes and returns the call waiting on the given id, if any.
func (p *pendingStore) take(instance int, id jsonrpc2.ID) (*Call, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := pendingKey{instance: instance, id: id}
	call, ok := p.calls[key]
	if ok {
		delete(p.calls, key)
	}
	return call, ok
}

// remove drops the given call if it is still pending.
func (p *pendingStore) remove(call *Call) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := call.key()
	if existing, ok := p.calls[key]; ok && existing == call {
		delete(p.calls, key)
		return true
	}
	return false
}

// drainInstance removes and returns every call pending on the given instance, in issuance order.
func (p *pendingStore) drainInstance(instance int) []*Call {
	p.mu.Lock()
	defer p.mu.Unlock()

	var result []*Call
	for key, call := range p.calls {
		if key.instance == instance {
			result = append(result, call)
			delete(p.calls, key)
		}
	}
	sortCalls(result)
	return result
}
