package checker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tally "github.com/uber-go/tally/v4"
	"github.com/uber/elabd/src/elabd/entity"
	"github.com/uber/elabd/src/elabd/internal/clock"
	"github.com/uber/elabd/src/elabd/internal/executor"
	"github.com/uber/elabd/src/elabd/internal/executor/executormock"
	"github.com/uber/elabd/src/elabd/internal/serverinfofile"
	"github.com/uber/elabd/src/elabd/internal/wire"
	"go.lsp.dev/jsonrpc2"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const (
	_testRoot   = "/ws"
	_testClient = "vscode"
	_waitFor    = 2 * time.Second
	_tick       = time.Millisecond
)

// handlerFunc lets a test take over a message received by a fake checker. It returns true when it handled the message.
type handlerFunc func(fc *fakeChecker, msg jsonrpc2.Message) bool

// fakeChecker is an in-memory checker process speaking the wire protocol.
type fakeChecker struct {
	pid     int
	stdinR  *io.PipeReader
	stdinW  *io.PipeWriter
	stdoutR *io.PipeReader
	stdoutW *io.PipeWriter
	enc     *wire.Encoder
	handler handlerFunc
	killErr error

	mu       sync.Mutex
	received []jsonrpc2.Message

	exitOnce sync.Once
	exitErr  error
	exited   chan struct{}
	served   chan struct{}
}

func newFakeChecker(pid int, handler handlerFunc) *fakeChecker {
	stdinR, stdinW := io.Pipe()
	stdoutR, stdoutW := io.Pipe()
	fc := &fakeChecker{
		pid:     pid,
		stdinR:  stdinR,
		stdinW:  stdinW,
		stdoutR: stdoutR,
		stdoutW: stdoutW,
		enc:     wire.NewEncoder(stdoutW),
		handler: handler,
		exited:  make(chan struct{}),
		served:  make(chan struct{}),
	}
	go fc.serve()
	return fc
}

func (f *fakeChecker) Stdin() io.WriteCloser { return f.stdinW }
func (f *fakeChecker) Stdout() io.ReadCloser { return f.stdoutR }
func (f *fakeChecker) Pid() int               { return f.pid }

func (f *fakeChecker) Wait() error {
	<-f.exited
	return f.exitErr
}

func (f *fakeChecker) Kill() error {
	f.exit(errors.New("signal: killed"))
	return f.killErr
}

func (f *fakeChecker) write(msg jsonrpc2.Message) {
	f.enc.Write(msg)
}

func (f *fakeChecker) writeRaw(data string) {
	f.stdoutW.Write([]byte(data))
}

func (f *fakeChecker) exit(err error) {
	f.exitOnce.Do(func() {
		f.exitErr = err
		f.stdoutW.Close()
		f.stdinR.CloseWithError(io.ErrClosedPipe)
		close(f.exited)
	})
}

func (f *fakeChecker) serve() {
	defer close(f.served)

	dec := wire.NewDecoder(f.stdinR)
	for {
		msg, err := dec.Next()
		if err != nil {
			return
		}

		f.mu.Lock()
		f.received = append(f.received, msg)
		f.mu.Unlock()

		if f.handler != nil && f.handler(f, msg) {
			continue
		}
		if call, ok := msg.(*jsonrpc2.Call); ok {
			switch call.Method() {
			case entity.CheckerMethodInitialize:
				f.reply(call.ID(), entity.InitializeResult{Name: "fake", Version: "1.0"})
			default:
				// Echo the params back.
				f.reply(call.ID(), call.Params())
			}
		}
	}
}

func (f *fakeChecker) reply(id jsonrpc2.ID, result any) {
	resp, err := jsonrpc2.NewResponse(id, result, nil)
	if err != nil {
		panic(err)
	}
	f.write(resp)
}

func (f *fakeChecker) replyError(id jsonrpc2.ID, code jsonrpc2.Code, message string) {
	resp, err := jsonrpc2.NewResponse(id, nil, jsonrpc2.Errorf(code, "%s", message))
	if err != nil {
		panic(err)
	}
	f.write(resp)
}

func (f *fakeChecker) notify(method string, params any) {
	n, err := jsonrpc2.NewNotification(method, params)
	if err != nil {
		panic(err)
	}
	f.write(n)
}

func (f *fakeChecker) messages() []jsonrpc2.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]jsonrpc2.Message(nil), f.received...)
}

// methods lists the methods received, in order.
func (f *fakeChecker) methods() []string {
	var result []string
	for _, msg := range f.messages() {
		switch msg := msg.(type) {
		case *jsonrpc2.Call:
			result = append(result, msg.Method())
		case *jsonrpc2.Notification:
			result = append(result, msg.Method())
		}
	}
	return result
}

func (f *fakeChecker) calls(method string) []*jsonrpc2.Call {
	var result []*jsonrpc2.Call
	for _, msg := range f.messages() {
		if call, ok := msg.(*jsonrpc2.Call); ok && call.Method() == method {
			result = append(result, call)
		}
	}
	return result
}

func (f *fakeChecker) notifications(method string) []*jsonrpc2.Notification {
	var result []*jsonrpc2.Notification
	for _, msg := range f.messages() {
		if n, ok := msg.(*jsonrpc2.Notification); ok && n.Method() == method {
			result = append(result, n)
		}
	}
	return result
}

func isClosed(c <-chan struct{}) bool {
	select {
	case <-c:
		return true
	default:
		return false
	}
}

// fakeClock records sleeps and returns from them immediately. Timers run on real time.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

var _ clock.Clock = (*fakeClock)(nil)

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) clock.Timer {
	return time.AfterFunc(d, f)
}

func (c *fakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

// harness wires a Manager to fake checkers.
type harness struct {
	t     *testing.T
	m     Manager
	clock *fakeClock
	scope tally.TestScope
	logs  *observer.ObservedLogs

	mu       sync.Mutex
	handler  handlerFunc
	spawnErr func(n int) error
	killErr  error
	infoFile serverinfofile.ServerInfoFile
	output   func(name string) (io.WriteCloser, error)
	cmds     []*exec.Cmd
	checkers []*fakeChecker
	events   []entity.StateEvent
	notifs   []entity.CheckerNotification
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.RequestTimeout = 5 * time.Second
	cfg.HandshakeTimeout = time.Second
	return cfg
}

func newHarness(t *testing.T, cfg Config, opts ...func(*harness)) *harness {
	core, logs := observer.New(zap.InfoLevel)
	h := &harness{
		t:     t,
		clock: newFakeClock(),
		scope: tally.NewTestScope("", nil),
		logs:  logs,
	}
	for _, opt := range opts {
		opt(h)
	}

	ctrl := gomock.NewController(t)
	executorMock := executormock.NewMockExecutor(ctrl)
	executorMock.EXPECT().Start(gomock.Any()).DoAndReturn(h.start).AnyTimes()

	h.m = New(Options{
		WorkspaceRoot: _testRoot,
		ClientName:    _testClient,
		Config:        cfg,
		Executor:      executorMock,
		Clock:         h.clock,
		Scope:         h.scope,
		Logger:        zap.New(core).Sugar(),
		InfoFile:      h.infoFile,
		Output:        h.output,
	})
	h.m.Subscribe(func(ev entity.StateEvent) {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.events = append(h.events, ev)
	})
	h.m.OnNotification(func(n entity.CheckerNotification) {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.notifs = append(h.notifs, n)
	})

	t.Cleanup(func() {
		require.NoError(t, h.m.Stop(context.Background()))
		h.mu.Lock()
		defer h.mu.Unlock()
		for _, fc := range h.checkers {
			fc.exit(nil)
			<-fc.served
		}
	})
	return h
}

func withHandler(handler handlerFunc) func(*harness) {
	return func(h *harness) { h.handler = handler }
}

func withSpawnError(f func(n int) error) func(*harness) {
	return func(h *harness) { h.spawnErr = f }
}

func withKillError(err error) func(*harness) {
	return func(h *harness) { h.killErr = err }
}

func withInfoFile(f serverinfofile.ServerInfoFile) func(*harness) {
	return func(h *harness) { h.infoFile = f }
}

func withOutput(f func(name string) (io.WriteCloser, error)) func(*harness) {
	return func(h *harness) { h.output = f }
}

func (h *harness) start(cmd *exec.Cmd) (executor.Process, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := len(h.cmds)
	h.cmds = append(h.cmds, cmd)
	if h.spawnErr != nil {
		if err := h.spawnErr(n); err != nil {
			return nil, err
		}
	}
	fc := newFakeChecker(1000+n, h.handler)
	fc.killErr = h.killErr
	h.checkers = append(h.checkers, fc)
	return fc, nil
}

func (h *harness) commands() []*exec.Cmd {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*exec.Cmd(nil), h.cmds...)
}

func (h *harness) checker(i int) *fakeChecker {
	h.mu.Lock()
	defer h.mu.Unlock()
	require.Greater(h.t, len(h.checkers), i, "checker %d was never spawned", i)
	return h.checkers[i]
}

func (h *harness) spawned() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.checkers)
}

func (h *harness) stateEvents() []entity.StateEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]entity.StateEvent(nil), h.events...)
}

// states lists the state of every event that changed the state.
func (h *harness) states() []entity.SessionState {
	var result []entity.SessionState
	for _, ev := range h.stateEvents() {
		if ev.Attempt == 0 {
			result = append(result, ev.State)
		}
	}
	return result
}

func (h *harness) received() []entity.CheckerNotification {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]entity.CheckerNotification(nil), h.notifs...)
}

func (h *harness) waitForState(state entity.SessionState) {
	h.t.Helper()
	require.Eventually(h.t, func() bool { return h.m.State() == state }, _waitFor, _tick, "never reached state %v, stuck in %v", state, h.m.State())
}

func (h *harness) counter(name string) int64 {
	for _, c := range h.scope.Snapshot().Counters() {
		if c.Name() == name {
			return c.Value()
		}
	}
	return 0
}

// hangOn returns a handler that never answers calls to method.
func hangOn(method string) handlerFunc {
	return func(_ *fakeChecker, msg jsonrpc2.Message) bool {
		call, ok := msg.(*jsonrpc2.Call)
		return ok && call.Method() == method
	}
}

func mustJSON(t *testing.T, v any) string {
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}
