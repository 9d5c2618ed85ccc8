package checker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/uuid"
	tally "github.com/uber-go/tally/v4"
	"github.com/uber/elabd/src/elabd/entity"
	"github.com/uber/elabd/src/elabd/factory"
	"github.com/uber/elabd/src/elabd/internal/clock"
	elabderrors "github.com/uber/elabd/src/elabd/internal/errors"
	"github.com/uber/elabd/src/elabd/internal/executor"
	"github.com/uber/elabd/src/elabd/internal/queue"
	"github.com/uber/elabd/src/elabd/internal/serverinfofile"
	"github.com/uber/elabd/src/elabd/internal/wire"
	"go.lsp.dev/jsonrpc2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	_flightStart   = "start"
	_flightRestart = "restart"

	_fmtPidKey    = "checker-pid:%s"
	_fmtOutputKey = "checker:%s"
)

// Manager owns the checker process of a single workspace.
type Manager interface {
	WorkspaceRoot() string
	State() entity.SessionState
	// Pid returns the process id of the running checker, or 0.
	Pid() int

	// Start spawns the checker and completes the handshake. It is a no-op while a process is starting or ready.
	Start(ctx context.Context) error
	// Stop terminates the checker and forgets all in-flight calls and replay state.
	Stop(ctx context.Context) error
	// Restart replaces the running checker. Concurrent calls share a single restart.
	Restart(ctx context.Context) error

	// Request sends a request and returns its pending result.
	Request(ctx context.Context, method string, params any) (*Call, error)
	// Do sends a request, waits for its result, and decodes it into result when non-nil.
	Do(ctx context.Context, method string, params any, result any) error
	// Notify sends a notification. It is dropped with ErrNoSession unless the checker is ready.
	Notify(ctx context.Context, method string, params any) error
	// SyncReplayable sends a notification and keeps its params as the copy for file that is replayed after every restart.
	SyncReplayable(ctx context.Context, method string, file string, params any) error
	// ForgetReplay drops every replay copy for file.
	ForgetReplay(file string)

	// Subscribe registers f for state transitions, delivered in order. The returned func removes it.
	// f must not call Start, Stop or Restart synchronously.
	Subscribe(f func(entity.StateEvent)) (unsubscribe func())
	// OnNotification registers f for notifications sent by the checker. The returned func removes it.
	OnNotification(f func(entity.CheckerNotification)) (unsubscribe func())
}

// Options are the dependencies of a single Manager.
type Options struct {
	WorkspaceRoot string
	ClientName    string
	Config        Config
	Executor      executor.Executor
	Clock         clock.Clock
	Logger        *zap.SugaredLogger
	Scope         tally.Scope
	// InfoFile, if set, records the pid of the running checker.
	InfoFile serverinfofile.ServerInfoFile
	// Output, if set, creates the writer receiving the checker's stderr.
	Output func(name string) (io.WriteCloser, error)
}

type metrics struct {
	requests       tally.Counter
	timeouts       tally.Counter
	checkerErrors  tally.Counter
	restarts       tally.Counter
	crashes        tally.Counter
	protocolErrors tally.Counter
	notifications  tally.Counter
	state          tally.Gauge
	latency        tally.Timer
}

func newMetrics(scope tally.Scope) metrics {
	return metrics{
		requests:       scope.Counter("requests"),
		timeouts:       scope.Counter("request_timeouts"),
		checkerErrors:  scope.Counter("request_errors"),
		restarts:       scope.Counter("restarts"),
		crashes:        scope.Counter("crashes"),
		protocolErrors: scope.Counter("protocol_errors"),
		notifications:  scope.Counter("notifications"),
		state:          scope.Gauge("state"),
		latency:        scope.Timer("request_latency"),
	}
}

// instance is one spawned checker process.
type instance struct {
	seq     int
	id      uuid.UUID
	proc    executor.Process
	outbox  *queue.Unbounded[jsonrpc2.Message]
	retired atomic.Bool

	readDone  chan struct{}
	writeDone chan struct{}
	exited    chan struct{}
}

type manager struct {
	workspaceRoot string
	clientName    string
	cfg           Config
	executor      executor.Executor
	clock         clock.Clock
	logger        *zap.SugaredLogger
	metrics       metrics
	infoFile      serverinfofile.ServerInfoFile
	outputFactory func(name string) (io.WriteCloser, error)

	group   singleflight.Group
	pending pendingStore
	replay  replayStore

	mu         sync.Mutex
	state      entity.SessionState
	inst       *instance
	instSeq    int
	nextID     int32
	callSeq    uint64
	queued     []*Call
	attempts   int
	readySince time.Time
	// epoch changes on every Stop and explicit Restart, invalidating launches and recoveries started before it.
	epoch  uint64
	output io.WriteCloser
	events []entity.StateEvent

	emitMu    sync.Mutex
	subsMu    sync.Mutex
	subSeq    int
	stateSubs map[int]func(entity.StateEvent)
	notifSubs map[int]func(entity.CheckerNotification)
}

// New creates a Manager in the Stopped state.
func New(opts Options) Manager {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	if opts.Scope == nil {
		opts.Scope = tally.NoopScope
	}

	return &manager{
		workspaceRoot: opts.WorkspaceRoot,
		clientName:    opts.ClientName,
		cfg:           opts.Config,
		executor:      opts.Executor,
		clock:         opts.Clock,
		logger:        opts.Logger.With("workspace", opts.WorkspaceRoot),
		metrics:       newMetrics(opts.Scope),
		infoFile:      opts.InfoFile,
		outputFactory: opts.Output,
		state:         entity.SessionStateStopped,
		stateSubs:     make(map[int]func(entity.StateEvent)),
		notifSubs:     make(map[int]func(entity.CheckerNotification)),
	}
}

func (m *manager) WorkspaceRoot() string {
	return m.workspaceRoot
}

func (m *manager) State() entity.SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *manager) Pid() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inst == nil {
		return 0
	}
	return m.inst.proc.Pid()
}

func (m *manager) Start(ctx context.Context) error {
	_, err, _ := m.group.Do(_flightStart, func() (interface{}, error) {
		return nil, m.start(ctx)
	})
	return err
}

func (m *manager) start(ctx context.Context) error {
	m.mu.Lock()
	if m.state.Live() {
		m.mu.Unlock()
		return nil
	}
	m.attempts = 0
	m.transitionLocked(entity.SessionStateStarting, nil)
	epoch := m.epoch
	m.mu.Unlock()
	m.flushEvents()

	if err := m.launch(ctx, epoch); err != nil {
		m.launchFailed(epoch, err)
		return err
	}
	return nil
}

func (m *manager) Restart(ctx context.Context) error {
	_, err, _ := m.group.Do(_flightRestart, func() (interface{}, error) {
		return nil, m.restart(ctx)
	})
	return err
}

func (m *manager) restart(ctx context.Context) error {
	m.mu.Lock()
	m.epoch++
	epoch := m.epoch
	old := m.inst
	if old != nil {
		m.retireLocked(old, elabderrors.ErrSessionRestarted)
	}
	m.attempts = 0
	next := entity.SessionStateRestarting
	if !m.state.Live() {
		next = entity.SessionStateStarting
	}
	m.transitionLocked(next, nil)
	m.mu.Unlock()
	m.flushEvents()
	m.metrics.restarts.Inc(1)
	m.logger.Infow("restarting checker", "running", old != nil)

	if old != nil {
		if err := m.terminate(ctx, old); err != nil {
			m.logger.Warnw("terminating checker", zap.Error(err))
		}
	}

	if err := m.launch(ctx, epoch); err != nil {
		m.launchFailed(epoch, err)
		return err
	}
	return nil
}

func (m *manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	m.epoch++
	old := m.inst
	if old != nil {
		m.retireLocked(old, elabderrors.ErrSessionStopped)
	}
	m.rejectQueuedLocked(elabderrors.ErrSessionStopped)
	m.replay.clear()
	m.attempts = 0
	if m.state != entity.SessionStateStopped {
		m.transitionLocked(entity.SessionStateStopped, nil)
	}
	output := m.output
	m.output = nil
	m.mu.Unlock()
	m.flushEvents()

	var err error
	if old != nil {
		err = multierr.Append(err, m.terminate(ctx, old))
		m.publishPid(0)
	}
	if output != nil {
		err = multierr.Append(err, output.Close())
	}
	return err
}

func (m *manager) Request(ctx context.Context, method string, params any) (*Call, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.callSeq++
	call, err := newCall(method, params, m.callSeq, m.clock.Now())
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}

	autoStart := false
	switch m.state {
	case entity.SessionStateReady:
		m.sendLocked(m.inst, call)
	case entity.SessionStateStarting, entity.SessionStateRestarting:
		m.queued = append(m.queued, call)
	case entity.SessionStateStopped:
		if !m.cfg.AutoRestart {
			m.mu.Unlock()
			return nil, elabderrors.ErrNoSession
		}
		m.queued = append(m.queued, call)
		autoStart = true
	default:
		// Crashed sessions wait for an explicit restart.
		m.mu.Unlock()
		return nil, elabderrors.ErrNoSession
	}
	call.setTimer(m.clock.AfterFunc(m.cfg.RequestTimeout, func() { m.expire(call) }))
	m.mu.Unlock()

	if autoStart {
		go func() {
			if err := m.Start(context.Background()); err != nil {
				m.logger.Warnw("starting checker on demand", "method", method, zap.Error(err))
			}
		}()
	}
	return call, nil
}

func (m *manager) Do(ctx context.Context, method string, params any, result any) error {
	call, err := m.Request(ctx, method, params)
	if err != nil {
		return err
	}

	raw, err := call.Await(ctx)
	if err != nil {
		return err
	}
	if result != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, result); err != nil {
			return fmt.Errorf("decoding %q result: %w", method, err)
		}
	}
	return nil
}

func (m *manager) Notify(ctx context.Context, method string, params any) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshaling %q params: %w", method, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != entity.SessionStateReady {
		return elabderrors.ErrNoSession
	}
	return m.notifyLocked(m.inst, method, raw)
}

func (m *manager) SyncReplayable(ctx context.Context, method string, file string, params any) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshaling %q params: %w", method, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.replay.put(method, file, raw)
	switch m.state {
	case entity.SessionStateReady:
		return m.notifyLocked(m.inst, method, raw)
	case entity.SessionStateStarting, entity.SessionStateRestarting:
		// Delivered by the replay once the new process is ready.
		return nil
	default:
		return elabderrors.ErrNoSession
	}
}

func (m *manager) ForgetReplay(file string) {
	m.replay.forget(file)
}

func (m *manager) Subscribe(f func(entity.StateEvent)) func() {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()

	m.subSeq++
	id := m.subSeq
	m.stateSubs[id] = f
	return func() {
		m.subsMu.Lock()
		defer m.subsMu.Unlock()
		delete(m.stateSubs, id)
	}
}

func (m *manager) OnNotification(f func(entity.CheckerNotification)) func() {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()

	m.subSeq++
	id := m.subSeq
	m.notifSubs[id] = f
	return func() {
		m.subsMu.Lock()
		defer m.subsMu.Unlock()
		delete(m.notifSubs, id)
	}
}

// launch spawns a process and performs the handshake. On success the session is Ready and replay state and queued calls have been sent.
func (m *manager) launch(ctx context.Context, epoch uint64) error {
	inst, err := m.spawn(epoch)
	if err != nil {
		return err
	}

	var result entity.InitializeResult
	if err := m.handshake(ctx, inst, &result); err != nil {
		m.mu.Lock()
		m.retireLocked(inst, elabderrors.ErrSessionRestarted)
		m.mu.Unlock()
		if termErr := m.terminate(context.Background(), inst); termErr != nil {
			m.logger.Warnw("terminating checker after failed handshake", zap.Error(termErr))
		}
		return &elabderrors.StartError{Command: m.cfg.Path, Err: err}
	}

	m.mu.Lock()
	if m.epoch != epoch || m.inst != inst {
		m.mu.Unlock()
		return &elabderrors.StartError{Command: m.cfg.Path, Err: elabderrors.ErrSessionStopped}
	}

	m.transitionLocked(entity.SessionStateReady, nil)
	m.readySince = m.clock.Now()

	replayed := m.replay.snapshot()
	for _, entry := range replayed {
		if err := m.notifyLocked(inst, entry.method, entry.params); err != nil {
			m.logger.Warnw("replaying notification", "method", entry.method, "file", entry.file, zap.Error(err))
		}
	}

	queued := m.queued
	m.queued = nil
	for _, call := range queued {
		m.sendLocked(inst, call)
	}
	pid := inst.proc.Pid()
	m.mu.Unlock()
	m.flushEvents()

	m.publishPid(pid)
	m.logger.Infow("checker ready",
		"instance", inst.id,
		"pid", pid,
		"name", result.Name,
		"version", result.Version,
		"replayed", len(replayed),
		"flushed", len(queued),
	)
	return nil
}

func (m *manager) spawn(epoch uint64) (*instance, error) {
	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		return nil, &elabderrors.StartError{Command: m.cfg.Path, Err: elabderrors.ErrSessionStopped}
	}
	if m.output == nil && m.outputFactory != nil {
		output, err := m.outputFactory(fmt.Sprintf(_fmtOutputKey, m.workspaceRoot))
		if err != nil {
			m.logger.Warnw("creating checker output file", zap.Error(err))
		} else {
			m.output = output
		}
	}
	stderr := m.output
	m.mu.Unlock()

	cmd := exec.Command(m.cfg.Path, m.cfg.Args...)
	cmd.Dir = m.workspaceRoot
	if stderr != nil {
		cmd.Stderr = stderr
	}

	proc, err := m.executor.Start(cmd)
	if err != nil {
		return nil, &elabderrors.StartError{Command: m.cfg.Path, Err: err}
	}

	inst := &instance{
		id:        factory.UUID(),
		proc:      proc,
		outbox:    queue.New[jsonrpc2.Message](),
		readDone:  make(chan struct{}),
		writeDone: make(chan struct{}),
		exited:    make(chan struct{}),
	}

	m.mu.Lock()
	m.instSeq++
	inst.seq = m.instSeq
	superseded := m.epoch != epoch
	if !superseded {
		m.inst = inst
		m.nextID = 0
	} else {
		inst.retired.Store(true)
		inst.outbox.Discard()
	}
	m.mu.Unlock()

	go m.read(inst)
	go m.write(inst)
	go m.wait(inst)

	if superseded {
		m.terminate(context.Background(), inst)
		return nil, &elabderrors.StartError{Command: m.cfg.Path, Err: elabderrors.ErrSessionStopped}
	}

	m.logger.Infow("checker spawned", "instance", inst.id, "pid", proc.Pid())
	return inst, nil
}

func (m *manager) handshake(ctx context.Context, inst *instance, result *entity.InitializeResult) error {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.HandshakeTimeout)
	defer cancel()

	m.mu.Lock()
	if m.inst != inst {
		m.mu.Unlock()
		return elabderrors.ErrSessionRestarted
	}
	m.callSeq++
	call, err := newCall(entity.CheckerMethodInitialize, entity.InitializeParams{
		WorkspaceRoot: m.workspaceRoot,
		ClientName:    m.clientName,
	}, m.callSeq, m.clock.Now())
	if err != nil {
		m.mu.Unlock()
		return err
	}
	m.sendLocked(inst, call)
	m.mu.Unlock()

	raw, err := call.Await(ctx)
	if err != nil {
		m.pending.remove(call)
		call.resolve(nil, err)
		return err
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return fmt.Errorf("decoding %q result: %w", entity.CheckerMethodInitialize, err)
	}
	return nil
}

// launchFailed settles the session in Crashed unless the launch was superseded by Stop or Restart.
func (m *manager) launchFailed(epoch uint64, err error) {
	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		return
	}
	m.transitionLocked(entity.SessionStateCrashed, err)
	m.rejectQueuedLocked(err)
	m.mu.Unlock()
	m.flushEvents()
	m.logger.Errorw("checker failed to start", zap.Error(err))
}

// supervise restarts the checker after an unexpected exit, backing off between attempts.
func (m *manager) supervise(epoch uint64, cause error) {
	for {
		m.mu.Lock()
		if m.epoch != epoch || m.state != entity.SessionStateRestarting {
			m.mu.Unlock()
			return
		}

		m.attempts++
		attempt := m.attempts
		if attempt > m.cfg.Restart.MaxAttempts {
			err := fmt.Errorf("%w after %d attempts: %v", elabderrors.ErrRestartsExhausted, attempt-1, cause)
			m.transitionLocked(entity.SessionStateCrashed, err)
			m.rejectQueuedLocked(err)
			m.mu.Unlock()
			m.flushEvents()
			m.publishPid(0)
			m.logger.Errorw("giving up on checker", zap.Error(err))
			return
		}

		delay := m.cfg.Restart.Backoff(attempt)
		m.events = append(m.events, entity.StateEvent{
			WorkspaceRoot: m.workspaceRoot,
			State:         entity.SessionStateRestarting,
			Previous:      entity.SessionStateRestarting,
			Err:           cause,
			Attempt:       attempt,
			NextRetry:     delay,
		})
		m.mu.Unlock()
		m.flushEvents()

		m.metrics.restarts.Inc(1)
		m.logger.Warnw("scheduling checker restart", "attempt", attempt, "delay", delay, zap.Error(cause))
		m.clock.Sleep(delay)

		m.mu.Lock()
		stale := m.epoch != epoch || m.state != entity.SessionStateRestarting
		m.mu.Unlock()
		if stale {
			return
		}

		err := m.launch(context.Background(), epoch)
		if err == nil {
			return
		}
		cause = err
	}
}

func (m *manager) read(inst *instance) {
	defer close(inst.readDone)

	stdout := inst.proc.Stdout()
	defer stdout.Close()

	dec := wire.NewDecoder(stdout)
	for {
		msg, err := dec.Next()
		if err != nil {
			var protoErr *elabderrors.ProtocolError
			if errors.As(err, &protoErr) {
				m.metrics.protocolErrors.Inc(1)
				m.logger.Warnw("discarding malformed checker message", "instance", inst.id, zap.Error(err))
				continue
			}
			if !errors.Is(err, io.EOF) && !inst.retired.Load() {
				m.logger.Warnw("reading checker output", "instance", inst.id, zap.Error(err))
			}
			return
		}

		if inst.retired.Load() {
			continue
		}

		switch msg := msg.(type) {
		case *jsonrpc2.Response:
			m.handleResponse(inst, msg)
		case *jsonrpc2.Notification:
			m.handleNotification(msg)
		case *jsonrpc2.Call:
			reply, err := jsonrpc2.NewResponse(msg.ID(), nil, jsonrpc2.Errorf(jsonrpc2.MethodNotFound, "method %q is not supported", msg.Method()))
			if err == nil {
				inst.outbox.Push(reply)
			}
		}
	}
}

// write drains the outbox of inst in order.
func (m *manager) write(inst *instance) {
	defer close(inst.writeDone)

	enc := wire.NewEncoder(inst.proc.Stdin())
	for {
		msg, ok := inst.outbox.Pop()
		if !ok {
			return
		}
		if err := enc.Write(msg); err != nil {
			if !inst.retired.Load() {
				m.logger.Warnw("writing to checker", "instance", inst.id, zap.Error(err))
			}
			inst.outbox.Discard()
			return
		}
	}
}

func (m *manager) wait(inst *instance) {
	err := inst.proc.Wait()
	close(inst.exited)
	m.handleExit(inst, err)
}

func (m *manager) handleExit(inst *instance, exitErr error) {
	m.mu.Lock()
	if m.inst != inst || inst.retired.Load() {
		// Terminated on purpose.
		m.mu.Unlock()
		return
	}

	cause := errors.New("checker exited unexpectedly")
	if exitErr != nil {
		cause = fmt.Errorf("checker exited unexpectedly: %w", exitErr)
	}
	m.retireLocked(inst, fmt.Errorf("%w: %v", elabderrors.ErrSessionRestarted, cause))
	m.metrics.crashes.Inc(1)
	m.logger.Warnw("checker exited", "instance", inst.id, "state", m.state, zap.Error(exitErr))

	crashed := false
	if m.state == entity.SessionStateReady {
		if m.clock.Now().Sub(m.readySince) >= m.cfg.Restart.ResetWindow {
			m.attempts = 0
		}
		if m.cfg.AutoRestart {
			m.transitionLocked(entity.SessionStateRestarting, cause)
			go m.supervise(m.epoch, cause)
		} else {
			m.transitionLocked(entity.SessionStateCrashed, cause)
			m.rejectQueuedLocked(elabderrors.ErrNoSession)
			crashed = true
		}
	}
	// While starting or restarting, the launch in progress sees its handshake fail.
	m.mu.Unlock()
	m.flushEvents()

	if crashed {
		m.publishPid(0)
	}
}

func (m *manager) handleResponse(inst *instance, resp *jsonrpc2.Response) {
	call, ok := m.pending.take(inst.seq, resp.ID())
	if !ok {
		m.logger.Warnw("response for unknown request", "instance", inst.id, "id", resp.ID())
		return
	}

	if err := resp.Err(); err != nil {
		checkerErr := &elabderrors.CheckerError{Method: call.method, Message: err.Error()}
		var rpcErr *jsonrpc2.Error
		if errors.As(err, &rpcErr) {
			checkerErr.Code = int64(rpcErr.Code)
			checkerErr.Message = rpcErr.Message
		}
		m.metrics.checkerErrors.Inc(1)
		call.resolve(nil, checkerErr)
		return
	}

	m.metrics.latency.Record(m.clock.Now().Sub(call.submitted))
	call.resolve(resp.Result(), nil)
}

func (m *manager) handleNotification(msg *jsonrpc2.Notification) {
	m.metrics.notifications.Inc(1)
	n := entity.CheckerNotification{
		WorkspaceRoot: m.workspaceRoot,
		Method:        msg.Method(),
		Params:        msg.Params(),
	}

	if n.Method == entity.CheckerMethodLog {
		m.logCheckerMessage(n.Params)
	}

	m.subsMu.Lock()
	subs := make([]func(entity.CheckerNotification), 0, len(m.notifSubs))
	for _, f := range m.notifSubs {
		subs = append(subs, f)
	}
	m.subsMu.Unlock()

	for _, f := range subs {
		m.safeCall(n.Method, func() { f(n) })
	}
}

func (m *manager) logCheckerMessage(raw json.RawMessage) {
	var params entity.LogParams
	if err := json.Unmarshal(raw, &params); err != nil {
		m.logger.Warnw("malformed checker log message", zap.Error(err))
		return
	}

	logger := m.logger.With("source", "checker")
	switch params.Level {
	case "error":
		logger.Error(params.Message)
	case "warning", "warn":
		logger.Warn(params.Message)
	case "debug":
		logger.Debug(params.Message)
	default:
		logger.Info(params.Message)
	}
}

func (m *manager) expire(call *Call) {
	m.mu.Lock()
	for i, queued := range m.queued {
		if queued == call {
			m.queued = append(m.queued[:i], m.queued[i+1:]...)
			break
		}
	}
	m.pending.remove(call)
	m.mu.Unlock()

	id := call.ID().String()
	err := &elabderrors.RequestTimeoutError{Method: call.method, ID: id, Timeout: m.cfg.RequestTimeout}
	if call.resolve(nil, err) {
		m.metrics.timeouts.Inc(1)
		m.logger.Warnw("checker request timed out", "method", call.method, "id", id)
	}
}

// sendLocked assigns the next correlation id of inst to call and queues it for writing.
func (m *manager) sendLocked(inst *instance, call *Call) {
	m.nextID++
	call.assign(inst.seq, jsonrpc2.NewNumberID(m.nextID))

	msg, err := call.message()
	if err != nil {
		call.resolve(nil, err)
		return
	}

	m.pending.add(inst.seq, call)
	if inst.outbox.Push(msg) == 0 {
		m.pending.remove(call)
		call.resolve(nil, elabderrors.ErrNoSession)
		return
	}
	m.metrics.requests.Inc(1)
}

func (m *manager) notifyLocked(inst *instance, method string, params json.RawMessage) error {
	msg, err := jsonrpc2.NewNotification(method, params)
	if err != nil {
		return err
	}
	if inst.outbox.Push(msg) == 0 {
		return elabderrors.ErrNoSession
	}
	return nil
}

// retireLocked detaches inst from the session and rejects the calls it was serving with reason.
func (m *manager) retireLocked(inst *instance, reason error) {
	inst.retired.Store(true)
	if m.inst == inst {
		m.inst = nil
	}
	inst.outbox.Discard()
	for _, call := range m.pending.drainInstance(inst.seq) {
		call.resolve(nil, reason)
	}
}

func (m *manager) rejectQueuedLocked(reason error) {
	for _, call := range m.queued {
		call.resolve(nil, reason)
	}
	m.queued = nil
}

// terminate kills a retired instance and waits for its goroutines to finish.
func (m *manager) terminate(ctx context.Context, inst *instance) error {
	var err error
	if closeErr := inst.proc.Stdin().Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
		err = multierr.Append(err, closeErr)
	}
	if killErr := inst.proc.Kill(); killErr != nil && !errors.Is(killErr, os.ErrProcessDone) {
		err = multierr.Append(err, killErr)
	}

	for _, done := range []chan struct{}{inst.exited, inst.readDone, inst.writeDone} {
		select {
		case <-done:
		case <-ctx.Done():
			return multierr.Append(err, ctx.Err())
		}
	}
	return err
}

func (m *manager) transitionLocked(next entity.SessionState, err error) {
	prev := m.state
	m.state = next
	m.metrics.state.Update(float64(next))
	m.events = append(m.events, entity.StateEvent{
		WorkspaceRoot: m.workspaceRoot,
		State:         next,
		Previous:      prev,
		Err:           err,
	})
	m.logger.Infow("checker session state changed", "from", prev, "to", next)
}

// flushEvents delivers queued state events to subscribers, in order and outside of m.mu.
func (m *manager) flushEvents() {
	m.emitMu.Lock()
	defer m.emitMu.Unlock()

	for {
		m.mu.Lock()
		if len(m.events) == 0 {
			m.mu.Unlock()
			return
		}
		ev := m.events[0]
		m.events = m.events[1:]
		m.mu.Unlock()

		m.subsMu.Lock()
		subs := make([]func(entity.StateEvent), 0, len(m.stateSubs))
		for _, f := range m.stateSubs {
			subs = append(subs, f)
		}
		m.subsMu.Unlock()

		for _, f := range subs {
			m.safeCall("state", func() { f(ev) })
		}
	}
}

// safeCall runs a subscriber callback, containing any panic.
func (m *manager) safeCall(topic string, f func()) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Errorw("checker subscriber panicked", "topic", topic, "panic", r)
		}
	}()
	f()
}

func (m *manager) publishPid(pid int) {
	if m.infoFile == nil {
		return
	}

	key := fmt.Sprintf(_fmtPidKey, m.workspaceRoot)
	var err error
	if pid == 0 {
		err = m.infoFile.RemoveField(key)
	} else {
		err = m.infoFile.UpdateField(key, strconv.Itoa(pid))
	}
	if err != nil {
		m.logger.Warnw("updating server info file", zap.Error(err))
	}
}
