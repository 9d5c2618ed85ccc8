// Package broadcast republishes checker results as replacement snapshots to independent subscribers.
package broadcast

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	tally "github.com/uber-go/tally/v4"
	"github.com/uber/elabd/src/elabd/entity"
	"go.uber.org/zap"
)

// Channel names a stream of events.
type Channel string

const (
	// ChannelDiagnostics carries entity.DiagnosticSnapshot values.
	ChannelDiagnostics Channel = "diagnostics-updated"
	// ChannelTasks carries entity.TaskSnapshot values.
	ChannelTasks Channel = "task-updated"
	// ChannelSessionState carries entity.StateEvent values.
	ChannelSessionState Channel = "session-state-changed"
)

// GenerationSource reports the current ROI generation of a file, or 0 for files it does not track.
// Results are only accepted for tracked files, at exactly their current generation.
type GenerationSource interface {
	Generation(file string) uint64
}

// Broadcaster validates checker results of one workspace and fans them out.
type Broadcaster interface {
	// HandleNotification ingests a notification from the checker. Unrelated methods are ignored.
	HandleNotification(n entity.CheckerNotification)
	// HandleStateEvent republishes a session state change. Leaving a healthy state
	// publishes unknown snapshots for every known file.
	HandleStateEvent(ev entity.StateEvent)
	// Forget drops the results of a closed file and tells subscribers to clear them.
	Forget(file string)

	SubscribeDiagnostics(f func(entity.DiagnosticSnapshot)) Subscription
	SubscribeTasks(f func(entity.TaskSnapshot)) Subscription
	SubscribeSessionState(f func(entity.StateEvent)) Subscription

	// Latest returns the last published snapshots of file.
	Latest(file string) (entity.DiagnosticSnapshot, entity.TaskSnapshot, bool)
	Files() []string
	State() entity.SessionState

	// Close stops delivery once queued events are delivered, or when ctx is done.
	Close(ctx context.Context) error
}

// Options are the dependencies of a single Broadcaster.
type Options struct {
	WorkspaceRoot string
	// Generations gates results on the ROI of each file. Without it only superseded results are dropped.
	Generations GenerationSource
	Config      Config
	Logger      *zap.SugaredLogger
	Scope       tally.Scope
}

type fileResults struct {
	diagnostics entity.DiagnosticSnapshot
	tasks       entity.TaskSnapshot
	// Highest generation delivered per channel. Kept after the file is forgotten.
	diagnosticsGen uint64
	tasksGen       uint64
	// forgotten entries only remember delivered generations; they are hidden from Files and Latest.
	forgotten bool
}

type broadcaster struct {
	workspaceRoot string
	generations   GenerationSource
	cfg           Config
	logger        *zap.SugaredLogger
	scope         tally.Scope

	stale      tally.Counter
	superseded tally.Counter
	untracked  tally.Counter
	ahead      tally.Counter
	invalid    tally.Counter
	unhealthy  tally.Counter

	wg sync.WaitGroup

	diagnostics *topic[entity.DiagnosticSnapshot]
	tasks       *topic[entity.TaskSnapshot]
	states      *topic[entity.StateEvent]

	mu    sync.Mutex
	state entity.SessionState
	files map[string]*fileResults
}

// New creates a Broadcaster for one workspace.
func New(opts Options) Broadcaster {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	if opts.Scope == nil {
		opts.Scope = tally.NoopScope
	}

	b := &broadcaster{
		workspaceRoot: opts.WorkspaceRoot,
		generations:   opts.Generations,
		cfg:           opts.Config,
		logger:        opts.Logger.With("workspace", opts.WorkspaceRoot),
		scope:         opts.Scope,
		stale:         opts.Scope.Counter("stale"),
		superseded:    opts.Scope.Counter("superseded"),
		untracked:     opts.Scope.Counter("untracked"),
		ahead:         opts.Scope.Counter("ahead"),
		invalid:       opts.Scope.Counter("invalid"),
		unhealthy:     opts.Scope.Counter("dropped_unhealthy"),
		state:         entity.SessionStateStopped,
		files:         make(map[string]*fileResults),
	}
	b.diagnostics = newTopic[entity.DiagnosticSnapshot](ChannelDiagnostics, b)
	b.tasks = newTopic[entity.TaskSnapshot](ChannelTasks, b)
	b.states = newTopic[entity.StateEvent](ChannelSessionState, b)
	return b
}

func (b *broadcaster) HandleNotification(n entity.CheckerNotification) {
	switch n.Method {
	case entity.CheckerMethodDiagnostics:
		var params entity.DiagnosticsParams
		if err := json.Unmarshal(n.Params, &params); err != nil || params.File == "" {
			b.reject(n, err)
			return
		}
		b.handleDiagnostics(params)
	case entity.CheckerMethodTaskProgress:
		var params entity.TaskProgressParams
		if err := json.Unmarshal(n.Params, &params); err != nil || params.File == "" {
			b.reject(n, err)
			return
		}
		b.handleTasks(params)
	}
}

func (b *broadcaster) handleDiagnostics(params entity.DiagnosticsParams) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var delivered uint64
	if results, ok := b.files[params.File]; ok {
		delivered = results.diagnosticsGen
	}
	if !b.acceptLocked(entity.CheckerMethodDiagnostics, params.File, params.Generation, delivered) {
		return
	}
	results := b.resultsLocked(params.File)

	diagnostics := make([]entity.Diagnostic, 0, len(params.Diagnostics))
	for _, d := range params.Diagnostics {
		if d.File == "" {
			d.File = params.File
		}
		diagnostics = append(diagnostics, d)
	}
	snapshot := entity.DiagnosticSnapshot{
		WorkspaceRoot: b.workspaceRoot,
		File:          params.File,
		Generation:    params.Generation,
		Diagnostics:   diagnostics,
	}
	results.diagnostics = snapshot
	results.diagnosticsGen = params.Generation
	b.diagnostics.publish(snapshot)
}

func (b *broadcaster) handleTasks(params entity.TaskProgressParams) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var delivered uint64
	if results, ok := b.files[params.File]; ok {
		delivered = results.tasksGen
	}
	if !b.acceptLocked(entity.CheckerMethodTaskProgress, params.File, params.Generation, delivered) {
		return
	}
	results := b.resultsLocked(params.File)

	snapshot := entity.TaskSnapshot{
		WorkspaceRoot: b.workspaceRoot,
		File:          params.File,
		Generation:    params.Generation,
		Tasks:         append([]entity.Task{}, params.Tasks...),
	}
	results.tasks = snapshot
	results.tasksGen = params.Generation
	b.tasks.publish(snapshot)
}

// acceptLocked decides whether a result for file at generation may replace what subscribers have seen.
func (b *broadcaster) acceptLocked(method string, file string, generation uint64, delivered uint64) bool {
	if !b.state.ResultsKnown() {
		b.unhealthy.Inc(1)
		b.logger.Debugw("dropping result while session is unhealthy", "method", method, "file", file, "state", b.state)
		return false
	}
	if b.generations != nil {
		current := b.generations.Generation(file)
		switch {
		case current == 0:
			b.untracked.Inc(1)
			b.logger.Debugw("dropping result for untracked file", "method", method, "file", file, "generation", generation)
			return false
		case generation < current:
			b.stale.Inc(1)
			b.logger.Debugw("dropping stale result", "method", method, "file", file, "generation", generation, "current", current)
			return false
		case generation > current:
			b.ahead.Inc(1)
			b.logger.Warnw("dropping result ahead of the tracked generation", "method", method, "file", file, "generation", generation, "current", current)
			return false
		}
	}
	if generation < delivered {
		b.superseded.Inc(1)
		b.logger.Debugw("dropping superseded result", "method", method, "file", file, "generation", generation, "delivered", delivered)
		return false
	}
	return true
}

func (b *broadcaster) HandleStateEvent(ev entity.StateEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	wasKnown := b.state.ResultsKnown()
	b.state = ev.State
	b.states.publish(ev)

	if wasKnown && !ev.State.ResultsKnown() {
		for _, file := range b.filesLocked() {
			b.publishUnknownLocked(file, b.files[file])
		}
	}
}

func (b *broadcaster) Forget(file string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	results, ok := b.files[file]
	if !ok || results.forgotten {
		return
	}
	b.publishUnknownLocked(file, results)
	results.forgotten = true
}

// publishUnknownLocked replaces the results of file with empty snapshots flagged as unknown.
// Delivered generations are kept so that late results from before the change stay dropped.
func (b *broadcaster) publishUnknownLocked(file string, results *fileResults) {
	results.diagnostics = entity.DiagnosticSnapshot{
		WorkspaceRoot: b.workspaceRoot,
		File:          file,
		Generation:    results.diagnosticsGen,
		Unknown:       true,
	}
	results.tasks = entity.TaskSnapshot{
		WorkspaceRoot: b.workspaceRoot,
		File:          file,
		Generation:    results.tasksGen,
		Unknown:       true,
	}
	b.diagnostics.publish(results.diagnostics)
	b.tasks.publish(results.tasks)
}

func (b *broadcaster) SubscribeDiagnostics(f func(entity.DiagnosticSnapshot)) Subscription {
	return b.diagnostics.subscribe(f)
}

func (b *broadcaster) SubscribeTasks(f func(entity.TaskSnapshot)) Subscription {
	return b.tasks.subscribe(f)
}

func (b *broadcaster) SubscribeSessionState(f func(entity.StateEvent)) Subscription {
	return b.states.subscribe(f)
}

func (b *broadcaster) Latest(file string) (entity.DiagnosticSnapshot, entity.TaskSnapshot, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	results, ok := b.files[file]
	if !ok || results.forgotten {
		return entity.DiagnosticSnapshot{}, entity.TaskSnapshot{}, false
	}
	return results.diagnostics, results.tasks, true
}

func (b *broadcaster) Files() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filesLocked()
}

func (b *broadcaster) State() entity.SessionState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *broadcaster) Close(ctx context.Context) error {
	b.diagnostics.close()
	b.tasks.close()
	b.states.close()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *broadcaster) resultsLocked(file string) *fileResults {
	results, ok := b.files[file]
	if !ok {
		results = &fileResults{}
		b.files[file] = results
	}
	if !ok || results.forgotten {
		results.diagnostics = entity.DiagnosticSnapshot{WorkspaceRoot: b.workspaceRoot, File: file}
		results.tasks = entity.TaskSnapshot{WorkspaceRoot: b.workspaceRoot, File: file}
		results.forgotten = false
	}
	return results
}

func (b *broadcaster) filesLocked() []string {
	files := make([]string, 0, len(b.files))
	for file, results := range b.files {
		if !results.forgotten {
			files = append(files, file)
		}
	}
	sort.Strings(files)
	return files
}

func (b *broadcaster) reject(n entity.CheckerNotification, err error) {
	b.invalid.Inc(1)
	b.logger.Warnw("malformed checker result", "method", n.Method, zap.Error(err))
}
