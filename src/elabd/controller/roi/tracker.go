// Package roi tracks which lines of each open document the checker should elaborate.
package roi

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	tally "github.com/uber-go/tally/v4"
	"github.com/uber/elabd/src/elabd/entity"
	"github.com/uber/elabd/src/elabd/internal/clock"
	elabderrors "github.com/uber/elabd/src/elabd/internal/errors"
	"go.uber.org/zap"
)

// Syncer delivers regions of interest to the checker session of a workspace.
type Syncer interface {
	SyncReplayable(ctx context.Context, method string, file string, params any) error
	Notify(ctx context.Context, method string, params any) error
	ForgetReplay(file string)
}

// Tracker turns editor signals into regions of interest and pushes them to the checker.
type Tracker interface {
	Open(file string)
	Close(file string)
	// Edit marks lines of file as edited. They stay in scope until the file is closed.
	Edit(file string, ranges []entity.LineRange)
	// EditText derives the edited lines from a full-text change.
	EditText(file string, oldText string, newText string)
	Viewport(file string, ranges []entity.LineRange)
	Cursor(file string, line int)
	// RequestFullFile checks the whole file once, for the next generation only.
	RequestFullFile(file string)

	Mode() entity.ROIMode
	// SetMode switches the mode and re-syncs every open file.
	SetMode(mode entity.ROIMode)

	// Generation returns the current generation of file, or 0 if it is not open.
	Generation(file string) uint64
	Snapshot(file string) (entity.RegionOfInterest, bool)
	Files() []string
	// Reset forgets every file without notifying the checker. Generations keep increasing across it.
	Reset()
}

// Options are the dependencies of a single Tracker.
type Options struct {
	Syncer Syncer
	Config Config
	Clock  clock.Clock
	Logger *zap.SugaredLogger
	Scope  tally.Scope
}

type fileState struct {
	viewport []entity.LineRange
	cursor   int
	// edited ranges are sticky until the file closes.
	edited     []entity.LineRange
	fullOnce   bool
	generation uint64
	current    entity.RegionOfInterest
	sent       bool
	timer      clock.Timer
}

type tracker struct {
	syncer   Syncer
	clock    clock.Clock
	debounce time.Duration
	logger   *zap.SugaredLogger

	syncs     tally.Counter
	coalesced tally.Counter
	unchanged tally.Counter
	failures  tally.Counter

	mu    sync.Mutex
	mode  entity.ROIMode
	files map[string]*fileState
	// floors holds the last generation used by files that are no longer open.
	// A reopened file continues above it so late results of the old state cannot match.
	floors map[string]uint64
}

// New creates a Tracker with no open files.
func New(opts Options) Tracker {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	if opts.Scope == nil {
		opts.Scope = tally.NoopScope
	}
	mode, err := entity.ParseROIMode(opts.Config.Mode)
	if err != nil {
		mode = entity.ROIModeVisible
	}

	return &tracker{
		syncer:    opts.Syncer,
		clock:     opts.Clock,
		debounce:  opts.Config.Debounce,
		logger:    opts.Logger,
		syncs:     opts.Scope.Counter("syncs"),
		coalesced: opts.Scope.Counter("coalesced"),
		unchanged: opts.Scope.Counter("unchanged"),
		failures:  opts.Scope.Counter("sync_errors"),
		mode:      mode,
		files:     make(map[string]*fileState),
		floors:    make(map[string]uint64),
	}
}

func (t *tracker) Open(file string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.files[file]; ok {
		return
	}
	fs := &fileState{generation: t.floors[file]}
	delete(t.floors, file)
	t.files[file] = fs
	t.syncLocked(file, fs, true)
}

func (t *tracker) Close(file string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fs, ok := t.files[file]
	if !ok {
		return
	}
	t.stopTimerLocked(fs)
	delete(t.files, file)
	t.floors[file] = fs.generation + 1

	params := entity.SyncROIParams{
		File:       file,
		Generation: fs.generation + 1,
		Ranges:     []entity.LineRange{},
		Closed:     true,
	}
	if err := t.syncer.Notify(context.Background(), entity.CheckerMethodSyncROI, params); err != nil {
		t.logSyncError(file, err)
	}
	t.syncer.ForgetReplay(file)
}

func (t *tracker) Edit(file string, ranges []entity.LineRange) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fs, ok := t.files[file]
	if !ok {
		return
	}
	fs.edited = entity.NormalizeRanges(append(fs.edited, ranges...))
	t.flushLocked(file, fs, true)
}

func (t *tracker) EditText(file string, oldText string, newText string) {
	if oldText == newText {
		return
	}
	edit := diffLines(oldText, newText)

	t.mu.Lock()
	defer t.mu.Unlock()

	fs, ok := t.files[file]
	if !ok {
		return
	}
	fs.edited = entity.NormalizeRanges(append(edit.shift(fs.edited), edit.changed...))
	t.flushLocked(file, fs, true)
}

func (t *tracker) Viewport(file string, ranges []entity.LineRange) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fs, ok := t.files[file]
	if !ok {
		return
	}
	fs.viewport = entity.NormalizeRanges(ranges)
	t.scheduleLocked(file, fs)
}

func (t *tracker) Cursor(file string, line int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fs, ok := t.files[file]
	if !ok {
		return
	}
	fs.cursor = line
	t.scheduleLocked(file, fs)
}

func (t *tracker) RequestFullFile(file string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fs, ok := t.files[file]
	if !ok {
		return
	}
	fs.fullOnce = true
	t.flushLocked(file, fs, true)
}

func (t *tracker) Mode() entity.ROIMode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mode
}

func (t *tracker) SetMode(mode entity.ROIMode) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if mode == t.mode {
		return
	}
	t.logger.Infow("changing ROI mode", "from", t.mode, "to", mode)
	t.mode = mode
	for _, file := range t.sortedFilesLocked() {
		t.flushLocked(file, t.files[file], true)
	}
}

func (t *tracker) Generation(file string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if fs, ok := t.files[file]; ok {
		return fs.generation
	}
	return 0
}

func (t *tracker) Snapshot(file string) (entity.RegionOfInterest, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fs, ok := t.files[file]
	if !ok || !fs.sent {
		return entity.RegionOfInterest{}, false
	}
	roi := fs.current
	roi.Ranges = append([]entity.LineRange(nil), roi.Ranges...)
	return roi, true
}

func (t *tracker) Files() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sortedFilesLocked()
}

func (t *tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for file, fs := range t.files {
		t.stopTimerLocked(fs)
		t.floors[file] = fs.generation
	}
	t.files = make(map[string]*fileState)
}

// scheduleLocked starts the debounce window of file unless one is already running.
func (t *tracker) scheduleLocked(file string, fs *fileState) {
	if fs.timer != nil {
		t.coalesced.Inc(1)
		return
	}
	fs.timer = t.clock.AfterFunc(t.debounce, func() {
		t.mu.Lock()
		defer t.mu.Unlock()

		// The file may have been closed, or reopened as a new state, while the timer was pending.
		if t.files[file] != fs || fs.timer == nil {
			return
		}
		fs.timer = nil
		t.syncLocked(file, fs, false)
	})
}

// flushLocked cancels any pending debounce of file and syncs it now.
func (t *tracker) flushLocked(file string, fs *fileState, force bool) {
	t.stopTimerLocked(fs)
	t.syncLocked(file, fs, force)
}

func (t *tracker) stopTimerLocked(fs *fileState) {
	if fs.timer != nil {
		fs.timer.Stop()
		fs.timer = nil
	}
}

// syncLocked computes the region of file and sends it with the next generation.
// Unless force is set, a region covering the same lines as the last one sent is skipped.
func (t *tracker) syncLocked(file string, fs *fileState, force bool) {
	next := t.computeLocked(file, fs)
	if !force && fs.sent && next.SameScope(fs.current) {
		t.unchanged.Inc(1)
		return
	}

	fs.generation++
	next.Generation = fs.generation
	fs.current = next
	fs.sent = true
	fs.fullOnce = false

	params := entity.SyncROIParams{
		File:       file,
		Generation: next.Generation,
		FullFile:   next.FullFile,
		Ranges:     next.Ranges,
	}
	t.syncs.Inc(1)
	if err := t.syncer.SyncReplayable(context.Background(), entity.CheckerMethodSyncROI, file, params); err != nil {
		t.logSyncError(file, err)
	}
}

func (t *tracker) computeLocked(file string, fs *fileState) entity.RegionOfInterest {
	roi := entity.RegionOfInterest{File: file, Ranges: []entity.LineRange{}}
	if fs.fullOnce {
		roi.FullFile = true
		return roi
	}

	switch t.mode {
	case entity.ROIModeNothing:
	case entity.ROIModeOpenFiles:
		roi.FullFile = true
	case entity.ROIModeLinesAndAbove:
		if last := lastLine(fs); last > 0 {
			roi.Ranges = []entity.LineRange{{Start: 1, End: last}}
		}
	default:
		if ranges := entity.NormalizeRanges(visibleRanges(fs)); ranges != nil {
			roi.Ranges = ranges
		}
	}
	return roi
}

func (t *tracker) logSyncError(file string, err error) {
	if errors.Is(err, elabderrors.ErrNoSession) {
		// Replayed once a session is up.
		t.logger.Debugw("no session for region of interest", "file", file)
		return
	}
	t.failures.Inc(1)
	t.logger.Warnw("syncing region of interest", "file", file, zap.Error(err))
}

func (t *tracker) sortedFilesLocked() []string {
	files := make([]string, 0, len(t.files))
	for file := range t.files {
		files = append(files, file)
	}
	sort.Strings(files)
	return files
}

func visibleRanges(fs *fileState) []entity.LineRange {
	ranges := make([]entity.LineRange, 0, len(fs.viewport)+len(fs.edited)+1)
	ranges = append(ranges, fs.viewport...)
	ranges = append(ranges, fs.edited...)
	if fs.cursor > 0 {
		ranges = append(ranges, entity.LineRange{Start: fs.cursor, End: fs.cursor})
	}
	return ranges
}

func lastLine(fs *fileState) int {
	last := fs.cursor
	for _, r := range visibleRanges(fs) {
		last = max(last, r.End)
	}
	return last
}
