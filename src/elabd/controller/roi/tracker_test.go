package roi

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tally "github.com/uber-go/tally/v4"
	"github.com/uber/elabd/src/elabd/entity"
	"github.com/uber/elabd/src/elabd/internal/clock"
	elabderrors "github.com/uber/elabd/src/elabd/internal/errors"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordedSync struct {
	method string
	replay bool
	params entity.SyncROIParams
}

type fakeSyncer struct {
	mu        sync.Mutex
	syncs     []recordedSync
	forgotten []string
	err       error
}

func (s *fakeSyncer) SyncReplayable(_ context.Context, method string, _ string, params any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncs = append(s.syncs, recordedSync{method: method, replay: true, params: params.(entity.SyncROIParams)})
	return s.err
}

func (s *fakeSyncer) Notify(_ context.Context, method string, params any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncs = append(s.syncs, recordedSync{method: method, params: params.(entity.SyncROIParams)})
	return s.err
}

func (s *fakeSyncer) ForgetReplay(file string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forgotten = append(s.forgotten, file)
}

func (s *fakeSyncer) recorded() []recordedSync {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]recordedSync(nil), s.syncs...)
}

func (s *fakeSyncer) last(t *testing.T) entity.SyncROIParams {
	t.Helper()
	syncs := s.recorded()
	require.NotEmpty(t, syncs)
	return syncs[len(syncs)-1].params
}

// manualClock runs timers only when fire is called.
type manualClock struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	f       func()
	stopped bool
	fired   bool
}

func (c *manualClock) Now() time.Time       { return time.Time{} }
func (c *manualClock) Sleep(d time.Duration) {}

func (c *manualClock) AfterFunc(_ time.Duration, f func()) clock.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	timer := &manualTimer{clock: c, f: f}
	c.timers = append(c.timers, timer)
	return timer
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// fire runs every pending timer and reports how many ran.
func (c *manualClock) fire() int {
	c.mu.Lock()
	var due []*manualTimer
	for _, timer := range c.timers {
		if !timer.stopped && !timer.fired {
			timer.fired = true
			due = append(due, timer)
		}
	}
	c.timers = nil
	c.mu.Unlock()

	for _, timer := range due {
		timer.f()
	}
	return len(due)
}

func newTestTracker(mode entity.ROIMode) (*tracker, *fakeSyncer, *manualClock, tally.TestScope) {
	syncer := &fakeSyncer{}
	clk := &manualClock{}
	scope := tally.NewTestScope("", nil)
	cfg := DefaultConfig()
	cfg.Mode = string(mode)
	tr := New(Options{Syncer: syncer, Config: cfg, Clock: clk, Scope: scope}).(*tracker)
	return tr, syncer, clk, scope
}

func counter(scope tally.TestScope, name string) int64 {
	for _, c := range scope.Snapshot().Counters() {
		if c.Name() == name {
			return c.Value()
		}
	}
	return 0
}

func lines(start, end int) entity.LineRange {
	return entity.LineRange{Start: start, End: end}
}

func TestOpen(t *testing.T) {
	tr, syncer, _, _ := newTestTracker(entity.ROIModeVisible)

	tr.Open("a.lean")
	tr.Open("a.lean")

	syncs := syncer.recorded()
	require.Len(t, syncs, 1)
	assert.Equal(t, entity.CheckerMethodSyncROI, syncs[0].method)
	assert.True(t, syncs[0].replay)
	assert.Equal(t, entity.SyncROIParams{File: "a.lean", Generation: 1, Ranges: []entity.LineRange{}}, syncs[0].params)
	assert.Equal(t, uint64(1), tr.Generation("a.lean"))
	assert.Equal(t, []string{"a.lean"}, tr.Files())
}

func TestViewportIsDebounced(t *testing.T) {
	tr, syncer, clk, scope := newTestTracker(entity.ROIModeVisible)
	tr.Open("a.lean")

	for i := 0; i < 5; i++ {
		tr.Viewport("a.lean", []entity.LineRange{lines(1+i, 40+i)})
	}
	assert.Len(t, syncer.recorded(), 1, "viewport signals must wait for the debounce window")

	assert.Equal(t, 1, clk.fire())
	require.Len(t, syncer.recorded(), 2)
	assert.Equal(t, entity.SyncROIParams{
		File:       "a.lean",
		Generation: 2,
		Ranges:     []entity.LineRange{lines(5, 44)},
	}, syncer.last(t))
	assert.Equal(t, int64(4), counter(scope, "coalesced"))

	t.Run("unchanged scope is not resent", func(t *testing.T) {
		tr.Viewport("a.lean", []entity.LineRange{lines(5, 44)})
		clk.fire()
		assert.Len(t, syncer.recorded(), 2)
		assert.Equal(t, uint64(2), tr.Generation("a.lean"))
		assert.Equal(t, int64(1), counter(scope, "unchanged"))
	})
}

func TestViewportDebouncedWithRealClock(t *testing.T) {
	syncer := &fakeSyncer{}
	tr := New(Options{Syncer: syncer, Config: Config{Debounce: 20 * time.Millisecond, Mode: "visible"}})
	tr.Open("a.lean")

	for i := 0; i < 5; i++ {
		tr.Viewport("a.lean", []entity.LineRange{lines(1, 10+i)})
	}
	require.Eventually(t, func() bool { return len(syncer.recorded()) == 2 }, time.Second, time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Len(t, syncer.recorded(), 2)
	assert.Equal(t, []entity.LineRange{lines(1, 14)}, syncer.last(t).Ranges)
}

func TestEditWinsOverViewport(t *testing.T) {
	tr, syncer, clk, _ := newTestTracker(entity.ROIModeVisible)
	tr.Open("a.lean")

	tr.Viewport("a.lean", []entity.LineRange{lines(10, 20)})
	tr.Edit("a.lean", []entity.LineRange{lines(50, 50)})

	require.Len(t, syncer.recorded(), 2, "edits flush immediately")
	assert.Equal(t, []entity.LineRange{lines(10, 20), lines(50, 50)}, syncer.last(t).Ranges)
	assert.Equal(t, 0, clk.fire(), "the pending viewport update is cancelled by the edit")

	// The edited line stays in scope after the viewport moves away.
	tr.Viewport("a.lean", []entity.LineRange{lines(1, 5)})
	clk.fire()
	assert.Equal(t, []entity.LineRange{lines(1, 5), lines(50, 50)}, syncer.last(t).Ranges)
	assert.Equal(t, uint64(3), syncer.last(t).Generation)
}

func TestEditText(t *testing.T) {
	tr, syncer, _, _ := newTestTracker(entity.ROIModeVisible)
	tr.Open("a.lean")

	tr.EditText("a.lean", "a\nb\nc\n", "a\nB\nc\nd\n")
	assert.Equal(t, []entity.LineRange{lines(2, 2), lines(4, 4)}, syncer.last(t).Ranges)

	// Inserting a line on top shifts the earlier edits down.
	tr.EditText("a.lean", "a\nB\nc\nd\n", "z\na\nB\nc\nd\n")
	assert.Equal(t, []entity.LineRange{lines(1, 1), lines(3, 3), lines(5, 5)}, syncer.last(t).Ranges)

	tr.EditText("a.lean", "same", "same")
	assert.Len(t, syncer.recorded(), 3)
}

func TestRequestFullFile(t *testing.T) {
	tr, syncer, clk, _ := newTestTracker(entity.ROIModeVisible)
	tr.Open("a.lean")
	tr.Viewport("a.lean", []entity.LineRange{lines(3, 9)})

	tr.RequestFullFile("a.lean")
	full := syncer.last(t)
	assert.True(t, full.FullFile)
	assert.Empty(t, full.Ranges)
	assert.Equal(t, uint64(2), full.Generation)
	assert.Equal(t, 0, clk.fire())

	roi, ok := tr.Snapshot("a.lean")
	require.True(t, ok)
	assert.True(t, roi.FullFile)

	// The next update falls back to the mode.
	tr.Cursor("a.lean", 30)
	clk.fire()
	next := syncer.last(t)
	assert.False(t, next.FullFile)
	assert.Equal(t, []entity.LineRange{lines(3, 9), lines(30, 30)}, next.Ranges)
	assert.Equal(t, uint64(3), next.Generation)
}

func TestModes(t *testing.T) {
	tests := []struct {
		mode     entity.ROIMode
		fullFile bool
		ranges   []entity.LineRange
	}{
		{mode: entity.ROIModeVisible, ranges: []entity.LineRange{lines(5, 5), lines(10, 20), lines(30, 30)}},
		{mode: entity.ROIModeLinesAndAbove, ranges: []entity.LineRange{lines(1, 30)}},
		{mode: entity.ROIModeOpenFiles, fullFile: true, ranges: []entity.LineRange{}},
		{mode: entity.ROIModeNothing, ranges: []entity.LineRange{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			tr, syncer, clk, _ := newTestTracker(tt.mode)
			tr.Open("a.lean")
			tr.Viewport("a.lean", []entity.LineRange{lines(10, 20)})
			tr.Cursor("a.lean", 30)
			clk.fire()
			tr.Edit("a.lean", []entity.LineRange{lines(5, 5)})

			last := syncer.last(t)
			assert.Equal(t, tt.fullFile, last.FullFile)
			assert.Equal(t, tt.ranges, last.Ranges)
			assert.Equal(t, tt.mode, tr.Mode())
		})
	}
}

func TestSetMode(t *testing.T) {
	tr, syncer, _, _ := newTestTracker(entity.ROIModeVisible)
	tr.Open("b.lean")
	tr.Open("a.lean")

	tr.SetMode(entity.ROIModeOpenFiles)
	syncs := syncer.recorded()
	require.Len(t, syncs, 4)
	assert.Equal(t, "a.lean", syncs[2].params.File)
	assert.Equal(t, "b.lean", syncs[3].params.File)
	for _, s := range syncs[2:] {
		assert.True(t, s.params.FullFile)
		assert.Equal(t, uint64(2), s.params.Generation)
	}

	tr.SetMode(entity.ROIModeOpenFiles)
	assert.Len(t, syncer.recorded(), 4)
}

func TestClose(t *testing.T) {
	tr, syncer, clk, _ := newTestTracker(entity.ROIModeVisible)
	tr.Open("a.lean")
	tr.Viewport("a.lean", []entity.LineRange{lines(1, 10)})

	tr.Close("a.lean")
	closed := syncer.recorded()[1]
	assert.False(t, closed.replay, "the close notification must not be replayed")
	assert.Equal(t, entity.SyncROIParams{File: "a.lean", Generation: 2, Ranges: []entity.LineRange{}, Closed: true}, closed.params)
	assert.Equal(t, []string{"a.lean"}, syncer.forgotten)

	assert.Equal(t, 0, clk.fire())
	assert.Equal(t, uint64(0), tr.Generation("a.lean"))
	_, ok := tr.Snapshot("a.lean")
	assert.False(t, ok)

	// Signals for a closed file are ignored.
	tr.Edit("a.lean", []entity.LineRange{lines(1, 1)})
	tr.Close("a.lean")
	assert.Len(t, syncer.recorded(), 2)
}

func TestReset(t *testing.T) {
	tr, syncer, clk, _ := newTestTracker(entity.ROIModeVisible)
	tr.Open("a.lean")
	tr.Viewport("a.lean", []entity.LineRange{lines(1, 10)})

	tr.Reset()
	assert.Empty(t, tr.Files())
	assert.Empty(t, syncer.forgotten)

	tr.Open("a.lean")
	assert.Equal(t, 0, clk.fire())

	syncs := syncer.recorded()
	require.Len(t, syncs, 2)
	assert.Equal(t, uint64(2), syncs[1].params.Generation, "generations keep increasing across a reset")
	assert.Empty(t, syncs[1].params.Ranges)
}

func TestReopenContinuesGenerations(t *testing.T) {
	tr, syncer, _, _ := newTestTracker(entity.ROIModeVisible)
	tr.Open("a.lean")
	tr.Edit("a.lean", []entity.LineRange{lines(3, 3)})
	tr.Edit("a.lean", []entity.LineRange{lines(7, 7)})
	require.Equal(t, uint64(3), tr.Generation("a.lean"))

	tr.Close("a.lean")
	closed := syncer.last(t)
	require.True(t, closed.Closed)
	assert.Equal(t, uint64(4), closed.Generation)

	tr.Open("a.lean")
	reopened := syncer.last(t)
	assert.False(t, reopened.Closed)
	assert.Empty(t, reopened.Ranges, "edits of the closed state are gone")
	assert.Greater(t, reopened.Generation, closed.Generation)
	assert.Equal(t, reopened.Generation, tr.Generation("a.lean"))

	// Other files are unaffected.
	tr.Open("b.lean")
	assert.Equal(t, uint64(1), tr.Generation("b.lean"))

	tr.Reset()
	tr.Open("a.lean")
	assert.Greater(t, tr.Generation("a.lean"), reopened.Generation)
}

func TestSnapshotIsACopy(t *testing.T) {
	tr, _, _, _ := newTestTracker(entity.ROIModeVisible)
	tr.Open("a.lean")
	tr.Edit("a.lean", []entity.LineRange{lines(4, 8)})

	roi, ok := tr.Snapshot("a.lean")
	require.True(t, ok)
	roi.Ranges[0].Start = 100

	again, _ := tr.Snapshot("a.lean")
	assert.Equal(t, []entity.LineRange{lines(4, 8)}, again.Ranges)
	assert.Equal(t, uint64(2), again.Generation)
}

func TestSyncErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		failures int64
	}{
		{name: "no session yet", err: elabderrors.ErrNoSession},
		{name: "other error", err: errors.New("broken pipe"), failures: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, syncer, _, scope := newTestTracker(entity.ROIModeVisible)
			syncer.err = tt.err
			tr.Open("a.lean")

			assert.Equal(t, tt.failures, counter(scope, "sync_errors"))
			assert.Equal(t, uint64(1), tr.Generation("a.lean"), "the region is tracked even when the checker is unreachable")
		})
	}
}
