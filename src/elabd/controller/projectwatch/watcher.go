// Package projectwatch restarts the checker when a project manifest of its workspace changes.
package projectwatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync"

	"github.com/fsnotify/fsnotify"
	tally "github.com/uber-go/tally/v4"
	"github.com/uber/elabd/src/elabd/controller/checker"
	"github.com/uber/elabd/src/elabd/internal/clock"
	"github.com/uber/elabd/src/elabd/internal/fs"
	"github.com/uber/elabd/src/elabd/internal/projectfile"
	"go.uber.org/zap"
)

// Watcher follows the project manifests of one workspace.
type Watcher interface {
	// Start records the current manifests and begins watching the workspace root.
	Start(ctx context.Context) error
	// Manifest returns the last manifest that parsed cleanly.
	Manifest() (projectfile.Manifest, bool)
	// Close stops watching and waits for a reload in progress.
	Close() error
}

// Options are the dependencies of a single Watcher.
type Options struct {
	WorkspaceRoot string
	Session       checker.Manager
	FS            fs.ElabdFS
	Config        Config
	Clock         clock.Clock
	Logger        *zap.SugaredLogger
	Scope         tally.Scope
}

type watcher struct {
	root    string
	session checker.Manager
	fs      fs.ElabdFS
	cfg     Config
	clock   clock.Clock
	logger  *zap.SugaredLogger

	restarts tally.Counter
	invalid  tally.Counter

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	notify   *fsnotify.Watcher
	timers   map[string]clock.Timer
	contents map[string][]byte
	manifest *projectfile.Manifest
}

// New creates a Watcher. Nothing is watched until Start.
func New(opts Options) Watcher {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	if opts.Scope == nil {
		opts.Scope = tally.NoopScope
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &watcher{
		root:     opts.WorkspaceRoot,
		session:  opts.Session,
		fs:       opts.FS,
		cfg:      opts.Config,
		clock:    opts.Clock,
		logger:   opts.Logger.With("workspace", opts.WorkspaceRoot),
		restarts: opts.Scope.Counter("restarts"),
		invalid:  opts.Scope.Counter("invalid_manifests"),
		ctx:      ctx,
		cancel:   cancel,
		timers:   make(map[string]clock.Timer),
		contents: make(map[string][]byte),
	}
}

func (w *watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.notify != nil {
		return nil
	}

	for _, name := range w.cfg.ProjectFiles {
		path := filepath.Join(w.root, name)
		data, err := w.fs.ReadFile(path)
		if err != nil {
			continue
		}
		w.contents[path] = data
		if m, err := projectfile.Parse(path, bytes.NewReader(data)); err == nil {
			w.manifest = &m
		} else {
			w.logger.Warnw("invalid project file", "file", path, zap.Error(err))
		}
	}

	// Editors often save by renaming a temporary file, so the directory is watched rather than the files.
	notify, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file system watcher: %w", err)
	}
	if err := notify.Add(w.root); err != nil {
		notify.Close()
		return fmt.Errorf("watch workspace root %q: %w", w.root, err)
	}
	w.notify = notify

	w.wg.Add(1)
	go w.watch(notify)
	return nil
}

func (w *watcher) Manifest() (projectfile.Manifest, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.manifest == nil {
		return projectfile.Manifest{}, false
	}
	return *w.manifest, true
}

func (w *watcher) Close() error {
	w.cancel()

	w.mu.Lock()
	for path, t := range w.timers {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.timers, path)
	}
	notify := w.notify
	w.notify = nil
	w.mu.Unlock()

	var err error
	if notify != nil {
		err = notify.Close()
	}
	w.wg.Wait()
	return err
}

func (w *watcher) watch(notify *fsnotify.Watcher) {
	defer w.wg.Done()
	for {
		select {
		case event, ok := <-notify.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-notify.Errors:
			if !ok {
				return
			}
			w.logger.Warnf("project file watcher error: %v", err)
		case <-w.ctx.Done():
			return
		}
	}
}

// handleEvent schedules a reload of a manifest, replacing one already scheduled.
func (w *watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return
	}
	path := filepath.Clean(event.Name)
	if filepath.Dir(path) != filepath.Clean(w.root) || !slices.Contains(w.cfg.ProjectFiles, filepath.Base(path)) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ctx.Err() != nil {
		return
	}
	if t, ok := w.timers[path]; ok && t.Stop() {
		w.wg.Done()
	}
	w.wg.Add(1)
	var t clock.Timer
	t = w.clock.AfterFunc(w.cfg.Debounce, func() {
		defer w.wg.Done()
		w.mu.Lock()
		if w.timers[path] == t {
			delete(w.timers, path)
		}
		w.mu.Unlock()
		w.reload(path)
	})
	w.timers[path] = t
}

// reload restarts a live checker when path holds a valid manifest that differs from the last one seen.
func (w *watcher) reload(path string) {
	if w.ctx.Err() != nil {
		return
	}

	data, err := w.fs.ReadFile(path)
	if err != nil {
		w.mu.Lock()
		_, known := w.contents[path]
		delete(w.contents, path)
		w.mu.Unlock()
		if known {
			w.logger.Infow("project file removed, keeping checker session", "file", path)
		}
		return
	}

	w.mu.Lock()
	unchanged := w.contents[path] != nil && bytes.Equal(w.contents[path], data)
	w.mu.Unlock()
	if unchanged {
		return
	}

	m, err := projectfile.Parse(path, bytes.NewReader(data))
	if err != nil {
		w.invalid.Inc(1)
		w.logger.Warnw("project file changed but is invalid, keeping checker session", "file", path, zap.Error(err))
		return
	}

	w.mu.Lock()
	w.contents[path] = data
	w.manifest = &m
	w.mu.Unlock()

	if !w.session.State().Live() {
		w.logger.Infow("project file changed", "file", path, "package", m.Package.Name)
		return
	}
	w.logger.Infow("project file changed, restarting checker", "file", path, "package", m.Package.Name)
	w.restarts.Inc(1)
	if err := w.session.Restart(w.ctx); err != nil && !errors.Is(err, context.Canceled) {
		w.logger.Errorw("restarting checker after project file change", zap.Error(err))
	}
}
