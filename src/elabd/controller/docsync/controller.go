// Package docsync decides when the checker of a workspace runs and keeps it informed of open documents.
package docsync

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"sync"

	tally "github.com/uber-go/tally/v4"
	"github.com/uber/elabd/src/elabd/controller/checker"
	"github.com/uber/elabd/src/elabd/controller/roi"
	"github.com/uber/elabd/src/elabd/entity"
	"github.com/uber/elabd/src/elabd/internal/clock"
	elabderrors "github.com/uber/elabd/src/elabd/internal/errors"
	"github.com/uber/elabd/src/elabd/mapper"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"
)

// State of the sync controller.
type State int

const (
	// StateIdle means no relevant document is open and the checker is stopped.
	StateIdle State = iota
	// StateWatching means the checker is wanted and open documents are synced to it.
	StateWatching
)

// String implements fmt.Stringer.
func (s State) String() string {
	if s == StateWatching {
		return "watching"
	}
	return "idle"
}

// Controller follows the documents an editor has open in one workspace.
type Controller interface {
	DidOpen(ctx context.Context, doc protocol.TextDocumentItem) error
	DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error
	DidClose(ctx context.Context, doc protocol.TextDocumentIdentifier) error
	ViewportChanged(ctx context.Context, params *entity.ViewportChangedParams) error
	CursorMoved(ctx context.Context, params *entity.CursorMovedParams) error

	// Activate starts watching without a document, e.g. for a manual restart.
	// Without a relevant document it goes idle again after the grace period.
	Activate(ctx context.Context)
	// WorkspaceClosed stops the checker immediately and forgets every document.
	WorkspaceClosed(ctx context.Context) error

	State() State
	// GetTextDocument returns the current text of an open document.
	GetTextDocument(doc protocol.TextDocumentIdentifier) (protocol.TextDocumentItem, error)
	// IsRelevant reports whether the document is handled by the checker.
	IsRelevant(doc protocol.TextDocumentIdentifier) bool
}

// Options are the dependencies of a single Controller.
type Options struct {
	WorkspaceRoot string
	Session       checker.Manager
	Tracker       roi.Tracker
	Config        Config
	Clock         clock.Clock
	Logger        *zap.SugaredLogger
	Scope         tally.Scope
}

type document struct {
	item     protocol.TextDocumentItem
	file     string
	relevant bool
	// Number of editor connections that have the document open.
	opens int
}

type controller struct {
	workspaceRoot string
	session       checker.Manager
	tracker       roi.Tracker
	cfg           Config
	clock         clock.Clock
	logger        *zap.SugaredLogger

	activations tally.Counter
	idles       tally.Counter
	documents   tally.Gauge

	wg sync.WaitGroup

	mu     sync.Mutex
	state  State
	docs   map[protocol.DocumentURI]*document
	grace  clock.Timer
	epoch  uint64
	cancel context.CancelFunc
}

// New creates a Controller for one workspace.
func New(opts Options) Controller {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	if opts.Scope == nil {
		opts.Scope = tally.NoopScope
	}

	return &controller{
		workspaceRoot: opts.WorkspaceRoot,
		session:       opts.Session,
		tracker:       opts.Tracker,
		cfg:           opts.Config,
		clock:         opts.Clock,
		logger:        opts.Logger.With("workspace", opts.WorkspaceRoot),
		activations:   opts.Scope.Counter("activations"),
		idles:         opts.Scope.Counter("idle_transitions"),
		documents:     opts.Scope.Gauge("open_documents"),
		docs:          make(map[protocol.DocumentURI]*document),
	}
}

func (c *controller) DidOpen(ctx context.Context, item protocol.TextDocumentItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.updateMetricsLocked()

	if doc, ok := c.docs[item.URI]; ok {
		doc.opens++
		if item.Version > doc.item.Version {
			doc.item = item
			if doc.relevant && c.state == StateWatching {
				c.syncFileLocked(ctx, doc)
			}
		}
		return nil
	}

	doc := &document{
		item:     item,
		file:     mapper.URIToFile(item.URI),
		relevant: c.isRelevant(item.URI, item.LanguageID),
		opens:    1,
	}
	c.docs[item.URI] = doc
	if !doc.relevant {
		c.logger.Debugw("ignoring document", "uri", item.URI, "languageId", item.LanguageID)
		return nil
	}

	c.stopGraceLocked()
	if c.state == StateIdle {
		c.activateLocked(ctx)
		return nil
	}
	c.syncFileLocked(ctx, doc)
	c.tracker.Open(doc.file)
	return nil
}

func (c *controller) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, ok := c.docs[params.TextDocument.URI]
	if !ok {
		return &elabderrors.DocumentNotFoundError{Document: params.TextDocument.TextDocumentIdentifier}
	}
	if params.TextDocument.Version < doc.item.Version {
		c.logger.Debugw("ignoring outdated change", "uri", doc.item.URI, "version", params.TextDocument.Version, "current", doc.item.Version)
		return nil
	}

	oldText := doc.item.Text
	newText, err := mapper.ApplyContentChanges(oldText, params.ContentChanges)
	if err != nil {
		return err
	}
	doc.item.Text = newText
	doc.item.Version = params.TextDocument.Version

	if doc.relevant && c.state == StateWatching {
		c.syncFileLocked(ctx, doc)
		c.tracker.EditText(doc.file, oldText, newText)
	}
	return nil
}

func (c *controller) DidClose(ctx context.Context, id protocol.TextDocumentIdentifier) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.updateMetricsLocked()

	doc, ok := c.docs[id.URI]
	if !ok {
		return &elabderrors.DocumentNotFoundError{Document: id}
	}
	doc.opens--
	if doc.opens > 0 {
		return nil
	}
	delete(c.docs, id.URI)

	if !doc.relevant || c.state != StateWatching {
		return nil
	}
	c.tracker.Close(doc.file)
	if c.relevantCountLocked() == 0 {
		c.scheduleGraceLocked()
	}
	return nil
}

func (c *controller) ViewportChanged(ctx context.Context, params *entity.ViewportChangedParams) error {
	doc, err := c.watched(params.TextDocument)
	if err != nil || doc == nil {
		return err
	}
	c.tracker.Viewport(doc.file, mapper.RangesToLineRanges(params.Ranges))
	return nil
}

func (c *controller) CursorMoved(ctx context.Context, params *entity.CursorMovedParams) error {
	doc, err := c.watched(params.TextDocument)
	if err != nil || doc == nil {
		return err
	}
	c.tracker.Cursor(doc.file, mapper.PositionToLine(params.Position))
	return nil
}

// watched returns the document if its signals should reach the tracker, or nil.
func (c *controller) watched(id protocol.TextDocumentIdentifier) (*document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, ok := c.docs[id.URI]
	if !ok {
		return nil, &elabderrors.DocumentNotFoundError{Document: id}
	}
	if !doc.relevant || c.state != StateWatching {
		return nil, nil
	}
	return doc, nil
}

func (c *controller) Activate(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopGraceLocked()
	if c.state == StateIdle {
		c.activateLocked(ctx)
	}
	if c.relevantCountLocked() == 0 {
		c.scheduleGraceLocked()
	}
}

func (c *controller) WorkspaceClosed(ctx context.Context) error {
	c.mu.Lock()
	c.stopGraceLocked()
	c.docs = make(map[protocol.DocumentURI]*document)
	c.updateMetricsLocked()
	err := c.idleLocked(ctx)
	c.mu.Unlock()

	c.wg.Wait()
	return err
}

func (c *controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *controller) GetTextDocument(id protocol.TextDocumentIdentifier) (protocol.TextDocumentItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, ok := c.docs[id.URI]
	if !ok {
		return protocol.TextDocumentItem{}, &elabderrors.DocumentNotFoundError{Document: id}
	}
	return doc.item, nil
}

func (c *controller) IsRelevant(id protocol.TextDocumentIdentifier) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if doc, ok := c.docs[id.URI]; ok {
		return doc.relevant
	}
	return c.isRelevant(id.URI, "")
}

// activateLocked moves to Watching, syncs every relevant open document and starts the checker in the background.
func (c *controller) activateLocked(ctx context.Context) {
	c.state = StateWatching
	c.activations.Inc(1)

	files := make([]*document, 0, len(c.docs))
	for _, doc := range c.docs {
		if doc.relevant {
			files = append(files, doc)
		}
	}
	slices.SortFunc(files, func(a, b *document) int {
		switch {
		case a.file < b.file:
			return -1
		case a.file > b.file:
			return 1
		}
		return 0
	})
	// Content is recorded before the region of interest so the checker knows a file before checking it.
	for _, doc := range files {
		c.syncFileLocked(ctx, doc)
		c.tracker.Open(doc.file)
	}
	c.logger.Infow("activating checker", "documents", len(files))

	startCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()
		if err := c.session.Start(startCtx); err != nil {
			c.logger.Warnw("starting checker", zap.Error(err))
		}
	}()
}

// idleLocked moves to Idle and stops the checker.
func (c *controller) idleLocked(ctx context.Context) error {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.state == StateWatching {
		c.idles.Inc(1)
	}
	c.state = StateIdle
	c.tracker.Reset()
	return c.session.Stop(ctx)
}

func (c *controller) scheduleGraceLocked() {
	c.stopGraceLocked()
	epoch := c.epoch
	c.grace = c.clock.AfterFunc(c.cfg.GracePeriod, func() {
		c.expire(epoch)
	})
}

func (c *controller) stopGraceLocked() {
	c.epoch++
	if c.grace != nil {
		c.grace.Stop()
		c.grace = nil
	}
}

func (c *controller) expire(epoch uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if epoch != c.epoch || c.state != StateWatching || c.relevantCountLocked() > 0 {
		return
	}
	c.grace = nil
	c.logger.Infow("no relevant documents left, stopping checker", "gracePeriod", c.cfg.GracePeriod)
	if err := c.idleLocked(context.Background()); err != nil {
		c.logger.Warnw("stopping checker", zap.Error(err))
	}
}

func (c *controller) syncFileLocked(ctx context.Context, doc *document) {
	err := c.session.SyncReplayable(ctx, entity.CheckerMethodSyncFile, doc.file, mapper.DocumentToSyncFileParams(doc.item))
	switch {
	case err == nil, errors.Is(err, elabderrors.ErrNoSession):
		// Recorded for replay once the checker is up.
	default:
		c.logger.Warnw("syncing document", "file", doc.file, zap.Error(err))
	}
}

func (c *controller) relevantCountLocked() int {
	n := 0
	for _, doc := range c.docs {
		if doc.relevant {
			n++
		}
	}
	return n
}

func (c *controller) isRelevant(uri protocol.DocumentURI, languageID protocol.LanguageIdentifier) bool {
	if languageID != "" && slices.Contains(c.cfg.Languages, string(languageID)) {
		return true
	}
	return slices.Contains(c.cfg.Extensions, filepath.Ext(mapper.URIToFile(uri)))
}

func (c *controller) updateMetricsLocked() {
	c.documents.Update(float64(len(c.docs)))
}
