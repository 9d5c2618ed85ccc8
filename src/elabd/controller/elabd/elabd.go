// Package elabd implements the elabd business logic: one checker workspace per workspace root,
// shared by every editor connected to it.
package elabd

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	tally "github.com/uber-go/tally/v4"
	"github.com/uber/elabd/src/elabd/controller/broadcast"
	"github.com/uber/elabd/src/elabd/controller/checker"
	"github.com/uber/elabd/src/elabd/controller/diagnostics"
	"github.com/uber/elabd/src/elabd/controller/docsync"
	"github.com/uber/elabd/src/elabd/controller/projectwatch"
	"github.com/uber/elabd/src/elabd/controller/roi"
	"github.com/uber/elabd/src/elabd/entity"
	ideclient "github.com/uber/elabd/src/elabd/gateway/ide-client"
	"github.com/uber/elabd/src/elabd/internal/clock"
	elabderrors "github.com/uber/elabd/src/elabd/internal/errors"
	"github.com/uber/elabd/src/elabd/mapper"
	"github.com/uber/elabd/src/elabd/repository/session"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	_nameKey        = "elabd"
	_idleTimeoutKey = "idleTimeout"

	_closeTimeout = 10 * time.Second
)

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// Controller orchestrates the business logic for each request.
type Controller interface {
	// LSP Methods defined per protocol.
	Initialize(ctx context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error)
	Initialized(ctx context.Context, params *protocol.InitializedParams) error
	Shutdown(ctx context.Context) error
	Exit(ctx context.Context) error

	// Document related methods.
	DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error
	DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error
	DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error
	ViewportChanged(ctx context.Context, params *entity.ViewportChangedParams) error
	CursorMoved(ctx context.Context, params *entity.CursorMovedParams) error

	// Workspace related methods.
	ExecuteCommand(ctx context.Context, params *protocol.ExecuteCommandParams) (any, error)

	// Custom methods for use within this service.
	RequestFullShutdown(ctx context.Context) error
	InitSession(ctx context.Context, conn *jsonrpc2.Conn) (uuid.UUID, error)
	EndSession(ctx context.Context, id uuid.UUID) error
}

// Params are inbound parameters to initialize a new controller.
type Params struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Sessions   session.Repository
	IdeGateway ideclient.Gateway
	Logger     *zap.SugaredLogger
	Stats      tally.Scope
	Config     config.Provider
	Clock      clock.Clock

	Checkers     checker.Factory
	Trackers     roi.Factory
	Broadcasters broadcast.Factory
	Syncs        docsync.Factory
	Watchers     projectwatch.Factory
	Diagnostics  diagnostics.Controller
}

// workspace is everything that runs for one workspace root.
type workspace struct {
	root        string
	session     checker.Manager
	tracker     roi.Tracker
	broadcaster broadcast.Broadcaster
	sync        docsync.Controller
	watcher     projectwatch.Watcher
	detach      []func()

	// Open counts of the documents each editor session has open.
	editors map[uuid.UUID]map[protocol.DocumentURI]int
}

type controller struct {
	sessions    session.Repository
	shutdowner  fx.Shutdowner
	ideGateway  ideclient.Gateway
	logger      *zap.SugaredLogger
	stats       tally.Scope
	clock       clock.Clock
	languages   []protocol.LanguageIdentifier
	idleTimeout time.Duration

	checkers     checker.Factory
	trackers     roi.Factory
	broadcasters broadcast.Factory
	syncs        docsync.Factory
	watchers     projectwatch.Factory
	diagnostics  diagnostics.Controller

	mu           sync.Mutex
	workspaces   map[string]*workspace
	fullShutdown bool
	idleTimer    clock.Timer
}

// New constructs a new top-level controller for the service.
func New(p Params) (Controller, error) {
	var idleTimeout time.Duration
	if err := p.Config.Get(_idleTimeoutKey).Populate(&idleTimeout); err != nil {
		return nil, fmt.Errorf("unable to get idle timeout from config: %w", err)
	}
	if idleTimeout < 0 {
		return nil, errors.New("idleTimeout must not be negative")
	}
	docs, err := docsync.LoadConfig(p.Config)
	if err != nil {
		return nil, err
	}
	languages := make([]protocol.LanguageIdentifier, 0, len(docs.Languages))
	for _, l := range docs.Languages {
		languages = append(languages, protocol.LanguageIdentifier(l))
	}

	c := &controller{
		sessions:     p.Sessions,
		shutdowner:   p.Shutdowner,
		ideGateway:   p.IdeGateway,
		logger:       p.Logger.With("plugin", _nameKey),
		stats:        p.Stats.SubScope(_nameKey),
		clock:        p.Clock,
		languages:    languages,
		idleTimeout:  idleTimeout,
		checkers:     p.Checkers,
		trackers:     p.Trackers,
		broadcasters: p.Broadcasters,
		syncs:        p.Syncs,
		watchers:     p.Watchers,
		diagnostics:  p.Diagnostics,
		workspaces:   make(map[string]*workspace),
	}
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return c.refreshIdleTimer(ctx)
		},
		OnStop: c.closeAll,
	})
	return c, nil
}

// join adds an editor session to the workspace of its root, creating the workspace for the first editor.
func (c *controller) join(ctx context.Context, s *entity.Session) *workspace {
	c.mu.Lock()
	defer c.mu.Unlock()

	ws, ok := c.workspaces[s.WorkspaceRoot]
	if !ok {
		ws = c.newWorkspace(ctx, s.WorkspaceRoot, string(s.ClientName))
		c.workspaces[s.WorkspaceRoot] = ws
		c.stats.Gauge("workspaces").Update(float64(len(c.workspaces)))
	}
	if _, ok := ws.editors[s.UUID]; !ok {
		ws.editors[s.UUID] = make(map[protocol.DocumentURI]int)
	}
	return ws
}

// newWorkspace builds and wires the components of a workspace. The checker itself starts on the first relevant document.
func (c *controller) newWorkspace(ctx context.Context, root string, clientName string) *workspace {
	ws := &workspace{
		root:    root,
		session: c.checkers.New(root, clientName),
		editors: make(map[uuid.UUID]map[protocol.DocumentURI]int),
	}
	ws.tracker = c.trackers.New(ws.session)
	ws.broadcaster = c.broadcasters.New(root, ws.tracker)
	ws.sync = c.syncs.New(root, ws.session, ws.tracker)
	ws.watcher = c.watchers.New(root, ws.session)

	ws.detach = []func(){
		ws.session.OnNotification(ws.broadcaster.HandleNotification),
		ws.session.OnNotification(func(n entity.CheckerNotification) {
			if n.Method == entity.CheckerMethodLog {
				c.forwardLog(root, n)
			}
		}),
		ws.session.Subscribe(ws.broadcaster.HandleStateEvent),
		c.diagnostics.Attach(root, ws.broadcaster),
	}

	if err := ws.watcher.Start(ctx); err != nil {
		c.logger.Warnw("project files will not be watched", "workspace", root, zap.Error(err))
	}
	c.logger.Infow("workspace opened", "workspace", root)
	return ws
}

// leave removes an editor session from its workspace, closing its documents.
// The workspace is closed when its last editor leaves.
func (c *controller) leave(ctx context.Context, id uuid.UUID) error {
	c.mu.Lock()
	var (
		ws   *workspace
		docs map[protocol.DocumentURI]int
	)
	for _, w := range c.workspaces {
		if d, ok := w.editors[id]; ok {
			ws, docs = w, d
			delete(w.editors, id)
			break
		}
	}
	if ws == nil {
		c.mu.Unlock()
		return nil
	}
	last := len(ws.editors) == 0
	if last {
		delete(c.workspaces, ws.root)
		c.stats.Gauge("workspaces").Update(float64(len(c.workspaces)))
	}
	c.mu.Unlock()

	if last {
		return c.closeWorkspace(ctx, ws)
	}

	var err error
	for u, opens := range docs {
		doc := protocol.TextDocumentIdentifier{URI: u}
		for range opens {
			err = multierr.Append(err, ws.sync.DidClose(ctx, doc))
		}
		c.forgetIfClosed(ws, doc)
	}
	return err
}

// closeWorkspace stops the checker of a workspace and releases everything wired to it.
func (c *controller) closeWorkspace(ctx context.Context, ws *workspace) error {
	err := ws.watcher.Close()
	err = multierr.Append(err, ws.sync.WorkspaceClosed(ctx))
	for _, detach := range ws.detach {
		detach()
	}

	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), _closeTimeout)
	defer cancel()
	err = multierr.Append(err, ws.broadcaster.Close(closeCtx))

	c.logger.Infow("workspace closed", "workspace", ws.root)
	if err != nil {
		return fmt.Errorf("closing workspace %q: %w", ws.root, err)
	}
	return nil
}

// closeAll closes every workspace on service shutdown.
func (c *controller) closeAll(ctx context.Context) error {
	c.mu.Lock()
	workspaces := make([]*workspace, 0, len(c.workspaces))
	for root, ws := range c.workspaces {
		workspaces = append(workspaces, ws)
		delete(c.workspaces, root)
	}
	if c.idleTimer != nil {
		c.idleTimer.Stop()
	}
	c.mu.Unlock()

	var err error
	for _, ws := range workspaces {
		err = multierr.Append(err, c.closeWorkspace(ctx, ws))
	}
	return err
}

// workspaceFromContext returns the workspace of the editor session in ctx.
func (c *controller) workspaceFromContext(ctx context.Context) (*workspace, uuid.UUID, error) {
	id, err := mapper.ContextToSessionUUID(ctx)
	if err != nil {
		return nil, uuid.Nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ws := range c.workspaces {
		if _, ok := ws.editors[id]; ok {
			return ws, id, nil
		}
	}

	s, err := c.sessions.Get(ctx, id)
	if err != nil {
		return nil, uuid.Nil, err
	}
	return nil, uuid.Nil, &elabderrors.WorkspaceNotFoundError{WorkspaceRoot: s.WorkspaceRoot}
}

// forgetIfClosed clears the results of a document once no editor has it open.
func (c *controller) forgetIfClosed(ws *workspace, doc protocol.TextDocumentIdentifier) {
	if _, err := ws.sync.GetTextDocument(doc); err == nil {
		return
	}
	ws.broadcaster.Forget(mapper.URIToFile(doc.URI))
}

// forwardLog sends a checker log line to every editor of the workspace.
func (c *controller) forwardLog(root string, n entity.CheckerNotification) {
	params, err := mapper.CheckerNotificationToLogParams(n)
	if err != nil {
		return
	}

	ctx := context.Background()
	sessions, err := c.sessions.GetAllFromWorkspaceRoot(ctx, root)
	if err != nil {
		c.logger.Errorf("getting sessions for %q: %v", root, err)
		return
	}
	msg := mapper.LogParamsToLogMessage(params)
	for _, s := range sessions {
		sCtx := context.WithValue(ctx, entity.SessionContextKey, s.UUID)
		if err := c.ideGateway.LogMessage(sCtx, msg); err != nil {
			c.logger.Debugf("forwarding checker log to session %s: %v", s.UUID, err)
		}
	}
}

// refreshIdleTimer shuts the service down after a period without editor connections.
func (c *controller) refreshIdleTimer(ctx context.Context) error {
	if c.idleTimeout == 0 {
		return nil
	}

	currentSessions, err := c.sessions.SessionCount(ctx)
	if err != nil {
		return fmt.Errorf("error resetting timeout: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.idleTimer != nil {
		c.idleTimer.Stop()
		c.idleTimer = nil
	}
	if currentSessions == 0 {
		c.idleTimer = c.clock.AfterFunc(c.idleTimeout, c.idleShutdown)
	}
	return nil
}

func (c *controller) idleShutdown() {
	c.logger.Info("Shutdown signal received.")
	if err := c.shutdowner.Shutdown(); err != nil {
		c.logger.Errorf("requesting shutdown: %v", err)
	}
}
