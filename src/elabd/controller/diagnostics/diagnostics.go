// Package diagnostics publishes checker results of a workspace to the editors connected to it.
package diagnostics

import (
	"context"
	"fmt"
	"sync"

	"github.com/gofrs/uuid"
	tally "github.com/uber-go/tally/v4"
	"github.com/uber/elabd/src/elabd/controller/broadcast"
	"github.com/uber/elabd/src/elabd/entity"
	ideclient "github.com/uber/elabd/src/elabd/gateway/ide-client"
	notifier "github.com/uber/elabd/src/elabd/internal/persistent-notifier"
	"github.com/uber/elabd/src/elabd/mapper"
	"github.com/uber/elabd/src/elabd/repository/session"
	"go.lsp.dev/protocol"
	"go.uber.org/fx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	_nameKey       = "diagnostics"
	_progressTitle = "Starting checker"
)

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// Controller forwards broadcaster events to editors.
type Controller interface {
	// Attach publishes every event of b to the editors of workspaceRoot until the returned func is called.
	Attach(workspaceRoot string, b broadcast.Broadcaster) (detach func())
	// Replay sends the current state and latest results held by b to a single editor session.
	Replay(ctx context.Context, id uuid.UUID, b broadcast.Broadcaster) error
}

// Params are inbound parameters to initialize a new Controller.
type Params struct {
	fx.In

	Sessions   session.Repository
	IdeGateway ideclient.Gateway
	Notifier   notifier.NotificationManager
	Logger     *zap.SugaredLogger
	Stats      tally.Scope
}

type controller struct {
	sessions   session.Repository
	ideGateway ideclient.Gateway
	notifier   notifier.NotificationManager
	logger     *zap.SugaredLogger
	stats      tally.Scope
}

// progress is the startup notification of one workspace, open while the checker is starting or restarting.
type progress struct {
	mu      sync.Mutex
	handler notifier.NotificationHandler
}

// New creates a new Controller.
func New(p Params) Controller {
	return &controller{
		sessions:   p.Sessions,
		ideGateway: p.IdeGateway,
		notifier:   p.Notifier,
		logger:     p.Logger.With("plugin", _nameKey),
		stats:      p.Stats.SubScope(_nameKey),
	}
}

func (c *controller) Attach(workspaceRoot string, b broadcast.Broadcaster) (detach func()) {
	p := &progress{}
	subs := []broadcast.Subscription{
		b.SubscribeDiagnostics(func(snap entity.DiagnosticSnapshot) {
			c.forEachSession(workspaceRoot, func(ctx context.Context) error {
				return c.publishDiagnostics(ctx, snap)
			})
		}),
		b.SubscribeTasks(func(snap entity.TaskSnapshot) {
			c.forEachSession(workspaceRoot, func(ctx context.Context) error {
				return c.publishTasks(ctx, snap)
			})
		}),
		b.SubscribeSessionState(func(ev entity.StateEvent) {
			c.forEachSession(workspaceRoot, func(ctx context.Context) error {
				return c.publishState(ctx, ev)
			})
			c.trackProgress(workspaceRoot, p, ev)
		}),
	}
	return func() {
		for _, s := range subs {
			s.Unsubscribe()
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		p.endLocked()
	}
}

// trackProgress shows a progress notification in the editors while the checker is not yet ready.
func (c *controller) trackProgress(workspaceRoot string, p *progress, ev entity.StateEvent) {
	if c.notifier == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	var message string
	switch ev.State {
	case entity.SessionStateStarting:
		message = "spawning checker process"
	case entity.SessionStateRestarting:
		message = fmt.Sprintf("restart attempt %d, retrying in %s", ev.Attempt, ev.NextRetry)
	default:
		p.endLocked()
		return
	}

	ctx := context.Background()
	if p.handler == nil {
		h, err := c.notifier.StartNotification(ctx, workspaceRoot, _progressTitle)
		if err != nil {
			c.logger.Warnf("starting progress notification for %q: %v", workspaceRoot, err)
			return
		}
		p.handler = h
	}
	p.handler.Report(ctx, message)
}

func (p *progress) endLocked() {
	if p.handler == nil {
		return
	}
	p.handler.Done(context.Background())
	p.handler = nil
}

func (c *controller) Replay(ctx context.Context, id uuid.UUID, b broadcast.Broadcaster) error {
	sCtx := context.WithValue(ctx, entity.SessionContextKey, id)

	err := c.publishState(sCtx, entity.StateEvent{State: b.State()})
	for _, file := range b.Files() {
		diagnostics, tasks, ok := b.Latest(file)
		if !ok {
			continue
		}
		err = multierr.Append(err, c.publishDiagnostics(sCtx, diagnostics))
		err = multierr.Append(err, c.publishTasks(sCtx, tasks))
	}
	c.stats.Counter("replays").Inc(1)
	return err
}

// forEachSession runs publish once per editor session of the workspace. Failures only affect that editor.
func (c *controller) forEachSession(workspaceRoot string, publish func(ctx context.Context) error) {
	ctx := context.Background()
	sessions, err := c.sessions.GetAllFromWorkspaceRoot(ctx, workspaceRoot)
	if err != nil {
		c.logger.Errorf("getting sessions for %q: %v", workspaceRoot, err)
		return
	}
	for _, s := range sessions {
		sCtx := context.WithValue(ctx, entity.SessionContextKey, s.UUID)
		if err := publish(sCtx); err != nil {
			c.stats.Counter("publish_errors").Inc(1)
			c.logger.Errorf("publishing to session %s: %v", s.UUID, err)
		}
	}
}

func (c *controller) publishDiagnostics(ctx context.Context, snap entity.DiagnosticSnapshot) error {
	params := mapper.DiagnosticSnapshotToPublishParams(snap)
	c.logger.Debugf("Publishing %d diagnostics for %s at generation %d", len(params.Diagnostics), params.URI, snap.Generation)
	c.stats.Counter("diagnostics_published").Inc(1)
	return c.ideGateway.PublishDiagnostics(ctx, params)
}

func (c *controller) publishTasks(ctx context.Context, snap entity.TaskSnapshot) error {
	c.stats.Counter("tasks_published").Inc(1)
	return c.ideGateway.Notify(ctx, entity.MethodTasksUpdated, mapper.TaskSnapshotToParams(snap))
}

func (c *controller) publishState(ctx context.Context, ev entity.StateEvent) error {
	err := c.ideGateway.Notify(ctx, entity.MethodSessionStateChanged, mapper.StateEventToParams(ev))
	if ev.State != entity.SessionStateCrashed {
		return err
	}

	msg := "The checker stopped after repeated failures. Run the elabd.restartServer command to try again."
	if ev.Err != nil {
		msg = fmt.Sprintf("The checker stopped after repeated failures: %v. Run the elabd.restartServer command to try again.", ev.Err)
	}
	return multierr.Append(err, c.ideGateway.ShowMessage(ctx, &protocol.ShowMessageParams{
		Type:    protocol.MessageTypeError,
		Message: msg,
	}))
}
