package diagnostics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tally "github.com/uber-go/tally/v4"
	"github.com/uber/elabd/src/elabd/controller/broadcast"
	"github.com/uber/elabd/src/elabd/controller/broadcast/broadcastmock"
	"github.com/uber/elabd/src/elabd/entity"
	"github.com/uber/elabd/src/elabd/factory"
	"github.com/uber/elabd/src/elabd/gateway/ide-client/ideclientmock"
	"github.com/uber/elabd/src/elabd/internal/persistent-notifier/notifiermock"
	"github.com/uber/elabd/src/elabd/mapper"
	"github.com/uber/elabd/src/elabd/repository/session/repositorymock"
	"go.lsp.dev/protocol"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

const (
	_root = "/ws"
	_file = "/ws/Main.lean"
)

type harness struct {
	c           Controller
	sessions    *repositorymock.MockRepository
	gateway     *ideclientmock.MockGateway
	broadcaster *broadcastmock.MockBroadcaster
	notifier    *notifiermock.MockNotificationManager
	progress    *notifiermock.MockNotificationHandler
	scope       tally.TestScope

	onDiagnostics func(entity.DiagnosticSnapshot)
	onTasks       func(entity.TaskSnapshot)
	onState       func(entity.StateEvent)
	subs          []*broadcastmock.MockSubscription
}

func newHarness(t *testing.T) *harness {
	ctrl := gomock.NewController(t)
	h := &harness{
		sessions:    repositorymock.NewMockRepository(ctrl),
		gateway:     ideclientmock.NewMockGateway(ctrl),
		broadcaster: broadcastmock.NewMockBroadcaster(ctrl),
		notifier:    notifiermock.NewMockNotificationManager(ctrl),
		progress:    notifiermock.NewMockNotificationHandler(ctrl),
		scope:       tally.NewTestScope("testing", nil),
	}
	for range 3 {
		h.subs = append(h.subs, broadcastmock.NewMockSubscription(ctrl))
	}
	h.c = New(Params{
		Sessions:   h.sessions,
		IdeGateway: h.gateway,
		Notifier:   h.notifier,
		Logger:     zap.NewNop().Sugar(),
		Stats:      h.scope,
	})
	return h
}

// attach captures the callbacks registered with the broadcaster so tests can drive them synchronously.
func (h *harness) attach() func() {
	h.broadcaster.EXPECT().SubscribeDiagnostics(gomock.Any()).DoAndReturn(func(f func(entity.DiagnosticSnapshot)) broadcast.Subscription {
		h.onDiagnostics = f
		return h.subs[0]
	})
	h.broadcaster.EXPECT().SubscribeTasks(gomock.Any()).DoAndReturn(func(f func(entity.TaskSnapshot)) broadcast.Subscription {
		h.onTasks = f
		return h.subs[1]
	})
	h.broadcaster.EXPECT().SubscribeSessionState(gomock.Any()).DoAndReturn(func(f func(entity.StateEvent)) broadcast.Subscription {
		h.onState = f
		return h.subs[2]
	})
	return h.c.Attach(_root, h.broadcaster)
}

func (h *harness) editors(n int) []*entity.Session {
	var sessions []*entity.Session
	for range n {
		sessions = append(sessions, &entity.Session{UUID: factory.UUID(), WorkspaceRoot: _root})
	}
	h.sessions.EXPECT().GetAllFromWorkspaceRoot(gomock.Any(), _root).Return(sessions, nil).AnyTimes()
	return sessions
}

func sessionOf(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(entity.SessionContextKey).(uuid.UUID)
	return id
}

func (h *harness) counter(name string) int64 {
	c, ok := h.scope.Snapshot().Counters()["testing.diagnostics."+name+"+"]
	if !ok {
		return 0
	}
	return c.Value()
}

func TestNew(t *testing.T) {
	assert.NotPanics(t, func() {
		New(Params{
			Stats:  tally.NewTestScope("testing", make(map[string]string, 0)),
			Logger: zap.NewNop().Sugar(),
		})
	})
}

func TestDiagnosticsPublishedToEveryEditor(t *testing.T) {
	h := newHarness(t)
	h.attach()
	editors := h.editors(2)

	snap := entity.DiagnosticSnapshot{
		WorkspaceRoot: _root,
		File:          _file,
		Generation:    3,
		Diagnostics:   []entity.Diagnostic{factory.Diagnostic(_file, 2, entity.SeverityError, "type mismatch")},
	}
	var got []uuid.UUID
	h.gateway.EXPECT().PublishDiagnostics(gomock.Any(), mapper.DiagnosticSnapshotToPublishParams(snap)).
		DoAndReturn(func(ctx context.Context, _ *protocol.PublishDiagnosticsParams) error {
			got = append(got, sessionOf(ctx))
			return nil
		}).Times(2)

	h.onDiagnostics(snap)
	assert.ElementsMatch(t, []uuid.UUID{editors[0].UUID, editors[1].UUID}, got)
	assert.Equal(t, int64(1), h.counter("diagnostics_published"))
}

func TestTasksPublished(t *testing.T) {
	h := newHarness(t)
	h.attach()
	editors := h.editors(1)

	snap := entity.TaskSnapshot{WorkspaceRoot: _root, File: _file, Generation: 4, Unknown: true}
	h.gateway.EXPECT().Notify(gomock.Any(), entity.MethodTasksUpdated, mapper.TaskSnapshotToParams(snap)).
		DoAndReturn(func(ctx context.Context, _ string, _ any) error {
			assert.Equal(t, editors[0].UUID, sessionOf(ctx))
			return nil
		})

	h.onTasks(snap)
}

func TestPublishFailureOnlyAffectsThatEditor(t *testing.T) {
	h := newHarness(t)
	h.attach()
	editors := h.editors(2)

	snap := entity.DiagnosticSnapshot{WorkspaceRoot: _root, File: _file, Generation: 1}
	delivered := 0
	h.gateway.EXPECT().PublishDiagnostics(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ *protocol.PublishDiagnosticsParams) error {
			if sessionOf(ctx) == editors[0].UUID {
				return errors.New("connection closed")
			}
			delivered++
			return nil
		}).Times(2)

	h.onDiagnostics(snap)
	assert.Equal(t, 1, delivered)
	assert.Equal(t, int64(1), h.counter("publish_errors"))
}

func TestSessionLookupFailure(t *testing.T) {
	h := newHarness(t)
	h.attach()
	h.sessions.EXPECT().GetAllFromWorkspaceRoot(gomock.Any(), _root).Return(nil, errors.New("boom"))

	assert.NotPanics(t, func() {
		h.onDiagnostics(entity.DiagnosticSnapshot{WorkspaceRoot: _root, File: _file})
	})
}

func TestStateChanges(t *testing.T) {
	t.Run("restarting", func(t *testing.T) {
		h := newHarness(t)
		h.attach()
		h.editors(1)

		ev := entity.StateEvent{WorkspaceRoot: _root, State: entity.SessionStateRestarting, Attempt: 2, NextRetry: 2 * time.Second}
		h.gateway.EXPECT().Notify(gomock.Any(), entity.MethodSessionStateChanged, mapper.StateEventToParams(ev)).Return(nil)
		h.notifier.EXPECT().StartNotification(gomock.Any(), _root, _progressTitle).Return(h.progress, nil)
		h.progress.EXPECT().Report(gomock.Any(), "restart attempt 2, retrying in 2s")
		h.onState(ev)
	})

	t.Run("crashed shows an error", func(t *testing.T) {
		h := newHarness(t)
		h.attach()
		h.editors(1)

		ev := entity.StateEvent{WorkspaceRoot: _root, State: entity.SessionStateCrashed, Err: errors.New("exit status 1")}
		h.gateway.EXPECT().Notify(gomock.Any(), entity.MethodSessionStateChanged, mapper.StateEventToParams(ev)).Return(nil)
		h.gateway.EXPECT().ShowMessage(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, params *protocol.ShowMessageParams) error {
				assert.Equal(t, protocol.MessageTypeError, params.Type)
				assert.Contains(t, params.Message, "exit status 1")
				assert.Contains(t, params.Message, entity.CommandRestartServer)
				return nil
			})
		h.onState(ev)
	})
}

func TestCheckerProgress(t *testing.T) {
	h := newHarness(t)
	detach := h.attach()
	h.editors(1)
	h.gateway.EXPECT().Notify(gomock.Any(), entity.MethodSessionStateChanged, gomock.Any()).Return(nil).AnyTimes()

	gomock.InOrder(
		h.notifier.EXPECT().StartNotification(gomock.Any(), _root, _progressTitle).Return(h.progress, nil),
		h.progress.EXPECT().Report(gomock.Any(), "spawning checker process"),
		h.progress.EXPECT().Report(gomock.Any(), "restart attempt 1, retrying in 1s"),
		h.progress.EXPECT().Report(gomock.Any(), "spawning checker process"),
		h.progress.EXPECT().Done(gomock.Any()),
	)
	h.onState(entity.StateEvent{WorkspaceRoot: _root, State: entity.SessionStateStarting})
	h.onState(entity.StateEvent{WorkspaceRoot: _root, State: entity.SessionStateRestarting, Attempt: 1, NextRetry: time.Second})
	h.onState(entity.StateEvent{WorkspaceRoot: _root, State: entity.SessionStateStarting})
	h.onState(entity.StateEvent{WorkspaceRoot: _root, State: entity.SessionStateReady})

	t.Run("notification failure", func(t *testing.T) {
		h.notifier.EXPECT().StartNotification(gomock.Any(), _root, _progressTitle).Return(nil, errors.New("boom"))
		assert.NotPanics(t, func() {
			h.onState(entity.StateEvent{WorkspaceRoot: _root, State: entity.SessionStateStarting})
		})
	})

	t.Run("detach ends an open notification", func(t *testing.T) {
		h.notifier.EXPECT().StartNotification(gomock.Any(), _root, _progressTitle).Return(h.progress, nil)
		h.progress.EXPECT().Report(gomock.Any(), "spawning checker process")
		h.onState(entity.StateEvent{WorkspaceRoot: _root, State: entity.SessionStateStarting})

		for _, s := range h.subs {
			s.EXPECT().Unsubscribe()
		}
		h.progress.EXPECT().Done(gomock.Any())
		detach()
	})
}

func TestDetach(t *testing.T) {
	h := newHarness(t)
	detach := h.attach()
	for _, s := range h.subs {
		s.EXPECT().Unsubscribe()
	}
	detach()
}

func TestReplay(t *testing.T) {
	h := newHarness(t)
	id := factory.UUID()

	diag := entity.DiagnosticSnapshot{
		WorkspaceRoot: _root,
		File:          _file,
		Generation:    2,
		Diagnostics:   []entity.Diagnostic{factory.Diagnostic(_file, 1, entity.SeverityWarning, "unused variable")},
	}
	tasks := entity.TaskSnapshot{WorkspaceRoot: _root, File: _file, Generation: 2}

	h.broadcaster.EXPECT().State().Return(entity.SessionStateReady)
	h.broadcaster.EXPECT().Files().Return([]string{_file, "/ws/Gone.lean"})
	h.broadcaster.EXPECT().Latest(_file).Return(diag, tasks, true)
	h.broadcaster.EXPECT().Latest("/ws/Gone.lean").Return(entity.DiagnosticSnapshot{}, entity.TaskSnapshot{}, false)

	inSession := func(ctx context.Context) {
		assert.Equal(t, id, sessionOf(ctx))
	}
	h.gateway.EXPECT().Notify(gomock.Any(), entity.MethodSessionStateChanged, &entity.SessionStateChangedParams{State: entity.SessionStateReady}).
		DoAndReturn(func(ctx context.Context, _ string, _ any) error { inSession(ctx); return nil })
	h.gateway.EXPECT().PublishDiagnostics(gomock.Any(), mapper.DiagnosticSnapshotToPublishParams(diag)).
		DoAndReturn(func(ctx context.Context, _ *protocol.PublishDiagnosticsParams) error { inSession(ctx); return nil })
	h.gateway.EXPECT().Notify(gomock.Any(), entity.MethodTasksUpdated, mapper.TaskSnapshotToParams(tasks)).
		Return(errors.New("closed"))

	err := h.c.Replay(context.Background(), id, h.broadcaster)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed")
	assert.Equal(t, int64(1), h.counter("replays"))
}
