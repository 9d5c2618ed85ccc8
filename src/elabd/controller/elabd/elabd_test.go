package elabd

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tally "github.com/uber-go/tally/v4"
	"github.com/uber/elabd/idl/mock/fxmock"
	"github.com/uber/elabd/src/elabd/controller/broadcast/broadcastmock"
	"github.com/uber/elabd/src/elabd/controller/checker/checkermock"
	"github.com/uber/elabd/src/elabd/controller/diagnostics/diagnosticsmock"
	"github.com/uber/elabd/src/elabd/controller/docsync/docsyncmock"
	"github.com/uber/elabd/src/elabd/controller/projectwatch/projectwatchmock"
	"github.com/uber/elabd/src/elabd/controller/roi/roimock"
	"github.com/uber/elabd/src/elabd/entity"
	"github.com/uber/elabd/src/elabd/factory"
	"github.com/uber/elabd/src/elabd/gateway/ide-client/ideclientmock"
	"github.com/uber/elabd/src/elabd/internal/clock/clocktest"
	"github.com/uber/elabd/src/elabd/repository/session/repositorymock"
	"go.lsp.dev/protocol"
	"go.uber.org/config"
	"go.uber.org/fx/fxtest"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

const (
	_root       = "/ws"
	_rootURI    = "file:///ws"
	_clientName = "Visual Studio Code"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type harness struct {
	t          *testing.T
	ctrl       *gomock.Controller
	c          *controller
	lifecycle  *fxtest.Lifecycle
	shutdowner *fxmock.MockShutdowner
	sessions   *repositorymock.MockRepository
	gateway    *ideclientmock.MockGateway
	clock      *clocktest.Manual
	scope      tally.TestScope

	checkers     *checkermock.MockFactory
	trackers     *roimock.MockFactory
	broadcasters *broadcastmock.MockFactory
	syncs        *docsyncmock.MockFactory
	watchers     *projectwatchmock.MockFactory
	diagnostics  *diagnosticsmock.MockController
}

// workspaceMocks are the components created for one workspace.
type workspaceMocks struct {
	session     *checkermock.MockManager
	tracker     *roimock.MockTracker
	broadcaster *broadcastmock.MockBroadcaster
	sync        *docsyncmock.MockController
	watcher     *projectwatchmock.MockWatcher

	onNotification []func(entity.CheckerNotification)
	detached       int
}

func newHarness(t *testing.T, yaml string) *harness {
	ctrl := gomock.NewController(t)
	h := &harness{
		t:            t,
		ctrl:         ctrl,
		lifecycle:    fxtest.NewLifecycle(t),
		shutdowner:   fxmock.NewMockShutdowner(ctrl),
		sessions:     repositorymock.NewMockRepository(ctrl),
		gateway:      ideclientmock.NewMockGateway(ctrl),
		clock:        clocktest.NewManual(time.Time{}),
		scope:        tally.NewTestScope("testing", nil),
		checkers:     checkermock.NewMockFactory(ctrl),
		trackers:     roimock.NewMockFactory(ctrl),
		broadcasters: broadcastmock.NewMockFactory(ctrl),
		syncs:        docsyncmock.NewMockFactory(ctrl),
		watchers:     projectwatchmock.NewMockFactory(ctrl),
		diagnostics:  diagnosticsmock.NewMockController(ctrl),
	}
	c, err := New(h.params(t, yaml))
	require.NoError(t, err)
	h.c = c.(*controller)
	return h
}

func (h *harness) params(t *testing.T, yaml string) Params {
	provider, err := config.NewYAML(config.Source(strings.NewReader(yaml)))
	require.NoError(t, err)
	return Params{
		Lifecycle:    h.lifecycle,
		Shutdowner:   h.shutdowner,
		Sessions:     h.sessions,
		IdeGateway:   h.gateway,
		Logger:       zap.NewNop().Sugar(),
		Stats:        h.scope,
		Config:       provider,
		Clock:        h.clock,
		Checkers:     h.checkers,
		Trackers:     h.trackers,
		Broadcasters: h.broadcasters,
		Syncs:        h.syncs,
		Watchers:     h.watchers,
		Diagnostics:  h.diagnostics,
	}
}

func (h *harness) expectWorkspace() *workspaceMocks {
	return h.expectWorkspaceWithWatch(nil)
}

// expectWorkspaceWithWatch expects one workspace to be built, with watchErr returned when its project files are watched.
func (h *harness) expectWorkspaceWithWatch(watchErr error) *workspaceMocks {
	m := &workspaceMocks{
		session:     checkermock.NewMockManager(h.ctrl),
		tracker:     roimock.NewMockTracker(h.ctrl),
		broadcaster: broadcastmock.NewMockBroadcaster(h.ctrl),
		sync:        docsyncmock.NewMockController(h.ctrl),
		watcher:     projectwatchmock.NewMockWatcher(h.ctrl),
	}
	detach := func() { m.detached++ }

	h.checkers.EXPECT().New(_root, _clientName).Return(m.session)
	h.trackers.EXPECT().New(m.session).Return(m.tracker)
	h.broadcasters.EXPECT().New(_root, m.tracker).Return(m.broadcaster)
	h.syncs.EXPECT().New(_root, m.session, m.tracker).Return(m.sync)
	h.watchers.EXPECT().New(_root, m.session).Return(m.watcher)
	m.session.EXPECT().OnNotification(gomock.Any()).DoAndReturn(func(f func(entity.CheckerNotification)) func() {
		m.onNotification = append(m.onNotification, f)
		return detach
	}).Times(2)
	m.session.EXPECT().Subscribe(gomock.Any()).Return(detach)
	h.diagnostics.EXPECT().Attach(_root, m.broadcaster).Return(detach)
	m.watcher.EXPECT().Start(gomock.Any()).Return(watchErr)
	return m
}

func (m *workspaceMocks) expectClose() {
	m.watcher.EXPECT().Close().Return(nil)
	m.sync.EXPECT().WorkspaceClosed(gomock.Any()).Return(nil)
	m.broadcaster.EXPECT().Close(gomock.Any()).Return(nil)
}

// initialize runs the initialize request for a new editor session and returns its context.
func (h *harness) initialize() (context.Context, uuid.UUID) {
	h.t.Helper()
	id := factory.UUID()
	ctx := context.WithValue(context.Background(), entity.SessionContextKey, id)
	s := &entity.Session{UUID: id}
	h.sessions.EXPECT().GetFromContext(gomock.Any()).Return(s, nil)
	h.sessions.EXPECT().Set(gomock.Any(), s).Return(nil)

	_, err := h.c.Initialize(ctx, &protocol.InitializeParams{
		RootURI:    _rootURI,
		ClientInfo: &protocol.ClientInfo{Name: _clientName},
	})
	require.NoError(h.t, err)
	assert.Equal(h.t, _root, s.WorkspaceRoot)
	assert.Equal(h.t, entity.ClientNameVSCode, s.ClientName)
	return ctx, id
}

func (h *harness) expectEnd(id uuid.UUID) {
	h.gateway.EXPECT().DeregisterClient(gomock.Any(), id).Return(nil)
	h.sessions.EXPECT().Delete(gomock.Any(), id).Return(nil)
}

func TestNew(t *testing.T) {
	t.Run("negative idle timeout", func(t *testing.T) {
		h := &harness{lifecycle: fxtest.NewLifecycle(t)}
		_, err := New(h.params(t, "idleTimeout: -1m\n"))
		assert.ErrorContains(t, err, "idleTimeout")
	})

	t.Run("invalid documents config", func(t *testing.T) {
		h := &harness{lifecycle: fxtest.NewLifecycle(t)}
		_, err := New(h.params(t, "documents:\n  languages: []\n  extensions: []\n"))
		assert.Error(t, err)
	})

	t.Run("languages from config", func(t *testing.T) {
		h := newHarness(t, "documents:\n  languages: [lean, lean4]\n")
		assert.Equal(t, []protocol.LanguageIdentifier{"lean", "lean4"}, h.c.languages)
	})
}

func TestIdleShutdown(t *testing.T) {
	h := newHarness(t, "idleTimeout: 1h\n")

	h.sessions.EXPECT().SessionCount(gomock.Any()).Return(0, nil)
	h.lifecycle.RequireStart()
	assert.Equal(t, []time.Duration{time.Hour}, h.clock.Pending())

	// A connection stops the countdown.
	h.gateway.EXPECT().RegisterClient(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	h.sessions.EXPECT().Set(gomock.Any(), gomock.Any()).Return(nil)
	h.sessions.EXPECT().SessionCount(gomock.Any()).Return(1, nil)
	id, err := h.c.InitSession(context.Background(), nil)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
	assert.Empty(t, h.clock.Pending())

	// The last disconnect starts it again.
	h.expectEnd(id)
	h.sessions.EXPECT().SessionCount(gomock.Any()).Return(0, nil)
	require.NoError(t, h.c.EndSession(context.Background(), id))
	require.Len(t, h.clock.Pending(), 1)

	h.shutdowner.EXPECT().Shutdown().Return(nil)
	assert.Equal(t, 1, h.clock.Fire())

	h.lifecycle.RequireStop()
}

func TestIdleTimeoutDisabled(t *testing.T) {
	h := newHarness(t, "idleTimeout: 0s\n")
	h.lifecycle.RequireStart()
	assert.Empty(t, h.clock.Pending())
	h.lifecycle.RequireStop()
}

func TestStopClosesWorkspaces(t *testing.T) {
	h := newHarness(t, "idleTimeout: 0s\n")
	m := h.expectWorkspace()
	h.initialize()

	h.lifecycle.RequireStart()
	m.expectClose()
	h.lifecycle.RequireStop()
	assert.Equal(t, 4, m.detached)
	assert.Empty(t, h.c.workspaces)
}
