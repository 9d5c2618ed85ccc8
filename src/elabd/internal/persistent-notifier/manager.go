package notifier

import (
	"context"
	"fmt"
	"sync"

	ideclient "github.com/uber/elabd/src/elabd/gateway/ide-client"
	"github.com/uber/elabd/src/elabd/repository/session"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module is the Fx module for this package.
var Module = fx.Provide(NewNotificationManager)

// NotificationManagerParams are used to initialize a new NotificationManager.
type NotificationManagerParams struct {
	fx.In

	Sessions   session.Repository
	IdeGateway ideclient.Gateway
	Logger     *zap.SugaredLogger
}

// NotificationManager manages the progress notifications shown to the editors of each workspace.
// StartNotification returns the active NotificationHandler for a workspaceRoot and title combination, creating it if needed.
type NotificationManager interface {
	StartNotification(ctx context.Context, workspaceRoot string, title string) (NotificationHandler, error)
	Delete(id string)
}

// NewNotificationManager creates a new NotificationManager.
func NewNotificationManager(p NotificationManagerParams) NotificationManager {
	return &notificationManagerImpl{
		sessions:   p.Sessions,
		ideGateway: p.IdeGateway,
		logger:     p.Logger,

		handlers: make(map[string]NotificationHandler),
	}
}

type notificationManagerImpl struct {
	sessions   session.Repository
	ideGateway ideclient.Gateway
	logger     *zap.SugaredLogger

	handlers map[string]NotificationHandler
	mu       sync.Mutex
}

// StartNotification returns the handler for this workspaceRoot and title, adding a caller to it if it already exists.
// The notification stays visible until every caller has called Done.
func (m *notificationManagerImpl) StartNotification(ctx context.Context, workspaceRoot string, title string) (NotificationHandler, error) {
	notificationID := fmt.Sprintf("%s-%s", workspaceRoot, title)
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deleteIfClosed(notificationID)
	if existing, ok := m.handlers[notificationID]; ok {
		if existing.Add() {
			return existing, nil
		}
		delete(m.handlers, notificationID)
	}

	h, err := NewNotificationHandler(ctx, notificationHandlerParams{
		ParentManager: m,
		Sessions:      m.sessions,
		IdeGateway:    m.ideGateway,
		Logger:        m.logger,
		WorkspaceRoot: workspaceRoot,
		Title:         title,
	}, notificationID)
	if err != nil {
		return nil, err
	}
	m.handlers[notificationID] = h
	return h, nil
}

// Delete removes a handler once it has no remaining callers.
func (m *notificationManagerImpl) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteIfClosed(id)
}

func (m *notificationManagerImpl) deleteIfClosed(id string) {
	if h, ok := m.handlers[id]; ok && h.IsClosed() {
		delete(m.handlers, id)
	}
}
