// Package notifier shows long running workspace operations as work done progress in every connected editor.
package notifier

import (
	"context"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/uber/elabd/src/elabd/entity"
	"github.com/uber/elabd/src/elabd/factory"
	ideclient "github.com/uber/elabd/src/elabd/gateway/ide-client"
	"github.com/uber/elabd/src/elabd/repository/session"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"
)

// NotificationHandler manages a single progress notification shared by the editors of a workspace.
// Editors that connect after the notification began receive it on the next Report.
type NotificationHandler interface {
	// Report replaces the message shown under the notification title.
	Report(ctx context.Context, message string)
	// Add registers another caller. It returns false if the handler is already closed.
	Add() bool
	// Done removes one caller. The notification ends when the last caller is done.
	Done(ctx context.Context)
	IsClosed() bool
}

type notificationHandlerImpl struct {
	parentManager NotificationManager

	sessions   session.Repository
	ideGateway ideclient.Gateway
	logger     *zap.SugaredLogger

	workspaceRoot string
	title         string
	id            string
	token         *protocol.ProgressToken

	mu          sync.Mutex
	senderCount int
	begun       map[uuid.UUID]struct{}
}

type notificationHandlerParams struct {
	ParentManager NotificationManager
	Sessions      session.Repository
	IdeGateway    ideclient.Gateway
	Logger        *zap.SugaredLogger
	WorkspaceRoot string
	Title         string
}

// NewNotificationHandler creates a handler with one caller and begins the notification in every editor of the workspace.
func NewNotificationHandler(ctx context.Context, p notificationHandlerParams, notificationID string) (NotificationHandler, error) {
	h := &notificationHandlerImpl{
		parentManager: p.ParentManager,
		sessions:      p.Sessions,
		ideGateway:    p.IdeGateway,
		logger:        p.Logger,
		workspaceRoot: p.WorkspaceRoot,
		title:         p.Title,
		id:            notificationID,
		token:         protocol.NewProgressToken(factory.UUID().String()),
		senderCount:   1,
		begun:         make(map[uuid.UUID]struct{}),
	}

	sessions, err := h.sessions.GetAllFromWorkspaceRoot(ctx, h.workspaceRoot)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range sessions {
		h.beginLocked(ctx, s.UUID)
	}
	return h, nil
}

func (h *notificationHandlerImpl) IsClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.senderCount <= 0
}

func (h *notificationHandlerImpl) Add() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.senderCount <= 0 {
		return false
	}
	h.senderCount++
	return true
}

func (h *notificationHandlerImpl) Report(ctx context.Context, message string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.senderCount <= 0 {
		return
	}
	sessions, err := h.sessions.GetAllFromWorkspaceRoot(ctx, h.workspaceRoot)
	if err != nil {
		h.logger.Errorf("posting progress update: %s", err)
		return
	}
	for _, s := range sessions {
		if _, ok := h.begun[s.UUID]; !ok && !h.beginLocked(ctx, s.UUID) {
			continue
		}
		if err := h.updateNotification(ctx, s.UUID, message); err != nil {
			h.logger.Errorf("updating progress for session %s: %s", s.UUID, err)
		}
	}
}

func (h *notificationHandlerImpl) Done(ctx context.Context) {
	h.mu.Lock()
	h.senderCount--
	if h.senderCount < 0 {
		h.logger.Warnf("Done() called %v extra times on notification handler %s", -h.senderCount, h.id)
		h.mu.Unlock()
		return
	}
	if h.senderCount > 0 {
		h.mu.Unlock()
		return
	}

	for id := range h.begun {
		if err := h.endNotification(ctx, id); err != nil {
			h.logger.Errorf("ending progress for session %s: %s", id, err)
		}
		delete(h.begun, id)
	}
	h.mu.Unlock()

	h.parentManager.Delete(h.id)
}

// beginLocked creates the progress token in the editor and begins the notification. It reports whether it succeeded.
func (h *notificationHandlerImpl) beginLocked(ctx context.Context, id uuid.UUID) bool {
	if err := h.initNotification(ctx, id); err != nil {
		h.logger.Errorf("beginning progress for session %s: %s", id, err)
		return false
	}
	h.begun[id] = struct{}{}
	return true
}

// The methods below provide simple wrappers for IDE Gateway calls.

func (h *notificationHandlerImpl) initNotification(ctx context.Context, id uuid.UUID) error {
	sCtx := context.WithValue(ctx, entity.SessionContextKey, id)
	err := h.ideGateway.WorkDoneProgressCreate(sCtx, &protocol.WorkDoneProgressCreateParams{
		Token: *h.token,
	})
	if err != nil {
		return err
	}

	return h.ideGateway.Progress(sCtx, &protocol.ProgressParams{
		Token: *h.token,
		Value: &protocol.WorkDoneProgressBegin{
			Kind:  protocol.WorkDoneProgressKindBegin,
			Title: h.title,
		},
	})
}

func (h *notificationHandlerImpl) updateNotification(ctx context.Context, id uuid.UUID, message string) error {
	sCtx := context.WithValue(ctx, entity.SessionContextKey, id)
	return h.ideGateway.Progress(sCtx, &protocol.ProgressParams{
		Token: *h.token,
		Value: &protocol.WorkDoneProgressReport{
			Kind:    protocol.WorkDoneProgressKindReport,
			Message: message,
		},
	})
}

func (h *notificationHandlerImpl) endNotification(ctx context.Context, id uuid.UUID) error {
	sCtx := context.WithValue(ctx, entity.SessionContextKey, id)
	return h.ideGateway.Progress(sCtx, &protocol.ProgressParams{
		Token: *h.token,
		Value: &protocol.WorkDoneProgressEnd{
			Kind: protocol.WorkDoneProgressKindEnd,
		},
	})
}
