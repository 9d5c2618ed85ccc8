// Package ideclient sends outbound notifications to connected editors.
package ideclient

import (
	"context"
	"fmt"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/uber/elabd/src/elabd/mapper"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const _errSendToClient = "sending notification to IDE: %w"

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// Gateway is used to send outbound notifications to the IDE.
// All calls should include a context with a session UUID, which routes the notification to the correct IDE session.
type Gateway interface {
	// RegisterClient registers a new client. Should be called each time a new IDE connection is initialized.
	RegisterClient(ctx context.Context, id uuid.UUID, conn *jsonrpc2.Conn) error
	// DeregisterClient removes a client. Should be called each time an IDE connection is closed.
	DeregisterClient(ctx context.Context, id uuid.UUID) error

	// WorkDoneProgressCreate asks the IDE to create a progress indicator that later Progress calls report to.
	WorkDoneProgressCreate(ctx context.Context, params *protocol.WorkDoneProgressCreateParams) error
	Progress(ctx context.Context, params *protocol.ProgressParams) error
	LogMessage(ctx context.Context, params *protocol.LogMessageParams) error
	PublishDiagnostics(ctx context.Context, params *protocol.PublishDiagnosticsParams) error
	ShowMessage(ctx context.Context, params *protocol.ShowMessageParams) error
	// Notify sends a notification outside of the LSP client methods, such as the $/elabd/ extensions.
	Notify(ctx context.Context, method string, params any) error
}

type gateway struct {
	clients     map[uuid.UUID]protocol.Client
	connections map[uuid.UUID]jsonrpc2.Conn
	clientsMu   sync.Mutex
	logger      *zap.Logger
}

// New returns a Gateway for sending IDE notifications.
func New(logger *zap.Logger) Gateway {
	return &gateway{
		clients:     make(map[uuid.UUID]protocol.Client),
		connections: make(map[uuid.UUID]jsonrpc2.Conn),
		logger:      logger,
	}
}

func (g *gateway) RegisterClient(ctx context.Context, id uuid.UUID, conn *jsonrpc2.Conn) error {
	g.clientsMu.Lock()
	defer g.clientsMu.Unlock()

	g.clients[id] = protocol.ClientDispatcher(*conn, g.logger)
	g.connections[id] = *conn
	return nil
}

func (g *gateway) DeregisterClient(ctx context.Context, id uuid.UUID) error {
	g.clientsMu.Lock()
	defer g.clientsMu.Unlock()

	delete(g.clients, id)
	delete(g.connections, id)
	return nil
}

func (g *gateway) Progress(ctx context.Context, params *protocol.ProgressParams) error {
	c, _, err := g.getClient(ctx)
	if err != nil {
		return fmt.Errorf(_errSendToClient, err)
	}
	return c.Progress(ctx, params)
}

func (g *gateway) WorkDoneProgressCreate(ctx context.Context, params *protocol.WorkDoneProgressCreateParams) error {
	c, _, err := g.getClient(ctx)
	if err != nil {
		return fmt.Errorf(_errSendToClient, err)
	}
	return c.WorkDoneProgressCreate(ctx, params)
}

func (g *gateway) LogMessage(ctx context.Context, params *protocol.LogMessageParams) error {
	c, _, err := g.getClient(ctx)
	if err != nil {
		return fmt.Errorf(_errSendToClient, err)
	}
	return c.LogMessage(ctx, params)
}

func (g *gateway) PublishDiagnostics(ctx context.Context, params *protocol.PublishDiagnosticsParams) error {
	c, _, err := g.getClient(ctx)
	if err != nil {
		return fmt.Errorf(_errSendToClient, err)
	}
	return c.PublishDiagnostics(ctx, params)
}

func (g *gateway) ShowMessage(ctx context.Context, params *protocol.ShowMessageParams) error {
	c, _, err := g.getClient(ctx)
	if err != nil {
		return fmt.Errorf(_errSendToClient, err)
	}
	return c.ShowMessage(ctx, params)
}

func (g *gateway) Notify(ctx context.Context, method string, params any) error {
	_, conn, err := g.getClient(ctx)
	if err != nil {
		return fmt.Errorf(_errSendToClient, err)
	}
	if err := conn.Notify(ctx, method, params); err != nil {
		return fmt.Errorf(_errSendToClient, err)
	}
	return nil
}

func (g *gateway) getClient(ctx context.Context) (protocol.Client, jsonrpc2.Conn, error) {
	g.clientsMu.Lock()
	defer g.clientsMu.Unlock()

	id, err := mapper.ContextToSessionUUID(ctx)
	if err != nil {
		return nil, nil, err
	}

	client, ok := g.clients[id]
	if !ok {
		return nil, nil, fmt.Errorf("client with id %q not found", id)
	}
	conn, ok := g.connections[id]
	if !ok {
		return nil, nil, fmt.Errorf("client with id %q not found", id)
	}
	return client, conn, nil
}
