package elabd

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/uber/elabd/src/elabd/entity"
	"github.com/uber/elabd/src/elabd/mapper"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

// Initialize records the workspace of a new connection and attaches it to that workspace's checker.
func (c *controller) Initialize(ctx context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	s, err := c.sessions.GetFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting session from context: %w", err)
	}

	s.InitializeParams = params
	s.ClientName = mapper.InitializeParamsToClientName(params)
	if s.WorkspaceRoot, err = mapper.InitializeParamsToWorkspaceRoot(params); err != nil {
		return nil, fmt.Errorf("getting workspace root: %w", err)
	}
	if err := c.sessions.Set(ctx, s); err != nil {
		return nil, fmt.Errorf("setting updated session state: %w", err)
	}

	c.join(ctx, s)
	c.logger.Infow("editor initialized", "session", s.UUID, "workspace", s.WorkspaceRoot, "client", s.ClientName)

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindIncremental,
			},
			ExecuteCommandProvider: &protocol.ExecuteCommandOptions{
				Commands: []string{entity.CommandRestartServer, entity.CommandBatchExecute, entity.CommandSetROIMode},
			},
		},
		ServerInfo: &protocol.ServerInfo{
			Name: "elabd",
		},
	}, nil
}

// Initialized catches a late-joining editor up with the results already known for its workspace.
func (c *controller) Initialized(ctx context.Context, params *protocol.InitializedParams) error {
	ws, id, err := c.workspaceFromContext(ctx)
	if err != nil {
		return err
	}
	if err := c.diagnostics.Replay(ctx, id, ws.broadcaster); err != nil {
		c.logger.Warnf("replaying results to session %s: %v", id, err)
	}
	return nil
}

// Shutdown releases the documents of the session. The checker stops if no other editor uses it.
func (c *controller) Shutdown(ctx context.Context) error {
	id, err := mapper.ContextToSessionUUID(ctx)
	if err != nil {
		return err
	}
	return c.leave(ctx, id)
}

// Exit will be used to either clean up from an individual connection, or shutdown the whole server.
func (c *controller) Exit(ctx context.Context) error {
	c.mu.Lock()
	full := c.fullShutdown
	c.mu.Unlock()
	if full {
		c.idleShutdown()
		return nil
	}

	s, err := c.sessions.GetFromContext(ctx)
	if err != nil {
		return fmt.Errorf("error during session exit: %w", err)
	}
	return c.EndSession(ctx, s.UUID)
}

// RequestFullShutdown will set the controller to treat subsequent Exit requests as requests to exit the entire process.
func (c *controller) RequestFullShutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fullShutdown = true
	return nil
}

// InitSession creates a new empty session and returns its UUID.
func (c *controller) InitSession(ctx context.Context, conn *jsonrpc2.Conn) (uuid.UUID, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, err
	}

	if err := c.ideGateway.RegisterClient(ctx, id, conn); err != nil {
		return uuid.Nil, err
	}
	if err := c.sessions.Set(ctx, mapper.UUIDToSession(id, conn)); err != nil {
		return uuid.Nil, err
	}
	if err := c.refreshIdleTimer(ctx); err != nil {
		c.logger.Warn(err)
	}
	return id, nil
}

// EndSession includes any cleanup at the end of the session, during or after the last JSON-RPC request.
// A closed connection counts as the workspace being closed for that editor.
func (c *controller) EndSession(ctx context.Context, id uuid.UUID) error {
	if err := c.leave(ctx, id); err != nil {
		c.logger.Error(err)
	}
	if err := c.ideGateway.DeregisterClient(ctx, id); err != nil {
		c.logger.Error(err)
	}

	err := c.sessions.Delete(ctx, id)
	if timerErr := c.refreshIdleTimer(ctx); timerErr != nil {
		c.logger.Warn(timerErr)
	}
	return err
}
