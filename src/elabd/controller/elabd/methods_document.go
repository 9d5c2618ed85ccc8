package elabd

import (
	"context"

	"github.com/uber/elabd/src/elabd/entity"
	"go.lsp.dev/protocol"
)

// DidOpen hands the document to the workspace's sync controller and counts it against the editor.
func (c *controller) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	ws, id, err := c.workspaceFromContext(ctx)
	if err != nil {
		return err
	}
	if err := ws.sync.DidOpen(ctx, params.TextDocument); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if docs, ok := ws.editors[id]; ok {
		docs[params.TextDocument.URI]++
	}
	return nil
}

// DidChange applies an edit to a document.
func (c *controller) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	ws, _, err := c.workspaceFromContext(ctx)
	if err != nil {
		return err
	}
	return ws.sync.DidChange(ctx, params)
}

// DidClose releases the editor's hold on a document. Its results are cleared once no editor has it open.
func (c *controller) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	ws, id, err := c.workspaceFromContext(ctx)
	if err != nil {
		return err
	}
	if err := ws.sync.DidClose(ctx, params.TextDocument); err != nil {
		return err
	}

	c.mu.Lock()
	if docs, ok := ws.editors[id]; ok {
		if docs[params.TextDocument.URI] <= 1 {
			delete(docs, params.TextDocument.URI)
		} else {
			docs[params.TextDocument.URI]--
		}
	}
	c.mu.Unlock()

	c.forgetIfClosed(ws, params.TextDocument)
	return nil
}

// ViewportChanged updates the visible lines of a document.
func (c *controller) ViewportChanged(ctx context.Context, params *entity.ViewportChangedParams) error {
	ws, _, err := c.workspaceFromContext(ctx)
	if err != nil {
		return err
	}
	return ws.sync.ViewportChanged(ctx, params)
}

// CursorMoved updates the cursor line of a document.
func (c *controller) CursorMoved(ctx context.Context, params *entity.CursorMovedParams) error {
	ws, _, err := c.workspaceFromContext(ctx)
	if err != nil {
		return err
	}
	return ws.sync.CursorMoved(ctx, params)
}
