package elabd

import (
	"context"

	"github.com/uber/elabd/src/elabd/mapper"
	"go.lsp.dev/jsonrpc2"
)

func (r *jsonRPCRouter) DidOpen(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	params, err := mapper.RequestToDidOpenTextDocumentParams(req)
	if err != nil {
		return reply(ctx, nil, err)
	}

	err = r.elabd.DidOpen(ctx, params)
	return reply(ctx, nil, err)
}

func (r *jsonRPCRouter) DidChange(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	params, err := mapper.RequestToDidChangeTextDocumentParams(req)
	if err != nil {
		return reply(ctx, nil, err)
	}

	err = r.elabd.DidChange(ctx, params)
	return reply(ctx, nil, err)
}

func (r *jsonRPCRouter) DidClose(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	params, err := mapper.RequestToDidCloseTextDocumentParams(req)
	if err != nil {
		return reply(ctx, nil, err)
	}

	err = r.elabd.DidClose(ctx, params)
	return reply(ctx, nil, err)
}

// ViewportChanged receives the visible ranges of a document.
func (r *jsonRPCRouter) ViewportChanged(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	params, err := mapper.RequestToViewportChangedParams(req)
	if err != nil {
		return reply(ctx, nil, err)
	}

	err = r.elabd.ViewportChanged(ctx, params)
	return reply(ctx, nil, err)
}

// CursorMoved receives the cursor position within a document.
func (r *jsonRPCRouter) CursorMoved(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	params, err := mapper.RequestToCursorMovedParams(req)
	if err != nil {
		return reply(ctx, nil, err)
	}

	err = r.elabd.CursorMoved(ctx, params)
	return reply(ctx, nil, err)
}
