package elabd

import (
	"context"

	"github.com/uber/elabd/src/elabd/mapper"
	"go.lsp.dev/jsonrpc2"
)

func (r *jsonRPCRouter) ExecuteCommand(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	params, err := mapper.RequestToExecuteCommandParams(req)
	if err != nil {
		return reply(ctx, nil, err)
	}

	result, err := r.elabd.ExecuteCommand(ctx, params)
	return reply(ctx, result, err)
}
