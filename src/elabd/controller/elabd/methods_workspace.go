package elabd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/uber/elabd/src/elabd/controller/docsync"
	"github.com/uber/elabd/src/elabd/entity"
	elabderrors "github.com/uber/elabd/src/elabd/internal/errors"
	"github.com/uber/elabd/src/elabd/mapper"
	"go.lsp.dev/protocol"
)

// ExecuteCommand runs one of the elabd commands against the workspace of the calling editor.
func (c *controller) ExecuteCommand(ctx context.Context, params *protocol.ExecuteCommandParams) (any, error) {
	ws, _, err := c.workspaceFromContext(ctx)
	if err != nil {
		return nil, err
	}
	c.stats.Tagged(map[string]string{"command": params.Command}).Counter("commands").Inc(1)

	switch params.Command {
	case entity.CommandRestartServer:
		return nil, c.restartServer(ctx, ws)
	case entity.CommandBatchExecute:
		return c.batchExecute(ctx, ws, params)
	case entity.CommandSetROIMode:
		return nil, c.setROIMode(ws, params)
	}
	return nil, fmt.Errorf("unknown command %q", params.Command)
}

// restartServer replaces the checker of the workspace. An idle workspace is activated instead,
// so the command also recovers a crashed checker that was stopped for lack of documents.
func (c *controller) restartServer(ctx context.Context, ws *workspace) error {
	if ws.sync.State() == docsync.StateIdle {
		ws.sync.Activate(ctx)
		return nil
	}
	c.logger.Infow("restarting checker on request", "workspace", ws.root)
	if err := ws.session.Restart(ctx); err != nil {
		return fmt.Errorf("restarting checker: %w", err)
	}
	return nil
}

// batchExecute checks a whole document, or a selection of it, and returns the checker's answer.
func (c *controller) batchExecute(ctx context.Context, ws *workspace, params *protocol.ExecuteCommandParams) (any, error) {
	var args entity.BatchExecuteArgs
	if err := mapper.CommandArgument(params, 0, &args); err != nil {
		return nil, err
	}
	doc := protocol.TextDocumentIdentifier{URI: args.URI}
	item, err := ws.sync.GetTextDocument(doc)
	if err != nil {
		return nil, err
	}
	if !ws.sync.IsRelevant(doc) {
		return nil, &elabderrors.DocumentLanguageIDError{Document: item, ExpectedLanguageIDs: c.languages}
	}

	execute := entity.ExecuteParams{
		File:    mapper.URIToFile(item.URI),
		Content: item.Text,
	}
	if args.Selection != nil {
		lines := mapper.RangeToLineRange(*args.Selection)
		execute.Selection = &lines
	}

	var result json.RawMessage
	if err := ws.session.Do(ctx, entity.CheckerMethodExecute, execute, &result); err != nil {
		if elabderrors.IsSessionLost(err) {
			return nil, fmt.Errorf("checker is not available, try again once it is ready: %w", err)
		}
		return nil, err
	}
	return result, nil
}

func (c *controller) setROIMode(ws *workspace, params *protocol.ExecuteCommandParams) error {
	var args entity.SetROIModeArgs
	if err := mapper.CommandArgument(params, 0, &args); err != nil {
		return err
	}
	mode, err := entity.ParseROIMode(args.Mode)
	if err != nil {
		return err
	}
	ws.tracker.SetMode(mode)
	c.logger.Infow("roi mode changed", "workspace", ws.root, "mode", mode)
	return nil
}
