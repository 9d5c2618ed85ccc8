// Package mapper converts between editor (LSP), entity and model representations.
package mapper

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/uber/elabd/src/elabd/entity"
	protocolmapper "github.com/uber/elabd/src/elabd/internal/protocol"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

// RequestToInitializeParams maps the parameters from a jsonrpc2.Request into protocol.InitializeParams.
func RequestToInitializeParams(req jsonrpc2.Request) (*protocol.InitializeParams, error) {
	params := protocol.InitializeParams{}
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, wrapErrParse(err)
	}
	return &params, nil
}

// RequestToInitializedParams maps the parameters from a jsonrpc2.Request into protocol.InitializedParams.
func RequestToInitializedParams(req jsonrpc2.Request) (*protocol.InitializedParams, error) {
	params := protocol.InitializedParams{}
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, wrapErrParse(err)
	}
	return &params, nil
}

// RequestToDidOpenTextDocumentParams maps the parameters from a jsonrpc2.Request into protocol.DidOpenTextDocumentParams.
func RequestToDidOpenTextDocumentParams(req jsonrpc2.Request) (*protocol.DidOpenTextDocumentParams, error) {
	params := protocol.DidOpenTextDocumentParams{}
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, wrapErrParse(err)
	}
	return &params, nil
}

// RequestToDidChangeTextDocumentParams maps the parameters from a jsonrpc2.Request into protocol.DidChangeTextDocumentParams.
func RequestToDidChangeTextDocumentParams(req jsonrpc2.Request) (*protocol.DidChangeTextDocumentParams, error) {
	params := protocol.DidChangeTextDocumentParams{}
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, wrapErrParse(err)
	}
	return &params, nil
}

// RequestToDidCloseTextDocumentParams maps the parameters from a jsonrpc2.Request into protocol.DidCloseTextDocumentParams.
func RequestToDidCloseTextDocumentParams(req jsonrpc2.Request) (*protocol.DidCloseTextDocumentParams, error) {
	params := protocol.DidCloseTextDocumentParams{}
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, wrapErrParse(err)
	}
	return &params, nil
}

// RequestToViewportChangedParams maps the parameters from a jsonrpc2.Request into entity.ViewportChangedParams.
func RequestToViewportChangedParams(req jsonrpc2.Request) (*entity.ViewportChangedParams, error) {
	params := entity.ViewportChangedParams{}
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, wrapErrParse(err)
	}
	return &params, nil
}

// RequestToCursorMovedParams maps the parameters from a jsonrpc2.Request into entity.CursorMovedParams.
func RequestToCursorMovedParams(req jsonrpc2.Request) (*entity.CursorMovedParams, error) {
	params := entity.CursorMovedParams{}
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, wrapErrParse(err)
	}
	return &params, nil
}

// RequestToExecuteCommandParams maps the parameters from a jsonrpc2.Request into protocol.ExecuteCommandParams.
// Arguments are kept as json.RawMessage so that each command decodes its own.
func RequestToExecuteCommandParams(req jsonrpc2.Request) (*protocol.ExecuteCommandParams, error) {
	params := protocol.ExecuteCommandParams{}
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, wrapErrParse(err)
	}

	rawArgs := []interface{}{}
	for _, arg := range params.Arguments {
		rawArg, err := json.Marshal(arg)
		if err != nil {
			return nil, wrapErrParse(err)
		}
		rawArgs = append(rawArgs, json.RawMessage(rawArg))
	}

	params.Arguments = rawArgs
	return &params, nil
}

// CommandArgument decodes the index-th argument of an executeCommand request into v.
func CommandArgument(params *protocol.ExecuteCommandParams, index int, v any) error {
	if index >= len(params.Arguments) {
		return fmt.Errorf("command %q: missing argument %d", params.Command, index)
	}
	raw, ok := params.Arguments[index].(json.RawMessage)
	if !ok {
		var err error
		if raw, err = json.Marshal(params.Arguments[index]); err != nil {
			return fmt.Errorf("command %q: argument %d: %w", params.Command, index, err)
		}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("command %q: argument %d: %w", params.Command, index, err)
	}
	return nil
}

// ApplyContentChanges applies the given content change events to a given text string.
// A change without a range replaces the whole text.
func ApplyContentChanges(initialText string, changes []protocol.TextDocumentContentChangeEvent) (string, error) {
	content := []byte(initialText)
	for _, change := range changes {
		if change.Range == nil {
			content = []byte(change.Text)
			continue
		}
		m := protocolmapper.NewTextOffsetMapper(content)
		start, err := m.PositionOffset(change.Range.Start)
		if err != nil {
			return "", fmt.Errorf("unable to apply changes: %w", err)
		}
		end, err := m.PositionOffset(change.Range.End)
		if err != nil {
			return "", fmt.Errorf("unable to apply changes: %w", err)
		}
		if end < start {
			return "", fmt.Errorf("unable to apply changes: range end %v is before start %v", change.Range.End, change.Range.Start)
		}
		var buf bytes.Buffer
		buf.Write(content[:start])
		buf.WriteString(change.Text)
		buf.Write(content[end:])
		content = buf.Bytes()
	}

	return string(content), nil
}

// InitializeParamsToWorkspaceRoot returns the directory an editor connection works in:
// the first workspace folder, else the root URI, else the root path.
func InitializeParamsToWorkspaceRoot(params *protocol.InitializeParams) (string, error) {
	var root string
	switch {
	case len(params.WorkspaceFolders) > 0:
		root = params.WorkspaceFolders[0].URI
	case params.RootURI != "":
		root = string(params.RootURI)
	case params.RootPath != "":
		return filepath.Clean(params.RootPath), nil
	default:
		return "", errors.New("no workspace folder or root given")
	}
	if !strings.HasPrefix(root, "file://") {
		return "", fmt.Errorf("workspace root %q is not a file URI", root)
	}
	return URIToFile(protocol.DocumentURI(root)), nil
}

// InitializeParamsToClientName returns the name the editor reported for itself.
func InitializeParamsToClientName(params *protocol.InitializeParams) entity.ClientName {
	if params.ClientInfo == nil {
		return ""
	}
	return entity.ClientName(params.ClientInfo.Name)
}

// LogParamsToLogMessage converts a checker log line to a window/logMessage notification.
func LogParamsToLogMessage(params entity.LogParams) *protocol.LogMessageParams {
	t := protocol.MessageTypeLog
	switch params.Level {
	case "error":
		t = protocol.MessageTypeError
	case "warning", "warn":
		t = protocol.MessageTypeWarning
	case "info":
		t = protocol.MessageTypeInfo
	}
	return &protocol.LogMessageParams{Type: t, Message: "[checker] " + params.Message}
}

// PositionsToRange converts two positions into a range.
func PositionsToRange(start, end protocol.Position) protocol.Range {
	return protocol.Range{
		Start: start,
		End:   end,
	}
}

func wrapErrParse(err error) error {
	return fmt.Errorf("%s: %w", jsonrpc2.ErrParse, err)
}
