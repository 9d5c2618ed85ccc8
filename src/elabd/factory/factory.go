package factory

import (
	"encoding/json"

	"github.com/gofrs/uuid"
	"github.com/uber/elabd/src/elabd/entity"
	"go.lsp.dev/jsonrpc2"
)

// UUID is a user-defined factory for a random uuid.UUID.
func UUID() uuid.UUID {
	return uuid.Must(uuid.NewV4())
}

// JSONRPCRequest is a user-defined factory for a JSON-RPC request containing the specified method and parameters.
func JSONRPCRequest(method string, params interface{}) jsonrpc2.Request {
	req, _ := jsonrpc2.NewCall(jsonrpc2.NewNumberID(5), method, params)
	return req
}

// JSONRPCNotification is a factory for a JSON-RPC notification containing the specified method and parameters.
func JSONRPCNotification(method string, params interface{}) jsonrpc2.Request {
	req, _ := jsonrpc2.NewNotification(method, params)
	return req
}

// CheckerNotification is a factory for a notification received from the checker of the given workspace.
func CheckerNotification(workspaceRoot string, method string, params interface{}) entity.CheckerNotification {
	raw, _ := json.Marshal(params)
	return entity.CheckerNotification{
		WorkspaceRoot: workspaceRoot,
		Method:        method,
		Params:        raw,
	}
}
