package entity

import "go.lsp.dev/protocol"

// Methods and commands elabd adds to LSP.
const (
	// MethodViewportChanged is sent by the editor when the visible ranges of a document change.
	MethodViewportChanged = "$/elabd/viewportChanged"
	// MethodCursorMoved is sent by the editor when the cursor moves within a document.
	MethodCursorMoved = "$/elabd/cursorMoved"
	// MethodTasksUpdated is sent to editors with the task list of a document.
	MethodTasksUpdated = "$/elabd/tasksUpdated"
	// MethodSessionStateChanged is sent to editors when the checker session changes state.
	MethodSessionStateChanged = "$/elabd/sessionStateChanged"

	// CommandRestartServer restarts the checker of the workspace.
	CommandRestartServer = "elabd.restartServer"
	// CommandBatchExecute runs the checker over a document to completion.
	CommandBatchExecute = "elabd.batchExecute"
	// CommandSetROIMode switches the region of interest mode of the workspace.
	CommandSetROIMode = "elabd.setRoiMode"
)

// ViewportChangedParams are sent with MethodViewportChanged.
type ViewportChangedParams struct {
	TextDocument protocol.TextDocumentIdentifier `json:"textDocument"`
	Ranges       []protocol.Range                `json:"ranges"`
}

// CursorMovedParams are sent with MethodCursorMoved.
type CursorMovedParams struct {
	TextDocument protocol.TextDocumentIdentifier `json:"textDocument"`
	Position     protocol.Position               `json:"position"`
}

// TasksUpdatedParams are sent with MethodTasksUpdated.
type TasksUpdatedParams struct {
	URI        protocol.DocumentURI `json:"uri"`
	Generation uint64               `json:"generation"`
	Tasks      []EditorTask         `json:"tasks"`
	// Unknown tells the editor to clear decorations rather than show an empty list.
	Unknown bool `json:"unknown,omitempty"`
}

// EditorTask is a Task expressed in LSP coordinates.
type EditorTask struct {
	Range    protocol.Range `json:"range"`
	Status   TaskStatus     `json:"status"`
	Messages []string       `json:"messages,omitempty"`
}

// SessionStateChangedParams are sent with MethodSessionStateChanged.
type SessionStateChangedParams struct {
	State     SessionState `json:"state"`
	Error     string       `json:"error,omitempty"`
	Attempt   int          `json:"attempt,omitempty"`
	NextRetry string       `json:"nextRetry,omitempty"`
}

// BatchExecuteArgs are the arguments of CommandBatchExecute.
type BatchExecuteArgs struct {
	URI       protocol.DocumentURI `json:"uri"`
	Selection *protocol.Range      `json:"selection,omitempty"`
}

// SetROIModeArgs are the arguments of CommandSetROIMode.
type SetROIModeArgs struct {
	Mode string `json:"mode"`
}
