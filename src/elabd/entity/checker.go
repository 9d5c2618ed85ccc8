package entity

import "encoding/json"

// Methods spoken between elabd and the checker process.
const (
	// CheckerMethodInitialize is the handshake request sent after spawning the checker.
	CheckerMethodInitialize = "initialize"
	// CheckerMethodSyncFile pushes the full content of an open file.
	CheckerMethodSyncFile = "sync-file"
	// CheckerMethodSyncROI pushes the region of interest of an open file.
	CheckerMethodSyncROI = "sync-roi"
	// CheckerMethodExecute runs the checker over a file to completion.
	CheckerMethodExecute = "execute"

	// CheckerMethodTaskProgress is sent by the checker when its task list for a file changes.
	CheckerMethodTaskProgress = "task-progress"
	// CheckerMethodDiagnostics is sent by the checker with the full diagnostic set for a file.
	CheckerMethodDiagnostics = "diagnostics"
	// CheckerMethodLog is sent by the checker for free-form log output.
	CheckerMethodLog = "log"
)

// InitializeParams are sent with the handshake request.
type InitializeParams struct {
	WorkspaceRoot string `json:"workspaceRoot"`
	ClientName    string `json:"clientName"`
}

// InitializeResult is returned by the checker when the handshake succeeds.
type InitializeResult struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// SyncFileParams carry the full content of a file.
type SyncFileParams struct {
	File    string `json:"file"`
	Content string `json:"content"`
	Version int32  `json:"version"`
}

// SyncROIParams carry a region of interest for a file.
// Closed tells the checker the file is no longer of interest and its resources can be released.
type SyncROIParams struct {
	File       string      `json:"file"`
	Generation uint64      `json:"generation"`
	FullFile   bool        `json:"fullFile,omitempty"`
	Ranges     []LineRange `json:"ranges"`
	Closed     bool        `json:"closed,omitempty"`
}

// ExecuteParams request a one-off run of the checker on a file.
type ExecuteParams struct {
	File      string     `json:"file"`
	Content   string     `json:"content,omitempty"`
	Selection *LineRange `json:"selection,omitempty"`
}

// TaskProgressParams are reported by the checker.
type TaskProgressParams struct {
	File       string `json:"file"`
	Generation uint64 `json:"generation"`
	Tasks      []Task `json:"tasks"`
}

// DiagnosticsParams are reported by the checker.
type DiagnosticsParams struct {
	File        string       `json:"file"`
	Generation  uint64       `json:"generation"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// LogParams are reported by the checker.
type LogParams struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// CheckerNotification is a notification received from the checker, with its params left undecoded.
type CheckerNotification struct {
	WorkspaceRoot string
	Method        string
	Params        json.RawMessage
}
