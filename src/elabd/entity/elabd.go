// Package entity contains the domain logic for the elabd service.
package entity

import (
	"github.com/gofrs/uuid"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

type keyType string

// SessionContextKey indicates the key to be used to identify the editor session UUID in the context.
const SessionContextKey keyType = "SessionUUID"

// Session entity representing a single editor connection.
type Session struct {
	UUID             uuid.UUID                  `json:"uuid" zap:"uuid"`
	InitializeParams *protocol.InitializeParams `json:"-" zap:"-"`
	Conn             *jsonrpc2.Conn             `json:"-" zap:"-"`
	WorkspaceRoot    string                     `json:"workspaceRoot" zap:"workspaceRoot"`
	ClientName       ClientName                 `json:"clientName" zap:"clientName"`
}

// ClientName identifies the name that the will be set in the initialization parameters for a given client.
type ClientName string

const (
	// ClientNameVSCode is the name of the VSCode client.
	ClientNameVSCode ClientName = "Visual Studio Code"
	// ClientNameCursor is the name of the Cursor client.
	ClientNameCursor ClientName = "Cursor"
)

// IsVSCodeBased returns true if the client is a VS Code based client.
func (c ClientName) IsVSCodeBased() bool {
	return c == ClientNameVSCode || c == ClientNameCursor
}
