package errors

import (
	"fmt"

	"go.lsp.dev/protocol"
)

// DocumentNotFoundError is returned for documents the editor has not opened, or has already closed.
type DocumentNotFoundError struct {
	Document protocol.TextDocumentIdentifier
}

func (n *DocumentNotFoundError) Error() string {
	return fmt.Sprintf("document %q is not open", n.Document.URI)
}

// DocumentLanguageIDError is returned when a command targets a document the checker does not handle.
type DocumentLanguageIDError struct {
	Document            protocol.TextDocumentItem
	ExpectedLanguageIDs []protocol.LanguageIdentifier
}

func (n *DocumentLanguageIDError) Error() string {
	return fmt.Sprintf("%q is not checked: language %q is not one of %q", n.Document.URI, n.Document.LanguageID, n.ExpectedLanguageIDs)
}
