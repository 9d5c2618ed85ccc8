package elabd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber/elabd/src/elabd/entity"
	"github.com/uber/elabd/src/elabd/factory"
	elabderrors "github.com/uber/elabd/src/elabd/internal/errors"
	"go.lsp.dev/protocol"
	"go.uber.org/mock/gomock"
)

const _docURI protocol.DocumentURI = "file:///ws/Main.lean"

func leanDocument() protocol.TextDocumentItem {
	return protocol.TextDocumentItem{URI: _docURI, LanguageID: "lean", Version: 1, Text: "theorem t : True := trivial\n"}
}

func TestDocumentsRouted(t *testing.T) {
	h := newHarness(t, "idleTimeout: 0s\n")
	m := h.expectWorkspace()
	ctx, id := h.initialize()
	doc := protocol.TextDocumentIdentifier{URI: _docURI}

	m.sync.EXPECT().DidOpen(ctx, leanDocument()).Return(nil)
	require.NoError(t, h.c.DidOpen(ctx, &protocol.DidOpenTextDocumentParams{TextDocument: leanDocument()}))
	assert.Equal(t, 1, h.c.workspaces[_root].editors[id][_docURI])

	r := factory.Range()
	change := &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{TextDocumentIdentifier: doc, Version: 2},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{
			{Range: &r, Text: "x"},
		},
	}
	m.sync.EXPECT().DidChange(ctx, change).Return(nil)
	require.NoError(t, h.c.DidChange(ctx, change))

	viewport := &entity.ViewportChangedParams{TextDocument: doc}
	m.sync.EXPECT().ViewportChanged(ctx, viewport).Return(nil)
	require.NoError(t, h.c.ViewportChanged(ctx, viewport))

	cursor := &entity.CursorMovedParams{TextDocument: doc}
	m.sync.EXPECT().CursorMoved(ctx, cursor).Return(nil)
	require.NoError(t, h.c.CursorMoved(ctx, cursor))

	m.sync.EXPECT().DidClose(ctx, doc).Return(nil)
	m.sync.EXPECT().GetTextDocument(doc).Return(protocol.TextDocumentItem{}, &elabderrors.DocumentNotFoundError{Document: doc})
	m.broadcaster.EXPECT().Forget("/ws/Main.lean")
	require.NoError(t, h.c.DidClose(ctx, &protocol.DidCloseTextDocumentParams{TextDocument: doc}))
	assert.NotContains(t, h.c.workspaces[_root].editors[id], _docURI)
}

func TestDidOpenFailureNotCounted(t *testing.T) {
	h := newHarness(t, "idleTimeout: 0s\n")
	m := h.expectWorkspace()
	ctx, id := h.initialize()

	m.sync.EXPECT().DidOpen(ctx, leanDocument()).Return(errors.New("bad document"))
	assert.Error(t, h.c.DidOpen(ctx, &protocol.DidOpenTextDocumentParams{TextDocument: leanDocument()}))
	assert.Empty(t, h.c.workspaces[_root].editors[id])
}

func TestDidCloseKeepsResultsOpenElsewhere(t *testing.T) {
	h := newHarness(t, "idleTimeout: 0s\n")
	m := h.expectWorkspace()
	first, _ := h.initialize()
	second, _ := h.initialize()
	doc := protocol.TextDocumentIdentifier{URI: _docURI}

	m.sync.EXPECT().DidOpen(gomock.Any(), leanDocument()).Return(nil).Times(2)
	require.NoError(t, h.c.DidOpen(first, &protocol.DidOpenTextDocumentParams{TextDocument: leanDocument()}))
	require.NoError(t, h.c.DidOpen(second, &protocol.DidOpenTextDocumentParams{TextDocument: leanDocument()}))

	// Still open in the second editor, so nothing is forgotten.
	m.sync.EXPECT().DidClose(first, doc).Return(nil)
	m.sync.EXPECT().GetTextDocument(doc).Return(leanDocument(), nil)
	require.NoError(t, h.c.DidClose(first, &protocol.DidCloseTextDocumentParams{TextDocument: doc}))
}

func TestDocumentFromUnknownEditor(t *testing.T) {
	h := newHarness(t, "idleTimeout: 0s\n")
	id := factory.UUID()
	ctx := context.WithValue(context.Background(), entity.SessionContextKey, id)
	h.sessions.EXPECT().Get(gomock.Any(), id).Return(nil, &elabderrors.UUIDNotFoundError{UUID: id})

	err := h.c.DidOpen(ctx, &protocol.DidOpenTextDocumentParams{TextDocument: leanDocument()})
	var notFound *elabderrors.UUIDNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestEndSessionClosesEditorDocuments(t *testing.T) {
	h := newHarness(t, "idleTimeout: 0s\n")
	m := h.expectWorkspace()
	first, firstID := h.initialize()
	h.initialize()
	doc := protocol.TextDocumentIdentifier{URI: _docURI}

	m.sync.EXPECT().DidOpen(first, leanDocument()).Return(nil).Times(2)
	require.NoError(t, h.c.DidOpen(first, &protocol.DidOpenTextDocumentParams{TextDocument: leanDocument()}))
	require.NoError(t, h.c.DidOpen(first, &protocol.DidOpenTextDocumentParams{TextDocument: leanDocument()}))

	// Each open is released and the workspace stays up for the second editor.
	m.sync.EXPECT().DidClose(gomock.Any(), doc).Return(nil).Times(2)
	m.sync.EXPECT().GetTextDocument(doc).Return(protocol.TextDocumentItem{}, &elabderrors.DocumentNotFoundError{Document: doc})
	m.broadcaster.EXPECT().Forget("/ws/Main.lean")
	h.expectEnd(firstID)
	require.NoError(t, h.c.EndSession(context.Background(), firstID))

	require.Contains(t, h.c.workspaces, _root)
	assert.Len(t, h.c.workspaces[_root].editors, 1)
	assert.Zero(t, m.detached)
}
