package mapper

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber/elabd/src/elabd/entity"
	"github.com/uber/elabd/src/elabd/factory"
	"go.lsp.dev/protocol"
)

func TestFileURIMapping(t *testing.T) {
	u := FileToURI("/ws/src/Main.lean")
	assert.Equal(t, protocol.DocumentURI("file:///ws/src/Main.lean"), u)
	assert.Equal(t, "/ws/src/Main.lean", URIToFile(u))
	assert.Equal(t, "untitled:Untitled-1", URIToFile("untitled:Untitled-1"))
}

func TestDocumentToSyncFileParams(t *testing.T) {
	params := DocumentToSyncFileParams(protocol.TextDocumentItem{URI: "file:///ws/a.lean", Version: 7, Text: "x"})
	assert.Equal(t, entity.SyncFileParams{File: "/ws/a.lean", Content: "x", Version: 7}, params)
}

func TestRangeToLineRange(t *testing.T) {
	tests := []struct {
		name string
		in   protocol.Range
		want entity.LineRange
	}{
		{
			name: "single line",
			in:   protocol.Range{Start: protocol.Position{Line: 0, Character: 3}, End: protocol.Position{Line: 0, Character: 9}},
			want: entity.LineRange{Start: 1, End: 1},
		},
		{
			name: "ends at start of next line",
			in:   protocol.Range{Start: protocol.Position{Line: 4}, End: protocol.Position{Line: 10}},
			want: entity.LineRange{Start: 5, End: 10},
		},
		{
			name: "ends mid line",
			in:   protocol.Range{Start: protocol.Position{Line: 4}, End: protocol.Position{Line: 10, Character: 1}},
			want: entity.LineRange{Start: 5, End: 11},
		},
		{
			name: "inverted",
			in:   protocol.Range{Start: protocol.Position{Line: 8}, End: protocol.Position{Line: 2, Character: 1}},
			want: entity.LineRange{Start: 9, End: 9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RangeToLineRange(tt.in))
		})
	}

	assert.Empty(t, RangesToLineRanges(nil))
	assert.Len(t, RangesToLineRanges([]protocol.Range{factory.Range(), factory.Range()}), 2)
	assert.Equal(t, 13, PositionToLine(protocol.Position{Line: 12}))
}

func TestDiagnosticSnapshotToPublishParams(t *testing.T) {
	snap := entity.DiagnosticSnapshot{
		WorkspaceRoot: "/ws",
		File:          "/ws/a.lean",
		Generation:    2,
		Diagnostics: []entity.Diagnostic{
			factory.Diagnostic("/ws/a.lean", 3, entity.SeverityError, "type mismatch"),
			factory.Diagnostic("/ws/a.lean", 1, entity.SeverityWarning, "unused variable"),
			factory.Diagnostic("/ws/a.lean", 0, entity.SeverityInfo, "#eval 2"),
		},
	}

	params := DiagnosticSnapshotToPublishParams(snap)
	assert.Equal(t, protocol.DocumentURI("file:///ws/a.lean"), params.URI)
	require.Len(t, params.Diagnostics, 3)

	assert.Equal(t, protocol.DiagnosticSeverityError, params.Diagnostics[0].Severity)
	assert.Equal(t, protocol.Range{Start: protocol.Position{Line: 2}, End: protocol.Position{Line: 2, Character: 1}}, params.Diagnostics[0].Range)
	assert.Equal(t, "type mismatch", params.Diagnostics[0].Message)
	assert.Equal(t, "checker", params.Diagnostics[0].Source)
	assert.Equal(t, protocol.DiagnosticSeverityWarning, params.Diagnostics[1].Severity)
	assert.Equal(t, protocol.DiagnosticSeverityInformation, params.Diagnostics[2].Severity)
	assert.Equal(t, uint32(0), params.Diagnostics[2].Range.Start.Line)

	cleared := DiagnosticSnapshotToPublishParams(entity.DiagnosticSnapshot{File: "/ws/a.lean", Unknown: true})
	assert.NotNil(t, cleared.Diagnostics)
	assert.Empty(t, cleared.Diagnostics)
}

func TestTaskSnapshotToParams(t *testing.T) {
	snap := entity.TaskSnapshot{
		File:       "/ws/a.lean",
		Generation: 5,
		Tasks: []entity.Task{{
			Range:    entity.Range{Start: entity.Position{Line: 2}, End: entity.Position{Line: 4, Column: 2}},
			Status:   entity.TaskStatusProcessing,
			Messages: []string{"elaborating"},
		}},
	}

	params := TaskSnapshotToParams(snap)
	assert.Equal(t, protocol.DocumentURI("file:///ws/a.lean"), params.URI)
	assert.Equal(t, uint64(5), params.Generation)
	assert.False(t, params.Unknown)
	require.Len(t, params.Tasks, 1)
	assert.Equal(t, protocol.Range{Start: protocol.Position{Line: 1}, End: protocol.Position{Line: 3, Character: 2}}, params.Tasks[0].Range)
	assert.Equal(t, entity.TaskStatusProcessing, params.Tasks[0].Status)

	assert.True(t, TaskSnapshotToParams(entity.TaskSnapshot{File: "/ws/a.lean", Unknown: true}).Unknown)
}

func TestStateEventToParams(t *testing.T) {
	params := StateEventToParams(entity.StateEvent{
		State:     entity.SessionStateRestarting,
		Err:       errors.New("exit status 137"),
		Attempt:   2,
		NextRetry: time.Second,
	})
	assert.Equal(t, &entity.SessionStateChangedParams{
		State:     entity.SessionStateRestarting,
		Error:     "exit status 137",
		Attempt:   2,
		NextRetry: "1s",
	}, params)

	assert.Equal(t, &entity.SessionStateChangedParams{State: entity.SessionStateReady}, StateEventToParams(entity.StateEvent{State: entity.SessionStateReady}))
}

func TestCheckerNotificationToLogParams(t *testing.T) {
	params, err := CheckerNotificationToLogParams(factory.CheckerNotification("/ws", entity.CheckerMethodLog, entity.LogParams{Level: "info", Message: "ready"}))
	require.NoError(t, err)
	assert.Equal(t, entity.LogParams{Level: "info", Message: "ready"}, params)

	_, err = CheckerNotificationToLogParams(entity.CheckerNotification{Method: entity.CheckerMethodLog, Params: json.RawMessage(`[1]`)})
	assert.Error(t, err)
}
