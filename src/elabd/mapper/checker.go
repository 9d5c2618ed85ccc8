package mapper

import (
	"encoding/json"
	"strings"

	"github.com/uber/elabd/src/elabd/entity"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// URIToFile returns the file system path the checker uses for a document.
// Documents that are not files, such as unsaved buffers, keep their URI as name.
func URIToFile(u protocol.DocumentURI) string {
	if !strings.HasPrefix(string(u), uri.FileScheme+"://") {
		return string(u)
	}
	return uri.URI(u).Filename()
}

// FileToURI returns the document URI of a checker file path.
func FileToURI(file string) protocol.DocumentURI {
	return protocol.DocumentURI(uri.File(file))
}

// DocumentToSyncFileParams builds the sync-file notification for a document.
func DocumentToSyncFileParams(doc protocol.TextDocumentItem) entity.SyncFileParams {
	return entity.SyncFileParams{
		File:    URIToFile(doc.URI),
		Content: doc.Text,
		Version: doc.Version,
	}
}

// RangeToLineRange converts a 0-based LSP range to 1-based checker lines.
// A range ending at character 0 of a later line does not include that line.
func RangeToLineRange(r protocol.Range) entity.LineRange {
	start := int(r.Start.Line) + 1
	end := int(r.End.Line) + 1
	if r.End.Character == 0 && r.End.Line > r.Start.Line {
		end--
	}
	if end < start {
		end = start
	}
	return entity.LineRange{Start: start, End: end}
}

// RangesToLineRanges converts every range with RangeToLineRange.
func RangesToLineRanges(ranges []protocol.Range) []entity.LineRange {
	lines := make([]entity.LineRange, 0, len(ranges))
	for _, r := range ranges {
		lines = append(lines, RangeToLineRange(r))
	}
	return lines
}

// PositionToLine converts a 0-based LSP position to a 1-based checker line.
func PositionToLine(p protocol.Position) int {
	return int(p.Line) + 1
}

// EntityRangeToRange converts a checker range to an LSP range.
func EntityRangeToRange(r entity.Range) protocol.Range {
	return PositionsToRange(entityPosition(r.Start), entityPosition(r.End))
}

func entityPosition(p entity.Position) protocol.Position {
	return protocol.Position{
		Line:      uint32(max(p.Line-1, 0)),
		Character: uint32(max(p.Column, 0)),
	}
}

// SeverityToDiagnosticSeverity converts a checker severity to its LSP equivalent.
func SeverityToDiagnosticSeverity(s entity.Severity) protocol.DiagnosticSeverity {
	switch s {
	case entity.SeverityError:
		return protocol.DiagnosticSeverityError
	case entity.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	default:
		return protocol.DiagnosticSeverityInformation
	}
}

// DiagnosticToProtocol converts a checker diagnostic to an LSP diagnostic.
func DiagnosticToProtocol(d entity.Diagnostic) protocol.Diagnostic {
	return protocol.Diagnostic{
		Range:    EntityRangeToRange(d.Range),
		Severity: SeverityToDiagnosticSeverity(d.Severity),
		Source:   d.Source,
		Message:  d.Message,
	}
}

// DiagnosticSnapshotToPublishParams converts a snapshot to a publishDiagnostics notification.
// Unknown snapshots clear the document.
func DiagnosticSnapshotToPublishParams(snap entity.DiagnosticSnapshot) *protocol.PublishDiagnosticsParams {
	diagnostics := make([]protocol.Diagnostic, 0, len(snap.Diagnostics))
	for _, d := range snap.Diagnostics {
		diagnostics = append(diagnostics, DiagnosticToProtocol(d))
	}
	return &protocol.PublishDiagnosticsParams{
		URI:         FileToURI(snap.File),
		Diagnostics: diagnostics,
	}
}

// TaskSnapshotToParams converts a snapshot to a tasksUpdated notification.
func TaskSnapshotToParams(snap entity.TaskSnapshot) *entity.TasksUpdatedParams {
	tasks := make([]entity.EditorTask, 0, len(snap.Tasks))
	for _, t := range snap.Tasks {
		tasks = append(tasks, entity.EditorTask{
			Range:    EntityRangeToRange(t.Range),
			Status:   t.Status,
			Messages: t.Messages,
		})
	}
	return &entity.TasksUpdatedParams{
		URI:        FileToURI(snap.File),
		Generation: snap.Generation,
		Tasks:      tasks,
		Unknown:    snap.Unknown,
	}
}

// StateEventToParams converts a session state change to a sessionStateChanged notification.
func StateEventToParams(ev entity.StateEvent) *entity.SessionStateChangedParams {
	params := &entity.SessionStateChangedParams{
		State:   ev.State,
		Attempt: ev.Attempt,
	}
	if ev.Err != nil {
		params.Error = ev.Err.Error()
	}
	if ev.NextRetry > 0 {
		params.NextRetry = ev.NextRetry.String()
	}
	return params
}

// CheckerNotificationToLogParams decodes a log notification from the checker.
func CheckerNotificationToLogParams(n entity.CheckerNotification) (entity.LogParams, error) {
	var params entity.LogParams
	if err := json.Unmarshal(n.Params, &params); err != nil {
		return entity.LogParams{}, wrapErrParse(err)
	}
	return params, nil
}
