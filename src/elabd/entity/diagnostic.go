package entity

import (
	"encoding/json"
	"fmt"
)

// Severity of a checker diagnostic.
type Severity string

const (
	// SeverityError marks a diagnostic that prevents the file from checking.
	SeverityError Severity = "error"
	// SeverityWarning marks a diagnostic that does not prevent checking.
	SeverityWarning Severity = "warning"
	// SeverityInfo marks informational output such as evaluation results.
	SeverityInfo Severity = "info"
)

// UnmarshalJSON accepts the known severities and rejects everything else.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch Severity(raw) {
	case SeverityError, SeverityWarning, SeverityInfo:
		*s = Severity(raw)
		return nil
	case "information":
		*s = SeverityInfo
		return nil
	default:
		return fmt.Errorf("unknown severity %q", raw)
	}
}

// Position in a checker source file. Lines are 1-based, columns 0-based.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Range between two positions in a checker source file.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Lines returns the line range covered by r.
func (r Range) Lines() LineRange {
	end := r.End.Line
	if end < r.Start.Line {
		end = r.Start.Line
	}
	return LineRange{Start: r.Start.Line, End: end}
}

// Diagnostic is a single message reported by the checker for a file.
type Diagnostic struct {
	File     string   `json:"file"`
	Range    Range    `json:"range"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Source   string   `json:"source,omitempty"`
}

// DiagnosticSnapshot is the complete set of diagnostics for one file at one ROI generation.
// It always replaces any earlier snapshot for the same file.
type DiagnosticSnapshot struct {
	WorkspaceRoot string
	File          string
	Generation    uint64
	Diagnostics   []Diagnostic
	// Unknown is set when results were discarded because the session is not healthy.
	// Consumers should clear their state rather than treat it as "no errors".
	Unknown bool
}
