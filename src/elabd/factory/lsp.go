package factory

import (
	"math/rand"

	"github.com/uber/elabd/src/elabd/entity"
	"go.lsp.dev/protocol"
)

// Range returns a random protocol.Range.
func Range() protocol.Range {
	start := protocol.Position{Line: uint32(rand.Intn(100)), Character: uint32(rand.Intn(100))}
	end := protocol.Position{Line: start.Line + uint32(rand.Intn(100)), Character: uint32(rand.Intn(100))}

	if start.Line == end.Line && start.Character > end.Character {
		end.Character = start.Character + uint32(rand.Intn(100))
	}

	return protocol.Range{
		Start: start,
		End:   end,
	}
}

// Diagnostic returns a diagnostic on the given 1-based line.
func Diagnostic(file string, line int, severity entity.Severity, message string) entity.Diagnostic {
	return entity.Diagnostic{
		File: file,
		Range: entity.Range{
			Start: entity.Position{Line: line, Column: 0},
			End:   entity.Position{Line: line, Column: 1},
		},
		Severity: severity,
		Message:  message,
		Source:   "checker",
	}
}
