// Package protocol converts between LSP positions and byte offsets.
package protocol

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"go.lsp.dev/protocol"
)

// TextOffsetMapper converts LSP (UTF-16) positions within a fixed text to byte offsets.
type TextOffsetMapper struct {
	content   []byte
	lineStart []int
}

// NewTextOffsetMapper creates a mapper over content.
func NewTextOffsetMapper(content []byte) *TextOffsetMapper {
	lineStart := make([]int, 1, bytes.Count(content, []byte("\n"))+1)
	for offset, b := range content {
		if b == '\n' {
			lineStart = append(lineStart, offset+1)
		}
	}
	return &TextOffsetMapper{content: content, lineStart: lineStart}
}

// LineCount is the number of lines of the text. A trailing newline starts an empty last line.
func (m *TextOffsetMapper) LineCount() int {
	return len(m.lineStart)
}

// PositionOffset converts p to a byte offset.
// A position on the line after the last one, at character 0, is the end of the text.
func (m *TextOffsetMapper) PositionOffset(p protocol.Position) (int, error) {
	line := int(p.Line)
	switch {
	case line > len(m.lineStart):
		return 0, fmt.Errorf("line %d out of range 0-%d", p.Line, len(m.lineStart))
	case line == len(m.lineStart):
		if p.Character == 0 {
			return len(m.content), nil
		}
		return 0, fmt.Errorf("character %d is beyond end of file", p.Character)
	}

	offset := m.lineStart[line]
	rest := m.content[offset:]
	for col16 := 0; col16 < int(p.Character); col16++ {
		r, size := utf8.DecodeRune(rest)
		switch {
		case size == 0:
			return 0, fmt.Errorf("character %d is beyond end of file", p.Character)
		case r == '\n':
			return 0, fmt.Errorf("character %d is beyond end of line %d", p.Character, p.Line)
		case size == 1 && r == utf8.RuneError:
			return 0, fmt.Errorf("invalid UTF-8 on line %d", p.Line)
		}
		if r >= 0x10000 {
			// Surrogate pair.
			col16++
			if col16 == int(p.Character) {
				break
			}
		}
		rest = rest[size:]
		offset += size
	}
	return offset, nil
}
