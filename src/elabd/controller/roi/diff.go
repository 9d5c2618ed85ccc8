package roi

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/uber/elabd/src/elabd/entity"
)

// lineEdit describes how a full-text change affected the lines of a file.
type lineEdit struct {
	// changed holds the lines of the new text that were inserted or modified, plus the line
	// where a deletion happened.
	changed []entity.LineRange
	// lineMap maps a line of the old text (1-based, index 0 unused) to its line in the new text.
	lineMap []int
}

// diffLines compares two versions of a document line by line.
func diffLines(oldText, newText string) lineEdit {
	dmp := diffmatchpatch.New()
	oldChars, newChars, lines := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(oldChars, newChars, false), lines)

	edit := lineEdit{lineMap: make([]int, 1, countLines(oldText)+1)}
	lastLine := max(countLines(newText), 1)
	newLine := 1
	for _, d := range diffs {
		n := countLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			for i := 0; i < n; i++ {
				edit.lineMap = append(edit.lineMap, newLine+i)
			}
			newLine += n
		case diffmatchpatch.DiffDelete:
			// Deleted lines collapse onto the line that now sits where they were.
			at := min(newLine, lastLine)
			for i := 0; i < n; i++ {
				edit.lineMap = append(edit.lineMap, at)
			}
			edit.changed = append(edit.changed, entity.LineRange{Start: at, End: at})
		case diffmatchpatch.DiffInsert:
			edit.changed = append(edit.changed, entity.LineRange{Start: newLine, End: newLine + n - 1})
			newLine += n
		}
	}
	edit.changed = entity.NormalizeRanges(edit.changed)
	return edit
}

// shift moves ranges expressed in old-text lines to the new text.
func (e lineEdit) shift(ranges []entity.LineRange) []entity.LineRange {
	result := make([]entity.LineRange, 0, len(ranges))
	for _, r := range ranges {
		result = append(result, entity.LineRange{Start: e.mapLine(r.Start), End: e.mapLine(r.End)})
	}
	return entity.NormalizeRanges(result)
}

func (e lineEdit) mapLine(line int) int {
	if line < len(e.lineMap) {
		return e.lineMap[line]
	}
	// Past the end of the old text: keep the distance to the last known line.
	last := len(e.lineMap) - 1
	if last == 0 {
		return line
	}
	return e.lineMap[last] + line - last
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
