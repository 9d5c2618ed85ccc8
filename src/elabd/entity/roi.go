package entity

import (
	"fmt"
	"slices"
)

// LineRange is an inclusive range of 1-based source lines.
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Valid reports whether the range describes at least one line.
func (r LineRange) Valid() bool {
	return r.Start >= 1 && r.End >= r.Start
}

// Contains reports whether line falls within the range.
func (r LineRange) Contains(line int) bool {
	return line >= r.Start && line <= r.End
}

// String implements fmt.Stringer.
func (r LineRange) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("L%d", r.Start)
	}
	return fmt.Sprintf("L%d-L%d", r.Start, r.End)
}

// NormalizeRanges sorts ranges and merges overlapping or adjacent ones, dropping invalid entries.
// The result is an ordered set of non-overlapping, non-adjacent ranges.
func NormalizeRanges(ranges []LineRange) []LineRange {
	valid := make([]LineRange, 0, len(ranges))
	for _, r := range ranges {
		if r.Valid() {
			valid = append(valid, r)
		}
	}
	if len(valid) == 0 {
		return nil
	}

	slices.SortFunc(valid, func(a, b LineRange) int {
		if a.Start != b.Start {
			return a.Start - b.Start
		}
		return a.End - b.End
	})

	merged := []LineRange{valid[0]}
	for _, r := range valid[1:] {
		last := &merged[len(merged)-1]
		if r.Start <= last.End+1 {
			last.End = max(last.End, r.End)
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// ROIMode selects how viewport and edit signals are turned into a region of interest.
type ROIMode string

const (
	// ROIModeVisible checks the visible ranges and any edited ranges.
	ROIModeVisible ROIMode = "visible"
	// ROIModeLinesAndAbove checks everything from the top of the file to the last visible or edited line.
	ROIModeLinesAndAbove ROIMode = "linesAndAbove"
	// ROIModeOpenFiles checks every open file in full.
	ROIModeOpenFiles ROIMode = "openFiles"
	// ROIModeNothing asks the checker to do no work.
	ROIModeNothing ROIMode = "nothing"
)

// ParseROIMode validates a mode name.
func ParseROIMode(s string) (ROIMode, error) {
	switch m := ROIMode(s); m {
	case ROIModeVisible, ROIModeLinesAndAbove, ROIModeOpenFiles, ROIModeNothing:
		return m, nil
	default:
		return "", fmt.Errorf("unknown ROI mode %q", s)
	}
}

// RegionOfInterest is the set of lines of one open file that the checker should elaborate.
type RegionOfInterest struct {
	File       string      `json:"file"`
	Generation uint64      `json:"generation"`
	FullFile   bool        `json:"fullFile,omitempty"`
	Ranges     []LineRange `json:"ranges"`
}

// SameScope reports whether two regions cover the same lines, ignoring generation.
func (r RegionOfInterest) SameScope(other RegionOfInterest) bool {
	return r.File == other.File && r.FullFile == other.FullFile && slices.Equal(r.Ranges, other.Ranges)
}
