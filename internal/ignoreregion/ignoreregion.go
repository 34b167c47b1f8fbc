// Package ignoreregion precomputes which lines of a markup document are
// covered by an mlc-disable/mlc-enable directive, so extractors can consult
// a single predicate at emission time instead of embedding ignore parsing in
// their own state machines.
package ignoreregion

import "strings"

type ignoreState int

const (
	stateEnabled ignoreState = iota
	stateDisabled
)

// Regions holds the precomputed ignored lines and ranges for one document.
type Regions struct {
	lines  map[int]bool
	ranges [][2]int // inclusive [start, end]
}

// FromText scans text line by line for the four ignore directives
// (mlc-disable, mlc-enable, mlc-disable-line, mlc-disable-next-line) and
// builds the set of 1-indexed lines they cover. An unterminated
// mlc-disable extends to the end of the document.
func FromText(text string) *Regions {
	r := &Regions{lines: make(map[int]bool)}

	state := stateEnabled
	disableStart := 0

	lines := strings.Split(text, "\n")
	for idx, line := range lines {
		lineNum := idx + 1

		switch {
		case strings.Contains(line, "<!-- mlc-disable -->"):
			if state == stateEnabled {
				state = stateDisabled
				disableStart = lineNum
			}
		case strings.Contains(line, "<!-- mlc-enable -->"):
			if state == stateDisabled {
				r.ranges = append(r.ranges, [2]int{disableStart, lineNum})
				state = stateEnabled
			}
		}

		if strings.Contains(line, "<!-- mlc-disable-line -->") {
			r.lines[lineNum] = true
		}
		if strings.Contains(line, "<!-- mlc-disable-next-line -->") {
			r.lines[lineNum+1] = true
		}
	}

	if state == stateDisabled && len(lines) > 0 {
		r.ranges = append(r.ranges, [2]int{disableStart, len(lines) + 1})
	}

	return r
}

// IsLineIgnored reports whether the given 1-indexed line falls inside an
// ignored range or is individually marked ignored.
func (r *Regions) IsLineIgnored(line int) bool {
	if r.lines[line] {
		return true
	}
	for _, rng := range r.ranges {
		if line >= rng[0] && line <= rng[1] {
			return true
		}
	}
	return false
}
