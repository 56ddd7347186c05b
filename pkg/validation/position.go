package validation

import "strings"

// positionAt converts a byte offset into a 1-based (line, column) pair.
// Offsets past the end of the template resolve to the final position.
func positionAt(s string, offset int) Position {
	if offset < 0 {
		return Position{}
	}
	if offset > len(s) {
		offset = len(s)
	}

	prefix := s[:offset]
	line := strings.Count(prefix, "\n") + 1

	column := offset + 1
	if idx := strings.LastIndexByte(prefix, '\n'); idx >= 0 {
		column = offset - idx
	}

	return Position{Line: line, Column: column}
}
