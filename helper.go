// File: alteon/helper.go
package alteon

import "strings"

// normalizeLine collapses interior whitespace runs to single spaces and
// trims both ends. Applied to command lines only, never to captured
// payload text.
func normalizeLine(line string) string {
	return strings.Join(strings.Fields(line), " ")
}

// splitPath breaks an absolute command path into its segments.
func splitPath(path string) []string {
	return strings.Split(strings.TrimPrefix(path, "/"), "/")
}

// isValidSegment checks if a single path segment can stand on its own:
// non-empty, no whitespace, no embedded slash.
func isValidSegment(s string) bool {
	if len(s) == 0 {
		return false
	}
	return !strings.ContainsAny(s, "/ \t")
}

// validPath reports whether path is a well-formed absolute command path.
func validPath(path string) bool {
	if !strings.HasPrefix(path, "/") || len(path) < 2 {
		return false
	}
	for _, seg := range splitPath(path) {
		if !isValidSegment(seg) {
			return false
		}
	}
	return true
}

// isNumeric reports whether s consists solely of ASCII digits.
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
