package models

import "strings"

// PathSeparator joins traversal steps in query lookups.
const PathSeparator = "__"

// Path is a parsed field traversal, one field name per step.
type Path []string

// ParsePath splits a traversal on both "__" and "." separators. Empty steps are dropped.
func ParsePath(s string) Path {
	s = strings.ReplaceAll(s, PathSeparator, ".")
	parts := strings.Split(s, ".")
	out := make(Path, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// String joins the path back into lookup form.
func (p Path) String() string {
	return strings.Join(p, PathSeparator)
}
