package buffer

import "fmt"

// Location is a byte range of the source text together with the 1-based
// line and column of its first byte. Columns count bytes, not characters,
// the same way PostgreSQL reports positions.
//
// A Location is only empty (Start == End) when it marks the end of input.
type Location struct {
	Start int
	End   int
	Line  int
	Col   int
}

// Len returns the number of bytes covered.
func (l Location) Len() int {
	return l.End - l.Start
}

// IsEmpty reports whether the location is a zero-length marker.
func (l Location) IsEmpty() bool {
	return l.Start >= l.End
}

// Extend returns a location starting at l and ending where other ends.
func (l Location) Extend(other Location) Location {
	if other.End > l.End {
		l.End = other.End
	}
	return l
}

// Text returns the part of source covered by the location.
// Out of range locations are clamped.
func (l Location) Text(source string) string {
	start, end := max(l.Start, 0), min(l.End, len(source))
	if start >= end {
		return ""
	}
	return source[start:end]
}

// Position returns the 1-based character position PostgreSQL reports in
// error messages.
func (l Location) Position() int {
	return l.Start + 1
}

func (l Location) String() string {
	return fmt.Sprintf("%d..%d (line %d, column %d)", l.Start, l.End, l.Line, l.Col)
}
