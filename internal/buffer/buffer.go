// Package buffer implements the byte cursor the scanner and the string
// decoders read from.
//
// A Buffer remembers where every line it has consumed starts, so any byte
// offset that has already been read can be turned into a (line, column)
// pair with a binary search.
package buffer

import (
	"errors"
	"slices"
	"strings"
)

// Buffer is a cursor over an immutable source string.
type Buffer struct {
	src   string
	pos   int
	lines []int // offsets of line starts, sorted and unique
}

// New returns a buffer positioned at the first byte of src.
func New(src string) *Buffer {
	return &Buffer{src: src, lines: []int{0}}
}

// Source returns the complete text the buffer was created with.
func (b *Buffer) Source() string { return b.src }

// Len returns the length of the source in bytes.
func (b *Buffer) Len() int { return len(b.src) }

// Index returns the offset of the next byte to be consumed.
func (b *Buffer) Index() int { return b.pos }

// EOF reports whether every byte has been consumed.
func (b *Buffer) EOF() bool { return b.pos >= len(b.src) }

// Seek moves the cursor to index, clamped to [0, Len()].
func (b *Buffer) Seek(index int) {
	b.pos = min(max(index, 0), len(b.src))
}

// PushBack un-reads the last consumed byte. Recorded line starts are kept:
// the bytes they were derived from do not change.
func (b *Buffer) PushBack() {
	if b.pos > 0 {
		b.pos--
	}
}

// Peek returns the next byte without consuming it.
func (b *Buffer) Peek() (byte, bool) {
	return b.PeekAt(0)
}

// PeekAt returns the byte n positions after the cursor.
func (b *Buffer) PeekAt(n int) (byte, bool) {
	i := b.pos + n
	if i < 0 || i >= len(b.src) {
		return 0, false
	}
	return b.src[i], true
}

// ConsumeOne consumes and returns the next byte.
//
// Line starts are recorded here: "\n" starts a new line after it, and so
// does a "\r" that is not part of a "\r\n" pair. A "\r\n" pair therefore
// starts exactly one line.
func (b *Buffer) ConsumeOne() (byte, bool) {
	if b.pos >= len(b.src) {
		return 0, false
	}
	c := b.src[b.pos]
	switch c {
	case '\n':
		b.addLine(b.pos + 1)
	case '\r':
		if next, ok := b.PeekAt(1); !ok || next != '\n' {
			b.addLine(b.pos + 1)
		}
	}
	b.pos++
	return c, true
}

// ConsumeIf consumes the next byte when pred accepts it.
func (b *Buffer) ConsumeIf(pred func(byte) bool) (byte, bool) {
	c, ok := b.Peek()
	if !ok || !pred(c) {
		return 0, false
	}
	return b.ConsumeOne()
}

// ConsumeByte consumes the next byte when it equals c.
func (b *Buffer) ConsumeByte(c byte) bool {
	if next, ok := b.Peek(); ok && next == c {
		b.ConsumeOne()
		return true
	}
	return false
}

// ConsumeWhile consumes bytes as long as pred accepts them and returns how
// many were consumed.
func (b *Buffer) ConsumeWhile(pred func(byte) bool) int {
	n := 0
	for {
		if _, ok := b.ConsumeIf(pred); !ok {
			return n
		}
		n++
	}
}

// ConsumeString consumes lit when the remaining input starts with it.
func (b *Buffer) ConsumeString(lit string) bool {
	if !strings.HasPrefix(b.Remainder(), lit) {
		return false
	}
	b.Advance(len(lit))
	return true
}

// ConsumeStringFold is ConsumeString with ASCII case folding.
func (b *Buffer) ConsumeStringFold(lit string) bool {
	rest := b.Remainder()
	if len(rest) < len(lit) || !strings.EqualFold(rest[:len(lit)], lit) {
		return false
	}
	b.Advance(len(lit))
	return true
}

// Advance consumes n bytes, recording line starts on the way.
func (b *Buffer) Advance(n int) {
	for range n {
		b.ConsumeOne()
	}
}

// Remainder returns the unconsumed part of the source.
func (b *Buffer) Remainder() string { return b.src[b.pos:] }

// Slice returns the source from start up to the cursor.
func (b *Buffer) Slice(start int) string {
	start = min(max(start, 0), b.pos)
	return b.src[start:b.pos]
}

func (b *Buffer) addLine(start int) {
	n := len(b.lines)
	if b.lines[n-1] < start {
		b.lines = append(b.lines, start)
		return
	}
	i, found := slices.BinarySearch(b.lines, start)
	if !found {
		b.lines = slices.Insert(b.lines, i, start)
	}
}

// Position returns the 1-based line and byte column of index. Only line
// breaks that have already been consumed are known.
func (b *Buffer) Position(index int) (line, col int) {
	index = max(index, 0)
	i, found := slices.BinarySearch(b.lines, index)
	if found {
		return i + 1, 1
	}
	return i, index - b.lines[i-1] + 1
}

// Offset is the inverse of Position. It returns -1 for a line that has not
// been seen.
func (b *Buffer) Offset(line, col int) int {
	if line < 1 || line > len(b.lines) || col < 1 {
		return -1
	}
	return b.lines[line-1] + col - 1
}

// Lines returns the number of lines seen so far.
func (b *Buffer) Lines() int { return len(b.lines) }

// Location returns the location of the range [start, end).
func (b *Buffer) Location(start, end int) Location {
	line, col := b.Position(start)
	return Location{Start: start, End: end, Line: line, Col: col}
}

// LocationFrom returns the location of everything consumed since start.
func (b *Buffer) LocationFrom(start int) Location {
	return b.Location(start, b.pos)
}

// CurrentLocation returns a zero-length location at the cursor.
func (b *Buffer) CurrentLocation() Location {
	return b.Location(b.pos, b.pos)
}

// UnicodeKind classifies a code point read from an escape sequence.
type UnicodeKind uint8

const (
	Scalar         UnicodeKind = iota // a valid Unicode scalar value
	LeadSurrogate                     // U+D800..U+DBFF
	TrailSurrogate                    // U+DC00..U+DFFF
)

// UnicodeChar is a code point read by ConsumeUnicodeChar.
type UnicodeChar struct {
	Kind  UnicodeKind
	Value rune
}

var (
	// ErrEscapeTooShort is returned when fewer hex digits than required follow an escape.
	ErrEscapeTooShort = errors.New("unicode escape too short")
	// ErrInvalidCodePoint is returned for zero or out of range code points.
	ErrInvalidCodePoint = errors.New("invalid unicode code point")
)

// ConsumeUnicodeChar reads exactly n hexadecimal digits and interprets them
// as a code point.
func (b *Buffer) ConsumeUnicodeChar(n int) (UnicodeChar, error) {
	var v rune
	for range n {
		c, ok := b.ConsumeIf(IsHexDigit)
		if !ok {
			return UnicodeChar{}, ErrEscapeTooShort
		}
		v = v<<4 | rune(HexValue(c))
	}
	switch {
	case v == 0 || v > 0x10FFFF:
		return UnicodeChar{}, ErrInvalidCodePoint
	case v >= 0xD800 && v <= 0xDBFF:
		return UnicodeChar{Kind: LeadSurrogate, Value: v}, nil
	case v >= 0xDC00 && v <= 0xDFFF:
		return UnicodeChar{Kind: TrailSurrogate, Value: v}, nil
	}
	return UnicodeChar{Kind: Scalar, Value: v}, nil
}

// IsHexDigit reports whether c is an ASCII hexadecimal digit.
func IsHexDigit(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

// HexValue returns the value of a hexadecimal digit.
func HexValue(c byte) byte {
	switch {
	case c >= 'a':
		return c - 'a' + 10
	case c >= 'A':
		return c - 'A' + 10
	}
	return c - '0'
}
