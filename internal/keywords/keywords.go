// Package keywords holds the SQL keyword list and its minimal perfect hash
// lookup table.
package keywords

import (
	"fmt"
	"strings"
	"sync"

	"github.com/cybertec-postgresql/pgparse/internal/mphf"
)

// Keyword identifies a SQL keyword. The zero value is not a keyword.
type Keyword uint16

// Category is the grammatical category of a keyword. It decides where a
// keyword may be used as a name.
type Category uint8

const (
	Unreserved   Category = iota // usable as any name
	ColumnName                   // usable as a column name, not as a function or type name
	TypeFuncName                 // usable as a function or type name, not as a column name
	Reserved                     // never usable as a bare name
)

func (c Category) String() string {
	switch c {
	case Unreserved:
		return "UNRESERVED_KEYWORD"
	case ColumnName:
		return "COL_NAME_KEYWORD"
	case TypeFuncName:
		return "TYPE_FUNC_NAME_KEYWORD"
	case Reserved:
		return "RESERVED_KEYWORD"
	default:
		return fmt.Sprintf("Category(%d)", c)
	}
}

// Details describes one keyword.
type Details struct {
	Keyword  Keyword
	Text     string // lower case spelling
	Category Category
	// BareLabel is set when the keyword may be used as a column label
	// without AS.
	BareLabel bool
}

// MaxLength is the length of the longest keyword.
const MaxLength = len("current_timestamp")

var table = sync.OnceValue(func() *mphf.Map[Keyword] {
	entries := make([]mphf.Entry[Keyword], len(kwlist))
	for i, d := range kwlist {
		entries[i] = mphf.Entry[Keyword]{Key: d.Text, Value: d.Keyword}
	}
	m, err := mphf.Build(entries)
	if err != nil {
		panic(err)
	}
	return m
})

// Lookup returns the keyword spelled text. text must already be in lower
// case.
func Lookup(text string) (Keyword, bool) {
	if len(text) == 0 || len(text) > MaxLength {
		return noKeyword, false
	}
	return table().Get(text)
}

// LookupFold is Lookup with ASCII case folding. Other letters are left as
// they are, so no spelling with non-ASCII characters is a keyword.
func LookupFold(text string) (Keyword, bool) {
	if len(text) == 0 || len(text) > MaxLength {
		return noKeyword, false
	}
	return table().Get(ToLower(text))
}

// ToLower folds the ASCII letters of s to lower case, the way PostgreSQL
// downcases keywords and unquoted identifiers.
func ToLower(s string) string {
	for i := 0; i < len(s); i++ {
		if 'A' <= s[i] && s[i] <= 'Z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				if 'A' <= b[j] && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return s
}

// List returns the keyword list in alphabetical order.
func List() []Details {
	return kwlist[:]
}

// Details returns the description of k.
func (k Keyword) Details() Details {
	if k == noKeyword || int(k) > len(kwlist) {
		return Details{}
	}
	return kwlist[k-1]
}

// Text returns the lower case spelling of k.
func (k Keyword) Text() string { return k.Details().Text }

// Category returns the grammatical category of k.
func (k Keyword) Category() Category { return k.Details().Category }

// IsBareLabel reports whether k may be a column label without AS.
func (k Keyword) IsBareLabel() bool { return k.Details().BareLabel }

// Valid reports whether k is a keyword.
func (k Keyword) Valid() bool { return k != noKeyword && int(k) <= len(kwlist) }

func (k Keyword) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Keyword(%d)", k)
	}
	return strings.ToUpper(k.Text())
}
