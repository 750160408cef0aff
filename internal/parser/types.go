package parser

import (
	"fmt"

	"github.com/cybertec-postgresql/pgparse/internal/ast"
	"github.com/cybertec-postgresql/pgparse/internal/buffer"
	"github.com/cybertec-postgresql/pgparse/internal/discovery"
	perrors "github.com/cybertec-postgresql/pgparse/internal/errors"
)

// Result is a successfully parsed script
type Result struct {
	Statements []ast.Stmt
	Warnings   []perrors.Warning
}

// ParsedSQL represents a successfully parsed SQL file
type ParsedSQL struct {
	File   *discovery.DiscoveredFile
	Source string // decoded file content
	*Result
}

// Statement represents a single SQL statement with location information
type Statement struct {
	RawSQL    string        // Original SQL text, without the terminating semicolon
	Start     int           // byte offset of the first token
	End       int           // byte offset after the last token
	StartLine int           // 1-indexed line number
	StartCol  int           // 1-indexed column of the first token
	EndLine   int           // 1-indexed line number
	Type      StatementType // Statement classification
}

// Rebase converts a location inside RawSQL into a location inside the
// script the statement was split from.
func (s *Statement) Rebase(loc buffer.Location) buffer.Location {
	out := buffer.Location{
		Start: s.Start + loc.Start,
		End:   s.Start + loc.End,
		Line:  s.StartLine + loc.Line - 1,
		Col:   loc.Col,
	}
	if loc.Line == 1 {
		out.Col = s.StartCol + loc.Col - 1
	}
	return out
}

// StatementType classifies SQL statements
type StatementType int

const (
	StmtUnknown     StatementType = iota
	StmtTransaction               // BEGIN, COMMIT, SAVEPOINT, ...
	StmtSelect                    // SELECT
	StmtUtility                   // CHECKPOINT, LISTEN, SET, SHOW, ...
	StmtOther                     // Any other statement
)

// String returns a string representation of StatementType
func (st StatementType) String() string {
	switch st {
	case StmtTransaction:
		return "transaction"
	case StmtSelect:
		return "select"
	case StmtUtility:
		return "utility"
	case StmtOther:
		return "other"
	default:
		return "unknown"
	}
}

// Supported reports whether the grammar covers statements of this type.
func (st StatementType) Supported() bool {
	return st == StmtTransaction || st == StmtSelect || st == StmtUtility
}

// ParseStatementType is the inverse of StatementType.String.
func ParseStatementType(name string) (StatementType, error) {
	for st := StmtTransaction; st <= StmtOther; st++ {
		if st.String() == name {
			return st, nil
		}
	}
	return StmtUnknown, fmt.Errorf("unknown statement type %q", name)
}
