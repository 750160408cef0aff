package parser

import (
	"github.com/cybertec-postgresql/pgparse/internal/keywords"
	"github.com/cybertec-postgresql/pgparse/internal/lexer"
	"github.com/cybertec-postgresql/pgparse/internal/stream"
)

// SplitStatements splits a script at its top-level semicolons. Semicolons
// inside literals, quoted identifiers and comments are tokens of their own
// kind, so only real statement terminators split. Empty statements are
// dropped. A lexical error stops the split; the statements before it are
// returned with the error.
func SplitStatements(source string, cfg stream.Config) ([]*Statement, error) {
	lex := lexer.New(source, cfg.StandardConformingStrings)

	var statements []*Statement
	var group []lexer.Token
	flush := func() {
		if len(group) > 0 {
			statements = append(statements, newStatement(source, group))
			group = nil
		}
	}

	for {
		tok, err := lex.Next()
		if err != nil {
			return statements, err
		}
		switch {
		case tok.Kind == lexer.EOF:
			flush()
			return statements, nil
		case tok.IsOperator(lexer.Semicolon):
			flush()
		default:
			group = append(group, tok)
		}
	}
}

func newStatement(source string, tokens []lexer.Token) *Statement {
	first, last := tokens[0].Loc, tokens[len(tokens)-1].Loc
	raw := source[first.Start:last.End]
	return &Statement{
		RawSQL:    raw,
		Start:     first.Start,
		End:       last.End,
		StartLine: first.Line,
		StartCol:  first.Col,
		EndLine:   first.Line + countLineBreaks(raw),
		Type:      classifyTokens(tokens),
	}
}

// countLineBreaks counts LF, CRLF and lone CR line endings
func countLineBreaks(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\n':
			n++
		case '\r':
			if i+1 >= len(s) || s[i+1] != '\n' {
				n++
			}
		}
	}
	return n
}

// classifyTokens determines the statement type from its leading keyword.
func classifyTokens(tokens []lexer.Token) StatementType {
	if len(tokens) == 0 {
		return StmtUnknown
	}
	if tokens[0].Kind != lexer.Keyword {
		return StmtOther
	}

	switch tokens[0].Keyword {
	case keywords.Begin, keywords.Start, keywords.Commit, keywords.End, keywords.Rollback,
		keywords.Abort, keywords.Savepoint, keywords.Release:
		return StmtTransaction
	case keywords.Prepare:
		// PREPARE name AS ... is a prepared statement, not two-phase commit
		if len(tokens) > 1 && tokens[1].IsKeyword(keywords.Transaction) {
			return StmtTransaction
		}
		return StmtOther
	case keywords.Select:
		return StmtSelect
	case keywords.Checkpoint, keywords.Discard, keywords.Listen, keywords.Unlisten, keywords.Notify,
		keywords.Load, keywords.Show, keywords.Set, keywords.Reset:
		return StmtUtility
	default:
		return StmtOther
	}
}

// StatementAtLine returns the statement that contains the given line number
func StatementAtLine(statements []*Statement, lineNum int) *Statement {
	for _, stmt := range statements {
		if lineNum >= stmt.StartLine && lineNum <= stmt.EndLine {
			return stmt
		}
	}
	return nil
}

// StatementsByType returns all statements of a given type
func StatementsByType(statements []*Statement, stmtType StatementType) []*Statement {
	var filtered []*Statement
	for _, stmt := range statements {
		if stmt.Type == stmtType {
			filtered = append(filtered, stmt)
		}
	}
	return filtered
}
