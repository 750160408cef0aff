package parser

import (
	"errors"
	"fmt"

	"github.com/cybertec-postgresql/pgparse/internal/ast"
	pc "github.com/cybertec-postgresql/pgparse/internal/combinator"
	"github.com/cybertec-postgresql/pgparse/internal/discovery"
	perrors "github.com/cybertec-postgresql/pgparse/internal/errors"
	"github.com/cybertec-postgresql/pgparse/internal/grammar"
	"github.com/cybertec-postgresql/pgparse/internal/stream"
)

// Parse parses a complete script. A failed parse returns the single
// *errors.Error that stopped it and no statements.
func Parse(source string, cfg stream.Config) (*Result, error) {
	stmts, warnings, err := pc.Parse(source, cfg, grammar.StmtMulti())
	if err != nil {
		return nil, err
	}
	return &Result{Statements: stmts, Warnings: warnings}, nil
}

// ParseFile reads and parses a discovered file
func ParseFile(file *discovery.DiscoveredFile, cfg stream.Config) (*ParsedSQL, error) {
	source, err := discovery.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	result, err := Parse(source, cfg)
	if err != nil {
		var pe *perrors.Error
		if errors.As(err, &pe) {
			return nil, perrors.NewParseError(file.Path, source, pe)
		}
		return nil, err
	}

	return &ParsedSQL{
		File:   file,
		Source: source,
		Result: result,
	}, nil
}

// ParseStatement parses one statement produced by SplitStatements. The
// locations of the error and the warnings refer to the whole script.
func ParseStatement(stmt *Statement, cfg stream.Config) (ast.Stmt, []perrors.Warning, *perrors.Error) {
	s := stream.New(stmt.RawSQL, cfg)
	node, err := pc.Run(s, grammar.Stmt())

	warnings := s.Warnings()
	for i := range warnings {
		warnings[i].Location = stmt.Rebase(warnings[i].Location)
	}
	if err != nil {
		return nil, warnings, err.At(stmt.Rebase(err.Location))
	}
	return node, warnings, nil
}

// Tokens scans source completely and returns the decoded tokens
func Tokens(source string, cfg stream.Config) ([]*stream.Token, []perrors.Warning, error) {
	s := stream.New(source, cfg)
	var tokens []*stream.Token
	for {
		r := s.Peek()
		switch {
		case r.IsEof():
			return tokens, s.Warnings(), nil
		case r.IsFatal():
			return tokens, s.Warnings(), r.Err
		}
		tokens = append(tokens, r.Value)
		s.Next()
	}
}
