package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/cybertec-postgresql/pgparse/internal/discovery"
	perrors "github.com/cybertec-postgresql/pgparse/internal/errors"
	"github.com/cybertec-postgresql/pgparse/internal/logger"
	"github.com/cybertec-postgresql/pgparse/internal/parser"
)

// readSource reads path, or standard input when path is "-"
func readSource(config *Config, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read standard input: %w", err)
		}
		return string(data), nil
	}
	return discovery.ReadFile(&discovery.DiscoveredFile{
		Path:         path,
		RelativePath: filepath.Base(path),
		Encoding:     config.Encoding,
	})
}

// Tokens prints every token of a file with its location, kind and value
func Tokens(w io.Writer, config *Config, path string) error {
	parserCfg, err := ParserConfig(config)
	if err != nil {
		return err
	}
	source, err := readSource(config, path)
	if err != nil {
		return err
	}

	tokens, warnings, err := parser.Tokens(source, parserCfg)

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "POSITION\tKIND\tVALUE\tTEXT")
	for _, tok := range tokens {
		fmt.Fprintf(tw, "%d:%d\t%s\t%s\t%q\n", tok.Loc.Line, tok.Loc.Col, tok.Kind, tok, tok.Loc.Text(source))
	}
	if ferr := tw.Flush(); ferr != nil {
		return ferr
	}

	for _, warn := range warnings {
		logger.Warn("%s:%s", path, warn)
	}
	return locate(path, source, err)
}

// Split prints the statements of a file. typeName restricts the output to
// one statement type when not empty.
func Split(w io.Writer, config *Config, path string, typeName string) error {
	parserCfg, err := ParserConfig(config)
	if err != nil {
		return err
	}

	filter := parser.StmtUnknown
	if typeName != "" {
		if filter, err = parser.ParseStatementType(typeName); err != nil {
			return err
		}
	}

	source, err := readSource(config, path)
	if err != nil {
		return err
	}

	stmts, err := parser.SplitStatements(source, parserCfg)
	if filter != parser.StmtUnknown {
		stmts = parser.StatementsByType(stmts, filter)
	}
	for _, stmt := range stmts {
		fmt.Fprintf(w, "-- %s:%d-%d [%s]\n%s;\n\n", path, stmt.StartLine, stmt.EndLine, stmt.Type, stmt.RawSQL)
	}
	return locate(path, source, err)
}

// locate attaches the file name to a scanner error
func locate(path, source string, err error) error {
	var pe *perrors.Error
	if errors.As(err, &pe) {
		return perrors.NewParseError(path, source, pe)
	}
	return err
}
