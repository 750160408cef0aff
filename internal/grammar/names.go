package grammar

import (
	"slices"
	"strings"

	"github.com/cybertec-postgresql/pgparse/internal/ast"
	"github.com/cybertec-postgresql/pgparse/internal/buffer"
	pc "github.com/cybertec-postgresql/pgparse/internal/combinator"
	perrors "github.com/cybertec-postgresql/pgparse/internal/errors"
	"github.com/cybertec-postgresql/pgparse/internal/keywords"
	"github.com/cybertec-postgresql/pgparse/internal/lexer"
	"github.com/cybertec-postgresql/pgparse/internal/stream"
)

var (
	colId            pc.Parser[string]
	colLabel         pc.Parser[string]
	bareColLabel     pc.Parser[string]
	typeFunctionName pc.Parser[string]
	nonReservedWord  pc.Parser[string]
	qualifiedName    pc.Parser[*ast.RangeVar]
	varName          pc.Parser[string]
)

/*
 * Name productions. Which keywords may stand for a name depends on the
 * keyword category:
 *
 *	ColId              IDENT | unreserved | col_name
 *	type_function_name IDENT | unreserved | type_func_name
 *	NonReservedWord    IDENT | unreserved | col_name | type_func_name
 *	ColLabel           IDENT | any keyword
 *	BareColLabel       IDENT | bare label keyword
 */
func initNames() {
	colId = pc.Alt(pc.Identifier(), keywordName(keywords.Unreserved, keywords.ColumnName))
	typeFunctionName = pc.Alt(pc.Identifier(), keywordName(keywords.Unreserved, keywords.TypeFuncName))
	nonReservedWord = pc.Alt(pc.Identifier(),
		keywordName(keywords.Unreserved, keywords.ColumnName, keywords.TypeFuncName))
	colLabel = pc.Alt(pc.Identifier(), pc.Map(pc.AnyKeyword(), keywords.Keyword.Text))
	bareColLabel = pc.Alt(pc.Identifier(), pc.KeywordWhen(func(k keywords.Keyword) (string, bool) {
		return k.Text(), k.IsBareLabel()
	}))

	// attrs: ColId ( '.' ColLabel )*
	attrs := pc.ManyPre(colId, pc.AndRight(dot(), colLabel))
	qualifiedName = check(attrs, makeRangeVar)

	varName = pc.Map(pc.ManySep(colId, dot()), func(parts []string) string {
		return strings.Join(parts, ".")
	})
}

func keywordName(categories ...keywords.Category) pc.Parser[string] {
	return pc.KeywordWhen(func(k keywords.Keyword) (string, bool) {
		return k.Text(), slices.Contains(categories, k.Category())
	})
}

func makeRangeVar(names []string, loc buffer.Location) (*ast.RangeVar, *perrors.Error) {
	switch len(names) {
	case 1:
		return &ast.RangeVar{Relation: names[0]}, nil
	case 2:
		return &ast.RangeVar{Schema: names[0], Relation: names[1]}, nil
	case 3:
		return &ast.RangeVar{Catalog: names[0], Schema: names[1], Relation: names[2]}, nil
	}
	return nil, perrors.New(perrors.ImproperQualifiedName, loc, strings.Join(names, "."))
}

// isName reports whether tok can start a type or function name.
func isName(tok *stream.Token) bool {
	switch tok.Kind {
	case lexer.Identifier:
		return true
	case lexer.Keyword:
		c := tok.Keyword.Category()
		return c == keywords.Unreserved || c == keywords.TypeFuncName
	}
	return false
}
