package grammar

import (
	"github.com/cybertec-postgresql/pgparse/internal/ast"
	pc "github.com/cybertec-postgresql/pgparse/internal/combinator"
	"github.com/cybertec-postgresql/pgparse/internal/keywords"
	"github.com/cybertec-postgresql/pgparse/internal/lexer"
	"github.com/cybertec-postgresql/pgparse/internal/result"
	"github.com/cybertec-postgresql/pgparse/internal/stream"
)

var (
	stmtMulti pc.Parser[[]ast.Stmt]
	stmt      pc.Parser[ast.Stmt]
)

// stmtmulti: stmt? ( ';' stmt? )*
func initStmts() {
	stmt = pc.Alt(
		transactionStmt(),
		utilityStmt(),
		variableStmt(),
		selectStmt(),
	)
	stmtMulti = pc.Map(pc.ManySep(pc.Optional(stmt), pc.Operator(lexer.Semicolon)), func(stmts []*ast.Stmt) []ast.Stmt {
		out := make([]ast.Stmt, 0, len(stmts))
		for _, s := range stmts {
			if s != nil {
				out = append(out, *s)
			}
		}
		return out
	})
}

func kw(k keywords.Keyword) pc.Parser[keywords.Keyword] { return pc.Keyword(k) }

func toStmt[T ast.Stmt](p pc.Parser[T]) pc.Parser[ast.Stmt] {
	return pc.Map(p, func(s T) ast.Stmt { return s })
}

/*
 * TransactionStmt:
 *	  ABORT opt_transaction opt_transaction_chain
 *	| START TRANSACTION transaction_mode_list_or_empty
 *	| COMMIT opt_transaction opt_transaction_chain
 *	| ROLLBACK opt_transaction opt_transaction_chain
 *	| SAVEPOINT ColId
 *	| RELEASE SAVEPOINT ColId
 *	| RELEASE ColId
 *	| ROLLBACK opt_transaction TO SAVEPOINT ColId
 *	| ROLLBACK opt_transaction TO ColId
 *	| PREPARE TRANSACTION Sconst
 *	| COMMIT PREPARED Sconst
 *	| ROLLBACK PREPARED Sconst
 *	| BEGIN opt_transaction transaction_mode_list_or_empty
 *	| END opt_transaction opt_transaction_chain
 */
func transactionStmt() pc.Parser[ast.Stmt] {
	optTransaction := pc.Optional(pc.KeywordIn(keywords.Work, keywords.Transaction))
	optChain := pc.Default(pc.AndRight(kw(keywords.And), pc.Alt(
		pc.Value(kw(keywords.Chain), true),
		pc.Value(pc.And(kw(keywords.No), kw(keywords.Chain)), false),
	)), false)

	// opt_transaction opt_transaction_chain
	finish := func(kind ast.TransactionKind) pc.Parser[*ast.TransactionStmt] {
		return pc.Map(pc.AndRight(optTransaction, optChain), func(chain bool) *ast.TransactionStmt {
			return &ast.TransactionStmt{Kind: kind, Chain: chain}
		})
	}
	prepared := func(kind ast.TransactionKind) pc.Parser[*ast.TransactionStmt] {
		return pc.Map(pc.AndRight(kw(keywords.Prepared), pc.String()), func(gid string) *ast.TransactionStmt {
			return &ast.TransactionStmt{Kind: kind, GID: gid}
		})
	}
	start := func(kind ast.TransactionKind) func([]ast.TransactionMode) *ast.TransactionStmt {
		return func(modes []ast.TransactionMode) *ast.TransactionStmt {
			return &ast.TransactionStmt{Kind: kind, Modes: modes}
		}
	}
	modes := pc.Default(transactionModeList(), nil)

	rollbackTo := pc.Map(
		pc.AndRight(kw(keywords.To), pc.AndRight(pc.Optional(kw(keywords.Savepoint)), colId)),
		func(name string) *ast.TransactionStmt {
			return &ast.TransactionStmt{Kind: ast.RollbackTo, Name: name}
		})

	return toStmt(pc.Alt(
		pc.Map(pc.AndRight(kw(keywords.Begin), pc.AndRight(optTransaction, modes)), start(ast.Begin)),
		pc.Map(pc.AndRight(pc.And(kw(keywords.Start), kw(keywords.Transaction)), modes), start(ast.Start)),
		pc.AndRight(kw(keywords.Commit), pc.Or(prepared(ast.CommitPrepared), finish(ast.Commit))),
		pc.AndRight(kw(keywords.End), finish(ast.Commit)),
		pc.AndRight(kw(keywords.Rollback), pc.Or(
			prepared(ast.RollbackPrepared),
			pc.AndRight(optTransaction, pc.Or(rollbackTo, pc.Map(optChain, func(chain bool) *ast.TransactionStmt {
				return &ast.TransactionStmt{Kind: ast.Rollback, Chain: chain}
			}))),
		)),
		pc.AndRight(kw(keywords.Abort), finish(ast.Rollback)),
		pc.Map(pc.AndRight(kw(keywords.Savepoint), colId), func(name string) *ast.TransactionStmt {
			return &ast.TransactionStmt{Kind: ast.Savepoint, Name: name}
		}),
		pc.Map(pc.AndRight(kw(keywords.Release), pc.AndRight(pc.Optional(kw(keywords.Savepoint)), colId)),
			func(name string) *ast.TransactionStmt {
				return &ast.TransactionStmt{Kind: ast.Release, Name: name}
			}),
		pc.Map(pc.AndRight(pc.And(kw(keywords.Prepare), kw(keywords.Transaction)), pc.String()),
			func(gid string) *ast.TransactionStmt {
				return &ast.TransactionStmt{Kind: ast.Prepare, GID: gid}
			}),
	))
}

/*
 * transaction_mode_list: transaction_mode_item ( [ ',' ] transaction_mode_item )*
 *
 * transaction_mode_item:
 *	  ISOLATION LEVEL iso_level
 *	| READ ONLY
 *	| READ WRITE
 *	| DEFERRABLE
 *	| NOT DEFERRABLE
 */
func transactionModeList() pc.Parser[[]ast.TransactionMode] {
	isoLevel := pc.Alt(
		pc.AndRight(kw(keywords.Read), pc.Alt(
			pc.Value(kw(keywords.Uncommitted), ast.ReadUncommitted),
			pc.Value(kw(keywords.Committed), ast.ReadCommitted),
		)),
		pc.Value(pc.And(kw(keywords.Repeatable), kw(keywords.Read)), ast.RepeatableRead),
		pc.Value(kw(keywords.Serializable), ast.Serializable),
	)
	flag := func(p pc.Parser[bool], set func(*ast.TransactionMode, *bool)) pc.Parser[ast.TransactionMode] {
		return pc.Map(p, func(v bool) ast.TransactionMode {
			var m ast.TransactionMode
			set(&m, &v)
			return m
		})
	}
	item := pc.Alt(
		pc.Map(pc.AndRight(pc.And(kw(keywords.Isolation), kw(keywords.Level)), isoLevel),
			func(l ast.IsolationLevel) ast.TransactionMode { return ast.TransactionMode{Isolation: l} }),
		flag(pc.AndRight(kw(keywords.Read), pc.Alt(
			pc.Value(kw(keywords.Only), true),
			pc.Value(kw(keywords.Write), false),
		)), func(m *ast.TransactionMode, v *bool) { m.ReadOnly = v }),
		flag(pc.Value(kw(keywords.Deferrable), true),
			func(m *ast.TransactionMode, v *bool) { m.Deferrable = v }),
		flag(pc.Value(pc.And(kw(keywords.Not), kw(keywords.Deferrable)), false),
			func(m *ast.TransactionMode, v *bool) { m.Deferrable = v }),
	)
	return pc.ManyPre(item, pc.Alt(pc.AndRight(comma(), item), item))
}

// utilityStmt covers CHECKPOINT, DISCARD, LISTEN, UNLISTEN, NOTIFY and LOAD.
func utilityStmt() pc.Parser[ast.Stmt] {
	discardTarget := pc.KeywordWhen(func(k keywords.Keyword) (ast.DiscardTarget, bool) {
		switch k {
		case keywords.All:
			return ast.DiscardAll, true
		case keywords.Plans:
			return ast.DiscardPlans, true
		case keywords.Sequences:
			return ast.DiscardSequences, true
		case keywords.Temp, keywords.Temporary:
			return ast.DiscardTemp, true
		}
		return 0, false
	})
	payload := pc.Optional(pc.AndRight(comma(), pc.String()))

	return pc.Alt(
		toStmt(pc.Map(kw(keywords.Checkpoint), func(keywords.Keyword) *ast.CheckpointStmt {
			return &ast.CheckpointStmt{}
		})),
		toStmt(pc.Map(pc.AndRight(kw(keywords.Discard), discardTarget), func(t ast.DiscardTarget) *ast.DiscardStmt {
			return &ast.DiscardStmt{Target: t}
		})),
		toStmt(pc.Map(pc.AndRight(kw(keywords.Listen), colId), func(name string) *ast.ListenStmt {
			return &ast.ListenStmt{Channel: name}
		})),
		toStmt(pc.Map(pc.AndRight(kw(keywords.Unlisten), pc.Alt(colId, pc.Value(pc.Operator(lexer.Mul), ""))),
			func(name string) *ast.UnlistenStmt { return &ast.UnlistenStmt{Channel: name} })),
		toStmt(pc.AndThen(pc.AndRight(kw(keywords.Notify), colId), payload,
			func(name string, payload *string) *ast.NotifyStmt {
				return &ast.NotifyStmt{Channel: name, Payload: payload}
			})),
		toStmt(pc.Map(pc.AndRight(kw(keywords.Load), pc.String()), func(file string) *ast.LoadStmt {
			return &ast.LoadStmt{File: file}
		})),
	)
}

/*
 * SHOW, SET and RESET:
 *
 *	VariableShowStmt:  SHOW var_name | SHOW TIME ZONE | SHOW ALL
 *	VariableResetStmt: RESET var_name | RESET TIME ZONE | RESET ALL
 *	VariableSetStmt:   SET [ SESSION | LOCAL ] var_name ( TO | '=' ) ( var_list | DEFAULT )
 */
func variableStmt() pc.Parser[ast.Stmt] {
	timeZone := pc.Peek2When(func(first, second *stream.Token) bool {
		return first.IsKeyword(keywords.Time) && second != nil && second.IsKeyword(keywords.Zone)
	}, pc.Value(pc.And(kw(keywords.Time), kw(keywords.Zone)), "timezone"))
	target := pc.Alt(timeZone, pc.Value(kw(keywords.All), "all"), varName)

	show := pc.Map(pc.AndRight(kw(keywords.Show), target), func(name string) *ast.VariableShowStmt {
		return &ast.VariableShowStmt{Name: name}
	})
	reset := pc.Map(pc.AndRight(kw(keywords.Reset), target), func(name string) *ast.VariableSetStmt {
		if name == "all" {
			return &ast.VariableSetStmt{Kind: ast.ResetAll}
		}
		return &ast.VariableSetStmt{Kind: ast.Reset, Name: name}
	})

	scope := pc.Default(pc.KeywordWhen(func(k keywords.Keyword) (bool, bool) {
		return k == keywords.Local, k == keywords.Session || k == keywords.Local
	}), false)
	assign := pc.Alt(kw(keywords.To), pc.Value(pc.Operator(lexer.Equals), keywords.To))
	values := pc.Alt(
		pc.Value(kw(keywords.Default), []ast.Expr(nil)),
		pc.ManySep(varValue(), comma()),
	)
	set := pc.AndRight(kw(keywords.Set), pc.AndThen(
		pc.And(scope, varName),
		pc.AndRight(assign, values),
		func(head pc.Pair[bool, string], values []ast.Expr) *ast.VariableSetStmt {
			s := &ast.VariableSetStmt{Kind: ast.SetValue, Name: head.Second, Values: values, Local: head.First}
			if values == nil {
				s.Kind = ast.SetDefault
			}
			return s
		}))

	return pc.Alt(toStmt(show), toStmt(reset), toStmt(set))
}

/*
 * var_value: opt_boolean_or_string | NumericOnly
 *
 * opt_boolean_or_string: TRUE | FALSE | ON | NonReservedWord | Sconst
 */
func varValue() pc.Parser[ast.Expr] {
	word := pc.KeywordWhen(func(k keywords.Keyword) (string, bool) {
		return k.Text(), k == keywords.True || k == keywords.False || k == keywords.On
	})
	text := pc.Map(pc.Alt(word, nonReservedWord, pc.String()), func(s string) ast.Expr {
		return &ast.StringConst{Value: s}
	})
	number := pc.Map(pc.Number(), func(n stream.Number) ast.Expr {
		if n.IsInt {
			return &ast.IntegerConst{Value: n.Int}
		}
		return &ast.NumericConst{Text: n.Text}
	})
	signed := pc.AndThen(operatorIn(lexer.Plus, lexer.Minus), number, func(op string, n ast.Expr) ast.Expr {
		if op == "+" {
			return n
		}
		return negate(op, n)
	})
	return pc.Alt(text, number, signed)
}

/*
 * SELECT [ ALL | DISTINCT ] [ target_list ] [ FROM from_list ] [ WHERE a_expr ]
 *
 * The target list may only be empty without DISTINCT.
 */
func selectStmt() pc.Parser[ast.Stmt] {
	alias := pc.Alt(pc.AndRight(kw(keywords.As), colLabel), bareColLabel)
	target := pc.Alt(
		pc.Map(pc.Operator(lexer.Mul), func(lexer.OperatorKind) *ast.ResTarget {
			return &ast.ResTarget{Val: &ast.ColumnRef{Star: true}}
		}),
		pc.AndThen(aExpr, pc.Default(alias, ""), func(val ast.Expr, name string) *ast.ResTarget {
			return &ast.ResTarget{Val: val, Name: name}
		}),
	)
	targetList := pc.ManySep(target, comma())

	tableRef := pc.AndThen(qualifiedName, pc.Default(pc.Alt(pc.AndRight(kw(keywords.As), colId), colId), ""),
		func(rv *ast.RangeVar, alias string) *ast.RangeVar {
			rv.Alias = alias
			return rv
		})
	from := pc.Default(pc.AndRight(kw(keywords.From), pc.ManySep(tableRef, comma())), nil)
	where := pc.Default(pc.AndRight(kw(keywords.Where), aExpr), nil)

	body := func(distinct bool) pc.Parser[*ast.SelectStmt] {
		targets := pc.Default(targetList, nil)
		if distinct {
			targets = pc.Required(targetList)
		}
		return pc.AndThen(targets, pc.And(from, where),
			func(targets []*ast.ResTarget, rest pc.Pair[[]*ast.RangeVar, ast.Expr]) *ast.SelectStmt {
				return &ast.SelectStmt{Distinct: distinct, Targets: targets, From: rest.First, Where: rest.Second}
			})
	}
	plain, distinct := body(false), body(true)

	quantifier := pc.Optional(pc.KeywordIn(keywords.All, keywords.Distinct))
	return toStmt(pc.AndRight(kw(keywords.Select), pc.Chain(quantifier,
		func(q *keywords.Keyword, s *stream.TokenStream) result.Result[*ast.SelectStmt] {
			if q != nil && *q == keywords.Distinct {
				return distinct(s)
			}
			return plain(s)
		})))
}
