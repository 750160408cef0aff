// Package ast defines the syntax tree produced by the grammar.
//
// Node shapes follow the PostgreSQL parse nodes they stand for (TransactionStmt,
// VariableSetStmt, SelectStmt, ColumnRef, TypeName and so on), reduced to the
// fields the supported statements can fill.
package ast

import "github.com/cybertec-postgresql/pgparse/internal/lexer"

// Stmt is a top-level statement.
type Stmt interface {
	stmtNode()
}

// Expr is a value expression.
type Expr interface {
	exprNode()
}

// ── transaction control ──────────────────────────────────────────────────────

// TransactionKind tells the transaction statements apart.
type TransactionKind uint8

const (
	Begin TransactionKind = iota
	Start
	Commit
	Rollback
	Savepoint
	Release
	RollbackTo
	Prepare
	CommitPrepared
	RollbackPrepared
)

func (k TransactionKind) String() string {
	switch k {
	case Begin:
		return "BEGIN"
	case Start:
		return "START TRANSACTION"
	case Commit:
		return "COMMIT"
	case Rollback:
		return "ROLLBACK"
	case Savepoint:
		return "SAVEPOINT"
	case Release:
		return "RELEASE"
	case RollbackTo:
		return "ROLLBACK TO"
	case Prepare:
		return "PREPARE TRANSACTION"
	case CommitPrepared:
		return "COMMIT PREPARED"
	case RollbackPrepared:
		return "ROLLBACK PREPARED"
	default:
		return "TransactionKind(?)"
	}
}

// TransactionStmt is BEGIN, COMMIT, ROLLBACK and their relatives.
type TransactionStmt struct {
	Kind  TransactionKind
	Modes []TransactionMode // BEGIN, START TRANSACTION
	Chain bool              // COMMIT, ROLLBACK: AND CHAIN
	Name  string            // savepoint name
	GID   string            // prepared transaction id
}

// IsolationLevel is the argument of ISOLATION LEVEL.
type IsolationLevel uint8

const (
	ReadUncommitted IsolationLevel = iota + 1
	ReadCommitted
	RepeatableRead
	Serializable
)

func (l IsolationLevel) String() string {
	switch l {
	case ReadUncommitted:
		return "read uncommitted"
	case ReadCommitted:
		return "read committed"
	case RepeatableRead:
		return "repeatable read"
	case Serializable:
		return "serializable"
	default:
		return ""
	}
}

// TransactionMode is one item of a transaction mode list. Exactly one of
// the fields is set.
type TransactionMode struct {
	Isolation  IsolationLevel
	ReadOnly   *bool
	Deferrable *bool
}

// ── utility ──────────────────────────────────────────────────────────────────

// CheckpointStmt is CHECKPOINT.
type CheckpointStmt struct{}

// DiscardTarget is what DISCARD throws away.
type DiscardTarget uint8

const (
	DiscardAll DiscardTarget = iota
	DiscardPlans
	DiscardSequences
	DiscardTemp
)

// DiscardStmt is DISCARD ALL | PLANS | SEQUENCES | TEMP.
type DiscardStmt struct {
	Target DiscardTarget
}

// ListenStmt is LISTEN channel.
type ListenStmt struct {
	Channel string
}

// UnlistenStmt is UNLISTEN channel. Channel is empty for UNLISTEN *.
type UnlistenStmt struct {
	Channel string
}

// NotifyStmt is NOTIFY channel [, payload].
type NotifyStmt struct {
	Channel string
	Payload *string
}

// LoadStmt is LOAD 'file'.
type LoadStmt struct {
	File string
}

// VariableShowStmt is SHOW name. Name is "all" for SHOW ALL.
type VariableShowStmt struct {
	Name string
}

// VariableSetKind tells the forms of SET and RESET apart.
type VariableSetKind uint8

const (
	SetValue VariableSetKind = iota
	SetDefault
	Reset
	ResetAll
)

// VariableSetStmt is SET and RESET.
type VariableSetStmt struct {
	Kind   VariableSetKind
	Name   string
	Values []Expr
	Local  bool
}

// ── SELECT ───────────────────────────────────────────────────────────────────

// SelectStmt is a simple SELECT.
type SelectStmt struct {
	Distinct bool
	Targets  []*ResTarget
	From     []*RangeVar
	Where    Expr
}

// ResTarget is an output column. Name is the alias, if any.
type ResTarget struct {
	Val  Expr
	Name string
}

// RangeVar is a table reference.
type RangeVar struct {
	Catalog  string
	Schema   string
	Relation string
	Alias    string
}

// ── expressions ──────────────────────────────────────────────────────────────

// IntegerConst is an integer literal that fits an int4.
type IntegerConst struct {
	Value int32
}

// NumericConst is any other numeric literal, kept as text.
type NumericConst struct {
	Text string
}

// StringConst is a string literal.
type StringConst struct {
	Value string
}

// BitStringConst is a bit string literal. Value holds binary digits; hex
// literals are expanded.
type BitStringConst struct {
	Kind  lexer.BitStringKind
	Value string
}

// BoolConst is TRUE or FALSE.
type BoolConst struct {
	Value bool
}

// NullConst is NULL.
type NullConst struct{}

// ParamRef is $n.
type ParamRef struct {
	Number int32
}

// ColumnRef is a possibly qualified column name. Star is set for a
// trailing ".*" or a bare "*".
type ColumnRef struct {
	Fields []string
	Star   bool
}

// FuncCall is name(args) or name(*).
type FuncCall struct {
	Name []string
	Args []Expr
	Star bool
}

// TypeCast is expr::type. Typed literals such as date 'today' are casts too.
type TypeCast struct {
	Arg  Expr
	Type *TypeName
}

// BinaryExpr is left op right. Op is the operator spelling, or AND / OR.
type BinaryExpr struct {
	Op    string
	Left  Expr
	Right Expr
}

// UnaryExpr is op arg, including NOT.
type UnaryExpr struct {
	Op  string
	Arg Expr
}

// TypeName is a type reference. Built-in SQL spellings are stored under
// their catalog names, such as pg_catalog.int4 for INTEGER.
type TypeName struct {
	Names       []string
	Modifiers   []Expr
	ArrayBounds []int32 // -1 for []
}

func (*TransactionStmt) stmtNode()  {}
func (*CheckpointStmt) stmtNode()   {}
func (*DiscardStmt) stmtNode()      {}
func (*ListenStmt) stmtNode()       {}
func (*UnlistenStmt) stmtNode()     {}
func (*NotifyStmt) stmtNode()       {}
func (*LoadStmt) stmtNode()         {}
func (*VariableShowStmt) stmtNode() {}
func (*VariableSetStmt) stmtNode()  {}
func (*SelectStmt) stmtNode()       {}

func (*IntegerConst) exprNode()   {}
func (*NumericConst) exprNode()   {}
func (*StringConst) exprNode()    {}
func (*BitStringConst) exprNode() {}
func (*BoolConst) exprNode()      {}
func (*NullConst) exprNode()      {}
func (*ParamRef) exprNode()       {}
func (*ColumnRef) exprNode()      {}
func (*FuncCall) exprNode()       {}
func (*TypeCast) exprNode()       {}
func (*BinaryExpr) exprNode()     {}
func (*UnaryExpr) exprNode()      {}

// SystemType returns the name of a built-in type, qualified with
// pg_catalog.
func SystemType(name string) *TypeName {
	return &TypeName{Names: []string{"pg_catalog", name}}
}

// StmtTag returns the command tag PostgreSQL reports for s.
func StmtTag(s Stmt) string {
	switch s := s.(type) {
	case *TransactionStmt:
		return s.Kind.String()
	case *CheckpointStmt:
		return "CHECKPOINT"
	case *DiscardStmt:
		return "DISCARD"
	case *ListenStmt:
		return "LISTEN"
	case *UnlistenStmt:
		return "UNLISTEN"
	case *NotifyStmt:
		return "NOTIFY"
	case *LoadStmt:
		return "LOAD"
	case *VariableShowStmt:
		return "SHOW"
	case *VariableSetStmt:
		if s.Kind == Reset || s.Kind == ResetAll {
			return "RESET"
		}
		return "SET"
	case *SelectStmt:
		return "SELECT"
	default:
		return ""
	}
}
