package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	perrors "github.com/cybertec-postgresql/pgparse/internal/errors"
	"github.com/cybertec-postgresql/pgparse/internal/logger"
	"github.com/cybertec-postgresql/pgparse/internal/parser"
)

// Verifier asks a server to parse statements and compares its verdicts
// with the local parser's
type Verifier struct {
	pool *Pool
}

// NewVerifier creates a verifier sending statements through pool
func NewVerifier(pool *Pool) *Verifier {
	return &Verifier{pool: pool}
}

// Verdict is the server's answer for one statement
type Verdict struct {
	Err     *pgconn.PgError // nil when the statement was accepted
	Notices []*pgconn.Notice
}

// Verdict prepares sql as the unnamed statement. Preparing parses and
// analyzes the statement without executing it. A rejection is reported in
// the Verdict; the returned error means the server could not be asked.
func (v *Verifier) Verdict(ctx context.Context, sql string) (*Verdict, error) {
	conn, err := v.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Release()

	pgConn := conn.Conn().PgConn()
	v.pool.notices.Take(pgConn)

	_, err = pgConn.Prepare(ctx, "", sql, nil)
	verdict := &Verdict{Notices: v.pool.notices.Take(pgConn)}
	if err != nil {
		var pgErr *pgconn.PgError
		if !errors.As(err, &pgErr) {
			return nil, err
		}
		verdict.Err = pgErr
	}
	return verdict, nil
}

// Compare implements runner.Verifier
func (v *Verifier) Compare(ctx context.Context, file string, stmt *parser.Statement, local *perrors.Error, warnings []perrors.Warning) (*perrors.MismatchError, error) {
	verdict, err := v.Verdict(ctx, stmt.RawSQL)
	if err != nil {
		return nil, err
	}

	if !Agree(local, verdict.Err) {
		return perrors.NewMismatchError(file, stmt.StartLine, local, verdict.Err), nil
	}
	if local == nil && verdict.Err == nil && !WarningsAgree(warnings, verdict.Notices) {
		logger.Warn("%s:%d: local warnings %v differ from server notices %v",
			file, stmt.StartLine, warningCodes(warnings), noticeCodes(verdict.Notices))
	}
	return nil, nil
}

// Agree reports whether a local parse result and a server verdict match.
// The server also analyzes statements, so a server error that is not a
// syntax error still counts as accepted by its parser. When both reject the
// statement the SQLSTATEs must be equal.
func Agree(local *perrors.Error, server *pgconn.PgError) bool {
	switch {
	case local == nil && server == nil:
		return true
	case local == nil:
		return server.Code != pgerrcode.SyntaxError
	case server == nil:
		return false
	default:
		return local.SQLState() == server.Code
	}
}

// WarningsAgree reports whether the local warnings and the server notices
// carry the same SQLSTATEs with the same multiplicity
func WarningsAgree(warnings []perrors.Warning, notices []*pgconn.Notice) bool {
	counts := make(map[string]int)
	for _, w := range warnings {
		counts[w.SQLState()]++
	}
	for _, n := range notices {
		if n.Code != pgerrcode.NonstandardUseOfEscapeCharacter && n.Code != pgerrcode.NameTooLong {
			continue
		}
		counts[n.Code]--
	}
	for _, c := range counts {
		if c != 0 {
			return false
		}
	}
	return true
}

func warningCodes(warnings []perrors.Warning) []string {
	codes := make([]string, len(warnings))
	for i, w := range warnings {
		codes[i] = w.SQLState()
	}
	return codes
}

func noticeCodes(notices []*pgconn.Notice) []string {
	codes := make([]string, len(notices))
	for i, n := range notices {
		codes[i] = n.Code
	}
	return codes
}
