package database

import (
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cybertec-postgresql/pgparse/internal/buffer"
	perrors "github.com/cybertec-postgresql/pgparse/internal/errors"
)

func TestAgree(t *testing.T) {
	loc := buffer.Location{Start: 7, End: 11, Line: 1, Col: 8}
	syntax := perrors.NewSyntax(loc)
	underflow := perrors.New(perrors.FloatPrecisionUnderflow, loc)

	tests := []struct {
		name   string
		local  *perrors.Error
		server *pgconn.PgError
		want   bool
	}{
		{"both accept", nil, nil, true},
		{"server semantic error", nil, &pgconn.PgError{Code: "42P01"}, true},
		{"server syntax error", nil, &pgconn.PgError{Code: "42601"}, false},
		{"local only", syntax, nil, false},
		{"same code", syntax, &pgconn.PgError{Code: "42601"}, true},
		{"same non-syntax code", underflow, &pgconn.PgError{Code: "22023"}, true},
		{"different code", syntax, &pgconn.PgError{Code: "42P01"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Agree(tt.local, tt.server); got != tt.want {
				t.Errorf("Agree() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWarningsAgree(t *testing.T) {
	loc := buffer.Location{Start: 7, End: 13, Line: 1, Col: 8}
	escape := perrors.NewWarning(perrors.NonstandardEscape, loc)

	if !WarningsAgree(nil, nil) {
		t.Error("no warnings and no notices should agree")
	}
	if !WarningsAgree([]perrors.Warning{escape}, []*pgconn.Notice{escape.Notice()}) {
		t.Error("a warning and its own notice should agree")
	}
	if WarningsAgree([]perrors.Warning{escape, escape}, []*pgconn.Notice{escape.Notice()}) {
		t.Error("different counts should not agree")
	}
	unrelated := &pgconn.Notice{Code: "00000", Message: "relation already exists, skipping"}
	if !WarningsAgree(nil, []*pgconn.Notice{unrelated}) {
		t.Error("unrelated notices should be ignored")
	}
}

func TestNoticeCollector(t *testing.T) {
	c := NewNoticeCollector()
	a, b := &pgconn.PgConn{}, &pgconn.PgConn{}

	c.Handle(a, &pgconn.Notice{Code: "22P06"})
	c.Handle(a, &pgconn.Notice{Code: "42622"})
	c.Handle(b, &pgconn.Notice{Code: "22P06"})
	if c.Pending() != 2 {
		t.Fatalf("Pending() = %d, want 2", c.Pending())
	}

	if got := c.Take(a); len(got) != 2 || got[1].Code != "42622" {
		t.Errorf("Take(a) = %v", got)
	}
	if got := c.Take(a); got != nil {
		t.Errorf("second Take(a) = %v, want nil", got)
	}
	if c.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", c.Pending())
	}
}
