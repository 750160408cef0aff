package errors

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// ParseError represents a SQL file that failed to parse
type ParseError struct {
	File   string
	Source string
	Err    *Error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Err.Location.Line, e.Err.Location.Col, e.Err.Describe(e.Source))
}

func (e *ParseError) Unwrap() error { return e.Err }

// NewParseError creates a new ParseError
func NewParseError(file, source string, err *Error) *ParseError {
	return &ParseError{
		File:   file,
		Source: source,
		Err:    err,
	}
}

// ConnectionError represents PostgreSQL connection failure
type ConnectionError struct {
	Host    string
	Port    int
	Message string
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s:%d: %s", e.Host, e.Port, e.Message)
}

// NewConnectionError creates a new ConnectionError
func NewConnectionError(host string, port int, message string) *ConnectionError {
	return &ConnectionError{
		Host:    host,
		Port:    port,
		Message: message,
	}
}

// MismatchError is reported when the server and the local parser disagree
// about whether a statement is syntactically valid
type MismatchError struct {
	File      string
	Line      int
	Local     *Error          // nil when the statement parsed locally
	ServerErr *pgconn.PgError // nil when the server accepted the statement
}

func (e *MismatchError) Error() string {
	switch {
	case e.Local != nil && e.ServerErr == nil:
		return fmt.Sprintf("%s:%d: rejected locally (%s) but accepted by server", e.File, e.Line, e.Local.Message)
	case e.Local == nil && e.ServerErr != nil:
		return fmt.Sprintf("%s:%d: parsed locally but rejected by server: [%s] %s", e.File, e.Line, e.ServerErr.Code, e.ServerErr.Message)
	default:
		return fmt.Sprintf("%s:%d: local and server verdicts differ", e.File, e.Line)
	}
}

// NewMismatchError creates a new MismatchError
func NewMismatchError(file string, line int, local *Error, server *pgconn.PgError) *MismatchError {
	return &MismatchError{
		File:      file,
		Line:      line,
		Local:     local,
		ServerErr: server,
	}
}

// ConfigError represents an invalid configuration value
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Message)
}

// NewConfigError creates a new ConfigError
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}
