package database

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cybertec-postgresql/pgparse/internal/decoder"
	"github.com/cybertec-postgresql/pgparse/internal/errors"
	"github.com/cybertec-postgresql/pgparse/pkg/types"
)

const (
	applicationName = "pgparse"

	// minServerVersion is the oldest server whose grammar matches the parser
	minServerVersion = 140000
)

// Pool wraps pgxpool.Pool with additional functionality
type Pool struct {
	*pgxpool.Pool
	config  *types.Config
	notices *NoticeCollector
	version int
}

// NewPool creates a new connection pool to PostgreSQL. Every connection is
// opened with the scanner settings of config, so the server reads
// statements the same way the local parser does.
func NewPool(ctx context.Context, config *types.Config) (*Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(config.ConnectionString)
	if err != nil {
		return nil, errors.NewConnectionError("", 0, fmt.Sprintf("invalid connection configuration: %v", err))
	}

	bq, err := decoder.ParseBackslashQuote(config.BackslashQuote)
	if err != nil {
		return nil, errors.NewConfigError("backslash_quote", err.Error())
	}

	params := poolConfig.ConnConfig.RuntimeParams
	params["application_name"] = applicationName
	params["standard_conforming_strings"] = "off"
	if config.StandardConformingStrings {
		params["standard_conforming_strings"] = "on"
	}
	params["backslash_quote"] = bq.String()
	params["escape_string_warning"] = "on"

	notices := NewNoticeCollector()
	poolConfig.ConnConfig.OnNotice = notices.Handle

	// One connection per worker plus one for administrative statements
	poolConfig.MaxConns = int32(max(config.Parallelism, 1) + 1)

	p, err := open(ctx, poolConfig, notices)
	if err != nil {
		return nil, err
	}
	p.config = config
	return p, nil
}

func open(ctx context.Context, poolConfig *pgxpool.Config, notices *NoticeCollector) (*Pool, error) {
	host, port := poolConfig.ConnConfig.Host, int(poolConfig.ConnConfig.Port)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errors.NewConnectionError(host, port, fmt.Sprintf("failed to create connection pool: %v", err))
	}

	var versionStr string
	if err := pool.QueryRow(ctx, "SHOW server_version_num").Scan(&versionStr); err != nil {
		pool.Close()
		return nil, errors.NewConnectionError(host, port, fmt.Sprintf("failed to query PostgreSQL version: %v", err))
	}

	version, err := strconv.Atoi(versionStr)
	if err != nil {
		pool.Close()
		return nil, errors.NewConnectionError(host, port, fmt.Sprintf("failed to parse PostgreSQL version '%s': %v", versionStr, err))
	}

	if version < minServerVersion {
		pool.Close()
		return nil, errors.NewConnectionError(host, port,
			fmt.Sprintf("PostgreSQL version %d is not supported (need %d+)", version/10000, minServerVersion/10000))
	}

	return &Pool{
		Pool:    pool,
		notices: notices,
		version: version,
	}, nil
}

// Config returns the configuration used by this pool
func (p *Pool) Config() *types.Config {
	return p.config
}

// ServerVersion returns the server_version_num of the connected server
func (p *Pool) ServerVersion() int {
	return p.version
}

// Notices returns the collector receiving this pool's server notices
func (p *Pool) Notices() *NoticeCollector {
	return p.notices
}

// Close closes the connection pool
func (p *Pool) Close() {
	if p.Pool != nil {
		p.Pool.Close()
	}
}
