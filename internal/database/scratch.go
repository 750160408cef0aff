package database

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CreateScratchDatabase creates an empty database and returns a pool
// connected to it with the same settings as adminPool. Statements are
// verified there so that server verdicts do not depend on the objects of
// the configured database.
func CreateScratchDatabase(ctx context.Context, adminPool *Pool) (*Pool, error) {
	timestamp := time.Now().Format("20060102_150405")
	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return nil, fmt.Errorf("failed to generate random suffix: %w", err)
	}
	dbName := fmt.Sprintf("pgparse_scratch_%s_%s", timestamp, hex.EncodeToString(randomBytes))

	if _, err := adminPool.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{dbName}.Sanitize()); err != nil {
		return nil, fmt.Errorf("failed to create scratch database: %w", err)
	}

	// Preserve all original options (sslmode, runtime parameters, notice handler)
	config := adminPool.Pool.Config()
	config.ConnConfig.Database = dbName

	scratch, err := openScratch(ctx, config, adminPool)
	if err != nil {
		_, _ = adminPool.Exec(ctx, "DROP DATABASE IF EXISTS "+pgx.Identifier{dbName}.Sanitize())
		return nil, fmt.Errorf("failed to connect to scratch database: %w", err)
	}
	return scratch, nil
}

func openScratch(ctx context.Context, config *pgxpool.Config, adminPool *Pool) (*Pool, error) {
	p, err := open(ctx, config, adminPool.notices)
	if err != nil {
		return nil, err
	}
	p.config = adminPool.config
	return p, nil
}

// DestroyScratchDatabase closes the scratch pool and drops its database
func DestroyScratchDatabase(ctx context.Context, adminPool *Pool, scratch *Pool) error {
	if scratch == nil || scratch.Pool == nil {
		return nil
	}
	dbName := scratch.Pool.Config().ConnConfig.Database
	scratch.Close()
	_, err := adminPool.Exec(ctx, fmt.Sprintf("DROP DATABASE IF EXISTS %s WITH (FORCE)", pgx.Identifier{dbName}.Sanitize()))
	return err
}
