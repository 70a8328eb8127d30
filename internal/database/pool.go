// Package database manages the platform's PostgreSQL connection pool:
// a thin pgxpool wrapper the repository layer (internal/store) runs
// hand-written SQL against, with no ORM in between.
package database

import (
	"context"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vensus137/coreness-go/internal/config"
	"github.com/vensus137/coreness-go/pkg/logger"
)

// NewPool builds and validates the connection pool cmd/server shares
// across every tenant's repository calls.
func NewPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if cfg.PostgresConnStr == "" {
		return nil, fmt.Errorf("POSTGRES_CONNECTION_STRING is required")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresConnStr)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	poolCfg.MinConns = safeInt32(cfg.PostgresPoolMinSize, "PostgresPoolMinSize")
	poolCfg.MaxConns = safeInt32(cfg.PostgresPoolMaxSize, "PostgresPoolMaxSize")

	// Every tenant's rows live under one schema; AfterConnect pins
	// search_path there, quoting the identifier to keep a bad schema
	// name out of the SET statement.
	schema := cfg.PostgresSchema
	if schema != "" && schema != "public" {
		poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", pgx.Identifier{schema}.Sanitize()))
			return err
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	logger.Infow("postgres pool ready",
		"min_conns", cfg.PostgresPoolMinSize,
		"max_conns", cfg.PostgresPoolMaxSize,
		"schema", schema,
	)
	return pool, nil
}

// safeInt32 clamps v into int32 range, warning when the configured
// pool size had to be adjusted rather than silently truncating it.
func safeInt32(v int, name string) int32 {
	if v > math.MaxInt32 {
		logger.Warn("pool size exceeds int32 range, clamped to max", "field", name, "value", v)
		return math.MaxInt32
	}
	if v < 0 {
		logger.Warn("pool size is negative, clamped to 0", "field", name, "value", v)
		return 0
	}
	return int32(v)
}
