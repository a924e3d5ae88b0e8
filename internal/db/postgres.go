package db

import (
	"context"
	"fmt"
	"time"

	"catcare/pkg/types"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema holds every catcare table. It becomes the search_path unless the
// database URL sets one.
const Schema = "catcare"

// Connect opens the pool described by config and checks that the database
// answers before returning it.
func Connect(ctx context.Context, config *types.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(config.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	params := poolConfig.ConnConfig.RuntimeParams
	if params["search_path"] == "" {
		params["search_path"] = Schema
	}
	if params["application_name"] == "" {
		params["application_name"] = "catcare"
	}

	if config.DatabaseMaxConns > 0 {
		poolConfig.MaxConns = config.DatabaseMaxConns
	}
	poolConfig.MaxConnIdleTime = 10 * time.Minute
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping %s: %w", poolConfig.ConnConfig.Host, err)
	}

	return pool, nil
}
