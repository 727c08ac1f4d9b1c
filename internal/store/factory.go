package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MYS158/shop-project/internal/catalog"
)

// New constructs a catalog.Repository by kind: "postgres" or "memory".
// For postgres, databaseURL must be a pgx connection string and the
// returned close function releases the pool; for memory the close
// function is a no-op and the store comes pre-seeded with demo data.
func New(ctx context.Context, kind, databaseURL string) (catalog.Repository, func(), error) {
	switch kind {
	case "postgres", "pg":
		if databaseURL == "" {
			return nil, nil, fmt.Errorf("database URL required for postgres store")
		}
		pool, err := pgxpool.New(ctx, databaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, &catalog.ConnectivityError{Err: err}
		}
		pg := NewPostgres(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return pg, pool.Close, nil
	case "memory", "mem":
		m := NewMemory()
		m.SeedDemo()
		return m, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store kind: %s", kind)
	}
}
