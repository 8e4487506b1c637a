package postgres

import (
	"context"

	"foldervault/internal/domain/repositories"

	"github.com/jackc/pgx/v5/pgxpool"
)

type poolHealth struct {
	pool *pgxpool.Pool
}

// NewStoreHealth reports connectivity of the pgx pool
func NewStoreHealth(pool *pgxpool.Pool) repositories.StoreHealth {
	return &poolHealth{pool: pool}
}

func (h *poolHealth) State(ctx context.Context) string {
	if err := h.pool.Ping(ctx); err != nil {
		return "disconnected"
	}
	return "connected"
}

func (h *poolHealth) Ping(ctx context.Context) error {
	return h.pool.Ping(ctx)
}
