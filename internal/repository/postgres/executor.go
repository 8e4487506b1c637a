package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is implemented by both *pgxpool.Pool and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, arguments ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, arguments ...interface{}) pgx.Row
}

type txContextKey struct{}

// withTx stores a transaction in the context
func withTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// txFromContext returns the transaction stored in ctx, or nil
func txFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txContextKey{}).(pgx.Tx)
	return tx
}

// GetExecutor returns the transaction in ctx if there is one, otherwise the pool.
// Repositories use it so they join an ExecTx transaction automatically.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) DBTX {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}
