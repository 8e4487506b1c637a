package repositories

import "context"

// TxFn is a function that runs within a transaction.
// Repositories called with the ctx passed to fn participate in the transaction.
type TxFn func(ctx context.Context) error

// TransactionManager groups repository writes into one logical operation
type TransactionManager interface {
	// ExecTx executes fn within a transaction, committing only if fn returns nil
	ExecTx(ctx context.Context, fn TxFn) error
}
