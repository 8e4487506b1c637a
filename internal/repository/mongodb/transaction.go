package mongodb

import (
	"context"
	"fmt"
	"log/slog"

	"foldervault/internal/domain/repositories"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// TransactionManager runs functions in multi-document transactions when the
// deployment supports them (replica set or sharded cluster). On a standalone
// server it runs them directly and relies on per-document atomicity; every
// write used inside ExecTx ($addToSet, $pull, DeleteMany) is idempotent.
type TransactionManager struct {
	client        *mongo.Client
	transactional bool
	logger        *slog.Logger
}

// NewTransactionManager probes the deployment topology with the hello command
func NewTransactionManager(ctx context.Context, client *mongo.Client, logger *slog.Logger) (repositories.TransactionManager, error) {
	var hello struct {
		SetName string `bson:"setName"`
		Msg     string `bson:"msg"`
	}
	err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello)
	if err != nil {
		return nil, fmt.Errorf("probe mongo topology: %w", err)
	}

	transactional := hello.SetName != "" || hello.Msg == "isdbgrid"
	if !transactional {
		logger.Warn("mongo deployment is standalone, multi-document transactions disabled")
	}

	return &TransactionManager{
		client:        client,
		transactional: transactional,
		logger:        logger,
	}, nil
}

// ExecTx executes fn within a transaction when supported
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if !tm.transactional || mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	sess, err := tm.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
