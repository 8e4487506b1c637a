package mongodb

import (
	"context"

	"foldervault/internal/domain/repositories"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type clientHealth struct {
	client *mongo.Client
}

// NewStoreHealth reports connectivity of the mongo client
func NewStoreHealth(client *mongo.Client) repositories.StoreHealth {
	return &clientHealth{client: client}
}

func (h *clientHealth) State(ctx context.Context) string {
	if err := h.Ping(ctx); err != nil {
		return "disconnected"
	}
	return "connected"
}

func (h *clientHealth) Ping(ctx context.Context) error {
	return h.client.Ping(ctx, readpref.Primary())
}
