package repositories

import "context"

// StoreHealth reports the state of the backing document store
type StoreHealth interface {
	// State returns "connected" or "disconnected"
	State(ctx context.Context) string

	// Ping round-trips to the store
	Ping(ctx context.Context) error
}
