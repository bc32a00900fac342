package notification

import (
	"context"
	"errors"
)

// ErrStateNotFound is returned by Repository.Get when no state has been
// stored for the key yet. Shared by every store implementation so callers
// can test for it without knowing which backend is wired.
var ErrStateNotFound = errors.New("notification state not found")

// Repository is the durable state collaborator, keyed by the one-way
// address hash.
type Repository interface {
	Get(ctx context.Context, addressKey string) (*State, error)
	Put(ctx context.Context, state *State) error
}
