// Package port defines the interfaces between the service layer and its
// collaborators (store, cache, snapshot mirror).
package port

import (
	"context"

	"github.com/tarjetero/tarjetero-api/internal/domain"
)

// CardStore is the owned account store. Reads return deep copies so the
// calculation engine only ever sees an immutable snapshot; every mutation
// bumps the store revision and persists the full snapshot.
type CardStore interface {
	// List returns all cards in insertion order.
	List(ctx context.Context) ([]*domain.Card, error)

	// Get returns the card and the store revision it was read at.
	Get(ctx context.Context, cardID string) (*domain.Card, uint64, error)

	// Create adds a new card. The id must not already exist.
	Create(ctx context.Context, card *domain.Card) error

	// Update applies mutate to a working copy of the card and commits it
	// atomically. When mutate returns an error nothing changes. Returns the
	// committed card.
	Update(ctx context.Context, cardID string, mutate func(*domain.Card) error) (*domain.Card, error)

	// Delete removes the card.
	Delete(ctx context.Context, cardID string) error

	// ReplaceAll swaps the entire card collection (import).
	ReplaceAll(ctx context.Context, cards []*domain.Card) error

	// Revision returns the current store revision. It advances on every
	// mutation, so any cached derivation keyed on it self-invalidates.
	Revision() uint64
}

// Cache memoizes computed values until a TTL or an explicit purge.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
	Purge()
}

// SnapshotSink receives the serialized card snapshot after mutations.
type SnapshotSink interface {
	Push(ctx context.Context, snapshot []byte) error
}
