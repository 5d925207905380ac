// Package jsonstore is the owned card store. The authoritative state lives
// in memory; the full collection is written to a JSON snapshot file after
// every mutation, in the same format the export endpoint serves, so the data
// file round-trips with an exported backup.
package jsonstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tarjetero/tarjetero-api/internal/domain"

	"go.uber.org/zap"
)

// Store holds all cards behind a RWMutex. Reads hand out deep copies;
// mutations go through Create/Update/Delete/ReplaceAll, which persist before
// committing so a failed write never leaves memory and disk divergent.
type Store struct {
	mu       sync.RWMutex
	path     string
	cards    []*domain.Card
	revision uint64
	logger   *zap.Logger

	// onPersist is invoked after every successful snapshot write.
	onPersist func()
}

// Open loads the snapshot at path, or starts empty when the file does not
// exist yet. Corrupt or invalid snapshots are an error: silently starting
// empty would shadow data loss.
func Open(path string, logger *zap.Logger) (*Store, error) {
	s := &Store{path: path, logger: logger}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// OnPersist registers a callback run after each successful snapshot write.
// Used to count persists in metrics.
func (s *Store) OnPersist(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onPersist = fn
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.logger.Info("no snapshot file, starting empty", zap.String("path", s.path))
		return nil
	}
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	var cards []*domain.Card
	if err := json.Unmarshal(data, &cards); err != nil {
		return fmt.Errorf("decode snapshot %s: %w", s.path, err)
	}
	for _, card := range cards {
		if err := card.Validate(); err != nil {
			return fmt.Errorf("snapshot card %s: %w", card.ID, err)
		}
	}

	s.cards = cards
	s.logger.Info("snapshot loaded",
		zap.String("path", s.path),
		zap.Int("cards", len(cards)),
	)
	return nil
}

// persistLocked writes the given collection to disk atomically (temp file +
// rename). Callers must hold the write lock and only commit to memory after
// this succeeds.
func (s *Store) persistLocked(cards []*domain.Card) error {
	data, err := json.MarshalIndent(cards, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".tarjetero-*.json")
	if err != nil {
		return fmt.Errorf("create snapshot temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close snapshot temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("commit snapshot: %w", err)
	}

	if s.onPersist != nil {
		s.onPersist()
	}
	return nil
}

// List returns deep copies of all cards in insertion order.
func (s *Store) List(ctx context.Context) ([]*domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Card, len(s.cards))
	for i, card := range s.cards {
		out[i] = card.Clone()
	}
	return out, nil
}

// Get returns a deep copy of the card and the revision it was read at.
func (s *Store) Get(ctx context.Context, cardID string) (*domain.Card, uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, card := range s.cards {
		if card.ID == cardID {
			return card.Clone(), s.revision, nil
		}
	}
	return nil, 0, &domain.ErrNotFound{Resource: "card", ID: cardID}
}

// Create adds a new card and persists the snapshot.
func (s *Store) Create(ctx context.Context, card *domain.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.cards {
		if existing.ID == card.ID {
			return &domain.ErrConflict{Message: fmt.Sprintf("card already exists: %s", card.ID)}
		}
	}

	next := append(append([]*domain.Card{}, s.cards...), card.Clone())
	if err := s.persistLocked(next); err != nil {
		return err
	}
	s.cards = next
	s.revision++
	return nil
}

// Update applies mutate to a working copy, persists, then commits. On a
// mutate error the store is untouched.
func (s *Store) Update(ctx context.Context, cardID string, mutate func(*domain.Card) error) (*domain.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, card := range s.cards {
		if card.ID == cardID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, &domain.ErrNotFound{Resource: "card", ID: cardID}
	}

	working := s.cards[idx].Clone()
	if err := mutate(working); err != nil {
		return nil, err
	}
	if err := working.Validate(); err != nil {
		return nil, err
	}

	next := append([]*domain.Card{}, s.cards...)
	next[idx] = working
	if err := s.persistLocked(next); err != nil {
		return nil, err
	}
	s.cards = next
	s.revision++
	return working.Clone(), nil
}

// Delete removes the card and persists the snapshot.
func (s *Store) Delete(ctx context.Context, cardID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, card := range s.cards {
		if card.ID == cardID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return &domain.ErrNotFound{Resource: "card", ID: cardID}
	}

	next := append(append([]*domain.Card{}, s.cards[:idx]...), s.cards[idx+1:]...)
	if err := s.persistLocked(next); err != nil {
		return err
	}
	s.cards = next
	s.revision++
	return nil
}

// ReplaceAll swaps the whole collection (import), persisting the new state.
func (s *Store) ReplaceAll(ctx context.Context, cards []*domain.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]*domain.Card, len(cards))
	for i, card := range cards {
		next[i] = card.Clone()
	}
	if err := s.persistLocked(next); err != nil {
		return err
	}
	s.cards = next
	s.revision++
	return nil
}

// Revision returns the current store revision.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}
