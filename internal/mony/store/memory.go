package store

import (
	"context"
	"sync"

	"github.com/shandysiswandi/gomony/internal/mony/entity"
	"github.com/shandysiswandi/gomony/internal/pkg/pkgerror"
)

// InMemoryStore keeps pending transactions ordered newest first.
type InMemoryStore struct {
	mu    sync.RWMutex
	items []entity.PendingTransaction
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) AddPending(ctx context.Context, item entity.PendingTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.items {
		if existing.ID == item.ID {
			return pkgerror.NewBusiness("pending transaction already exists", pkgerror.CodeConflict)
		}
	}

	s.items = append([]entity.PendingTransaction{item}, s.items...)

	return nil
}

func (s *InMemoryStore) GetPending(ctx context.Context, id string) (entity.PendingTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.items[i], nil
	}

	return entity.PendingTransaction{}, pkgerror.ErrNotFound
}

// ListPending returns one page (1-based) and the total count.
func (s *InMemoryStore) ListPending(ctx context.Context, page, pageSize int) ([]entity.PendingTransaction, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.items)
	start := (page - 1) * pageSize
	if start < 0 || pageSize < 1 || start >= total {
		return []entity.PendingTransaction{}, total, nil
	}

	end := min(start+pageSize, total)
	items := make([]entity.PendingTransaction, end-start)
	copy(items, s.items[start:end])

	return items, total, nil
}

func (s *InMemoryStore) RemovePending(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return pkgerror.ErrNotFound
	}

	s.items = append(s.items[:i], s.items[i+1:]...)

	return nil
}

// AddPendingUnlessRecent inserts item unless an item with the same raw
// message was created at or after sinceMillis. When one exists it is returned
// with added false and nothing is stored.
func (s *InMemoryStore) AddPendingUnlessRecent(ctx context.Context, item entity.PendingTransaction, sinceMillis int64) (entity.PendingTransaction, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.items {
		if existing.ID == item.ID {
			return entity.PendingTransaction{}, false, pkgerror.NewBusiness("pending transaction already exists", pkgerror.CodeConflict)
		}
		if existing.CreatedAtMillis >= sinceMillis && existing.RawMessage == item.RawMessage {
			return existing, false, nil
		}
	}

	s.items = append([]entity.PendingTransaction{item}, s.items...)

	return item, true, nil
}

func (s *InMemoryStore) indexOf(id string) int {
	for i, item := range s.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
