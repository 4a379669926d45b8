// internal/passport/store_memory.go
package passport

import (
	"context"
	"sort"
	"sync"
)

// InMemoryStore keeps the full aggregate in process memory. It backs the
// test suite and mirrors the transactional semantics of the Postgres store:
// item write and ledger append land together, updates are version-checked.
type InMemoryStore struct {
	mu      sync.RWMutex
	items   map[string]Item
	history map[string][]HistoryEvent
	seq     int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		items:   make(map[string]Item),
		history: make(map[string][]HistoryEvent),
	}
}

func (s *InMemoryStore) InsertItem(_ context.Context, item *Item, events []HistoryEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[item.ID]; exists {
		return ErrDuplicateID
	}

	stored := *item
	stored.History = nil
	s.items[item.ID] = stored
	for _, ev := range events {
		s.appendLocked(item.ID, ev)
	}
	return nil
}

func (s *InMemoryStore) UpdateItem(_ context.Context, id string, expectedVersion int, patch ItemPatch, event HistoryEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.items[id]
	if !exists {
		return ErrNotFound
	}
	if item.Version != expectedVersion {
		return ErrVersionConflict
	}

	if patch.Status != nil {
		item.Status = *patch.Status
	}
	if patch.Classification != nil {
		item.Classification = *patch.Classification
	}
	if patch.EstimatedValue != nil {
		item.EstimatedValue = *patch.EstimatedValue
	}
	if patch.WinningBidder != nil {
		item.WinningBidder = *patch.WinningBidder
	}
	if patch.FinalBidAmount != nil {
		item.FinalBidAmount = *patch.FinalBidAmount
	}
	item.Version++

	s.items[id] = item
	s.appendLocked(id, event)
	return nil
}

func (s *InMemoryStore) GetItem(_ context.Context, id string) (*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.items[id]
	if !exists {
		return nil, ErrNotFound
	}
	item.History = s.historyLocked(id)
	return &item, nil
}

func (s *InMemoryStore) ListItemsByOwner(_ context.Context, ownerID string) ([]*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []*Item
	for id, item := range s.items {
		if item.OwnerID != ownerID {
			continue
		}
		item.History = s.historyLocked(id)
		items = append(items, &item)
	}
	sortItems(items)
	return items, nil
}

func (s *InMemoryStore) ListAllItems(_ context.Context) ([]*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []*Item
	for id, item := range s.items {
		item.History = s.historyLocked(id)
		items = append(items, &item)
	}
	sortItems(items)
	return items, nil
}

func (s *InMemoryStore) AppendHistory(_ context.Context, itemID string, event HistoryEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[itemID]; !exists {
		return ErrNotFound
	}
	s.appendLocked(itemID, event)
	return nil
}

func (s *InMemoryStore) GetHistory(_ context.Context, itemID string) ([]HistoryEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.items[itemID]; !exists {
		return nil, ErrNotFound
	}
	return s.historyLocked(itemID), nil
}

func (s *InMemoryStore) appendLocked(itemID string, ev HistoryEvent) {
	s.seq++
	ev.ItemID = itemID
	ev.Seq = s.seq
	s.history[itemID] = append(s.history[itemID], ev)
}

func (s *InMemoryStore) historyLocked(itemID string) []HistoryEvent {
	events := append([]HistoryEvent{}, s.history[itemID]...)
	sortHistory(events)
	return events
}

func sortHistory(events []HistoryEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Timestamp.Equal(events[j].Timestamp) {
			return events[i].Seq < events[j].Seq
		}
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
}

func sortItems(items []*Item) {
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
}
