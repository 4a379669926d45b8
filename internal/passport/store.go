// internal/passport/store.go
package passport

import "context"

// ItemPatch carries the fields a lifecycle transition may change. Nil fields
// are left untouched; everything else on an item is immutable after creation.
type ItemPatch struct {
	Status         *Status
	Classification *Classification
	EstimatedValue *float64
	WinningBidder  *string
	FinalBidAmount *float64
}

// Store is the persistence contract the lifecycle engine requires. Mutating
// calls take the item row write and the ledger append together: both become
// visible atomically or neither does. UpdateItem is conditional on
// expectedVersion and fails with ErrVersionConflict when the item moved
// underneath the caller. Reads return items joined with their full history,
// ordered by timestamp ascending (ties broken by append sequence).
type Store interface {
	InsertItem(ctx context.Context, item *Item, events []HistoryEvent) error
	UpdateItem(ctx context.Context, id string, expectedVersion int, patch ItemPatch, event HistoryEvent) error
	GetItem(ctx context.Context, id string) (*Item, error)
	ListItemsByOwner(ctx context.Context, ownerID string) ([]*Item, error)
	ListAllItems(ctx context.Context) ([]*Item, error)
	AppendHistory(ctx context.Context, itemID string, event HistoryEvent) error
	GetHistory(ctx context.Context, itemID string) ([]HistoryEvent, error)
}
