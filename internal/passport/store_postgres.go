// internal/passport/store_postgres.go
package passport

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ecopass/internal/ledger"
)

// PostgresStore persists items in a relational read model and their history
// through the append-only ledger. Every mutation wraps the item row write
// and the ledger append in one transaction.
type PostgresStore struct {
	db     *sql.DB
	ledger *ledger.Ledger
	tracer trace.Tracer
}

func NewPostgresStore(db *sql.DB, l *ledger.Ledger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		ledger: l,
		tracer: otel.Tracer("ecopass/store"),
	}
}

// EnsureSchema creates the items table and the ledger's history table.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			device_type TEXT NOT NULL,
			model TEXT NOT NULL,
			age_years INT NOT NULL,
			condition TEXT NOT NULL,
			power_status BOOLEAN NOT NULL,
			battery_status TEXT NOT NULL,
			image_ref TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			classification TEXT NOT NULL,
			estimated_value NUMERIC(12,2) NOT NULL,
			collection_date TIMESTAMPTZ NOT NULL,
			winning_bidder TEXT NOT NULL DEFAULT '',
			final_bid_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
			version INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS items_owner_idx ON items (owner_id);
	`)
	if err != nil {
		return fmt.Errorf("ensure items schema: %w", err)
	}
	return s.ledger.EnsureSchema(ctx)
}

func (s *PostgresStore) InsertItem(ctx context.Context, item *Item, events []HistoryEvent) error {
	ctx, span := s.tracer.Start(ctx, "store.insert_item",
		trace.WithAttributes(
			attribute.String("item.id", item.ID),
			attribute.String("item.status", string(item.Status)),
		),
	)
	defer span.End()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO items (
			id, owner_id, device_type, model, age_years, condition,
			power_status, battery_status, image_ref, status, classification,
			estimated_value, collection_date, version
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 0)
	`,
		item.ID, item.OwnerID, item.DeviceType, item.Model, item.AgeYears,
		item.Condition, item.PowerStatus, item.BatteryStatus, item.ImageRef,
		item.Status, item.Classification, item.EstimatedValue, item.CollectionDate,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			span.SetAttributes(attribute.Bool("id.collision", true))
			return ErrDuplicateID
		}
		return fmt.Errorf("insert item: %w", err)
	}

	if err := s.ledger.AppendTx(ctx, tx, toEntries(events)...); err != nil {
		return fmt.Errorf("append history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateItem(ctx context.Context, id string, expectedVersion int, patch ItemPatch, event HistoryEvent) error {
	ctx, span := s.tracer.Start(ctx, "store.update_item",
		trace.WithAttributes(
			attribute.String("item.id", id),
			attribute.Int("expected.version", expectedVersion),
		),
	)
	defer span.End()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	set := []string{"version = version + 1", "updated_at = NOW()"}
	args := []interface{}{}
	next := 1
	appendField := func(column string, value interface{}) {
		set = append(set, fmt.Sprintf("%s = $%d", column, next))
		args = append(args, value)
		next++
	}
	if patch.Status != nil {
		appendField("status", *patch.Status)
	}
	if patch.Classification != nil {
		appendField("classification", *patch.Classification)
	}
	if patch.EstimatedValue != nil {
		appendField("estimated_value", *patch.EstimatedValue)
	}
	if patch.WinningBidder != nil {
		appendField("winning_bidder", *patch.WinningBidder)
	}
	if patch.FinalBidAmount != nil {
		appendField("final_bid_amount", *patch.FinalBidAmount)
	}

	query := fmt.Sprintf(
		"UPDATE items SET %s WHERE id = $%d AND version = $%d",
		strings.Join(set, ", "), next, next+1,
	)
	args = append(args, id, expectedVersion)

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM items WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("check item existence: %w", err)
		}
		if !exists {
			return ErrNotFound
		}
		span.SetAttributes(attribute.Bool("conflict.detected", true))
		return ErrVersionConflict
	}

	if err := s.ledger.AppendTx(ctx, tx, toEntries([]HistoryEvent{event})...); err != nil {
		return fmt.Errorf("append history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetItem(ctx context.Context, id string) (*Item, error) {
	item, err := s.scanItem(s.db.QueryRowContext(ctx, itemSelect+` WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	entries, err := s.ledger.History(ctx, id)
	if err != nil {
		return nil, err
	}
	item.History = fromEntries(entries)
	return item, nil
}

func (s *PostgresStore) ListItemsByOwner(ctx context.Context, ownerID string) ([]*Item, error) {
	return s.listItems(ctx, itemSelect+` WHERE owner_id = $1 ORDER BY id`, ownerID)
}

func (s *PostgresStore) ListAllItems(ctx context.Context) ([]*Item, error) {
	return s.listItems(ctx, itemSelect+` ORDER BY id`)
}

func (s *PostgresStore) AppendHistory(ctx context.Context, itemID string, event HistoryEvent) error {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM items WHERE id = $1)`, itemID).Scan(&exists); err != nil {
		return fmt.Errorf("check item existence: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return s.ledger.Append(ctx, toEntries([]HistoryEvent{event})...)
}

func (s *PostgresStore) GetHistory(ctx context.Context, itemID string) ([]HistoryEvent, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM items WHERE id = $1)`, itemID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check item existence: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}
	entries, err := s.ledger.History(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return fromEntries(entries), nil
}

const itemSelect = `
	SELECT id, owner_id, device_type, model, age_years, condition,
	       power_status, battery_status, image_ref, status, classification,
	       estimated_value, collection_date, winning_bidder, final_bid_amount, version
	FROM items`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *PostgresStore) scanItem(row rowScanner) (*Item, error) {
	item := &Item{}
	err := row.Scan(
		&item.ID,
		&item.OwnerID,
		&item.DeviceType,
		&item.Model,
		&item.AgeYears,
		&item.Condition,
		&item.PowerStatus,
		&item.BatteryStatus,
		&item.ImageRef,
		&item.Status,
		&item.Classification,
		&item.EstimatedValue,
		&item.CollectionDate,
		&item.WinningBidder,
		&item.FinalBidAmount,
		&item.Version,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan item: %w", err)
	}
	return item, nil
}

func (s *PostgresStore) listItems(ctx context.Context, query string, args ...interface{}) ([]*Item, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := s.scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}

	for _, item := range items {
		entries, err := s.ledger.History(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		item.History = fromEntries(entries)
	}
	return items, nil
}

func toEntries(events []HistoryEvent) []ledger.Entry {
	entries := make([]ledger.Entry, len(events))
	for i, ev := range events {
		entries[i] = ledger.Entry{
			ID:        ev.ID,
			ItemID:    ev.ItemID,
			Timestamp: ev.Timestamp,
			Status:    string(ev.Status),
			Actor:     ev.Actor,
			Note:      ev.Note,
		}
	}
	return entries
}

func fromEntries(entries []ledger.Entry) []HistoryEvent {
	events := make([]HistoryEvent, len(entries))
	for i, entry := range entries {
		events[i] = HistoryEvent{
			ID:        entry.ID,
			ItemID:    entry.ItemID,
			Seq:       entry.Seq,
			Timestamp: entry.Timestamp,
			Status:    Status(entry.Status),
			Actor:     entry.Actor,
			Note:      entry.Note,
		}
	}
	return events
}
