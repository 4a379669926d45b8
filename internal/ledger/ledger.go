// internal/ledger/ledger.go
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrDuplicateEntry surfaces a unique-constraint violation on append,
	// which can only happen when two writers race on the same entry id.
	ErrDuplicateEntry = errors.New("duplicate ledger entry")
)

// Entry is one immutable lifecycle event. Seq is assigned by the database
// and totally orders entries recorded at the same timestamp.
type Entry struct {
	Seq       int64     `json:"seq"`
	ID        uuid.UUID `json:"id"`
	ItemID    string    `json:"item_id"`
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
	Actor     string    `json:"actor"`
	Note      string    `json:"note"`
}

// Ledger is the append-only history store backing the Digital Product
// Passport. Rows are only ever inserted; there is no update or delete path.
type Ledger struct {
	db     *sql.DB
	tracer trace.Tracer
}

func New(db *sql.DB) *Ledger {
	return &Ledger{
		db:     db,
		tracer: otel.Tracer("ecopass/ledger"),
	}
}

// EnsureSchema creates the history table if it does not exist.
func (l *Ledger) EnsureSchema(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS history (
			seq BIGSERIAL PRIMARY KEY,
			id UUID NOT NULL UNIQUE,
			item_id TEXT NOT NULL,
			ts TIMESTAMPTZ NOT NULL,
			status TEXT NOT NULL,
			actor TEXT NOT NULL,
			note TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS history_item_idx ON history (item_id, ts, seq);
	`)
	if err != nil {
		return fmt.Errorf("ensure history schema: %w", err)
	}
	return nil
}

// Append records entries in their own transaction.
func (l *Ledger) Append(ctx context.Context, entries ...Entry) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := l.AppendTx(ctx, tx, entries...); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// AppendTx records entries inside the caller's transaction so an item row
// update and its history entry become visible together.
func (l *Ledger) AppendTx(ctx context.Context, tx *sql.Tx, entries ...Entry) error {
	ctx, span := l.tracer.Start(ctx, "ledger.append",
		trace.WithAttributes(
			attribute.Int("entry.count", len(entries)),
		),
	)
	defer span.End()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO history (id, item_id, ts, status, actor, note)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING seq
	`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, entry := range entries {
		var seq int64
		err = stmt.QueryRowContext(
			ctx,
			entry.ID,
			entry.ItemID,
			entry.Timestamp.UTC(),
			entry.Status,
			entry.Actor,
			entry.Note,
		).Scan(&seq)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
				return ErrDuplicateEntry
			}
			return fmt.Errorf("insert entry %d: %w", i, err)
		}

		span.AddEvent("entry.appended", trace.WithAttributes(
			attribute.Int64("entry.seq", seq),
			attribute.String("entry.status", entry.Status),
			attribute.String("item.id", entry.ItemID),
		))
	}

	return nil
}

// History returns all entries for an item ordered by timestamp, then by
// append sequence.
func (l *Ledger) History(ctx context.Context, itemID string) ([]Entry, error) {
	ctx, span := l.tracer.Start(ctx, "ledger.history",
		trace.WithAttributes(
			attribute.String("item.id", itemID),
		),
	)
	defer span.End()

	rows, err := l.db.QueryContext(ctx, `
		SELECT seq, id, item_id, ts, status, actor, note
		FROM history
		WHERE item_id = $1
		ORDER BY ts ASC, seq ASC
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("entries.loaded", len(entries)))
	return entries, nil
}

// Stream provides a cursor-based read over the whole ledger for downstream
// projections and exports.
func (l *Ledger) Stream(ctx context.Context, fromSeq int64, batchSize int) ([]Entry, error) {
	ctx, span := l.tracer.Start(ctx, "ledger.stream",
		trace.WithAttributes(
			attribute.Int64("from.seq", fromSeq),
			attribute.Int("batch.size", batchSize),
		),
	)
	defer span.End()

	rows, err := l.db.QueryContext(ctx, `
		SELECT seq, id, item_id, ts, status, actor, note
		FROM history
		WHERE seq > $1
		ORDER BY seq ASC
		LIMIT $2
	`, fromSeq, batchSize)
	if err != nil {
		return nil, fmt.Errorf("query ledger stream: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("entries.streamed", len(entries)))
	return entries, nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var entry Entry
		err := rows.Scan(
			&entry.Seq,
			&entry.ID,
			&entry.ItemID,
			&entry.Timestamp,
			&entry.Status,
			&entry.Actor,
			&entry.Note,
		)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}
