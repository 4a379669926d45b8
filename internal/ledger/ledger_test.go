package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB attempts to connect to a PostgreSQL database for testing.
// It skips the test if the connection cannot be established.
func setupTestDB(t testing.TB) *sql.DB {
	t.Helper()

	pgUser := os.Getenv("PGUSER")
	pgPassword := os.Getenv("PGPASSWORD")
	pgHost := os.Getenv("PGHOST")
	pgPort := os.Getenv("PGPORT")
	pgDB := os.Getenv("PGDATABASE")

	if pgUser == "" {
		pgUser = "user"
	}
	if pgPassword == "" {
		pgPassword = "password"
	}
	if pgHost == "" {
		pgHost = "localhost"
	}
	if pgPort == "" {
		pgPort = "5432"
	}
	if pgDB == "" {
		pgDB = "testdb"
	}

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		pgHost, pgPort, pgUser, pgPassword, pgDB)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("failed to open database connection: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("skipping ledger tests: could not connect to postgres: %v", err)
	}

	if err := New(db).EnsureSchema(context.Background()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	return db
}

func testEntry(itemID, status string, ts time.Time) Entry {
	return Entry{
		ID:        uuid.New(),
		ItemID:    itemID,
		Timestamp: ts,
		Status:    status,
		Actor:     "test",
		Note:      "test entry",
	}
}

func TestAppendAndHistoryOrdering(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	l := New(db)
	ctx := context.Background()

	itemID := "RES-TEST-" + uuid.NewString()
	base := time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC)

	// Append out of timestamp order; History must return timestamp order.
	require.NoError(t, l.Append(ctx, testEntry(itemID, "SCHEDULED", base.Add(time.Hour))))
	require.NoError(t, l.Append(ctx, testEntry(itemID, "SUBMITTED", base)))
	require.NoError(t, l.Append(ctx, testEntry(itemID, "VERIFIED", base.Add(2*time.Hour))))

	history, err := l.History(ctx, itemID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "SUBMITTED", history[0].Status)
	assert.Equal(t, "SCHEDULED", history[1].Status)
	assert.Equal(t, "VERIFIED", history[2].Status)
}

func TestAppendRejectsDuplicateEntryID(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	l := New(db)
	ctx := context.Background()

	entry := testEntry("RES-TEST-"+uuid.NewString(), "SUBMITTED", time.Now().UTC())
	require.NoError(t, l.Append(ctx, entry))

	err := l.Append(ctx, entry)
	assert.ErrorIs(t, err, ErrDuplicateEntry)
}

func TestStreamFollowsCursor(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	l := New(db)
	ctx := context.Background()

	itemID := "RES-TEST-" + uuid.NewString()
	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		require.NoError(t, l.Append(ctx, testEntry(itemID, "SUBMITTED", base.Add(time.Duration(i)*time.Second))))
	}

	var cursor int64
	var seen int
	for {
		batch, err := l.Stream(ctx, cursor, 2)
		require.NoError(t, err)
		if len(batch) == 0 {
			break
		}
		for _, entry := range batch {
			assert.Greater(t, entry.Seq, cursor)
			cursor = entry.Seq
			if entry.ItemID == itemID {
				seen++
			}
		}
	}
	assert.Equal(t, 5, seen)
}

func BenchmarkAppend(b *testing.B) {
	db := setupTestDB(b)
	defer db.Close()
	l := New(db)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		b.StopTimer()
		entry := testEntry("RES-BENCH-"+uuid.NewString(), "SUBMITTED", time.Now().UTC())
		b.StartTimer()

		if err := l.Append(ctx, entry); err != nil {
			b.Fatalf("Append failed: %v", err)
		}
	}
}
