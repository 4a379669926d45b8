package passport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestNextCollectionSlot(t *testing.T) {
	// Wednesday, 2024-03-06 10:30 UTC -> Friday 2024-03-08.
	wednesday := time.Date(2024, 3, 6, 10, 30, 0, 0, time.UTC)
	got := NextCollectionSlot(wednesday)
	assert.Equal(t, time.Friday, got.Weekday())
	assert.Equal(t, 8, got.Day())

	// Saturday rolls into the following week.
	saturday := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	got = NextCollectionSlot(saturday)
	assert.Equal(t, time.Friday, got.Weekday())
	assert.Equal(t, 15, got.Day())
}

func TestNextCollectionSlotSameWeekdayMovesAFullWeek(t *testing.T) {
	friday := time.Date(2024, 3, 8, 15, 4, 5, 0, time.UTC)
	got := NextCollectionSlot(friday)
	assert.Equal(t, friday.AddDate(0, 0, 7), got)
	assert.NotEqual(t, friday, got)
}

func TestNextCollectionSlotProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		from := time.Unix(rapid.Int64Range(0, 4_000_000_000).Draw(t, "from"), 0).UTC()
		slot := NextCollectionSlot(from)

		assert.Equal(t, time.Friday, slot.Weekday())
		assert.True(t, slot.After(from), "slot must be strictly after the submission time")
		assert.LessOrEqual(t, slot.Sub(from), 7*24*time.Hour)
	})
}
