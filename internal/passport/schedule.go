// internal/passport/schedule.go
package passport

import "time"

// Collection trucks run on Fridays.
const collectionWeekday = time.Friday

// NextCollectionSlot returns the next collection run strictly after from.
// A submission made on the collection weekday itself misses the current run
// and is scheduled a full week out, never the same day.
func NextCollectionSlot(from time.Time) time.Time {
	days := (int(collectionWeekday) - int(from.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return from.AddDate(0, 0, days)
}
