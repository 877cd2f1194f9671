package snapshot

import (
	"time"

	"pvt-resolver/internal/domain"
)

// EndOfMonth returns the last calendar day of the month containing d.
func EndOfMonth(d time.Time) time.Time {
	y, m, _ := d.Date()
	// Day 0 of the next month normalises to the last day of this one.
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC)
}

// SnapshotDate is the evaluation date for a request made as of asOf.
func SnapshotDate(asOf time.Time) time.Time {
	return domain.TruncateDay(EndOfMonth(asOf))
}
