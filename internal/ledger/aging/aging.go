// Package aging classifies outstanding receivables and payables into fixed
// overdue buckets. All functions are pure; the report is a derived view and
// is never persisted.
package aging

import "time"

// Bucket identifies one of the five fixed overdue windows.
type Bucket string

const (
	BucketCurrent    Bucket = "current"
	BucketDays1to30  Bucket = "days1to30"
	BucketDays31to60 Bucket = "days31to60"
	BucketDays61to90 Bucket = "days61to90"
	BucketOver90     Bucket = "over90"
)

// Buckets lists the windows in ascending overdue order.
var Buckets = []Bucket{BucketCurrent, BucketDays1to30, BucketDays31to60, BucketDays61to90, BucketOver90}

// DaysOverdue returns referenceDate minus dueDate in whole calendar days.
// Both dates are taken at midnight, so time-of-day and DST offsets cannot
// shave a day off a bucket boundary. A missing due date yields 0 so the item
// ages as current instead of failing the report.
func DaysOverdue(dueDate *time.Time, referenceDate time.Time) int {
	if dueDate == nil || dueDate.IsZero() {
		return 0
	}
	return int(midnight(referenceDate).Sub(midnight(*dueDate)) / (24 * time.Hour))
}

// midnight truncates to the calendar day, pinned to UTC so every day is
// exactly 24 hours long.
func midnight(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// BucketFor maps an overdue day count onto its window. Every integer maps to
// exactly one bucket; boundaries sit at 0/1, 30/31, 60/61 and 90/91.
func BucketFor(daysOverdue int) Bucket {
	switch {
	case daysOverdue <= 0:
		return BucketCurrent
	case daysOverdue <= 30:
		return BucketDays1to30
	case daysOverdue <= 60:
		return BucketDays31to60
	case daysOverdue <= 90:
		return BucketDays61to90
	default:
		return BucketOver90
	}
}

// Item is one outstanding document fed into the report.
type Item struct {
	DueDate *time.Time
	Amount  float64
}

// Slot accumulates the documents that fell into one bucket.
type Slot struct {
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

// Report is the full bucket set plus grand totals. All five buckets are
// always present; empty ones hold zero rather than being omitted.
type Report struct {
	ReferenceDate time.Time       `json:"referenceDate"`
	Buckets       map[Bucket]Slot `json:"buckets"`
	Count         int             `json:"count"`
	Amount        float64         `json:"amount"`
	OverdueCount  int             `json:"overdueCount"`
	OverdueAmount float64         `json:"overdueAmount"`
}

// Build buckets every item by overdue days as of referenceDate. Addition is
// commutative, so item order never changes the result.
func Build(items []Item, referenceDate time.Time) Report {
	report := Report{ReferenceDate: referenceDate, Buckets: make(map[Bucket]Slot, len(Buckets))}
	for _, b := range Buckets {
		report.Buckets[b] = Slot{}
	}
	for _, item := range items {
		bucket := BucketFor(DaysOverdue(item.DueDate, referenceDate))
		slot := report.Buckets[bucket]
		slot.Count++
		slot.Amount += item.Amount
		report.Buckets[bucket] = slot
		report.Count++
		report.Amount += item.Amount
	}
	current := report.Buckets[BucketCurrent]
	report.OverdueCount = report.Count - current.Count
	report.OverdueAmount = report.Amount - current.Amount
	return report
}
