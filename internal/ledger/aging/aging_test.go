package aging

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/ledgerline/internal/ledger/docs"
	"github.com/ledgerline/ledgerline/internal/ledger/journal"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBucketBoundaries(t *testing.T) {
	cases := []struct {
		days   int
		bucket Bucket
	}{
		{-5, BucketCurrent},
		{0, BucketCurrent},
		{1, BucketDays1to30},
		{30, BucketDays1to30},
		{31, BucketDays31to60},
		{60, BucketDays31to60},
		{61, BucketDays61to90},
		{90, BucketDays61to90},
		{91, BucketOver90},
		{400, BucketOver90},
	}
	for _, tc := range cases {
		require.Equal(t, tc.bucket, BucketFor(tc.days), "days=%d", tc.days)
	}
}

func TestDaysOverdue(t *testing.T) {
	due := day(2024, 12, 10)
	require.Equal(t, 5, DaysOverdue(&due, day(2024, 12, 15)))
	require.Equal(t, -3, DaysOverdue(&due, day(2024, 12, 7)))
	require.Equal(t, 0, DaysOverdue(nil, day(2024, 12, 15)))

	var zero time.Time
	require.Equal(t, 0, DaysOverdue(&zero, day(2024, 12, 15)))
}

func TestDaysOverdueCountsCalendarDays(t *testing.T) {
	// A due timestamp late in the day must not shave the gap below a bucket
	// boundary: 2024-09-15 → 2024-12-15 is 91 calendar days regardless of
	// time of day or zone offsets across the DST switch.
	due := time.Date(2024, 9, 15, 23, 30, 0, 0, time.UTC)
	ref := time.Date(2024, 12, 15, 1, 0, 0, 0, time.UTC)
	require.Equal(t, 91, DaysOverdue(&due, ref))
	require.Equal(t, BucketOver90, BucketFor(DaysOverdue(&due, ref)))

	loc := time.FixedZone("UTC+8", 8*60*60)
	dueLocal := time.Date(2024, 12, 10, 18, 45, 0, 0, loc)
	require.Equal(t, 5, DaysOverdue(&dueLocal, day(2024, 12, 15)))
}

func TestBuildBucketsExamples(t *testing.T) {
	ref := day(2024, 12, 15)
	due1 := day(2024, 12, 10) // 5 days overdue
	due2 := day(2024, 9, 15)  // 91 days overdue
	due3 := day(2024, 12, 20) // not yet due

	report := Build([]Item{
		{DueDate: &due1, Amount: 100},
		{DueDate: &due2, Amount: 250},
		{DueDate: &due3, Amount: 40},
		{DueDate: nil, Amount: 10},
	}, ref)

	require.Equal(t, Slot{Count: 2, Amount: 50}, report.Buckets[BucketCurrent])
	require.Equal(t, Slot{Count: 1, Amount: 100}, report.Buckets[BucketDays1to30])
	require.Equal(t, Slot{}, report.Buckets[BucketDays31to60])
	require.Equal(t, Slot{}, report.Buckets[BucketDays61to90])
	require.Equal(t, Slot{Count: 1, Amount: 250}, report.Buckets[BucketOver90])

	require.Equal(t, 4, report.Count)
	require.Equal(t, 400.0, report.Amount)
	require.Equal(t, 2, report.OverdueCount)
	require.Equal(t, 350.0, report.OverdueAmount)
}

func TestBuildAlwaysEmitsAllBuckets(t *testing.T) {
	report := Build(nil, day(2025, 1, 1))
	require.Len(t, report.Buckets, len(Buckets))
	for _, b := range Buckets {
		require.Contains(t, report.Buckets, b)
	}
	require.Zero(t, report.Count)
	require.Zero(t, report.Amount)
}

func TestBuildOrderIndependent(t *testing.T) {
	ref := day(2025, 3, 1)
	due := []time.Time{day(2025, 2, 25), day(2025, 1, 10), day(2024, 10, 1), day(2025, 3, 10)}
	items := []Item{
		{DueDate: &due[0], Amount: 11},
		{DueDate: &due[1], Amount: 22},
		{DueDate: &due[2], Amount: 33},
		{DueDate: &due[3], Amount: 44},
	}
	shuffled := []Item{items[2], items[0], items[3], items[1]}

	require.Equal(t, Build(items, ref), Build(shuffled, ref))
}

type fakeDocs struct {
	byKind map[journal.SourceKind][]docs.Document
}

func (f *fakeDocs) Outstanding(ctx context.Context, tenantID uuid.UUID, kind journal.SourceKind) ([]docs.Document, error) {
	return f.byKind[kind], nil
}

func TestServiceSplitsReceivablesAndPayables(t *testing.T) {
	dueInv := day(2025, 1, 10)
	dueBill := day(2024, 11, 1)
	port := &fakeDocs{byKind: map[journal.SourceKind][]docs.Document{
		journal.SourceInvoice: {{Number: "INV-1", DueDate: &dueInv, OpenBalance: 1060}},
		journal.SourceBill:    {{Number: "BILL-7", DueDate: &dueBill, OpenBalance: 300}},
	}}
	svc := NewService(port)
	ref := day(2025, 1, 31)
	tenantID := uuid.New()
	ctx := context.Background()

	ar, err := svc.Receivables(ctx, tenantID, ref)
	require.NoError(t, err)
	require.Equal(t, Slot{Count: 1, Amount: 1060}, ar.Buckets[BucketDays1to30])
	require.Equal(t, 1060.0, ar.OverdueAmount)

	ap, err := svc.Payables(ctx, tenantID, ref)
	require.NoError(t, err)
	require.Equal(t, Slot{Count: 1, Amount: 300}, ap.Buckets[BucketOver90])
}

func TestServiceDefaultsReferenceDateToNow(t *testing.T) {
	due := day(2025, 1, 1)
	port := &fakeDocs{byKind: map[journal.SourceKind][]docs.Document{
		journal.SourceInvoice: {{Number: "INV-2", DueDate: &due, OpenBalance: 50}},
	}}
	svc := NewService(port)
	svc.WithNow(func() time.Time { return day(2025, 1, 16) })

	report, err := svc.Receivables(context.Background(), uuid.New(), time.Time{})
	require.NoError(t, err)
	require.Equal(t, day(2025, 1, 16), report.ReferenceDate)
	require.Equal(t, Slot{Count: 1, Amount: 50}, report.Buckets[BucketDays1to30])
}
