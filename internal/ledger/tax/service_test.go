package tax

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type memTaxRepo struct {
	codes     map[string]Code
	collected []CollectedLine
	nextID    int64
}

func newMemTaxRepo() *memTaxRepo {
	return &memTaxRepo{codes: make(map[string]Code), nextID: 1}
}

func (m *memTaxRepo) ListCodes(ctx context.Context, tenantID uuid.UUID) ([]Code, error) {
	var out []Code
	for _, c := range m.codes {
		if c.TenantID == tenantID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memTaxRepo) UpsertCode(ctx context.Context, c Code) (Code, error) {
	if existing, ok := m.codes[c.Code]; ok {
		c.ID = existing.ID
	} else {
		c.ID = m.nextID
		m.nextID++
	}
	m.codes[c.Code] = c
	return c, nil
}

func (m *memTaxRepo) GetCode(ctx context.Context, tenantID uuid.UUID, code string) (Code, error) {
	c, ok := m.codes[code]
	if !ok || c.TenantID != tenantID {
		return Code{}, ErrCodeNotFound
	}
	return c, nil
}

func (m *memTaxRepo) Collected(ctx context.Context, tenantID uuid.UUID, start, end time.Time) ([]CollectedLine, error) {
	return m.collected, nil
}

func TestSaveCodeUpserts(t *testing.T) {
	repo := newMemTaxRepo()
	svc := NewService(repo)
	tenantID := uuid.New()
	ctx := context.Background()

	created, err := svc.SaveCode(ctx, Code{TenantID: tenantID, Code: "SST", Name: "Sales and Service Tax", Rate: 0.06})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	updated, err := svc.SaveCode(ctx, Code{TenantID: tenantID, Code: "SST", Name: "Sales and Service Tax", Rate: 0.08})
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID, "upsert keeps the identity")
	require.Equal(t, 0.08, updated.Rate)
}

func TestSaveCodeValidation(t *testing.T) {
	svc := NewService(newMemTaxRepo())
	ctx := context.Background()

	_, err := svc.SaveCode(ctx, Code{Code: "SST"})
	require.Error(t, err, "tenant required")

	_, err = svc.SaveCode(ctx, Code{TenantID: uuid.New()})
	require.Error(t, err, "code required")

	_, err = svc.SaveCode(ctx, Code{TenantID: uuid.New(), Code: "SST", Rate: -0.01})
	require.Error(t, err, "negative rate")
}

func TestCodeLookup(t *testing.T) {
	repo := newMemTaxRepo()
	svc := NewService(repo)
	tenantID := uuid.New()
	ctx := context.Background()

	_, err := svc.SaveCode(ctx, Code{TenantID: tenantID, Code: "SST", Name: "Sales and Service Tax", Rate: 0.06})
	require.NoError(t, err)

	code, err := svc.Code(ctx, tenantID, "SST")
	require.NoError(t, err)
	require.Equal(t, 0.06, code.Rate)

	_, err = svc.Code(ctx, tenantID, "GST")
	require.ErrorIs(t, err, ErrCodeNotFound)
}

func TestSummariseJoinsConfiguredMetadata(t *testing.T) {
	repo := newMemTaxRepo()
	svc := NewService(repo)
	tenantID := uuid.New()
	ctx := context.Background()

	_, err := svc.SaveCode(ctx, Code{TenantID: tenantID, Code: "SST", Name: "Sales and Service Tax", Rate: 0.06})
	require.NoError(t, err)

	repo.collected = []CollectedLine{
		{Code: "SST", TaxAmount: 120, BaseCount: 3},
		{Code: "WHT", TaxAmount: 45, BaseCount: 1},
	}

	summary, err := svc.Summarise(ctx, tenantID,
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, summary.Lines, 2)
	require.Equal(t, 165.0, summary.Total)

	byCode := map[string]SummaryLine{}
	for _, line := range summary.Lines {
		byCode[line.Code] = line
	}
	require.Equal(t, "Sales and Service Tax", byCode["SST"].Name)
	require.Equal(t, 0.06, byCode["SST"].Rate)
	require.Equal(t, 3, byCode["SST"].BaseCount)
	require.Equal(t, "WHT", byCode["WHT"].Name, "unconfigured codes fall back to the raw code")
	require.Zero(t, byCode["WHT"].Rate)
}

func TestSummariseNetsReversedTax(t *testing.T) {
	// A reversal carries the negated tax amount, so a fully reversed invoice
	// nets to zero in the period aggregate.
	repo := newMemTaxRepo()
	repo.collected = []CollectedLine{{Code: "SST", TaxAmount: 0, BaseCount: 2}}
	svc := NewService(repo)

	summary, err := svc.Summarise(context.Background(), uuid.New(),
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, 0.0, summary.Total)
}

func TestSummariseRejectsInvertedPeriod(t *testing.T) {
	svc := NewService(newMemTaxRepo())
	_, err := svc.Summarise(context.Background(), uuid.New(),
		time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
}
