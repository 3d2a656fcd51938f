package tax

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RepositoryPort abstracts tax persistence and aggregation.
type RepositoryPort interface {
	ListCodes(ctx context.Context, tenantID uuid.UUID) ([]Code, error)
	UpsertCode(ctx context.Context, c Code) (Code, error)
	GetCode(ctx context.Context, tenantID uuid.UUID, code string) (Code, error)
	Collected(ctx context.Context, tenantID uuid.UUID, start, end time.Time) ([]CollectedLine, error)
}

// Service owns tax code configuration and the statutory summary.
type Service struct {
	repo RepositoryPort
}

// NewService constructs the tax service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Codes lists the tenant's configured tax codes.
func (s *Service) Codes(ctx context.Context, tenantID uuid.UUID) ([]Code, error) {
	return s.repo.ListCodes(ctx, tenantID)
}

// Code fetches one configured tax code.
func (s *Service) Code(ctx context.Context, tenantID uuid.UUID, code string) (Code, error) {
	if code == "" {
		return Code{}, errors.New("tax: code required")
	}
	return s.repo.GetCode(ctx, tenantID, code)
}

// SaveCode creates or updates a tax code.
func (s *Service) SaveCode(ctx context.Context, c Code) (Code, error) {
	if c.TenantID == uuid.Nil {
		return Code{}, errors.New("tax: tenant required")
	}
	if c.Code == "" {
		return Code{}, errors.New("tax: code required")
	}
	if c.Rate < 0 {
		return Code{}, errors.New("tax: rate must not be negative")
	}
	return s.repo.UpsertCode(ctx, c)
}

// Summarise aggregates tagged tax amounts per code for the period. Codes
// with activity but no configuration still appear, with the raw code as name.
func (s *Service) Summarise(ctx context.Context, tenantID uuid.UUID, start, end time.Time) (Summary, error) {
	if end.Before(start) {
		return Summary{}, fmt.Errorf("tax: period end %s precedes start %s", end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	collected, err := s.repo.Collected(ctx, tenantID, start, end)
	if err != nil {
		return Summary{}, err
	}
	configured, err := s.repo.ListCodes(ctx, tenantID)
	if err != nil {
		return Summary{}, err
	}
	byCode := make(map[string]Code, len(configured))
	for _, c := range configured {
		byCode[c.Code] = c
	}

	summary := Summary{Start: start, End: end}
	for _, line := range collected {
		out := SummaryLine{Code: line.Code, Name: line.Code, TaxAmount: line.TaxAmount, BaseCount: line.BaseCount}
		if c, ok := byCode[line.Code]; ok {
			out.Name = c.Name
			out.Rate = c.Rate
		}
		summary.Lines = append(summary.Lines, out)
		summary.Total += line.TaxAmount
	}
	return summary, nil
}
