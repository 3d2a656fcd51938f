// Package tax aggregates statutory tax collected and paid. Tax amounts are
// tagged on journal lines at invoicing time; this package only reads them
// back, grouped per tax code over a period.
package tax

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrCodeNotFound indicates an unknown tax code.
var ErrCodeNotFound = errors.New("tax: code not found")

// Code is a configured statutory tax type (e.g. sales or service tax).
type Code struct {
	ID       int64     `json:"id"`
	TenantID uuid.UUID `json:"tenantId"`
	Code     string    `json:"code"`
	Name     string    `json:"name"`
	Rate     float64   `json:"rate"`
}

// SummaryLine is the aggregated tax position for one code over a period.
type SummaryLine struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Rate      float64 `json:"rate"`
	TaxAmount float64 `json:"taxAmount"`
	BaseCount int     `json:"baseCount"`
}

// Summary is the statutory tax report for a period. Only posted (and
// reversed, net of their mirror) entry lines contribute.
type Summary struct {
	Start time.Time     `json:"start"`
	End   time.Time     `json:"end"`
	Lines []SummaryLine `json:"lines"`
	Total float64       `json:"total"`
}
