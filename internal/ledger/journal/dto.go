package journal

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerline/ledgerline/internal/ledger/shared"
)

// balanceTolerance is the maximum absolute debit/credit mismatch accepted at
// post time, one hundredth of the currency minor unit. Anything beyond is a
// hard failure, never silently rounded.
const balanceTolerance = 0.01

// LineInput describes a journal line in a draft request.
type LineInput struct {
	AccountID int64
	Debit     float64
	Credit    float64
	TaxCode   *string
	TaxAmount float64
	Memo      string
}

// DraftInput groups fields required to create a draft entry.
type DraftInput struct {
	TenantID    uuid.UUID
	Date        time.Time
	Description string
	Reference   string
	Source      *SourceRef
	Lines       []LineInput
}

// Validate enforces the structural rules shared by drafts and postings.
// The debit==credit sum is deliberately NOT checked here: drafts may stay
// unbalanced while being edited and are re-validated at post time.
func (in DraftInput) Validate() error {
	if in.TenantID == uuid.Nil {
		return errors.New("ledger: tenant required")
	}
	if in.Date.IsZero() {
		return errors.New("ledger: entry date required")
	}
	if len(in.Lines) < 2 {
		return shared.ErrTooFewLines
	}
	for idx, line := range in.Lines {
		if line.AccountID == 0 {
			return fmt.Errorf("ledger: line %d missing account", idx)
		}
		if line.Debit < 0 || line.Credit < 0 {
			return shared.ErrNegativeAmount
		}
		if line.Debit > 0 && line.Credit > 0 {
			return shared.ErrBothSides
		}
		if line.Debit == 0 && line.Credit == 0 {
			return shared.ErrZeroLine
		}
	}
	if in.Source != nil && !in.Source.Kind.Valid() {
		return fmt.Errorf("ledger: unknown source kind %q", in.Source.Kind)
	}
	return nil
}

// ReverseInput wraps parameters for reversal.
type ReverseInput struct {
	TenantID     uuid.UUID
	EntryID      int64
	ReversalDate time.Time
	Description  string
}

// Totals sums the debit and credit columns of a line set.
func Totals(lines []Line) (debit, credit float64) {
	for _, line := range lines {
		debit += line.Debit
		credit += line.Credit
	}
	return debit, credit
}

// Balanced reports whether debit and credit totals agree within tolerance.
func Balanced(debit, credit float64) bool {
	return math.Abs(debit-credit) <= balanceTolerance
}
