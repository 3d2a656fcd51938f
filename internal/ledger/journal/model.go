package journal

import (
	"time"

	"github.com/google/uuid"
)

// EntryStatus enumerates the journal entry lifecycle values.
type EntryStatus string

const (
	StatusDraft    EntryStatus = "DRAFT"
	StatusPosted   EntryStatus = "POSTED"
	StatusReversed EntryStatus = "REVERSED"
)

// transitions is the closed lifecycle table. REVERSED is terminal.
var transitions = map[EntryStatus]map[EntryStatus]bool{
	StatusDraft:  {StatusPosted: true},
	StatusPosted: {StatusReversed: true},
}

// CanTransition reports whether the status may move to target.
func (s EntryStatus) CanTransition(target EntryStatus) bool {
	return transitions[s][target]
}

// SourceKind tags the business document an entry originated from.
type SourceKind string

const (
	SourceManual          SourceKind = "MANUAL"
	SourceInvoice         SourceKind = "INVOICE"
	SourceBill            SourceKind = "BILL"
	SourceBankTransaction SourceKind = "BANK_TRANSACTION"
	SourceCreditNote      SourceKind = "CREDIT_NOTE"
	SourceDebitNote       SourceKind = "DEBIT_NOTE"
)

// Valid reports whether the source kind is one of the closed set.
func (k SourceKind) Valid() bool {
	switch k {
	case SourceManual, SourceInvoice, SourceBill, SourceBankTransaction, SourceCreditNote, SourceDebitNote:
		return true
	}
	return false
}

// SourceRef links an entry to the document that produced it.
type SourceRef struct {
	Kind SourceKind `json:"kind"`
	ID   uuid.UUID  `json:"id"`
}

// Entry captures a journal entry with its lines.
type Entry struct {
	ID          int64       `json:"id"`
	TenantID    uuid.UUID   `json:"tenantId"`
	Number      *int64      `json:"number,omitempty"`
	Date        time.Time   `json:"date"`
	Description string      `json:"description"`
	Reference   string      `json:"reference,omitempty"`
	Source      *SourceRef  `json:"source,omitempty"`
	Status      EntryStatus `json:"status"`
	ReversesID  *int64      `json:"reversesId,omitempty"`
	ReversedBy  *int64      `json:"reversedBy,omitempty"`
	PostedAt    *time.Time  `json:"postedAt,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	Lines       []Line      `json:"lines"`
}

// Line stores one side of a journal entry.
type Line struct {
	ID        int64   `json:"id"`
	EntryID   int64   `json:"entryId"`
	AccountID int64   `json:"accountId"`
	Debit     float64 `json:"debit"`
	Credit    float64 `json:"credit"`
	TaxCode   *string `json:"taxCode,omitempty"`
	TaxAmount float64 `json:"taxAmount,omitempty"`
	Memo      string  `json:"memo,omitempty"`
	SortOrder int     `json:"sortOrder"`
}
