// Package shared holds the sentinel errors used across the ledger modules.
package shared

import "errors"

// Validation errors — malformed input, reported back to the caller.
var (
	// ErrTooFewLines indicates fewer than two lines on an entry.
	ErrTooFewLines = errors.New("ledger: entry requires at least two lines")
	// ErrUnbalanced indicates debit total != credit total at post time.
	ErrUnbalanced = errors.New("ledger: entry lines must balance")
	// ErrBothSides indicates a line carrying both a debit and a credit.
	ErrBothSides = errors.New("ledger: line cannot carry both debit and credit")
	// ErrZeroLine indicates a line with neither debit nor credit.
	ErrZeroLine = errors.New("ledger: line must carry a debit or a credit")
	// ErrNegativeAmount indicates a negative debit or credit amount.
	ErrNegativeAmount = errors.New("ledger: amounts must not be negative")
)

// State errors — illegal lifecycle transitions.
var (
	// ErrInvalidStatus indicates the entry status forbids the operation.
	ErrInvalidStatus = errors.New("ledger: invalid status transition")
	// ErrAlreadyPosted indicates the entry was posted before.
	ErrAlreadyPosted = errors.New("ledger: entry already posted")
	// ErrAlreadyReversed indicates the entry was reversed before.
	ErrAlreadyReversed = errors.New("ledger: entry already reversed")
	// ErrNotPosted indicates the operation requires a posted entry.
	ErrNotPosted = errors.New("ledger: entry is not posted")
	// ErrInvalidDate indicates a reversal date before the original entry date.
	ErrInvalidDate = errors.New("ledger: reversal date precedes entry date")
)

// Reference errors — unknown or unusable referenced records.
var (
	// ErrEntryNotFound indicates a missing journal entry.
	ErrEntryNotFound = errors.New("ledger: journal entry not found")
	// ErrAccountNotFound indicates a missing account.
	ErrAccountNotFound = errors.New("ledger: account not found")
	// ErrAccountInactive indicates a posting against a deactivated account.
	ErrAccountInactive = errors.New("ledger: account is inactive")
	// ErrHeaderPosting indicates a posting against a header account.
	ErrHeaderPosting = errors.New("ledger: header accounts cannot receive postings")
	// ErrDuplicateCode indicates an account code already in use for the tenant.
	ErrDuplicateCode = errors.New("ledger: account code already exists")
	// ErrInvalidParent indicates a missing parent or a parent cycle.
	ErrInvalidParent = errors.New("ledger: invalid parent account")
	// ErrImmutableField indicates an attempt to change code or normal side
	// after the account has received postings.
	ErrImmutableField = errors.New("ledger: field is immutable once posted")
	// ErrAccountInUse indicates deactivating an account that still carries
	// a balance without the force flag.
	ErrAccountInUse = errors.New("ledger: account still carries a balance")
)

// ErrIntegrity indicates the core ledger invariant no longer holds. It is
// escalated, never returned to end users as a recoverable condition.
var ErrIntegrity = errors.New("ledger: integrity violation")
