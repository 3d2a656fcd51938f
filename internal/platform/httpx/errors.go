package httpx

import (
	"errors"
	"net/http"

	"github.com/ledgerline/ledgerline/internal/ledger/shared"
)

// ErrValidation wraps request decoding and field validation failures.
var ErrValidation = errors.New("validation failed")

// RespondError maps ledger errors to HTTP responses using RFC7807.
// Validation and state errors surface to the caller; integrity errors are
// deliberately opaque because they signal corruption, not caller mistakes.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case isValidation(err):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case isState(err):
		Problem(w, http.StatusConflict, "Invalid State", err.Error())
	case isNotFound(err):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrDuplicateCode):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case isUnprocessable(err):
		Problem(w, http.StatusUnprocessableEntity, "Unprocessable", err.Error())
	case errors.Is(err, shared.ErrIntegrity):
		Problem(w, http.StatusInternalServerError, "Integrity Violation", "")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func isValidation(err error) bool {
	for _, target := range []error{
		ErrValidation,
		shared.ErrTooFewLines,
		shared.ErrUnbalanced,
		shared.ErrBothSides,
		shared.ErrZeroLine,
		shared.ErrNegativeAmount,
		shared.ErrInvalidDate,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isState(err error) bool {
	for _, target := range []error{
		shared.ErrInvalidStatus,
		shared.ErrAlreadyPosted,
		shared.ErrAlreadyReversed,
		shared.ErrNotPosted,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isNotFound(err error) bool {
	for _, target := range []error{
		shared.ErrEntryNotFound,
		shared.ErrAccountNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isUnprocessable(err error) bool {
	for _, target := range []error{
		shared.ErrAccountInactive,
		shared.ErrHeaderPosting,
		shared.ErrInvalidParent,
		shared.ErrImmutableField,
		shared.ErrAccountInUse,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
