package core

import (
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorInvalidAmount          = "ISSUANCE_INVALID_AMOUNT"
	ErrorSystemInactive         = "ISSUANCE_SYSTEM_INACTIVE"
	ErrorMaxSupplyExceeded      = "ISSUANCE_MAX_SUPPLY_EXCEEDED"
	ErrorInsufficientBacking    = "ISSUANCE_INSUFFICIENT_BACKING"
	ErrorInvalidProofOfReserve  = "ISSUANCE_INVALID_PROOF_OF_RESERVE"
	ErrorPrecision              = "ISSUANCE_PRECISION_ERROR"
	ErrorUnauthorized           = "ISSUANCE_UNAUTHORIZED"
	ErrorInvalidStateTransition = "ISSUANCE_INVALID_STATE_TRANSITION"
	ErrorConfigNotFound         = "ISSUANCE_CONFIG_NOT_FOUND"
	ErrorConfigExists           = "ISSUANCE_CONFIG_EXISTS"
	ErrorAuditChainBroken       = "ISSUANCE_AUDIT_CHAIN_BROKEN"
	ErrorLedgerFailure          = "ISSUANCE_LEDGER_FAILURE"
	ErrorLockTimeout            = "ISSUANCE_LOCK_TIMEOUT"
	ErrorBadInput               = "ISSUANCE_BAD_INPUT"
	ErrorInternal               = "ISSUANCE_INTERNAL_ERROR"
)

// IsKind reports whether err carries the given issuance text code.
func IsKind(err error, textCode string) bool {
	if err == nil {
		return false
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich == nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(rich.TextCode), strings.TrimSpace(textCode))
}

// Kind returns the issuance text code carried by err, or "" for plain errors.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich == nil {
		return ""
	}
	return rich.TextCode
}

func InvalidAmountError(format string, args ...any) *goerrors.Error {
	return newIssuanceError(fmt.Sprintf(format, args...), goerrors.CategoryBadInput, ErrorInvalidAmount)
}

func SystemInactiveError(format string, args ...any) *goerrors.Error {
	return newIssuanceError(fmt.Sprintf(format, args...), goerrors.CategoryConflict, ErrorSystemInactive)
}

func MaxSupplyExceededError(format string, args ...any) *goerrors.Error {
	return newIssuanceError(fmt.Sprintf(format, args...), goerrors.CategoryConflict, ErrorMaxSupplyExceeded)
}

func InsufficientBackingError(format string, args ...any) *goerrors.Error {
	return newIssuanceError(fmt.Sprintf(format, args...), goerrors.CategoryConflict, ErrorInsufficientBacking)
}

func InvalidProofError(format string, args ...any) *goerrors.Error {
	return newIssuanceError(fmt.Sprintf(format, args...), goerrors.CategoryValidation, ErrorInvalidProofOfReserve)
}

func PrecisionError(format string, args ...any) *goerrors.Error {
	return newIssuanceError(fmt.Sprintf(format, args...), goerrors.CategoryOperation, ErrorPrecision)
}

func UnauthorizedError(format string, args ...any) *goerrors.Error {
	return newIssuanceError(fmt.Sprintf(format, args...), goerrors.CategoryAuthz, ErrorUnauthorized)
}

func InvalidTransitionError(format string, args ...any) *goerrors.Error {
	return newIssuanceError(fmt.Sprintf(format, args...), goerrors.CategoryConflict, ErrorInvalidStateTransition)
}

func ConfigNotFoundError(id string) *goerrors.Error {
	return newIssuanceError(fmt.Sprintf("core: issuance config %q not found", id), goerrors.CategoryNotFound, ErrorConfigNotFound)
}

func ConfigExistsError(id string) *goerrors.Error {
	return newIssuanceError(fmt.Sprintf("core: issuance config %q already exists", id), goerrors.CategoryConflict, ErrorConfigExists)
}

func AuditChainBrokenError(format string, args ...any) *goerrors.Error {
	return newIssuanceError(fmt.Sprintf(format, args...), goerrors.CategoryInternal, ErrorAuditChainBroken)
}

func BadInputError(format string, args ...any) *goerrors.Error {
	return newIssuanceError(fmt.Sprintf(format, args...), goerrors.CategoryBadInput, ErrorBadInput)
}

// LedgerFailureError wraps a failure reported by the external token ledger.
func LedgerFailureError(err error, primitive string) *goerrors.Error {
	return ensureIssuanceErrorEnvelope(
		goerrors.Wrap(err, goerrors.CategoryOperation, fmt.Sprintf("core: ledger %s failed", primitive)).
			WithTextCode(ErrorLedgerFailure),
	)
}

// LockTimeoutError reports that the record lock was not acquired before the
// context ended; cause is the context error.
func LockTimeoutError(configID string, cause error) *goerrors.Error {
	return ensureIssuanceErrorEnvelope(
		goerrors.Wrap(cause, goerrors.CategoryOperation, fmt.Sprintf("core: waiting for lock on %q", configID)).
			WithTextCode(ErrorLockTimeout),
	)
}

func issuanceErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureIssuanceErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "not found"):
		return newIssuanceError(err.Error(), goerrors.CategoryNotFound, ErrorConfigNotFound)
	case strings.Contains(msg, "context canceled"), strings.Contains(msg, "deadline exceeded"):
		return newIssuanceError(err.Error(), goerrors.CategoryOperation, ErrorInternal)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return newIssuanceError(err.Error(), goerrors.CategoryBadInput, ErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureIssuanceErrorEnvelope(mapped)
}

func newIssuanceError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureIssuanceErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureIssuanceErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = issuanceHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultIssuanceTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultIssuanceTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ErrorBadInput
	case goerrors.CategoryNotFound:
		return ErrorConfigNotFound
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return ErrorUnauthorized
	case goerrors.CategoryConflict:
		return ErrorInvalidStateTransition
	default:
		return ErrorInternal
	}
}

func issuanceHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryOperation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
