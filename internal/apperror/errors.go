// internal/apperror/errors.go
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeInvalidAmount    ErrorCode = "INVALID_AMOUNT"
	ErrCodeNotAvailable     ErrorCode = "NOT_AVAILABLE"
	ErrCodeSelfPurchase     ErrorCode = "SELF_PURCHASE"
	ErrCodeInvalidSignature ErrorCode = "INVALID_SIGNATURE"
	ErrCodeMalformedPayload ErrorCode = "MALFORMED_PAYLOAD"
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeForbidden        ErrorCode = "FORBIDDEN"
	ErrCodeConflict         ErrorCode = "CONFLICT"
	ErrCodeNotReady         ErrorCode = "NOT_READY"
	ErrCodeRateLimited      ErrorCode = "RATE_LIMITED"
	ErrCodeValidation       ErrorCode = "VALIDATION_ERROR"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeNotAvailable, ErrCodeNotReady:
		return http.StatusConflict
	case ErrCodeInvalidAmount, ErrCodeSelfPurchase, ErrCodeMalformedPayload, ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeInvalidSignature:
		return http.StatusUnauthorized
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// As extracts an *AppError from an error chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func Is(err error, code ErrorCode) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

var (
	ErrListingNotFound     = New(ErrCodeNotFound, "listing not found")
	ErrListingNotAvailable = New(ErrCodeNotAvailable, "listing is not available for purchase")
	ErrSelfPurchase        = New(ErrCodeSelfPurchase, "cannot purchase your own listing")
	ErrTransactionNotFound = New(ErrCodeNotFound, "transaction not found")
	ErrDisputeNotFound     = New(ErrCodeNotFound, "dispute not found")
	ErrDisputeExists       = New(ErrCodeConflict, "an open dispute already exists for this transaction")
	ErrDisputeClosed       = New(ErrCodeConflict, "dispute is closed")
	ErrDisputeResolved     = New(ErrCodeConflict, "dispute is already resolved")
	ErrCredentialsNotReady = New(ErrCodeNotReady, "credentials are not ready for disclosure")
	ErrCredentialsExpired  = New(ErrCodeNotReady, "credential access window has expired")
	ErrInvalidSignature    = New(ErrCodeInvalidSignature, "invalid webhook signature")
	ErrMalformedPayload    = New(ErrCodeMalformedPayload, "malformed webhook payload")
	ErrNotParticipant      = New(ErrCodeForbidden, "not a participant of this dispute")
	ErrRateLimited         = New(ErrCodeRateLimited, "too many requests, try again later")
)
