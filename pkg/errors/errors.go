package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// Error codes
const (
	CodeInvalidInput = "INVALID_INPUT"
	CodeNotFound     = "NOT_FOUND"
	CodeUpstream     = "UPSTREAM_UNAVAILABLE"
	CodeNotCached    = "DATA_NOT_CACHED"
	CodeCache        = "CACHE_ERROR"
	CodeService      = "SERVICE_ERROR"
)

// Reasons refine a code with the locator-specific failure that produced it.
const (
	ReasonInvalidFormat      = "INVALID_FORMAT"
	ReasonInvalidPostcode    = "INVALID_POSTCODE"
	ReasonMissingField       = "MISSING_FIELD"
	ReasonUnsupportedCountry = "UNSUPPORTED_COUNTRY"
	ReasonInvalidMemberState = "INVALID_MEMBER_STATE"

	ReasonAddressNotFound      = "ADDRESS_NOT_FOUND"
	ReasonUnknownPostalCode    = "UNKNOWN_POSTAL_CODE"
	ReasonNoElectoralDistrict  = "NO_ELECTORAL_DISTRICT"
	ReasonUnmappedPostalPrefix = "UNMAPPED_POSTAL_PREFIX"
	ReasonUnmappedPostcode     = "UNMAPPED_POSTCODE"
	ReasonNoSittingMember      = "NO_SITTING_MEMBER"
	ReasonNoMatchFound         = "NO_MATCH_FOUND"
)

type AppError struct {
	Message    string
	Code       string
	Reason     string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func NewAppError(message, code string, statusCode int, context map[string]any) *AppError {
	return &AppError{
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
		Context:    context,
	}
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

type ValidationError struct {
	*AppError
	Field string
	Value any
}

func NewValidationError(message, reason, field string, value any) *ValidationError {
	return &ValidationError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeInvalidInput,
			Reason:     reason,
			StatusCode: http.StatusBadRequest,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

type NotFoundError struct {
	*AppError
}

func NewNotFoundError(message, reason string, context map[string]any) *NotFoundError {
	return &NotFoundError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeNotFound,
			Reason:     reason,
			StatusCode: http.StatusNotFound,
			Context:    context,
		},
	}
}

// UpstreamError reports a failed call to an origin API. OriginStatus is zero
// for transport failures.
type UpstreamError struct {
	*AppError
	Service      string
	OriginStatus int
}

func NewUpstreamError(message, service string, originStatus int, cause error) *UpstreamError {
	return &UpstreamError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeUpstream,
			StatusCode: http.StatusServiceUnavailable,
			Context: map[string]any{
				"service":       service,
				"origin_status": originStatus,
			},
			Cause: cause,
		},
		Service:      service,
		OriginStatus: originStatus,
	}
}

// NotCachedError signals an operational gap: the dataset has never been synced
// or has expired. It is distinct from NotFoundError.
type NotCachedError struct {
	*AppError
	Dataset    string
	RetryAfter time.Duration
}

func NewNotCachedError(dataset string, retryAfter time.Duration) *NotCachedError {
	return &NotCachedError{
		AppError: &AppError{
			Message:    "Data not cached. Please run sync first.",
			Code:       CodeNotCached,
			StatusCode: http.StatusServiceUnavailable,
			Context: map[string]any{
				"dataset": dataset,
			},
		},
		Dataset:    dataset,
		RetryAfter: retryAfter,
	}
}

type CacheError struct {
	*AppError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeCache,
			StatusCode: http.StatusInternalServerError,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

type ServiceError struct {
	*AppError
	Service   string
	Operation string
}

func NewServiceError(message, service, operation string, cause error) *ServiceError {
	return &ServiceError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeService,
			StatusCode: http.StatusInternalServerError,
			Context: map[string]any{
				"service":   service,
				"operation": operation,
			},
			Cause: cause,
		},
		Service:   service,
		Operation: operation,
	}
}

func asAppError(err error) (*AppError, bool) {
	if err == nil {
		return nil, false
	}

	var (
		validation *ValidationError
		notFound   *NotFoundError
		upstream   *UpstreamError
		notCached  *NotCachedError
		cacheErr   *CacheError
		serviceErr *ServiceError
		appErr     *AppError
	)

	switch {
	case stderrors.As(err, &validation):
		return validation.AppError, true
	case stderrors.As(err, &notFound):
		return notFound.AppError, true
	case stderrors.As(err, &notCached):
		return notCached.AppError, true
	case stderrors.As(err, &upstream):
		return upstream.AppError, true
	case stderrors.As(err, &cacheErr):
		return cacheErr.AppError, true
	case stderrors.As(err, &serviceErr):
		return serviceErr.AppError, true
	case stderrors.As(err, &appErr):
		return appErr, true
	}
	return nil, false
}

// StatusOf maps an error chain to the HTTP status the query surface reports.
func StatusOf(err error) int {
	if appErr, ok := asAppError(err); ok && appErr.StatusCode != 0 {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

func CodeOf(err error) string {
	if appErr, ok := asAppError(err); ok {
		return appErr.Code
	}
	return CodeService
}

func ReasonOf(err error) string {
	if appErr, ok := asAppError(err); ok {
		return appErr.Reason
	}
	return ""
}

// MessageOf returns the human-readable message without the wrapped cause.
func MessageOf(err error) string {
	if appErr, ok := asAppError(err); ok {
		return appErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func IsNotCached(err error) bool {
	var notCached *NotCachedError
	return stderrors.As(err, &notCached)
}

func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return stderrors.As(err, &notFound)
}

// OriginStatusOf returns the origin HTTP status carried by an UpstreamError, or 0.
func OriginStatusOf(err error) int {
	var upstream *UpstreamError
	if stderrors.As(err, &upstream) {
		return upstream.OriginStatus
	}
	return 0
}

// RetryAfterOf returns the retry hint of a NotCachedError, or 0.
func RetryAfterOf(err error) time.Duration {
	var notCached *NotCachedError
	if stderrors.As(err, &notCached) {
		return notCached.RetryAfter
	}
	return 0
}
