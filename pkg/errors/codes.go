package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
// Codes carry a module prefix ("COMMON", "ANA", "DS") separated from the
// sequence number by an underscore.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeStorageError       ErrorCode = "COMMON_014"
	ErrCodeNotImplemented     ErrorCode = "COMMON_016"
)

// Aliases used at call sites.
const (
	CodeInternal       = ErrCodeInternal
	CodeInvalidParam   = ErrCodeBadRequest
	CodeNotFound       = ErrCodeNotFound
	CodeRateLimit      = ErrCodeTooManyRequests
	CodeNotImplemented = ErrCodeNotImplemented
	CodeValidation     = ErrCodeValidation
	CodeDatabaseError  = ErrCodeDatabaseError
	CodeCacheError     = ErrCodeCacheError
	CodeStorageError   = ErrCodeStorageError
	CodeOK             = ErrorCode("OK")
	CodeUnknown        = ErrorCode("UNKNOWN")
)

// Analytics query error codes. All of them are raised at the query boundary
// before any aggregation runs.
const (
	ErrCodeInvalidDateRange     ErrorCode = "ANA_001"
	ErrCodeInvalidRatingBound   ErrorCode = "ANA_002"
	ErrCodeInvalidPercentThresh ErrorCode = "ANA_003"
	ErrCodeInvalidRatingThresh  ErrorCode = "ANA_004"
	ErrCodeUnknownTopic         ErrorCode = "ANA_005"
	ErrCodeDuplicateGroupLabel  ErrorCode = "ANA_006"
	ErrCodeInvalidSelection     ErrorCode = "ANA_007"
	ErrCodeQuerySchemaViolation ErrorCode = "ANA_008"
)

// Dataset loading error codes. These are fatal at startup.
const (
	ErrCodeDatasetUnavailable ErrorCode = "DS_001"
	ErrCodeMissingColumn      ErrorCode = "DS_002"
	ErrCodeMalformedRecord    ErrorCode = "DS_003"
	ErrCodeUnsupportedSource  ErrorCode = "DS_004"
	ErrCodeEmptyTaxonomy      ErrorCode = "DS_005"
	ErrCodeMigrationFailed    ErrorCode = "DS_006"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeStorageError:       http.StatusInternalServerError,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeInvalidDateRange:     http.StatusUnprocessableEntity,
	ErrCodeInvalidRatingBound:   http.StatusUnprocessableEntity,
	ErrCodeInvalidPercentThresh: http.StatusUnprocessableEntity,
	ErrCodeInvalidRatingThresh:  http.StatusUnprocessableEntity,
	ErrCodeUnknownTopic:         http.StatusUnprocessableEntity,
	ErrCodeDuplicateGroupLabel:  http.StatusUnprocessableEntity,
	ErrCodeInvalidSelection:     http.StatusUnprocessableEntity,
	ErrCodeQuerySchemaViolation: http.StatusBadRequest,

	ErrCodeDatasetUnavailable: http.StatusServiceUnavailable,
	ErrCodeMissingColumn:      http.StatusInternalServerError,
	ErrCodeMalformedRecord:    http.StatusInternalServerError,
	ErrCodeUnsupportedSource:  http.StatusInternalServerError,
	ErrCodeEmptyTaxonomy:      http.StatusInternalServerError,
	ErrCodeMigrationFailed:    http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeStorageError:       "object storage error",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeInvalidDateRange:     "end date precedes start date",
	ErrCodeInvalidRatingBound:   "invalid rating bound",
	ErrCodeInvalidPercentThresh: "percentage threshold out of range",
	ErrCodeInvalidRatingThresh:  "rating threshold out of range",
	ErrCodeUnknownTopic:         "unknown topic",
	ErrCodeDuplicateGroupLabel:  "duplicate group label",
	ErrCodeInvalidSelection:     "invalid group selection",
	ErrCodeQuerySchemaViolation: "query does not match schema",

	ErrCodeDatasetUnavailable: "dataset unavailable",
	ErrCodeMissingColumn:      "required dataset column missing",
	ErrCodeMalformedRecord:    "malformed dataset record",
	ErrCodeUnsupportedSource:  "unsupported dataset source",
	ErrCodeEmptyTaxonomy:      "topic taxonomy is empty",
	ErrCodeMigrationFailed:    "schema migration failed",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 1 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
