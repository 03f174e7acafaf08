package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_005"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_006"
	ErrCodeTimeout            ErrorCode = "COMMON_007"
	ErrCodeValidation         ErrorCode = "COMMON_008"
	ErrCodeSerialization      ErrorCode = "COMMON_009"
	ErrCodeDatabaseError      ErrorCode = "COMMON_010"
	ErrCodeCacheError         ErrorCode = "COMMON_011"
	ErrCodeNotImplemented     ErrorCode = "COMMON_012"
)

// Molecule Module Error Codes
const (
	ErrCodeInvalidStructure    ErrorCode = "MOL_001"
	ErrCodeUnsupportedFormat   ErrorCode = "MOL_002"
	ErrCodeConversionFailed    ErrorCode = "MOL_003"
	ErrCodeMoleculeNotFound    ErrorCode = "MOL_004"
	ErrCodeMoleculeExists      ErrorCode = "MOL_005"
	ErrCodeRenderingFailed     ErrorCode = "MOL_006"
	ErrCodeEmbeddingFailed     ErrorCode = "MOL_007"
	ErrCodePropertyCalcFailed  ErrorCode = "MOL_008"
	ErrCodeInvalidSearchType   ErrorCode = "MOL_009"
)

// Data Source Error Codes
const (
	ErrCodeSourceUnavailable ErrorCode = "SRC_001"
	ErrCodeSourceRateLimited ErrorCode = "SRC_002"
	ErrCodeSourceTimeout     ErrorCode = "SRC_003"
	ErrCodeSourceParseError  ErrorCode = "SRC_004"
)

// History Module Error Codes
const (
	ErrCodeHistoryWriteFailed ErrorCode = "HIS_001"
	ErrCodeHistoryReadFailed  ErrorCode = "HIS_002"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeInvalidStructure:   http.StatusBadRequest,
	ErrCodeUnsupportedFormat:  http.StatusBadRequest,
	ErrCodeConversionFailed:   http.StatusInternalServerError,
	ErrCodeMoleculeNotFound:   http.StatusNotFound,
	ErrCodeMoleculeExists:     http.StatusConflict,
	ErrCodeRenderingFailed:    http.StatusInternalServerError,
	ErrCodeEmbeddingFailed:    http.StatusInternalServerError,
	ErrCodePropertyCalcFailed: http.StatusInternalServerError,
	ErrCodeInvalidSearchType:  http.StatusBadRequest,

	ErrCodeSourceUnavailable: http.StatusServiceUnavailable,
	ErrCodeSourceRateLimited: http.StatusTooManyRequests,
	ErrCodeSourceTimeout:     http.StatusGatewayTimeout,
	ErrCodeSourceParseError:  http.StatusBadGateway,

	ErrCodeHistoryWriteFailed: http.StatusInternalServerError,
	ErrCodeHistoryReadFailed:  http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeInvalidStructure:   "invalid molecular structure",
	ErrCodeUnsupportedFormat:  "unsupported output format",
	ErrCodeConversionFailed:   "structure format conversion failed",
	ErrCodeMoleculeNotFound:   "molecule not found",
	ErrCodeMoleculeExists:     "molecule already exists",
	ErrCodeRenderingFailed:    "structure rendering failed",
	ErrCodeEmbeddingFailed:    "3D coordinate generation failed",
	ErrCodePropertyCalcFailed: "property calculation failed",
	ErrCodeInvalidSearchType:  "unrecognized search type",

	ErrCodeSourceUnavailable: "external source unavailable",
	ErrCodeSourceRateLimited: "external source rate limited",
	ErrCodeSourceTimeout:     "external source timed out",
	ErrCodeSourceParseError:  "failed to parse external source response",

	ErrCodeHistoryWriteFailed: "failed to record search history",
	ErrCodeHistoryReadFailed:  "failed to read search history",
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
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
