package errors

// ErrorCode represents a standardized error code used by the HTTP layer
type ErrorCode string

// Authentication error codes (AUTH_*)
const (
	AuthUnauthorized   ErrorCode = "AUTH_001"
	AuthInvalidSession ErrorCode = "AUTH_002"
	AuthExpiredSession ErrorCode = "AUTH_003"
	AuthForbidden      ErrorCode = "AUTH_004"
)

// Validation error codes (VALIDATION_*)
const (
	ValidationGeneral      ErrorCode = "VALIDATION_001"
	ValidationInvalidBody  ErrorCode = "VALIDATION_002"
	ValidationMissingQuery ErrorCode = "VALIDATION_003"
	ValidationInvalidDate  ErrorCode = "VALIDATION_004"
)

// Transaction error codes (TRANSACTION_*)
const (
	TransactionNotFound         ErrorCode = "TRANSACTION_001"
	TransactionInvalidCategory  ErrorCode = "TRANSACTION_002"
	TransactionInvalidAmount    ErrorCode = "TRANSACTION_003"
	TransactionValidationFailed ErrorCode = "TRANSACTION_004"
)

// System error codes (SYSTEM_*)
const (
	SystemInternalError      ErrorCode = "SYSTEM_001"
	SystemDatabaseError      ErrorCode = "SYSTEM_002"
	SystemServiceUnavailable ErrorCode = "SYSTEM_003"
	SystemRouteNotFound      ErrorCode = "SYSTEM_004"
	SystemMethodNotAllowed   ErrorCode = "SYSTEM_005"
	SystemRateLimitExceeded  ErrorCode = "SYSTEM_006"
	SystemUnexpectedError    ErrorCode = "SYSTEM_007"
)

// errorMessages maps error codes to their default human-readable messages
var errorMessages = map[ErrorCode]string{
	AuthUnauthorized:   "Unauthorized",
	AuthInvalidSession: "Session is invalid or has been revoked",
	AuthExpiredSession: "Session has expired",
	AuthForbidden:      "Not allowed to access this resource",

	ValidationGeneral:      "Validation failed",
	ValidationInvalidBody:  "Request body must be a valid GraphQL JSON payload",
	ValidationMissingQuery: "GraphQL query is required",
	ValidationInvalidDate:  "Date must use the YYYY-MM-DD format",

	TransactionNotFound:         "Transaction not found",
	TransactionInvalidCategory:  "Category must be one of expense, saving, investment",
	TransactionInvalidAmount:    "Amount must be between 0 and 1000000000000",
	TransactionValidationFailed: "Transaction validation failed",

	SystemInternalError:      "An unexpected error occurred. Please contact support with trace ID",
	SystemDatabaseError:      "Database connection error",
	SystemServiceUnavailable: "Service temporarily unavailable",
	SystemRouteNotFound:      "Resource not found",
	SystemMethodNotAllowed:   "Method not allowed",
	SystemRateLimitExceeded:  "Rate limit exceeded. Please try again later",
	SystemUnexpectedError:    "An unexpected error occurred",
}

// GetErrorMessage returns the default message for a given error code
// If the error code is not found, it returns a generic error message
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return "An error occurred"
}
