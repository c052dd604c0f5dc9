package apperrors

import (
	"net/http"
)

/*
Factories and predefined variables for common business-logic errors.
*/

// ErrNotFound converts a repository miss (e.g. gorm.ErrRecordNotFound)
// into a 404 AppError.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrAlreadyExists converts a uniqueness violation into a 409 AppError.
func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

// ErrConflict is a generic conflict factory (409).
func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

// ErrInvalidOperation is a factory for operations invalid in the current state (400).
func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// ErrInvalidStatus is a factory for invalid status values (400).
func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusBadRequest)
}

// --- Auth ---

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"A user with this email already exists",
	http.StatusConflict,
)

var ErrWeakPassword = New(
	CodeValidationFailed,
	"auth",
	"Password must be at least 8 characters long",
	http.StatusBadRequest,
)

// --- Reviews ---

// ErrReviewAlreadyModerated rejects a second moderation attempt. The first
// decision is terminal; a blind retry gets this instead of a double-count.
var ErrReviewAlreadyModerated = New(
	CodeConflict,
	"review",
	"Review has already been moderated",
	http.StatusConflict,
)

// ErrReviewNotModerated rejects a visibility toggle on a review that was
// never approved and published.
var ErrReviewNotModerated = New(
	CodeInvalidStatus,
	"review",
	"Review is not approved and published",
	http.StatusBadRequest,
)

var ErrSelfReviewNotAllowed = New(
	CodeInvalidOperation,
	"review",
	"You cannot review your own profile",
	http.StatusBadRequest,
)

var ErrReviewAlreadyExists = New(
	CodeAlreadyExists,
	"review",
	"You have already reviewed this profile",
	http.StatusConflict,
)

var ErrInvalidModerationDecision = New(
	CodeValidationFailed,
	"review",
	"Moderation decision must be 'approved' or 'rejected'",
	http.StatusBadRequest,
)
