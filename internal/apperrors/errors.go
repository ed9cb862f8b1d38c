package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a request-terminal failure with a stable machine-readable code.
// The message must tell the caller what to do next; internal detail never
// leaks through it.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"error"`
	Status  int    `json:"-"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeAuthorization    = "AUTHORIZATION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeDuplicateClaim   = "DUPLICATE_CLAIM"
	CodeSelfClaim        = "SELF_CLAIM"
	CodeStateConflict    = "STATE_CONFLICT"
	CodeStorage          = "STORAGE_ERROR"
	CodeMissingToken     = "MISSING_TOKEN"
	CodeTokenExpired     = "TOKEN_EXPIRED"
	CodeTokenMalformed   = "TOKEN_MALFORMED"
	CodeUserNotFound     = "USER_NOT_FOUND"
	CodeUnverified       = "ACCOUNT_UNVERIFIED"
	CodeTokenMismatch    = "TOKEN_USER_MISMATCH"
)

func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg, Status: http.StatusBadRequest}
}

func Authorization(msg string) *Error {
	return &Error{Code: CodeAuthorization, Message: msg, Status: http.StatusForbidden}
}

func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg, Status: http.StatusNotFound}
}

func DuplicateClaim() *Error {
	return &Error{
		Code:    CodeDuplicateClaim,
		Message: "you have already submitted a claim for this item",
		Status:  http.StatusConflict,
	}
}

func SelfClaim() *Error {
	return &Error{
		Code:    CodeSelfClaim,
		Message: "you cannot claim your own item",
		Status:  http.StatusBadRequest,
	}
}

func StateConflict(msg string) *Error {
	return &Error{Code: CodeStateConflict, Message: msg, Status: http.StatusConflict}
}

// Storage wraps persistence and filesystem failures. The caller logs the
// underlying error; only the generic message goes to the client.
func Storage() *Error {
	return &Error{
		Code:    CodeStorage,
		Message: "something went wrong, please try again later",
		Status:  http.StatusInternalServerError,
	}
}

func Token(code, msg string) *Error {
	return &Error{Code: code, Message: msg, Status: http.StatusUnauthorized}
}

// From extracts an *Error from err, mapping anything unrecognized to a
// generic storage failure.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Storage()
}
