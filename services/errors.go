package services

import "errors"

// Code classifies auth failures so the HTTP layer can pick a status and a coarse message
type Code string

const (
	CodeInvalidInput       Code = "INVALID_INPUT"
	CodeDuplicateIdentity  Code = "DUPLICATE_IDENTITY"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeAccountNotFound    Code = "ACCOUNT_NOT_FOUND"
	CodeInvalidOTP         Code = "INVALID_OTP"
	CodeInvalidResetToken  Code = "INVALID_RESET_TOKEN"
	CodePasswordMismatch   Code = "PASSWORD_MISMATCH"
	CodeInvalidToken       Code = "INVALID_TOKEN"
)

// AuthError is a recoverable failure of one step of an auth flow
type AuthError struct {
	Code    Code
	Message string
}

func (e *AuthError) Error() string { return e.Message }

var (
	ErrDuplicateIdentity  = &AuthError{Code: CodeDuplicateIdentity, Message: "an account with this mobile number or email already exists"}
	ErrInvalidCredentials = &AuthError{Code: CodeInvalidCredentials, Message: "invalid credentials"}
	ErrAccountNotFound    = &AuthError{Code: CodeAccountNotFound, Message: "account not found"}
	ErrInvalidOTP         = &AuthError{Code: CodeInvalidOTP, Message: "invalid or expired otp"}
	ErrInvalidResetToken  = &AuthError{Code: CodeInvalidResetToken, Message: "invalid or expired reset token"}
	ErrPasswordMismatch   = &AuthError{Code: CodePasswordMismatch, Message: "passwords do not match"}
	ErrInvalidToken       = &AuthError{Code: CodeInvalidToken, Message: "invalid or expired token"}
)

func invalidInput(msg string) error {
	return &AuthError{Code: CodeInvalidInput, Message: msg}
}

// CodeOf returns the auth error code carried by err, or "" for infrastructure errors
func CodeOf(err error) Code {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Code
	}
	return ""
}
