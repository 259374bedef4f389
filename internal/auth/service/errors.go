package service

import "errors"

var (
	ErrValidation         = errors.New("validation_error")
	ErrUserExists         = errors.New("user_exists")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrForbidden          = errors.New("forbidden")

	// Ledger outcomes. TokenService folds the first two into
	// ErrInvalidRefresh before they reach a caller.
	ErrSessionNotFound = errors.New("session_not_found")
	ErrSessionExpired  = errors.New("session_expired")
	ErrIntegrity       = errors.New("integrity_violation")

	ErrInvalidRefresh = errors.New("invalid_refresh_token")
	ErrInternal       = errors.New("internal_error")
)
