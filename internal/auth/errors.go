package auth

import "errors"

// Machine-readable detail strings returned to clients. Stable by contract.
const (
	DetailAuthenticationRequired = "Authentication required."
	DetailAuthorizationFailed    = "Authorization failed. User has no access."
	DetailInvalidToken           = "Invalid token."
	DetailInvalidCredentials     = "Invalid credentials."
	DetailRefreshNotValid        = "Refresh token is not valid."
)

var (
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrRefreshNotValid        = errors.New("refresh token is not valid")
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrAuthorizationFailed    = errors.New("authorization failed")
	ErrNoRevocationStore      = errors.New("revocation store is not configured")
)
