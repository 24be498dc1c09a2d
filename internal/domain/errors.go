package domain

import "errors"

// Credential errors. A credential was presented but failed verification.
var (
	ErrTokenMalformed      = errors.New("token malformed")
	ErrKeyNotFound         = errors.New("signing key not found in key set")
	ErrAlgorithmNotAllowed = errors.New("signing algorithm not allowed")
	ErrSignatureInvalid    = errors.New("token signature invalid")
	ErrTokenExpired        = errors.New("token expired")
	ErrClaimMismatch       = errors.New("token claims do not match expected audience or issuer")
	ErrSubjectMissing      = errors.New("subject claim missing")
	ErrSessionInvalid      = errors.New("session token invalid")
)

// Authentication errors. No usable credential was presented.
var (
	ErrUnauthenticated = errors.New("not authenticated")
)

// Upstream errors. A remote collaborator failed for infrastructure reasons.
var (
	ErrKeySetUnavailable     = errors.New("key set unavailable")
	ErrExchangeFailed        = errors.New("authorization code exchange failed")
	ErrExchangeRejected      = errors.New("authorization code rejected by identity provider")
	ErrAggregatorUnavailable = errors.New("financial data aggregator unavailable")
	ErrAggregatorRejected    = errors.New("request rejected by financial data aggregator")
)

// Identity and resource errors.
var (
	ErrIdentityClaimsIncomplete = errors.New("identity claims incomplete")
	ErrUserNotFound             = errors.New("user not found")
	ErrUserExists               = errors.New("user already exists")
	ErrItemNotFound             = errors.New("linked item not found")
	ErrTokenGeneration          = errors.New("token generation failed")
)

// Rate limiting errors.
var (
	ErrRateLimited = errors.New("rate limit exceeded")
)
