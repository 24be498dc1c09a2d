package domain

import (
	"context"
	"time"
)

// KeySetProvider serves the identity provider's current public key set.
type KeySetProvider interface {
	// GetKeys returns the cached key set, refreshing it when stale.
	GetKeys(ctx context.Context) (*KeySet, error)
	// Refresh forces a fetch, bypassing the cache. Used once on a kid miss
	// to pick up a freshly rotated key.
	Refresh(ctx context.Context) (*KeySet, error)
}

// BearerVerifier validates provider-issued bearer tokens.
type BearerVerifier interface {
	Verify(ctx context.Context, token string) (*BearerClaims, error)
}

// SessionCodec issues and validates first-party session tokens.
type SessionCodec interface {
	Issue(subject string, extra map[string]any) (string, error)
	Validate(token string) (*SessionClaims, error)
	// TTL is the configured session lifetime, used for cookie max-age.
	TTL() time.Duration
}

// CodeExchanger exchanges an authorization code for a verified identity.
type CodeExchanger interface {
	Exchange(ctx context.Context, code, redirectURI string) (*Identity, error)
}

// UserRepository stores LocalUser records keyed by subject.
type UserRepository interface {
	FindBySubject(ctx context.Context, subject string) (*LocalUser, error)
	// Create inserts a new user. Returns ErrUserExists when the subject is
	// already stored; callers racing on the same subject fall back to find.
	Create(ctx context.Context, user *LocalUser) error
}

// ItemRepository stores linked aggregator items.
type ItemRepository interface {
	FindByItemID(ctx context.Context, itemID string) (*PlaidItem, error)
	Upsert(ctx context.Context, item *PlaidItem) error
}

// AccountLinker is the financial-data aggregator boundary.
type AccountLinker interface {
	CreateLinkToken(ctx context.Context, subject string) (string, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (itemID, accessToken string, err error)
	GetTransactions(ctx context.Context, accessToken string, start, end time.Time, count int32) ([]Transaction, error)
	CreateSandboxPublicToken(ctx context.Context, institutionID string, overrideHistory []map[string]any) (string, error)
}

// TokenCipher encrypts secrets before they reach storage.
type TokenCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}
