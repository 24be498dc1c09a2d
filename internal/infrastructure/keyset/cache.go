package keyset

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync"
	"time"

	"fin-hub/internal/domain"

	"golang.org/x/sync/singleflight"
)

// jwk is a single JSON Web Key as published by the identity provider.
// Only RSA signing keys are usable here; everything else is skipped.
type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwksDocument struct {
	Keys []jwk `json:"keys"`
}

// Cache fetches and time-caches the identity provider's public key set.
// The cached set is a single slot replaced wholesale on refresh; readers
// never observe a partially updated set. Implements domain.KeySetProvider.
type Cache struct {
	jwksURL string
	ttl     time.Duration
	client  *http.Client
	now     func() time.Time

	mu      sync.RWMutex
	current *domain.KeySet

	group singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the cache's time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithHTTPClient overrides the HTTP client used for fetches.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Cache) { c.client = client }
}

// NewCache creates a key set cache for the given JWKS endpoint.
func NewCache(jwksURL string, ttl time.Duration, opts ...Option) *Cache {
	c := &Cache{
		jwksURL: jwksURL,
		ttl:     ttl,
		client:  &http.Client{Timeout: 10 * time.Second},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetKeys returns the cached key set, fetching a fresh one when the cache is
// empty or older than the TTL. Concurrent callers during a refresh share a
// single fetch and receive the same set.
func (c *Cache) GetKeys(ctx context.Context) (*domain.KeySet, error) {
	c.mu.RLock()
	current := c.current
	c.mu.RUnlock()

	if current != nil && c.now().Sub(current.FetchedAt) < c.ttl {
		return current, nil
	}

	return c.Refresh(ctx)
}

// Refresh fetches the key set unconditionally and replaces the cached slot.
func (c *Cache) Refresh(ctx context.Context) (*domain.KeySet, error) {
	set, err, _ := c.group.Do("jwks", func() (any, error) {
		fetched, err := c.fetch(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.current = fetched
		c.mu.Unlock()

		return fetched, nil
	})
	if err != nil {
		return nil, err
	}
	return set.(*domain.KeySet), nil
}

func (c *Cache) fetch(ctx context.Context) (*domain.KeySet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.jwksURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrKeySetUnavailable, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrKeySetUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: jwks endpoint returned status %d", domain.ErrKeySetUnavailable, resp.StatusCode)
	}

	var doc jwksDocument
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: malformed jwks body: %w", domain.ErrKeySetUnavailable, err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" || (k.Use != "" && k.Use != "sig") || k.Kid == "" {
			continue
		}
		pub, err := k.rsaPublicKey()
		if err != nil {
			// One unparsable key should not poison the whole set.
			continue
		}
		keys[k.Kid] = pub
	}

	return &domain.KeySet{
		Keys:      keys,
		FetchedAt: c.now(),
	}, nil
}

// rsaPublicKey converts the JWK modulus/exponent to a Go public key.
func (k *jwk) rsaPublicKey() (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("decode modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("decode exponent: %w", err)
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(new(big.Int).SetBytes(eBytes).Int64()),
	}, nil
}
