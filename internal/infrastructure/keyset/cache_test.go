package keyset

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"fin-hub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jwksBody(t *testing.T, kids ...string) []byte {
	t.Helper()

	doc := map[string]any{}
	keys := make([]map[string]string, 0, len(kids))
	for _, kid := range kids {
		priv, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		keys = append(keys, map[string]string{
			"kty": "RSA",
			"use": "sig",
			"kid": kid,
			"n":   base64.RawURLEncoding.EncodeToString(priv.PublicKey.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(priv.PublicKey.E)).Bytes()),
		})
	}
	doc["keys"] = keys

	body, err := json.Marshal(doc)
	require.NoError(t, err)
	return body
}

func TestCache_GetKeys_FetchesAndCaches(t *testing.T) {
	var hits atomic.Int64
	body := jwksBody(t, "key-1", "key-2")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}))
	defer srv.Close()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cache := NewCache(srv.URL, 10*time.Minute, WithClock(func() time.Time { return now }))

	set, err := cache.GetKeys(context.Background())
	require.NoError(t, err)
	assert.Len(t, set.Keys, 2)
	_, ok := set.Key("key-1")
	assert.True(t, ok)
	_, ok = set.Key("key-2")
	assert.True(t, ok)
	_, ok = set.Key("key-3")
	assert.False(t, ok)
	assert.Equal(t, now, set.FetchedAt)

	// A second call inside the TTL serves the cached set.
	again, err := cache.GetKeys(context.Background())
	require.NoError(t, err)
	assert.Same(t, set, again)
	assert.Equal(t, int64(1), hits.Load())
}

func TestCache_GetKeys_RefetchesAfterTTL(t *testing.T) {
	var hits atomic.Int64
	body := jwksBody(t, "key-1")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}))
	defer srv.Close()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cache := NewCache(srv.URL, 10*time.Minute, WithClock(func() time.Time { return now }))

	_, err := cache.GetKeys(context.Background())
	require.NoError(t, err)

	now = now.Add(11 * time.Minute)

	set, err := cache.GetKeys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, now, set.FetchedAt)
	assert.Equal(t, int64(2), hits.Load())
}

func TestCache_Refresh_ReplacesSetWholesale(t *testing.T) {
	first := jwksBody(t, "old-key")
	second := jwksBody(t, "new-key")
	var hits atomic.Int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if hits.Add(1) == 1 {
			w.Write(first)
			return
		}
		w.Write(second)
	}))
	defer srv.Close()

	cache := NewCache(srv.URL, 10*time.Minute)

	set, err := cache.GetKeys(context.Background())
	require.NoError(t, err)
	_, ok := set.Key("old-key")
	assert.True(t, ok)

	set, err = cache.Refresh(context.Background())
	require.NoError(t, err)
	_, ok = set.Key("old-key")
	assert.False(t, ok)
	_, ok = set.Key("new-key")
	assert.True(t, ok)
}

func TestCache_GetKeys_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cache := NewCache(srv.URL, 10*time.Minute)

	_, err := cache.GetKeys(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrKeySetUnavailable)
	assert.ErrorContains(t, err, "status 500")
}

func TestCache_GetKeys_SkipsNonSigningKeys(t *testing.T) {
	doc := map[string]any{
		"keys": []map[string]string{
			{"kty": "EC", "kid": "ec-key", "use": "sig"},
			{"kty": "RSA", "kid": "enc-key", "use": "enc", "n": "AQAB", "e": "AQAB"},
			{"kty": "RSA", "use": "sig", "n": "AQAB", "e": "AQAB"}, // kid missing
		},
	}
	body, err := json.Marshal(doc)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}))
	defer srv.Close()

	cache := NewCache(srv.URL, 10*time.Minute)

	set, err := cache.GetKeys(context.Background())
	require.NoError(t, err)
	assert.Empty(t, set.Keys)
}
