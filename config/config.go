package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration
type Config struct {
	Port     string // Service port
	LogLevel string // Log level (debug/info/warn/error)

	Auth0Domain       string        // Identity provider domain, e.g. "tenant.us.auth0.com"
	Auth0Audience     string        // Expected `aud` claim of bearer tokens
	Auth0ClientID     string        // OAuth client id for the code exchange
	Auth0ClientSecret string        // OAuth client secret for the code exchange
	JWKSCacheTTL      time.Duration // Public key set cache TTL

	SessionTokenSecret string        // Symmetric secret for signing session tokens
	SessionTokenTTL    time.Duration // Session token (and cookie) lifetime
	CookieSecure       bool          // Secure attribute on the session cookie

	MongoURI      string // MongoDB connection string
	MongoDatabase string // Database name

	PlaidClientID string // Plaid client id
	PlaidSecret   string // Plaid environment secret
	PlaidEnv      string // "sandbox", "development" or "production"

	AccessTokenEncryptionKey string // Fernet key for encrypting stored aggregator tokens
}

// Issuer returns the expected `iss` claim of bearer tokens.
func (c *Config) Issuer() string {
	return fmt.Sprintf("https://%s/", c.Auth0Domain)
}

// JWKSURL returns the identity provider's published key set endpoint.
func (c *Config) JWKSURL() string {
	return c.Issuer() + ".well-known/jwks.json"
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	config := &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		Auth0Domain:       getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience:     getEnv("AUTH0_AUDIENCE", ""),
		Auth0ClientID:     getEnv("AUTH0_CLIENT_ID", ""),
		Auth0ClientSecret: getEnv("AUTH0_CLIENT_SECRET", ""),
		JWKSCacheTTL:      10 * time.Minute,

		SessionTokenSecret: getEnv("SESSION_TOKEN_SECRET", ""),
		SessionTokenTTL:    30 * time.Minute,
		CookieSecure:       true,

		MongoURI:      getEnv("MONGO_URI", ""),
		MongoDatabase: getEnv("MONGO_DATABASE", "finhub"),

		PlaidClientID: getEnv("PLAID_CLIENT_ID", ""),
		PlaidSecret:   getEnv("PLAID_SECRET", ""),
		PlaidEnv:      getEnv("PLAID_ENV", "sandbox"),

		AccessTokenEncryptionKey: getEnv("ACCESS_TOKEN_ENCRYPTION_KEY", ""),
	}

	// Parse JWKS_CACHE_TTL if provided
	if ttlStr := os.Getenv("JWKS_CACHE_TTL"); ttlStr != "" {
		duration, err := time.ParseDuration(ttlStr)
		if err != nil {
			return nil, fmt.Errorf("invalid JWKS_CACHE_TTL format: %w", err)
		}
		config.JWKSCacheTTL = duration
	}

	// Parse SESSION_TOKEN_TTL if provided
	if ttlStr := os.Getenv("SESSION_TOKEN_TTL"); ttlStr != "" {
		duration, err := time.ParseDuration(ttlStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_TOKEN_TTL format: %w", err)
		}
		config.SessionTokenTTL = duration
	}

	// Parse COOKIE_SECURE if provided
	if secureStr := os.Getenv("COOKIE_SECURE"); secureStr != "" {
		secure, err := strconv.ParseBool(secureStr)
		if err != nil {
			return nil, fmt.Errorf("invalid COOKIE_SECURE format: %w", err)
		}
		config.CookieSecure = secure
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks if the configuration is valid. Startup fails when any
// required value is absent; secrets in particular have no silent defaults.
func (c *Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"AUTH0_DOMAIN", c.Auth0Domain},
		{"AUTH0_AUDIENCE", c.Auth0Audience},
		{"AUTH0_CLIENT_ID", c.Auth0ClientID},
		{"AUTH0_CLIENT_SECRET", c.Auth0ClientSecret},
		{"SESSION_TOKEN_SECRET", c.SessionTokenSecret},
		{"MONGO_URI", c.MongoURI},
		{"PLAID_CLIENT_ID", c.PlaidClientID},
		{"PLAID_SECRET", c.PlaidSecret},
		{"ACCESS_TOKEN_ENCRYPTION_KEY", c.AccessTokenEncryptionKey},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s cannot be empty", r.name)
		}
	}

	if c.JWKSCacheTTL <= 0 {
		return fmt.Errorf("JWKS_CACHE_TTL must be positive")
	}
	if c.SessionTokenTTL <= 0 {
		return fmt.Errorf("SESSION_TOKEN_TTL must be positive")
	}

	switch c.PlaidEnv {
	case "sandbox", "development", "production":
	default:
		return fmt.Errorf("unknown PLAID_ENV %q", c.PlaidEnv)
	}

	return nil
}

// getEnv retrieves an environment variable or returns a fallback value
func getEnv(key, fallback string) string {
	// Check for _FILE suffix (Docker Secrets support)
	if fileValue := os.Getenv(key + "_FILE"); fileValue != "" {
		content, err := os.ReadFile(fileValue)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
