package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"fin-hub/internal/domain"
)

// LoginResult holds the data returned by Login.
type LoginResult struct {
	Token string
	User  *domain.LocalUser
}

// Login orchestrates the authorization-code login flow: exchange the code,
// find or create the local user, and issue a session token.
type Login struct {
	exchanger domain.CodeExchanger
	users     domain.UserRepository
	sessions  domain.SessionCodec
	logger    *slog.Logger
}

// NewLogin creates a new Login usecase.
func NewLogin(e domain.CodeExchanger, u domain.UserRepository, s domain.SessionCodec, l *slog.Logger) *Login {
	return &Login{exchanger: e, users: u, sessions: s, logger: l}
}

// Execute runs the login flow for an authorization code.
func (uc *Login) Execute(ctx context.Context, code, redirectURI string) (*LoginResult, error) {
	identity, err := uc.exchanger.Exchange(ctx, code, redirectURI)
	if err != nil {
		uc.logger.WarnContext(ctx, "code exchange failed", "error", err)
		return nil, err
	}

	if identity.Subject == "" || identity.Email == "" {
		return nil, domain.ErrIdentityClaimsIncomplete
	}

	user, err := findOrCreateUser(ctx, uc.users, identity.Subject, identity.Email, uc.logger)
	if err != nil {
		uc.logger.ErrorContext(ctx, "failed to resolve user", "error", err, "subject", identity.Subject)
		return nil, err
	}

	token, err := uc.sessions.Issue(user.Subject, map[string]any{"email": user.Email})
	if err != nil {
		uc.logger.ErrorContext(ctx, "failed to issue session token", "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrTokenGeneration, err)
	}

	uc.logger.InfoContext(ctx, "login succeeded", "subject", user.Subject)
	return &LoginResult{Token: token, User: user}, nil
}
