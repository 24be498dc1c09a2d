package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fin-hub/internal/domain"
)

// ResolveSession turns a raw session cookie value into the stored user.
type ResolveSession struct {
	sessions domain.SessionCodec
	users    domain.UserRepository
	logger   *slog.Logger
}

// NewResolveSession creates a new ResolveSession usecase.
func NewResolveSession(s domain.SessionCodec, u domain.UserRepository, l *slog.Logger) *ResolveSession {
	return &ResolveSession{sessions: s, users: u, logger: l}
}

// Execute validates the session token and loads its user. An absent token is
// ErrUnauthenticated; a present-but-bad token, or a token whose user no
// longer exists, is ErrSessionInvalid so callers know to clear the cookie.
func (uc *ResolveSession) Execute(ctx context.Context, rawToken string) (*domain.LocalUser, error) {
	if rawToken == "" {
		return nil, domain.ErrUnauthenticated
	}

	claims, err := uc.sessions.Validate(rawToken)
	if err != nil {
		return nil, err
	}

	user, err := uc.users.FindBySubject(ctx, claims.Subject)
	if errors.Is(err, domain.ErrUserNotFound) {
		uc.logger.WarnContext(ctx, "session references unknown user", "subject", claims.Subject)
		return nil, fmt.Errorf("%w: %w", domain.ErrSessionInvalid, err)
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// ExecuteOptional resolves the session if one is present and valid, and
// returns (nil, nil) for an absent or rejected token. Storage failures still
// surface as errors.
func (uc *ResolveSession) ExecuteOptional(ctx context.Context, rawToken string) (*domain.LocalUser, error) {
	user, err := uc.Execute(ctx, rawToken)
	if errors.Is(err, domain.ErrUnauthenticated) || errors.Is(err, domain.ErrSessionInvalid) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
