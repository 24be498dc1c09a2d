package usecase

import (
	"context"
	"log/slog"

	"fin-hub/internal/domain"
)

// GetProfile resolves the stored user for verified bearer claims, creating
// the record on first request.
type GetProfile struct {
	users  domain.UserRepository
	logger *slog.Logger
}

// NewGetProfile creates a new GetProfile usecase.
func NewGetProfile(u domain.UserRepository, l *slog.Logger) *GetProfile {
	return &GetProfile{users: u, logger: l}
}

// Execute finds or creates the user named by the claims.
func (uc *GetProfile) Execute(ctx context.Context, claims *domain.BearerClaims) (*domain.LocalUser, error) {
	if claims == nil || claims.Subject == "" {
		return nil, domain.ErrSubjectMissing
	}
	return findOrCreateUser(ctx, uc.users, claims.Subject, claims.Email, uc.logger)
}
