package usecase

import (
	"context"
	"errors"
	"log/slog"

	"fin-hub/internal/domain"
)

// findOrCreateUser resolves the stored user for a verified subject, creating
// the record on first sight. Losing the create race to a concurrent request
// falls back to a second lookup. Email drift between the identity provider
// and storage is deliberately not reconciled here; the stored email wins.
func findOrCreateUser(ctx context.Context, users domain.UserRepository, subject, email string, logger *slog.Logger) (*domain.LocalUser, error) {
	user, err := users.FindBySubject(ctx, subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	user = &domain.LocalUser{
		Subject: subject,
		Email:   email,
	}
	err = users.Create(ctx, user)
	if errors.Is(err, domain.ErrUserExists) {
		return users.FindBySubject(ctx, subject)
	}
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "created user", "subject", subject)
	return user, nil
}
