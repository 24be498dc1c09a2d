package usecase

import (
	"context"
	"log/slog"

	"fin-hub/internal/domain"
)

// CreateLinkToken requests a Link token for the current user.
type CreateLinkToken struct {
	linker domain.AccountLinker
	logger *slog.Logger
}

// NewCreateLinkToken creates a new CreateLinkToken usecase.
func NewCreateLinkToken(a domain.AccountLinker, l *slog.Logger) *CreateLinkToken {
	return &CreateLinkToken{linker: a, logger: l}
}

// Execute creates a Link token bound to the user's subject.
func (uc *CreateLinkToken) Execute(ctx context.Context, user *domain.LocalUser) (string, error) {
	token, err := uc.linker.CreateLinkToken(ctx, user.Subject)
	if err != nil {
		uc.logger.ErrorContext(ctx, "failed to create link token", "error", err, "subject", user.Subject)
		return "", err
	}
	return token, nil
}
