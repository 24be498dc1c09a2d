package usecase

import (
	"context"
	"log/slog"

	"fin-hub/internal/domain"
)

// CreateSandboxItem seeds a sandbox institution item for the user, optionally
// with a caller-provided transaction history. Composes the sandbox public
// token flow with the regular exchange-and-store flow.
type CreateSandboxItem struct {
	linker   domain.AccountLinker
	exchange *ExchangePublicToken
	logger   *slog.Logger
}

// NewCreateSandboxItem creates a new CreateSandboxItem usecase.
func NewCreateSandboxItem(a domain.AccountLinker, e *ExchangePublicToken, l *slog.Logger) *CreateSandboxItem {
	return &CreateSandboxItem{linker: a, exchange: e, logger: l}
}

// Execute creates and links a sandbox item.
func (uc *CreateSandboxItem) Execute(ctx context.Context, user *domain.LocalUser, institutionID string, overrideHistory []map[string]any) (*domain.PlaidItem, error) {
	publicToken, err := uc.linker.CreateSandboxPublicToken(ctx, institutionID, overrideHistory)
	if err != nil {
		uc.logger.ErrorContext(ctx, "failed to create sandbox public token", "error", err, "institution_id", institutionID)
		return nil, err
	}

	return uc.exchange.Execute(ctx, user, publicToken, institutionID)
}
