package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"fin-hub/internal/domain"
)

// ExchangePublicToken trades a Link public token for item credentials and
// stores the item with its access token encrypted.
type ExchangePublicToken struct {
	linker domain.AccountLinker
	items  domain.ItemRepository
	cipher domain.TokenCipher
	logger *slog.Logger
}

// NewExchangePublicToken creates a new ExchangePublicToken usecase.
func NewExchangePublicToken(a domain.AccountLinker, i domain.ItemRepository, c domain.TokenCipher, l *slog.Logger) *ExchangePublicToken {
	return &ExchangePublicToken{linker: a, items: i, cipher: c, logger: l}
}

// Execute exchanges the public token and persists the resulting item for the
// user. The plaintext access token never leaves this function.
func (uc *ExchangePublicToken) Execute(ctx context.Context, user *domain.LocalUser, publicToken, institutionName string) (*domain.PlaidItem, error) {
	itemID, accessToken, err := uc.linker.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		uc.logger.ErrorContext(ctx, "public token exchange failed", "error", err, "subject", user.Subject)
		return nil, err
	}

	encrypted, err := uc.cipher.Encrypt(accessToken)
	if err != nil {
		return nil, fmt.Errorf("encrypt access token: %w", err)
	}

	item := &domain.PlaidItem{
		ItemID:          itemID,
		Subject:         user.Subject,
		AccessToken:     encrypted,
		InstitutionName: institutionName,
	}
	if err := uc.items.Upsert(ctx, item); err != nil {
		uc.logger.ErrorContext(ctx, "failed to store item", "error", err, "item_id", itemID)
		return nil, err
	}

	uc.logger.InfoContext(ctx, "linked item", "item_id", itemID, "subject", user.Subject)
	return item, nil
}
