package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fin-hub/internal/domain"
)

// GetTransactions loads a linked item's transactions for a date range.
type GetTransactions struct {
	items  domain.ItemRepository
	cipher domain.TokenCipher
	linker domain.AccountLinker
	logger *slog.Logger
}

// NewGetTransactions creates a new GetTransactions usecase.
func NewGetTransactions(i domain.ItemRepository, c domain.TokenCipher, a domain.AccountLinker, l *slog.Logger) *GetTransactions {
	return &GetTransactions{items: i, cipher: c, linker: a, logger: l}
}

// Execute fetches transactions for the user's item. An item owned by a
// different user reports ErrItemNotFound: callers cannot probe for other
// users' items.
func (uc *GetTransactions) Execute(ctx context.Context, user *domain.LocalUser, itemID string, start, end time.Time, count int32) ([]domain.Transaction, error) {
	item, err := uc.items.FindByItemID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.Subject != user.Subject {
		uc.logger.WarnContext(ctx, "item access denied", "item_id", itemID, "subject", user.Subject)
		return nil, domain.ErrItemNotFound
	}

	accessToken, err := uc.cipher.Decrypt(item.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("decrypt access token: %w", err)
	}

	transactions, err := uc.linker.GetTransactions(ctx, accessToken, start, end, count)
	if err != nil {
		uc.logger.ErrorContext(ctx, "failed to fetch transactions", "error", err, "item_id", itemID)
		return nil, err
	}
	return transactions, nil
}
