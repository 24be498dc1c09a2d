package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fin-hub/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ItemRepository stores linked aggregator items. Implements
// domain.ItemRepository.
type ItemRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewItemRepository creates an item repository on the given database.
func NewItemRepository(db *mongo.Database) *ItemRepository {
	return &ItemRepository{
		collection: db.Collection(itemsCollection),
		now:        time.Now,
	}
}

// FindByItemID looks up a linked item by its aggregator item id.
func (r *ItemRepository) FindByItemID(ctx context.Context, itemID string) (*domain.PlaidItem, error) {
	var item domain.PlaidItem
	err := r.collection.FindOne(ctx, bson.M{"item_id": itemID}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongodb: find item: %w", err)
	}
	return &item, nil
}

// Upsert stores the item, replacing an existing document with the same
// item id. Re-linking the same institution refreshes the stored credentials
// instead of duplicating the item.
func (r *ItemRepository) Upsert(ctx context.Context, item *domain.PlaidItem) error {
	now := r.now()
	item.UpdatedAt = now
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}

	_, err := r.collection.ReplaceOne(ctx,
		bson.M{"item_id": item.ItemID},
		item,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("mongodb: upsert item: %w", err)
	}
	return nil
}
