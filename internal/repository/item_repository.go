package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/qrshelf/qrshelf-api/internal/models"
)

// ItemRepository provides database access for recommended products.
type ItemRepository struct {
	db *sqlx.DB
}

// NewItemRepository creates a new instance of ItemRepository.
func NewItemRepository(db *sqlx.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// Create inserts a new item at the end of its collection's sort order.
func (r *ItemRepository) Create(ctx context.Context, item *models.Item) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	if item.CollectionID != nil {
		const orderQuery = `SELECT COALESCE(MAX(sort_order), 0) + 1 FROM items WHERE collection_id = $1`
		if err := r.db.GetContext(ctx, &item.SortOrder, orderQuery, *item.CollectionID); err != nil {
			return fmt.Errorf("next sort order: %w", err)
		}
	}

	const query = `INSERT INTO items (id, collection_id, shop_id, title, note, product_url, image_url, sort_order, active, created_at, updated_at) VALUES (:id, :collection_id, :shop_id, :title, :note, :product_url, :image_url, :sort_order, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("create item: %w", err)
	}
	return nil
}

// FindByID returns an item by identifier.
func (r *ItemRepository) FindByID(ctx context.Context, id string) (*models.Item, error) {
	const query = `SELECT id, collection_id, shop_id, title, note, product_url, image_url, sort_order, active, created_at, updated_at FROM items WHERE id = $1 LIMIT 1`
	var item models.Item
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find item by id: %w", err)
	}
	return &item, nil
}

// ListByCollection returns a collection's items in sort order.
func (r *ItemRepository) ListByCollection(ctx context.Context, collectionID string) ([]models.Item, error) {
	const query = `SELECT id, collection_id, shop_id, title, note, product_url, image_url, sort_order, active, created_at, updated_at FROM items WHERE collection_id = $1 ORDER BY sort_order, created_at`
	var items []models.Item
	if err := r.db.SelectContext(ctx, &items, query, collectionID); err != nil {
		return nil, fmt.Errorf("list items by collection: %w", err)
	}
	return items, nil
}

// ListStandalone returns a shop's items that belong to no collection.
func (r *ItemRepository) ListStandalone(ctx context.Context, shopID string) ([]models.Item, error) {
	const query = `SELECT id, collection_id, shop_id, title, note, product_url, image_url, sort_order, active, created_at, updated_at FROM items WHERE shop_id = $1 AND collection_id IS NULL ORDER BY created_at DESC`
	var items []models.Item
	if err := r.db.SelectContext(ctx, &items, query, shopID); err != nil {
		return nil, fmt.Errorf("list standalone items: %w", err)
	}
	return items, nil
}

// Update persists mutable item fields.
func (r *ItemRepository) Update(ctx context.Context, item *models.Item) error {
	item.UpdatedAt = time.Now().UTC()
	const query = `UPDATE items SET title = :title, note = :note, product_url = :product_url, image_url = :image_url, sort_order = :sort_order, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// Delete removes an item.
func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM items WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}
