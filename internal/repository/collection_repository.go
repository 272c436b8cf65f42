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

// CollectionRepository provides database access for collections and shares.
type CollectionRepository struct {
	db *sqlx.DB
}

// NewCollectionRepository creates a new instance of CollectionRepository.
func NewCollectionRepository(db *sqlx.DB) *CollectionRepository {
	return &CollectionRepository{db: db}
}

// Create inserts a new collection.
func (r *CollectionRepository) Create(ctx context.Context, c *models.Collection) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	const query = `INSERT INTO collections (id, shop_id, owner_id, title, slug, description, visibility, active, created_at, updated_at) VALUES (:id, :shop_id, :owner_id, :title, :slug, :description, :visibility, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, c); err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	return nil
}

// FindByID returns a collection by identifier.
func (r *CollectionRepository) FindByID(ctx context.Context, id string) (*models.Collection, error) {
	const query = `SELECT id, shop_id, owner_id, title, slug, description, visibility, active, created_at, updated_at FROM collections WHERE id = $1 LIMIT 1`
	var c models.Collection
	if err := r.db.GetContext(ctx, &c, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find collection by id: %w", err)
	}
	return &c, nil
}

// ListByShop returns all collections belonging to a shop.
func (r *CollectionRepository) ListByShop(ctx context.Context, shopID string) ([]models.Collection, error) {
	const query = `SELECT id, shop_id, owner_id, title, slug, description, visibility, active, created_at, updated_at FROM collections WHERE shop_id = $1 ORDER BY created_at DESC`
	var collections []models.Collection
	if err := r.db.SelectContext(ctx, &collections, query, shopID); err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return collections, nil
}

// Update persists mutable collection fields.
func (r *CollectionRepository) Update(ctx context.Context, c *models.Collection) error {
	c.UpdatedAt = time.Now().UTC()
	const query = `UPDATE collections SET title = :title, slug = :slug, description = :description, visibility = :visibility, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, c); err != nil {
		return fmt.Errorf("update collection: %w", err)
	}
	return nil
}

// Delete removes a collection and, via cascading constraints, its shares.
func (r *CollectionRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM collections WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	return nil
}

// ListShares returns all share rows for a collection.
func (r *CollectionRepository) ListShares(ctx context.Context, collectionID string) ([]models.CollectionShare, error) {
	const query = `SELECT id, collection_id, user_id, permission, created_at FROM collection_shares WHERE collection_id = $1`
	var shares []models.CollectionShare
	if err := r.db.SelectContext(ctx, &shares, query, collectionID); err != nil {
		return nil, fmt.Errorf("list collection shares: %w", err)
	}
	return shares, nil
}

// UpsertShare grants or updates one user's access to a collection. The
// unique (collection_id, user_id) constraint keeps at most one row per pair.
func (r *CollectionRepository) UpsertShare(ctx context.Context, share *models.CollectionShare) error {
	if share.ID == "" {
		share.ID = uuid.NewString()
	}
	if share.CreatedAt.IsZero() {
		share.CreatedAt = time.Now().UTC()
	}
	const query = `
INSERT INTO collection_shares (id, collection_id, user_id, permission, created_at)
VALUES (:id, :collection_id, :user_id, :permission, :created_at)
ON CONFLICT (collection_id, user_id) DO UPDATE SET permission = EXCLUDED.permission`
	if _, err := r.db.NamedExecContext(ctx, query, share); err != nil {
		return fmt.Errorf("upsert collection share: %w", err)
	}
	return nil
}

// DeleteShare revokes one user's access to a collection.
func (r *CollectionRepository) DeleteShare(ctx context.Context, collectionID, userID string) error {
	const query = `DELETE FROM collection_shares WHERE collection_id = $1 AND user_id = $2`
	if _, err := r.db.ExecContext(ctx, query, collectionID, userID); err != nil {
		return fmt.Errorf("delete collection share: %w", err)
	}
	return nil
}
