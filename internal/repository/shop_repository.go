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

// ShopRepository provides database access for shops and their memberships.
type ShopRepository struct {
	db *sqlx.DB
}

// NewShopRepository creates a new instance of ShopRepository.
func NewShopRepository(db *sqlx.DB) *ShopRepository {
	return &ShopRepository{db: db}
}

// Create inserts a shop together with the creator's owner membership.
func (r *ShopRepository) Create(ctx context.Context, shop *models.Shop) error {
	if shop.ID == "" {
		shop.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	shop.CreatedAt = now
	shop.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create shop: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const shopQuery = `INSERT INTO shops (id, name, slug, description, logo_url, primary_color, secondary_color, owner_id, created_at, updated_at) VALUES (:id, :name, :slug, :description, :logo_url, :primary_color, :secondary_color, :owner_id, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, shopQuery, shop); err != nil {
		return fmt.Errorf("create shop: %w", err)
	}

	const memberQuery = `INSERT INTO shop_members (id, shop_id, user_id, role, invited_email, accepted, created_at) VALUES ($1, $2, $3, $4, '', TRUE, $5)`
	if _, err := tx.ExecContext(ctx, memberQuery, uuid.NewString(), shop.ID, shop.OwnerID, models.RoleOwner, now); err != nil {
		return fmt.Errorf("create owner membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create shop: %w", err)
	}
	return nil
}

// FindByID returns a shop by identifier.
func (r *ShopRepository) FindByID(ctx context.Context, id string) (*models.Shop, error) {
	const query = `SELECT id, name, slug, description, logo_url, primary_color, secondary_color, owner_id, created_at, updated_at FROM shops WHERE id = $1 LIMIT 1`
	var shop models.Shop
	if err := r.db.GetContext(ctx, &shop, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find shop by id: %w", err)
	}
	return &shop, nil
}

// FindBySlug returns a shop by its public slug.
func (r *ShopRepository) FindBySlug(ctx context.Context, slug string) (*models.Shop, error) {
	const query = `SELECT id, name, slug, description, logo_url, primary_color, secondary_color, owner_id, created_at, updated_at FROM shops WHERE slug = $1 LIMIT 1`
	var shop models.Shop
	if err := r.db.GetContext(ctx, &shop, query, slug); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find shop by slug: %w", err)
	}
	return &shop, nil
}

// ListForUser returns all shops where the user holds an accepted membership.
func (r *ShopRepository) ListForUser(ctx context.Context, userID string) ([]models.Shop, error) {
	const query = `
SELECT s.id, s.name, s.slug, s.description, s.logo_url, s.primary_color, s.secondary_color, s.owner_id, s.created_at, s.updated_at
FROM shops s
JOIN shop_members m ON m.shop_id = s.id
WHERE m.user_id = $1 AND m.accepted = TRUE
ORDER BY s.created_at`
	var shops []models.Shop
	if err := r.db.SelectContext(ctx, &shops, query, userID); err != nil {
		return nil, fmt.Errorf("list shops for user: %w", err)
	}
	return shops, nil
}

// Update persists mutable branding fields.
func (r *ShopRepository) Update(ctx context.Context, shop *models.Shop) error {
	shop.UpdatedAt = time.Now().UTC()
	const query = `UPDATE shops SET name = :name, description = :description, logo_url = :logo_url, primary_color = :primary_color, secondary_color = :secondary_color, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, shop); err != nil {
		return fmt.Errorf("update shop: %w", err)
	}
	return nil
}

// FindRole returns the accepted role for (userID, shopID), or sql.ErrNoRows
// when the user is not an accepted member.
func (r *ShopRepository) FindRole(ctx context.Context, userID, shopID string) (models.ShopRole, error) {
	const query = `SELECT role FROM shop_members WHERE shop_id = $1 AND user_id = $2 AND accepted = TRUE LIMIT 1`
	var role models.ShopRole
	if err := r.db.GetContext(ctx, &role, query, shopID, userID); err != nil {
		if err == sql.ErrNoRows {
			return "", err
		}
		return "", fmt.Errorf("find shop role: %w", err)
	}
	return role, nil
}

// ListMembers returns all membership rows for a shop, including pending invites.
func (r *ShopRepository) ListMembers(ctx context.Context, shopID string) ([]models.ShopMemberDetail, error) {
	const query = `
SELECT m.id, m.shop_id, m.user_id, m.role, m.invited_email, m.accepted, m.created_at,
	u.display_name, u.email
FROM shop_members m
LEFT JOIN users u ON u.id = m.user_id
WHERE m.shop_id = $1
ORDER BY m.created_at`
	var members []models.ShopMemberDetail
	if err := r.db.SelectContext(ctx, &members, query, shopID); err != nil {
		return nil, fmt.Errorf("list shop members: %w", err)
	}
	return members, nil
}

// InviteMember upserts a pending invite keyed by (shop, email).
func (r *ShopRepository) InviteMember(ctx context.Context, shopID, email string, role models.ShopRole) (*models.ShopMember, error) {
	member := &models.ShopMember{
		ID:           uuid.NewString(),
		ShopID:       shopID,
		Role:         role,
		InvitedEmail: email,
		Accepted:     false,
		CreatedAt:    time.Now().UTC(),
	}
	const query = `
INSERT INTO shop_members (id, shop_id, user_id, role, invited_email, accepted, created_at)
VALUES ($1, $2, NULL, $3, $4, FALSE, $5)
ON CONFLICT (shop_id, invited_email) WHERE user_id IS NULL
DO UPDATE SET role = EXCLUDED.role`
	if _, err := r.db.ExecContext(ctx, query, member.ID, shopID, role, email, member.CreatedAt); err != nil {
		return nil, fmt.Errorf("invite member: %w", err)
	}
	return member, nil
}

// AcceptInvite binds a pending invite matching the user's email to the user.
func (r *ShopRepository) AcceptInvite(ctx context.Context, shopID, userID, email string) error {
	const query = `UPDATE shop_members SET user_id = $3, accepted = TRUE WHERE shop_id = $1 AND invited_email = $2 AND accepted = FALSE`
	res, err := r.db.ExecContext(ctx, query, shopID, email, userID)
	if err != nil {
		return fmt.Errorf("accept invite: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateMemberRole changes the role on a membership row.
func (r *ShopRepository) UpdateMemberRole(ctx context.Context, memberID string, role models.ShopRole) error {
	const query = `UPDATE shop_members SET role = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, memberID, role); err != nil {
		return fmt.Errorf("update member role: %w", err)
	}
	return nil
}

// FindMember returns a membership row by id.
func (r *ShopRepository) FindMember(ctx context.Context, memberID string) (*models.ShopMember, error) {
	const query = `SELECT id, shop_id, user_id, role, invited_email, accepted, created_at FROM shop_members WHERE id = $1 LIMIT 1`
	var member models.ShopMember
	if err := r.db.GetContext(ctx, &member, query, memberID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find member: %w", err)
	}
	return &member, nil
}

// RemoveMember deletes a membership row.
func (r *ShopRepository) RemoveMember(ctx context.Context, memberID string) error {
	const query = `DELETE FROM shop_members WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, memberID); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return nil
}
