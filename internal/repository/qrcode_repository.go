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

// QrCodeRepository provides database access for QR codes.
type QrCodeRepository struct {
	db *sqlx.DB
}

// NewQrCodeRepository creates a new instance of QrCodeRepository.
func NewQrCodeRepository(db *sqlx.DB) *QrCodeRepository {
	return &QrCodeRepository{db: db}
}

// Create inserts a new QR code.
func (r *QrCodeRepository) Create(ctx context.Context, qr *models.QrCode) error {
	if qr.ID == "" {
		qr.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	qr.CreatedAt = now
	qr.UpdatedAt = now

	const query = `INSERT INTO qr_codes (id, code, label, collection_id, item_id, shop_id, redirect_path, created_at, updated_at) VALUES (:id, :code, :label, :collection_id, :item_id, :shop_id, :redirect_path, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, qr); err != nil {
		return fmt.Errorf("create qr code: %w", err)
	}
	return nil
}

// FindByID returns a QR code row by identifier.
func (r *QrCodeRepository) FindByID(ctx context.Context, id string) (*models.QrCode, error) {
	const query = `SELECT id, code, label, collection_id, item_id, shop_id, redirect_path, created_at, updated_at FROM qr_codes WHERE id = $1 LIMIT 1`
	var qr models.QrCode
	if err := r.db.GetContext(ctx, &qr, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find qr code by id: %w", err)
	}
	return &qr, nil
}

// ResolveByCode returns a QR code with the slugs needed to build its
// landing path. The shop slug comes from the code's own shop; the
// collection slug is joined when the code targets a collection.
func (r *QrCodeRepository) ResolveByCode(ctx context.Context, code string) (*models.ResolvedQrCode, error) {
	const query = `
SELECT q.id, q.code, q.collection_id, q.item_id, q.redirect_path,
	s.slug AS shop_slug,
	c.slug AS collection_slug
FROM qr_codes q
LEFT JOIN shops s ON s.id = q.shop_id
LEFT JOIN collections c ON c.id = q.collection_id
WHERE q.code = $1
LIMIT 1`
	var resolved models.ResolvedQrCode
	if err := r.db.GetContext(ctx, &resolved, query, code); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("resolve qr code: %w", err)
	}
	return &resolved, nil
}

// ListByShop returns a shop's QR codes, newest first.
func (r *QrCodeRepository) ListByShop(ctx context.Context, shopID string) ([]models.QrCode, error) {
	const query = `SELECT id, code, label, collection_id, item_id, shop_id, redirect_path, created_at, updated_at FROM qr_codes WHERE shop_id = $1 ORDER BY created_at DESC`
	var codes []models.QrCode
	if err := r.db.SelectContext(ctx, &codes, query, shopID); err != nil {
		return nil, fmt.Errorf("list qr codes: %w", err)
	}
	return codes, nil
}

// CodeExists reports whether a short code is already taken.
func (r *QrCodeRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM qr_codes WHERE code = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, code); err != nil {
		return false, fmt.Errorf("check code exists: %w", err)
	}
	return exists, nil
}

// Delete removes a QR code. Scan events keep their rows; analytics joins
// tolerate the dangling reference.
func (r *QrCodeRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM qr_codes WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete qr code: %w", err)
	}
	return nil
}
