package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/qrshelf/qrshelf-api/internal/models"
)

// SubscriberRepository provides database access for collection subscribers.
type SubscriberRepository struct {
	db *sqlx.DB
}

// NewSubscriberRepository creates a new instance of SubscriberRepository.
func NewSubscriberRepository(db *sqlx.DB) *SubscriberRepository {
	return &SubscriberRepository{db: db}
}

// Upsert subscribes an email to a collection, re-subscribing anyone who
// previously unsubscribed.
func (r *SubscriberRepository) Upsert(ctx context.Context, collectionID, email string) error {
	sub := &models.CollectionSubscriber{
		ID:           uuid.NewString(),
		CollectionID: collectionID,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Unsubscribed: false,
		CreatedAt:    time.Now().UTC(),
	}
	const query = `
INSERT INTO collection_subscribers (id, collection_id, email, unsubscribed, created_at)
VALUES (:id, :collection_id, :email, :unsubscribed, :created_at)
ON CONFLICT (collection_id, email) DO UPDATE SET unsubscribed = FALSE`
	if _, err := r.db.NamedExecContext(ctx, query, sub); err != nil {
		return fmt.Errorf("upsert subscriber: %w", err)
	}
	return nil
}

// ListActiveEmails returns the active subscriber emails for a collection.
func (r *SubscriberRepository) ListActiveEmails(ctx context.Context, collectionID string) ([]string, error) {
	const query = `SELECT email FROM collection_subscribers WHERE collection_id = $1 AND unsubscribed = FALSE ORDER BY created_at`
	var emails []string
	if err := r.db.SelectContext(ctx, &emails, query, collectionID); err != nil {
		return nil, fmt.Errorf("list subscriber emails: %w", err)
	}
	return emails, nil
}
