package models

import "time"

// CollectionSubscriber is an email subscribed to updates for a collection.
// Unique on (collection_id, email); re-subscribing clears the flag.
type CollectionSubscriber struct {
	ID           string    `db:"id" json:"id"`
	CollectionID string    `db:"collection_id" json:"collection_id"`
	Email        string    `db:"email" json:"email"`
	Unsubscribed bool      `db:"unsubscribed" json:"unsubscribed"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// SubscribeRequest is the public subscription payload.
type SubscribeRequest struct {
	Email        string `json:"email" validate:"required,email"`
	CollectionID string `json:"collection_id" validate:"required"`
}
