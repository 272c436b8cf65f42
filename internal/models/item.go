package models

import "time"

// Item is a single recommended product, optionally inside a collection.
type Item struct {
	ID           string    `db:"id" json:"id"`
	CollectionID *string   `db:"collection_id" json:"collection_id,omitempty"`
	ShopID       string    `db:"shop_id" json:"shop_id"`
	Title        string    `db:"title" json:"title"`
	Note         string    `db:"note" json:"note,omitempty"`
	ProductURL   string    `db:"product_url" json:"product_url"`
	ImageURL     string    `db:"image_url" json:"image_url,omitempty"`
	SortOrder    int       `db:"sort_order" json:"sort_order"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// CreateItemRequest is the payload for adding an item.
type CreateItemRequest struct {
	CollectionID *string `json:"collection_id"`
	Title        string  `json:"title" validate:"required,min=1,max=200"`
	Note         string  `json:"note" validate:"omitempty,max=1000"`
	ProductURL   string  `json:"product_url" validate:"required,url"`
	ImageURL     string  `json:"image_url" validate:"omitempty,url"`
}

// UpdateItemRequest is the payload for updating an item.
type UpdateItemRequest struct {
	Title      string `json:"title" validate:"required,min=1,max=200"`
	Note       string `json:"note" validate:"omitempty,max=1000"`
	ProductURL string `json:"product_url" validate:"required,url"`
	ImageURL   string `json:"image_url" validate:"omitempty,url"`
	SortOrder  int    `json:"sort_order"`
	Active     bool   `json:"active"`
}
