package models

import "time"

// CollectionVisibility scopes who can see a collection.
type CollectionVisibility string

const (
	VisibilityShop     CollectionVisibility = "shop"
	VisibilityPersonal CollectionVisibility = "personal"
)

// SharePermission is the access level granted by a collection share.
type SharePermission string

const (
	PermissionRead      SharePermission = "read"
	PermissionReadWrite SharePermission = "readwrite"
)

// Collection is a named, shareable group of recommended products.
type Collection struct {
	ID          string               `db:"id" json:"id"`
	ShopID      string               `db:"shop_id" json:"shop_id"`
	OwnerID     string               `db:"owner_id" json:"owner_id"`
	Title       string               `db:"title" json:"title"`
	Slug        string               `db:"slug" json:"slug"`
	Description string               `db:"description" json:"description,omitempty"`
	Visibility  CollectionVisibility `db:"visibility" json:"visibility"`
	Active      bool                 `db:"active" json:"active"`
	CreatedAt   time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time            `db:"updated_at" json:"updated_at"`
}

// CollectionShare grants one user access to one personal collection.
// Upsert-on-conflict keeps at most one row per (collection, user).
type CollectionShare struct {
	ID           string          `db:"id" json:"id"`
	CollectionID string          `db:"collection_id" json:"collection_id"`
	UserID       string          `db:"user_id" json:"user_id"`
	Permission   SharePermission `db:"permission" json:"permission"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// CreateCollectionRequest is the payload for creating a collection.
type CreateCollectionRequest struct {
	Title       string               `json:"title" validate:"required,min=1,max=160"`
	Description string               `json:"description" validate:"omitempty,max=1000"`
	Visibility  CollectionVisibility `json:"visibility" validate:"required,oneof=shop personal"`
}

// UpdateCollectionRequest is the payload for updating a collection.
type UpdateCollectionRequest struct {
	Title       string               `json:"title" validate:"required,min=1,max=160"`
	Description string               `json:"description" validate:"omitempty,max=1000"`
	Visibility  CollectionVisibility `json:"visibility" validate:"required,oneof=shop personal"`
	Active      bool                 `json:"active"`
}

// ShareCollectionRequest grants or updates a share for a user.
type ShareCollectionRequest struct {
	UserID     string          `json:"user_id" validate:"required"`
	Permission SharePermission `json:"permission" validate:"required,oneof=read readwrite"`
}
