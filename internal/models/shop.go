package models

import "time"

// ShopRole represents a member's role within a shop.
type ShopRole string

const (
	RoleOwner  ShopRole = "owner"
	RoleAdmin  ShopRole = "admin"
	RoleMember ShopRole = "member"
)

// Shop is a tenant owning collections, items and QR codes.
type Shop struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Slug           string    `db:"slug" json:"slug"`
	Description    string    `db:"description" json:"description,omitempty"`
	LogoURL        string    `db:"logo_url" json:"logo_url,omitempty"`
	PrimaryColor   string    `db:"primary_color" json:"primary_color,omitempty"`
	SecondaryColor string    `db:"secondary_color" json:"secondary_color,omitempty"`
	OwnerID        string    `db:"owner_id" json:"owner_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// ShopMember links a user (or a pending invite) to a shop with a role.
// At most one accepted membership row exists per (shop, user) pair.
type ShopMember struct {
	ID           string    `db:"id" json:"id"`
	ShopID       string    `db:"shop_id" json:"shop_id"`
	UserID       *string   `db:"user_id" json:"user_id,omitempty"`
	Role         ShopRole  `db:"role" json:"role"`
	InvitedEmail string    `db:"invited_email" json:"invited_email,omitempty"`
	Accepted     bool      `db:"accepted" json:"accepted"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ShopMemberDetail is a membership row joined with user info for team views.
type ShopMemberDetail struct {
	ShopMember
	DisplayName *string `db:"display_name" json:"display_name,omitempty"`
	Email       *string `db:"email" json:"email,omitempty"`
}

// CreateShopRequest is the payload for creating a shop.
type CreateShopRequest struct {
	Name           string `json:"name" validate:"required,min=2,max=120"`
	Slug           string `json:"slug" validate:"omitempty,max=120"`
	Description    string `json:"description" validate:"omitempty,max=500"`
	LogoURL        string `json:"logo_url" validate:"omitempty,url"`
	PrimaryColor   string `json:"primary_color" validate:"omitempty,max=16"`
	SecondaryColor string `json:"secondary_color" validate:"omitempty,max=16"`
}

// UpdateShopRequest is the payload for updating shop branding.
type UpdateShopRequest struct {
	Name           string `json:"name" validate:"required,min=2,max=120"`
	Description    string `json:"description" validate:"omitempty,max=500"`
	LogoURL        string `json:"logo_url" validate:"omitempty,url"`
	PrimaryColor   string `json:"primary_color" validate:"omitempty,max=16"`
	SecondaryColor string `json:"secondary_color" validate:"omitempty,max=16"`
}

// InviteMemberRequest invites a user to a shop by email.
type InviteMemberRequest struct {
	Email string   `json:"email" validate:"required,email"`
	Role  ShopRole `json:"role" validate:"required,oneof=admin member"`
}

// UpdateMemberRoleRequest changes an existing member's role.
type UpdateMemberRoleRequest struct {
	Role ShopRole `json:"role" validate:"required,oneof=admin member"`
}
