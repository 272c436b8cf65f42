package models

import "time"

// QrCode maps a short opaque code to exactly one landing target: a
// collection or a standalone item, never both.
type QrCode struct {
	ID           string    `db:"id" json:"id"`
	Code         string    `db:"code" json:"code"`
	Label        string    `db:"label" json:"label,omitempty"`
	CollectionID *string   `db:"collection_id" json:"collection_id,omitempty"`
	ItemID       *string   `db:"item_id" json:"item_id,omitempty"`
	ShopID       string    `db:"shop_id" json:"shop_id"`
	RedirectPath string    `db:"redirect_path" json:"redirect_path"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// TargetKind discriminates the three possible redirect targets of a code.
type TargetKind int

const (
	// TargetRaw falls back to the code's stored redirect_path when the
	// linked collection or item relation is missing or incomplete.
	TargetRaw TargetKind = iota
	TargetCollection
	TargetItem
)

// RedirectTarget is the resolved destination for a scanned code.
type RedirectTarget struct {
	Kind TargetKind
	Path string
}

// ResolvedQrCode is a qr_codes row joined with the slugs needed to build
// the public landing path for its target.
type ResolvedQrCode struct {
	ID             string  `db:"id"`
	Code           string  `db:"code"`
	CollectionID   *string `db:"collection_id"`
	ItemID         *string `db:"item_id"`
	RedirectPath   string  `db:"redirect_path"`
	ShopSlug       *string `db:"shop_slug"`
	CollectionSlug *string `db:"collection_slug"`
}

// Target resolves the landing path. The branch order matches code
// semantics: collection target first, then item, then the stored raw path.
func (q ResolvedQrCode) Target() RedirectTarget {
	if q.CollectionID != nil && q.ShopSlug != nil && q.CollectionSlug != nil {
		return RedirectTarget{Kind: TargetCollection, Path: "/s/" + *q.ShopSlug + "/" + *q.CollectionSlug}
	}
	if q.ItemID != nil && q.ShopSlug != nil {
		return RedirectTarget{Kind: TargetItem, Path: "/p/" + *q.ShopSlug + "/" + *q.ItemID}
	}
	return RedirectTarget{Kind: TargetRaw, Path: q.RedirectPath}
}

// CreateQrCodeRequest mints a new code for a collection or an item.
type CreateQrCodeRequest struct {
	Label        string  `json:"label" validate:"omitempty,max=160"`
	CollectionID *string `json:"collection_id"`
	ItemID       *string `json:"item_id"`
}
