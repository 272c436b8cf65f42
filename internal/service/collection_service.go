package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qrshelf/qrshelf-api/internal/models"
	"github.com/qrshelf/qrshelf-api/internal/permissions"
	appErrors "github.com/qrshelf/qrshelf-api/pkg/errors"
)

type collectionRepository interface {
	Create(ctx context.Context, c *models.Collection) error
	FindByID(ctx context.Context, id string) (*models.Collection, error)
	ListByShop(ctx context.Context, shopID string) ([]models.Collection, error)
	Update(ctx context.Context, c *models.Collection) error
	Delete(ctx context.Context, id string) error
	ListShares(ctx context.Context, collectionID string) ([]models.CollectionShare, error)
	UpsertShare(ctx context.Context, share *models.CollectionShare) error
	DeleteShare(ctx context.Context, collectionID, userID string) error
}

// CollectionService manages collections and their shares. Every read and
// write is gated through the access predicates, with the caller's shop
// role and the collection's share rows as input.
type CollectionService struct {
	repo      collectionRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCollectionService constructs a CollectionService instance.
func NewCollectionService(repo collectionRepository, validate *validator.Validate, logger *zap.Logger) *CollectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CollectionService{repo: repo, validator: validate, logger: logger}
}

// Create adds a collection owned by the calling user.
func (s *CollectionService) Create(ctx context.Context, shopID, userID string, req models.CreateCollectionRequest) (*models.Collection, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid collection payload")
	}

	c := &models.Collection{
		ID:          uuid.NewString(),
		ShopID:      shopID,
		OwnerID:     userID,
		Title:       req.Title,
		Slug:        Slugify(req.Title),
		Description: req.Description,
		Visibility:  req.Visibility,
		Active:      true,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create collection")
	}
	return c, nil
}

// Get returns a collection the user is allowed to see.
func (s *CollectionService) Get(ctx context.Context, collectionID, userID string, role models.ShopRole) (*models.Collection, error) {
	c, shares, err := s.load(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if !permissions.CanViewCollection(*c, userID, role, shares) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "no access to this collection")
	}
	return c, nil
}

// List returns the shop's collections visible to the user.
func (s *CollectionService) List(ctx context.Context, shopID, userID string, role models.ShopRole) ([]models.Collection, error) {
	all, err := s.repo.ListByShop(ctx, shopID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list collections")
	}

	visible := make([]models.Collection, 0, len(all))
	for _, c := range all {
		if c.Visibility == models.VisibilityShop || c.OwnerID == userID || role == models.RoleOwner {
			visible = append(visible, c)
			continue
		}
		shares, err := s.repo.ListShares(ctx, c.ID)
		if err != nil {
			s.logger.Warn("failed to load shares while listing", zap.String("collection_id", c.ID), zap.Error(err))
			continue
		}
		if permissions.CanViewCollection(c, userID, role, shares) {
			visible = append(visible, c)
		}
	}
	return visible, nil
}

// Update modifies a collection the user is allowed to edit.
func (s *CollectionService) Update(ctx context.Context, collectionID, userID string, role models.ShopRole, req models.UpdateCollectionRequest) (*models.Collection, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid collection payload")
	}

	c, shares, err := s.load(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if !permissions.CanEditCollection(*c, userID, role, shares) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "no edit access to this collection")
	}

	c.Title = req.Title
	c.Slug = Slugify(req.Title)
	c.Description = req.Description
	c.Visibility = req.Visibility
	c.Active = req.Active
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update collection")
	}
	return c, nil
}

// Delete removes a collection the user is allowed to edit.
func (s *CollectionService) Delete(ctx context.Context, collectionID, userID string, role models.ShopRole) error {
	c, shares, err := s.load(ctx, collectionID)
	if err != nil {
		return err
	}
	if !permissions.CanEditCollection(*c, userID, role, shares) {
		return appErrors.Clone(appErrors.ErrForbidden, "no edit access to this collection")
	}
	if err := s.repo.Delete(ctx, collectionID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete collection")
	}
	return nil
}

// ListShares returns the share rows of a collection the user can edit.
func (s *CollectionService) ListShares(ctx context.Context, collectionID, userID string, role models.ShopRole) ([]models.CollectionShare, error) {
	c, shares, err := s.load(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if !permissions.CanEditCollection(*c, userID, role, shares) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "no edit access to this collection")
	}
	return shares, nil
}

// Share grants or updates a user's access to a personal collection.
func (s *CollectionService) Share(ctx context.Context, collectionID, userID string, role models.ShopRole, req models.ShareCollectionRequest) (*models.CollectionShare, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid share payload")
	}

	c, shares, err := s.load(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if !permissions.CanEditCollection(*c, userID, role, shares) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "no edit access to this collection")
	}

	share := &models.CollectionShare{
		CollectionID: collectionID,
		UserID:       req.UserID,
		Permission:   req.Permission,
	}
	if err := s.repo.UpsertShare(ctx, share); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to share collection")
	}
	return share, nil
}

// Unshare revokes a user's access to a collection.
func (s *CollectionService) Unshare(ctx context.Context, collectionID, userID string, role models.ShopRole, targetUserID string) error {
	c, shares, err := s.load(ctx, collectionID)
	if err != nil {
		return err
	}
	if !permissions.CanEditCollection(*c, userID, role, shares) {
		return appErrors.Clone(appErrors.ErrForbidden, "no edit access to this collection")
	}
	if err := s.repo.DeleteShare(ctx, collectionID, targetUserID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to revoke share")
	}
	return nil
}

func (s *CollectionService) load(ctx context.Context, collectionID string) (*models.Collection, []models.CollectionShare, error) {
	c, err := s.repo.FindByID(ctx, collectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "collection not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load collection")
	}
	shares, err := s.repo.ListShares(ctx, collectionID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shares")
	}
	return c, shares, nil
}

// Slugify lowers a title into a URL-safe slug.
func Slugify(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	slug := strings.TrimRight(b.String(), "-")
	if slug == "" {
		slug = fmt.Sprintf("c-%s", uuid.NewString()[:8])
	}
	return slug
}
