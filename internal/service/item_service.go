package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qrshelf/qrshelf-api/internal/models"
	"github.com/qrshelf/qrshelf-api/internal/permissions"
	appErrors "github.com/qrshelf/qrshelf-api/pkg/errors"
)

type itemRepository interface {
	Create(ctx context.Context, item *models.Item) error
	FindByID(ctx context.Context, id string) (*models.Item, error)
	ListByCollection(ctx context.Context, collectionID string) ([]models.Item, error)
	ListStandalone(ctx context.Context, shopID string) ([]models.Item, error)
	Update(ctx context.Context, item *models.Item) error
	Delete(ctx context.Context, id string) error
}

type itemCollectionRepository interface {
	FindByID(ctx context.Context, id string) (*models.Collection, error)
	ListShares(ctx context.Context, collectionID string) ([]models.CollectionShare, error)
}

type itemNotifier interface {
	NotifyItemAdded(collectionID string, item models.Item)
}

// ItemService manages items. Items inside a collection inherit the
// collection's edit rules; standalone items follow shop roles.
type ItemService struct {
	repo        itemRepository
	collections itemCollectionRepository
	notifier    itemNotifier
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewItemService constructs an ItemService instance. The notifier is
// optional; without one subscriber notifications are skipped.
func NewItemService(repo itemRepository, collections itemCollectionRepository, notifier itemNotifier, validate *validator.Validate, logger *zap.Logger) *ItemService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ItemService{repo: repo, collections: collections, notifier: notifier, validator: validate, logger: logger}
}

// Create adds an item and fans out subscriber notifications when the item
// lands in a collection.
func (s *ItemService) Create(ctx context.Context, shopID, userID string, role models.ShopRole, req models.CreateItemRequest) (*models.Item, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid item payload")
	}

	if req.CollectionID != nil {
		if err := s.requireCollectionEdit(ctx, *req.CollectionID, shopID, userID, role); err != nil {
			return nil, err
		}
	}

	item := &models.Item{
		ID:           uuid.NewString(),
		CollectionID: req.CollectionID,
		ShopID:       shopID,
		Title:        req.Title,
		Note:         req.Note,
		ProductURL:   req.ProductURL,
		ImageURL:     req.ImageURL,
		Active:       true,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create item")
	}

	if s.notifier != nil && item.CollectionID != nil {
		s.notifier.NotifyItemAdded(*item.CollectionID, *item)
	}
	return item, nil
}

// Get returns an item scoped to its shop.
func (s *ItemService) Get(ctx context.Context, shopID, itemID string) (*models.Item, error) {
	item, err := s.load(ctx, shopID, itemID)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ListByCollection returns a collection's items in sort order.
func (s *ItemService) ListByCollection(ctx context.Context, collectionID string) ([]models.Item, error) {
	items, err := s.repo.ListByCollection(ctx, collectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list items")
	}
	return items, nil
}

// ListStandalone returns the shop's items outside any collection.
func (s *ItemService) ListStandalone(ctx context.Context, shopID string) ([]models.Item, error) {
	items, err := s.repo.ListStandalone(ctx, shopID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list items")
	}
	return items, nil
}

// Update modifies an item.
func (s *ItemService) Update(ctx context.Context, shopID, itemID, userID string, role models.ShopRole, req models.UpdateItemRequest) (*models.Item, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid item payload")
	}

	item, err := s.load(ctx, shopID, itemID)
	if err != nil {
		return nil, err
	}
	if item.CollectionID != nil {
		if err := s.requireCollectionEdit(ctx, *item.CollectionID, shopID, userID, role); err != nil {
			return nil, err
		}
	}

	item.Title = req.Title
	item.Note = req.Note
	item.ProductURL = req.ProductURL
	item.ImageURL = req.ImageURL
	item.SortOrder = req.SortOrder
	item.Active = req.Active
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update item")
	}
	return item, nil
}

// Delete removes an item.
func (s *ItemService) Delete(ctx context.Context, shopID, itemID, userID string, role models.ShopRole) error {
	item, err := s.load(ctx, shopID, itemID)
	if err != nil {
		return err
	}
	if item.CollectionID != nil {
		if err := s.requireCollectionEdit(ctx, *item.CollectionID, shopID, userID, role); err != nil {
			return err
		}
	}
	if err := s.repo.Delete(ctx, itemID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete item")
	}
	return nil
}

func (s *ItemService) load(ctx context.Context, shopID, itemID string) (*models.Item, error) {
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "item not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load item")
	}
	if item.ShopID != shopID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "item not found")
	}
	return item, nil
}

func (s *ItemService) requireCollectionEdit(ctx context.Context, collectionID, shopID, userID string, role models.ShopRole) error {
	c, err := s.collections.FindByID(ctx, collectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "collection not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load collection")
	}
	if c.ShopID != shopID {
		return appErrors.Clone(appErrors.ErrNotFound, "collection not found")
	}
	shares, err := s.collections.ListShares(ctx, collectionID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shares")
	}
	if !permissions.CanEditCollection(*c, userID, role, shares) {
		return appErrors.Clone(appErrors.ErrForbidden, "no edit access to this collection")
	}
	return nil
}
