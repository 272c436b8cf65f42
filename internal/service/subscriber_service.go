package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/qrshelf/qrshelf-api/internal/models"
	appErrors "github.com/qrshelf/qrshelf-api/pkg/errors"
)

type subscriberRepository interface {
	Upsert(ctx context.Context, collectionID, email string) error
}

type subscriberCollectionRepository interface {
	FindByID(ctx context.Context, id string) (*models.Collection, error)
}

// SubscriberService handles the public email subscription flow.
type SubscriberService struct {
	repo        subscriberRepository
	collections subscriberCollectionRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewSubscriberService constructs a SubscriberService instance.
func NewSubscriberService(repo subscriberRepository, collections subscriberCollectionRepository, validate *validator.Validate, logger *zap.Logger) *SubscriberService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SubscriberService{repo: repo, collections: collections, validator: validate, logger: logger}
}

// Subscribe adds an email to a collection's update list. Re-subscribing a
// previously unsubscribed address reactivates it.
func (s *SubscriberService) Subscribe(ctx context.Context, req models.SubscribeRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subscribe payload")
	}

	collection, err := s.collections.FindByID(ctx, req.CollectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "collection not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load collection")
	}
	if !collection.Active {
		return appErrors.Clone(appErrors.ErrNotFound, "collection not found")
	}

	if err := s.repo.Upsert(ctx, req.CollectionID, req.Email); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to subscribe")
	}
	return nil
}
