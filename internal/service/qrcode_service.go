package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/qrshelf/qrshelf-api/internal/models"
	appErrors "github.com/qrshelf/qrshelf-api/pkg/errors"
	"github.com/qrshelf/qrshelf-api/pkg/storage"
)

const (
	codeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	codeLength   = 8
	mintRetries  = 5
)

type qrCodeRepository interface {
	Create(ctx context.Context, qr *models.QrCode) error
	FindByID(ctx context.Context, id string) (*models.QrCode, error)
	ListByShop(ctx context.Context, shopID string) ([]models.QrCode, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	Delete(ctx context.Context, id string) error
}

type qrCollectionRepository interface {
	FindByID(ctx context.Context, id string) (*models.Collection, error)
}

type qrItemRepository interface {
	FindByID(ctx context.Context, id string) (*models.Item, error)
}

type qrAnalyticsInvalidator interface {
	InvalidateShop(ctx context.Context, shopID string)
}

// QrCodeService mints short codes and renders their printable PNGs.
type QrCodeService struct {
	repo        qrCodeRepository
	collections qrCollectionRepository
	items       qrItemRepository
	validator   *validator.Validate
	logger      *zap.Logger

	// store caches rendered PNGs so repeated downloads of the same image
	// skip the encoder. Nil disables caching.
	store *storage.FileStore
	// cache drops a shop's analytics payloads when its code set changes.
	cache         qrAnalyticsInvalidator
	publicBaseURL string
}

// NewQrCodeService constructs a QrCodeService instance.
func NewQrCodeService(repo qrCodeRepository, collections qrCollectionRepository, items qrItemRepository, cache qrAnalyticsInvalidator, validate *validator.Validate, logger *zap.Logger, store *storage.FileStore, publicBaseURL string) *QrCodeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &QrCodeService{
		repo:          repo,
		collections:   collections,
		items:         items,
		cache:         cache,
		validator:     validate,
		logger:        logger,
		store:         store,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// Create mints a code for exactly one target, a collection or an item,
// and stores the landing path it resolved to at mint time.
func (s *QrCodeService) Create(ctx context.Context, shopID string, req models.CreateQrCodeRequest) (*models.QrCode, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid qr code payload")
	}
	if (req.CollectionID == nil) == (req.ItemID == nil) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "exactly one of collection_id or item_id is required")
	}

	redirectPath, err := s.resolveTargetPath(ctx, shopID, req)
	if err != nil {
		return nil, err
	}

	code, err := s.mintCode(ctx)
	if err != nil {
		return nil, err
	}

	qr := &models.QrCode{
		Code:         code,
		Label:        req.Label,
		CollectionID: req.CollectionID,
		ItemID:       req.ItemID,
		ShopID:       shopID,
		RedirectPath: redirectPath,
	}
	if err := s.repo.Create(ctx, qr); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create qr code")
	}

	if s.cache != nil {
		s.cache.InvalidateShop(ctx, shopID)
	}
	return qr, nil
}

// Get returns a QR code scoped to its shop.
func (s *QrCodeService) Get(ctx context.Context, shopID, id string) (*models.QrCode, error) {
	qr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "qr code not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load qr code")
	}
	if qr.ShopID != shopID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "qr code not found")
	}
	return qr, nil
}

// List returns the shop's QR codes.
func (s *QrCodeService) List(ctx context.Context, shopID string) ([]models.QrCode, error) {
	codes, err := s.repo.ListByShop(ctx, shopID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list qr codes")
	}
	return codes, nil
}

// Delete removes a QR code. Its scan history stays.
func (s *QrCodeService) Delete(ctx context.Context, shopID, id string) error {
	if _, err := s.Get(ctx, shopID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete qr code")
	}

	if s.cache != nil {
		s.cache.InvalidateShop(ctx, shopID)
	}
	return nil
}

// PNG renders the scannable image for a code. The image encodes the
// public redirect URL, never the landing path, so retargeting a code
// does not invalidate printed material.
func (s *QrCodeService) PNG(ctx context.Context, shopID, id string, size int) ([]byte, error) {
	qr, err := s.Get(ctx, shopID, id)
	if err != nil {
		return nil, err
	}
	if size <= 0 || size > 2048 {
		size = 512
	}

	cacheName := fmt.Sprintf("qr/%s-%d.png", qr.ID, size)
	if s.store != nil {
		if png, err := s.store.Load(cacheName); err == nil {
			return png, nil
		}
	}

	png, err := qrcode.Encode(s.publicBaseURL+"/r/"+qr.Code, qrcode.Medium, size)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render qr image")
	}

	if s.store != nil {
		if err := s.store.Save(cacheName, png); err != nil {
			s.logger.Warn("failed to cache qr image", zap.String("qr_code_id", qr.ID), zap.Error(err))
		}
	}
	return png, nil
}

func (s *QrCodeService) resolveTargetPath(ctx context.Context, shopID string, req models.CreateQrCodeRequest) (string, error) {
	if req.CollectionID != nil {
		c, err := s.collections.FindByID(ctx, *req.CollectionID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return "", appErrors.Clone(appErrors.ErrNotFound, "collection not found")
			}
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load collection")
		}
		if c.ShopID != shopID {
			return "", appErrors.Clone(appErrors.ErrNotFound, "collection not found")
		}
		return "/c/" + c.ID, nil
	}

	item, err := s.items.FindByID(ctx, *req.ItemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrNotFound, "item not found")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load item")
	}
	if item.ShopID != shopID {
		return "", appErrors.Clone(appErrors.ErrNotFound, "item not found")
	}
	return "/i/" + item.ID, nil
}

func (s *QrCodeService) mintCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < mintRetries; attempt++ {
		code, err := randomCode(codeLength)
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate code")
		}
		exists, err := s.repo.CodeExists(ctx, code)
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check code")
		}
		if !exists {
			return code, nil
		}
	}
	return "", appErrors.Clone(appErrors.ErrInternal, "could not mint a unique code")
}

func randomCode(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, length)
	for i, b := range buf {
		out[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(out), nil
}
