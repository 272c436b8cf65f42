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

type shopRepository interface {
	Create(ctx context.Context, shop *models.Shop) error
	FindByID(ctx context.Context, id string) (*models.Shop, error)
	FindBySlug(ctx context.Context, slug string) (*models.Shop, error)
	ListForUser(ctx context.Context, userID string) ([]models.Shop, error)
	Update(ctx context.Context, shop *models.Shop) error
	FindRole(ctx context.Context, userID, shopID string) (models.ShopRole, error)
	ListMembers(ctx context.Context, shopID string) ([]models.ShopMemberDetail, error)
	InviteMember(ctx context.Context, shopID, email string, role models.ShopRole) (*models.ShopMember, error)
	AcceptInvite(ctx context.Context, shopID, userID, email string) error
	UpdateMemberRole(ctx context.Context, memberID string, role models.ShopRole) error
	FindMember(ctx context.Context, memberID string) (*models.ShopMember, error)
	RemoveMember(ctx context.Context, memberID string) error
}

type inviteMailer interface {
	SendShopInvite(ctx context.Context, email, shopName string) error
}

// ShopService manages shops and team membership.
type ShopService struct {
	repo      shopRepository
	mailer    inviteMailer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewShopService constructs a ShopService instance. The mailer is optional;
// without one invites are created silently.
func NewShopService(repo shopRepository, mailer inviteMailer, validate *validator.Validate, logger *zap.Logger) *ShopService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ShopService{repo: repo, mailer: mailer, validator: validate, logger: logger}
}

// Create registers a shop with the calling user as owner.
func (s *ShopService) Create(ctx context.Context, userID string, req models.CreateShopRequest) (*models.Shop, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid shop payload")
	}

	slug := req.Slug
	if slug == "" {
		slug = Slugify(req.Name)
	}
	if _, err := s.repo.FindBySlug(ctx, slug); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("slug %q is already taken", slug))
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check slug")
	}

	shop := &models.Shop{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Slug:           slug,
		Description:    req.Description,
		LogoURL:        req.LogoURL,
		PrimaryColor:   req.PrimaryColor,
		SecondaryColor: req.SecondaryColor,
		OwnerID:        userID,
	}
	if err := s.repo.Create(ctx, shop); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create shop")
	}
	return shop, nil
}

// Get returns a shop by id.
func (s *ShopService) Get(ctx context.Context, shopID string) (*models.Shop, error) {
	shop, err := s.repo.FindByID(ctx, shopID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "shop not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shop")
	}
	return shop, nil
}

// GetBySlug returns a shop by its public slug.
func (s *ShopService) GetBySlug(ctx context.Context, slug string) (*models.Shop, error) {
	shop, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "shop not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shop")
	}
	return shop, nil
}

// ListForUser returns the shops the user belongs to.
func (s *ShopService) ListForUser(ctx context.Context, userID string) ([]models.Shop, error) {
	shops, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list shops")
	}
	return shops, nil
}

// Role returns the caller's accepted membership role in a shop.
func (s *ShopService) Role(ctx context.Context, userID, shopID string) (models.ShopRole, error) {
	role, err := s.repo.FindRole(ctx, userID, shopID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrNotAMember, "")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load membership")
	}
	return role, nil
}

// Update changes shop branding. Owner and admin only.
func (s *ShopService) Update(ctx context.Context, shopID string, role models.ShopRole, req models.UpdateShopRequest) (*models.Shop, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid shop payload")
	}
	if !permissions.CanManageShop(role) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only owners and admins can update a shop")
	}

	shop, err := s.Get(ctx, shopID)
	if err != nil {
		return nil, err
	}

	shop.Name = req.Name
	shop.Description = req.Description
	shop.LogoURL = req.LogoURL
	shop.PrimaryColor = req.PrimaryColor
	shop.SecondaryColor = req.SecondaryColor
	if err := s.repo.Update(ctx, shop); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update shop")
	}
	return shop, nil
}

// ListMembers returns the shop's members and pending invites.
func (s *ShopService) ListMembers(ctx context.Context, shopID string, role models.ShopRole) ([]models.ShopMemberDetail, error) {
	if !permissions.CanManageTeam(role) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only owners and admins can view the team")
	}
	members, err := s.repo.ListMembers(ctx, shopID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list members")
	}
	return members, nil
}

// InviteMember creates a pending invite and emails the invitee.
func (s *ShopService) InviteMember(ctx context.Context, shopID string, role models.ShopRole, req models.InviteMemberRequest) (*models.ShopMember, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid invite payload")
	}
	if !permissions.CanManageTeam(role) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only owners and admins can invite members")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	member, err := s.repo.InviteMember(ctx, shopID, email, req.Role)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create invite")
	}

	if s.mailer != nil {
		shop, err := s.Get(ctx, shopID)
		if err == nil {
			if err := s.mailer.SendShopInvite(ctx, email, shop.Name); err != nil {
				s.logger.Warn("failed to send invite email", zap.String("email", email), zap.Error(err))
			}
		}
	}
	return member, nil
}

// AcceptInvite binds a pending invite for the user's email to their account.
func (s *ShopService) AcceptInvite(ctx context.Context, shopID, userID, email string) error {
	err := s.repo.AcceptInvite(ctx, shopID, userID, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "no pending invite for this email")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to accept invite")
	}
	return nil
}

// UpdateMemberRole changes a member's role. The owner role itself is fixed.
func (s *ShopService) UpdateMemberRole(ctx context.Context, shopID, memberID string, callerRole models.ShopRole, req models.UpdateMemberRoleRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid role payload")
	}
	if !permissions.CanManageTeam(callerRole) {
		return appErrors.Clone(appErrors.ErrForbidden, "only owners and admins can change roles")
	}

	member, err := s.loadMember(ctx, shopID, memberID)
	if err != nil {
		return err
	}
	if member.Role == models.RoleOwner {
		return appErrors.Clone(appErrors.ErrForbidden, "the owner role cannot be changed")
	}

	if err := s.repo.UpdateMemberRole(ctx, memberID, req.Role); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update role")
	}
	return nil
}

// RemoveMember deletes a membership or revokes a pending invite.
func (s *ShopService) RemoveMember(ctx context.Context, shopID, memberID string, callerRole models.ShopRole) error {
	if !permissions.CanManageTeam(callerRole) {
		return appErrors.Clone(appErrors.ErrForbidden, "only owners and admins can remove members")
	}

	member, err := s.loadMember(ctx, shopID, memberID)
	if err != nil {
		return err
	}
	if member.Role == models.RoleOwner {
		return appErrors.Clone(appErrors.ErrForbidden, "the owner cannot be removed")
	}

	if err := s.repo.RemoveMember(ctx, memberID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove member")
	}
	return nil
}

func (s *ShopService) loadMember(ctx context.Context, shopID, memberID string) (*models.ShopMember, error) {
	member, err := s.repo.FindMember(ctx, memberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "member not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load member")
	}
	if member.ShopID != shopID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "member not found")
	}
	return member, nil
}
