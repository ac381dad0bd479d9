package cart

import (
	"context"
	"errors"
	"strings"

	"storefront-be/internal/apperror"
	"storefront-be/internal/logger"
	"storefront-be/internal/product"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductLookup returns a product only if it is for sale.
type ProductLookup interface {
	GetPublished(ctx context.Context, id uuid.UUID) (product.Product, error)
}

// Service defines the business logic for carts.
type Service interface {
	Get(ctx context.Context, owner Owner) (*Cart, error)
	AddItem(ctx context.Context, owner Owner, in AddItemInput) (*Cart, error)
	UpdateItem(ctx context.Context, owner Owner, in UpdateItemInput) (*Cart, error)
	RemoveItem(ctx context.Context, owner Owner, productID uuid.UUID, material, color string) (*Cart, error)
	Merge(ctx context.Context, userID uuid.UUID, guestID string) (*Cart, error)
	// Clear drops the user's cart; a missing cart is not an error.
	Clear(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo     Repository
	products ProductLookup
}

func NewService(repo Repository, products ProductLookup) Service {
	return &service{repo: repo, products: products}
}

func (s *service) load(ctx context.Context, owner Owner) (*Cart, error) {
	if owner.IsZero() {
		return nil, ErrOwnerRequired
	}
	c, err := s.repo.GetByOwner(ctx, owner)
	if errors.Is(err, ErrCartNotFound) {
		return newCart(owner), nil
	}
	return c, err
}

func (s *service) Get(ctx context.Context, owner Owner) (*Cart, error) {
	return s.load(ctx, owner)
}

func validateLine(material, color string) error {
	var details []apperror.Detail
	if l := len(strings.TrimSpace(material)); l == 0 || l > 50 {
		details = append(details, apperror.Detail{Field: "material", Message: "material must be between 1 and 50 characters"})
	}
	if l := len(strings.TrimSpace(color)); l == 0 || l > 30 {
		details = append(details, apperror.Detail{Field: "color", Message: "color must be between 1 and 30 characters"})
	}
	if len(details) > 0 {
		return apperror.Validation("invalid cart item", details...)
	}
	return nil
}

func (s *service) AddItem(ctx context.Context, owner Owner, in AddItemInput) (*Cart, error) {
	if in.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if err := validateLine(in.Material, in.Color); err != nil {
		return nil, err
	}

	p, err := s.products.GetPublished(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}

	c, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}

	c.Add(Item{
		ProductID: p.ID,
		Name:      p.Name,
		Material:  strings.TrimSpace(in.Material),
		Color:     strings.TrimSpace(in.Color),
		Price:     p.Price,
		Quantity:  in.Quantity,
	})

	if err := s.repo.Save(ctx, c); err != nil {
		logger.FromCtx(ctx).Error("failed to save cart",
			zap.String("layer", "service"),
			zap.String("product_id", in.ProductID.String()),
			zap.Error(err),
		)
		return nil, err
	}
	return c, nil
}

func (s *service) UpdateItem(ctx context.Context, owner Owner, in UpdateItemInput) (*Cart, error) {
	if in.Quantity == nil || *in.Quantity < 0 {
		return nil, ErrNegativeQuantity
	}
	if owner.IsZero() {
		return nil, ErrOwnerRequired
	}

	c, err := s.repo.GetByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	if err := c.SetQuantity(in.ProductID, strings.TrimSpace(in.Material), strings.TrimSpace(in.Color), *in.Quantity); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) RemoveItem(ctx context.Context, owner Owner, productID uuid.UUID, material, color string) (*Cart, error) {
	zero := 0
	return s.UpdateItem(ctx, owner, UpdateItemInput{
		ProductID: productID,
		Material:  material,
		Color:     color,
		Quantity:  &zero,
	})
}

func (s *service) Merge(ctx context.Context, userID uuid.UUID, guestID string) (*Cart, error) {
	log := logger.FromCtx(ctx).With(zap.String("layer", "service"), zap.String("method", "Merge"))

	if userID == uuid.Nil || guestID == "" {
		return nil, ErrMergeOwnerRequired
	}

	userCart, err := s.repo.GetByOwner(ctx, Owner{UserID: &userID})
	if err != nil && !errors.Is(err, ErrCartNotFound) {
		return nil, err
	}
	guestCart, err := s.repo.GetByOwner(ctx, Owner{GuestID: guestID})
	if err != nil && !errors.Is(err, ErrCartNotFound) {
		return nil, err
	}

	switch {
	case guestCart == nil && userCart == nil:
		return newCart(Owner{UserID: &userID}), nil
	case guestCart == nil:
		return userCart, nil
	case userCart == nil:
		// Adopt the guest cart.
		guestCart.UserID = &userID
		guestCart.GuestID = nil
		if err := s.repo.Save(ctx, guestCart); err != nil {
			return nil, err
		}
		return guestCart, nil
	}

	userCart.Merge(guestCart)
	if err := s.repo.Save(ctx, userCart); err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, guestCart.ID); err != nil {
		log.Warn("failed to delete merged guest cart", zap.String("cart_id", guestCart.ID.String()), zap.Error(err))
	}
	return userCart, nil
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.repo.DeleteByUser(ctx, userID)
}
