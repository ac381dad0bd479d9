package product

import (
	"context"
	"strings"

	"storefront-be/internal/apperror"
	"storefront-be/internal/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context, category string, isAdmin bool) ([]Product, error)
	Get(ctx context.Context, id uuid.UUID, isAdmin bool) (Product, error)
	// GetPublished is the lookup used by cart and checkout; hidden products
	// behave as missing.
	GetPublished(ctx context.Context, id uuid.UUID) (Product, error)
	Create(ctx context.Context, creatorID uuid.UUID, in Input) (Product, error)
	Update(ctx context.Context, id uuid.UUID, in Input) (Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Similar(ctx context.Context, id uuid.UUID) ([]Product, error)
	BestSellers(ctx context.Context) ([]Product, error)
	NewArrivals(ctx context.Context) ([]Product, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

var (
	minPrice   = decimal.RequireFromString("0.01")
	minMeasure = decimal.RequireFromString("0.001")
)

func lengthBetween(s string, lo, hi int) bool {
	n := len([]rune(strings.TrimSpace(s)))
	return n >= lo && n <= hi
}

func validate(in Input) error {
	var details []apperror.Detail
	add := func(field, msg string) {
		details = append(details, apperror.Detail{Field: field, Message: msg})
	}

	if !lengthBetween(in.Name, 2, 100) {
		add("name", "product name must be between 2 and 100 characters")
	}
	if !lengthBetween(in.Description, 10, 1000) {
		add("description", "description must be between 10 and 1000 characters")
	}
	if in.Price.LessThan(minPrice) {
		add("price", "price must be at least 0.01")
	}
	if !lengthBetween(in.Category, 2, 50) {
		add("category", "category must be between 2 and 50 characters")
	}
	for field, v := range map[string]decimal.Decimal{
		"dimensions.length": in.Dimensions.Length,
		"dimensions.width":  in.Dimensions.Width,
		"dimensions.height": in.Dimensions.Height,
		"weight":            in.Weight,
	} {
		if v.LessThan(minMeasure) {
			add(field, field+" must be at least 0.001")
		}
	}

	if len(details) > 0 {
		return apperror.Validation("invalid product", details...)
	}
	return nil
}

func fromInput(in Input) Product {
	return Product{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Category:    strings.TrimSpace(in.Category),
		Images:      in.Images,
		Tags:        in.Tags,
		Dimensions:  in.Dimensions,
		Weight:      in.Weight,
		IsPublished: in.IsPublished,
	}
}

func (s *service) List(ctx context.Context, category string, isAdmin bool) ([]Product, error) {
	return s.repo.List(ctx, ListFilter{Category: category, IncludeHidden: isAdmin})
}

func (s *service) Get(ctx context.Context, id uuid.UUID, isAdmin bool) (Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if !p.IsPublished && !isAdmin {
		return Product{}, ErrAccessDenied
	}
	return p, nil
}

func (s *service) GetPublished(ctx context.Context, id uuid.UUID) (Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if !p.IsPublished {
		return Product{}, ErrProductNotFound
	}
	return p, nil
}

func (s *service) Create(ctx context.Context, creatorID uuid.UUID, in Input) (Product, error) {
	if err := validate(in); err != nil {
		return Product{}, err
	}

	p := fromInput(in)
	p.UserID = &creatorID

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to create product",
			zap.String("layer", "service"),
			zap.String("name", p.Name),
			zap.Error(err),
		)
		return Product{}, err
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, in Input) (Product, error) {
	if err := validate(in); err != nil {
		return Product{}, err
	}

	p := fromInput(in)
	p.ID = id
	return s.repo.Update(ctx, p)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) Similar(ctx context.Context, id uuid.UUID) ([]Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.repo.Similar(ctx, p, similarLimit)
}

func (s *service) BestSellers(ctx context.Context) ([]Product, error) {
	products, err := s.repo.BestSellers(ctx, bestSellerLimit)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrNoProducts
	}
	return products, nil
}

func (s *service) NewArrivals(ctx context.Context) ([]Product, error) {
	products, err := s.repo.NewArrivals(ctx, newArrivalsLimit)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrNoProducts
	}
	return products, nil
}
