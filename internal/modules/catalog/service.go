package catalog

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/almadegranja/alma-backend/internal/apperr"
	"github.com/google/uuid"
)

// Service defines catalog business logic.
type Service interface {
	// ListProducts returns the full normalized catalog in storage order.
	ListProducts(ctx context.Context) ([]Product, error)

	// FeaturedProducts returns the products with IsFeatured set; never nil.
	FeaturedProducts(ctx context.Context) ([]Product, error)

	// CreateProduct validates req, appends the new product and persists the
	// whole catalog.
	CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error)

	// DeleteProduct removes the product with id. Unknown ids are not an error.
	DeleteProduct(ctx context.Context, id string) error
}

// CreateProductRequest holds the raw JSON values of a create command so
// that type mismatches can be reported per field instead of failing the
// whole decode.
type CreateProductRequest struct {
	Title       any `json:"title"`
	Description any `json:"description"`
	Category    any `json:"category"`
	Price       any `json:"price"`
	Unit        any `json:"unit"`
	ImageURL    any `json:"imageUrl"`
	IsFeatured  any `json:"isFeatured"`
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service { return &service{repo: repo, now: time.Now} }

func (s *service) ListProducts(ctx context.Context) ([]Product, error) {
	products, err := s.repo.GetProducts(ctx)
	if err != nil {
		return nil, apperr.Upstream("read catalog", err)
	}
	return products, nil
}

func (s *service) FeaturedProducts(ctx context.Context) ([]Product, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return Featured(products), nil
}

func (s *service) CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error) {
	p, err := req.validate()
	if err != nil {
		return nil, err
	}

	products, err := s.repo.GetProducts(ctx)
	if err != nil {
		return nil, apperr.Upstream("read catalog", err)
	}

	p.ID = uuid.NewString()
	p.CreatedAt = s.now().UTC()
	products = append(products, *p)

	if err := s.repo.SaveProducts(ctx, products); err != nil {
		return nil, apperr.Upstream("save catalog", err)
	}
	return p, nil
}

func (s *service) DeleteProduct(ctx context.Context, id string) error {
	products, err := s.repo.GetProducts(ctx)
	if err != nil {
		return apperr.Upstream("read catalog", err)
	}

	kept := make([]Product, 0, len(products))
	for _, p := range products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}

	if err := s.repo.SaveProducts(ctx, kept); err != nil {
		return apperr.Upstream("save catalog", err)
	}
	return nil
}

// validate checks required fields before optional ones so a request missing
// a title never reports a unit type error first.
func (req CreateProductRequest) validate() (*Product, error) {
	title, err := requiredString("title", req.Title)
	if err != nil {
		return nil, err
	}
	description, err := requiredString("description", req.Description)
	if err != nil {
		return nil, err
	}
	category, err := requiredString("category", req.Category)
	if err != nil {
		return nil, err
	}
	price, err := parsePrice(req.Price)
	if err != nil {
		return nil, err
	}

	unit, err := optionalString("unit", req.Unit)
	if err != nil {
		return nil, err
	}
	imageURL, err := optionalString("imageUrl", req.ImageURL)
	if err != nil {
		return nil, err
	}
	featured := false
	switch v := req.IsFeatured.(type) {
	case nil:
	case bool:
		featured = v
	default:
		return nil, apperr.Validation("isFeatured", apperr.ReasonWrongType, "isFeatured must be a boolean")
	}

	return &Product{
		Category:    NormalizeCategory(category),
		Title:       title,
		Description: description,
		Price:       price,
		Unit:        unit,
		ImageURL:    imageURL,
		IsFeatured:  featured,
	}, nil
}

func requiredString(field string, v any) (string, error) {
	if v == nil {
		return "", apperr.Validation(field, apperr.ReasonMissing, field+" is required")
	}
	s, ok := v.(string)
	if !ok {
		return "", apperr.Validation(field, apperr.ReasonWrongType, field+" must be a string")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", apperr.Validation(field, apperr.ReasonMissing, field+" is required")
	}
	return s, nil
}

func optionalString(field string, v any) (string, error) {
	if v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", apperr.Validation(field, apperr.ReasonWrongType, field+" must be a string")
	}
	return strings.TrimSpace(s), nil
}

// parsePrice accepts a JSON number or a numeric string.
func parsePrice(v any) (float64, error) {
	var price float64
	switch p := v.(type) {
	case nil:
		return 0, apperr.Validation("price", apperr.ReasonMissing, "price is required")
	case float64:
		price = p
	case int:
		price = float64(p)
	case int64:
		price = float64(p)
	case json.Number:
		f, err := p.Float64()
		if err != nil {
			return 0, apperr.Validation("price", apperr.ReasonInvalid, "price must be a number")
		}
		price = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return 0, apperr.Validation("price", apperr.ReasonInvalid, "price must be a number")
		}
		price = f
	default:
		return 0, apperr.Validation("price", apperr.ReasonInvalid, "price must be a number")
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, apperr.Validation("price", apperr.ReasonInvalid, "price must be a finite number")
	}
	if price < 0 {
		return 0, apperr.Validation("price", apperr.ReasonInvalid, "price must not be negative")
	}
	return price, nil
}
