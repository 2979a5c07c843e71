// Package catalog owns the product listings shown in the storefront.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/documents"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// ViewTracker records storefront product views.
type ViewTracker interface {
	Track(ctx context.Context, productID uuid.UUID, metric enums.MetricType) error
}

// Service exposes storefront reads and admin product management.
type Service interface {
	ListActive(ctx context.Context) ([]ProductDTO, error)
	ViewProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	ListAll(ctx context.Context) ([]ProductDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	Create(ctx context.Context, input ProductInput) (*ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, input ProductInput) (*ProductDTO, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Resolve(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
	Export(ctx context.Context) (documents.Table, error)
}

type service struct {
	repo  Repository
	views ViewTracker
}

// NewService wires the catalog. views may be nil.
func NewService(repo Repository, views ViewTracker) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo, views: views}, nil
}

func (s *service) ListActive(ctx context.Context) ([]ProductDTO, error) {
	return s.list(ctx, true)
}

func (s *service) ListAll(ctx context.Context) ([]ProductDTO, error) {
	return s.list(ctx, false)
}

func (s *service) list(ctx context.Context, activeOnly bool) ([]ProductDTO, error) {
	products, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	out := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		out = append(out, toDTO(p))
	}
	return out, nil
}

// ViewProduct returns an active product and counts the view. A failed view
// count never fails the read.
func (s *service) ViewProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if s.views != nil {
		_ = s.views.Track(ctx, id, enums.MetricTypeViews)
	}
	dto := toDTO(*product)
	return &dto, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toDTO(*product)
	return &dto, nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) Create(ctx context.Context, input ProductInput) (*ProductDTO, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	product := models.Product{IsActive: true}
	apply(&product, input)
	if err := s.repo.Create(ctx, &product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	dto := toDTO(product)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input ProductInput) (*ProductDTO, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(product, input)
	product.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	dto := toDTO(*product)
	return &dto, nil
}

// Deactivate hides a product from the storefront. Orders keep their snapshots.
func (s *service) Deactivate(ctx context.Context, id uuid.UUID) error {
	n, err := s.repo.SetActive(ctx, id, false)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate product")
	}
	if n == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

// Resolve loads products by id for cart pricing.
func (s *service) Resolve(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	products, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve products")
	}
	out := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

func (s *service) Export(ctx context.Context) (documents.Table, error) {
	products, err := s.repo.List(ctx, false)
	if err != nil {
		return documents.Table{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	table := documents.Table{Header: []string{"ID", "Name", "Description", "Price", "Colors", "Sizes", "Logo Options", "Created At", "Active"}}
	for _, p := range products {
		table.Append(
			p.ID.String(),
			p.Name,
			p.Description,
			p.Price.StringFixed(2),
			strings.Join(p.Colors, ";"),
			strings.Join(p.Sizes, ";"),
			strings.Join(p.LogoOptions, ";"),
			p.CreatedAt.UTC().Format(time.RFC3339),
			strconv.FormatBool(p.IsActive),
		)
	}
	return table, nil
}

func validateInput(input ProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required").WithDetails(map[string]string{"name": "is required"})
	}
	if input.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative").WithDetails(map[string]string{"price": "must be at least 0"})
	}
	return nil
}

func apply(p *models.Product, input ProductInput) {
	p.Name = strings.TrimSpace(input.Name)
	p.Description = input.Description
	p.Price = input.Price.Round(2)
	p.Image = input.Image
	p.Colors = datatypes.JSONSlice[string](clean(input.Colors))
	p.Sizes = datatypes.JSONSlice[string](clean(input.Sizes))
	p.LogoOptions = datatypes.JSONSlice[string](clean(input.LogoOptions))
	if input.IsActive != nil {
		p.IsActive = *input.IsActive
	}
}

func clean(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
