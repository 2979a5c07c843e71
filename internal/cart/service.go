// Package cart keeps the session-scoped shopping cart.
package cart

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/checkout"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type productResolver interface {
	Resolve(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

type tracker interface {
	Track(ctx context.Context, productID uuid.UUID, metric enums.MetricType) error
}

// Service exposes cart operations for one browsing session.
type Service interface {
	Get(ctx context.Context, sessionID string) (*Cart, error)
	Add(ctx context.Context, sessionID string, input AddLineInput) (*Cart, error)
	UpdateQuantity(ctx context.Context, sessionID, lineID string, quantity int) (*Cart, error)
	Remove(ctx context.Context, sessionID, lineID string) (*Cart, error)
	Clear(ctx context.Context, sessionID string) error
}

type service struct {
	store    Store
	products productResolver
	tracker  tracker
	now      func() time.Time
}

// NewService builds the cart service. tracker may be nil.
func NewService(store Store, products productResolver, tracker tracker) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product resolver required")
	}
	return &service{store: store, products: products, tracker: tracker, now: time.Now}, nil
}

func (s *service) Get(ctx context.Context, sessionID string) (*Cart, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return c, nil
}

// Add appends a new line priced from the live catalog. Identical variants are
// kept as separate lines.
func (s *service) Add(ctx context.Context, sessionID string, input AddLineInput) (*Cart, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	resolved, err := s.products.Resolve(ctx, []uuid.UUID{input.ProductID})
	if err != nil {
		return nil, err
	}
	product, ok := resolved[input.ProductID]
	if !ok || !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if !product.Purchasable() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "product is not available for purchase")
	}
	if err := checkout.ValidateVariant(checkout.VariantInput{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    input.Quantity,
		Color:       input.Color,
		Size:        input.Size,
		Logo:        input.Logo,
		Colors:      product.Colors,
		Sizes:       product.Sizes,
		LogoOptions: product.LogoOptions,
	}); err != nil {
		return nil, err
	}

	c, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	c.Lines = append(c.Lines, Line{
		ID:         uuid.NewString(),
		ProductID:  product.ID,
		Product:    ProductSnapshot{Name: product.Name, Price: product.Price, Image: product.Image},
		Quantity:   input.Quantity,
		Color:      input.Color,
		Size:       input.Size,
		Logo:       input.Logo,
		CustomText: checkout.CustomText(input.Logo, input.CustomText),
		AddedAt:    now,
	})
	if err := s.save(ctx, c, now); err != nil {
		return nil, err
	}
	if s.tracker != nil {
		_ = s.tracker.Track(ctx, product.ID, enums.MetricTypeCartAdds)
	}
	return c, nil
}

// UpdateQuantity sets a line's quantity. Zero or less removes the line.
func (s *service) UpdateQuantity(ctx context.Context, sessionID, lineID string, quantity int) (*Cart, error) {
	if quantity <= 0 {
		return s.Remove(ctx, sessionID, lineID)
	}
	c, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	idx := indexOf(c.Lines, lineID)
	if idx < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	c.Lines[idx].Quantity = quantity
	if err := s.save(ctx, c, s.now().UTC()); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) Remove(ctx context.Context, sessionID, lineID string) (*Cart, error) {
	c, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	idx := indexOf(c.Lines, lineID)
	if idx < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	c.Lines = append(c.Lines[:idx], c.Lines[idx+1:]...)
	if err := s.save(ctx, c, s.now().UTC()); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) Clear(ctx context.Context, sessionID string) error {
	if err := requireSession(sessionID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) save(ctx context.Context, c *Cart, now time.Time) error {
	c.UpdatedAt = now
	if err := s.store.Save(ctx, c); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return nil
}

func requireSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return nil
}

func indexOf(lines []Line, id string) int {
	for i, line := range lines {
		if line.ID == id {
			return i
		}
	}
	return -1
}
