package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/multielectric/mesupply/internal/models"
)

// CartItem is one entry of the client-submitted cart. Quantity defaults to 1;
// any price fields a client might send are ignored.
type CartItem struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

var ErrEmptyCart = errors.New("cart is empty")

// UnknownProductError marks a cart entry whose product id does not resolve.
// The whole checkout fails; there is no partial session.
type UnknownProductError struct {
	ProductID string
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("unknown product %q", e.ProductID)
}

// Catalog is the slice of the order store the checkout initiator needs.
type Catalog interface {
	ProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error)
}

// CheckoutService builds provider checkout sessions from carts, pricing
// every line from the catalog. It never touches order or stock state; the
// store is written only once payment is confirmed.
type CheckoutService struct {
	catalog  Catalog
	provider Provider
}

func NewCheckoutService(catalog Catalog, provider Provider) *CheckoutService {
	return &CheckoutService{catalog: catalog, provider: provider}
}

// CreateSession validates the cart, resolves authoritative prices and
// delegates session creation to the provider.
func (s *CheckoutService) CreateSession(ctx context.Context, items []CartItem, customerEmail string) (*CheckoutSession, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.catalog.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cart products: %w", err)
	}
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]SessionLine, 0, len(items))
	for _, item := range items {
		prod, ok := byID[item.ProductID]
		if !ok {
			return nil, &UnknownProductError{ProductID: item.ProductID}
		}
		qty := int64(item.Quantity)
		if qty <= 0 {
			qty = 1
		}
		lines = append(lines, SessionLine{
			ProductID:  prod.ID,
			SKU:        prod.SKU,
			Name:       prod.Name,
			UnitAmount: prod.PriceCents,
			Currency:   prod.Currency,
			Quantity:   qty,
		})
	}

	sess, err := s.provider.CreateSession(ctx, lines, customerEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return sess, nil
}
