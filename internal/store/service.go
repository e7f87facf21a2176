package store

import (
	"context"
	"errors"
	"sort"

	"github.com/telaris-erp/telaris/internal/catalog/categories"
	"github.com/telaris-erp/telaris/internal/catalog/products"
	"github.com/telaris-erp/telaris/internal/clients"
	"github.com/telaris-erp/telaris/internal/orders"
	"github.com/telaris-erp/telaris/internal/shared"
)

// CatalogReader is the public-facing read slice of the product catalog.
type CatalogReader interface {
	ListPublic(ctx context.Context, categoryID *int64, search *string, page, perPage int) ([]products.Product, int, error)
	Get(ctx context.Context, id int64) (*products.Product, error)
}

// CategoryReader lists the categories shown in storefront navigation.
type CategoryReader interface {
	ListActive(ctx context.Context) ([]categories.Category, error)
}

// ClientDirectory resolves the buyer behind a checkout.
type ClientDirectory interface {
	FindOrCreateByEmail(ctx context.Context, email, name string) (*clients.Client, error)
}

// OrderPlacer creates the pending order produced by a checkout.
type OrderPlacer interface {
	Create(ctx context.Context, req orders.CreateOrderRequest, createdBy *int64) (*orders.Order, error)
}

// Service implements the public storefront: catalog browsing, the
// session cart and checkout.
type Service struct {
	catalog     CatalogReader
	categories  CategoryReader
	clients     ClientDirectory
	orders      OrderPlacer
	cart        *Cart
	idempotency *shared.IdempotencyStore
}

func NewService(catalog CatalogReader, categoryReader CategoryReader, clientDir ClientDirectory, orderPlacer OrderPlacer, cart *Cart, idempotency *shared.IdempotencyStore) *Service {
	return &Service{
		catalog:     catalog,
		categories:  categoryReader,
		clients:     clientDir,
		orders:      orderPlacer,
		cart:        cart,
		idempotency: idempotency,
	}
}

func (s *Service) BrowseCatalog(ctx context.Context, categoryID *int64, search *string, page, perPage int) ([]products.Product, int, error) {
	return s.catalog.ListPublic(ctx, categoryID, search, page, perPage)
}

// GetProduct returns a product only if it is publicly visible.
func (s *Service) GetProduct(ctx context.Context, id int64) (*products.Product, error) {
	product, err := s.catalog.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive || product.DeletedAt != nil {
		return nil, products.ErrNotFound
	}
	return product, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]categories.Category, error) {
	return s.categories.ListActive(ctx)
}

// AddToCart validates the product before putting it in the cart.
func (s *Service) AddToCart(ctx context.Context, sessionID string, req AddToCartRequest) (*CartView, error) {
	if _, err := s.GetProduct(ctx, req.ProductID); err != nil {
		return nil, err
	}
	if err := s.cart.Add(ctx, sessionID, req.ProductID, req.Quantity); err != nil {
		return nil, err
	}
	return s.ViewCart(ctx, sessionID)
}

func (s *Service) UpdateCartItem(ctx context.Context, sessionID string, productID int64, quantity int) (*CartView, error) {
	if err := s.cart.Set(ctx, sessionID, productID, quantity); err != nil {
		return nil, err
	}
	return s.ViewCart(ctx, sessionID)
}

func (s *Service) RemoveFromCart(ctx context.Context, sessionID string, productID int64) (*CartView, error) {
	if err := s.cart.Remove(ctx, sessionID, productID); err != nil {
		return nil, err
	}
	return s.ViewCart(ctx, sessionID)
}

// ViewCart resolves cart lines against the live catalog. Lines whose
// product has since gone inactive stay visible but marked unavailable.
func (s *Service) ViewCart(ctx context.Context, sessionID string) (*CartView, error) {
	items, err := s.cart.Items(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	view := &CartView{Items: []CartLine{}}
	for productID, quantity := range items {
		line := CartLine{ProductID: productID, Quantity: quantity}
		product, err := s.catalog.Get(ctx, productID)
		switch {
		case err == nil && product.IsActive && product.DeletedAt == nil:
			line.Name = product.Name
			line.UnitPrice = product.Price
			line.Subtotal = product.Price * float64(quantity)
			line.Available = true
			view.Total += line.Subtotal
		case err == nil:
			line.Name = product.Name
		case errors.Is(err, products.ErrNotFound):
			// Dangling line, keep it out of the total.
		default:
			return nil, err
		}
		view.Items = append(view.Items, line)
	}
	sort.Slice(view.Items, func(i, j int) bool {
		return view.Items[i].ProductID < view.Items[j].ProductID
	})
	return view, nil
}

// Checkout turns the cart into a pending order. The idempotency key
// guards against double submits from checkout retries.
func (s *Service) Checkout(ctx context.Context, sessionID, idempotencyKey string, req CheckoutRequest) (*CheckoutResponse, error) {
	items, err := s.cart.Items(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	if idempotencyKey != "" && s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, idempotencyKey, "tienda.checkout"); err != nil {
			return nil, err
		}
	}

	client, err := s.clients.FindOrCreateByEmail(ctx, req.Email, req.Name)
	if err != nil {
		s.rollbackKey(ctx, idempotencyKey)
		return nil, err
	}

	var lines []orders.OrderItemRequest
	for productID, quantity := range items {
		lines = append(lines, orders.OrderItemRequest{ProductID: productID, Quantity: quantity})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })

	order, err := s.orders.Create(ctx, orders.CreateOrderRequest{
		ClientID: client.ID,
		Notes:    req.Notes,
		Items:    lines,
	}, nil)
	if err != nil {
		s.rollbackKey(ctx, idempotencyKey)
		return nil, err
	}

	_ = s.cart.Clear(ctx, sessionID)

	return &CheckoutResponse{
		OrderNumber: order.Number,
		Status:      order.Status,
		Total:       order.Total,
	}, nil
}

func (s *Service) rollbackKey(ctx context.Context, key string) {
	if key != "" && s.idempotency != nil {
		_ = s.idempotency.Delete(ctx, key)
	}
}
