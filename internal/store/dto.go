package store

import "github.com/telaris-erp/telaris/internal/orders"

type AddToCartRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

type CheckoutRequest struct {
	Name    string  `json:"name" validate:"required,max=200"`
	Email   string  `json:"email" validate:"required,email"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=300"`
	Notes   *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// CartView is the cart resolved against the live catalog.
type CartView struct {
	Items []CartLine `json:"items"`
	Total float64    `json:"total"`
}

type CartLine struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
	Available bool    `json:"available"`
}

type CheckoutResponse struct {
	OrderNumber string             `json:"order_number"`
	Status      orders.OrderStatus `json:"status"`
	Total       float64            `json:"total"`
}
