package orders

import "time"

// OrderStatus is the lifecycle of a pedido. Finished-goods stock is
// reserved when the order is confirmed and returned if it gets voided.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pendiente"
	StatusConfirmed  OrderStatus = "confirmado"
	StatusProduction OrderStatus = "en_produccion"
	StatusFinished   OrderStatus = "terminado"
	StatusDelivered  OrderStatus = "entregado"
	StatusVoided     OrderStatus = "anulado"
)

// IsValid reports whether the status is part of the closed set.
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProduction, StatusFinished, StatusDelivered, StatusVoided:
		return true
	}
	return false
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusConfirmed, StatusVoided},
	StatusConfirmed:  {StatusProduction, StatusVoided},
	StatusProduction: {StatusFinished, StatusVoided},
	StatusFinished:   {StatusDelivered},
	StatusDelivered:  {},
	StatusVoided:     {},
}

// CanTransitionTo reports whether next is a legal successor state.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CanEdit reports whether line items may still change.
func (s OrderStatus) CanEdit() bool {
	return s == StatusPending
}

// HoldsStock reports whether stock has been reserved for this order
// and not yet consumed by delivery.
func (s OrderStatus) HoldsStock() bool {
	return s == StatusConfirmed || s == StatusProduction || s == StatusFinished
}

// Order is a customer order, created from the back office or a
// storefront checkout.
type Order struct {
	ID           int64       `json:"id"`
	Number       string      `json:"number"`
	ClientID     int64       `json:"client_id"`
	ClientName   string      `json:"client_name,omitempty"`
	CreatedBy    *int64      `json:"created_by,omitempty"`
	Status       OrderStatus `json:"status"`
	Notes        *string     `json:"notes,omitempty"`
	DeliveryDate *time.Time  `json:"delivery_date,omitempty"`
	Total        float64     `json:"total"`
	Items        []OrderItem `json:"items,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// OrderItem is a line on an order. Product name and price are
// snapshotted at order time.
type OrderItem struct {
	ID          int64   `json:"id"`
	OrderID     int64   `json:"order_id"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Subtotal    float64 `json:"subtotal"`
}
