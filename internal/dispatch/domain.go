package dispatch

import "time"

// DispatchStatus is the lifecycle of a despacho.
type DispatchStatus string

const (
	StatusPending   DispatchStatus = "pendiente"
	StatusInTransit DispatchStatus = "en_ruta"
	StatusDelivered DispatchStatus = "entregado"
)

func (s DispatchStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusInTransit, StatusDelivered:
		return true
	}
	return false
}

func (s DispatchStatus) CanTransitionTo(next DispatchStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusInTransit
	case StatusInTransit:
		return next == StatusDelivered
	}
	return false
}

// Dispatch is a shipment of a finished order. The tracking code is
// shared with the customer and resolvable without authentication.
type Dispatch struct {
	ID           int64          `json:"id"`
	OrderID      int64          `json:"order_id"`
	OrderNumber  string         `json:"order_number,omitempty"`
	TrackingCode string         `json:"tracking_code"`
	Address      string         `json:"address"`
	Carrier      *string        `json:"carrier,omitempty"`
	Status       DispatchStatus `json:"status"`
	Notes        *string        `json:"notes,omitempty"`
	ConfirmedBy  *int64         `json:"confirmed_by,omitempty"`
	DeliveredAt  *time.Time     `json:"delivered_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
