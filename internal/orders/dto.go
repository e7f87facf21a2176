package orders

import "time"

type OrderItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

type CreateOrderRequest struct {
	ClientID     int64              `json:"client_id" validate:"required,gt=0"`
	Notes        *string            `json:"notes,omitempty" validate:"omitempty,max=1000"`
	DeliveryDate *time.Time         `json:"delivery_date,omitempty"`
	Items        []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type UpdateOrderRequest struct {
	Notes        *string             `json:"notes,omitempty" validate:"omitempty,max=1000"`
	DeliveryDate *time.Time          `json:"delivery_date,omitempty"`
	Items        *[]OrderItemRequest `json:"items,omitempty" validate:"omitempty,min=1,dive"`
}

type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type ListOrdersRequest struct {
	ClientID *int64
	Status   *string
	From     *time.Time
	To       *time.Time
	Page     int
	PerPage  int
}
