package dispatch

type CreateDispatchRequest struct {
	OrderID int64   `json:"order_id" validate:"required,gt=0"`
	Address string  `json:"address" validate:"required,max=300"`
	Carrier *string `json:"carrier,omitempty" validate:"omitempty,max=100"`
	Notes   *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type UpdateDispatchRequest struct {
	Address *string `json:"address,omitempty" validate:"omitempty,max=300"`
	Carrier *string `json:"carrier,omitempty" validate:"omitempty,max=100"`
	Notes   *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type ListDispatchesRequest struct {
	OrderID *int64
	Status  *string
	Page    int
	PerPage int
}
