package confections

type CreateConfectionRequest struct {
	OrderID     int64  `json:"order_id" validate:"required,gt=0"`
	WorkshopID  int64  `json:"workshop_id" validate:"required,gt=0"`
	Description string `json:"description" validate:"required,max=500"`
	Quantity    int    `json:"quantity" validate:"required,gt=0"`
}

type UpdateConfectionRequest struct {
	WorkshopID  *int64  `json:"workshop_id,omitempty" validate:"omitempty,gt=0"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Quantity    *int    `json:"quantity,omitempty" validate:"omitempty,gt=0"`
}

type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type RegisterMaterialRequest struct {
	Material string  `json:"material" validate:"required,max=200"`
	Quantity float64 `json:"quantity" validate:"required,ne=0"`
	Unit     string  `json:"unit" validate:"required,max=20"`
}

type ListConfectionsRequest struct {
	OrderID    *int64
	WorkshopID *int64
	Status     *string
	Page       int
	PerPage    int
}
