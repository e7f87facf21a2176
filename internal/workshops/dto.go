package workshops

type CreateWorkshopRequest struct {
	Name             string  `json:"name" validate:"required,max=200"`
	RepresentativeID *int64  `json:"representative_id,omitempty" validate:"omitempty,gt=0"`
	Phone            *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address          *string `json:"address,omitempty" validate:"omitempty,max=200"`
	City             *string `json:"city,omitempty" validate:"omitempty,max=100"`
	Capacity         int     `json:"capacity" validate:"gte=0"`
}

type UpdateWorkshopRequest struct {
	Name             *string `json:"name,omitempty" validate:"omitempty,max=200"`
	RepresentativeID *int64  `json:"representative_id,omitempty" validate:"omitempty,gt=0"`
	Phone            *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address          *string `json:"address,omitempty" validate:"omitempty,max=200"`
	City             *string `json:"city,omitempty" validate:"omitempty,max=100"`
	Capacity         *int    `json:"capacity,omitempty" validate:"omitempty,gte=0"`
	IsActive         *bool   `json:"is_active,omitempty"`
}

type ListWorkshopsRequest struct {
	Search   *string
	IsActive *bool
	Page     int
	PerPage  int
}
