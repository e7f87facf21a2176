package clients

type CreateClientRequest struct {
	Name     string  `json:"name" validate:"required,max=200"`
	Document *string `json:"document,omitempty" validate:"omitempty,max=50"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address  *string `json:"address,omitempty" validate:"omitempty,max=200"`
	City     *string `json:"city,omitempty" validate:"omitempty,max=100"`
	Notes    *string `json:"notes,omitempty"`
}

type UpdateClientRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Document *string `json:"document,omitempty" validate:"omitempty,max=50"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address  *string `json:"address,omitempty" validate:"omitempty,max=200"`
	City     *string `json:"city,omitempty" validate:"omitempty,max=100"`
	Notes    *string `json:"notes,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

type ListClientsRequest struct {
	Search   *string `json:"search,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
	Page     int     `json:"page" validate:"gte=0"`
	PerPage  int     `json:"per_page" validate:"gte=0,lte=200"`
}
