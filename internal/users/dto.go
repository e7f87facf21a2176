package users

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=200"`
	Role     string `json:"role" validate:"required"`
	Password string `json:"password" validate:"omitempty,min=8"`
}

type UpdateUserRequest struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Role   *string `json:"role,omitempty"`
	Status *string `json:"status,omitempty" validate:"omitempty,oneof=activo inactivo suspendido"`
}

type UpdateOwnProfileRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

type ListUsersRequest struct {
	Role    *string `json:"role,omitempty"`
	Status  *string `json:"status,omitempty"`
	Search  *string `json:"search,omitempty"`
	Page    int     `json:"page" validate:"gte=0"`
	PerPage int     `json:"per_page" validate:"gte=0,lte=200"`
}
