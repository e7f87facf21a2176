package products

type CreateProductRequest struct {
	CategoryID  int64   `json:"category_id" validate:"required,gt=0"`
	Code        string  `json:"code" validate:"required,max=50"`
	Name        string  `json:"name" validate:"required,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Price       float64 `json:"price" validate:"gte=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	ImageURL    *string `json:"image_url,omitempty" validate:"omitempty,url"`
}

type UpdateProductRequest struct {
	CategoryID  *int64  `json:"category_id,omitempty" validate:"omitempty,gt=0"`
	Name        *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	ImageURL    *string `json:"image_url,omitempty" validate:"omitempty,url"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type UpdatePriceRequest struct {
	Price float64 `json:"price" validate:"gte=0"`
}

type AdjustStockRequest struct {
	// Delta may be negative; the resulting stock must stay at or above zero.
	Delta  int    `json:"delta" validate:"required"`
	Reason string `json:"reason" validate:"required,max=200"`
}

type ListProductsRequest struct {
	CategoryID *int64
	Search     *string
	IsActive   *bool
	Page       int
	PerPage    int
}
