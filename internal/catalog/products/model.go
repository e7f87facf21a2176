package products

import "time"

// Product is a sellable garment or fabric item. Stock counts finished
// units ready for dispatch.
type Product struct {
	ID           int64      `json:"id"`
	CategoryID   int64      `json:"category_id"`
	CategoryName string     `json:"category_name,omitempty"`
	Code         string     `json:"code"`
	Name         string     `json:"name"`
	Description  *string    `json:"description,omitempty"`
	Price        float64    `json:"price"`
	Stock        int        `json:"stock"`
	ImageURL     *string    `json:"image_url,omitempty"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}
