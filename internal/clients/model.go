package clients

import "time"

// Client is a customer record stored in clientes. Storefront checkouts
// and back-office orders both reference it.
type Client struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Document  *string    `json:"document,omitempty"`
	Email     *string    `json:"email,omitempty"`
	Phone     *string    `json:"phone,omitempty"`
	Address   *string    `json:"address,omitempty"`
	City      *string    `json:"city,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}
