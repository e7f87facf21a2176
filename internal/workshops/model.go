package workshops

import "time"

// Workshop is an external sewing workshop that takes production jobs.
// RepresentativeID points at the back-office account of the workshop's
// contact person.
type Workshop struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	RepresentativeID *int64     `json:"representative_id,omitempty"`
	Phone            *string    `json:"phone,omitempty"`
	Address          *string    `json:"address,omitempty"`
	City             *string    `json:"city,omitempty"`
	Capacity         int        `json:"capacity"`
	IsActive         bool       `json:"is_active"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	DeletedAt        *time.Time `json:"deleted_at,omitempty"`
}
