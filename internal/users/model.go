package users

import (
	"time"

	"github.com/telaris-erp/telaris/internal/authz"
)

// User is a back-office account stored in usuarios.
type User struct {
	ID        int64      `json:"id"`
	Subject   string     `json:"-"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      authz.Role `json:"role"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}
