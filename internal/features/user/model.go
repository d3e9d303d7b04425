package user

import "time"

type User struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ScopeGrant mirrors one user_scopes row. A nil slice leaves that dimension
// unrestricted; a non-nil empty slice grants nothing on it.
type ScopeGrant struct {
	UserID        int64     `json:"user_id"`
	AccountIDs    []int64   `json:"account_ids"`
	ContactIDs    []int64   `json:"contact_ids"`
	AccountTypes  []string  `json:"account_types"`
	CreatedByOnly bool      `json:"created_by_only"`
	UpdatedAt     time.Time `json:"updated_at"`
}
