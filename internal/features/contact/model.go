package contact

import "time"

type Contact struct {
	ID           int64     `json:"id"`
	AccountID    *int64    `json:"account_id,omitempty"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Title        string    `json:"title"`
	DoNotContact bool      `json:"do_not_contact"`
	CreatedBy    int64     `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ContactRequest struct {
	AccountID    *int64 `json:"account_id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Title        string `json:"title"`
	DoNotContact bool   `json:"do_not_contact"`
}

type ListFilter struct {
	AccountID    int64
	Search       string
	DoNotContact *bool
}
