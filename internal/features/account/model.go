package account

import "time"

type Account struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Website   string    `json:"website"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AccountRequest struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Website string `json:"website"`
	City    string `json:"city"`
	State   string `json:"state"`
}

type ListFilter struct {
	Type   string
	Search string
	City   string
	State  string
}
