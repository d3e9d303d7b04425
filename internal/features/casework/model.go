package casework

import "time"

const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusClosed     = "closed"
)

type Case struct {
	ID        int64      `json:"id"`
	AccountID *int64     `json:"account_id,omitempty"`
	ContactID *int64     `json:"contact_id,omitempty"`
	Subject   string     `json:"subject"`
	Status    string     `json:"status"`
	Priority  string     `json:"priority"`
	OpenedAt  time.Time  `json:"opened_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
	CreatedBy int64      `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CaseRequest struct {
	AccountID *int64 `json:"account_id"`
	ContactID *int64 `json:"contact_id"`
	Subject   string `json:"subject"`
	Status    string `json:"status"`
	Priority  string `json:"priority"`
}

type ListFilter struct {
	AccountID int64
	ContactID int64
	Status    string
	Priority  string
	Search    string
}
