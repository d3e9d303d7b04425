package meeting

import "time"

type Meeting struct {
	ID          int64      `json:"id"`
	AccountID   *int64     `json:"account_id,omitempty"`
	ContactID   *int64     `json:"contact_id,omitempty"`
	Subject     string     `json:"subject"`
	Location    string     `json:"location"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	OrganizerID *int64     `json:"organizer_id,omitempty"`
	CreatedBy   int64      `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type MeetingRequest struct {
	AccountID   *int64     `json:"account_id"`
	ContactID   *int64     `json:"contact_id"`
	Subject     string     `json:"subject"`
	Location    string     `json:"location"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	OrganizerID *int64     `json:"organizer_id"`
}

type ListFilter struct {
	AccountID   int64
	ContactID   int64
	OrganizerID int64
	From        time.Time
	To          time.Time
	Search      string
}
