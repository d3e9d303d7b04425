package volunteer

import "time"

type Volunteer struct {
	ID          int64      `json:"id"`
	ContactID   int64      `json:"contact_id"`
	Status      string     `json:"status"`
	Skills      string     `json:"skills"`
	HoursLogged float64    `json:"hours_logged"`
	StartedOn   *time.Time `json:"started_on,omitempty"`
	CreatedBy   int64      `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type VolunteerRequest struct {
	ContactID   int64      `json:"contact_id"`
	Status      string     `json:"status"`
	Skills      string     `json:"skills"`
	HoursLogged float64    `json:"hours_logged"`
	StartedOn   *time.Time `json:"started_on"`
}

type ListFilter struct {
	ContactID int64
	Status    string
	Search    string
}
