package donation

import "time"

type Donation struct {
	ID           int64     `json:"id"`
	AccountID    *int64    `json:"account_id,omitempty"`
	ContactID    *int64    `json:"contact_id,omitempty"`
	Amount       float64   `json:"amount"`
	Fee          float64   `json:"fee"`
	Currency     string    `json:"currency"`
	Method       string    `json:"method"`
	Campaign     string    `json:"campaign"`
	ReceivedAt   time.Time `json:"received_at"`
	Acknowledged bool      `json:"acknowledged"`
	CreatedBy    int64     `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type DonationRequest struct {
	AccountID    *int64    `json:"account_id"`
	ContactID    *int64    `json:"contact_id"`
	Amount       float64   `json:"amount"`
	Fee          float64   `json:"fee"`
	Currency     string    `json:"currency"`
	Method       string    `json:"method"`
	Campaign     string    `json:"campaign"`
	ReceivedAt   time.Time `json:"received_at"`
	Acknowledged bool      `json:"acknowledged"`
}

type ListFilter struct {
	AccountID    int64
	ContactID    int64
	Method       string
	Campaign     string
	Acknowledged *bool
	ReceivedFrom time.Time
	ReceivedTo   time.Time
}

// ListTotals accompanies every donations page so clients can show the
// aggregate without a second round-trip.
type ListTotals struct {
	Count  int64   `json:"count"`
	Amount float64 `json:"amount"`
}
