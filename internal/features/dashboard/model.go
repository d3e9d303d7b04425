package dashboard

import "time"

type Widget struct {
	ID       string                 `json:"id"`
	Type     string                 `json:"type"`
	Title    string                 `json:"title"`
	Position WidgetPosition         `json:"position"`
	Config   map[string]interface{} `json:"config,omitempty"`
}

type WidgetPosition struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

type Dashboard struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	IsDefault bool      `json:"is_default"`
	Widgets   []Widget  `json:"widgets"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ConfigRequest struct {
	Name    string   `json:"name"`
	Widgets []Widget `json:"widgets"`
}

type DonationSummary struct {
	Count       int64   `json:"count"`
	TotalAmount float64 `json:"total_amount"`
	MonthAmount float64 `json:"month_amount"`
}

type RecentDonation struct {
	ID         int64     `json:"id"`
	Amount     float64   `json:"amount"`
	Currency   string    `json:"currency"`
	Campaign   string    `json:"campaign"`
	ReceivedAt time.Time `json:"received_at"`
}

type UpcomingMeeting struct {
	ID       int64     `json:"id"`
	Subject  string    `json:"subject"`
	Location string    `json:"location"`
	StartsAt time.Time `json:"starts_at"`
}

type Summary struct {
	Donations        DonationSummary   `json:"donations"`
	OpenCases        int64             `json:"open_cases"`
	RecentDonations  []RecentDonation  `json:"recent_donations"`
	UpcomingMeetings []UpcomingMeeting `json:"upcoming_meetings"`
}
