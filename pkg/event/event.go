package event

import "context"

// Event is the only persisted entity. Dates are stored in display form
// ("JAN 13") without a year.
type Event struct {
	ID       string   `json:"id"`
	Day      string   `json:"day"`
	Date     string   `json:"date"`
	EndDate  string   `json:"endDate,omitempty"`
	Time     string   `json:"time"`
	Title    string   `json:"title"`
	Location string   `json:"location"`
	Price    string   `json:"price"`
	Tags     []string `json:"tags"`
	Link     string   `json:"link,omitempty"`
}

// Draft is what the admin form submits. Date and EndDate are calendar
// dates ("2026-01-13"), Price is the bare amount ("25").
// Field order decides which missing field is reported first.
type Draft struct {
	ID       string   `json:"id"`
	Title    string   `json:"title" validate:"required"`
	Date     string   `json:"date" validate:"required"`
	Location string   `json:"location" validate:"required"`
	Link     string   `json:"link" validate:"required"`
	Time     string   `json:"time" validate:"required"`
	EndDate  string   `json:"endDate"`
	Price    string   `json:"price"`
	Tags     []string `json:"tags"`
}

// Filter narrows List results.
type Filter struct {
	Upcoming   bool
	Categories []string
}

// Store persists the complete collection as one unit. The last Save wins.
type Store interface {
	Load(ctx context.Context) ([]Event, error)
	Save(ctx context.Context, events []Event) error
}
