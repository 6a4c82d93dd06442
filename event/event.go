package event

// Record is the persisted event shape with resolved reference-table IDs.
// Empty StartDate/EndDate/AttendeeBucket/Details are stored as NULL.
type Record struct {
	ID             int64
	Name           string
	Status         Status
	StartDate      string
	EndDate        string
	VenueID        int64
	CompanyID      int64
	CategoryID     int64
	SubCategoryID  int64
	TotalAttendees *int
	AttendeeBucket AttendeeBucket
	Details        string
}

// Event is the read model with reference names joined in, used by listings,
// the JSON API, and exports.
type Event struct {
	ID             int64          `json:"id"`
	Name           string         `json:"name"`
	Status         Status         `json:"status"`
	StartDate      string         `json:"startDate,omitempty"`
	EndDate        string         `json:"endDate,omitempty"`
	Venue          string         `json:"venue"`
	Company        string         `json:"company"`
	Category       Category       `json:"category"`
	SubCategory    SubCategory    `json:"subCategory"`
	TotalAttendees *int           `json:"totalAttendees,omitempty"`
	AttendeeBucket AttendeeBucket `json:"totalAttendeeCategory,omitempty"`
	Details        string         `json:"details,omitempty"`
}

// NamedRow is one (id, name) pair from a reference table.
type NamedRow struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
