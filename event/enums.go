package event

import (
	"fmt"
	"strings"
)

// Status is the event lifecycle state. Input is case-insensitive; anything
// unrecognized (including blank) defaults to PENDING on import.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusAnnounced Status = "ANNOUNCED"
)

func Statuses() []Status {
	return []Status{StatusPending, StatusAnnounced}
}

// ParseStatus strictly parses a status value (case-insensitive).
func ParseStatus(raw string) (Status, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(StatusPending):
		return StatusPending, nil
	case string(StatusAnnounced):
		return StatusAnnounced, nil
	default:
		return "", fmt.Errorf("unknown status %q (supported: PENDING, ANNOUNCED)", raw)
	}
}

// NormalizeStatus applies the import default: invalid or missing values
// become PENDING instead of failing the row.
func NormalizeStatus(raw string) Status {
	status, err := ParseStatus(raw)
	if err != nil {
		return StatusPending
	}
	return status
}

// Category is a closed enumeration; unknown names fail validation and are
// never created as rows.
type Category string

var categories = []Category{
	"Mega Event",
	"Business Event",
	"Concert",
	"Mass Participation",
	"Major Event",
	"Key Cultural Event",
	"Trans/Infra Disrupt",
}

func Categories() []Category {
	return append([]Category(nil), categories...)
}

func ParseCategory(raw string) (Category, error) {
	value := strings.TrimSpace(raw)
	for _, category := range categories {
		if string(category) == value {
			return category, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", raw)
}

// SubCategory is a closed enumeration with the same semantics as Category.
type SubCategory string

var subCategories = []SubCategory{
	"Arts & Culture",
	"Business Event",
	"Lifestyle",
	"Music",
	"Sport (Non-Olympic / Paralympic)",
	"Sport (Olympic / Paralympic)",
	"STEM",
	"Trans/Infra Disrupt",
}

func SubCategories() []SubCategory {
	return append([]SubCategory(nil), subCategories...)
}

func ParseSubCategory(raw string) (SubCategory, error) {
	value := strings.TrimSpace(raw)
	for _, subCategory := range subCategories {
		if string(subCategory) == value {
			return subCategory, nil
		}
	}
	return "", fmt.Errorf("unknown sub-category %q", raw)
}

// AttendeeBucket labels the expected attendance range. Values outside the
// fixed set are persisted as NULL rather than rejecting the row.
type AttendeeBucket string

const AttendeeBucketInfoOnly AttendeeBucket = "INFO ONLY"

var attendeeBuckets = []AttendeeBucket{
	"<500",
	"501-1,000",
	"1,001-5,000",
	"5,001-10,000",
	"10,001-20,000",
	"20,001-50,000",
	">50,000",
	AttendeeBucketInfoOnly,
}

func AttendeeBuckets() []AttendeeBucket {
	return append([]AttendeeBucket(nil), attendeeBuckets...)
}

// ParseAttendeeBucket returns the matching bucket or "" when the value is
// blank or outside the fixed set.
func ParseAttendeeBucket(raw string) AttendeeBucket {
	value := strings.TrimSpace(raw)
	for _, bucket := range attendeeBuckets {
		if string(bucket) == value {
			return bucket
		}
	}
	return ""
}
