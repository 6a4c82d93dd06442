package importer

import (
	"strconv"
	"strings"
)

// ImportRow is the canonical post-normalization row. Status is kept raw here;
// the executor applies the PENDING default. EventYear/EventDate are transient
// fallback inputs for start-date resolution and are never persisted.
type ImportRow struct {
	Company          string `json:"company"`
	Status           string `json:"status"`
	EventTitle       string `json:"eventTitle"`
	StartDate        string `json:"startDate,omitempty"`
	EndDate          string `json:"endDate,omitempty"`
	VenueName        string `json:"venueName"`
	CategoryName     string `json:"categoryName"`
	SubCategoryName  string `json:"subCategoryName"`
	TotalAttendees   *int   `json:"totalAttendees,omitempty"`
	AttendeeCategory string `json:"totalAttendeeCategory,omitempty"`
	Details          string `json:"details,omitempty"`
	EventYear        string `json:"-"`
	EventDate        string `json:"-"`
}

// NormalizeRow transforms one raw-header-keyed record into an ImportRow.
// Pure and deterministic: same raw record always yields the same row.
func NormalizeRow(raw map[string]any) ImportRow {
	record := Record{Values: CanonicalFields(raw)}

	row := ImportRow{
		Company:          record.Get(FieldCompany),
		Status:           record.Get(FieldStatus),
		EventTitle:       record.Get(FieldEventTitle),
		VenueName:        record.Get(FieldVenueName),
		CategoryName:     record.Get(FieldCategoryName),
		SubCategoryName:  record.Get(FieldSubCategoryName),
		AttendeeCategory: record.Get(FieldTotalAttendeeCategory),
		Details:          record.Get(FieldDetails),
		EventYear:        record.Get(FieldEventYear),
		EventDate:        record.Get(FieldEventDate),
	}
	row.StartDate = ResolveStartDate(record.Raw(FieldStartDate), row.EventYear, row.EventDate)
	row.EndDate = ResolveDate(record.Raw(FieldEndDate))
	row.TotalAttendees = parseAttendeeCount(record.Get(FieldTotalAttendees))

	return row
}

// NormalizeRows normalizes a batch, preserving input order.
func NormalizeRows(raw []map[string]any) []ImportRow {
	rows := make([]ImportRow, len(raw))
	for i, record := range raw {
		rows[i] = NormalizeRow(record)
	}
	return rows
}

func parseAttendeeCount(raw string) *int {
	if raw == "" {
		return nil
	}
	cleaned := strings.ReplaceAll(raw, ",", "")
	if dot := strings.IndexByte(cleaned, '.'); dot >= 0 {
		cleaned = cleaned[:dot]
	}
	count, err := strconv.Atoi(cleaned)
	if err != nil {
		return nil
	}
	return &count
}
