package importer

import "strings"

// Canonical field names produced by header normalization.
const (
	FieldCompany               = "company"
	FieldStatus                = "status"
	FieldEventTitle            = "eventTitle"
	FieldStartDate             = "startDate"
	FieldEndDate               = "endDate"
	FieldVenueName             = "venueName"
	FieldCategoryName          = "categoryName"
	FieldSubCategoryName       = "subCategoryName"
	FieldTotalAttendees        = "totalAttendees"
	FieldTotalAttendeeCategory = "totalAttendeeCategory"
	FieldDetails               = "details"
	FieldEventYear             = "eventYear"
	FieldEventDate             = "eventDate"
)

// headerFields maps cleaned, case-folded header text to canonical fields.
// Spreadsheets arrive with headers wrapped, quoted, or carrying the visual
// return glyph; CleanHeader collapses those variants before lookup. Each
// canonical name also maps to itself so rows that were normalized client-side
// (JSON payloads keyed by canonical field) survive re-normalization.
var headerFields = map[string]string{
	"company":                 FieldCompany,
	"eventtitle":              FieldEventTitle,
	"startdate":               FieldStartDate,
	"enddate":                 FieldEndDate,
	"venuename":               FieldVenueName,
	"categoryname":            FieldCategoryName,
	"subcategoryname":         FieldSubCategoryName,
	"totalattendees":          FieldTotalAttendees,
	"totalattendeecategory":   FieldTotalAttendeeCategory,
	"eventyear":               FieldEventYear,
	"eventdate":               FieldEventDate,
	"company name":            FieldCompany,
	"organisation":            FieldCompany,
	"collaborator":            FieldCompany,
	"status":                  FieldStatus,
	"event status":            FieldStatus,
	"event title":             FieldEventTitle,
	"event name":              FieldEventTitle,
	"title":                   FieldEventTitle,
	"start date":              FieldStartDate,
	"event start date":        FieldStartDate,
	"end date":                FieldEndDate,
	"event end date":          FieldEndDate,
	"venue":                   FieldVenueName,
	"venue name":              FieldVenueName,
	"location":                FieldVenueName,
	"category":                FieldCategoryName,
	"event category":          FieldCategoryName,
	"sub category":            FieldSubCategoryName,
	"sub-category":            FieldSubCategoryName,
	"subcategory":             FieldSubCategoryName,
	"total attendees":         FieldTotalAttendees,
	"total no. of attendees":  FieldTotalAttendees,
	"no. of attendees":        FieldTotalAttendees,
	"attendee category":       FieldTotalAttendeeCategory,
	"total attendee category": FieldTotalAttendeeCategory,
	"details":                 FieldDetails,
	"remarks":                 FieldDetails,
	"event year":              FieldEventYear,
	"year":                    FieldEventYear,
	"event date":              FieldEventDate,
	"event date (day month)":  FieldEventDate,
}

var headerReplacer = strings.NewReplacer("\n", " ", "\r", " ", "⏎", " ")

// CleanHeader replaces embedded newlines and the return glyph with spaces,
// collapses whitespace runs, strips surrounding double quotes, and trims.
// Idempotent: CleanHeader(CleanHeader(h)) == CleanHeader(h).
func CleanHeader(raw string) string {
	cleaned := headerReplacer.Replace(raw)
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	cleaned = strings.Trim(cleaned, `"`)
	return strings.TrimSpace(cleaned)
}

// CanonicalFields rekeys a raw-header→cell map onto canonical field names.
// Unmapped headers are dropped; when two raw headers clean to the same
// canonical field the later one in iteration order wins.
func CanonicalFields(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for header, value := range raw {
		field, ok := headerFields[strings.ToLower(CleanHeader(header))]
		if !ok {
			continue
		}
		out[field] = value
	}
	return out
}
