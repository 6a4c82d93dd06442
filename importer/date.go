package importer

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Spreadsheet serial day 0. Two days before 1 Jan 1900: serial 1 is
// 1899-12-31 under the historical 1900 leap-year bug convention.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var monthAbbrevs = map[string]time.Month{
	"JAN": time.January,
	"FEB": time.February,
	"MAR": time.March,
	"APR": time.April,
	"MAY": time.May,
	"JUN": time.June,
	"JUL": time.July,
	"AUG": time.August,
	"SEP": time.September,
	"OCT": time.October,
	"NOV": time.November,
	"DEC": time.December,
}

// ResolveDate converts a raw cell value into an ISO YYYY-MM-DD string, or ""
// when the value is empty or unresolvable. Numeric cells are spreadsheet day
// serials; excelize returns serial cells as digit strings, so those are
// treated as serials too. Slash strings parse as day/month/year.
func ResolveDate(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case float64:
		return serialToISO(int(v))
	case int:
		return serialToISO(v)
	case int64:
		return serialToISO(int(v))
	case string:
		return resolveDateString(v)
	default:
		return ""
	}
}

// ResolveStartDate resolves like ResolveDate but, when the value itself does
// not yield a date, falls back to a previously extracted year plus a
// "day MONTHABBR" pair. Only the start-date field carries this fallback.
func ResolveStartDate(value any, fallbackYear, fallbackDayMonth string) string {
	if iso := ResolveDate(value); iso != "" {
		return iso
	}
	return fallbackDate(fallbackYear, fallbackDayMonth)
}

func resolveDateString(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return ""
	}
	// Already-resolved dates pass through unchanged, so re-normalizing a
	// client-normalized row is a no-op.
	if _, err := time.Parse("2006-01-02", cleaned); err == nil {
		return cleaned
	}
	if !strings.Contains(cleaned, "/") {
		if serial, err := strconv.ParseFloat(cleaned, 64); err == nil {
			return serialToISO(int(serial))
		}
		return ""
	}

	parts := strings.Split(cleaned, "/")
	if len(parts) != 3 {
		return ""
	}
	day := strings.TrimSpace(parts[0])
	month := strings.TrimSpace(parts[1])
	year := strings.TrimSpace(parts[2])
	if day == "" || month == "" || year == "" {
		return ""
	}
	if len(year) == 2 {
		year = "20" + year
	}
	return year + "-" + padDay(month) + "-" + padDay(day)
}

func fallbackDate(year, dayMonth string) string {
	year = strings.TrimSpace(year)
	fields := strings.Fields(dayMonth)
	if year == "" || len(fields) < 2 {
		return ""
	}

	day := fields[0]
	if _, err := strconv.Atoi(day); err != nil {
		return ""
	}
	month, ok := monthAbbrevs[strings.ToUpper(fields[1])]
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s-%02d-%s", year, int(month), padDay(day))
}

func serialToISO(serial int) string {
	return serialEpoch.AddDate(0, 0, serial).Format("2006-01-02")
}

func padDay(value string) string {
	if len(value) == 1 {
		return "0" + value
	}
	return value
}
