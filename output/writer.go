package output

import (
	"fmt"
	"strings"

	"eventdesk/event"
)

type Writer interface {
	Write(path string, events []event.Event) error
}

func WriterForFormat(format string) (Writer, error) {
	switch normalizeFormat(format) {
	case "csv":
		return &CSVWriter{}, nil
	case "excel", "xlsx":
		return &ExcelWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

func normalizeFormat(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}

var exportHeaders = []string{
	"Name", "Status", "StartDate", "EndDate", "Venue", "Company",
	"Category", "SubCategory", "TotalAttendees", "AttendeeCategory", "Details",
}

func exportRow(ev event.Event) []string {
	attendees := ""
	if ev.TotalAttendees != nil {
		attendees = fmt.Sprintf("%d", *ev.TotalAttendees)
	}
	return []string{
		ev.Name,
		string(ev.Status),
		ev.StartDate,
		ev.EndDate,
		ev.Venue,
		ev.Company,
		string(ev.Category),
		string(ev.SubCategory),
		attendees,
		string(ev.AttendeeBucket),
		ev.Details,
	}
}
