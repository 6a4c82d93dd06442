package importer

import (
	"fmt"
	"strconv"
	"strings"
)

// Record is one raw spreadsheet row. Values are keyed by the original header
// text; cells keep their decoded type (string from file readers, float64 from
// JSON bodies) so the date resolver can tell serials from strings.
type Record struct {
	RowNumber int
	Values    map[string]any
}

func (r Record) Get(field string) string {
	return strings.TrimSpace(cellString(r.Values[field]))
}

func (r Record) Raw(field string) any {
	return r.Values[field]
}

func cellString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
