package form

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/formgrid-dev/formgrid/pkg/schema"
)

// Serialize flattens a value map into the backend's CSV-like encoding:
// comma-joined field names and values, commas inside values replaced by
// spaces, values upper-cased. An empty value becomes "0" for the first field
// (the primary key) and "" for the rest.
func Serialize(fields []schema.FieldDescriptor, values map[string]any) (campos, valores string) {
	names := make([]string, 0, len(fields))
	vals := make([]string, 0, len(fields))
	for i, f := range fields {
		names = append(names, f.Name)
		v := strings.ToUpper(strings.ReplaceAll(formatValue(values[f.Name]), ",", " "))
		if v == "" && i == 0 {
			v = "0"
		}
		vals = append(vals, v)
	}
	return strings.Join(names, ","), strings.Join(vals, ",")
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format("2006-01-02")
	case bool:
		if x {
			return "1"
		}
		return "0"
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}
