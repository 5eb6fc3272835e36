package grid

import (
	"strconv"
)

// Aggregate selects the footer summary of a column.
type Aggregate string

const (
	AggNone  Aggregate = "none"
	AggSum   Aggregate = "sum"
	AggCount Aggregate = "row-count"
)

// parseAggregate maps the per-column sumar flag: "1" sums, "filas" counts.
func parseAggregate(s string) Aggregate {
	switch s {
	case "1":
		return AggSum
	case "filas":
		return AggCount
	default:
		return AggNone
	}
}

// ComputeFooter aggregates over all loaded rows, not just the visible page.
// Sums are formatted with two decimals.
func ComputeFooter(cols []ColumnConfig, rows []Row) map[string]string {
	out := map[string]string{}
	for _, c := range cols {
		switch c.Aggregate {
		case AggSum:
			var sum float64
			for _, r := range rows {
				if n, ok := numeric(r[c.Field]); ok {
					sum += n
				}
			}
			out[c.Field] = strconv.FormatFloat(sum, 'f', 2, 64)
		case AggCount:
			out[c.Field] = strconv.Itoa(len(rows))
		}
	}
	return out
}

func numeric(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case string:
		n, err := strconv.ParseFloat(x, 64)
		return n, err == nil
	default:
		return 0, false
	}
}
