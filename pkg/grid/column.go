package grid

import "strings"

// ColumnSpec is one column description as the legacy generic-read endpoint
// reports it inside the encabezado list.
type ColumnSpec struct {
	Columna string `json:"columna"`
	Titulo  string `json:"titulo,omitempty"`
	Tipo    string `json:"tipo,omitempty"`
	Alinear string `json:"alinear,omitempty"`
	Sumar   string `json:"sumar,omitempty"`
	Visible *bool  `json:"visible,omitempty"`
}

// Row is one grid row keyed by column name. Values render blank for columns
// the row does not carry.
type Row map[string]any

// Payload is the decoded generic-read envelope.
type Payload struct {
	Encabezado []ColumnSpec `json:"encabezado"`
	Datos      []Row        `json:"datos"`
}

// Alignment of a rendered column.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignRight  Alignment = "right"
	AlignCenter Alignment = "center"
)

// ColumnConfig drives grid rendering for one column.
type ColumnConfig struct {
	Field     string    `json:"field"`
	Title     string    `json:"title"`
	Type      string    `json:"type,omitempty"`
	Align     Alignment `json:"align"`
	Aggregate Aggregate `json:"aggregate"`
	Visible   bool      `json:"visible"`
}

// ActionsColumn is the synthetic trailing column carrying the edit
// affordance on generic tables.
const ActionsColumn = "_actions"

func buildColumn(c ColumnSpec) ColumnConfig {
	out := ColumnConfig{
		Field:     c.Columna,
		Title:     c.Titulo,
		Type:      strings.ToLower(c.Tipo),
		Align:     alignment(c),
		Aggregate: parseAggregate(c.Sumar),
		Visible:   c.Visible == nil || *c.Visible,
	}
	if out.Title == "" {
		out.Title = c.Columna
	}
	return out
}

// alignment prefers the declared alignment and falls back to the data type:
// numbers align right, dates center, everything else left.
func alignment(c ColumnSpec) Alignment {
	switch strings.ToLower(c.Alinear) {
	case "derecha", "right":
		return AlignRight
	case "centro", "center":
		return AlignCenter
	case "izquierda", "left":
		return AlignLeft
	}
	switch strings.ToLower(c.Tipo) {
	case "entero", "int", "integer", "decimal", "numero", "monto":
		return AlignRight
	case "fecha", "date", "datetime":
		return AlignCenter
	default:
		return AlignLeft
	}
}
