package schema

import "github.com/formgrid-dev/formgrid/pkg/widget"

// DataType is the coarse type a form field carries.
type DataType string

const (
	TypeText     DataType = "text"
	TypeInteger  DataType = "integer"
	TypeBool     DataType = "boolean-flag"
	TypeDateTime DataType = "datetime"
	TypeMasked   DataType = "masked"
)

// RawField is one column description as the legacy backend reports it.
type RawField struct {
	Nombre    string `json:"nombre"`
	Tipo      string `json:"tipo"`
	Titulo    string `json:"titulo,omitempty"`
	Requerido bool   `json:"requerido,omitempty"`
	Visible   *bool  `json:"visible,omitempty"`
}

// FieldDescriptor describes one form field. Descriptors are built once per
// table and are immutable for the lifetime of a form session.
type FieldDescriptor struct {
	Name           string               `json:"name"`
	Label          string               `json:"label"`
	DataType       DataType             `json:"dataType"`
	Widget         widget.Kind          `json:"widget"`
	WidgetParams   map[string]any       `json:"widgetParams,omitempty"`
	Select         *widget.SelectSource `json:"select,omitempty"`
	Mask           string               `json:"mask,omitempty"`
	Required       bool                 `json:"required"`
	IsPrimaryKey   bool                 `json:"isPrimaryKey"`
	Hidden         bool                 `json:"hidden"`
	ReferenceTable string               `json:"referenceTable,omitempty"`
}

// Visible reports whether the field participates in form rendering and
// required validation. Primary keys stay in the payload but never render.
func (f FieldDescriptor) Visible() bool { return !f.Hidden }
