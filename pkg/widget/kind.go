package widget

import "fmt"

// Kind identifies one of the interchangeable input widgets. The kind is
// resolved once at schema-processing time; rendering layers dispatch on it.
type Kind int

const (
	KindPlainInput Kind = iota
	KindDynamicSelect
	KindDatePicker
	KindMaskedInput
	KindAsyncSearchSelect
)

var kindNames = map[Kind]string{
	KindPlainInput:        "plain-input",
	KindDynamicSelect:     "dynamic-select",
	KindDatePicker:        "date-picker",
	KindMaskedInput:       "masked-input",
	KindAsyncSearchSelect: "async-search-select",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "plain-input"
}

// MarshalText implements encoding.TextMarshaler so kinds serialize by name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind maps a widget name from a policy file to its Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return KindPlainInput, fmt.Errorf("unknown widget kind: %q", s)
}

// Option is one selectable entry of a select widget.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}
