package upstream

import (
	"encoding/json"
	"fmt"

	"github.com/formgrid-dev/formgrid/pkg/form"
)

// envelope is the legacy response wrapper: the actual payload travels as a
// JSON string in the respuesta field.
type envelope struct {
	Respuesta string `json:"respuesta"`
}

func (e envelope) decode(v any) error {
	if e.Respuesta == "" {
		return fmt.Errorf("empty response envelope")
	}
	return json.Unmarshal([]byte(e.Respuesta), v)
}

// optionRow is one entry of the filters endpoint payload.
type optionRow struct {
	Valor       string `json:"valor"`
	Descripcion string `json:"descripcion"`
}

// writeResponse is the generic write answer.
type writeResponse struct {
	CodigoEstado statusCode `json:"codigo_estado"`
	Mensaje      string     `json:"mensaje"`
	CampoEnfocar string     `json:"campo_enfocar,omitempty"`
}

// encodeWrite wraps the flattened record in the json-string body the write
// endpoint expects.
func encodeWrite(req form.WriteRequest) (map[string]string, error) {
	inner, err := json.Marshal(map[string]string{
		"tabla":   req.Table,
		"campos":  req.Fields,
		"valores": req.Values,
	})
	if err != nil {
		return nil, err
	}
	return map[string]string{"json": string(inner)}, nil
}
