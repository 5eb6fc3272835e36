package handler

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/jinzhu/inflection"

	"github.com/formgrid-dev/formgrid/pkg/schema"
)

// SchemaHandler serves resolved form schemas.
type SchemaHandler struct {
	Resolver *schema.Resolver
}

type schemaParams struct {
	Table string `path:"table"`
	PK    string `query:"pk"`
}

type schemaOutput struct {
	Body []schema.FieldDescriptor
}

type invalidateParams struct {
	Table string `path:"table"`
}

func RegisterSchema(api huma.API, h *SchemaHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "getTableSchema",
		Method:      http.MethodGet,
		Path:        "/v1/tables/{table}/schema",
		Summary:     "Resolve the form schema of a table",
		Tags:        []string{"Schema"},
	}, h.get)
	huma.Register(api, huma.Operation{
		OperationID:   "invalidateTableSchema",
		Method:        http.MethodDelete,
		Path:          "/v1/tables/{table}/schema",
		Summary:       "Drop the cached schema of a table",
		Tags:          []string{"Schema"},
		DefaultStatus: http.StatusNoContent,
	}, h.invalidate)
}

func (h *SchemaHandler) get(ctx context.Context, in *schemaParams) (*schemaOutput, error) {
	pk := in.PK
	if pk == "" {
		pk = PrimaryKeyFor(in.Table)
	}
	fields, err := h.Resolver.Resolve(ctx, in.Table, pk)
	if err != nil {
		return nil, huma.Error502BadGateway("schema fetch failed", err)
	}
	return &schemaOutput{Body: fields}, nil
}

func (h *SchemaHandler) invalidate(ctx context.Context, in *invalidateParams) (*struct{}, error) {
	h.Resolver.Invalidate(ctx, in.Table)
	return &struct{}{}, nil
}

// PrimaryKeyFor derives the conventional primary key column of a table:
// provincias → id_provincia.
func PrimaryKeyFor(table string) string {
	return "id_" + inflection.Singular(table)
}
