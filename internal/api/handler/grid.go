package handler

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/formgrid-dev/formgrid/pkg/configstore"
	"github.com/formgrid-dev/formgrid/pkg/grid"
)

// GridHandler serves grid data. Search, sort and pagination apply to already
// loaded rows; they never re-query the backend.
type GridHandler struct {
	Engine *grid.Engine
	Config *configstore.Store
}

type gridParams struct {
	Table  string `path:"table"`
	PK     string `query:"pk"`
	Search string `query:"search"`
	Sort   string `query:"sort"`
	Desc   bool   `query:"desc"`
	Page   int    `query:"page" minimum:"0"`
	Size   int    `query:"size" minimum:"0"`
}

type gridBody struct {
	Name       string              `json:"name"`
	PrimaryKey string              `json:"primaryKey"`
	Columns    []grid.ColumnConfig `json:"columns"`
	Rows       []grid.Row          `json:"rows"`
	Footer     map[string]string   `json:"footer"`
	Total      int                 `json:"total"`
}

type gridOutput struct {
	Body gridBody
}

type refreshParams struct {
	Table string `path:"table"`
	PK    string `query:"pk"`
}

func RegisterGrid(api huma.API, h *GridHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "getTableGrid",
		Method:      http.MethodGet,
		Path:        "/v1/tables/{table}/grid",
		Summary:     "Load a table grid",
		Tags:        []string{"Grid"},
	}, h.get)
	huma.Register(api, huma.Operation{
		OperationID: "refreshTableGrid",
		Method:      http.MethodPost,
		Path:        "/v1/tables/{table}/grid/refresh",
		Summary:     "Refetch row data, keeping column definitions",
		Tags:        []string{"Grid"},
	}, h.refresh)
}

func (h *GridHandler) get(ctx context.Context, in *gridParams) (*gridOutput, error) {
	return h.load(ctx, in, false)
}

func (h *GridHandler) refresh(ctx context.Context, in *refreshParams) (*gridOutput, error) {
	return h.load(ctx, &gridParams{Table: in.Table, PK: in.PK}, true)
}

func (h *GridHandler) load(ctx context.Context, in *gridParams, refresh bool) (*gridOutput, error) {
	pk := in.PK
	if pk == "" {
		pk = PrimaryKeyFor(in.Table)
	}
	var t *grid.Table
	var err error
	if refresh {
		t, err = h.Engine.Refresh(ctx, in.Table, pk)
	} else {
		t, err = h.Engine.Load(ctx, in.Table, pk)
	}
	if err != nil {
		return nil, huma.Error502BadGateway("table load failed", err)
	}
	v := grid.NewView(t)
	if in.Search != "" {
		v.SetFilter(in.Search)
	}
	if in.Sort != "" {
		v.SortBy(in.Sort, !in.Desc)
	}
	size := in.Size
	if size == 0 {
		size = int(h.Config.GetNumber("filas_pagina", 25))
	}
	return &gridOutput{Body: gridBody{
		Name:       t.Name,
		PrimaryKey: t.PrimaryKey,
		Columns:    t.Columns,
		Rows:       v.Page(in.Page, size),
		Footer:     t.Footer,
		Total:      v.Len(),
	}}, nil
}
