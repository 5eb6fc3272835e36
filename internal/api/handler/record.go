package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/formgrid-dev/formgrid/internal/events"
	"github.com/formgrid-dev/formgrid/pkg/form"
	"github.com/formgrid-dev/formgrid/pkg/schema"
)

// RecordHandler runs the form pipeline for generic record writes: seed a
// session, validate required fields, serialize, submit upstream.
type RecordHandler struct {
	Resolver  *schema.Resolver
	Submitter form.Submitter
}

type recordInput struct {
	Table string `path:"table"`
	Body  struct {
		PK     string         `json:"pk,omitempty"`
		Mode   string         `json:"mode" enum:"create,edit"`
		Row    map[string]any `json:"row,omitempty"`
		Values map[string]any `json:"values"`
	}
}

type recordOutput struct {
	Body struct {
		Outcome form.Outcome      `json:"outcome"`
		Errors  map[string]string `json:"errors,omitempty"`
	}
}

func RegisterRecord(api huma.API, h *RecordHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "submitRecord",
		Method:      http.MethodPost,
		Path:        "/v1/tables/{table}/records",
		Summary:     "Submit a record through the generic write pipeline",
		Tags:        []string{"Record"},
		Errors:      []int{http.StatusUnprocessableEntity, http.StatusBadGateway},
	}, h.submit)
}

func (h *RecordHandler) submit(ctx context.Context, in *recordInput) (*recordOutput, error) {
	pk := in.Body.PK
	if pk == "" {
		pk = PrimaryKeyFor(in.Table)
	}
	fields, err := h.Resolver.Resolve(ctx, in.Table, pk)
	if err != nil {
		return nil, huma.Error502BadGateway("schema fetch failed", err)
	}
	if len(fields) == 0 {
		return nil, huma.Error422UnprocessableEntity("table has no editable fields")
	}

	sess := form.NewSession(in.Table, fields)
	switch in.Body.Mode {
	case "edit":
		if err := sess.OpenEdit(in.Body.Row); err != nil {
			if errors.Is(err, form.ErrInvalidEdit) {
				return nil, huma.Error422UnprocessableEntity(err.Error())
			}
			return nil, err
		}
	default:
		sess.OpenCreate()
	}
	for k, v := range in.Body.Values {
		if err := sess.SetValue(k, v); err != nil {
			return nil, err
		}
	}

	out := &recordOutput{}
	outcome, err := sess.Submit(ctx, h.Submitter)
	if err != nil {
		return nil, huma.Error502BadGateway("record write failed", err)
	}
	out.Body.Outcome = *outcome
	if errs := sess.Errors(); len(errs) > 0 {
		out.Body.Errors = errs
	}
	if outcome.OK {
		events.Emit(ctx, events.Event{
			Name: "record.saved",
			Time: time.Now(),
			Data: map[string]string{"table": in.Table, "mode": in.Body.Mode},
			ID:   uuid.NewString(),
		})
	}
	return out, nil
}
