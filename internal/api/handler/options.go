package handler

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/formgrid-dev/formgrid/pkg/widget"
)

// OptionsHandler resolves select options for dynamic and async-search
// widgets.
type OptionsHandler struct {
	Loader *widget.OptionLoader
}

type optionsInput struct {
	Body struct {
		Source          widget.SelectSource `json:"source"`
		DependencyValue string              `json:"dependencyValue,omitempty"`
		Term            string              `json:"term,omitempty"`
		Async           bool                `json:"async,omitempty"`
	}
}

type optionsOutput struct {
	Body struct {
		Options []widget.Option `json:"options"`
		Enabled bool            `json:"enabled"`
		Fresh   bool            `json:"fresh"`
	}
}

func RegisterOptions(api huma.API, h *OptionsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "fetchOptions",
		Method:      http.MethodPost,
		Path:        "/v1/options",
		Summary:     "Resolve options for a select widget",
		Tags:        []string{"Options"},
	}, h.fetch)
}

func (h *OptionsHandler) fetch(ctx context.Context, in *optionsInput) (*optionsOutput, error) {
	out := &optionsOutput{}
	out.Body.Fresh = true
	if in.Body.Async {
		opts, fresh := h.Loader.Search(ctx, in.Body.Source, in.Body.DependencyValue, in.Body.Term)
		out.Body.Options = opts
		out.Body.Fresh = fresh
		// Enabled reflects the dependency gate only; a stale result does
		// not disable the widget.
		out.Body.Enabled = !in.Body.Source.IsDependent() || in.Body.DependencyValue != ""
		return out, nil
	}
	opts, enabled := h.Loader.Load(ctx, in.Body.Source, in.Body.DependencyValue)
	out.Body.Options = opts
	out.Body.Enabled = enabled
	return out, nil
}
