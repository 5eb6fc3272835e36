package handler

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/formgrid-dev/formgrid/pkg/configstore"
)

// ConfigHandler exposes the shared UI configuration store.
type ConfigHandler struct {
	Store *configstore.Store
}

type configOutput struct {
	Body struct {
		Values    map[string]string `json:"values"`
		SyncState string            `json:"syncState"`
		LastError string            `json:"lastError,omitempty"`
	}
}

type configSetInput struct {
	Key  string `path:"key"`
	Body struct {
		Value string `json:"value"`
	}
}

func RegisterConfig(api huma.API, h *ConfigHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "getConfig",
		Method:      http.MethodGet,
		Path:        "/v1/config",
		Summary:     "Read the user configuration cache",
		Tags:        []string{"Config"},
	}, h.get)
	huma.Register(api, huma.Operation{
		OperationID:   "setConfigItem",
		Method:        http.MethodPut,
		Path:          "/v1/config/{key}",
		Summary:       "Update one configuration value",
		Tags:          []string{"Config"},
		DefaultStatus: http.StatusNoContent,
	}, h.set)
	huma.Register(api, huma.Operation{
		OperationID: "flushConfig",
		Method:      http.MethodPost,
		Path:        "/v1/config/flush",
		Summary:     "Force an immediate config sync",
		Tags:        []string{"Config"},
	}, h.flush)
}

func (h *ConfigHandler) get(ctx context.Context, _ *struct{}) (*configOutput, error) {
	out := &configOutput{}
	out.Body.Values = h.Store.Snapshot()
	state, lastErr := h.Store.State()
	out.Body.SyncState = stateName(state)
	if lastErr != nil {
		out.Body.LastError = lastErr.Error()
	}
	return out, nil
}

func (h *ConfigHandler) set(ctx context.Context, in *configSetInput) (*struct{}, error) {
	h.Store.Set(in.Key, in.Body.Value)
	return &struct{}{}, nil
}

func (h *ConfigHandler) flush(ctx context.Context, _ *struct{}) (*configOutput, error) {
	if err := h.Store.Flush(ctx); err != nil {
		return nil, huma.Error502BadGateway("config sync failed", err)
	}
	return h.get(ctx, nil)
}

func stateName(s configstore.SyncState) string {
	switch s {
	case configstore.SyncPending:
		return "pending"
	case configstore.SyncFailed:
		return "failed"
	default:
		return "idle"
	}
}
