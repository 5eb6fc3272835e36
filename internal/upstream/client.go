package upstream

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/formgrid-dev/formgrid/pkg/configstore"
	"github.com/formgrid-dev/formgrid/pkg/form"
	"github.com/formgrid-dev/formgrid/pkg/grid"
	"github.com/formgrid-dev/formgrid/pkg/metrics"
	"github.com/formgrid-dev/formgrid/pkg/schema"
	"github.com/formgrid-dev/formgrid/pkg/widget"
)

// Client provides REST access to the legacy administrative backend. It is
// constructed once at startup and injected into every consumer.
type Client struct {
	base string
	http *resty.Client
}

type Option func(*Client)

// WithToken sets the Authorization token.
func WithToken(tok string) Option {
	return func(c *Client) {
		c.http.SetAuthToken(tok)
	}
}

// WithRetry enables transport-level retries for idempotent fetches.
func WithRetry(count int) Option {
	return func(c *Client) {
		c.http.SetRetryCount(count)
	}
}

// New returns a new Client for the given base URL.
func New(base string, opts ...Option) *Client {
	c := &Client{base: strings.TrimSuffix(base, "/"), http: resty.New()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// FetchFields retrieves the raw column descriptions of a table.
func (c *Client) FetchFields(ctx context.Context, table string) ([]schema.RawField, error) {
	var out []schema.RawField
	resp, err := c.http.R().SetContext(ctx).
		SetBody(map[string]string{"tabla": table}).
		SetResult(&out).
		Post(c.base + "/api/esquema")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, restyErr(resp)
	}
	return out, nil
}

// FetchTable retrieves column definitions and rows. The payload arrives as a
// JSON string inside the response envelope.
func (c *Client) FetchTable(ctx context.Context, table string, skipColumns bool) (*grid.Payload, error) {
	var env envelope
	resp, err := c.http.R().SetContext(ctx).
		SetBody(map[string]any{"tabla": table, "omitir_columnas": skipColumns}).
		SetResult(&env).
		Post(c.base + "/api/tabla")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, restyErr(resp)
	}
	var p grid.Payload
	if err := env.decode(&p); err != nil {
		return nil, fmt.Errorf("table payload: %w", err)
	}
	return &p, nil
}

// FetchOptions resolves select options from the generic filters endpoint.
// Labels are sanitized before they leave this package.
func (c *Client) FetchOptions(ctx context.Context, params map[string]string) ([]widget.Option, error) {
	var env envelope
	resp, err := c.http.R().SetContext(ctx).
		SetBody(params).
		SetResult(&env).
		Post(c.base + "/api/filtros")
	if err != nil {
		metrics.OptionFetches.WithLabelValues("error").Inc()
		return nil, err
	}
	if resp.IsError() {
		metrics.OptionFetches.WithLabelValues("error").Inc()
		return nil, restyErr(resp)
	}
	var raw []optionRow
	if err := env.decode(&raw); err != nil {
		metrics.OptionFetches.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("options payload: %w", err)
	}
	out := make([]widget.Option, 0, len(raw))
	for _, r := range raw {
		out = append(out, widget.Option{
			Value: Sanitize(r.Valor),
			Label: Sanitize(r.Descripcion),
		})
	}
	metrics.OptionFetches.WithLabelValues("ok").Inc()
	return out, nil
}

// SubmitRecord posts a serialized generic write.
func (c *Client) SubmitRecord(ctx context.Context, req form.WriteRequest) (*form.WriteResult, error) {
	body, err := encodeWrite(req)
	if err != nil {
		return nil, err
	}
	var res writeResponse
	resp, err := c.http.R().SetContext(ctx).
		SetBody(body).
		SetResult(&res).
		Post(c.base + "/api/grabar")
	if err != nil {
		metrics.RecordWrites.WithLabelValues(req.Table, "error").Inc()
		return nil, err
	}
	if resp.IsError() {
		metrics.RecordWrites.WithLabelValues(req.Table, "error").Inc()
		return nil, restyErr(resp)
	}
	out := &form.WriteResult{
		Code:       int(res.CodigoEstado),
		Message:    res.Mensaje,
		FocusField: res.CampoEnfocar,
	}
	if res.CampoEnfocar != "" {
		for _, f := range strings.Split(res.CampoEnfocar, ",") {
			if f = strings.TrimSpace(f); f != "" {
				out.Fields = append(out.Fields, f)
			}
		}
		out.FocusField = out.Fields[0]
	}
	status := "ok"
	if out.Code != 200 {
		status = "rejected"
	}
	metrics.RecordWrites.WithLabelValues(req.Table, status).Inc()
	return out, nil
}

// SyncConfig mirrors user config changes to the server.
func (c *Client) SyncConfig(ctx context.Context, items []configstore.Item) error {
	resp, err := c.http.R().SetContext(ctx).
		SetBody(map[string]any{"configuraciones": items}).
		Post(c.base + "/api/configuraciones")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return restyErr(resp)
	}
	return nil
}

// FetchConfig retrieves the server-side user config for hydration.
func (c *Client) FetchConfig(ctx context.Context) (map[string]string, error) {
	var rows []configstore.Item
	resp, err := c.http.R().SetContext(ctx).
		SetResult(&rows).
		Get(c.base + "/api/configuraciones")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, restyErr(resp)
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Campo] = r.Valor
	}
	return out, nil
}

func restyErr(resp *resty.Response) error {
	return fmt.Errorf("upstream: %s", resp.Status())
}

// statusCode tolerates both numeric and quoted codigo_estado values.
type statusCode int

func (s *statusCode) UnmarshalJSON(b []byte) error {
	str := strings.Trim(string(b), `"`)
	if str == "" || str == "null" {
		*s = 0
		return nil
	}
	n, err := strconv.Atoi(str)
	if err != nil {
		return fmt.Errorf("codigo_estado: %w", err)
	}
	*s = statusCode(n)
	return nil
}
