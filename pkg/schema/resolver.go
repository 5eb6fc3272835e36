package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/iancoleman/strcase"
	"github.com/jinzhu/inflection"

	"github.com/formgrid-dev/formgrid/pkg/metrics"
	"github.com/formgrid-dev/formgrid/pkg/widget"
)

// bookkeeping columns are server managed and never user editable.
var bookkeeping = map[string]struct{}{
	"id_usuario":        {},
	"fecha_registro":    {},
	"fecha_actualizado": {},
	"id_estado":         {},
}

// FieldSource fetches raw column metadata for a table.
type FieldSource interface {
	FetchFields(ctx context.Context, table string) ([]RawField, error)
}

// Resolver turns raw backend field lists into typed FieldDescriptors.
type Resolver struct {
	src      FieldSource
	policies *widget.Store
	cache    Cache
	ttl      time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	recent map[string]string // table -> pk column, for the refresh job
}

func NewResolver(src FieldSource, policies *widget.Store, cache Cache, logger *slog.Logger) *Resolver {
	return &Resolver{
		src:      src,
		policies: policies,
		cache:    cache,
		ttl:      12 * time.Hour,
		logger:   logger,
		recent:   map[string]string{},
	}
}

// SetTTL overrides the schema cache lifetime.
func (r *Resolver) SetTTL(d time.Duration) { r.ttl = d }

// Resolve fetches and maps the schema for table. A fetch or decode failure
// returns a non-nil error; an empty editable field list is a valid result and
// returns an empty slice, so callers can tell the two apart.
func (r *Resolver) Resolve(ctx context.Context, table, pkColumn string) ([]FieldDescriptor, error) {
	r.mu.Lock()
	r.recent[table] = pkColumn
	r.mu.Unlock()

	key := "schema:" + table
	if r.cache != nil {
		if b, ok := r.cache.Get(ctx, key); ok {
			var out []FieldDescriptor
			if err := json.Unmarshal(b, &out); err == nil {
				metrics.SchemaCacheHits.Inc()
				return out, nil
			}
		}
		metrics.SchemaCacheMisses.Inc()
	}
	raw, err := r.src.FetchFields(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("fetch fields for %s: %w", table, err)
	}
	out := make([]FieldDescriptor, 0, len(raw))
	for _, f := range raw {
		name := strcase.ToSnake(strings.TrimSpace(f.Nombre))
		if name == "" {
			continue
		}
		if _, skip := bookkeeping[name]; skip {
			continue
		}
		out = append(out, r.describe(table, pkColumn, name, f))
	}
	if r.cache != nil {
		if b, err := json.Marshal(out); err == nil {
			r.cache.Set(ctx, key, b, r.ttl)
		}
	}
	return out, nil
}

// Invalidate drops the cached schema for table.
func (r *Resolver) Invalidate(ctx context.Context, table string) {
	if r.cache != nil {
		r.cache.Delete(ctx, "schema:"+table)
	}
}

// RefreshHot re-fetches the schema of every table resolved since startup so
// hot tables never serve a cache entry older than the refresh interval.
func (r *Resolver) RefreshHot(ctx context.Context) {
	r.mu.Lock()
	hot := make(map[string]string, len(r.recent))
	for table, pk := range r.recent {
		hot[table] = pk
	}
	r.mu.Unlock()

	for table, pk := range hot {
		r.Invalidate(ctx, table)
		if _, err := r.Resolve(ctx, table, pk); err != nil {
			r.logger.Error("schema refresh", "table", table, "err", err)
		}
	}
}

func (r *Resolver) describe(table, pkColumn, name string, f RawField) FieldDescriptor {
	d := FieldDescriptor{
		Name:     name,
		Label:    label(name, f.Titulo),
		DataType: dataType(f.Tipo),
		Required: f.Requerido,
	}
	if f.Visible != nil && !*f.Visible {
		d.Hidden = true
	}
	if name == pkColumn {
		// Primary keys are hidden from the form but kept in the payload.
		d.IsPrimaryKey = true
		d.Hidden = true
		d.Widget = widget.KindPlainInput
		d.WidgetParams = map[string]any{}
		return d
	}
	ctx := widget.Ctx{Name: name, Type: strings.ToLower(f.Tipo), Table: table}
	if ref, ok := referenceTable(name); ok {
		ctx.RefTable = ref
	}
	kind, cfg := r.policies.Get().Resolve(ctx)
	d.Widget = kind
	d.WidgetParams = cfg
	switch kind {
	case widget.KindDynamicSelect, widget.KindAsyncSearchSelect:
		src := &widget.SelectSource{}
		if p, ok := cfg["procedure"].(string); ok {
			src.Procedure = p
		}
		if dep, ok := cfg["depends_on"].(string); ok {
			src.DependsOn = dep
		}
		if p, ok := cfg["dependent_param"].(string); ok {
			src.DependentParam = p
		}
		d.Select = src
		d.ReferenceTable = ctx.RefTable
	case widget.KindMaskedInput:
		d.DataType = TypeMasked
		if m, ok := cfg["mask"].(string); ok {
			d.Mask = m
		}
	}
	return d
}

// referenceTable derives the pluralized target table of a foreign key column.
func referenceTable(name string) (string, bool) {
	if !strings.HasPrefix(name, "id_") {
		return "", false
	}
	base := strings.TrimPrefix(name, "id_")
	if base == "" {
		return "", false
	}
	return inflection.Plural(base), true
}

func label(name, titulo string) string {
	if titulo != "" {
		return titulo
	}
	words := strings.Split(name, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func dataType(tipo string) DataType {
	switch strings.ToLower(strings.TrimSpace(tipo)) {
	case "entero", "int", "integer", "bigint", "smallint", "numero":
		return TypeInteger
	case "logico", "bit", "bool", "boolean":
		return TypeBool
	case "fecha", "date", "datetime", "timestamp":
		return TypeDateTime
	default:
		return TypeText
	}
}
