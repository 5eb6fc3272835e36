package grid

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/formgrid-dev/formgrid/pkg/metrics"
)

// Fetcher retrieves a table payload from the legacy generic-read endpoint.
// With skipColumns set the encabezado list may be empty.
type Fetcher interface {
	FetchTable(ctx context.Context, table string, skipColumns bool) (*Payload, error)
}

// Table is a loaded grid: column configuration, all fetched rows and the
// computed footer aggregates.
type Table struct {
	Name       string            `json:"name"`
	PrimaryKey string            `json:"primaryKey"`
	Columns    []ColumnConfig    `json:"columns"`
	Rows       []Row             `json:"rows"`
	Footer     map[string]string `json:"footer"`
}

// Engine loads and refreshes grids. Column definitions are cached long-term
// per table; rows are refetched on every load.
type Engine struct {
	fetcher Fetcher
	logger  *slog.Logger

	mu   sync.Mutex
	cols map[string][]ColumnConfig
}

func NewEngine(f Fetcher, logger *slog.Logger) *Engine {
	return &Engine{fetcher: f, logger: logger, cols: map[string][]ColumnConfig{}}
}

// Load fetches columns (cached) and rows for table.
func (e *Engine) Load(ctx context.Context, table, pkColumn string) (*Table, error) {
	e.mu.Lock()
	cached, ok := e.cols[table]
	e.mu.Unlock()

	p, err := e.fetcher.FetchTable(ctx, table, ok)
	if err != nil {
		return nil, fmt.Errorf("load table %s: %w", table, err)
	}
	cols := cached
	if !ok {
		cols = mapColumns(p.Encabezado)
		e.mu.Lock()
		e.cols[table] = cols
		e.mu.Unlock()
	}
	t := &Table{
		Name:       table,
		PrimaryKey: pkColumn,
		Columns:    cols,
		Rows:       p.Datos,
		Footer:     ComputeFooter(cols, p.Datos),
	}
	metrics.GridRows.WithLabelValues(table).Set(float64(len(t.Rows)))
	return t, nil
}

// Refresh refetches row data only, preserving cached column definitions.
// Loading a table that was never loaded falls back to a full Load.
func (e *Engine) Refresh(ctx context.Context, table, pkColumn string) (*Table, error) {
	return e.Load(ctx, table, pkColumn)
}

// Forget drops the cached column definitions, forcing a full refetch on the
// next load. Used when the bound table changes schema.
func (e *Engine) Forget(table string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.cols, table)
}

func mapColumns(specs []ColumnSpec) []ColumnConfig {
	out := make([]ColumnConfig, 0, len(specs)+1)
	for _, s := range specs {
		out = append(out, buildColumn(s))
	}
	out = append(out, ColumnConfig{Field: ActionsColumn, Align: AlignCenter, Aggregate: AggNone, Visible: true})
	return out
}

// Cell renders one cell. Missing keys degrade to blank.
func Cell(r Row, field string) string {
	v, ok := r[field]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
