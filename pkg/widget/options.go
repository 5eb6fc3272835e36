package widget

import (
	"context"
	"log/slog"
	"sync"
)

// Fetcher resolves server-driven option lists. Implemented by the upstream
// client; params carry the procedure name plus its resolved arguments.
type Fetcher interface {
	FetchOptions(ctx context.Context, params map[string]string) ([]Option, error)
}

// SelectSource describes where a select widget obtains its options.
type SelectSource struct {
	// Static wins over Procedure when non-empty.
	Static []Option `json:"static,omitempty"`

	Procedure string            `json:"procedure,omitempty"`
	Params    map[string]string `json:"params,omitempty"`

	// DependsOn names the field whose value feeds DependentParam. While the
	// dependency value is empty the widget stays disabled and never fetches.
	DependsOn      string `json:"dependsOn,omitempty"`
	DependentParam string `json:"dependentParam,omitempty"`
}

// IsDependent reports whether the source is gated on another field.
func (s SelectSource) IsDependent() bool { return s.DependsOn != "" }

// OptionLoader loads options for dynamic and async-search selects. Fetch
// failures degrade to an empty option list; they are never fatal.
type OptionLoader struct {
	fetcher Fetcher
	logger  *slog.Logger

	// gens tracks one search generation per widget source, so in-flight
	// searches on unrelated widgets never supersede each other.
	mu   sync.Mutex
	gens map[string]uint64
}

func NewOptionLoader(f Fetcher, logger *slog.Logger) *OptionLoader {
	return &OptionLoader{fetcher: f, logger: logger, gens: map[string]uint64{}}
}

// Load resolves options for a dynamic select. The enabled flag is false when
// the source is dependent and its dependency value is empty, in which case no
// fetch is issued.
func (l *OptionLoader) Load(ctx context.Context, src SelectSource, depValue string) (opts []Option, enabled bool) {
	if src.IsDependent() && depValue == "" {
		return nil, false
	}
	if len(src.Static) > 0 {
		return src.Static, true
	}
	params := l.params(src, depValue)
	out, err := l.fetcher.FetchOptions(ctx, params)
	if err != nil {
		l.logger.Error("option fetch", "procedure", src.Procedure, "err", err)
		return []Option{}, true
	}
	return out, true
}

// Search resolves options for an async-search select keyed by the current
// term. Per widget source, each call supersedes earlier in-flight ones: when
// a slower earlier request resolves after a newer call for the same source
// started, its result is discarded and fresh reports false.
func (l *OptionLoader) Search(ctx context.Context, src SelectSource, depValue, term string) (opts []Option, fresh bool) {
	if src.IsDependent() && depValue == "" {
		return nil, false
	}
	key := searchKey(src)
	id := l.begin(key)
	params := l.params(src, depValue)
	params["busqueda"] = term
	out, err := l.fetcher.FetchOptions(ctx, params)
	if l.current(key) != id {
		return nil, false
	}
	if err != nil {
		l.logger.Error("option search", "procedure", src.Procedure, "err", err)
		return []Option{}, true
	}
	return out, true
}

// searchKey identifies a widget source for generation tracking.
func searchKey(src SelectSource) string {
	return src.Procedure + "\x00" + src.DependsOn
}

func (l *OptionLoader) begin(key string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gens[key]++
	return l.gens[key]
}

func (l *OptionLoader) current(key string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gens[key]
}

func (l *OptionLoader) params(src SelectSource, depValue string) map[string]string {
	params := map[string]string{"procedimiento": src.Procedure}
	for k, v := range src.Params {
		params[k] = v
	}
	if src.IsDependent() && src.DependentParam != "" {
		params[src.DependentParam] = depValue
	}
	return params
}
