package configstore

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"
)

// Item is one key/value pair in the config sync payload.
type Item struct {
	Campo string `json:"campo"`
	Valor string `json:"valor"`
}

// Syncer mirrors net config changes to the server. Implemented by the
// upstream client.
type Syncer interface {
	SyncConfig(ctx context.Context, items []Item) error
}

// Persister keeps a local copy of the config cache across restarts.
type Persister interface {
	Save(ctx context.Context, values map[string]string) error
	Load(ctx context.Context) (map[string]string, error)
}

// SensitiveKeys are never persisted locally.
var SensitiveKeys = map[string]struct{}{
	"base_datos": {},
	"dns":        {},
}

// SyncState reports the health of the outbound sync queue.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncPending
	SyncFailed
)

// Store is a flat key/value settings cache shared across components. Writes
// apply locally at once and are mirrored to the server through a debounced
// queue; repeated writes to one key within the window coalesce into a single
// sync call carrying only the net changes. Last write wins.
type Store struct {
	mu       sync.Mutex
	values   map[string]string
	pending  map[string]string
	timer    *time.Timer
	debounce time.Duration

	syncer  Syncer
	persist Persister
	logger  *slog.Logger
	onSync  func(items []Item)

	state       SyncState
	lastErr     error
	maxAttempts int
	initialWait time.Duration
}

// Option customizes a Store.
type Option func(*Store)

// WithDebounce overrides the default 2 second debounce window.
func WithDebounce(d time.Duration) Option {
	return func(s *Store) { s.debounce = d }
}

// WithRetry bounds the sync retry loop.
func WithRetry(attempts int, initialWait time.Duration) Option {
	return func(s *Store) {
		s.maxAttempts = attempts
		s.initialWait = initialWait
	}
}

// WithPersister adds a local persistence backend.
func WithPersister(p Persister) Option {
	return func(s *Store) { s.persist = p }
}

// WithOnSync registers a callback invoked after every successful sync with
// the batch that went out.
func WithOnSync(fn func(items []Item)) Option {
	return func(s *Store) { s.onSync = fn }
}

func New(syncer Syncer, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		values:      map[string]string{},
		pending:     map[string]string{},
		debounce:    2 * time.Second,
		syncer:      syncer,
		logger:      logger,
		maxAttempts: 3,
		initialWait: 500 * time.Millisecond,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Get returns the value for key or def when absent.
func (s *Store) Get(key, def string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.values[key]; ok {
		return v
	}
	return def
}

// GetNumber parses the value as a number, falling back to def.
func (s *Store) GetNumber(key string, def float64) float64 {
	v := s.Get(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return n
}

// GetBool interprets "1" and "true" as true, "0" and "false" as false.
func (s *Store) GetBool(key string, def bool) bool {
	switch s.Get(key, "") {
	case "1", "true":
		return true
	case "0", "false":
		return false
	default:
		return def
	}
}

// Set applies the value optimistically and queues it for server sync.
func (s *Store) Set(key, value string) {
	s.mu.Lock()
	s.values[key] = value
	s.pending[key] = value
	s.state = SyncPending
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		s.flush(context.Background())
	})
	s.mu.Unlock()
	s.save()
}

// Hydrate merges server-supplied config into the local cache. Pending local
// writes win over the server copy.
func (s *Store) Hydrate(server map[string]string) {
	s.mu.Lock()
	for k, v := range server {
		if _, dirty := s.pending[k]; !dirty {
			s.values[k] = v
		}
	}
	s.mu.Unlock()
	s.save()
}

// Restore loads the persisted local cache, if any, without marking keys dirty.
func (s *Store) Restore(ctx context.Context) {
	if s.persist == nil {
		return
	}
	saved, err := s.persist.Load(ctx)
	if err != nil {
		s.logger.Error("config restore", "err", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range saved {
		if _, ok := s.values[k]; !ok {
			s.values[k] = v
		}
	}
}

// State reports the sync queue state and the last sync error, if any.
func (s *Store) State() (SyncState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.lastErr
}

// Snapshot returns a copy of all current values.
func (s *Store) Snapshot() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

func (s *Store) save() {
	if s.persist == nil {
		return
	}
	s.mu.Lock()
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		if _, sensitive := SensitiveKeys[k]; sensitive {
			continue
		}
		out[k] = v
	}
	s.mu.Unlock()
	if err := s.persist.Save(context.Background(), out); err != nil {
		s.logger.Error("config persist", "err", err)
	}
}
