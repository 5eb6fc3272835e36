package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Default is the global dispatcher used by Emit.
var Default *Dispatcher

// sourceName identifies this service in broker payloads.
const sourceName = "formgrid"

// sinkMessage is the wire form the broker sinks publish: the event wrapped
// with its originating service, so mixed-tenant channels stay attributable.
type sinkMessage struct {
	Source string `json:"source"`
	Event  Event  `json:"event"`
}

// Event represents a notification payload.
type Event struct {
	Name string    `json:"name"`
	Time time.Time `json:"time"`
	Data any       `json:"data"`
	ID   string    `json:"id"`
}

// Sink publishes events.
type Sink interface {
	Emit(ctx context.Context, e Event) error
}

// DLQ stores events that exhausted their retries.
type DLQ interface {
	Store(ctx context.Context, e Event, attempts int, lastErr string) error
}

// Dispatcher broadcasts events to multiple sinks with retries.
type Dispatcher struct {
	sinks        []Sink
	maxAttempts  int
	initialDelay time.Duration
	dlq          DLQ
}

// NewDispatcher creates a dispatcher from sinks and retry config.
func NewDispatcher(cfg Config, dlq DLQ, sinks ...Sink) *Dispatcher {
	d := &Dispatcher{maxAttempts: 3, initialDelay: time.Second}
	if cfg.Retry.MaxAttempts > 0 {
		d.maxAttempts = cfg.Retry.MaxAttempts
	}
	if cfg.Retry.InitialDelay > 0 {
		d.initialDelay = cfg.Retry.InitialDelay
	}
	d.sinks = append(d.sinks, sinks...)
	d.dlq = dlq
	return d
}

// Emit sends an event using the global dispatcher if set.
func Emit(ctx context.Context, e Event) {
	if Default != nil {
		Default.Dispatch(ctx, e)
	}
}

// Dispatch sends the event to all sinks asynchronously.
func (d *Dispatcher) Dispatch(ctx context.Context, e Event) {
	for _, s := range d.sinks {
		sink := s
		go d.retrySend(ctx, sink, e)
	}
}

func (d *Dispatcher) retrySend(ctx context.Context, s Sink, e Event) {
	delay := d.initialDelay
	var err error
	for i := 1; i <= d.maxAttempts; i++ {
		if err = s.Emit(ctx, e); err == nil {
			return
		}
		time.Sleep(delay)
		delay *= 2
	}
	if d.dlq != nil {
		_ = d.dlq.Store(ctx, e, d.maxAttempts, err.Error())
	}
}

// RedisDLQ stores failed events in a Redis list.
type RedisDLQ struct {
	Client *redis.Client
	Key    string
}

// Store pushes the failed event with its attempt count and last error.
func (q *RedisDLQ) Store(ctx context.Context, e Event, attempts int, lastErr string) error {
	if q == nil || q.Client == nil {
		return nil
	}
	entry := map[string]any{
		"event":      e,
		"attempts":   attempts,
		"last_error": lastErr,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	key := q.Key
	if key == "" {
		key = "fg:events:failed"
	}
	return q.Client.LPush(ctx, key, data).Err()
}
