package configstore

import (
	"context"
	"time"

	"github.com/formgrid-dev/formgrid/pkg/metrics"
)

// Flush forces an immediate sync of all pending changes, bypassing the
// debounce window. Used before navigation or shutdown.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	return s.flush(ctx)
}

// flush drains the pending map and syncs it with bounded retry. On failure
// the batch folds back into pending so a later write retries it, and the
// failure stays visible through State.
func (s *Store) flush(ctx context.Context) error {
	s.mu.Lock()
	if len(s.pending) == 0 {
		s.state = SyncIdle
		s.mu.Unlock()
		return nil
	}
	batch := s.pending
	s.pending = map[string]string{}
	s.mu.Unlock()

	items := make([]Item, 0, len(batch))
	for k, v := range batch {
		items = append(items, Item{Campo: k, Valor: v})
	}

	var err error
	wait := s.initialWait
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err = s.syncer.SyncConfig(ctx, items); err == nil {
			break
		}
		if attempt < s.maxAttempts {
			time.Sleep(wait)
			wait *= 2
		}
	}

	if err == nil && s.onSync != nil {
		s.onSync(items)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		metrics.ConfigSyncs.WithLabelValues("error").Inc()
		s.logger.Error("config sync", "items", len(items), "err", err)
		for k, v := range batch {
			if _, overwritten := s.pending[k]; !overwritten {
				s.pending[k] = v
			}
		}
		s.state = SyncFailed
		s.lastErr = err
		return err
	}
	metrics.ConfigSyncs.WithLabelValues("ok").Inc()
	if len(s.pending) == 0 {
		s.state = SyncIdle
	}
	s.lastErr = nil
	return nil
}
