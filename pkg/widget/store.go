package widget

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Store holds the active widget policy and hot-reloads it when the backing
// file changes. Without a file the compiled-in defaults apply.
type Store struct {
	path   string
	cur    atomic.Value // *Policy
	logger *slog.Logger
}

func NewStore(path string, logger *slog.Logger) *Store {
	s := &Store{path: path, logger: logger}
	s.cur.Store(DefaultPolicy())
	return s
}

func (s *Store) Load() error {
	if s.path == "" {
		return nil
	}
	b, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read policy: %w", err)
	}
	var p Policy
	if err := yaml.Unmarshal(b, &p); err != nil {
		return fmt.Errorf("parse policy: %w", err)
	}
	if err := p.Validate(); err != nil {
		return err
	}
	p.Normalize()
	s.cur.Store(&p)
	s.logger.Info("widget policy loaded", "path", s.path, "rules", len(p.Rules))
	return nil
}

func (s *Store) Watch(ctx context.Context) {
	if s.path == "" {
		return
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		s.logger.Error("watcher", "err", err)
		return
	}
	defer w.Close()
	_ = w.Add(s.path)
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-w.Events:
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				time.Sleep(200 * time.Millisecond)
				if err := s.Load(); err != nil {
					s.logger.Error("reload failed", "err", err)
				}
			}
		case err := <-w.Errors:
			s.logger.Error("watch error", "err", err)
		}
	}
}

func (s *Store) Get() *Policy {
	return s.cur.Load().(*Policy)
}
