package artifact

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"studentperf/ml"
)

// RetireGrace is how long a replaced bundle stays open for requests that
// still hold it. It must exceed the HTTP request timeout.
const RetireGrace = 2 * time.Minute

type snapshot struct {
	bundle *Bundle
	err    error
}

// Store holds the current bundle, or the reason there is none. Readers get
// a snapshot; a reload swaps the pointer and never mutates a bundle in use.
type Store struct {
	path   string
	opts   ml.LoadOptions
	logger *zap.Logger
	state  atomic.Pointer[snapshot]

	retireAfter time.Duration
	retire      func(*Bundle)
}

// NewStore loads path once. A load failure is kept in the store rather than
// returned so the server can still render the error page.
func NewStore(path string, opts ml.LoadOptions, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		path:        path,
		opts:        opts,
		logger:      logger.Named("artifact"),
		retireAfter: RetireGrace,
	}
	s.retire = s.closeBundle
	s.Reload()
	return s
}

func (s *Store) Path() string {
	return s.path
}

// Current returns the loaded bundle or the load error.
func (s *Store) Current() (*Bundle, error) {
	snap := s.state.Load()
	return snap.bundle, snap.err
}

// Reload re-reads the artifact. On failure a previously loaded bundle stays
// current and the error is only returned.
func (s *Store) Reload() error {
	bundle, err := Load(s.path, s.opts)
	if err != nil {
		if prev := s.state.Load(); prev != nil && prev.bundle != nil {
			s.logger.Warn("artifact reload failed, keeping previous bundle",
				zap.String("path", s.path), zap.Error(err))
			return err
		}
		s.logger.Error("artifact unavailable", zap.String("path", s.path), zap.Error(err))
		s.state.Store(&snapshot{err: err})
		return err
	}

	prev := s.state.Swap(&snapshot{bundle: bundle})
	if prev != nil && prev.bundle != nil {
		// requests may still hold the old bundle
		old := prev.bundle
		time.AfterFunc(s.retireAfter, func() { s.retire(old) })
	}
	s.logger.Info("artifact loaded",
		zap.String("path", s.path),
		zap.String("size", humanize.Bytes(uint64(bundle.Size))),
		zap.String("checksum", bundle.Checksum[:12]),
		zap.Int("features", len(bundle.FeatureNames)),
		zap.Int("clusters", len(bundle.ClusterLabels)),
	)
	return nil
}

func (s *Store) closeBundle(b *Bundle) {
	if err := b.Close(); err != nil {
		s.logger.Warn("failed to close retired artifact", zap.String("checksum", b.Checksum[:12]), zap.Error(err))
	}
}

// Watch reloads the artifact whenever its file is written or replaced,
// until ctx is done.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	target, err := filepath.Abs(s.path)
	if err != nil {
		return err
	}
	// watch the directory so atomic renames onto the path are seen
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}
	s.logger.Info("watching artifact", zap.String("path", target))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || name != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				s.logger.Debug("artifact changed", zap.String("op", event.Op.String()))
				s.Reload()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("artifact watcher error", zap.Error(err))
		}
	}
}
