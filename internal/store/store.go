// Package store persists validation reports in BadgerDB, keyed by plan hash
// and engine version, so repeated validations of the same plan are served
// from the first stored result.
package store

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

type Config struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string

	InMemory bool

	SyncWrites bool

	// GCInterval is how often the value log is garbage collected. Zero
	// disables collection.
	GCInterval time.Duration

	GCDiscardRatio float64

	Logger *zap.Logger
}

func DefaultConfig(path string) Config {
	return Config{
		Path:           path,
		SyncWrites:     true,
		GCInterval:     10 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// badgerLogger routes badger's internal logging through zap.
type badgerLogger struct {
	logger *zap.SugaredLogger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Errorf(format, args...)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warnf(format, args...)
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debugf(format, args...)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debugf(format, args...)
}

// Store is safe for concurrent use.
type Store struct {
	db     *badger.DB
	logger *zap.Logger
	now    func() time.Time
	stopGC chan struct{}
	doneGC chan struct{}
}

func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create store directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = opts.WithLogger(&badgerLogger{logger: logger.Named("badger").Sugar()})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}

	s := &Store{db: db, logger: logger, now: time.Now}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		s.startGC(cfg.GCInterval, cfg.GCDiscardRatio)
	}
	return s, nil
}

func (s *Store) startGC(interval time.Duration, ratio float64) {
	s.stopGC = make(chan struct{})
	s.doneGC = make(chan struct{})
	go func() {
		defer close(s.doneGC)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stopGC:
				return
			case <-ticker.C:
				s.runGC(ratio)
			}
		}
	}()
}

func (s *Store) runGC(ratio float64) {
	err := s.db.RunValueLogGC(ratio)
	switch {
	case err == nil:
		s.logger.Debug("value log GC completed")
	case !errors.Is(err, badger.ErrNoRewrite):
		s.logger.Warn("value log GC failed", zap.Error(err))
	}
}

// Ping reports whether the store can serve requests.
func (s *Store) Ping() error {
	if s.db.IsClosed() {
		return errors.New("store is closed")
	}
	return nil
}

func (s *Store) Close() error {
	if s.stopGC != nil {
		close(s.stopGC)
		<-s.doneGC
	}
	return s.db.Close()
}
