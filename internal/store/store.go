// Package store persists raw commit records between runs in an embedded
// BadgerDB. It is a warm-start cache, never a source of truth: the Repository
// replays stored records through its builder on open, and deleting the store
// directory is always safe.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"

	"github.com/ajurgis/repotally/internal/vcs"
)

var commitPrefix = []byte("commit/")

// Config holds store configuration.
type Config struct {
	// Path is the directory for database files. Required unless InMemory.
	Path string

	// InMemory keeps everything in RAM, for tests.
	InMemory bool

	// SyncWrites forces synchronous writes. Off is fine for a cache.
	SyncWrites bool

	// Logger receives badger's internal logging at debug level. Nil
	// disables it.
	Logger *slog.Logger
}

// Store is a commit record cache backed by BadgerDB.
type Store struct {
	db *badger.DB
}

// Open opens (creating if needed) the store described by cfg.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("store path is required for a persistent store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("creating store directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens a throwaway in-memory store.
func OpenInMemory() (*Store, error) {
	return Open(Config{InMemory: true})
}

// DefaultDir returns the per-repository store directory under the user cache
// directory, keyed by a digest of the repository's absolute path.
func DefaultDir(repoPath string) (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locating user cache dir: %w", err)
	}
	return filepath.Join(base, "repotally", pathKey(repoPath)), nil
}

// pathKey derives a stable directory name from a repository location. The
// first 12 hex chars of sha256 keep names short without realistic collisions.
func pathKey(repoPath string) string {
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		abs = repoPath
	}
	sum := sha256.Sum256([]byte(abs))
	return hex.EncodeToString(sum[:])[:12]
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// PutCommits writes the records in one transaction, overwriting records with
// the same id. Re-writing an id is harmless: records are immutable facts.
func (s *Store) PutCommits(raws []vcs.RawCommit) error {
	if len(raws) == 0 {
		return nil
	}
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for i := range raws {
		data, err := json.Marshal(&raws[i])
		if err != nil {
			return fmt.Errorf("encoding commit %s: %w", raws[i].ID, err)
		}
		key := append(append([]byte{}, commitPrefix...), raws[i].ID...)
		if err := wb.Set(key, data); err != nil {
			return fmt.Errorf("writing commit %s: %w", raws[i].ID, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flushing commits: %w", err)
	}
	return nil
}

// AllCommits returns every stored record. Order is unspecified; the replay
// path tolerates any order because builder insertion is idempotent and child
// links attach lazily.
func (s *Store) AllCommits() ([]vcs.RawCommit, error) {
	var raws []vcs.RawCommit
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = commitPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var raw vcs.RawCommit
				if err := json.Unmarshal(val, &raw); err != nil {
					return fmt.Errorf("decoding %s: %w", it.Item().Key(), err)
				}
				raws = append(raws, raw)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading stored commits: %w", err)
	}
	return raws, nil
}

// Len returns the number of stored commit records.
func (s *Store) Len() (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = commitPrefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// badgerLogger adapts slog to badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
