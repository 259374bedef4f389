package filedb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/renameio/v2"
)

const (
	defaultRetryDelay = 10 * time.Millisecond
	defaultFileMode   = 0o600
)

// Config describes where a DB keeps its files.
type Config struct {
	// LockFile is the shared advisory lock file. Its content is never read.
	LockFile string

	// Collections maps a collection name to the JSON file backing it.
	Collections map[string]string

	// LockTimeout bounds how long an operation waits for the lock. Zero
	// waits until the lock is free, whatever the caller's context.
	LockTimeout time.Duration

	// RetryDelay is the poll interval used for bounded waits (default 10ms).
	RetryDelay time.Duration

	// FileMode is used for newly written collection files (default 0600).
	FileMode os.FileMode

	// Logger receives lock release failures. Defaults to slog.Default().
	Logger *slog.Logger
}

// DB is a set of file-backed collections guarded by one lock. A DB is safe
// for concurrent use and is meant to live for the whole process.
type DB struct {
	cfg    Config
	logger *slog.Logger

	mu sync.RWMutex
}

// Open validates cfg and returns a DB. It does not touch the filesystem;
// missing collection files are created on the first write.
func Open(cfg Config) (*DB, error) {
	if cfg.LockFile == "" {
		return nil, errors.New("filedb: lock file path is required")
	}
	if len(cfg.Collections) == 0 {
		return nil, errors.New("filedb: at least one collection is required")
	}
	for name, path := range cfg.Collections {
		if name == "" || path == "" {
			return nil, fmt.Errorf("filedb: collection %q has no file path", name)
		}
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if cfg.FileMode == 0 {
		cfg.FileMode = defaultFileMode
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &DB{cfg: cfg, logger: logger}, nil
}

// Exclusive runs fn while holding the exclusive lock. Every collection fn
// loaded is written back if fn returns nil; on error nothing is written.
// The lock is released on every path, including a panic in fn.
func (db *DB) Exclusive(ctx context.Context, fn func(tx *Tx) error) error {
	release, err := db.acquire(ctx, modeExclusive)
	if err != nil {
		return err
	}
	defer release()

	tx := newTx(db, true)
	if err := fn(tx); err != nil {
		return err
	}
	return tx.commit()
}

// Shared runs fn while holding a shared lock. Changes made through the
// loaded views are discarded.
func (db *DB) Shared(ctx context.Context, fn func(tx *Tx) error) error {
	release, err := db.acquire(ctx, modeShared)
	if err != nil {
		return err
	}
	defer release()

	return fn(newTx(db, false))
}

// Ping checks that the lock can be taken and every collection decoded.
func (db *DB) Ping(ctx context.Context) error {
	return db.Shared(ctx, func(tx *Tx) error {
		for name := range db.cfg.Collections {
			if _, err := tx.raw(name); err != nil {
				return err
			}
		}
		return nil
	})
}

func (db *DB) path(name string) (string, error) {
	path, ok := db.cfg.Collections[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCollection, name)
	}
	return path, nil
}

// Tx is the view of the store handed to Exclusive and Shared callbacks. It
// must not be used after the callback returns.
type Tx struct {
	db       *DB
	writable bool

	views map[string]*view
	order []string
}

type view struct {
	path    string
	records any // *[]T
	encode  func() ([]byte, error)
}

func newTx(db *DB, writable bool) *Tx {
	return &Tx{db: db, writable: writable, views: make(map[string]*view)}
}

// Writable reports whether changes made in this Tx will be persisted.
func (tx *Tx) Writable() bool { return tx.writable }

// Load returns the in-memory view of a collection, reading it from disk the
// first time it is requested in this Tx.
func Load[T any](tx *Tx, name string) (*[]T, error) {
	if v, ok := tx.views[name]; ok {
		records, ok := v.records.(*[]T)
		if !ok {
			return nil, fmt.Errorf("%w: collection %q", ErrTypeMismatch, name)
		}
		return records, nil
	}

	path, err := tx.db.path(name)
	if err != nil {
		return nil, err
	}

	records, err := readCollection[T](path)
	if err != nil {
		return nil, err
	}

	tx.views[name] = &view{
		path:    path,
		records: records,
		encode:  func() ([]byte, error) { return encodeCollection(*records) },
	}
	tx.order = append(tx.order, name)

	return records, nil
}

// raw decodes a collection without keeping it, used by Ping.
func (tx *Tx) raw(name string) ([]json.RawMessage, error) {
	path, err := tx.db.path(name)
	if err != nil {
		return nil, err
	}
	records, err := readCollection[json.RawMessage](path)
	if err != nil {
		return nil, err
	}
	return *records, nil
}

func (tx *Tx) commit() error {
	if !tx.writable {
		return nil
	}
	for _, name := range tx.order {
		v := tx.views[name]
		data, err := v.encode()
		if err != nil {
			return fmt.Errorf("filedb: encode %q: %w", name, err)
		}
		if err := renameio.WriteFile(v.path, data, tx.db.cfg.FileMode); err != nil {
			return fmt.Errorf("%w: write %s: %v", ErrUnavailable, v.path, err)
		}
	}
	return nil
}

// Update loads one collection under the exclusive lock and persists it if
// fn returns nil.
func Update[T any](ctx context.Context, db *DB, name string, fn func(records *[]T) error) error {
	return db.Exclusive(ctx, func(tx *Tx) error {
		records, err := Load[T](tx, name)
		if err != nil {
			return err
		}
		return fn(records)
	})
}

// View loads one collection under a shared lock.
func View[T any](ctx context.Context, db *DB, name string, fn func(records []T) error) error {
	return db.Shared(ctx, func(tx *Tx) error {
		records, err := Load[T](tx, name)
		if err != nil {
			return err
		}
		return fn(*records)
	})
}

func readCollection[T any](path string) (*[]T, error) {
	records := make([]T, 0)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &records, nil
	}
	if err != nil {
		// present but unreadable counts as corrupt
		return nil, fmt.Errorf("%w: read %s: %v", ErrCorrupt, path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return &records, nil
	}

	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	if records == nil {
		// a literal "null" decodes to a nil slice
		records = make([]T, 0)
	}

	return &records, nil
}

func encodeCollection[T any](records []T) ([]byte, error) {
	if records == nil {
		records = []T{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
