package store

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/felixgeelhaar/fortify/retry"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/njchilds90/geosymbol"
)

var (
	// ErrNotFound is returned when no run has the requested ID.
	ErrNotFound = errors.New("run not found")
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("store closed")
)

const runPrefix = "run/"

// Record is one persisted reasoning run.
type Record struct {
	ID        string             `json:"id"`
	CreatedAt time.Time          `json:"created_at"`
	Rules     []string           `json:"rules"`
	Seed      map[string]float64 `json:"seed,omitempty"`
	State     *geosymbol.State   `json:"state"`
}

// Store keeps Records keyed by a time-ordered ID, so listing newest first is
// a reverse key scan.
type Store struct {
	db      *badger.DB
	gc      *gcRunner
	retrier retry.Retry[struct{}]
	closed  atomic.Bool
}

// Open opens the database described by cfg.
func Open(cfg Config) (*Store, error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	s := &Store{
		db: db,
		retrier: retry.New[struct{}](retry.Config{
			MaxAttempts:        4,
			InitialDelay:       5 * time.Millisecond,
			BackoffPolicy:      retry.BackoffExponential,
			Multiplier:         2.0,
			NonRetryableErrors: []error{ErrNotFound, ErrClosed},
		}),
	}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		s.gc = newGCRunner(db, cfg.GCInterval, cfg.GCDiscardRatio, cfg.Logger)
		s.gc.start()
	}
	return s, nil
}

// NewID returns a fresh time-ordered run ID.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func runKey(id string) []byte { return []byte(runPrefix + id) }

// Save writes rec, assigning an ID and timestamp when they are empty.
// Transaction conflicts are retried with backoff.
func (s *Store) Save(ctx context.Context, rec *Record) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if rec.ID == "" {
		rec.ID = NewID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "encode run")
	}

	_, err = s.retrier.Do(ctx, func(ctx context.Context) (struct{}, error) {
		if err := ctx.Err(); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, s.db.Update(func(txn *badger.Txn) error {
			return txn.Set(runKey(rec.ID), data)
		})
	})
	return errors.Wrapf(err, "save run %s", rec.ID)
}

// Get loads one run.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rec Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(runKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return nil, errors.Wrapf(err, "get run %s", id)
	}
	return &rec, nil
}

// List returns up to limit runs, newest first. A limit of zero or less
// returns every run.
func (s *Store) List(ctx context.Context, limit int) ([]*Record, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	var out []*Record
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(runPrefix)
		for it.Seek(append([]byte(runPrefix), 0xFF)); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var rec Record
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return errors.Wrapf(err, "decode %s", it.Item().Key())
			}
			out = append(out, &rec)
			if limit > 0 && len(out) == limit {
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "list runs")
	}
	return out, nil
}

// Delete removes one run.
func (s *Store) Delete(ctx context.Context, id string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(runKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		return err
	})
	if err != nil {
		return errors.Wrapf(err, "delete run %s", id)
	}
	_, err = s.retrier.Do(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.db.Update(func(txn *badger.Txn) error {
			return txn.Delete(runKey(id))
		})
	})
	return errors.Wrapf(err, "delete run %s", id)
}

// Close stops GC and closes the database.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if s.gc != nil {
		s.gc.stop()
	}
	return s.db.Close()
}
