// Package journal is a badger-backed, append-only transaction log. Records
// are stored under big-endian sequence numbers so iteration order is
// append order.
package journal

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	badger "github.com/dgraph-io/badger/v4"
)

// ErrClosed is returned by operations on a closed journal.
var ErrClosed = errors.New("journal: closed")

var keyPrefix = []byte("tx/")

// Config configures a Journal.
type Config struct {
	// Path is the badger data directory. An empty path keeps the journal
	// in memory.
	Path   string
	Logger *slog.Logger
}

// Journal is an append-only log of opaque records.
type Journal struct {
	mu     sync.Mutex
	db     *badger.DB
	next   uint64
	logger *slog.Logger
}

// Open opens or creates the journal described by cfg.
func Open(cfg Config) (*Journal, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("component", "journal")

	opts := badger.DefaultOptions(cfg.Path).
		WithLogger(newBadgerLogger(logger)).
		// The default INFO logging is a bit verbose
		WithLoggingLevel(badger.WARNING)
	if cfg.Path == "" {
		opts = opts.WithInMemory(true)
	} else if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
		return nil, fmt.Errorf("journal: creating data dir: %w", err)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("journal: opening badger: %w", err)
	}
	j := &Journal{db: db, logger: logger}
	if j.next, err = j.count(); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Debug("journal opened",
		"path", cfg.Path,
		"records", j.next,
	)
	return j, nil
}

// Append stores record after all previously appended records. The write is
// committed before Append returns.
func (j *Journal) Append(ctx context.Context, record []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.db == nil {
		return ErrClosed
	}

	err := j.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(j.next), record)
	})
	if err != nil {
		return fmt.Errorf("journal: appending record %d: %w", j.next, err)
	}
	j.next++
	return nil
}

// Replay calls fn with every record in append order. It stops at the first
// error fn returns.
func (j *Journal) Replay(ctx context.Context, fn func(record []byte) error) error {
	j.mu.Lock()
	db := j.db
	j.mu.Unlock()
	if db == nil {
		return ErrClosed
	}

	return db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = keyPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			record, err := it.Item().ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("journal: reading record: %w", err)
			}
			if err := fn(record); err != nil {
				return err
			}
		}
		return nil
	})
}

// Len returns the number of records appended.
func (j *Journal) Len() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.next
}

// Close closes the underlying database. It is safe to call more than once.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.db == nil {
		return nil
	}
	err := j.db.Close()
	j.db = nil
	return err
}

func (j *Journal) count() (uint64, error) {
	var n uint64
	err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = keyPrefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("journal: counting records: %w", err)
	}
	return n, nil
}

func key(seq uint64) []byte {
	k := make([]byte, len(keyPrefix)+8)
	copy(k, keyPrefix)
	binary.BigEndian.PutUint64(k[len(keyPrefix):], seq)
	return k
}
