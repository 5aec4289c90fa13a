package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/sherlocklabs/sherlock/core"
)

// threadKeyPrefix namespaces fragment keys so the database can be shared
// with other record types later.
const threadKeyPrefix = "thread/"

// BadgerOptions configure a BadgerStore.
type BadgerOptions struct {
	// Path is the directory for database files. Ignored when InMemory is set.
	Path string
	// InMemory keeps everything in RAM; data is lost on Close. For tests.
	InMemory bool
	// SyncWrites makes each Save durable before returning.
	SyncWrites bool
}

// BadgerStore persists fragments as JSON values in an embedded Badger
// database. Badger transactions serialize read-then-write per key, which
// satisfies the HistoryStore contract.
type BadgerStore struct {
	db *badger.DB
}

var _ core.HistoryStore = (*BadgerStore)(nil)

// NewBadgerStore opens (or creates) the database. Callers own Close.
func NewBadgerStore(optFns ...func(o *BadgerOptions)) (*BadgerStore, error) {
	opts := BadgerOptions{SyncWrites: true}
	for _, fn := range optFns {
		fn(&opts)
	}
	if !opts.InMemory && opts.Path == "" {
		return nil, errors.New("path is required for a persistent history store")
	}

	var dbOpts badger.Options
	if opts.InMemory {
		dbOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		dbOpts = badger.DefaultOptions(opts.Path)
	}
	dbOpts = dbOpts.WithSyncWrites(opts.SyncWrites).WithLogger(nil)

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Load implements core.HistoryStore.
func (s *BadgerStore) Load(ctx context.Context, threadID string) (core.Fragment, error) {
	if err := ctx.Err(); err != nil {
		return core.Fragment{}, err
	}
	var fragment core.Fragment
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(threadKey(threadID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &fragment)
		})
	})
	if err != nil {
		return core.Fragment{}, fmt.Errorf("load thread %q: %w", threadID, err)
	}
	return fragment, nil
}

// Save implements core.HistoryStore.
func (s *BadgerStore) Save(ctx context.Context, threadID string, fragment core.Fragment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(fragment)
	if err != nil {
		return fmt.Errorf("encode thread %q: %w", threadID, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(threadKey(threadID), data)
	})
	if err != nil {
		return fmt.Errorf("save thread %q: %w", threadID, err)
	}
	return nil
}

// Delete removes a thread's fragment. Deleting an unseen thread is a no-op.
func (s *BadgerStore) Delete(ctx context.Context, threadID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(threadKey(threadID))
	})
	if err != nil {
		return fmt.Errorf("delete thread %q: %w", threadID, err)
	}
	return nil
}

// Threads lists all persisted thread ids.
func (s *BadgerStore) Threads(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		prefix := []byte(threadKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			ids = append(ids, strings.TrimPrefix(key, threadKeyPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}
	return ids, nil
}

// Close flushes and closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func threadKey(threadID string) []byte {
	return []byte(threadKeyPrefix + threadID)
}
