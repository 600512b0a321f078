package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/okian/gamerec/pkg/logger"
	"github.com/okian/gamerec/pkg/metrics"
)

// Key prefix for every entry so the database can be shared.
const badgerKeyPrefix = "kv:"

// BadgerStore implements Store on BadgerDB.
type BadgerStore struct {
	db     *badger.DB
	logger logger.Logger
}

// OpenBadger opens (or creates) a badger database. An empty path keeps the
// database in memory.
func OpenBadger(path string, opts ...Option) (*BadgerStore, error) {
	s := &BadgerStore{logger: logger.Get().Named("kvstore")}
	for _, opt := range opts {
		opt(s)
	}

	bopts := badger.DefaultOptions(path).WithLogger(badgerLogger{l: s.logger})
	if path == "" {
		bopts = bopts.WithInMemory(true)
	}
	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("%w: open badger: %v", ErrStoreUnavailable, err)
	}
	s.db = db
	return s, nil
}

// Get returns the value for key.
func (s *BadgerStore) Get(ctx context.Context, key string) (string, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerKeyPrefix + key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	switch {
	case err == nil:
		return string(value), nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return "", ErrNotFound
	default:
		metrics.RecordStoreError("get")
		return "", s.wrap(err)
	}
}

// Set stores value under key.
func (s *BadgerStore) Set(ctx context.Context, key, value string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(badgerKeyPrefix+key), []byte(value))
	})
	if err != nil {
		metrics.RecordStoreError("set")
		return s.wrap(err)
	}
	return nil
}

// Delete removes key.
func (s *BadgerStore) Delete(ctx context.Context, key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(badgerKeyPrefix + key))
	})
	if err != nil {
		metrics.RecordStoreError("delete")
		return s.wrap(err)
	}
	return nil
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	if err := s.db.Close(); err != nil {
		return s.wrap(err)
	}
	return nil
}

func (s *BadgerStore) wrap(err error) error {
	if errors.Is(err, badger.ErrDBClosed) {
		return fmt.Errorf("%w: %v", ErrClosed, err)
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

// badgerLogger routes badger's printf-style logs through our logger.
// Info and debug chatter is dropped.
type badgerLogger struct {
	l logger.Logger
}

func (b badgerLogger) Errorf(format string, args ...any) {
	b.l.Error(context.Background(), fmt.Sprintf(format, args...))
}

func (b badgerLogger) Warningf(format string, args ...any) {
	b.l.Warn(context.Background(), fmt.Sprintf(format, args...))
}

func (b badgerLogger) Infof(string, ...any)  {}
func (b badgerLogger) Debugf(string, ...any) {}
