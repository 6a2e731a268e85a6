// Package cache persists similarity scores between runs so unchanged code
// is not sent to the oracle again.
package cache

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"

	badger "github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/ludo-technologies/pyrefactor/domain"
)

// DefaultDir is the store location relative to the analyzed project
const DefaultDir = ".pyrefactor/cache"

const keyPrefix = "score:"

// Config configures a BadgerStore
type Config struct {
	// Path is the database directory. Required unless InMemory is set.
	Path string

	// InMemory keeps all data in memory; used by tests.
	InMemory bool

	// SyncWrites fsyncs every write.
	SyncWrites bool

	// Logger receives badger's internal log lines. Nil disables them.
	Logger *zap.Logger
}

// InMemoryConfig returns a configuration for tests
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// BadgerStore is a domain.ScoreStore on top of BadgerDB
type BadgerStore struct {
	db *badger.DB
}

// badgerLogger adapts zap to badger's Logger interface
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

// Open opens or creates the store
func Open(cfg Config) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent score cache")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create cache directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites)
	opts = opts.WithNumVersionsToKeep(1)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger.Named("badger").Sugar()})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open score cache: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Key returns the storage key for an unordered hash pair
func Key(hashA, hashB string) []byte {
	if hashA > hashB {
		hashA, hashB = hashB, hashA
	}
	return []byte(keyPrefix + hashA + ":" + hashB)
}

// Get implements domain.ScoreStore
func (s *BadgerStore) Get(hashA, hashB string) (float64, bool, error) {
	var score float64
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(Key(hashA, hashB))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("corrupt score entry of %d bytes", len(val))
			}
			score = math.Float64frombits(binary.BigEndian.Uint64(val))
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read score: %w", err)
	}
	return score, true, nil
}

// Put implements domain.ScoreStore
func (s *BadgerStore) Put(hashA, hashB string, score float64) error {
	val := make([]byte, 8)
	binary.BigEndian.PutUint64(val, math.Float64bits(score))
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(Key(hashA, hashB), val)
	})
	if err != nil {
		return fmt.Errorf("write score: %w", err)
	}
	return nil
}

// Len counts the stored scores
func (s *BadgerStore) Len() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Close implements domain.ScoreStore
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

var _ domain.ScoreStore = (*BadgerStore)(nil)
