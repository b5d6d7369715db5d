package ingest

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/emzola/bookrating/internal/jsonlog"
)

// KeySet records the (user, edition) pairs seen during one run so that
// repeated rating rows are dropped before they reach a batch.
type KeySet interface {
	// Add records the pair and reports whether it was not seen before.
	Add(userID, editionID int64) (bool, error)
	Len() int
	Close() error
}

type ratingKey struct {
	userID    int64
	editionID int64
}

// MemoryKeySet is a KeySet held in a Go map.
type MemoryKeySet struct {
	keys map[ratingKey]struct{}
}

func NewMemoryKeySet() *MemoryKeySet {
	return &MemoryKeySet{keys: make(map[ratingKey]struct{})}
}

func (s *MemoryKeySet) Add(userID, editionID int64) (bool, error) {
	k := ratingKey{userID, editionID}
	if _, ok := s.keys[k]; ok {
		return false, nil
	}
	s.keys[k] = struct{}{}
	return true, nil
}

func (s *MemoryKeySet) Len() int {
	return len(s.keys)
}

func (s *MemoryKeySet) Close() error {
	s.keys = nil
	return nil
}

// BadgerKeySet is a KeySet spilled to a badger database, for inputs whose
// key set does not fit in memory. Each set lives in its own scratch
// directory which Close removes; a run never sees keys from a previous one.
type BadgerKeySet struct {
	db  *badger.DB
	txn *badger.Txn
	dir string
	n   int
}

// OpenBadgerKeySet creates a key set in a fresh directory under dir. An empty
// dir keeps the database in memory.
func OpenBadgerKeySet(dir string, logger *jsonlog.Logger) (*BadgerKeySet, error) {
	var opts badger.Options
	var scratch string
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		var err error
		scratch, err = os.MkdirTemp(dir, "dedup-")
		if err != nil {
			return nil, err
		}
		opts = badger.DefaultOptions(scratch).WithSyncWrites(false)
	}
	if logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: logger})
	} else {
		opts = opts.WithLogger(nil)
	}
	db, err := badger.Open(opts)
	if err != nil {
		if scratch != "" {
			os.RemoveAll(scratch)
		}
		return nil, fmt.Errorf("opening dedup store: %w", err)
	}
	return &BadgerKeySet{db: db, txn: db.NewTransaction(true), dir: scratch}, nil
}

// Add looks the pair up in the open transaction, which also sees its own
// uncommitted writes. The transaction is committed whenever it grows too big.
func (s *BadgerKeySet) Add(userID, editionID int64) (bool, error) {
	key := encodeKey(userID, editionID)
	_, err := s.txn.Get(key)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, badger.ErrKeyNotFound) {
		return false, err
	}
	err = s.txn.Set(key, nil)
	if errors.Is(err, badger.ErrTxnTooBig) {
		if err := s.txn.Commit(); err != nil {
			return false, err
		}
		s.txn = s.db.NewTransaction(true)
		err = s.txn.Set(key, nil)
	}
	if err != nil {
		return false, err
	}
	s.n++
	return true, nil
}

func (s *BadgerKeySet) Len() int {
	return s.n
}

// Close discards the database and its scratch directory.
func (s *BadgerKeySet) Close() error {
	s.txn.Discard()
	err := s.db.Close()
	if s.dir != "" {
		if rmErr := os.RemoveAll(s.dir); err == nil {
			err = rmErr
		}
	}
	return err
}

// encodeKey packs the pair into 16 big-endian bytes.
func encodeKey(userID, editionID int64) []byte {
	key := make([]byte, 16)
	binary.BigEndian.PutUint64(key[:8], uint64(userID))
	binary.BigEndian.PutUint64(key[8:], uint64(editionID))
	return key
}

// badgerLogger routes badger's warnings and errors to the JSON logger and
// drops its chatter.
type badgerLogger struct {
	logger *jsonlog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.PrintError(fmt.Errorf(format, args...), map[string]string{"component": "dedup"})
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.PrintError(fmt.Errorf(format, args...), map[string]string{"component": "dedup", "severity": "warning"})
}

func (l *badgerLogger) Infof(string, ...interface{})  {}
func (l *badgerLogger) Debugf(string, ...interface{}) {}
