// Package store implements the local record store: five JSON-array collections
// persisted under fixed keys in a BadgerDB key-value store, with per-doctor
// scoping and cascading deletes, plus a SQLite-backed audit trail.
package store

import (
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	_ "github.com/glebarez/go-sqlite" // Pure Go SQLite driver
	"github.com/vitalens/vitalens/internal/config"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store provides synchronous access to the record collections. A Store with
// no usable backend still works: reads return empty collections and writes
// are dropped, so callers stay usable in an ephemeral, degraded mode.
type Store struct {
	db     *badger.DB
	audit  *gorm.DB
	logger *zap.Logger
}

// New opens the record store. Backend failures degrade rather than abort:
// the returned Store is always usable.
func New(cfg *config.Config, log *zap.Logger) *Store {
	s := &Store{logger: log}

	path := cfg.Storage.BadgerPath
	if cfg.Storage.InMemory {
		path = ""
	}
	opts := badger.DefaultOptions(path).
		WithInMemory(cfg.Storage.InMemory).
		WithLogger(nil).
		WithNumVersionsToKeep(1).
		WithCompactL0OnClose(true).
		WithValueLogFileSize(16 << 20).
		WithMemTableSize(16 << 20)

	db, err := badger.Open(opts)
	if err != nil {
		log.Warn("record store unavailable, continuing ephemeral", zap.Error(err))
	} else {
		s.db = db
	}

	s.audit = openAuditDB(cfg.Storage.AuditPath, log)
	return s
}

func openAuditDB(path string, log *zap.Logger) *gorm.DB {
	if path == "" {
		return nil
	}

	sqliteDB, err := sql.Open("sqlite", path+"?_journal=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		log.Warn("audit trail unavailable", zap.Error(err))
		return nil
	}

	db, err := gorm.Open(sqlite.Dialector{Conn: sqliteDB}, &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		log.Warn("audit trail unavailable", zap.Error(err))
		return nil
	}

	if err := db.AutoMigrate(&AuditEvent{}); err != nil {
		log.Warn("failed to migrate audit schema", zap.Error(err))
		return nil
	}

	return db
}

// Close closes the underlying databases.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Available reports whether the persistent backend is usable.
func (s *Store) Available() bool {
	return s.db != nil
}

// readCollection loads the whole collection stored under key. A missing key,
// an unreadable backend, or a corrupted value all yield an empty collection;
// none of them surface to the caller.
func readCollection[T any](s *Store, key string) []T {
	if s.db == nil {
		return nil
	}

	var items []T
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			if err := json.Unmarshal(v, &items); err != nil {
				s.logger.Warn("discarding corrupted collection",
					zap.String("key", key), zap.Error(err))
				items = nil
			}
			return nil
		})
	})
	if err != nil {
		s.logger.Warn("failed to read collection", zap.String("key", key), zap.Error(err))
		return nil
	}

	return items
}

// writeCollection persists the whole collection under key. Write failures are
// logged and swallowed.
func writeCollection[T any](s *Store, key string, items []T) {
	if s.db == nil {
		return
	}

	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		s.logger.Warn("failed to serialize collection", zap.String("key", key), zap.Error(err))
		return
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		s.logger.Warn("failed to write collection", zap.String("key", key), zap.Error(err))
	}
}

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// newRecordID generates a collection-unique id: prefix, millisecond timestamp,
// and a random base36 suffix. The layout matches ids already persisted by
// earlier releases.
func newRecordID(prefix string) string {
	buf := make([]byte, 7)
	rand.Read(buf)
	for i, b := range buf {
		buf[i] = idAlphabet[int(b)%len(idAlphabet)]
	}
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), string(buf))
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
