// Package badger implements the chat store on BadgerDB, an embedded
// pure-Go key-value database. It suits single-binary deployments that want
// crash-safe persistence without a SQL engine.
package badger

import (
	"context"
	"fmt"
	"io"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/objectiveSquid/Chat-site/pkg/store"
)

// BadgerStore implements store.Store on a BadgerDB instance.
type BadgerStore struct {
	db     *badgerdb.DB
	config *store.Config
}

var _ store.Store = (*BadgerStore)(nil)

// New opens (or creates) a BadgerDB chat store at config.Badger.Dir.
func New(config *store.Config) (*BadgerStore, error) {
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid store config: %w", err)
	}
	if config.Type != store.DatabaseTypeBadger {
		return nil, fmt.Errorf("badger store cannot serve database type %q", config.Type)
	}

	opts := badgerdb.DefaultOptions(config.Badger.Dir).WithLogger(nil)
	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database at %s: %w", config.Badger.Dir, err)
	}

	return &BadgerStore{db: db, config: config}, nil
}

// EnsureTables is the key-value analogue of schema creation: it writes the
// schema marker so later versions can detect an incompatible layout, and
// refuses to open a database written by a newer layout. Idempotent.
func (s *BadgerStore) EnsureTables(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(keySchemaVersion))
		if err == badgerdb.ErrKeyNotFound {
			return txn.Set([]byte(keySchemaVersion), []byte(schemaVersion))
		}
		if err != nil {
			return fmt.Errorf("failed to read schema marker: %w", err)
		}
		return item.Value(func(val []byte) error {
			if string(val) != schemaVersion {
				return fmt.Errorf("database schema version %q, this build expects %q", val, schemaVersion)
			}
			return nil
		})
	})
}

// Healthcheck verifies the database is open and readable.
func (s *BadgerStore) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return fmt.Errorf("badger database is closed")
	}
	return s.db.View(func(txn *badgerdb.Txn) error {
		return nil
	})
}

// Backup streams a full snapshot of the database to w in Badger's native
// backup format and returns the version the stream is valid up to. Safe to
// run while the database is in use.
func (s *BadgerStore) Backup(w io.Writer, since uint64) (uint64, error) {
	return s.db.Backup(w, since)
}

// Load replays a Backup stream into the database. The database should be
// freshly created; keys present in the stream overwrite existing ones.
func (s *BadgerStore) Load(r io.Reader) error {
	return s.db.Load(r, 256)
}

// Close flushes and closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
