package config

import (
	"fmt"

	"github.com/objectiveSquid/Chat-site/pkg/store"
	"github.com/objectiveSquid/Chat-site/pkg/store/badger"
)

// OpenStore creates the configured persistence backend. The relational
// types (sqlite, postgres) share the GORM implementation; badger is its
// own key-value backend. The caller owns the returned store and must call
// EnsureTables before serving.
func OpenStore(cfg *store.Config) (store.Store, error) {
	switch cfg.Type {
	case store.DatabaseTypeSQLite, store.DatabaseTypePostgres:
		return store.New(cfg)
	case store.DatabaseTypeBadger:
		return badger.New(cfg)
	default:
		return nil, fmt.Errorf("unknown database type: %q", cfg.Type)
	}
}
