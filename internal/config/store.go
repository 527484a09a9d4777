package config

import (
	"context"
	"fmt"

	"github.com/goliatone/go-formcloud/pkg/store"
	"github.com/goliatone/go-formcloud/pkg/store/memory"
	"github.com/goliatone/go-formcloud/pkg/store/pgstore"
	"github.com/goliatone/go-formcloud/pkg/store/sqlstore"
)

// OpenStore constructs the store selected by cfg. The caller owns the
// returned store and must Close it.
func OpenStore(ctx context.Context, cfg StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case DriverMemory:
		return memory.New(), nil
	case DriverSQLite, "":
		path := cfg.SQLitePath
		if path == "" {
			path = "formcloud.db"
		}
		return sqlstore.Open(path)
	case DriverPostgres:
		return pgstore.Connect(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("config: unknown store driver %q", cfg.Driver)
	}
}
