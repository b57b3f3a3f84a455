// Package store keeps the most recent message text per sender.
package store

import (
	"context"
	"fmt"

	"github.com/eliseohh/keralastatsbot/internal/config"
)

// Store is write-mostly: the relay only ever calls Set.
type Store interface {
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Open picks the backend named by cfg.StoreDriver.
func Open(cfg config.Config) (Store, error) {
	switch cfg.StoreDriver {
	case config.DriverRedis:
		return NewRedis(cfg.RedisURL, cfg.RedisPool)
	case config.DriverSQLite:
		return NewSQLite(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
