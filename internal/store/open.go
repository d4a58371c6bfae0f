package store

import (
	"context"
	"fmt"
)

// Drivers accepted by Open.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

// Options selects and configures a Backend.
type Options struct {
	Driver   string
	RedisURL string
	DBPath   string
}

// Open builds the Backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Driver {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverRedis:
		return NewRedis(ctx, opts.RedisURL)
	case DriverSQLite:
		return NewSQLite(opts.DBPath)
	default:
		return nil, fmt.Errorf("store: unknown driver %q", opts.Driver)
	}
}
