package dedup

import (
	"context"

	"github.com/rajasatyajit/QuakeAlert/config"
)

// Store is the durable set of processed event identifiers. Contains must
// reflect every identifier loaded at startup plus every successful Record
// from this process lifetime. Record must be durable before it returns
// success: a crash immediately after implies the identifier survives
// restart.
type Store interface {
	Contains(id string) bool
	Record(ctx context.Context, id string) error
	Len() int
	Close() error
}

// New selects a backend from the configuration: Postgres when a database
// URL is set, Redis when a Redis URL is set, else the append-only file.
func New(ctx context.Context, cfg config.DedupConfig) (Store, error) {
	switch {
	case cfg.DatabaseURL != "":
		return NewPostgresStore(ctx, cfg)
	case cfg.RedisURL != "":
		return NewRedisStore(ctx, cfg.RedisURL)
	default:
		return NewFileStore(cfg.FilePath)
	}
}
