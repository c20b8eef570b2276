package store

import (
	"context"
	"fmt"
	"log"

	"github.com/lixenwraith/gridedit/config"
)

// Open builds the backend named in cfg, connects it and ensures its schema
// Every failure is reported as ErrStoreUnavailable
func Open(ctx context.Context, cfg config.Store) (DocumentStore, error) {
	if cfg.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout())
		defer cancel()
	}

	var (
		s   DocumentStore
		err error
	)
	switch cfg.Backend {
	case config.BackendSQLite:
		s, err = OpenSQL(ctx, cfg.Path)
	case config.BackendRedis:
		s, err = OpenRedis(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.RedisKey)
	case config.BackendFile:
		s = NewFileStore(cfg.Path)
	case config.BackendMemory:
		s = NewMemoryStore()
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", ErrStoreUnavailable, cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	if err := s.EnsureSchema(ctx); err != nil {
		s.Close()
		return nil, err
	}

	log.Printf("store: opened %s backend", cfg.Backend)
	return s, nil
}
