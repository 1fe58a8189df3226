package storage

import (
	"fmt"

	"sharebite/internal/config"
	"sharebite/internal/logger"
)

// New opens the storage backend selected by cfg.
func New(cfg config.StorageConfig) (Store, error) {
	switch cfg.Type {
	case "", "memory":
		logger.Info("Using in-memory client storage; the session is lost on exit")
		return NewMemoryStore(), nil
	case "sqlite":
		logger.Info("Using sqlite client storage", "path", cfg.Path)
		return NewSQLiteStore(cfg.Path)
	case "redis":
		logger.Info("Using redis client storage", "addr", cfg.RedisAddr, "prefix", cfg.KeyPrefix)
		return NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.KeyPrefix)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.Type)
	}
}
