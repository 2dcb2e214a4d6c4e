package registry

import (
	"context"
	"fmt"

	"github.com/annel0/dungeon-rooms/internal/config"
)

// Open создаёт реестр по секции конфигурации
func Open(ctx context.Context, cfg config.RegistryConfig) (Registry, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryRegistry(), nil
	case "badger":
		return NewBadgerRegistry(cfg.BadgerPath)
	case "sqlite":
		return NewSQLiteRegistry(ctx, cfg.SQLitePath)
	case "redis":
		return NewRedisRegistry(ctx, &RedisConfig{
			Addr:      cfg.RedisAddr,
			DB:        cfg.RedisDB,
			KeyPrefix: DefaultRedisConfig().KeyPrefix,
		})
	case "maria":
		return NewMariaRegistry(ctx, cfg.MariaDSN)
	case "mongo":
		return NewMongoRegistry(ctx, MongoConfig{URI: cfg.MongoURI, Database: cfg.MongoDB})
	default:
		return nil, fmt.Errorf("неизвестный backend реестра %q", cfg.Backend)
	}
}
