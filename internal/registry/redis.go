package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/annel0/dungeon-rooms/internal/logging"
	"github.com/annel0/dungeon-rooms/internal/vec"
	"github.com/go-redis/redis/v8"
)

// RedisConfig содержит настройки подключения к Redis
type RedisConfig struct {
	Addr      string // Адрес Redis сервера
	Password  string // Пароль (пустой если не требуется)
	DB        int    // Номер базы данных
	KeyPrefix string // Префикс для ключей
}

// DefaultRedisConfig возвращает конфигурацию по умолчанию
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:      "localhost:6379",
		KeyPrefix: "roomgen:room:",
	}
}

// RedisRegistry регистрирует комнаты через SETNX: из конкурирующих вызовов
// ключ создаёт ровно один. Отметки бессрочные: истёкшая отметка позволила бы
// сгенерировать комнату второй раз.
type RedisRegistry struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisRegistry подключается к Redis и проверяет соединение
func NewRedisRegistry(ctx context.Context, config *RedisConfig) (*RedisRegistry, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.GetRegistryLogger().Info("🔴 Реестр комнат подключён к Redis %s", config.Addr)
	return NewRedisRegistryFromClient(client, config.KeyPrefix), nil
}

// NewRedisRegistryFromClient использует готовый клиент (кластер, sentinel, тесты)
func NewRedisRegistryFromClient(client redis.UniversalClient, keyPrefix string) *RedisRegistry {
	if keyPrefix == "" {
		keyPrefix = DefaultRedisConfig().KeyPrefix
	}
	return &RedisRegistry{client: client, keyPrefix: keyPrefix}
}

func (r *RedisRegistry) key(world string, cell vec.Vec2, layer int) string {
	return r.keyPrefix + Key(world, cell, layer)
}

func (r *RedisRegistry) TryRegisterGenerated(ctx context.Context, world string, cell vec.Vec2, layer int) (bool, error) {
	if err := validate(world); err != nil {
		return false, err
	}

	value := time.Now().UTC().Format(time.RFC3339Nano)
	ok, err := r.client.SetNX(ctx, r.key(world, cell, layer), value, 0).Result()
	if err != nil {
		return false, fmt.Errorf("failed to register room: %w", err)
	}
	return ok, nil
}

func (r *RedisRegistry) IsGenerated(ctx context.Context, world string, cell vec.Vec2, layer int) (bool, error) {
	if err := validate(world); err != nil {
		return false, err
	}

	n, err := r.client.Exists(ctx, r.key(world, cell, layer)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check room: %w", err)
	}
	return n > 0, nil
}

func (r *RedisRegistry) Close() error {
	return r.client.Close()
}
