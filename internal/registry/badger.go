package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/annel0/dungeon-rooms/internal/logging"
	"github.com/annel0/dungeon-rooms/internal/vec"
	"github.com/dgraph-io/badger/v3"
)

const (
	badgerKeyPrefix  = "room:"
	badgerMaxRetries = 8
)

// BadgerRegistry хранит отметки во встраиваемой BadgerDB.
// Конфликт транзакций повторяется: повторная попытка уже видит чужую запись.
type BadgerRegistry struct {
	db *badger.DB
}

// NewBadgerRegistry открывает базу в каталоге path. При пустом path база живёт в памяти.
func NewBadgerRegistry(path string) (*BadgerRegistry, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(path)
	}
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	logging.GetRegistryLogger().Info("💾 Реестр комнат BadgerDB открыт (%s)", displayPath(path))
	return &BadgerRegistry{db: db}, nil
}

func displayPath(path string) string {
	if path == "" {
		return "in-memory"
	}
	return path
}

func (r *BadgerRegistry) TryRegisterGenerated(ctx context.Context, world string, cell vec.Vec2, layer int) (bool, error) {
	if err := validate(world); err != nil {
		return false, err
	}
	key := []byte(badgerKeyPrefix + Key(world, cell, layer))

	for attempt := 0; attempt < badgerMaxRetries; attempt++ {
		if err := checkContext(ctx); err != nil {
			return false, err
		}

		registered := false
		err := r.db.Update(func(txn *badger.Txn) error {
			_, err := txn.Get(key)
			if err == nil {
				return nil
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			registered = true
			value := []byte(time.Now().UTC().Format(time.RFC3339Nano))
			return txn.Set(key, value)
		})
		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("ошибка регистрации в BadgerDB: %w", err)
		}
		return registered, nil
	}

	return false, fmt.Errorf("регистрация %s: %w", key, badger.ErrConflict)
}

func (r *BadgerRegistry) IsGenerated(ctx context.Context, world string, cell vec.Vec2, layer int) (bool, error) {
	if err := validate(world); err != nil {
		return false, err
	}
	key := []byte(badgerKeyPrefix + Key(world, cell, layer))

	found := false
	err := r.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("ошибка чтения BadgerDB: %w", err)
	}
	return found, nil
}

func (r *BadgerRegistry) Close() error {
	return r.db.Close()
}
