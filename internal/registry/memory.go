package registry

import (
	"context"
	"sync"

	"github.com/annel0/dungeon-rooms/internal/vec"
)

// MemoryRegistry реестр в памяти процесса. Проверка и регистрация атомарны под мьютексом.
type MemoryRegistry struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

// NewMemoryRegistry создаёт пустой реестр
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{keys: make(map[string]struct{})}
}

func (r *MemoryRegistry) TryRegisterGenerated(ctx context.Context, world string, cell vec.Vec2, layer int) (bool, error) {
	if err := validate(world); err != nil {
		return false, err
	}
	if err := checkContext(ctx); err != nil {
		return false, err
	}

	key := Key(world, cell, layer)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.keys[key]; exists {
		return false, nil
	}
	r.keys[key] = struct{}{}
	return true, nil
}

func (r *MemoryRegistry) IsGenerated(ctx context.Context, world string, cell vec.Vec2, layer int) (bool, error) {
	if err := validate(world); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.keys[Key(world, cell, layer)]
	return exists, nil
}

// Len возвращает число зарегистрированных комнат
func (r *MemoryRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.keys)
}

func (r *MemoryRegistry) Close() error { return nil }
