package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/annel0/dungeon-rooms/internal/vec"
)

// Registry хранит отметки о сгенерированных комнатах, ключ состоит из имени мира, ячейки и слоя.
// Гарантирует генерацию не более одного раза на ключ.
type Registry interface {
	// TryRegisterGenerated атомарно проверяет и регистрирует комнату.
	// Параметры:
	//   ctx - контекст для отмены операции
	//   world - имя мира
	//   cell - координата ячейки (Y хранит Z)
	//   layer - слой генерации
	// Возвращает:
	//   bool - true, если комната зарегистрирована впервые; false, если уже была
	//   error - ошибка хранилища
	TryRegisterGenerated(ctx context.Context, world string, cell vec.Vec2, layer int) (bool, error)

	// IsGenerated проверяет наличие отметки без изменения хранилища
	IsGenerated(ctx context.Context, world string, cell vec.Vec2, layer int) (bool, error)

	// Close закрывает соединение с хранилищем
	Close() error
}

// MaxWorldNameLen ограничивает длину имени мира в байтах (ширина колонки world в MariaDB)
const MaxWorldNameLen = 64

var (
	// ErrEmptyWorld возвращается для пустого имени мира
	ErrEmptyWorld = errors.New("пустое имя мира")
	// ErrWorldNameTooLong возвращается для имени длиннее MaxWorldNameLen
	ErrWorldNameTooLong = errors.New("имя мира слишком длинное")
)

// Key собирает строковый ключ записи: world:x:z:layer
func Key(world string, cell vec.Vec2, layer int) string {
	return fmt.Sprintf("%s:%d:%d:%d", world, cell.X, cell.Y, layer)
}

func validate(world string) error {
	if world == "" {
		return ErrEmptyWorld
	}
	if len(world) > MaxWorldNameLen {
		return fmt.Errorf("%w: %d байт, допустимо %d", ErrWorldNameTooLong, len(world), MaxWorldNameLen)
	}
	return nil
}

// checkContext возвращает ошибку, если контекст уже отменён
func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
