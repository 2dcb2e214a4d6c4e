package registry

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/annel0/dungeon-rooms/internal/vec"
)

// sqlRegistry общая часть реестров поверх database/sql. Атомарность
// обеспечивает первичный ключ (world, x, z, layer) и «вставка с игнорированием»
// конкретного диалекта: затронутая строка означает первую регистрацию.
type sqlRegistry struct {
	db          *sql.DB
	insertQuery string
}

const selectRoomQuery = `SELECT 1 FROM generated_rooms WHERE world = ? AND x = ? AND z = ? AND layer = ?`

func (r *sqlRegistry) TryRegisterGenerated(ctx context.Context, world string, cell vec.Vec2, layer int) (bool, error) {
	if err := validate(world); err != nil {
		return false, err
	}

	result, err := r.db.ExecContext(ctx, r.insertQuery, world, cell.X, cell.Y, layer, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("ошибка регистрации комнаты %s: %w", Key(world, cell, layer), err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ошибка получения количества затронутых строк: %w", err)
	}
	return rowsAffected == 1, nil
}

func (r *sqlRegistry) IsGenerated(ctx context.Context, world string, cell vec.Vec2, layer int) (bool, error) {
	if err := validate(world); err != nil {
		return false, err
	}

	var one int
	err := r.db.QueryRowContext(ctx, selectRoomQuery, world, cell.X, cell.Y, layer).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ошибка чтения реестра: %w", err)
	}
	return true, nil
}

func (r *sqlRegistry) Close() error {
	return r.db.Close()
}
