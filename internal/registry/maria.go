package registry

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/annel0/dungeon-rooms/internal/logging"
	_ "github.com/go-sql-driver/mysql"
)

// MariaRegistry реализует Registry для MariaDB/MySQL (таблица generated_rooms).
type MariaRegistry struct {
	sqlRegistry
}

// NewMariaRegistry подключается к базе и создаёт таблицу, если её нет.
//
// Параметры:
//
//	dsn - строка подключения (user:pass@tcp(host:port)/dbname?parseTime=true)
func NewMariaRegistry(ctx context.Context, dsn string) (*MariaRegistry, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к MariaDB: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось проверить соединение с MariaDB: %w", err)
	}

	query := `
		CREATE TABLE IF NOT EXISTS generated_rooms (
			world      VARCHAR(64) NOT NULL,
			x          INT         NOT NULL,
			z          INT         NOT NULL,
			layer      INT         NOT NULL,
			created_at DATETIME(6) NOT NULL,
			PRIMARY KEY (world, x, z, layer)
		) ENGINE=InnoDB
	`
	if _, err := db.ExecContext(ctx, query); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка создания таблицы generated_rooms: %w", err)
	}

	logging.GetRegistryLogger().Info("🐬 Реестр комнат подключён к MariaDB")
	return &MariaRegistry{sqlRegistry{
		db:          db,
		insertQuery: `INSERT IGNORE INTO generated_rooms (world, x, z, layer, created_at) VALUES (?, ?, ?, ?, ?)`,
	}}, nil
}
