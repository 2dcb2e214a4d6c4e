package registry

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/annel0/dungeon-rooms/internal/logging"
	_ "modernc.org/sqlite"
)

// SQLiteRegistry хранит реестр в одном файле SQLite (драйвер без cgo).
type SQLiteRegistry struct {
	sqlRegistry
}

// NewSQLiteRegistry открывает или создаёт файл базы
func NewSQLiteRegistry(ctx context.Context, path string) (*SQLiteRegistry, error) {
	if path == "" {
		return nil, fmt.Errorf("не указан путь к файлу SQLite")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Один писатель: SQLite сериализует записи сам, пул только мешает
	db.SetMaxOpenConns(1)

	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS generated_rooms (
			world      TEXT    NOT NULL,
			x          INTEGER NOT NULL,
			z          INTEGER NOT NULL,
			layer      INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (world, x, z, layer)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ошибка инициализации SQLite: %w", err)
		}
	}

	logging.GetRegistryLogger().Info("🗄️ Реестр комнат SQLite открыт (%s)", path)
	return &SQLiteRegistry{sqlRegistry{
		db:          db,
		insertQuery: `INSERT OR IGNORE INTO generated_rooms (world, x, z, layer, created_at) VALUES (?, ?, ?, ?, ?)`,
	}}, nil
}
