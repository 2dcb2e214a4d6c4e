package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации генератора комнат.
// Порядок применения: значения по умолчанию -> YAML файл -> переменные окружения.
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Layout    LayoutConfig    `yaml:"layout"`
	Registry  RegistryConfig  `yaml:"registry"`
	EventBus  EventBusConfig  `yaml:"eventbus"`
	Spawners  SpawnerConfig   `yaml:"spawners"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Log       LogConfig       `yaml:"log"`
}

// WorldConfig описывает мир, в котором генерируются комнаты
type WorldConfig struct {
	Name    string `yaml:"name" env:"ROOMGEN_WORLD_NAME"`
	Seed    int64  `yaml:"seed" env:"ROOMGEN_SEED"`
	MinY    int    `yaml:"min_y"`
	MaxY    int    `yaml:"max_y"`
	Workers int    `yaml:"workers" env:"ROOMGEN_WORKERS"`
	// Terrain включает заполнение демо-ландшафтом перед генерацией
	Terrain bool `yaml:"terrain" env:"ROOMGEN_TERRAIN"`
}

// LayoutConfig задаёт, как ячейка и слой превращаются в границы комнаты
type LayoutConfig struct {
	CellSize    int `yaml:"cell_size"`
	RoomOffsetX int `yaml:"room_offset_x"`
	RoomOffsetZ int `yaml:"room_offset_z"`
	LayerBaseY  int `yaml:"layer_base_y"`
	LayerHeight int `yaml:"layer_height"`
	RoomHeight  int `yaml:"room_height"`
}

// RegistryConfig выбирает хранилище реестра сгенерированных комнат
type RegistryConfig struct {
	// Backend: memory | badger | redis | maria | mongo | sqlite
	Backend    string `yaml:"backend" env:"ROOMGEN_REGISTRY_BACKEND"`
	BadgerPath string `yaml:"badger_path" env:"ROOMGEN_BADGER_PATH"`
	SQLitePath string `yaml:"sqlite_path" env:"ROOMGEN_SQLITE_PATH"`
	RedisAddr  string `yaml:"redis_addr" env:"ROOMGEN_REDIS_ADDR"`
	RedisDB    int    `yaml:"redis_db" env:"ROOMGEN_REDIS_DB"`
	MariaDSN   string `yaml:"maria_dsn" env:"ROOMGEN_MARIA_DSN"`
	MongoURI   string `yaml:"mongo_uri" env:"ROOMGEN_MONGO_URI"`
	MongoDB    string `yaml:"mongo_database" env:"ROOMGEN_MONGO_DATABASE"`
}

// EventBusConfig настройки шины событий (пустой URL = in-memory шина)
type EventBusConfig struct {
	URL       string `yaml:"url" env:"ROOMGEN_NATS_URL"`
	Stream    string `yaml:"stream" env:"ROOMGEN_NATS_STREAM"`
	Retention int    `yaml:"retention_hours"`
	Buffer    int    `yaml:"buffer"`
}

// SpawnerConfig списки разрешённых/запрещённых существ для спаунеров
type SpawnerConfig struct {
	Allowed []string `yaml:"allowed" env:"ROOMGEN_SPAWNERS_ALLOWED" envSeparator:","`
	Denied  []string `yaml:"denied" env:"ROOMGEN_SPAWNERS_DENIED" envSeparator:","`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled" env:"ROOMGEN_METRICS_ENABLED"`
	Port    int  `yaml:"port"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled" env:"ROOMGEN_TELEMETRY_ENABLED"`
	ServiceName string `yaml:"service_name"`
}

// CatalogConfig путь к YAML каталогу типов комнат; пусто = встроенный каталог
type CatalogConfig struct {
	Path string `yaml:"path" env:"ROOMGEN_CATALOG"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"ROOMGEN_LOG_LEVEL"`
	Dir   string `yaml:"dir" env:"ROOMGEN_LOG_DIR"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		World: WorldConfig{
			Name:    "dungeon",
			Seed:    42,
			MinY:    0,
			MaxY:    127,
			Workers: 4,
		},
		Layout: LayoutConfig{
			CellSize:    16,
			LayerBaseY:  30,
			LayerHeight: 6,
			RoomHeight:  6,
		},
		Registry: RegistryConfig{
			Backend:    "memory",
			BadgerPath: "data/registry",
			SQLitePath: "data/registry.db",
			RedisAddr:  "localhost:6379",
			MongoDB:    "dungeon",
		},
		EventBus: EventBusConfig{
			Stream:    "ROOMS",
			Retention: 24,
			Buffer:    1024,
		},
		Spawners: SpawnerConfig{
			Allowed: []string{"*"},
		},
		Metrics: MetricsConfig{
			Port: 2112,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "roomgen",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// GetMetricsPort возвращает порт Prometheus с поддержкой fallback значений
func (m *MetricsConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(m.Port, "ROOMGEN_METRICS_PORT", 2112)
}

// getPortWithEnvFallback возвращает порт с приоритетом: env -> config -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	if configPort > 0 {
		return configPort
	}

	return defaultPort
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается взять путь из ENV ROOMGEN_CONFIG; без файла
// используются только значения по умолчанию и переменные окружения.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("ROOMGEN_CONFIG")
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения конфигурации %s: %w", path, err)
		}
		// Неизвестные ключи (в том числе устаревшие) считаются ошибкой
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("ошибка разбора конфигурации %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("ошибка чтения переменных окружения: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет согласованность значений
func (c *Config) Validate() error {
	if c.World.Name == "" {
		return fmt.Errorf("world.name не может быть пустым")
	}
	if len(c.World.Name) > 64 {
		return fmt.Errorf("world.name длиннее 64 байт: %d", len(c.World.Name))
	}
	if c.World.MinY > c.World.MaxY {
		return fmt.Errorf("world.min_y (%d) больше world.max_y (%d)", c.World.MinY, c.World.MaxY)
	}
	if c.Layout.CellSize < 8 {
		return fmt.Errorf("layout.cell_size должен быть не меньше 8, получено %d", c.Layout.CellSize)
	}
	if c.Layout.LayerHeight <= 0 {
		return fmt.Errorf("layout.layer_height должен быть положительным, получено %d", c.Layout.LayerHeight)
	}
	if c.Layout.RoomHeight < 3 {
		return fmt.Errorf("layout.room_height должен быть не меньше 3, получено %d", c.Layout.RoomHeight)
	}
	if c.World.Workers <= 0 {
		c.World.Workers = 1
	}

	switch c.Registry.Backend {
	case "memory", "badger", "redis", "maria", "mongo", "sqlite":
	default:
		return fmt.Errorf("неизвестный registry.backend %q", c.Registry.Backend)
	}

	return nil
}
