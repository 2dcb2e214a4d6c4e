// Package catalog загружает таблицу типов комнат из YAML и превращает её
// в значения generation.RoomKind. Каталог по умолчанию встроен в бинарник.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/annel0/dungeon-rooms/internal/generation"
	"github.com/annel0/dungeon-rooms/internal/logging"
	"github.com/annel0/dungeon-rooms/internal/vec"
	"github.com/annel0/dungeon-rooms/internal/world/block"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed rooms.yaml
var defaultCatalog []byte

//go:embed rooms.schema.json
var schemaJSON string

const schemaURL = "rooms.schema.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

// File корень файла каталога
type File struct {
	Version   int        `yaml:"version"`
	RoomKinds []KindSpec `yaml:"room_kinds"`
}

// KindSpec описание одного типа комнаты
type KindSpec struct {
	Name    string       `yaml:"name"`
	Layers  LayerRange   `yaml:"layers"`
	Gate    GateSpec     `yaml:"gate"`
	Carver  CarverSpec   `yaml:"carver"`
	Spawner *SpawnerSpec `yaml:"spawner"`
	Loot    LootSpec     `yaml:"loot"`
}

type LayerRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

type GateSpec struct {
	BaseChance       float64 `yaml:"base_chance"`
	ChanceSlope      float64 `yaml:"chance_slope"`
	ReferenceLayer   int     `yaml:"reference_layer"`
	LayerDivisor     float64 `yaml:"layer_divisor"`
	MinSpawnDistance float64 `yaml:"min_spawn_distance"`
}

// CarverSpec имя резчика и материалы по именам блоков. Пустые материалы
// берутся из незерского набора.
type CarverSpec struct {
	Name      string            `yaml:"name"`
	Materials map[string]string `yaml:"materials"`
}

type SpawnerSpec struct {
	Entity string    `yaml:"entity"`
	Cause  string    `yaml:"cause"`
	Anchor *vec.Vec3 `yaml:"anchor"`
	Spread int       `yaml:"spread"`
}

type LootSpec struct {
	Counts  []int                  `yaml:"counts"`
	Entries []generation.LootEntry `yaml:"entries"`
}

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft7
		if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = compiler.Compile(schemaURL)
	})
	return schema, schemaErr
}

// Validate проверяет YAML по JSON-схеме каталога
func Validate(data []byte) error {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("разбор YAML: %w", err)
	}

	// Схема работает с JSON-значениями: переводим через JSON с json.Number
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("перевод в JSON: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var value interface{}
	if err := dec.Decode(&value); err != nil {
		return fmt.Errorf("перевод в JSON: %w", err)
	}

	sch, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("компиляция схемы каталога: %w", err)
	}
	if err := sch.Validate(value); err != nil {
		return fmt.Errorf("каталог не соответствует схеме: %w", err)
	}
	return nil
}

// Parse проверяет и разбирает каталог
func Parse(data []byte) (*File, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("разбор каталога: %w", err)
	}
	return &f, nil
}

// Default возвращает встроенный каталог
func Default() (*File, error) {
	return Parse(defaultCatalog)
}

// Load читает каталог из файла; для пустого пути берётся встроенный каталог
func Load(path string) (*File, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать каталог %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logging.Info("📚 Каталог комнат загружен из %s (%d типов)", path, len(f.RoomKinds))
	return f, nil
}

// Build превращает каталог в таблицу типов комнат в порядке файла
func (f *File) Build() ([]generation.RoomKind, error) {
	kinds := make([]generation.RoomKind, 0, len(f.RoomKinds))
	seen := make(map[string]bool, len(f.RoomKinds))

	for _, spec := range f.RoomKinds {
		if seen[spec.Name] {
			return nil, fmt.Errorf("тип комнаты %q описан дважды", spec.Name)
		}
		seen[spec.Name] = true

		kind, err := spec.build()
		if err != nil {
			return nil, fmt.Errorf("тип %s: %w", spec.Name, err)
		}
		if err := kind.Validate(); err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

func (s KindSpec) build() (generation.RoomKind, error) {
	materials, err := s.Carver.materials()
	if err != nil {
		return generation.RoomKind{}, err
	}
	carver, err := generation.NewCarver(s.Carver.Name, materials)
	if err != nil {
		return generation.RoomKind{}, err
	}

	kind := generation.RoomKind{
		Name: s.Name,
		Gate: generation.Gate{Params: generation.GateParams{
			MinLayer:         s.Layers.Min,
			MaxLayer:         s.Layers.Max,
			BaseChance:       s.Gate.BaseChance,
			ChanceSlope:      s.Gate.ChanceSlope,
			ReferenceLayer:   s.Gate.ReferenceLayer,
			LayerDivisor:     s.Gate.LayerDivisor,
			MinSpawnDistance: s.Gate.MinSpawnDistance,
		}},
		Carver: carver,
		Loot: generation.LootTable{
			Entries:    append([]generation.LootEntry(nil), s.Loot.Entries...),
			CountTable: append([]int(nil), s.Loot.Counts...),
		},
	}

	if s.Spawner != nil {
		feature := generation.BlazeSpawner()
		feature.EntityKind = s.Spawner.Entity
		feature.Cause = s.Spawner.Cause
		if s.Spawner.Anchor != nil {
			feature.Anchor = *s.Spawner.Anchor
		}
		if s.Spawner.Spread > 0 {
			feature.Spread = s.Spawner.Spread
		}
		kind.Feature = &feature
	}

	return kind, nil
}

func (c CarverSpec) materials() (generation.Materials, error) {
	m := generation.NetherMaterials()
	slots := map[string]*block.BlockID{
		"floor":     &m.Floor,
		"support":   &m.Support,
		"wall":      &m.Wall,
		"rail":      &m.Rail,
		"stair":     &m.Stair,
		"container": &m.Container,
	}
	for role, name := range c.Materials {
		slot, ok := slots[role]
		if !ok {
			return m, fmt.Errorf("неизвестная роль материала %q", role)
		}
		id, err := block.Parse(name)
		if err != nil {
			return m, fmt.Errorf("материал %s: %w", role, err)
		}
		*slot = id
	}
	return m, nil
}

// DefaultKinds строит встроенную таблицу типов комнат
func DefaultKinds() ([]generation.RoomKind, error) {
	f, err := Default()
	if err != nil {
		return nil, err
	}
	return f.Build()
}

// LoadKinds читает каталог и строит таблицу типов
func LoadKinds(path string) ([]generation.RoomKind, error) {
	f, err := Load(path)
	if err != nil {
		return nil, err
	}
	kinds, err := f.Build()
	if err != nil {
		return nil, err
	}
	logging.GetGenerationLogger().Debug("Типы комнат: %d", len(kinds))
	return kinds, nil
}
