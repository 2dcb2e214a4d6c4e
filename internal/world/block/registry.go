package block

import (
	"fmt"
	"sort"
	"strings"
)

// BlockID представляет идентификатор типа вокселя.
// Значения совпадают с классическими числовыми ID, чтобы выгрузки было легко сверять.
type BlockID uint16

// Константы ID блоков
const (
	AirBlockID         BlockID = 0
	StoneBlockID       BlockID = 1
	GrassBlockID       BlockID = 2
	DirtBlockID        BlockID = 3
	CobblestoneBlockID BlockID = 4
	GravelBlockID      BlockID = 13

	// Интерактивные блоки
	SpawnerBlockID BlockID = 52
	ChestBlockID   BlockID = 54

	// Незерские блоки комнат
	NetherBrickBlockID       BlockID = 112
	NetherBrickFenceBlockID  BlockID = 113
	NetherBrickStairsBlockID BlockID = 114
)

var names = map[BlockID]string{
	AirBlockID:               "air",
	StoneBlockID:             "stone",
	GrassBlockID:             "grass",
	DirtBlockID:              "dirt",
	CobblestoneBlockID:       "cobblestone",
	GravelBlockID:            "gravel",
	SpawnerBlockID:           "spawner",
	ChestBlockID:             "chest",
	NetherBrickBlockID:       "nether_brick",
	NetherBrickFenceBlockID:  "nether_brick_fence",
	NetherBrickStairsBlockID: "nether_brick_stairs",
}

var byName = func() map[string]BlockID {
	m := make(map[string]BlockID, len(names))
	for id, name := range names {
		m[name] = id
	}
	return m
}()

// Name возвращает строковое имя блока
func (id BlockID) Name() string {
	if name, ok := names[id]; ok {
		return name
	}
	return fmt.Sprintf("block_%d", uint16(id))
}

func (id BlockID) String() string { return id.Name() }

// IsValidBlockID проверяет, является ли ID допустимым идентификатором блока
func IsValidBlockID(id BlockID) bool {
	_, exists := names[id]
	return exists
}

// Parse ищет блок по имени (регистр не важен)
func Parse(name string) (BlockID, error) {
	id, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("неизвестный блок %q", name)
	}
	return id, nil
}

// Names возвращает отсортированный список известных имён блоков
func Names() []string {
	out := make([]string, 0, len(byName))
	for name := range byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// MarshalText позволяет писать BlockID в YAML/JSON по имени
func (id BlockID) MarshalText() ([]byte, error) {
	return []byte(id.Name()), nil
}

// UnmarshalText разбирает имя блока
func (id *BlockID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
