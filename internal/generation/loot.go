package generation

import (
	"fmt"

	"github.com/annel0/dungeon-rooms/internal/logging"
	"github.com/annel0/dungeon-rooms/internal/vec"
	"github.com/annel0/dungeon-rooms/internal/world"
)

// LootEntry строка каталога: предмет, количество и шанс попасть в кандидаты (0..100)
type LootEntry struct {
	Item     string `yaml:"item" json:"item"`
	Quantity int    `yaml:"quantity" json:"quantity"`
	Chance   int    `yaml:"chance" json:"chance"`
}

// DefaultCountTable даёт P(2)=2/8, P(3)=3/8, P(4)=2/8, P(5)=1/8
var DefaultCountTable = []int{2, 2, 3, 3, 3, 4, 4, 5}

// LootTable неизменяемый каталог добычи. Порядок строк входит в контракт
// воспроизводимости: на каждую строку тратится ровно одна выборка.
type LootTable struct {
	Entries    []LootEntry
	CountTable []int
}

// Validate проверяет каталог
func (t LootTable) Validate() error {
	if len(t.Entries) == 0 {
		return fmt.Errorf("каталог добычи пуст")
	}
	for i, e := range t.Entries {
		if e.Item == "" {
			return fmt.Errorf("строка %d: пустой предмет", i)
		}
		if e.Quantity <= 0 {
			return fmt.Errorf("строка %d (%s): количество %d должно быть положительным", i, e.Item, e.Quantity)
		}
		if e.Chance < 0 || e.Chance > 100 {
			return fmt.Errorf("строка %d (%s): шанс %d вне [0,100]", i, e.Item, e.Chance)
		}
	}
	for _, n := range t.CountTable {
		if n <= 0 {
			return fmt.Errorf("таблица количества содержит %d", n)
		}
	}
	return nil
}

func (t LootTable) countTable() []int {
	if len(t.CountTable) == 0 {
		return DefaultCountTable
	}
	return t.CountTable
}

// SampleCandidates проходит каталог по порядку, по одной выборке Intn(100) на строку
func (t LootTable) SampleCandidates(rnd RandomSource) []world.ItemStack {
	candidates := make([]world.ItemStack, 0, len(t.Entries)/2)
	for _, e := range t.Entries {
		if rnd.Intn(100) < e.Chance {
			candidates = append(candidates, world.ItemStack{Item: e.Item, Count: e.Quantity})
		}
	}
	return candidates
}

// SampleCount выбирает число предметов одной выборкой из таблицы количества
func (t LootTable) SampleCount(rnd RandomSource) int {
	table := t.countTable()
	return table[rnd.Intn(len(table))]
}

// SlotWrite одна запись добычи в слот
type SlotWrite struct {
	Slot  int             `json:"slot"`
	Stack world.ItemStack `json:"stack"`
}

// ContainerResult что было положено в один контейнер
type ContainerResult struct {
	Pos        vec.Vec3    `json:"pos"`
	Candidates int         `json:"candidates"`
	Count      int         `json:"count"`
	Writes     []SlotWrite `json:"writes,omitempty"`
	Skipped    bool        `json:"skipped,omitempty"`
}

// LootPopulator наполняет контейнеры, поставленные резчиком
type LootPopulator struct {
	Table LootTable
}

// Populate для каждого контейнера: отбор кандидатов, выбор количества, затем для
// каждого предмета слот Intn(capacity) и кандидат Intn(len). Совпадающие слоты
// перезаписываются. При пустом списке кандидатов контейнер пропускается целиком.
func (p LootPopulator) Populate(containers []vec.Vec3, rnd RandomSource, store ContainerStore) ([]ContainerResult, error) {
	results := make([]ContainerResult, 0, len(containers))

	for _, pos := range containers {
		capacity, err := store.Capacity(pos)
		if err != nil {
			return results, fmt.Errorf("контейнер %v: %w", pos, err)
		}
		if capacity <= 0 {
			return results, fmt.Errorf("контейнер %v без слотов", pos)
		}

		candidates := p.Table.SampleCandidates(rnd)
		res := ContainerResult{Pos: pos, Candidates: len(candidates)}
		if len(candidates) == 0 {
			logging.GetGenerationLogger().Warn("⚠️ Пустой список добычи для контейнера %v, пропускаем", pos)
			res.Skipped = true
			results = append(results, res)
			continue
		}

		res.Count = p.Table.SampleCount(rnd)
		res.Writes = make([]SlotWrite, 0, res.Count)
		for i := 0; i < res.Count; i++ {
			slot := rnd.Intn(capacity)
			stack := candidates[rnd.Intn(len(candidates))]
			if err := store.SetSlot(pos, slot, stack); err != nil {
				return results, fmt.Errorf("контейнер %v слот %d: %w", pos, slot, err)
			}
			res.Writes = append(res.Writes, SlotWrite{Slot: slot, Stack: stack})
		}

		if err := store.Commit(pos); err != nil {
			return results, fmt.Errorf("фиксация контейнера %v: %w", pos, err)
		}
		results = append(results, res)
	}

	return results, nil
}
