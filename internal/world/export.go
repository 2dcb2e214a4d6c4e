package world

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/annel0/dungeon-rooms/internal/vec"
	"github.com/klauspost/compress/zstd"
)

// gridDump сериализуемое представление записанной части сетки
type gridDump struct {
	Min        vec.Vec3          `json:"min"`
	Max        vec.Vec3          `json:"max"`
	Voxels     []voxelRecord     `json:"voxels"`
	Spawners   []spawnerRecord   `json:"spawners,omitempty"`
	Containers []containerRecord `json:"containers,omitempty"`
}

type voxelRecord struct {
	Pos vec.Vec3 `json:"pos"`
	Voxel
}

type spawnerRecord struct {
	Pos    vec.Vec3 `json:"pos"`
	Entity string   `json:"entity"`
}

type containerRecord struct {
	Pos   vec.Vec3    `json:"pos"`
	Slots []ItemStack `json:"slots"`
}

func lessPos(a, b vec.Vec3) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Z < b.Z
}

// Export пишет записанные воксели, спаунеры и зафиксированные контейнеры
// в w как JSON, сжатый zstd. Порядок записей детерминирован.
func (g *MemoryGrid) Export(w io.Writer) error {
	g.mu.RLock()
	dump := gridDump{Min: g.min, Max: g.max}
	for pos, v := range g.voxels {
		dump.Voxels = append(dump.Voxels, voxelRecord{Pos: pos, Voxel: v})
	}
	for pos, entity := range g.spawners {
		dump.Spawners = append(dump.Spawners, spawnerRecord{Pos: pos, Entity: entity})
	}
	for pos, c := range g.containers {
		slots := make([]ItemStack, len(c.Committed))
		copy(slots, c.Committed)
		dump.Containers = append(dump.Containers, containerRecord{Pos: pos, Slots: slots})
	}
	g.mu.RUnlock()

	sort.Slice(dump.Voxels, func(i, j int) bool { return lessPos(dump.Voxels[i].Pos, dump.Voxels[j].Pos) })
	sort.Slice(dump.Spawners, func(i, j int) bool { return lessPos(dump.Spawners[i].Pos, dump.Spawners[j].Pos) })
	sort.Slice(dump.Containers, func(i, j int) bool { return lessPos(dump.Containers[i].Pos, dump.Containers[j].Pos) })

	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("ошибка создания zstd энкодера: %w", err)
	}

	if err := json.NewEncoder(enc).Encode(&dump); err != nil {
		enc.Close()
		return fmt.Errorf("ошибка сериализации сетки: %w", err)
	}

	return enc.Close()
}

// Import восстанавливает сетку из потока, записанного Export.
// Контейнеры восстанавливаются в зафиксированном состоянии.
func Import(r io.Reader) (*MemoryGrid, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания zstd декодера: %w", err)
	}
	defer dec.Close()

	var dump gridDump
	if err := json.NewDecoder(dec).Decode(&dump); err != nil {
		return nil, fmt.Errorf("ошибка десериализации сетки: %w", err)
	}

	g := NewMemoryGrid(dump.Min, dump.Max)
	for _, rec := range dump.Voxels {
		if err := g.SetVoxel(rec.Pos, rec.Kind, rec.Facing); err != nil {
			return nil, err
		}
	}
	for _, rec := range dump.Spawners {
		if err := g.ConfigureSpawner(rec.Pos, rec.Entity); err != nil {
			return nil, err
		}
	}
	for _, rec := range dump.Containers {
		for slot, stack := range rec.Slots {
			if stack.Empty() {
				continue
			}
			if err := g.SetSlot(rec.Pos, slot, stack); err != nil {
				return nil, err
			}
		}
		if err := g.Commit(rec.Pos); err != nil {
			return nil, err
		}
	}

	return g, nil
}
