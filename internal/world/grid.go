package world

import (
	"errors"
	"fmt"
	"sync"

	"github.com/annel0/dungeon-rooms/internal/vec"
	"github.com/annel0/dungeon-rooms/internal/world/block"
)

// ErrInvalidBounds возвращается при записи за пределы загруженной области
var ErrInvalidBounds = errors.New("позиция вне загруженной области")

// BoundsError описывает конкретную запись, отклонённую сеткой
type BoundsError struct {
	Pos vec.Vec3
	Min vec.Vec3
	Max vec.Vec3
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("%v: %v не входит в [%v..%v]", ErrInvalidBounds, e.Pos, e.Min, e.Max)
}

// Unwrap позволяет использовать errors.Is(err, ErrInvalidBounds)
func (e *BoundsError) Unwrap() error { return ErrInvalidBounds }

// Voxel содержимое одной клетки сетки
type Voxel struct {
	Kind   block.BlockID `json:"kind"`
	Facing block.Facing  `json:"facing,omitempty"`
}

// ChestCapacity число слотов у сундука
const ChestCapacity = 27

// MemoryGrid потокобезопасная разреженная воксельная сетка в памяти.
// Хранит только записанные позиции.
type MemoryGrid struct {
	mu         sync.RWMutex
	min, max   vec.Vec3
	voxels     map[vec.Vec3]Voxel
	spawners   map[vec.Vec3]string
	containers map[vec.Vec3]*Container
	writes     uint64
}

// NewMemoryGrid создаёт сетку с загруженной областью [min, max] включительно
func NewMemoryGrid(min, max vec.Vec3) *MemoryGrid {
	return &MemoryGrid{
		min:        min,
		max:        max,
		voxels:     make(map[vec.Vec3]Voxel),
		spawners:   make(map[vec.Vec3]string),
		containers: make(map[vec.Vec3]*Container),
	}
}

// Bounds возвращает загруженную область
func (g *MemoryGrid) Bounds() (vec.Vec3, vec.Vec3) {
	return g.min, g.max
}

func (g *MemoryGrid) checkBounds(pos vec.Vec3) error {
	if !pos.Within(g.min, g.max) {
		return &BoundsError{Pos: pos, Min: g.min, Max: g.max}
	}
	return nil
}

// SetVoxel записывает блок. Повторная одинаковая запись ничего не меняет.
// Запись сундука создаёт пустой контейнер, замена сундука другим блоком удаляет его.
func (g *MemoryGrid) SetVoxel(pos vec.Vec3, kind block.BlockID, facing block.Facing) error {
	if err := g.checkBounds(pos); err != nil {
		return err
	}
	if !facing.Valid() {
		return fmt.Errorf("некорректная ориентация %d для %v", facing, pos)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.writes++
	g.voxels[pos] = Voxel{Kind: kind, Facing: facing}

	if kind != block.SpawnerBlockID {
		delete(g.spawners, pos)
	}

	if kind == block.ChestBlockID {
		if _, exists := g.containers[pos]; !exists {
			g.containers[pos] = newContainer(ChestCapacity)
		}
	} else {
		delete(g.containers, pos)
	}

	return nil
}

// Voxel возвращает блок в позиции; второй результат false, если позиция не записана
func (g *MemoryGrid) Voxel(pos vec.Vec3) (Voxel, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	v, ok := g.voxels[pos]
	return v, ok
}

// ConfigureSpawner задаёт тип существа для спаунера в позиции
func (g *MemoryGrid) ConfigureSpawner(pos vec.Vec3, entity string) error {
	if err := g.checkBounds(pos); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.voxels[pos].Kind != block.SpawnerBlockID {
		return fmt.Errorf("в позиции %v нет спаунера", pos)
	}
	g.spawners[pos] = entity
	return nil
}

// Spawner возвращает тип существа, настроенный в спаунере
func (g *MemoryGrid) Spawner(pos vec.Vec3) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	entity, ok := g.spawners[pos]
	return entity, ok
}

// Spawners возвращает копию всех спаунеров сетки
func (g *MemoryGrid) Spawners() map[vec.Vec3]string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	result := make(map[vec.Vec3]string, len(g.spawners))
	for pos, entity := range g.spawners {
		result[pos] = entity
	}
	return result
}

// WrittenVoxels возвращает копию всех явно записанных вокселей
func (g *MemoryGrid) WrittenVoxels() map[vec.Vec3]Voxel {
	g.mu.RLock()
	defer g.mu.RUnlock()

	result := make(map[vec.Vec3]Voxel, len(g.voxels))
	for pos, v := range g.voxels {
		result[pos] = v
	}
	return result
}

// Writes возвращает общее число вызовов SetVoxel, прошедших проверку границ
func (g *MemoryGrid) Writes() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.writes
}
