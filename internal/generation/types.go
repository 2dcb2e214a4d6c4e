package generation

import (
	"fmt"

	"github.com/annel0/dungeon-rooms/internal/vec"
	"github.com/annel0/dungeon-rooms/internal/world"
	"github.com/annel0/dungeon-rooms/internal/world/block"
)

// RoomSize сторона квадратной комнаты в вокселях
const RoomSize = 8

// CellCoord координата ячейки (чанка) на горизонтальной плоскости
type CellCoord struct {
	X int `json:"x"`
	Z int `json:"z"`
}

// DistanceFromOrigin евклидово расстояние до ячейки (0,0) в ячейках
func (c CellCoord) DistanceFromOrigin() float64 {
	return c.Vec2().DistanceTo(vec.Vec2{})
}

// Vec2 переводит координату в vec.Vec2 (Y хранит Z)
func (c CellCoord) Vec2() vec.Vec2 {
	return vec.Vec2{X: c.X, Y: c.Z}
}

func (c CellCoord) String() string {
	return fmt.Sprintf("cell(%d,%d)", c.X, c.Z)
}

// RoomBounds объём одной комнаты 8×8×H. Значение неизменяемо после вычисления.
type RoomBounds struct {
	Origin   vec.Vec2 `json:"origin"` // Абсолютные X,Z угла комнаты
	FloorY   int      `json:"floor_y"`
	CeilingY int      `json:"ceiling_y"`
}

// At переводит локальное смещение (x, dy от пола, z) в абсолютную позицию
func (b RoomBounds) At(x, dy, z int) vec.Vec3 {
	return vec.Vec3{X: b.Origin.X + x, Y: b.FloorY + dy, Z: b.Origin.Y + z}
}

// Min нижний угол объёма комнаты, включая опорный слой под полом
func (b RoomBounds) Min() vec.Vec3 {
	return b.At(0, -1, 0)
}

// Max верхний угол объёма комнаты (потолок не входит)
func (b RoomBounds) Max() vec.Vec3 {
	return vec.Vec3{X: b.Origin.X + RoomSize - 1, Y: b.CeilingY - 1, Z: b.Origin.Y + RoomSize - 1}
}

// Contains проверяет, лежит ли позиция в объёме комнаты
func (b RoomBounds) Contains(pos vec.Vec3) bool {
	return pos.Within(b.Min(), b.Max())
}

// Validate проверяет, что между полом и потолком есть место для платформы и спаунера
func (b RoomBounds) Validate() error {
	if b.CeilingY-b.FloorY < 3 {
		return fmt.Errorf("высота комнаты %d..%d меньше 3", b.FloorY, b.CeilingY)
	}
	return nil
}

func (b RoomBounds) String() string {
	return fmt.Sprintf("room[%d,%d y=%d..%d]", b.Origin.X, b.Origin.Y, b.FloorY, b.CeilingY)
}

// Layout описывает, как ячейка и слой превращаются в границы комнаты
type Layout struct {
	CellSize    int
	RoomOffset  vec.Vec2
	LayerBaseY  int
	LayerHeight int
	RoomHeight  int
}

// DefaultLayout ячейки 16×16, слой 1 начинается с y=30, слои по 6 блоков
func DefaultLayout() Layout {
	return Layout{
		CellSize:    16,
		LayerBaseY:  30,
		LayerHeight: 6,
		RoomHeight:  6,
	}
}

// Validate проверяет, что раскладка даёт непустые и не совпадающие по высоте комнаты
func (l Layout) Validate() error {
	if l.CellSize < RoomSize {
		return fmt.Errorf("размер ячейки %d меньше комнаты %d", l.CellSize, RoomSize)
	}
	if l.LayerHeight <= 0 {
		return fmt.Errorf("высота слоя %d должна быть положительной", l.LayerHeight)
	}
	if l.RoomHeight < 3 {
		return fmt.Errorf("высота комнаты %d меньше 3", l.RoomHeight)
	}
	return nil
}

// BoundsFor вычисляет границы комнаты для ячейки и слоя
func (l Layout) BoundsFor(cell CellCoord, layer int) RoomBounds {
	floorY := l.LayerBaseY + (layer-1)*l.LayerHeight
	return RoomBounds{
		Origin:   cell.Vec2().Scale(l.CellSize).Add(l.RoomOffset),
		FloorY:   floorY,
		CeilingY: floorY + l.RoomHeight,
	}
}

// VoxelWrite одна запись в сетку: позиция, тип блока и ориентация
type VoxelWrite struct {
	Pos    vec.Vec3
	Kind   block.BlockID
	Facing block.Facing
}

// Grid изменяемая воксельная сетка с произвольным доступом по абсолютным координатам.
// Запись должна быть идемпотентной.
type Grid interface {
	SetVoxel(pos vec.Vec3, kind block.BlockID, facing block.Facing) error
}

// FeatureGrid дополнительно умеет настраивать спаунер
type FeatureGrid interface {
	Grid
	ConfigureSpawner(pos vec.Vec3, entity string) error
}

// ContainerStore доступ к слотам контейнеров, размещённых в сетке
type ContainerStore interface {
	Capacity(pos vec.Vec3) (int, error)
	SetSlot(pos vec.Vec3, slot int, stack world.ItemStack) error
	Commit(pos vec.Vec3) error
}
