package generation

import (
	"fmt"

	"github.com/annel0/dungeon-rooms/internal/vec"
	"github.com/annel0/dungeon-rooms/internal/world/block"
)

// Carver вырезает геометрию комнаты. Carve детерминирован и не использует случайность.
type Carver interface {
	Carve(b RoomBounds, grid Grid) error
	// Containers возвращает абсолютные позиции контейнеров, которые ставит Carve
	Containers(b RoomBounds) []vec.Vec3
}

// Materials блоки, из которых строится комната с платформой
type Materials struct {
	Floor     block.BlockID `yaml:"floor"`
	Support   block.BlockID `yaml:"support"`
	Wall      block.BlockID `yaml:"wall"`
	Rail      block.BlockID `yaml:"rail"`
	Stair     block.BlockID `yaml:"stair"`
	Container block.BlockID `yaml:"container"`
}

// NetherMaterials материалы комнаты со спаунером ифрита
func NetherMaterials() Materials {
	return Materials{
		Floor:     block.NetherBrickBlockID,
		Support:   block.CobblestoneBlockID,
		Wall:      block.NetherBrickBlockID,
		Rail:      block.NetherBrickFenceBlockID,
		Stair:     block.NetherBrickStairsBlockID,
		Container: block.ChestBlockID,
	}
}

// Локальные позиции сундуков, спрятанных в полу под платформой
var platformContainerOffsets = []vec.Vec3{
	{X: 3, Y: 0, Z: 3},
	{X: 4, Y: 0, Z: 4},
}

// Ограждения у каждого углового столба: по два на угол
var cornerRailOffsets = [][2]int{
	{1, 0}, {0, 1},
	{6, 0}, {7, 1},
	{1, 7}, {0, 6},
	{6, 7}, {7, 6},
}

var cornerOffsets = [][2]int{{0, 0}, {7, 0}, {0, 7}, {7, 7}}

// Ступени вокруг платформы, развёрнутые наружу
var platformStairs = []struct {
	x, z   int
	facing block.Facing
}{
	{3, 2, block.FacingSouth}, {4, 2, block.FacingSouth},
	{3, 5, block.FacingNorth}, {4, 5, block.FacingNorth},
	{2, 3, block.FacingEast}, {2, 4, block.FacingEast},
	{5, 3, block.FacingWest}, {5, 4, block.FacingWest},
}

// PlatformCarver строит зал с возвышением в центре: пол, опорный слой, столбы
// с ограждениями по углам, платформу 4×4 со ступенями и столбиками.
type PlatformCarver struct {
	Materials Materials
}

// NewPlatformCarver создаёт резчик с незерскими материалами
func NewPlatformCarver() PlatformCarver {
	return PlatformCarver{Materials: NetherMaterials()}
}

// Plan возвращает упорядоченный список записей для комнаты
func (c PlatformCarver) Plan(b RoomBounds) []VoxelWrite {
	m := c.Materials
	height := b.CeilingY - b.FloorY - 1
	writes := make([]VoxelWrite, 0, 64+48+RoomSize*RoomSize*height+12*height+30)

	put := func(x, dy, z int, kind block.BlockID, facing block.Facing) {
		writes = append(writes, VoxelWrite{Pos: b.At(x, dy, z), Kind: kind, Facing: facing})
	}

	// Пол
	for x := 0; x < RoomSize; x++ {
		for z := 0; z < RoomSize; z++ {
			put(x, 0, z, m.Floor, block.FacingNone)
		}
	}

	// Опорная полоса под полом, края z=0 и z=7 не трогаем
	for x := 0; x < RoomSize; x++ {
		for z := 1; z < RoomSize-1; z++ {
			put(x, -1, z, m.Support, block.FacingNone)
		}
	}

	// Вычищаем всё, что было внутри объёма комнаты
	for x := 0; x < RoomSize; x++ {
		for dy := 1; dy <= height; dy++ {
			for z := 0; z < RoomSize; z++ {
				put(x, dy, z, block.AirBlockID, block.FacingNone)
			}
		}
	}

	// Угловые столбы
	for dy := 1; dy <= height; dy++ {
		for _, o := range cornerOffsets {
			put(o[0], dy, o[1], m.Wall, block.FacingNone)
		}
	}

	// Ограждения рядом со столбами
	for dy := 1; dy <= height; dy++ {
		for _, o := range cornerRailOffsets {
			put(o[0], dy, o[1], m.Rail, block.FacingNone)
		}
	}

	// Платформа в центре
	for x := 2; x <= 5; x++ {
		for z := 2; z <= 5; z++ {
			put(x, 1, z, m.Wall, block.FacingNone)
		}
	}

	for _, s := range platformStairs {
		put(s.x, 1, s.z, m.Stair, s.facing)
	}

	// Столбики по углам платформы
	for _, o := range [][2]int{{2, 2}, {5, 2}, {2, 5}, {5, 5}} {
		put(o[0], 2, o[1], m.Rail, block.FacingNone)
	}

	for _, o := range platformContainerOffsets {
		put(o.X, o.Y, o.Z, m.Container, block.FacingNone)
	}

	return writes
}

// Carve применяет план к сетке. Первая отклонённая запись прерывает резку,
// уже сделанные записи остаются.
func (c PlatformCarver) Carve(b RoomBounds, grid Grid) error {
	if err := b.Validate(); err != nil {
		return err
	}
	for _, w := range c.Plan(b) {
		if err := grid.SetVoxel(w.Pos, w.Kind, w.Facing); err != nil {
			return fmt.Errorf("ошибка резки %v: %w", b, err)
		}
	}
	return nil
}

// Containers возвращает позиции двух сундуков в полу
func (c PlatformCarver) Containers(b RoomBounds) []vec.Vec3 {
	out := make([]vec.Vec3, 0, len(platformContainerOffsets))
	for _, o := range platformContainerOffsets {
		out = append(out, b.At(o.X, o.Y, o.Z))
	}
	return out
}
