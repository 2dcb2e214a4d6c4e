package generation

import (
	"errors"
	"testing"

	"github.com/annel0/dungeon-rooms/internal/terrain"
	"github.com/annel0/dungeon-rooms/internal/vec"
	"github.com/annel0/dungeon-rooms/internal/world"
	"github.com/annel0/dungeon-rooms/internal/world/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func goldenBounds() RoomBounds {
	return RoomBounds{Origin: vec.Vec2{X: 160, Y: 160}, FloorY: 64, CeilingY: 68}
}

func TestPlatformCarverPlan(t *testing.T) {
	b := goldenBounds()
	plan := NewPlatformCarver().Plan(b)

	require.Len(t, plan, 370)

	unique := make(map[vec.Vec3]struct{}, len(plan))
	for _, w := range plan {
		assert.True(t, b.Contains(w.Pos), "запись %v вне объёма комнаты", w.Pos)
		unique[w.Pos] = struct{}{}
	}
	assert.Len(t, unique, 304)

	// Первая запись угол пола, последняя второй сундук
	assert.Equal(t, VoxelWrite{Pos: vec.Vec3{X: 160, Y: 64, Z: 160}, Kind: block.NetherBrickBlockID}, plan[0])
	assert.Equal(t, VoxelWrite{Pos: vec.Vec3{X: 164, Y: 64, Z: 164}, Kind: block.ChestBlockID}, plan[len(plan)-1])
}

func TestPlatformCarverGoldenLevels(t *testing.T) {
	b := goldenBounds()
	grid := newTestGrid()
	require.NoError(t, NewPlatformCarver().Carve(b, grid))

	golden := map[int][]string{
		63: {
			"........",
			"cccccccc",
			"cccccccc",
			"cccccccc",
			"cccccccc",
			"cccccccc",
			"cccccccc",
			"........",
		},
		64: {
			"WWWWWWWW",
			"WWWWWWWW",
			"WWWWWWWW",
			"WWWCWWWW",
			"WWWWCWWW",
			"WWWWWWWW",
			"WWWWWWWW",
			"WWWWWWWW",
		},
		65: {
			"WF    FW",
			"F      F",
			"  W22W  ",
			"  0WW1  ",
			"  0WW1  ",
			"  W33W  ",
			"F      F",
			"WF    FW",
		},
		66: {
			"WF    FW",
			"F      F",
			"  F  F  ",
			"        ",
			"        ",
			"  F  F  ",
			"F      F",
			"WF    FW",
		},
		67: {
			"WF    FW",
			"F      F",
			"        ",
			"        ",
			"        ",
			"        ",
			"F      F",
			"WF    FW",
		},
		68: {
			"........",
			"........",
			"........",
			"........",
			"........",
			"........",
			"........",
			"........",
		},
	}

	for y, want := range golden {
		assert.Equal(t, want, renderLevel(grid, b, y), "уровень y=%d", y)
	}

	assert.Equal(t, uint64(370), grid.Writes())
	assert.Len(t, grid.WrittenVoxels(), 304)
}

func TestPlatformCarverReplacesTerrain(t *testing.T) {
	b := goldenBounds()
	clean := newTestGrid()
	require.NoError(t, NewPlatformCarver().Carve(b, clean))

	grid := newTestGrid()
	top := vec.Vec3{X: b.Origin.X + RoomSize - 1, Y: b.CeilingY, Z: b.Origin.Y + RoomSize - 1}
	filled, err := terrain.NewFiller(42).Fill(grid, b.Min(), top)
	require.NoError(t, err)
	require.Equal(t, RoomSize*RoomSize*(top.Y-b.Min().Y+1), filled, "комната целиком под поверхностью")

	require.NoError(t, NewPlatformCarver().Carve(b, grid))

	// Пол и всё над ним до потолка определяются только резкой
	for y := b.FloorY; y < b.CeilingY; y++ {
		assert.Equal(t, renderLevel(clean, b, y), renderLevel(grid, b, y), "уровень y=%d", y)
	}

	// Края опорного слоя и потолок остаются ландшафтом
	solid := []block.BlockID{block.StoneBlockID, block.GravelBlockID}
	for x := 0; x < RoomSize; x++ {
		for _, pos := range []vec.Vec3{b.At(x, -1, 0), b.At(x, -1, RoomSize-1), {X: b.Origin.X + x, Y: b.CeilingY, Z: b.Origin.Y + 3}} {
			v, ok := grid.Voxel(pos)
			require.True(t, ok)
			assert.Contains(t, solid, v.Kind, "%v", pos)
		}
		v, _ := grid.Voxel(b.At(x, -1, 3))
		assert.Equal(t, block.CobblestoneBlockID, v.Kind)
	}
}

func TestPlatformCarverIsIdempotent(t *testing.T) {
	b := goldenBounds()
	once := newTestGrid()
	twice := newTestGrid()

	carver := NewPlatformCarver()
	require.NoError(t, carver.Carve(b, once))
	require.NoError(t, carver.Carve(b, twice))
	require.NoError(t, carver.Carve(b, twice))

	assert.Equal(t, once.WrittenVoxels(), twice.WrittenVoxels())
}

func TestPlatformCarverContainers(t *testing.T) {
	b := goldenBounds()
	grid := newTestGrid()
	carver := NewPlatformCarver()
	require.NoError(t, carver.Carve(b, grid))

	containers := carver.Containers(b)
	assert.Equal(t, []vec.Vec3{{X: 163, Y: 64, Z: 163}, {X: 164, Y: 64, Z: 164}}, containers)
	for _, pos := range containers {
		capacity, err := grid.Capacity(pos)
		require.NoError(t, err)
		assert.Equal(t, world.ChestCapacity, capacity)
	}
}

func TestPlatformCarverOutOfBounds(t *testing.T) {
	b := goldenBounds()
	// Сетка обрезает комнату по x=163: часть пола уже записана, затем ошибка
	grid := world.NewMemoryGrid(vec.Vec3{X: 0, Y: 0, Z: 0}, vec.Vec3{X: 163, Y: 255, Z: 255})

	err := NewPlatformCarver().Carve(b, grid)
	require.Error(t, err)
	assert.True(t, errors.Is(err, world.ErrInvalidBounds))

	var boundsErr *world.BoundsError
	require.ErrorAs(t, err, &boundsErr)
	assert.Equal(t, 164, boundsErr.Pos.X)
	assert.Greater(t, grid.Writes(), uint64(0), "записи до ошибки остаются")
}

func TestPlatformCarverRejectsLowRoom(t *testing.T) {
	b := RoomBounds{FloorY: 64, CeilingY: 66}
	grid := newTestGrid()
	assert.Error(t, NewPlatformCarver().Carve(b, grid))
	assert.Equal(t, uint64(0), grid.Writes())
}
