package terrain

import (
	"errors"
	"testing"

	"github.com/annel0/dungeon-rooms/internal/vec"
	"github.com/annel0/dungeon-rooms/internal/world/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiller_Layers(t *testing.T) {
	f := NewFiller(42)

	for _, col := range []vec.Vec2{{X: 0, Y: 0}, {X: 37, Y: -12}, {X: 160, Y: 160}} {
		surface := f.SurfaceAt(col.X, col.Y)
		assert.InDelta(t, f.SurfaceY, surface, f.Amplitude+1, "поверхность должна быть около SurfaceY")

		assert.Equal(t, block.GrassBlockID, f.BlockAt(vec.Vec3{X: col.X, Y: surface, Z: col.Y}))
		assert.Equal(t, block.DirtBlockID, f.BlockAt(vec.Vec3{X: col.X, Y: surface - 1, Z: col.Y}))
		assert.Equal(t, block.AirBlockID, f.BlockAt(vec.Vec3{X: col.X, Y: surface + 1, Z: col.Y}))

		deep := f.BlockAt(vec.Vec3{X: col.X, Y: 40, Z: col.Y})
		assert.Contains(t, []block.BlockID{block.StoneBlockID, block.GravelBlockID}, deep)
	}
}

func TestFiller_Deterministic(t *testing.T) {
	a := NewFiller(7)
	b := NewFiller(7)
	for x := 0; x < 32; x += 5 {
		for y := 20; y < 70; y += 7 {
			pos := vec.Vec3{X: x, Y: y, Z: x * 2}
			assert.Equal(t, a.BlockAt(pos), b.BlockAt(pos))
		}
	}
}

type recordingSetter map[vec.Vec3]block.BlockID

func (r recordingSetter) SetVoxel(pos vec.Vec3, kind block.BlockID, _ block.Facing) error {
	r[pos] = kind
	return nil
}

func TestFiller_Fill(t *testing.T) {
	f := NewFiller(42)
	surface := f.SurfaceAt(5, 5)
	min := vec.Vec3{X: 4, Y: surface - 6, Z: 4}
	max := vec.Vec3{X: 6, Y: surface + 2, Z: 6}

	rec := recordingSetter{}
	n, err := f.Fill(rec, min, max)
	require.NoError(t, err)
	assert.Equal(t, len(rec), n)

	for pos, kind := range rec {
		assert.True(t, pos.Within(min, max), "%v вне области", pos)
		assert.Equal(t, f.BlockAt(pos), kind)
		assert.NotEqual(t, block.AirBlockID, kind, "воздух не пишется")
	}
	assert.Equal(t, block.GrassBlockID, rec[vec.Vec3{X: 5, Y: surface, Z: 5}])
	_, above := rec[vec.Vec3{X: 5, Y: surface + 1, Z: 5}]
	assert.False(t, above)
}

func TestFiller_FillStopsOnError(t *testing.T) {
	f := NewFiller(1)
	_, err := f.Fill(failingSetter{}, vec.Vec3{X: 0, Y: 10, Z: 0}, vec.Vec3{X: 1, Y: 11, Z: 1})
	assert.Error(t, err)
}

type failingSetter struct{}

func (failingSetter) SetVoxel(vec.Vec3, block.BlockID, block.Facing) error {
	return errors.New("вне границ")
}
