package generation

import (
	"testing"

	"github.com/annel0/dungeon-rooms/internal/vec"
	"github.com/annel0/dungeon-rooms/internal/world"
	"github.com/annel0/dungeon-rooms/internal/world/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// carvedRoom сетка с уже вырезанной комнатой и числом записей после резки
type carvedRoom struct {
	*world.MemoryGrid
	writesAfterCarve uint64
}

func carvedGrid(t *testing.T, b RoomBounds) *carvedRoom {
	t.Helper()
	g := newTestGrid()
	require.NoError(t, NewPlatformCarver().Carve(b, g))
	return &carvedRoom{MemoryGrid: g, writesAfterCarve: g.Writes()}
}

func TestFeaturePlacerPlaces(t *testing.T) {
	b := goldenBounds()
	g := carvedGrid(t, b)
	rnd := newSequence(t, 1, 0)

	placer := FeaturePlacer{Spec: BlazeSpawner(), Permissions: PermitAll{}}
	placed, err := placer.Place(b, rnd, g)
	require.NoError(t, err)
	require.NotNil(t, placed)

	want := vec.Vec3{X: 164, Y: 66, Z: 163}
	assert.Equal(t, want, placed.Pos, "x выбирается раньше z")
	assert.Equal(t, "blaze", placed.EntityKind)
	assert.NotEmpty(t, placed.RequestID)
	assert.Equal(t, []int{2, 2}, rnd.bounds)

	v, ok := g.Voxel(want)
	require.True(t, ok)
	assert.Equal(t, block.SpawnerBlockID, v.Kind)
	entity, ok := g.Spawner(want)
	require.True(t, ok)
	assert.Equal(t, "blaze", entity)
}

func TestFeaturePlacerDenied(t *testing.T) {
	b := goldenBounds()
	g := carvedGrid(t, b)
	rnd := newSequence(t)

	hookCalled := false
	placer := FeaturePlacer{
		Spec:        BlazeSpawner(),
		Permissions: NewAllowList([]string{"*"}, []string{"BLAZE"}),
		Hook:        HookFunc(func(*GenerationRequest) { hookCalled = true }),
	}
	placed, err := placer.Place(b, rnd, g)
	require.NoError(t, err)
	assert.Nil(t, placed)
	assert.False(t, hookCalled)
	assert.Equal(t, 0, rnd.used(), "запрещённый спаунер не тратит выборки")
	assert.Equal(t, g.writesAfterCarve, g.Writes())
}

func TestFeaturePlacerCancelled(t *testing.T) {
	b := goldenBounds()
	g := carvedGrid(t, b)
	rnd := newSequence(t, 0, 1)

	var seen *GenerationRequest
	placer := FeaturePlacer{
		Spec: BlazeSpawner(),
		Hook: HookFunc(func(req *GenerationRequest) {
			seen = req
			req.Cancel()
		}),
	}
	placed, err := placer.Place(b, rnd, g)
	require.NoError(t, err)
	assert.Nil(t, placed)

	require.NotNil(t, seen)
	assert.Equal(t, vec.Vec3{X: 163, Y: 66, Z: 164}, seen.Target)
	assert.Equal(t, "BLAZE_SPAWNER_ROOM", seen.Cause)
	assert.Equal(t, "blaze", seen.EntityKind)
	assert.Same(t, rnd, seen.Rand)

	assert.Equal(t, 2, rnd.used(), "выборки позиции делаются до рассылки")
	assert.Equal(t, g.writesAfterCarve, g.Writes(), "отменённый спаунер не пишет в сетку")
	assert.Empty(t, g.Spawners())
}

func TestFeaturePlacerOverride(t *testing.T) {
	b := goldenBounds()
	g := carvedGrid(t, b)

	placer := FeaturePlacer{
		Spec: BlazeSpawner(),
		Hook: HookFunc(func(req *GenerationRequest) { req.SetSpawnedType("magma_cube") }),
	}
	placed, err := placer.Place(b, newSequence(t, 0, 0), g)
	require.NoError(t, err)
	require.NotNil(t, placed)
	assert.Equal(t, "magma_cube", placed.EntityKind)

	entity, _ := g.Spawner(placed.Pos)
	assert.Equal(t, "magma_cube", entity)
}

func TestHookChainOrder(t *testing.T) {
	var order []string
	chain := HookChain{
		HookFunc(func(req *GenerationRequest) {
			order = append(order, "first")
			req.Cancel()
		}),
		nil,
		HookFunc(func(req *GenerationRequest) {
			order = append(order, "second")
			assert.True(t, req.IsCancelled(), "следующий хук видит отмену")
			req.SetCancelled(false)
		}),
	}

	b := goldenBounds()
	g := carvedGrid(t, b)
	placed, err := FeaturePlacer{Spec: BlazeSpawner(), Hook: chain}.Place(b, newSequence(t, 1, 1), g)
	require.NoError(t, err)
	assert.NotNil(t, placed, "последний хук снял отмену")
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestAllowList(t *testing.T) {
	t.Run("Wildcard", func(t *testing.T) {
		al := NewAllowList([]string{"*"}, nil)
		assert.True(t, al.IsFeaturePermitted("blaze"))
		assert.True(t, al.IsFeaturePermitted("zombie"))
	})

	t.Run("Explicit", func(t *testing.T) {
		al := NewAllowList([]string{" Blaze "}, nil)
		assert.True(t, al.IsFeaturePermitted("blaze"))
		assert.True(t, al.IsFeaturePermitted("BLAZE"))
		assert.False(t, al.IsFeaturePermitted("zombie"))
	})

	t.Run("Deny wins", func(t *testing.T) {
		al := NewAllowList([]string{"*", "blaze"}, []string{"blaze"})
		assert.False(t, al.IsFeaturePermitted("blaze"))
		assert.True(t, al.IsFeaturePermitted("spider"))
	})

	t.Run("Empty allows nothing", func(t *testing.T) {
		assert.False(t, NewAllowList(nil, nil).IsFeaturePermitted("blaze"))
	})
}

func TestFeatureSpecValidate(t *testing.T) {
	cases := map[string]struct {
		mutate func(f *FeatureSpec)
		height int
		ok     bool
	}{
		"Blaze":              {func(*FeatureSpec) {}, 6, true},
		"Corner spread fits": {func(f *FeatureSpec) { f.Anchor = vec.Vec3{X: 6, Y: 1, Z: 6} }, 6, true},
		"Spread past X edge": {func(f *FeatureSpec) { f.Anchor.X = 7 }, 6, false},
		"Spread past Z edge": {func(f *FeatureSpec) { f.Anchor.Z = 7 }, 6, false},
		"Negative anchor":    {func(f *FeatureSpec) { f.Anchor.X = -1 }, 6, false},
		"On the floor":       {func(f *FeatureSpec) { f.Anchor.Y = 0 }, 6, false},
		"In the ceiling":     {func(f *FeatureSpec) { f.Anchor.Y = 6 }, 6, false},
		"Below ceiling":      {func(f *FeatureSpec) { f.Anchor.Y = 5 }, 6, true},
		"Ceiling unchecked":  {func(f *FeatureSpec) { f.Anchor.Y = 9 }, 0, true},
		"Zero spread":        {func(f *FeatureSpec) { f.Spread = 0 }, 6, false},
		"No entity":          {func(f *FeatureSpec) { f.EntityKind = "" }, 6, false},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f := BlazeSpawner()
			tc.mutate(&f)
			err := f.Validate(tc.height)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestFeaturePlacerRejectsZoneOutsideRoom(t *testing.T) {
	b := goldenBounds()
	g := carvedGrid(t, b)
	rnd := newSequence(t)

	spec := BlazeSpawner()
	spec.Anchor = vec.Vec3{X: 7, Y: 9, Z: 7}
	hookCalled := false
	placer := FeaturePlacer{Spec: spec, Hook: HookFunc(func(*GenerationRequest) { hookCalled = true })}

	placed, err := placer.Place(b, rnd, g)
	require.Error(t, err)
	assert.Nil(t, placed)
	assert.False(t, hookCalled)
	assert.Equal(t, 0, rnd.used(), "зона проверяется до выборок")
	assert.Equal(t, g.writesAfterCarve, g.Writes())
}
