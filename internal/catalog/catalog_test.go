package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/annel0/dungeon-rooms/internal/generation"
	"github.com/annel0/dungeon-rooms/internal/vec"
	"github.com/annel0/dungeon-rooms/internal/world/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKinds(t *testing.T) {
	kinds, err := DefaultKinds()
	require.NoError(t, err)
	require.Len(t, kinds, 1)

	blaze := kinds[0]
	assert.Equal(t, "blaze_spawner_room", blaze.Name)
	assert.Equal(t, generation.BlazeGateParams(), blaze.Gate.Params)
	assert.InDelta(t, 2.7793, blaze.Gate.Chance(2), 0.0001)

	require.NotNil(t, blaze.Feature)
	assert.Equal(t, generation.BlazeSpawner(), *blaze.Feature)

	carver, ok := blaze.Carver.(generation.PlatformCarver)
	require.True(t, ok, "ожидался PlatformCarver, получен %T", blaze.Carver)
	assert.Equal(t, generation.NetherMaterials(), carver.Materials)

	assert.Equal(t, generation.DefaultCountTable, blaze.Loot.CountTable)
}

func TestDefaultLootOrder(t *testing.T) {
	kinds, err := DefaultKinds()
	require.NoError(t, err)
	entries := kinds[0].Loot.Entries

	require.Len(t, entries, 45)
	assert.Equal(t, generation.LootEntry{Item: "torch", Quantity: 4, Chance: 80}, entries[0])
	assert.Equal(t, generation.LootEntry{Item: "diamond", Quantity: 1, Chance: 20}, entries[6])
	assert.Equal(t, generation.LootEntry{Item: "redstone", Quantity: 21, Chance: 3}, entries[36])
	assert.Equal(t, generation.LootEntry{Item: "cookie", Quantity: 5, Chance: 20}, entries[44])

	// Повтор строки сохраняется: он удваивает шанс предмета
	assert.Equal(t, entries[39], entries[40])
	assert.Equal(t, "cooked_fish", entries[39].Item)
}

func TestValidateRejectsBadCatalogs(t *testing.T) {
	cases := map[string]string{
		"chance out of range": `
version: 1
room_kinds:
  - name: r
    layers: {min: 1, max: 2}
    gate: {base_chance: 1, chance_slope: 0, reference_layer: 0, layer_divisor: 1}
    carver: {name: nether_platform}
    loot:
      entries:
        - {item: torch, quantity: 1, chance: 150}
`,
		"missing loot": `
version: 1
room_kinds:
  - name: r
    layers: {min: 1, max: 2}
    gate: {base_chance: 1, chance_slope: 0, reference_layer: 0, layer_divisor: 1}
    carver: {name: nether_platform}
`,
		"unknown field": `
version: 1
room_kinds:
  - name: r
    layers: {min: 1, max: 2}
    gate: {base_chance: 1, chance_slope: 0, reference_layer: 0, layer_divisor: 1}
    carver: {name: nether_platform}
    loot:
      entries:
        - {item: torch, quantity: 1, chance: 50}
    weight: 3
`,
		"wrong version": `
version: 2
room_kinds: []
`,
	}

	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestBuildErrors(t *testing.T) {
	base := func() *File {
		return &File{
			Version: 1,
			RoomKinds: []KindSpec{{
				Name:   "r",
				Layers: LayerRange{Min: 1, Max: 2},
				Gate:   GateSpec{BaseChance: 1, LayerDivisor: 1},
				Carver: CarverSpec{Name: "nether_platform"},
				Loot:   LootSpec{Entries: []generation.LootEntry{{Item: "torch", Quantity: 1, Chance: 50}}},
			}},
		}
	}

	t.Run("Valid", func(t *testing.T) {
		kinds, err := base().Build()
		require.NoError(t, err)
		assert.Nil(t, kinds[0].Feature, "без секции spawner комната без спаунера")
	})

	t.Run("Unknown carver", func(t *testing.T) {
		f := base()
		f.RoomKinds[0].Carver.Name = "cave"
		_, err := f.Build()
		assert.Error(t, err)
	})

	t.Run("Unknown material", func(t *testing.T) {
		f := base()
		f.RoomKinds[0].Carver.Materials = map[string]string{"floor": "marble"}
		_, err := f.Build()
		assert.Error(t, err)
	})

	t.Run("Material override", func(t *testing.T) {
		f := base()
		f.RoomKinds[0].Carver.Materials = map[string]string{"floor": "stone"}
		kinds, err := f.Build()
		require.NoError(t, err)
		carver := kinds[0].Carver.(generation.PlatformCarver)
		assert.Equal(t, block.StoneBlockID, carver.Materials.Floor)
		assert.Equal(t, block.ChestBlockID, carver.Materials.Container)
	})

	t.Run("Duplicate kind", func(t *testing.T) {
		f := base()
		f.RoomKinds = append(f.RoomKinds, f.RoomKinds[0])
		_, err := f.Build()
		assert.Error(t, err)
	})

	t.Run("Spawner outside room", func(t *testing.T) {
		f := base()
		f.RoomKinds[0].Spawner = &SpawnerSpec{
			Entity: "blaze",
			Cause:  "BLAZE_SPAWNER_ROOM",
			Anchor: &vec.Vec3{X: 7, Y: 9, Z: 7},
			Spread: 2,
		}
		_, err := f.Build()
		assert.Error(t, err, "зона 2x2 от x=7 выходит за стену")

		f.RoomKinds[0].Spawner.Anchor = &vec.Vec3{X: 6, Y: 2, Z: 6}
		_, err = f.Build()
		assert.NoError(t, err)
	})

	t.Run("Empty layer range", func(t *testing.T) {
		f := base()
		f.RoomKinds[0].Layers = LayerRange{Min: 3, Max: 1}
		_, err := f.Build()
		assert.Error(t, err)
	})
}

func TestLoadFromFile(t *testing.T) {
	doc := `
version: 1
room_kinds:
  - name: stone_vault
    layers: {min: 2, max: 3}
    gate: {base_chance: 5, chance_slope: 0, reference_layer: 0, layer_divisor: 1, min_spawn_distance: 2}
    carver:
      name: nether_platform
      materials: {floor: stone, wall: cobblestone}
    spawner:
      entity: zombie
      cause: VAULT
      anchor: {x: 2, y: 2, z: 2}
      spread: 1
    loot:
      counts: [1]
      entries:
        - {item: apple, quantity: 2, chance: 100}
`
	path := filepath.Join(t.TempDir(), "rooms.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	kinds, err := LoadKinds(path)
	require.NoError(t, err)
	require.Len(t, kinds, 1)

	k := kinds[0]
	assert.Equal(t, "stone_vault", k.Name)
	assert.Equal(t, 5.0, k.Gate.Chance(3))
	require.NotNil(t, k.Feature)
	assert.Equal(t, "zombie", k.Feature.EntityKind)
	assert.Equal(t, vec.Vec3{X: 2, Y: 2, Z: 2}, k.Feature.Anchor)
	assert.Equal(t, 1, k.Feature.Spread)
	assert.Equal(t, []int{1}, k.Loot.CountTable)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
