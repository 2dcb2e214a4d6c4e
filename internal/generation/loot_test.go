package generation

import (
	"testing"

	"github.com/annel0/dungeon-rooms/internal/vec"
	"github.com/annel0/dungeon-rooms/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeEntryTable() LootTable {
	return LootTable{
		Entries: []LootEntry{
			{Item: "torch", Quantity: 4, Chance: 50},
			{Item: "apple", Quantity: 1, Chance: 10},
			{Item: "diamond", Quantity: 1, Chance: 0},
		},
	}
}

func TestSampleCandidates(t *testing.T) {
	table := threeEntryTable()

	rnd := newSequence(t, 49, 9, 0)
	got := table.SampleCandidates(rnd)
	assert.Equal(t, []world.ItemStack{{Item: "torch", Count: 4}, {Item: "apple", Count: 1}}, got)
	assert.Equal(t, []int{100, 100, 100}, rnd.bounds, "по одной выборке на строку")

	rnd = newSequence(t, 50, 10, 0)
	assert.Empty(t, table.SampleCandidates(rnd), "граница шанса не проходит, шанс 0 не проходит никогда")
}

func TestSampleCount(t *testing.T) {
	table := LootTable{}
	for draw, want := range []int{2, 2, 3, 3, 3, 4, 4, 5} {
		rnd := newSequence(t, draw)
		assert.Equal(t, want, table.SampleCount(rnd))
		assert.Equal(t, []int{8}, rnd.bounds)
	}

	custom := LootTable{CountTable: []int{1}}
	assert.Equal(t, 1, custom.SampleCount(newSequence(t, 0)))
}

func TestLootPopulatorSequence(t *testing.T) {
	b := goldenBounds()
	g := carvedGrid(t, b)
	containers := NewPlatformCarver().Containers(b)

	rnd := newSequence(t,
		// Первый сундук: кандидаты torch, apple; количество 3; три пары (слот, индекс)
		0, 0, 99,
		2,
		5, 1,
		26, 0,
		5, 0,
		// Второй сундук: кандидатов нет, пропуск без выборки количества
		99, 99, 99,
	)

	results, err := LootPopulator{Table: threeEntryTable()}.Populate(containers, rnd, g)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, len(rnd.values), rnd.used(), "все выборки использованы")
	assert.Equal(t, []int{100, 100, 100, 8, 27, 2, 27, 2, 27, 2, 100, 100, 100}, rnd.bounds)

	first := results[0]
	assert.Equal(t, containers[0], first.Pos)
	assert.Equal(t, 2, first.Candidates)
	assert.Equal(t, 3, first.Count)
	assert.Equal(t, []SlotWrite{
		{Slot: 5, Stack: world.ItemStack{Item: "apple", Count: 1}},
		{Slot: 26, Stack: world.ItemStack{Item: "torch", Count: 4}},
		{Slot: 5, Stack: world.ItemStack{Item: "torch", Count: 4}},
	}, first.Writes)

	c, ok := g.Container(containers[0])
	require.True(t, ok)
	assert.Equal(t, 1, c.Commits)
	assert.Equal(t, world.ItemStack{Item: "torch", Count: 4}, c.Committed[5], "совпавший слот перезаписан")
	assert.Equal(t, world.ItemStack{Item: "torch", Count: 4}, c.Committed[26])
	filled := 0
	for _, s := range c.Committed {
		if !s.Empty() {
			filled++
		}
	}
	assert.Equal(t, 2, filled)

	second := results[1]
	assert.True(t, second.Skipped)
	assert.Zero(t, second.Count)
	assert.Empty(t, second.Writes)
	c, ok = g.Container(containers[1])
	require.True(t, ok)
	assert.Equal(t, 0, c.Commits, "пропущенный сундук не фиксируется")
}

func TestLootPopulatorMissingContainer(t *testing.T) {
	g := newTestGrid()
	_, err := LootPopulator{Table: threeEntryTable()}.Populate([]vec.Vec3{{X: 1, Y: 1, Z: 1}}, newSequence(t), g)
	assert.Error(t, err)
}

func TestLootTableValidate(t *testing.T) {
	assert.NoError(t, threeEntryTable().Validate())
	assert.Error(t, LootTable{}.Validate())
	assert.Error(t, LootTable{Entries: []LootEntry{{Item: "", Quantity: 1, Chance: 1}}}.Validate())
	assert.Error(t, LootTable{Entries: []LootEntry{{Item: "x", Quantity: 0, Chance: 1}}}.Validate())
	assert.Error(t, LootTable{Entries: []LootEntry{{Item: "x", Quantity: 1, Chance: 101}}}.Validate())
	assert.Error(t, LootTable{Entries: []LootEntry{{Item: "x", Quantity: 1, Chance: 1}}, CountTable: []int{0}}.Validate())
}
