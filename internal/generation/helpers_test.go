package generation

import (
	"strings"
	"testing"

	"github.com/annel0/dungeon-rooms/internal/vec"
	"github.com/annel0/dungeon-rooms/internal/world"
	"github.com/annel0/dungeon-rooms/internal/world/block"
)

// sequenceSource отдаёт заранее заданные значения и запоминает границы вызовов
type sequenceSource struct {
	t      *testing.T
	values []int
	bounds []int
}

func newSequence(t *testing.T, values ...int) *sequenceSource {
	return &sequenceSource{t: t, values: values}
}

func (s *sequenceSource) Intn(n int) int {
	s.t.Helper()
	if len(s.bounds) >= len(s.values) {
		s.t.Fatalf("лишний вызов Intn(%d) после %d значений", n, len(s.values))
	}
	v := s.values[len(s.bounds)]
	s.bounds = append(s.bounds, n)
	if v < 0 || v >= n {
		s.t.Fatalf("значение %d вне [0,%d) на вызове %d", v, n, len(s.bounds))
	}
	return v
}

// used возвращает число сделанных выборок
func (s *sequenceSource) used() int { return len(s.bounds) }

func newTestGrid() *world.MemoryGrid {
	return world.NewMemoryGrid(vec.Vec3{X: -512, Y: 0, Z: -512}, vec.Vec3{X: 512, Y: 255, Z: 512})
}

// renderLevel рисует уровень y комнаты строками по z, символы по x:
// W=стена/пол, F=ограждение, c=булыжник, C=сундук, S=спаунер,
// пробел=воздух, цифра=ступень с ориентацией, '.'=не записано
func renderLevel(g *world.MemoryGrid, b RoomBounds, y int) []string {
	written := g.WrittenVoxels()
	rows := make([]string, 0, RoomSize)
	for z := 0; z < RoomSize; z++ {
		var sb strings.Builder
		for x := 0; x < RoomSize; x++ {
			pos := vec.Vec3{X: b.Origin.X + x, Y: y, Z: b.Origin.Y + z}
			v, ok := written[pos]
			if !ok {
				sb.WriteByte('.')
				continue
			}
			switch v.Kind {
			case block.NetherBrickBlockID:
				sb.WriteByte('W')
			case block.NetherBrickFenceBlockID:
				sb.WriteByte('F')
			case block.CobblestoneBlockID:
				sb.WriteByte('c')
			case block.ChestBlockID:
				sb.WriteByte('C')
			case block.SpawnerBlockID:
				sb.WriteByte('S')
			case block.AirBlockID:
				sb.WriteByte(' ')
			case block.NetherBrickStairsBlockID:
				sb.WriteByte(byte('0' + v.Facing))
			default:
				sb.WriteByte('?')
			}
		}
		rows = append(rows, sb.String())
	}
	return rows
}

// testLoot короткий каталог для сценариев оркестратора
func testLoot() LootTable {
	return LootTable{
		Entries: []LootEntry{
			{Item: "torch", Quantity: 4, Chance: 80},
			{Item: "apple", Quantity: 1, Chance: 40},
		},
		CountTable: DefaultCountTable,
	}
}

func blazeKind(loot LootTable) RoomKind {
	feature := BlazeSpawner()
	return RoomKind{
		Name:    "blaze_spawner_room",
		Gate:    Gate{Params: BlazeGateParams()},
		Carver:  NewPlatformCarver(),
		Feature: &feature,
		Loot:    loot,
	}
}

// alwaysKind проходит фильтр при любой выборке
func alwaysKind(name string, minLayer, maxLayer int) RoomKind {
	k := blazeKind(testLoot())
	k.Name = name
	k.Gate.Params.MinLayer = minLayer
	k.Gate.Params.MaxLayer = maxLayer
	k.Gate.Params.BaseChance = 1000
	k.Gate.Params.ChanceSlope = 0
	k.Gate.Params.MinSpawnDistance = 0
	return k
}
