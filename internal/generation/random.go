package generation

import "math/rand"

// RandomSource источник случайных чисел, который вызывающий передаёт на каждый вызов.
// *rand.Rand удовлетворяет интерфейсу.
type RandomSource interface {
	// Intn возвращает равномерное целое в [0, n)
	Intn(n int) int
}

// NewSeededSource создаёт детерминированный источник для сида
func NewSeededSource(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// CellSeed выводит сид конкретной ячейки и слоя из сида мира
func CellSeed(worldSeed int64, cell CellCoord, layer int) int64 {
	return worldSeed + int64(cell.X)*341873128712 + int64(cell.Z)*132897987541 + int64(layer)*6
}
