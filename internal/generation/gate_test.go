package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGateChance(t *testing.T) {
	gate := Gate{Params: BlazeGateParams()}

	assert.InDelta(t, 2.7793, gate.Chance(2), 0.0001)
	assert.InDelta(t, 2.8350, gate.Chance(0), 0.0001)
	assert.InDelta(t, 2.0, gate.Chance(30), 1e-9, "на опорном слое шанс равен базовому")
}

func TestGateShouldGenerate(t *testing.T) {
	gate := Gate{Params: BlazeGateParams()}
	cell := CellCoord{X: 10, Z: 10}

	t.Run("Draw below threshold", func(t *testing.T) {
		rnd := newSequence(t, 2)
		assert.True(t, gate.ShouldGenerate(cell, 2, rnd))
		assert.Equal(t, []int{1000}, rnd.bounds)
	})

	t.Run("Draw above threshold", func(t *testing.T) {
		rnd := newSequence(t, 3)
		assert.False(t, gate.ShouldGenerate(cell, 2, rnd))
		assert.Equal(t, 1, rnd.used())
	})

	t.Run("Spawn neighbourhood consumes nothing", func(t *testing.T) {
		rnd := newSequence(t)
		assert.False(t, gate.ShouldGenerate(CellCoord{X: 3, Z: 3}, 2, rnd))
		assert.False(t, gate.ShouldGenerate(CellCoord{}, 1, rnd))
		assert.Equal(t, 0, rnd.used())
	})

	t.Run("Exact fence distance is allowed", func(t *testing.T) {
		rnd := newSequence(t, 0)
		assert.True(t, gate.ShouldGenerate(CellCoord{X: 5, Z: 0}, 2, rnd))
		assert.Equal(t, 1, rnd.used())
	})
}

func TestGateAcceptsLayer(t *testing.T) {
	p := BlazeGateParams()
	for layer, want := range map[int]bool{0: false, 1: true, 4: true, 5: false} {
		assert.Equal(t, want, p.AcceptsLayer(layer), "слой %d", layer)
	}
}

func TestGateFrequencyByLayer(t *testing.T) {
	gate := Gate{Params: BlazeGateParams()}
	cell := CellCoord{X: 10, Z: 10}
	const trials = 500000

	// Один и тот же поток выборок для обоих слоёв: порог слоя 1 не ниже порога слоя 4
	upper := NewSeededSource(20240611)
	lower := NewSeededSource(20240611)
	hitsTop, hitsDeep := 0, 0
	for i := 0; i < trials; i++ {
		top := gate.ShouldGenerate(cell, 1, upper)
		deep := gate.ShouldGenerate(cell, 4, lower)
		if deep {
			assert.True(t, top, "выборка %d прошла на слое 4, но не на слое 1", i)
		}
		if top {
			hitsTop++
		}
		if deep {
			hitsDeep++
		}
	}

	assert.GreaterOrEqual(t, hitsTop, hitsDeep)
	// Оба порога между 2 и 3 промилле: проходят выборки 0, 1 и 2
	assert.InDelta(t, 3.0/1000, float64(hitsTop)/trials, 0.0005)
	assert.InDelta(t, 3.0/1000, float64(hitsDeep)/trials, 0.0005)
}
