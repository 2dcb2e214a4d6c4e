package generation

// GateParams константы вероятностной модели для одного типа комнат.
// Шанс в промилле: BaseChance + ChanceSlope*(layer-ReferenceLayer)/LayerDivisor.
type GateParams struct {
	MinLayer         int
	MaxLayer         int
	BaseChance       float64
	ChanceSlope      float64
	ReferenceLayer   int
	LayerDivisor     float64
	MinSpawnDistance float64 // В ячейках от (0,0)
}

// AcceptsLayer проверяет, что слой входит в диапазон типа комнаты
func (p GateParams) AcceptsLayer(layer int) bool {
	return layer >= p.MinLayer && layer <= p.MaxLayer
}

// Gate решает, появится ли комната в ячейке
type Gate struct {
	Params GateParams
}

// Chance возвращает порог в промилле для слоя
func (g Gate) Chance(layer int) float64 {
	p := g.Params
	return p.BaseChance + p.ChanceSlope*float64(layer-p.ReferenceLayer)/p.LayerDivisor
}

// ShouldGenerate ограждает окрестность спауна без обращения к rnd, иначе
// делает ровно одну выборку rnd.Intn(1000).
func (g Gate) ShouldGenerate(cell CellCoord, layer int, rnd RandomSource) bool {
	if cell.DistanceFromOrigin() < g.Params.MinSpawnDistance {
		return false
	}
	return float64(rnd.Intn(1000)) < g.Chance(layer)
}
