package generation

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// AreaRequest пакетная генерация прямоугольника ячеек по нескольким слоям
type AreaRequest struct {
	World   string
	Seed    int64
	Cells   []CellCoord
	Layers  []int // Порядок задаёт порядок генерации внутри ячейки
	Workers int
}

// AreaReport собирает результаты всех вызовов в порядке (ячейка, слой)
type AreaReport struct {
	Outcomes  []*Outcome
	Generated int
	Skipped   map[SkipReason]int
	Failed    int
}

// CellsInRect перечисляет ячейки прямоугольника [min, max] включительно, сначала по X
func CellsInRect(minX, minZ, maxX, maxZ int) []CellCoord {
	if maxX < minX || maxZ < minZ {
		return nil
	}
	cells := make([]CellCoord, 0, (maxX-minX+1)*(maxZ-minZ+1))
	for z := minZ; z <= maxZ; z++ {
		for x := minX; x <= maxX; x++ {
			cells = append(cells, CellCoord{X: x, Z: z})
		}
	}
	return cells
}

// GenerateArea запускает вызовы параллельно с ограничением числа воркеров.
// Каждый вызов получает собственный источник случайности из CellSeed, поэтому
// результат не зависит от порядка выполнения. Ошибка одной ячейки не прерывает
// остальные; все ошибки объединяются через errors.Join.
func (o *Orchestrator) GenerateArea(ctx context.Context, req AreaRequest) (*AreaReport, error) {
	workers := req.Workers
	if workers <= 0 {
		workers = 1
	}

	outcomes := make([]*Outcome, len(req.Cells)*len(req.Layers))
	errs := make([]error, len(outcomes))

	// Слои одной ячейки идут последовательно в порядке req.Layers: соседние слои
	// делят уровень опорного слоя, и порядок записей должен быть один и тот же.
	var g errgroup.Group
	g.SetLimit(workers)
	for ci, cell := range req.Cells {
		ci, cell := ci, cell
		g.Go(func() error {
			for li, layer := range req.Layers {
				i := ci*len(req.Layers) + li
				if err := ctx.Err(); err != nil {
					errs[i] = err
					continue
				}
				inv := Invocation{
					World: req.World,
					Cell:  cell,
					Layer: layer,
					Rand:  NewSeededSource(CellSeed(req.Seed, cell, layer)),
				}
				out, err := o.Generate(ctx, inv)
				outcomes[i] = out
				if err != nil {
					errs[i] = fmt.Errorf("%v слой %d: %w", cell, layer, err)
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	report := &AreaReport{
		Outcomes: make([]*Outcome, 0, len(outcomes)),
		Skipped:  make(map[SkipReason]int),
	}
	for i, out := range outcomes {
		if errs[i] != nil {
			report.Failed++
		}
		if out == nil {
			continue
		}
		report.Outcomes = append(report.Outcomes, out)
		switch {
		case out.Generated:
			report.Generated++
		case out.Skip != SkipNone:
			report.Skipped[out.Skip]++
		}
	}

	return report, errors.Join(errs...)
}
