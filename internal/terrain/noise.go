package terrain

import (
	"fmt"
	"math"

	"github.com/annel0/dungeon-rooms/internal/vec"
	"github.com/annel0/dungeon-rooms/internal/world/block"
	"github.com/aquilax/go-perlin"
)

// Filler процедурный ландшафт для воксельной сетки: сплошной камень с гравийными
// жилами до высоты поверхности, выше воздух. Комнаты вырезаются поверх него.
type Filler struct {
	Seed        int64
	SurfaceY    int     // Средняя высота поверхности
	Amplitude   float64 // Размах холмов в блоках
	NoiseScale  float64 // Масштаб шума высоты
	GravelScale float64 // Масштаб 3D шума жил
	GravelLevel float64 // Порог шума для гравия (от 0 до 1)

	surface *perlin.Perlin
	gravel  *perlin.Perlin
}

// NewFiller создаёт генератор фона с настройками по умолчанию
func NewFiller(seed int64) *Filler {
	alpha := 2.0  // Сглаживание шума
	beta := 2.0   // Частота шума
	n := int32(3) // Количество октав

	return &Filler{
		Seed:        seed,
		SurfaceY:    96,
		Amplitude:   12,
		NoiseScale:  0.02,
		GravelScale: 0.1,
		GravelLevel: 0.78,
		surface:     perlin.NewPerlin(alpha, beta, n, seed),
		gravel:      perlin.NewPerlin(alpha, beta, n, seed+42),
	}
}

// normalize переводит шум из диапазона [-1,1] в [0,1]
func normalize(noise float64) float64 {
	return (noise + 1.0) / 2.0
}

// SurfaceAt возвращает высоту поверхности в колонке (x, z)
func (f *Filler) SurfaceAt(x, z int) int {
	h := f.surface.Noise2D(float64(x)*f.NoiseScale, float64(z)*f.NoiseScale)
	return f.SurfaceY + int(math.Round(h*f.Amplitude))
}

// Setter принимает записи блоков (world.MemoryGrid)
type Setter interface {
	SetVoxel(pos vec.Vec3, kind block.BlockID, facing block.Facing) error
}

// Fill записывает ландшафт в параллелепипед [min, max] включительно.
// Воздух не пишется. Возвращает число записанных блоков.
func (f *Filler) Fill(g Setter, min, max vec.Vec3) (int, error) {
	written := 0
	for x := min.X; x <= max.X; x++ {
		for z := min.Z; z <= max.Z; z++ {
			for y := min.Y; y <= max.Y; y++ {
				pos := vec.Vec3{X: x, Y: y, Z: z}
				kind := f.BlockAt(pos)
				if kind == block.AirBlockID {
					continue
				}
				if err := g.SetVoxel(pos, kind, block.FacingNone); err != nil {
					return written, fmt.Errorf("ландшафт %v: %w", pos, err)
				}
				written++
			}
		}
	}
	return written, nil
}

// BlockAt возвращает блок ландшафта в позиции
func (f *Filler) BlockAt(pos vec.Vec3) block.BlockID {
	if pos.Y <= 0 {
		return block.StoneBlockID
	}

	surface := f.SurfaceAt(pos.X, pos.Z)
	switch {
	case pos.Y > surface:
		return block.AirBlockID
	case pos.Y == surface:
		return block.GrassBlockID
	case pos.Y > surface-3:
		return block.DirtBlockID
	}

	g := normalize(f.gravel.Noise3D(
		float64(pos.X)*f.GravelScale,
		float64(pos.Y)*f.GravelScale,
		float64(pos.Z)*f.GravelScale,
	))
	if g > f.GravelLevel {
		return block.GravelBlockID
	}
	return block.StoneBlockID
}
