package world

import (
	"fmt"

	"github.com/annel0/dungeon-rooms/internal/vec"
)

// ItemStack предмет и его количество в слоте контейнера
type ItemStack struct {
	Item  string `json:"item" yaml:"item"`
	Count int    `json:"count" yaml:"count"`
}

// Empty возвращает true для пустого слота
func (s ItemStack) Empty() bool {
	return s.Item == "" || s.Count <= 0
}

// Container хранит рабочее содержимое и последнее зафиксированное состояние.
// SetSlot меняет рабочее содержимое, Commit публикует его.
type Container struct {
	Slots     []ItemStack `json:"slots"`
	Committed []ItemStack `json:"committed"`
	Commits   int         `json:"commits"`
}

func newContainer(capacity int) *Container {
	return &Container{
		Slots:     make([]ItemStack, capacity),
		Committed: make([]ItemStack, capacity),
	}
}

func (c *Container) clone() *Container {
	out := &Container{
		Slots:     make([]ItemStack, len(c.Slots)),
		Committed: make([]ItemStack, len(c.Committed)),
		Commits:   c.Commits,
	}
	copy(out.Slots, c.Slots)
	copy(out.Committed, c.Committed)
	return out
}

// Capacity возвращает число слотов контейнера в позиции
func (g *MemoryGrid) Capacity(pos vec.Vec3) (int, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	c, ok := g.containers[pos]
	if !ok {
		return 0, fmt.Errorf("в позиции %v нет контейнера", pos)
	}
	return len(c.Slots), nil
}

// SetSlot записывает стек в слот, заменяя прежнее содержимое
func (g *MemoryGrid) SetSlot(pos vec.Vec3, slot int, stack ItemStack) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, ok := g.containers[pos]
	if !ok {
		return fmt.Errorf("в позиции %v нет контейнера", pos)
	}
	if slot < 0 || slot >= len(c.Slots) {
		return fmt.Errorf("слот %d вне диапазона [0,%d) контейнера %v", slot, len(c.Slots), pos)
	}

	c.Slots[slot] = stack
	return nil
}

// Commit фиксирует рабочее содержимое контейнера
func (g *MemoryGrid) Commit(pos vec.Vec3) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, ok := g.containers[pos]
	if !ok {
		return fmt.Errorf("в позиции %v нет контейнера", pos)
	}

	copy(c.Committed, c.Slots)
	c.Commits++
	return nil
}

// Container возвращает копию контейнера в позиции
func (g *MemoryGrid) Container(pos vec.Vec3) (*Container, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	c, ok := g.containers[pos]
	if !ok {
		return nil, false
	}
	return c.clone(), true
}
