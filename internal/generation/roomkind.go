package generation

import (
	"fmt"
	"sort"
)

// RoomKind запись таблицы типов комнат: фильтр, резчик, спаунер и каталог добычи.
// Новые типы добавляются данными, алгоритм оркестратора не меняется.
type RoomKind struct {
	Name    string
	Gate    Gate
	Carver  Carver
	Feature *FeatureSpec // nil: комната без спаунера
	Loot    LootTable
}

// Validate проверяет, что запись полностью заполнена
func (k RoomKind) Validate() error {
	if k.Name == "" {
		return fmt.Errorf("тип комнаты без имени")
	}
	if k.Carver == nil {
		return fmt.Errorf("%s: не задан резчик", k.Name)
	}
	p := k.Gate.Params
	if p.MinLayer > p.MaxLayer {
		return fmt.Errorf("%s: диапазон слоёв %d..%d пуст", k.Name, p.MinLayer, p.MaxLayer)
	}
	if p.LayerDivisor == 0 {
		return fmt.Errorf("%s: layer_divisor не может быть нулём", k.Name)
	}
	if k.Feature != nil {
		if err := k.Feature.Validate(0); err != nil {
			return fmt.Errorf("%s: %w", k.Name, err)
		}
	}
	if err := k.Loot.Validate(); err != nil {
		return fmt.Errorf("%s: %w", k.Name, err)
	}
	return nil
}

// ValidateFor дополнительно проверяет, что спаунер помещается под потолком комнаты раскладки
func (k RoomKind) ValidateFor(l Layout) error {
	if err := k.Validate(); err != nil {
		return err
	}
	if k.Feature != nil {
		if err := k.Feature.Validate(l.RoomHeight); err != nil {
			return fmt.Errorf("%s: %w", k.Name, err)
		}
	}
	return nil
}

// BlazeGateParams шанс 2‰ с поправкой -0.167‰ на каждые 6 уровней от 30, слои 1..4,
// не ближе 5 ячеек к точке спауна
func BlazeGateParams() GateParams {
	return GateParams{
		MinLayer:         1,
		MaxLayer:         4,
		BaseChance:       2,
		ChanceSlope:      -0.167,
		ReferenceLayer:   30,
		LayerDivisor:     6,
		MinSpawnDistance: 5,
	}
}

// CarverFactory строит резчик из материалов
type CarverFactory func(m Materials) Carver

var carverFactories = map[string]CarverFactory{
	"nether_platform": func(m Materials) Carver { return PlatformCarver{Materials: m} },
}

// NewCarver возвращает резчик по имени из каталога
func NewCarver(name string, m Materials) (Carver, error) {
	factory, ok := carverFactories[name]
	if !ok {
		return nil, fmt.Errorf("неизвестный резчик %q (доступны: %v)", name, CarverNames())
	}
	return factory(m), nil
}

// CarverNames возвращает отсортированные имена резчиков
func CarverNames() []string {
	names := make([]string, 0, len(carverFactories))
	for name := range carverFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
