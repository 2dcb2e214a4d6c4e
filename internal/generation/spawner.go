package generation

import (
	"fmt"
	"strings"

	"github.com/annel0/dungeon-rooms/internal/vec"
	"github.com/annel0/dungeon-rooms/internal/world/block"
	"github.com/google/uuid"
)

// GenerationRequest запрос на установку спаунера, который получают внешние хуки.
// Хук может отменить запрос или заменить тип существа; генератор читает результат
// один раз после рассылки.
type GenerationRequest struct {
	ID         string
	Target     vec.Vec3
	EntityKind string // Тип существа по умолчанию для этой комнаты
	Cause      string // Тег генератора, например BLAZE_SPAWNER_ROOM
	Rand       RandomSource

	cancelled  bool
	resultKind string
}

func newGenerationRequest(target vec.Vec3, entity, cause string, rnd RandomSource) *GenerationRequest {
	return &GenerationRequest{
		ID:         uuid.NewString(),
		Target:     target,
		EntityKind: entity,
		Cause:      cause,
		Rand:       rnd,
		resultKind: entity,
	}
}

// IsCancelled сообщает, отменён ли запрос
func (r *GenerationRequest) IsCancelled() bool { return r.cancelled }

// SetCancelled отменяет запрос или снимает отмену
func (r *GenerationRequest) SetCancelled(cancelled bool) { r.cancelled = cancelled }

// Cancel отменяет установку спаунера
func (r *GenerationRequest) Cancel() { r.cancelled = true }

// SpawnedType возвращает итоговый тип существа
func (r *GenerationRequest) SpawnedType() string { return r.resultKind }

// SetSpawnedType заменяет тип существа
func (r *GenerationRequest) SetSpawnedType(kind string) { r.resultKind = kind }

// Hook получает запрос синхронно и не должен вызывать генератор повторно
type Hook interface {
	OnSpawnerGeneration(req *GenerationRequest)
}

// HookFunc позволяет использовать функцию как Hook
type HookFunc func(req *GenerationRequest)

func (f HookFunc) OnSpawnerGeneration(req *GenerationRequest) { f(req) }

// HookChain вызывает хуки по порядку регистрации. Каждый хук видит запрос,
// в том числе уже отменённый, и может снять отмену.
type HookChain []Hook

func (c HookChain) OnSpawnerGeneration(req *GenerationRequest) {
	for _, h := range c {
		if h != nil {
			h.OnSpawnerGeneration(req)
		}
	}
}

// Permissions внешняя проверка, разрешён ли сейчас спаунер данного существа
type Permissions interface {
	IsFeaturePermitted(kind string) bool
}

// PermitAll разрешает любые спаунеры
type PermitAll struct{}

func (PermitAll) IsFeaturePermitted(string) bool { return true }

// AllowList разрешения из конфигурации. Запрет сильнее разрешения,
// "*" в списке разрешённых открывает все типы.
type AllowList struct {
	allowed  map[string]struct{}
	denied   map[string]struct{}
	allowAll bool
}

// NewAllowList строит список без учёта регистра
func NewAllowList(allowed, denied []string) *AllowList {
	al := &AllowList{
		allowed: make(map[string]struct{}, len(allowed)),
		denied:  make(map[string]struct{}, len(denied)),
	}
	for _, k := range allowed {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "*" {
			al.allowAll = true
			continue
		}
		al.allowed[k] = struct{}{}
	}
	for _, k := range denied {
		al.denied[strings.ToLower(strings.TrimSpace(k))] = struct{}{}
	}
	return al
}

func (al *AllowList) IsFeaturePermitted(kind string) bool {
	kind = strings.ToLower(kind)
	if _, denied := al.denied[kind]; denied {
		return false
	}
	if al.allowAll {
		return true
	}
	_, ok := al.allowed[kind]
	return ok
}

// FeatureSpec описывает спаунер типа комнаты
type FeatureSpec struct {
	EntityKind string
	Cause      string
	// Anchor локальная позиция (x, dy от пола, z) левого угла зоны 2×2 над центром платформы
	Anchor vec.Vec3
	Spread int
}

// Validate проверяет, что вся зона разброса лежит внутри комнаты: по X и Z в [0, RoomSize),
// по высоте над полом и ниже потолка. roomHeight == 0 отключает проверку потолка.
func (f FeatureSpec) Validate(roomHeight int) error {
	if f.EntityKind == "" {
		return fmt.Errorf("спаунер без типа существа")
	}
	if f.Spread < 1 {
		return fmt.Errorf("разброс спаунера %d должен быть положительным", f.Spread)
	}
	a := f.Anchor
	if a.X < 0 || a.Z < 0 || a.X+f.Spread-1 >= RoomSize || a.Z+f.Spread-1 >= RoomSize {
		return fmt.Errorf("зона спаунера %v+%d выходит за комнату %dx%d", a, f.Spread, RoomSize, RoomSize)
	}
	if a.Y < 1 {
		return fmt.Errorf("спаунер на высоте %d не выше пола", a.Y)
	}
	if roomHeight > 0 && a.Y > roomHeight-1 {
		return fmt.Errorf("спаунер на высоте %d не ниже потолка (высота комнаты %d)", a.Y, roomHeight)
	}
	return nil
}

// BlazeSpawner спаунер ифрита над центром платформы
func BlazeSpawner() FeatureSpec {
	return FeatureSpec{
		EntityKind: "blaze",
		Cause:      "BLAZE_SPAWNER_ROOM",
		Anchor:     vec.Vec3{X: 3, Y: 2, Z: 3},
		Spread:     2,
	}
}

// PlacedFeature результат успешной установки спаунера
type PlacedFeature struct {
	Pos        vec.Vec3 `json:"pos"`
	EntityKind string   `json:"entity_kind"`
	RequestID  string   `json:"request_id"`
}

// FeaturePlacer ставит спаунер через отменяемый запрос к хуку
type FeaturePlacer struct {
	Spec        FeatureSpec
	Permissions Permissions
	Hook        Hook
}

// Place выбирает клетку над центром платформы (сначала X, затем Z), отправляет
// запрос хуку и при отсутствии отмены превращает клетку в спаунер с итоговым
// типом существа. Если спаунер не разрешён, rnd не используется и сетка не меняется.
// Зона разброса, не помещающаяся в комнату, отклоняется до первой выборки.
func (p FeaturePlacer) Place(b RoomBounds, rnd RandomSource, grid FeatureGrid) (*PlacedFeature, error) {
	if p.Permissions != nil && !p.Permissions.IsFeaturePermitted(p.Spec.EntityKind) {
		return nil, nil
	}
	if err := p.Spec.Validate(b.CeilingY - b.FloorY); err != nil {
		return nil, fmt.Errorf("спаунер в %v: %w", b, err)
	}

	spread := p.Spec.Spread
	dx := rnd.Intn(spread)
	dz := rnd.Intn(spread)
	target := b.At(p.Spec.Anchor.X+dx, p.Spec.Anchor.Y, p.Spec.Anchor.Z+dz)

	req := newGenerationRequest(target, p.Spec.EntityKind, p.Spec.Cause, rnd)
	if p.Hook != nil {
		p.Hook.OnSpawnerGeneration(req)
	}
	if req.IsCancelled() {
		return nil, nil
	}

	entity := req.SpawnedType()
	if err := grid.SetVoxel(target, block.SpawnerBlockID, block.FacingNone); err != nil {
		return nil, fmt.Errorf("ошибка установки спаунера %v: %w", target, err)
	}
	if err := grid.ConfigureSpawner(target, entity); err != nil {
		return nil, fmt.Errorf("ошибка настройки спаунера %v: %w", target, err)
	}

	return &PlacedFeature{Pos: target, EntityKind: entity, RequestID: req.ID}, nil
}
