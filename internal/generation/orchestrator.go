package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/annel0/dungeon-rooms/internal/eventbus"
	"github.com/annel0/dungeon-rooms/internal/logging"
	"github.com/annel0/dungeon-rooms/internal/metrics"
	"github.com/annel0/dungeon-rooms/internal/observability"
	"github.com/annel0/dungeon-rooms/internal/registry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SkipReason объясняет, почему вызов не создал комнату
type SkipReason string

const (
	SkipNone             SkipReason = ""
	SkipLayer            SkipReason = "layer"
	SkipGate             SkipReason = "gate"
	SkipAlreadyGenerated SkipReason = "already_generated"
)

// Invocation один вызов генерации для ячейки и слоя
type Invocation struct {
	World string
	Cell  CellCoord
	Layer int
	Rand  RandomSource
}

// Outcome результат вызова. Сериализуется в полезную нагрузку события RoomGenerated.
type Outcome struct {
	World      string            `json:"world"`
	Cell       CellCoord         `json:"cell"`
	Layer      int               `json:"layer"`
	Kind       string            `json:"kind,omitempty"`
	Bounds     RoomBounds        `json:"bounds"`
	Generated  bool              `json:"generated"`
	Skip       SkipReason        `json:"skip,omitempty"`
	Feature    *PlacedFeature    `json:"feature,omitempty"`
	Cancelled  bool              `json:"cancelled,omitempty"`
	Containers []ContainerResult `json:"containers,omitempty"`
}

// LootItems возвращает число записей в слоты по всем контейнерам
func (o *Outcome) LootItems() int {
	n := 0
	for _, c := range o.Containers {
		n += len(c.Writes)
	}
	return n
}

// SpawnerCancelled полезная нагрузка события об отменённом хуком спаунере
type SpawnerCancelled struct {
	RequestID  string    `json:"request_id"`
	World      string    `json:"world"`
	Cell       CellCoord `json:"cell"`
	Layer      int       `json:"layer"`
	EntityKind string    `json:"entity_kind"`
	Cause      string    `json:"cause"`
}

// Orchestrator проводит вызов через фильтр, реестр, резку, спаунер и добычу.
// Не хранит изменяемого состояния между вызовами; все поля задаются до первого вызова.
type Orchestrator struct {
	Kinds       []RoomKind
	Registry    registry.Registry
	Grid        FeatureGrid
	Containers  ContainerStore
	Layout      Layout
	Permissions Permissions
	Hook        Hook

	// Необязательные
	Metrics *metrics.Generation
	Bus     eventbus.EventBus
	Source  string
}

// NewOrchestrator создаёт оркестратор с раскладкой по умолчанию
func NewOrchestrator(kinds []RoomKind, reg registry.Registry, grid FeatureGrid, containers ContainerStore) (*Orchestrator, error) {
	if len(kinds) == 0 {
		return nil, errors.New("не задано ни одного типа комнат")
	}
	layout := DefaultLayout()
	for _, k := range kinds {
		if err := k.ValidateFor(layout); err != nil {
			return nil, err
		}
	}
	if reg == nil || grid == nil || containers == nil {
		return nil, errors.New("реестр, сетка и хранилище контейнеров обязательны")
	}

	return &Orchestrator{
		Kinds:       kinds,
		Registry:    reg,
		Grid:        grid,
		Containers:  containers,
		Layout:      layout,
		Permissions: PermitAll{},
		Source:      "roomgen",
	}, nil
}

// SetLayout меняет раскладку, если она согласована с каждым типом комнат
func (o *Orchestrator) SetLayout(l Layout) error {
	if err := l.Validate(); err != nil {
		return err
	}
	for _, k := range o.Kinds {
		if err := k.ValidateFor(l); err != nil {
			return err
		}
	}
	o.Layout = l
	return nil
}

// Generate вычисляет границы по раскладке и выполняет вызов
func (o *Orchestrator) Generate(ctx context.Context, inv Invocation) (*Outcome, error) {
	return o.GenerateAt(ctx, inv, o.Layout.BoundsFor(inv.Cell, inv.Layer))
}

// GenerateAt выполняет вызов для заранее вычисленных границ.
// Порядок: выбор типа по слою и фильтру, регистрация, резка, спаунер, добыча.
// Ошибка сетки прерывает вызов, уже сделанные записи и регистрация остаются.
func (o *Orchestrator) GenerateAt(ctx context.Context, inv Invocation, bounds RoomBounds) (*Outcome, error) {
	logger := logging.GetGenerationLogger()
	ctx, span := observability.Tracer("generation").Start(ctx, "room.generate",
		trace.WithAttributes(
			attribute.String("world", inv.World),
			attribute.Int("cell.x", inv.Cell.X),
			attribute.Int("cell.z", inv.Cell.Z),
			attribute.Int("layer", inv.Layer),
		))
	defer span.End()

	start := time.Now()
	out := &Outcome{World: inv.World, Cell: inv.Cell, Layer: inv.Layer, Bounds: bounds}
	if inv.Rand == nil {
		return out, o.fail(span, errors.New("не задан источник случайности"))
	}

	kind, eligible := o.selectKind(inv)
	switch {
	case !eligible:
		out.Skip = SkipLayer
		o.Metrics.RoomSkipped("", string(SkipLayer))
		return out, nil
	case kind == nil:
		out.Skip = SkipGate
		return out, nil
	}
	out.Kind = kind.Name
	span.SetAttributes(attribute.String("kind", kind.Name))

	fresh, err := o.Registry.TryRegisterGenerated(ctx, inv.World, inv.Cell.Vec2(), inv.Layer)
	if err != nil {
		return out, o.fail(span, fmt.Errorf("регистрация %v слой %d: %w", inv.Cell, inv.Layer, err))
	}
	if !fresh {
		out.Skip = SkipAlreadyGenerated
		o.Metrics.RoomSkipped(kind.Name, string(SkipAlreadyGenerated))
		logger.Debug("⏭️ %s в %v слой %d уже сгенерирована", kind.Name, inv.Cell, inv.Layer)
		return out, nil
	}

	if err := kind.Carver.Carve(bounds, o.Grid); err != nil {
		return out, o.fail(span, err)
	}

	if kind.Feature != nil {
		if err := o.placeFeature(ctx, kind, inv, bounds, out); err != nil {
			return out, o.fail(span, err)
		}
	}

	populator := LootPopulator{Table: kind.Loot}
	results, err := populator.Populate(kind.Carver.Containers(bounds), inv.Rand, o.Containers)
	out.Containers = results
	if err != nil {
		return out, o.fail(span, err)
	}

	skipped := 0
	for _, r := range results {
		if r.Skipped {
			skipped++
		}
	}

	out.Generated = true
	took := time.Since(start)
	o.Metrics.Loot(kind.Name, out.LootItems(), skipped)
	o.Metrics.RoomGenerated(kind.Name, took)
	span.SetAttributes(attribute.Int("loot.items", out.LootItems()))

	logger.Info("🏛️ %s: %v слой %d, %v, предметов %d (%v)", kind.Name, inv.Cell, inv.Layer, bounds, out.LootItems(), took)
	o.publish(ctx, eventbus.RoomGeneratedEvent, out)
	return out, nil
}

// selectKind перебирает типы в порядке регистрации. Первый прошедший фильтр выигрывает.
// eligible == false, если ни один тип не принимает слой.
func (o *Orchestrator) selectKind(inv Invocation) (kind *RoomKind, eligible bool) {
	for i := range o.Kinds {
		k := &o.Kinds[i]
		if !k.Gate.Params.AcceptsLayer(inv.Layer) {
			continue
		}
		eligible = true
		passed := k.Gate.ShouldGenerate(inv.Cell, inv.Layer, inv.Rand)
		o.Metrics.GateChecked(k.Name, passed)
		if passed {
			return k, true
		}
		o.Metrics.RoomSkipped(k.Name, string(SkipGate))
	}
	return nil, eligible
}

func (o *Orchestrator) placeFeature(ctx context.Context, kind *RoomKind, inv Invocation, bounds RoomBounds, out *Outcome) error {
	var dispatched *GenerationRequest
	hook := HookFunc(func(req *GenerationRequest) {
		if o.Hook != nil {
			o.Hook.OnSpawnerGeneration(req)
		}
		dispatched = req
	})

	placer := FeaturePlacer{Spec: *kind.Feature, Permissions: o.Permissions, Hook: hook}
	placed, err := placer.Place(bounds, inv.Rand, o.Grid)
	if err != nil {
		return err
	}
	out.Feature = placed

	switch {
	case placed != nil:
		o.Metrics.Spawner(kind.Name, "placed")
	case dispatched == nil:
		o.Metrics.Spawner(kind.Name, "denied")
	default:
		out.Cancelled = true
		o.Metrics.Spawner(kind.Name, "cancelled")
		logging.GetGenerationLogger().Debug("🚫 Спаунер %s в %v отменён хуком", dispatched.EntityKind, dispatched.Target)
		o.publish(ctx, eventbus.SpawnerCancelledEvent, SpawnerCancelled{
			RequestID:  dispatched.ID,
			World:      inv.World,
			Cell:       inv.Cell,
			Layer:      inv.Layer,
			EntityKind: dispatched.EntityKind,
			Cause:      dispatched.Cause,
		})
	}
	return nil
}

// publish отправляет событие в шину. Ошибка шины только логируется.
func (o *Orchestrator) publish(ctx context.Context, eventType string, payload interface{}) {
	if o.Bus == nil {
		return
	}
	ev, err := eventbus.NewEnvelope(eventType, o.Source, payload)
	if err != nil {
		logging.GetGenerationLogger().Warn("⚠️ Не удалось собрать событие %s: %v", eventType, err)
		return
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		ev.CorrelationID = sc.TraceID().String()
	}
	if err := o.Bus.Publish(ctx, ev); err != nil {
		logging.GetGenerationLogger().Warn("⚠️ Не удалось опубликовать %s: %v", eventType, err)
	}
}

func (o *Orchestrator) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
