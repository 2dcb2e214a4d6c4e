package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Generation собирает метрики генерации комнат.
//
// Метрики:
// * roomgen_gate_checks_total{kind,result}: решения вероятностного фильтра
// * roomgen_rooms_generated_total{kind}: вырезанные комнаты
// * roomgen_rooms_skipped_total{kind,reason}: пропуски (слой, фильтр, уже сгенерирована)
// * roomgen_spawners_total{kind,result}: placed / cancelled / denied
// * roomgen_loot_items_total{kind}: записанные в слоты предметы
// * roomgen_containers_skipped_total{kind}: контейнеры с пустым списком добычи
// * roomgen_generation_seconds{kind}: histogram длительности генерации
//
// Нулевой указатель допустим: все методы ничего не делают.
type Generation struct {
	gateChecks        *prometheus.CounterVec
	roomsGenerated    *prometheus.CounterVec
	roomsSkipped      *prometheus.CounterVec
	spawners          *prometheus.CounterVec
	lootItems         *prometheus.CounterVec
	containersSkipped *prometheus.CounterVec
	duration          *prometheus.HistogramVec
}

// NewGeneration создаёт метрики и регистрирует их в reg.
// Если reg == nil, используется дефолтный регистр Prometheus.
func NewGeneration(reg prometheus.Registerer) *Generation {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	g := &Generation{
		gateChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roomgen",
			Name:      "gate_checks_total",
			Help:      "Решения вероятностного фильтра по типам комнат.",
		}, []string{"kind", "result"}),
		roomsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roomgen",
			Name:      "rooms_generated_total",
			Help:      "Количество сгенерированных комнат.",
		}, []string{"kind"}),
		roomsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roomgen",
			Name:      "rooms_skipped_total",
			Help:      "Пропущенные вызовы генерации по причинам.",
		}, []string{"kind", "reason"}),
		spawners: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roomgen",
			Name:      "spawners_total",
			Help:      "Исходы установки спаунеров.",
		}, []string{"kind", "result"}),
		lootItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roomgen",
			Name:      "loot_items_total",
			Help:      "Предметы, записанные в контейнеры.",
		}, []string{"kind"}),
		containersSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roomgen",
			Name:      "containers_skipped_total",
			Help:      "Контейнеры, пропущенные из-за пустого списка добычи.",
		}, []string{"kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "roomgen",
			Name:      "generation_seconds",
			Help:      "Длительность генерации одной комнаты.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"kind"}),
	}

	reg.MustRegister(g.gateChecks, g.roomsGenerated, g.roomsSkipped, g.spawners,
		g.lootItems, g.containersSkipped, g.duration)
	return g
}

// GateChecked учитывает одно решение фильтра
func (g *Generation) GateChecked(kind string, passed bool) {
	if g == nil {
		return
	}
	result := "rejected"
	if passed {
		result = "passed"
	}
	g.gateChecks.WithLabelValues(kind, result).Inc()
}

// RoomGenerated учитывает вырезанную комнату и время её генерации
func (g *Generation) RoomGenerated(kind string, took time.Duration) {
	if g == nil {
		return
	}
	g.roomsGenerated.WithLabelValues(kind).Inc()
	g.duration.WithLabelValues(kind).Observe(took.Seconds())
}

// RoomSkipped учитывает пропуск с причиной
func (g *Generation) RoomSkipped(kind, reason string) {
	if g == nil {
		return
	}
	g.roomsSkipped.WithLabelValues(kind, reason).Inc()
}

// Spawner учитывает исход установки спаунера
func (g *Generation) Spawner(kind, result string) {
	if g == nil {
		return
	}
	g.spawners.WithLabelValues(kind, result).Inc()
}

// Loot учитывает записанные предметы и пропущенные контейнеры
func (g *Generation) Loot(kind string, items, skippedContainers int) {
	if g == nil {
		return
	}
	if items > 0 {
		g.lootItems.WithLabelValues(kind).Add(float64(items))
	}
	if skippedContainers > 0 {
		g.containersSkipped.WithLabelValues(kind).Add(float64(skippedContainers))
	}
}
