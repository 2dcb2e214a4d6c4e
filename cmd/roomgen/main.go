package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/annel0/dungeon-rooms/internal/catalog"
	"github.com/annel0/dungeon-rooms/internal/config"
	"github.com/annel0/dungeon-rooms/internal/eventbus"
	"github.com/annel0/dungeon-rooms/internal/generation"
	"github.com/annel0/dungeon-rooms/internal/logging"
	"github.com/annel0/dungeon-rooms/internal/metrics"
	"github.com/annel0/dungeon-rooms/internal/observability"
	"github.com/annel0/dungeon-rooms/internal/registry"
	"github.com/annel0/dungeon-rooms/internal/terrain"
	"github.com/annel0/dungeon-rooms/internal/vec"
	"github.com/annel0/dungeon-rooms/internal/world"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	var (
		configPath = flag.String("config", "", "Путь к YAML конфигурации (или ROOMGEN_CONFIG)")
		area       = flag.String("area", "-8,-8,8,8", "Прямоугольник ячеек minX,minZ,maxX,maxZ")
		layers     = flag.String("layers", "1,2,3,4", "Слои через запятую")
		exportPath = flag.String("export", "", "Сохранить сетку в файл (.zst)")
		hold       = flag.Bool("hold", false, "После генерации держать /metrics до сигнала завершения")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	if cfg.Log.Dir != "" {
		logging.SetLogDir(cfg.Log.Dir)
	}
	if err := logging.InitDefaultLogger("roomgen"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	defer logging.GetLoggerManager().CloseAll()

	if level, err := logging.ParseLevel(cfg.Log.Level); err == nil {
		logging.Default().SetLevels(level, level)
	} else {
		logging.Warn("⚠️ Неизвестный уровень логирования %q, оставляем INFO", cfg.Log.Level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *area, *layers, *exportPath, *hold); err != nil {
		logging.Error("❌ %v", err)
		os.Exit(1)
	}
	logging.Info("👋 Генерация завершена")
}

func run(ctx context.Context, cfg *config.Config, area, layerList, exportPath string, hold bool) error {
	logging.Info("🏰 Генератор комнат: мир=%s seed=%d реестр=%s", cfg.World.Name, cfg.World.Seed, cfg.Registry.Backend)

	cells, err := parseArea(area)
	if err != nil {
		return err
	}
	layers, err := parseInts(layerList)
	if err != nil {
		return fmt.Errorf("некорректный список слоёв: %w", err)
	}

	// === ТЕЛЕМЕТРИЯ ===
	if cfg.Telemetry.Enabled {
		shutdown, err := observability.InitTelemetry(ctx, cfg.Telemetry.ServiceName)
		if err != nil {
			logging.Warn("⚠️ OpenTelemetry не инициализирован: %v", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logging.Warn("⚠️ Ошибка остановки OpenTelemetry: %v", err)
				}
			}()
		}
	}

	// === КАТАЛОГ И РЕЕСТР ===
	kinds, err := catalog.LoadKinds(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("каталог комнат: %w", err)
	}
	for _, k := range kinds {
		logging.Debug("Тип %s: слои %d..%d, резчик %T", k.Name, k.Gate.Params.MinLayer, k.Gate.Params.MaxLayer, k.Carver)
	}

	reg, err := registry.Open(ctx, cfg.Registry)
	if err != nil {
		return fmt.Errorf("реестр комнат: %w", err)
	}
	defer reg.Close()

	// === ШИНА СОБЫТИЙ ===
	bus, err := openBus(cfg.EventBus)
	if err != nil {
		return err
	}
	defer bus.Close()
	if _, err := eventbus.StartLoggingListener(bus); err != nil {
		logging.Warn("⚠️ LoggingListener не запущен: %v", err)
	}

	// === МЕТРИКИ ===
	var genMetrics *metrics.Generation
	if cfg.Metrics.Enabled {
		genMetrics = metrics.NewGeneration(nil)

		sampler, err := metrics.NewProcessSampler(nil)
		if err != nil {
			logging.Warn("⚠️ Метрики процесса недоступны: %v", err)
		} else {
			sampler.Start(5 * time.Second)
			defer sampler.Stop()
		}

		exporter := eventbus.NewMetricsExporter(bus, nil)
		exporter.Start(time.Second)
		defer exporter.Stop()

		srv := startMetricsServer(cfg.Metrics.GetMetricsPort())
		defer srv.Shutdown(context.Background())
	}

	// === СЕТКА ===
	layout := layoutFromConfig(cfg.Layout)
	min, max := gridBounds(cells, layout, cfg.World)
	grid := world.NewMemoryGrid(min, max)
	if cfg.World.Terrain {
		n, err := fillTerrain(grid, terrain.NewFiller(cfg.World.Seed), cells, layers, layout)
		if err != nil {
			return err
		}
		logging.Info("⛰️ Демо-ландшафт: записано %d блоков", n)
	}

	orch, err := generation.NewOrchestrator(kinds, reg, grid, grid)
	if err != nil {
		return err
	}
	if err := orch.SetLayout(layout); err != nil {
		return fmt.Errorf("раскладка: %w", err)
	}
	orch.Permissions = generation.NewAllowList(cfg.Spawners.Allowed, cfg.Spawners.Denied)
	orch.Metrics = genMetrics
	orch.Bus = bus

	// === ГЕНЕРАЦИЯ ===
	start := time.Now()
	report, genErr := orch.GenerateArea(ctx, generation.AreaRequest{
		World:   cfg.World.Name,
		Seed:    cfg.World.Seed,
		Cells:   cells,
		Layers:  layers,
		Workers: cfg.World.Workers,
	})
	logSummary(report, len(cells)*len(layers), time.Since(start))
	if genErr != nil {
		logging.Error("❌ Ошибки генерации: %v", genErr)
	}

	if exportPath != "" {
		if err := exportGrid(grid, exportPath); err != nil {
			return err
		}
	}

	if hold && cfg.Metrics.Enabled {
		logging.Info("⏸️ Ожидание сигнала завершения (/metrics остаётся доступен)...")
		<-ctx.Done()
	}

	if genErr != nil {
		return errors.New("генерация завершилась с ошибками")
	}
	return nil
}

func openBus(cfg config.EventBusConfig) (eventbus.EventBus, error) {
	if cfg.URL == "" {
		return eventbus.NewMemoryBus(cfg.Buffer), nil
	}
	bus, err := eventbus.NewJetStreamBus(cfg.URL, cfg.Stream, time.Duration(cfg.Retention)*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("шина событий: %w", err)
	}
	logging.Info("📨 JetStream подключён: %s stream=%s", cfg.URL, cfg.Stream)
	return bus, nil
}

func startMetricsServer(port int) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}

	go func() {
		logging.Info("📈 Prometheus /metrics доступен по адресу %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Ошибка Prometheus HTTP сервера: %v", err)
		}
	}()
	return srv
}

func layoutFromConfig(c config.LayoutConfig) generation.Layout {
	return generation.Layout{
		CellSize:    c.CellSize,
		RoomOffset:  vec.Vec2{X: c.RoomOffsetX, Y: c.RoomOffsetZ},
		LayerBaseY:  c.LayerBaseY,
		LayerHeight: c.LayerHeight,
		RoomHeight:  c.RoomHeight,
	}
}

// gridBounds покрывает все комнаты прямоугольника по горизонтали и мир по вертикали
func gridBounds(cells []generation.CellCoord, layout generation.Layout, w config.WorldConfig) (vec.Vec3, vec.Vec3) {
	first := layout.BoundsFor(cells[0], 1)
	last := layout.BoundsFor(cells[len(cells)-1], 1)
	min := vec.Vec3{X: first.Origin.X, Y: w.MinY, Z: first.Origin.Y}
	max := vec.Vec3{X: last.Origin.X + generation.RoomSize - 1, Y: w.MaxY, Z: last.Origin.Y + generation.RoomSize - 1}
	return min, max
}

// fillTerrain заполняет ландшафтом колонны комнат от опорного слоя нижнего слоя
// до потолка верхнего включительно
func fillTerrain(grid *world.MemoryGrid, filler *terrain.Filler, cells []generation.CellCoord, layers []int, layout generation.Layout) (int, error) {
	if len(layers) == 0 {
		return 0, nil
	}
	lowest, highest := layers[0], layers[0]
	for _, l := range layers {
		if l < lowest {
			lowest = l
		}
		if l > highest {
			highest = l
		}
	}

	gridMin, gridMax := grid.Bounds()
	total := 0
	for _, c := range cells {
		bottom := layout.BoundsFor(c, lowest)
		top := layout.BoundsFor(c, highest)
		lo := vec.Vec3{X: bottom.Origin.X, Y: bottom.Min().Y, Z: bottom.Origin.Y}
		hi := vec.Vec3{X: top.Origin.X + generation.RoomSize - 1, Y: top.CeilingY, Z: top.Origin.Y + generation.RoomSize - 1}
		if lo.Y < gridMin.Y {
			lo.Y = gridMin.Y
		}
		if hi.Y > gridMax.Y {
			hi.Y = gridMax.Y
		}

		n, err := filler.Fill(grid, lo, hi)
		total += n
		if err != nil {
			return total, fmt.Errorf("ландшафт %v: %w", c, err)
		}
	}
	return total, nil
}

func exportGrid(grid *world.MemoryGrid, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("не удалось создать %s: %w", path, err)
	}
	defer f.Close()

	if err := grid.Export(f); err != nil {
		return fmt.Errorf("ошибка экспорта сетки: %w", err)
	}
	logging.Info("💾 Сетка сохранена в %s (%d вокселей)", path, len(grid.WrittenVoxels()))
	return nil
}

func logSummary(report *generation.AreaReport, calls int, took time.Duration) {
	if report == nil {
		return
	}
	logging.Info("📊 Вызовов: %d, комнат: %d, ошибок: %d, время: %v", calls, report.Generated, report.Failed, took)
	for reason, n := range report.Skipped {
		logging.Info("   ⏭️ пропуск %s: %d", reason, n)
	}

	spawners, items := 0, 0
	for _, out := range report.Outcomes {
		if !out.Generated {
			continue
		}
		if out.Feature != nil {
			spawners++
		}
		items += out.LootItems()
		logging.Debug("   %s %v слой %d → %v", out.Kind, out.Cell, out.Layer, out.Bounds)
	}
	logging.Info("   👹 спаунеров: %d, 🎁 предметов: %d", spawners, items)
}

func parseArea(s string) ([]generation.CellCoord, error) {
	v, err := parseInts(s)
	if err != nil || len(v) != 4 {
		return nil, fmt.Errorf("некорректная область %q: ожидается minX,minZ,maxX,maxZ", s)
	}
	cells := generation.CellsInRect(v[0], v[1], v[2], v[3])
	if len(cells) == 0 {
		return nil, fmt.Errorf("пустая область %q", s)
	}
	return cells, nil
}

func parseInts(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
