package metrics

import (
	"os"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"
)

// ProcessSampler периодически снимает загрузку CPU и память процесса генератора.
type ProcessSampler struct {
	StartTime time.Time

	cpuPercent prometheus.Gauge
	rssBytes   prometheus.Gauge
	goroutines prometheus.Gauge
	uptime     prometheus.Gauge

	proc *process.Process
	quit chan struct{}
	done chan struct{}
}

// NewProcessSampler создаёт сэмплер и регистрирует gauges в reg (nil = дефолтный регистр)
func NewProcessSampler(reg prometheus.Registerer) (*ProcessSampler, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}

	ps := &ProcessSampler{
		StartTime: time.Now(),
		proc:      proc,
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
		cpuPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "roomgen",
			Name:      "process_cpu_percent",
			Help:      "Загрузка CPU процессом в процентах.",
		}),
		rssBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "roomgen",
			Name:      "process_rss_bytes",
			Help:      "Резидентная память процесса.",
		}),
		goroutines: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "roomgen",
			Name:      "goroutines",
			Help:      "Количество горутин.",
		}),
		uptime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "roomgen",
			Name:      "uptime_seconds",
			Help:      "Время работы процесса.",
		}),
	}

	reg.MustRegister(ps.cpuPercent, ps.rssBytes, ps.goroutines, ps.uptime)
	return ps, nil
}

// CPUPercent возвращает загрузку CPU процессом; при ошибке берётся системная
func (ps *ProcessSampler) CPUPercent() (float64, error) {
	percent, err := ps.proc.CPUPercent()
	if err != nil {
		percents, err := cpu.Percent(100*time.Millisecond, false)
		if err != nil || len(percents) == 0 {
			return 0, err
		}
		return percents[0], nil
	}
	return percent, nil
}

// Sample обновляет все gauges один раз
func (ps *ProcessSampler) Sample() {
	if percent, err := ps.CPUPercent(); err == nil {
		ps.cpuPercent.Set(percent)
	}
	if mem, err := ps.proc.MemoryInfo(); err == nil && mem != nil {
		ps.rssBytes.Set(float64(mem.RSS))
	}
	ps.goroutines.Set(float64(runtime.NumGoroutine()))
	ps.uptime.Set(time.Since(ps.StartTime).Seconds())
}

// Start запускает периодический сэмплинг. Метод неблокирующий.
func (ps *ProcessSampler) Start(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		defer close(ps.done)

		ps.Sample()
		for {
			select {
			case <-ticker.C:
				ps.Sample()
			case <-ps.quit:
				return
			}
		}
	}()
}

// Stop останавливает сэмплинг, запущенный через Start
func (ps *ProcessSampler) Stop() {
	close(ps.quit)
	<-ps.done
}
