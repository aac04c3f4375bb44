package telemetry

import (
	"context"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("e2e.perf_stats")

type perfGauges struct {
	cpu         metric.Float64Gauge
	memory      metric.Int64Gauge
	liveObjects metric.Int64Gauge
	goroutines  metric.Int64Gauge
}

// gauges are created lazily so they bind to the provider installed by Setup
func newPerfGauges() perfGauges {
	g := perfGauges{}
	g.cpu, _ = meter.Float64Gauge("cpu_usage")
	g.memory, _ = meter.Int64Gauge("allocated_mb")
	g.liveObjects, _ = meter.Int64Gauge("live_objects")
	g.goroutines, _ = meter.Int64Gauge("goroutine_count")
	return g
}

// PerfSample is a single reading of process/host usage.
type PerfSample struct {
	CPUPercent  float64
	AllocatedMB int64
	LiveObjects int64
	Goroutines  int64
}

// SamplePerf reads the current usage, cpu usage is measured over `window`.
func SamplePerf(window time.Duration) (PerfSample, error) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	sample := PerfSample{
		AllocatedMB: int64(memStats.Alloc / 1_000_000),
		LiveObjects: int64(memStats.Mallocs) - int64(memStats.Frees),
		Goroutines:  int64(runtime.NumGoroutine()),
	}

	cpuUsage, err := cpu.Percent(window, false)
	if err != nil {
		return sample, err
	}
	if len(cpuUsage) > 0 {
		sample.CPUPercent = cpuUsage[0]
	}
	return sample, nil
}

// InstrumentPerfStats records usage gauges every 30 seconds until ctx is done.
func InstrumentPerfStats(ctx context.Context, log *Log) {
	gauges := newPerfGauges()
	go func() {
		ticker := time.NewTicker(time.Second * 30)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				sample, err := SamplePerf(time.Second * 5)
				if err != nil {
					log.Warn("failed to read cpu usage", "err", err)
				} else {
					gauges.cpu.Record(ctx, sample.CPUPercent)
				}
				gauges.memory.Record(ctx, sample.AllocatedMB)
				gauges.liveObjects.Record(ctx, sample.LiveObjects)
				gauges.goroutines.Record(ctx, sample.Goroutines)
			case <-ctx.Done():
				return
			}
		}
	}()
}
