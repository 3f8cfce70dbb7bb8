// Package monitor samples host CPU/memory pressure and makes the
// admission decision that gates how many concurrent browser fetches the
// orchestrator is allowed to have outstanding.
package monitor

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/crawlsmith/rendercrawl/internal/model"
)

const sampleWindow = 100 * time.Millisecond

// Monitor is a stateless query over live system metrics, except for a
// cached last sample kept for logging.
type Monitor struct {
	cfg    model.CrawlerConfig
	logger *slog.Logger

	last atomic.Pointer[model.ResourceStats]
}

// New creates a Monitor bound to cfg's admission thresholds.
func New(cfg model.CrawlerConfig, logger *slog.Logger) *Monitor {
	return &Monitor{
		cfg:    cfg,
		logger: logger.With("component", "monitor"),
	}
}

// Sample takes a fresh CPU/memory reading. The CPU read blocks for
// sampleWindow (~100ms) to compute a percentage over that interval; this
// is an accepted brief blocking window, not a long-running operation.
func (m *Monitor) Sample(ctx context.Context) (model.ResourceStats, error) {
	percents, err := cpu.PercentWithContext(ctx, sampleWindow, false)
	if err != nil {
		return model.ResourceStats{}, err
	}
	var cpuPct float64
	if len(percents) > 0 {
		cpuPct = percents[0]
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return model.ResourceStats{}, err
	}

	stats := model.ResourceStats{
		CPUPercent:     cpuPct,
		MemPercent:     vm.UsedPercent,
		MemAvailableMB: float64(vm.Available) / (1024 * 1024),
	}
	m.last.Store(&stats)
	return stats, nil
}

// LastSample returns the most recent sample taken, or the zero value if
// none has been taken yet.
func (m *Monitor) LastSample() model.ResourceStats {
	if s := m.last.Load(); s != nil {
		return *s
	}
	return model.ResourceStats{}
}

// Admit samples current resource pressure and reports whether another
// fetch may be launched. It never blocks beyond the sample window itself
// — the orchestrator relies on that to keep completion-handling live.
func (m *Monitor) Admit(ctx context.Context, currentTabs int) bool {
	stats, err := m.Sample(ctx)
	if err != nil {
		m.logger.Warn("resource sample failed, denying admission", "error", err)
		return false
	}

	cpuOK := stats.CPUPercent < m.cfg.CPUThreshold
	memOK := stats.MemPercent < m.cfg.MemThreshold
	availOK := stats.MemAvailableMB > m.cfg.MinMemAvailMB
	ok := cpuOK && memOK && availOK

	if !ok {
		m.logger.Warn("admission denied",
			"active_tabs", currentTabs,
			"cpu_pct", stats.CPUPercent, "cpu_ok", cpuOK,
			"mem_pct", stats.MemPercent, "mem_ok", memOK,
			"mem_avail_mb", stats.MemAvailableMB, "avail_ok", availOK,
		)
	}
	return ok
}
