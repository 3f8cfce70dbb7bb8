package monitor

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crawlsmith/rendercrawl/internal/model"
)

func permissiveConfig() model.CrawlerConfig {
	return model.CrawlerConfig{
		CPUThreshold:  100,
		MemThreshold:  100,
		MinMemAvailMB: 0,
	}
}

func TestSampleReturnsPlausibleStats(t *testing.T) {
	m := New(permissiveConfig(), slog.Default())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	stats, err := m.Sample(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stats.CPUPercent, 0.0)
	assert.GreaterOrEqual(t, stats.MemPercent, 0.0)
	assert.GreaterOrEqual(t, stats.MemAvailableMB, 0.0)

	assert.Equal(t, stats, m.LastSample())
}

func TestAdmitUnderPermissiveThresholds(t *testing.T) {
	m := New(permissiveConfig(), slog.Default())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.True(t, m.Admit(ctx, 0))
}

func TestAdmitDeniedWhenThresholdsUnreachable(t *testing.T) {
	cfg := model.CrawlerConfig{
		CPUThreshold:  0,
		MemThreshold:  0,
		MinMemAvailMB: 1 << 30, // no real host has a petabyte free
	}
	m := New(cfg, slog.Default())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.False(t, m.Admit(ctx, 0))
}

func TestLastSampleZeroBeforeAnySample(t *testing.T) {
	m := New(permissiveConfig(), slog.Default())
	assert.Equal(t, model.ResourceStats{}, m.LastSample())
}
