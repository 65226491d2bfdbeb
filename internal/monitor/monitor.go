// Package monitor periodically re-evaluates alerts for every user with a
// saved alert location, so subscribers hear about threshold crossings
// without polling the API themselves.
package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kavachhq/kavach-backend/internal/alerts"
	"github.com/kavachhq/kavach-backend/internal/config"
	"github.com/kavachhq/kavach-backend/internal/models"
	"github.com/kavachhq/kavach-backend/internal/observability"
	"github.com/kavachhq/kavach-backend/internal/risk"
)

// WeatherSource yields the rainfall outlook used to score a location.
type WeatherSource interface {
	MaxRainfall(ctx context.Context, lat, lon float64) (float64, error)
}

// TerrainSource yields the slope used to score a location.
type TerrainSource interface {
	SlopeAndElevation(ctx context.Context, lat, lon float64) (slopeDeg, elevation float64, err error)
}

const fallbackSlopeDeg = 15.0

type Manager struct {
	cfg       config.MonitorConfig
	store     *alerts.SettingsStore
	evaluator *alerts.Evaluator
	weather   WeatherSource
	terrain   TerrainSource
	metrics   *observability.Metrics
	pool      *workerPool
	wg        sync.WaitGroup
}

func NewManager(cfg config.MonitorConfig, store *alerts.SettingsStore, evaluator *alerts.Evaluator, weather WeatherSource, terrain TerrainSource, metrics *observability.Metrics) *Manager {
	return &Manager{
		cfg:       cfg,
		store:     store,
		evaluator: evaluator,
		weather:   weather,
		terrain:   terrain,
		metrics:   metrics,
	}
}

func (m *Manager) Start(ctx context.Context) {
	m.pool = newWorkerPool(m.cfg.WorkerCount, m.cfg.BufferSize, m.check)
	m.pool.Start(ctx)

	m.wg.Add(1)
	go m.run(ctx)
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()
	slog.Info("starting saved-location monitor", "interval", m.cfg.Interval)

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	m.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("monitor shutting down")
			return
		case <-ticker.C:
			m.sweep(ctx)
		}
	}
}

// sweep submits one check per user with a saved alert location.
func (m *Manager) sweep(ctx context.Context) {
	count := 0
	for userID, settings := range m.store.All() {
		if settings.AlertLat == nil || settings.AlertLng == nil {
			continue
		}
		location := settings.AlertLocation
		if location == "" {
			location = "Saved Location"
		}
		select {
		case <-ctx.Done():
			return
		default:
		}
		m.pool.Submit(checkJob{
			userID:   userID,
			lat:      *settings.AlertLat,
			lng:      *settings.AlertLng,
			location: location,
		})
		count++
	}

	m.metrics.MonitorRuns.Inc()
	slog.Debug("monitor sweep complete", "submitted", count)
}

// check scores one saved location and runs a normal evaluation with the
// derived metrics. Upstream failures degrade to conservative defaults
// rather than skipping the check.
func (m *Manager) check(ctx context.Context, job checkJob) {
	rainfall := m.cfg.DefaultRainfall
	if m.weather != nil {
		if r, err := m.weather.MaxRainfall(ctx, job.lat, job.lng); err == nil {
			rainfall = r
		} else {
			slog.Warn("monitor weather fetch failed", "user", job.userID, "error", err)
		}
	}

	slope := fallbackSlopeDeg
	if m.terrain != nil {
		if s, _, err := m.terrain.SlopeAndElevation(ctx, job.lat, job.lng); err == nil {
			slope = s
		} else {
			slog.Warn("monitor terrain fetch failed", "user", job.userID, "error", err)
		}
	}

	metrics := models.Metrics{
		LandslideRisk: risk.LandslideScore(slope, rainfall),
		FloodRisk:     risk.FloodScore(rainfall),
		Rainfall:      rainfall,
		Location:      job.location,
	}

	result := m.evaluator.Evaluate(ctx, job.userID, metrics)
	if len(result.Alerts) > 0 {
		slog.Info("monitor triggered alerts", "user", job.userID, "count", len(result.Alerts))
	}
}

func (m *Manager) Stop() {
	m.wg.Wait()
	m.pool.Stop()
	slog.Info("monitor stopped")
}
