package service

//go:generate mockgen -source=tracker.go -destination=mocks/mock_tracker.go -package=mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb/maptile"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/shenikar/traffic_alert_bot/internal/geo"
	"github.com/shenikar/traffic_alert_bot/internal/metrics"
	"github.com/shenikar/traffic_alert_bot/internal/models"
	"github.com/shenikar/traffic_alert_bot/internal/webhook"
)

// IncidentSource - источник тайлов с событиями. ok == false означает, что данных нет.
type IncidentSource interface {
	LayerVersion(ctx context.Context) (string, bool)
	Tile(ctx context.Context, tile maptile.Tile, version string) ([]json.RawMessage, bool)
}

// IncidentRepository хранит снимок активных ДТП
type IncidentRepository interface {
	LoadIncidents(ctx context.Context) (models.IncidentSet, error)
	SaveIncidents(ctx context.Context, set models.IncidentSet) error
}

// Notifier асинхронно рассылает сообщение подписчикам
type Notifier interface {
	Dispatch(ctx context.Context, message string) <-chan DeliveryReport
}

// IncidentReader отдаёт текущий набор ДТП и итог последнего цикла
type IncidentReader interface {
	Current() models.IncidentSet
	LastCycle() (models.CycleReport, bool)
}

// TrackerOptions - параметры цикла сверки
type TrackerOptions struct {
	Box         geo.BBox
	Zoom        int
	Interval    time.Duration
	Concurrency int
}

// Tracker периодически опрашивает источник, сравнивает набор ДТП с предыдущим
// и рассылает изменения. Циклы выполняются строго последовательно.
type Tracker struct {
	opts      TrackerOptions
	source    IncidentSource
	repo      IncidentRepository
	notifier  Notifier
	publisher webhook.WebhookPublisher
	logger    *logrus.Logger
	metrics   *metrics.Metrics

	current atomic.Pointer[models.IncidentSet]
	last    atomic.Pointer[models.CycleReport]
}

// NewTracker загружает сохранённый снимок ДТП. publisher может быть nil.
func NewTracker(ctx context.Context, opts TrackerOptions, source IncidentSource, repo IncidentRepository, notifier Notifier, publisher webhook.WebhookPublisher, logger *logrus.Logger, m *metrics.Metrics) (*Tracker, error) {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}

	set, err := repo.LoadIncidents(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: could not load incidents: %w", err)
	}
	if set == nil {
		set = models.IncidentSet{}
	}

	t := &Tracker{
		opts:      opts,
		source:    source,
		repo:      repo,
		notifier:  notifier,
		publisher: publisher,
		logger:    logger,
		metrics:   m,
	}
	t.current.Store(&set)
	m.ActiveIncidents.Set(float64(len(set)))
	return t, nil
}

// Current возвращает копию набора ДТП на момент последнего завершённого цикла
func (t *Tracker) Current() models.IncidentSet {
	return (*t.current.Load()).Clone()
}

// LastCycle возвращает итог последнего завершённого цикла
func (t *Tracker) LastCycle() (models.CycleReport, bool) {
	report := t.last.Load()
	if report == nil {
		return models.CycleReport{}, false
	}
	return *report, true
}

// Run выполняет циклы до отмены ctx. Отмена ожидания между циклами завершает работу.
func (t *Tracker) Run(ctx context.Context) error {
	t.logger.WithFields(logrus.Fields{
		"service":  "tracker",
		"interval": t.opts.Interval.String(),
		"zoom":     t.opts.Zoom,
	}).Info("Starting reconciliation loop")

	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			t.logger.Info("Stopping reconciliation loop")
			return nil
		case <-timer.C:
		}

		if _, err := t.RunCycle(ctx); err != nil {
			if ctx.Err() != nil {
				t.logger.Info("Stopping reconciliation loop")
				return nil
			}
			return err
		}
		timer.Reset(t.opts.Interval)
	}
}

// RunCycle выполняет один цикл: тайлы, сравнение, рассылка, сохранение, подмена набора.
func (t *Tracker) RunCycle(ctx context.Context) (models.CycleReport, error) {
	report := models.CycleReport{ID: uuid.New(), StartedAt: time.Now()}
	log := t.logger.WithFields(logrus.Fields{
		"service":  "tracker",
		"method":   "RunCycle",
		"cycle_id": report.ID,
	})

	tiles, err := geo.CoverTiles(t.opts.Box, t.opts.Zoom)
	if err != nil {
		return report, fmt.Errorf("service: could not cover bounding box: %w", err)
	}

	version, ok := t.source.LayerVersion(ctx)
	if !ok {
		log.Warn("Layer version is unavailable, fetching tiles without it")
	}
	report.Version = version

	next, total, failed := t.fetch(ctx, log, tiles, version)
	report.TilesTotal, report.TilesFailed = total, failed

	// Остановка посреди цикла: незавершённый набор не сравниваем и не сохраняем
	if err := ctx.Err(); err != nil {
		return report, err
	}

	previous := *t.current.Load()
	changes := models.Diff(previous, next)
	report.Incidents = len(next)
	report.Appeared = len(changes.Appeared)
	report.Resolved = len(changes.Resolved)

	if !changes.Empty() {
		t.notifier.Dispatch(ctx, FormatChanges(changes))
		t.publish(ctx, log, report.ID, changes)
	}

	if err := t.repo.SaveIncidents(ctx, next); err != nil {
		// Живой набор всё равно подменяется, следующий цикл сохранит его снова
		t.metrics.PersistenceErrors.WithLabelValues("incidents").Inc()
		log.WithError(err).Error("Failed to persist incident snapshot")
	}
	t.current.Store(&next)

	report.FinishedAt = time.Now()
	t.last.Store(&report)

	t.metrics.Cycles.Inc()
	t.metrics.CycleDuration.Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())
	t.metrics.ActiveIncidents.Set(float64(len(next)))
	t.metrics.IncidentChanges.WithLabelValues(string(webhook.EventAppeared)).Add(float64(report.Appeared))
	t.metrics.IncidentChanges.WithLabelValues(string(webhook.EventResolved)).Add(float64(report.Resolved))

	log.WithFields(logrus.Fields{
		"tiles":        report.TilesTotal,
		"tiles_failed": report.TilesFailed,
		"incidents":    report.Incidents,
		"appeared":     report.Appeared,
		"resolved":     report.Resolved,
	}).Info("Reconciliation cycle completed")
	return report, nil
}

// fetch загружает все тайлы диапазона. Результаты складываются по индексу тайла
// и сливаются в порядке обхода, поэтому при совпадении ключей побеждает последний тайл.
func (t *Tracker) fetch(ctx context.Context, log *logrus.Entry, tiles geo.TileRange, version string) (models.IncidentSet, int, int) {
	list := tiles.Tiles()
	results := make([]models.IncidentSet, len(list))
	failures := make([]bool, len(list))

	var g errgroup.Group
	g.SetLimit(t.opts.Concurrency)
	for i, tile := range list {
		g.Go(func() error {
			features, ok := t.source.Tile(ctx, tile, version)
			if !ok {
				failures[i] = true
				return nil
			}
			set, skipped := geo.ExtractIncidents(features, t.opts.Box)
			if skipped > 0 {
				log.WithFields(logrus.Fields{
					"tile_x":  tile.X,
					"tile_y":  tile.Y,
					"skipped": skipped,
				}).Debug("Skipped malformed features")
			}
			results[i] = set
			return nil
		})
	}
	_ = g.Wait()

	merged := models.IncidentSet{}
	failed := 0
	for i := range list {
		if failures[i] {
			failed++
			t.metrics.TileFetches.WithLabelValues("failed").Inc()
			continue
		}
		t.metrics.TileFetches.WithLabelValues("ok").Inc()
		merged.Merge(results[i])
	}
	return merged, len(list), failed
}

// publish отправляет события во внешнюю очередь, не задерживая цикл
func (t *Tracker) publish(ctx context.Context, log *logrus.Entry, cycleID uuid.UUID, changes models.Changes) {
	if t.publisher == nil {
		return
	}

	now := time.Now()
	events := make([]webhook.IncidentEvent, 0, len(changes.Appeared)+len(changes.Resolved))
	for _, inc := range changes.Appeared {
		events = append(events, webhook.NewIncidentEvent(webhook.EventAppeared, inc, cycleID, now))
	}
	for _, inc := range changes.Resolved {
		events = append(events, webhook.NewIncidentEvent(webhook.EventResolved, inc, cycleID, now))
	}

	go func() {
		for _, event := range events {
			if err := t.publisher.Publish(ctx, event); err != nil {
				log.WithError(err).WithField("event_id", event.ID).Warn("Failed to publish incident event")
			}
		}
	}()
}
