package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/paulmach/orb/maptile"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/shenikar/traffic_alert_bot/internal/geo"
	"github.com/shenikar/traffic_alert_bot/internal/metrics"
	"github.com/shenikar/traffic_alert_bot/internal/models"
	"github.com/shenikar/traffic_alert_bot/internal/service"
	"github.com/shenikar/traffic_alert_bot/internal/service/mocks"
	"github.com/shenikar/traffic_alert_bot/internal/webhook"
	webhook_mocks "github.com/shenikar/traffic_alert_bot/internal/webhook/mocks"
)

// Для bbox (0,0)-(1,1) на зуме 1 диапазон - два тайла: (1,2) и (1,3)
var (
	testBox   = geo.NewBBox(0, 0, 1, 1)
	firstTile = maptile.New(1, 2, 1)
	lastTile  = maptile.New(1, 3, 1)
)

type trackerMocks struct {
	source    *mocks.MockIncidentSource
	repo      *mocks.MockIncidentRepository
	notifier  *mocks.MockNotifier
	publisher *webhook_mocks.MockWebhookPublisher
	metrics   *metrics.Metrics
}

func newTestTracker(t *testing.T, initial models.IncidentSet, withPublisher bool) (*service.Tracker, trackerMocks) {
	ctrl := gomock.NewController(t)
	m := trackerMocks{
		source:    mocks.NewMockIncidentSource(ctrl),
		repo:      mocks.NewMockIncidentRepository(ctrl),
		notifier:  mocks.NewMockNotifier(ctrl),
		publisher: webhook_mocks.NewMockWebhookPublisher(ctrl),
		metrics:   newTestMetrics(),
	}
	m.repo.EXPECT().LoadIncidents(gomock.Any()).Return(initial, nil).Times(1)

	var publisher webhook.WebhookPublisher
	if withPublisher {
		publisher = m.publisher
	}
	opts := service.TrackerOptions{Box: testBox, Zoom: 1, Interval: 10 * time.Millisecond, Concurrency: 2}
	tracker, err := service.NewTracker(context.Background(), opts, m.source, m.repo, m.notifier, publisher, newTestLogger(), m.metrics)
	require.NoError(t, err)
	return tracker, m
}

func accident(lat, lon float64, description string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(
		`{"type":"Feature","geometry":{"type":"Point","coordinates":[%v,%v]},"properties":{"eventType":1,"description":%q}}`,
		lat, lon, description))
}

// expectTiles настраивает ответы источника по тайлам; отсутствующий в tiles тайл - ошибка загрузки
func expectTiles(m trackerMocks, version string, tiles map[maptile.Tile][]json.RawMessage) {
	m.source.EXPECT().LayerVersion(gomock.Any()).Return(version, version != "").Times(1)
	m.source.EXPECT().
		Tile(gomock.Any(), gomock.Any(), version).
		DoAndReturn(func(_ context.Context, tile maptile.Tile, _ string) ([]json.RawMessage, bool) {
			features, ok := tiles[tile]
			return features, ok
		}).
		Times(2)
}

func noReport() <-chan service.DeliveryReport {
	ch := make(chan service.DeliveryReport)
	close(ch)
	return ch
}

func TestRunCycle_AppearedIncidentNotified(t *testing.T) {
	tracker, m := newTestTracker(t, models.IncidentSet{}, false)
	ctx := context.Background()
	expected := models.IncidentSet{{Lat: 0.5, Lon: 0.5}: "crash A"}

	expectTiles(m, "v1", map[maptile.Tile][]json.RawMessage{
		firstTile: {accident(0.5, 0.5, "crash A"), accident(5, 5, "outside")},
		lastTile:  {},
	})
	m.notifier.EXPECT().
		Dispatch(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, message string) <-chan service.DeliveryReport {
			assert.Equal(t, "НОВЫЕ СОБЫТИЯ\n\n🆕 Новое ДТП: [0.5, 0.5](https://yandex.ru/maps/?ll=0.5,0.5&z=17)", message)
			return noReport()
		}).
		Times(1)
	m.repo.EXPECT().SaveIncidents(ctx, expected).Return(nil).Times(1)

	report, err := tracker.RunCycle(ctx)

	require.NoError(t, err)
	assert.Equal(t, expected, tracker.Current())
	assert.Equal(t, 2, report.TilesTotal)
	assert.Equal(t, 0, report.TilesFailed)
	assert.Equal(t, 1, report.Appeared)
	assert.Equal(t, 0, report.Resolved)
	assert.Equal(t, "v1", report.Version)

	last, ok := tracker.LastCycle()
	require.True(t, ok)
	assert.Equal(t, report.ID, last.ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.metrics.ActiveIncidents))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.metrics.IncidentChanges.WithLabelValues("appeared")))
}

func TestRunCycle_UnchangedSetNotNotified(t *testing.T) {
	initial := models.IncidentSet{{Lat: 0.5, Lon: 0.5}: "crash A"}
	tracker, m := newTestTracker(t, initial, false)
	ctx := context.Background()

	expectTiles(m, "v1", map[maptile.Tile][]json.RawMessage{
		firstTile: {accident(0.5, 0.5, "crash A")},
		lastTile:  {},
	})
	// Dispatch не ожидается
	m.repo.EXPECT().SaveIncidents(ctx, initial).Return(nil).Times(1)

	report, err := tracker.RunCycle(ctx)

	require.NoError(t, err)
	assert.Equal(t, 0, report.Appeared+report.Resolved)
}

func TestRunCycle_ResolvedIncidentNotified(t *testing.T) {
	initial := models.IncidentSet{{Lat: 0.25, Lon: 0.75}: "crash B"}
	tracker, m := newTestTracker(t, initial, false)
	ctx := context.Background()

	expectTiles(m, "v1", map[maptile.Tile][]json.RawMessage{firstTile: {}, lastTile: {}})
	m.notifier.EXPECT().
		Dispatch(ctx, "НОВЫЕ СОБЫТИЯ\n\n✅ ДТП разрешено: [0.25, 0.75](https://yandex.ru/maps/?ll=0.75,0.25&z=17)").
		Return(noReport()).
		Times(1)
	m.repo.EXPECT().SaveIncidents(ctx, models.IncidentSet{}).Return(nil).Times(1)

	report, err := tracker.RunCycle(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, report.Resolved)
	assert.Empty(t, tracker.Current())
}

func TestRunCycle_FailedTileSkipped(t *testing.T) {
	tracker, m := newTestTracker(t, models.IncidentSet{}, false)
	ctx := context.Background()

	expectTiles(m, "v1", map[maptile.Tile][]json.RawMessage{
		lastTile: {accident(0.5, 0.5, "crash A")},
	})
	m.notifier.EXPECT().Dispatch(ctx, gomock.Any()).Return(noReport()).Times(1)
	m.repo.EXPECT().SaveIncidents(ctx, gomock.Any()).Return(nil).Times(1)

	report, err := tracker.RunCycle(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, report.TilesFailed)
	assert.Len(t, tracker.Current(), 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.metrics.TileFetches.WithLabelValues("failed")))
}

func TestRunCycle_MissingVersionStillFetches(t *testing.T) {
	tracker, m := newTestTracker(t, models.IncidentSet{}, false)
	ctx := context.Background()

	expectTiles(m, "", map[maptile.Tile][]json.RawMessage{firstTile: {}, lastTile: {}})
	m.repo.EXPECT().SaveIncidents(ctx, models.IncidentSet{}).Return(nil).Times(1)

	report, err := tracker.RunCycle(ctx)

	require.NoError(t, err)
	assert.Equal(t, "", report.Version)
	assert.Equal(t, 0, report.TilesFailed)
}

func TestRunCycle_LastTileWinsOnDuplicate(t *testing.T) {
	tracker, m := newTestTracker(t, models.IncidentSet{}, false)
	ctx := context.Background()

	expectTiles(m, "v1", map[maptile.Tile][]json.RawMessage{
		firstTile: {accident(0.5, 0.5, "from first tile")},
		lastTile:  {accident(0.5, 0.5, "from last tile")},
	})
	m.notifier.EXPECT().Dispatch(ctx, gomock.Any()).Return(noReport()).Times(1)
	m.repo.EXPECT().SaveIncidents(ctx, gomock.Any()).Return(nil).Times(1)

	_, err := tracker.RunCycle(ctx)

	require.NoError(t, err)
	assert.Equal(t, models.IncidentSet{{Lat: 0.5, Lon: 0.5}: "from last tile"}, tracker.Current())
}

func TestRunCycle_PersistFailureStillSwaps(t *testing.T) {
	tracker, m := newTestTracker(t, models.IncidentSet{}, false)
	ctx := context.Background()

	expectTiles(m, "v1", map[maptile.Tile][]json.RawMessage{
		firstTile: {accident(0.5, 0.5, "crash A")},
		lastTile:  {},
	})
	m.notifier.EXPECT().Dispatch(ctx, gomock.Any()).Return(noReport()).Times(1)
	m.repo.EXPECT().SaveIncidents(ctx, gomock.Any()).Return(errors.New("disk full")).Times(1)

	_, err := tracker.RunCycle(ctx)

	require.NoError(t, err)
	assert.Len(t, tracker.Current(), 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.metrics.PersistenceErrors.WithLabelValues("incidents")))
}

func TestRunCycle_PublishesEvents(t *testing.T) {
	initial := models.IncidentSet{{Lat: 0.25, Lon: 0.75}: "crash B"}
	tracker, m := newTestTracker(t, initial, true)
	ctx := context.Background()

	expectTiles(m, "v1", map[maptile.Tile][]json.RawMessage{
		firstTile: {accident(0.5, 0.5, "crash A")},
		lastTile:  {},
	})
	m.notifier.EXPECT().Dispatch(ctx, gomock.Any()).Return(noReport()).Times(1)
	m.repo.EXPECT().SaveIncidents(ctx, gomock.Any()).Return(nil).Times(1)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		events []webhook.IncidentEvent
	)
	wg.Add(2)
	m.publisher.EXPECT().
		Publish(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, event webhook.IncidentEvent) error {
			defer wg.Done()
			mu.Lock()
			events = append(events, event)
			mu.Unlock()
			return nil
		}).
		Times(2)

	report, err := tracker.RunCycle(ctx)
	require.NoError(t, err)
	wg.Wait()

	require.Len(t, events, 2)
	assert.Equal(t, webhook.EventAppeared, events[0].Kind)
	assert.Equal(t, "crash A", events[0].Description)
	assert.Equal(t, webhook.EventResolved, events[1].Kind)
	assert.Equal(t, 0.25, events[1].Latitude)
	assert.Equal(t, report.ID, events[0].CycleID)
}

func TestRunCycle_CancelledMidCycleKeepsState(t *testing.T) {
	initial := models.IncidentSet{{Lat: 0.5, Lon: 0.5}: "crash A"}
	tracker, m := newTestTracker(t, initial, false)
	ctx, cancel := context.WithCancel(context.Background())

	m.source.EXPECT().LayerVersion(gomock.Any()).Return("v1", true)
	m.source.EXPECT().
		Tile(gomock.Any(), gomock.Any(), "v1").
		DoAndReturn(func(_ context.Context, _ maptile.Tile, _ string) ([]json.RawMessage, bool) {
			cancel()
			return nil, false
		}).
		AnyTimes()
	// Ни рассылки, ни сохранения: цикл прерван

	_, err := tracker.RunCycle(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, initial, tracker.Current())
	_, ok := tracker.LastCycle()
	assert.False(t, ok)
}

func TestRunCycle_InvalidZoom(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockIncidentRepository(ctrl)
	repo.EXPECT().LoadIncidents(gomock.Any()).Return(nil, nil)
	opts := service.TrackerOptions{Box: testBox, Zoom: 0, Interval: time.Second}

	tracker, err := service.NewTracker(context.Background(), opts, mocks.NewMockIncidentSource(ctrl), repo, mocks.NewMockNotifier(ctrl), nil, newTestLogger(), newTestMetrics())
	require.NoError(t, err)

	_, err = tracker.RunCycle(context.Background())

	assert.ErrorIs(t, err, geo.ErrInvalidZoom)
	assert.Empty(t, tracker.Current())
}

func TestRun_StopsOnCancel(t *testing.T) {
	tracker, m := newTestTracker(t, models.IncidentSet{}, false)
	ctx, cancel := context.WithCancel(context.Background())
	saved := make(chan struct{}, 16)

	m.source.EXPECT().LayerVersion(gomock.Any()).Return("v1", true).MinTimes(2)
	m.source.EXPECT().Tile(gomock.Any(), gomock.Any(), "v1").Return(nil, true).MinTimes(4)
	m.repo.EXPECT().
		SaveIncidents(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ models.IncidentSet) error {
			select {
			case saved <- struct{}{}:
			default:
			}
			return nil
		}).
		MinTimes(2)

	done := make(chan error, 1)
	go func() { done <- tracker.Run(ctx) }()

	// Дожидаемся двух полных циклов
	<-saved
	<-saved
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("loop did not stop")
	}
}
