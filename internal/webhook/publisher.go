package webhook

//go:generate mockgen -source=publisher.go -destination=mocks/mock_publisher.go -package=mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/shenikar/traffic_alert_bot/internal/models"
)

const (
	QueueKey = "traffic_alert:incident_events"
)

// EventKind - тип изменения ДТП
type EventKind string

const (
	EventAppeared EventKind = "appeared"
	EventResolved EventKind = "resolved"
)

// IncidentEvent - событие об изменении набора ДТП для внешних потребителей
type IncidentEvent struct {
	ID          uuid.UUID `json:"id"`
	Kind        EventKind `json:"kind"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Description string    `json:"description"`
	CycleID     uuid.UUID `json:"cycle_id"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewIncidentEvent собирает событие по ДТП из цикла cycleID
func NewIncidentEvent(kind EventKind, incident models.Incident, cycleID uuid.UUID, at time.Time) IncidentEvent {
	return IncidentEvent{
		ID:          uuid.New(),
		Kind:        kind,
		Latitude:    incident.Lat,
		Longitude:   incident.Lon,
		Description: incident.Description,
		CycleID:     cycleID,
		Timestamp:   at.UTC(),
	}
}

// WebhookPublisher - интерфейс для публикации событий
type WebhookPublisher interface {
	Publish(ctx context.Context, event IncidentEvent) error
}

// RedisWebhookPublisher кладёт события в очередь Redis, откуда их забирает WebhookWorker
type RedisWebhookPublisher struct {
	redisClient *redis.Client
	queueKey    string
}

// NewRedisWebhookPublisher создает новый RedisWebhookPublisher
func NewRedisWebhookPublisher(client *redis.Client) *RedisWebhookPublisher {
	return &RedisWebhookPublisher{
		redisClient: client,
		queueKey:    QueueKey,
	}
}

// Publish публикует событие в очередь Redis
func (p *RedisWebhookPublisher) Publish(ctx context.Context, event IncidentEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal incident event: %w", err)
	}

	// LPUSH в голову, worker забирает из хвоста через BRPOP
	if err := p.redisClient.LPush(ctx, p.queueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish incident event to Redis: %w", err)
	}
	return nil
}
