package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	SignatureHeader = "X-Webhook-Signature"
	popTimeout      = time.Second
)

// WorkerOptions - параметры доставки событий
type WorkerOptions struct {
	URL        string
	Secret     string
	Timeout    time.Duration
	MaxRetries int
	BaseDelay  time.Duration
}

// WebhookWorker забирает события из очереди Redis и отправляет их на внешний URL
type WebhookWorker struct {
	redisClient *redis.Client
	logger      *logrus.Logger
	opts        WorkerOptions
	queueKey    string
	httpClient  *http.Client
}

// NewWebhookWorker создает новый WebhookWorker
func NewWebhookWorker(redisClient *redis.Client, logger *logrus.Logger, opts WorkerOptions) *WebhookWorker {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	return &WebhookWorker{
		redisClient: redisClient,
		logger:      logger,
		opts:        opts,
		queueKey:    QueueKey,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
	}
}

// Start запускает обработку очереди в отдельной горутине.
// Возвращаемый канал закрывается после остановки по ctx.
func (w *WebhookWorker) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	w.logger.Info("Starting webhook worker...")
	go func() {
		defer close(done)
		w.run(ctx)
		w.logger.Info("Stopping webhook worker.")
	}()
	return done
}

func (w *WebhookWorker) run(ctx context.Context) {
	for ctx.Err() == nil {
		// Ограниченное ожидание, чтобы вовремя заметить отмену ctx
		result, err := w.redisClient.BRPop(ctx, popTimeout, w.queueKey).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			w.logger.WithError(err).Error("Failed to pop incident event from Redis")
			sleep(ctx, w.opts.BaseDelay)
			continue
		}

		// result[0] - ключ, result[1] - значение
		payload := result[1]
		var event IncidentEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			w.logger.WithError(err).Error("Failed to unmarshal incident event from Redis")
			continue
		}

		w.deliver(ctx, event, payload)
	}
}

func (w *WebhookWorker) deliver(ctx context.Context, event IncidentEvent, rawPayload string) {
	log := w.logger.WithFields(logrus.Fields{
		"event_id":   event.ID,
		"event_kind": event.Kind,
		"cycle_id":   event.CycleID,
	})
	log.Debug("Processing incident event...")

	if w.opts.URL == "" {
		log.Warn("Webhook URL is not configured. Skipping webhook delivery.")
		return
	}

	delay := w.opts.BaseDelay
	for i := 0; i < w.opts.MaxRetries; i++ {
		retriesLeft := w.opts.MaxRetries - 1 - i

		status, err := w.post(ctx, rawPayload)
		switch {
		case err == nil && status >= 200 && status < 300:
			log.Info("Webhook delivered successfully.")
			return
		case err != nil:
			log.WithError(err).Warnf("Failed to send webhook. Retrying in %v. Retries left: %d", delay, retriesLeft)
		default:
			log.Warnf("Webhook delivery failed with status code %d. Retrying in %v. Retries left: %d", status, delay, retriesLeft)
		}

		if retriesLeft == 0 || !sleep(ctx, delay) {
			break
		}
		delay *= 2
	}

	log.Errorf("Failed to deliver webhook after %d attempts.", w.opts.MaxRetries)
}

func (w *WebhookWorker) post(ctx context.Context, rawPayload string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.opts.URL, bytes.NewBufferString(rawPayload))
	if err != nil {
		return 0, fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	// HMAC подпись, если WEBHOOK_SECRET задан
	if w.opts.Secret != "" {
		req.Header.Set(SignatureHeader, Sign(rawPayload, w.opts.Secret))
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

// Sign генерирует HMAC-SHA256 подпись тела запроса
func Sign(data, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// sleep ждёт d или отмены ctx; false - ctx отменён
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
