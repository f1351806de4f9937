package service

//go:generate mockgen -source=dispatcher.go -destination=mocks/mock_dispatcher.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shenikar/traffic_alert_bot/internal/metrics"
)

// MessageSender отправляет текст в чат
type MessageSender interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

// RecipientSource отдаёт текущий список одобренных подписчиков
type RecipientSource interface {
	Approved() []int64
}

// DeliveryReport - итог одной рассылки
type DeliveryReport struct {
	Attempted int
	Delivered int
	Failed    int
}

// Dispatcher рассылает сообщение всем одобренным подписчикам.
// Ошибка одного получателя не мешает остальным, повторов нет.
type Dispatcher struct {
	sender      MessageSender
	recipients  RecipientSource
	sendTimeout time.Duration
	logger      *logrus.Logger
	metrics     *metrics.Metrics
}

func NewDispatcher(sender MessageSender, recipients RecipientSource, sendTimeout time.Duration, logger *logrus.Logger, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		sender:      sender,
		recipients:  recipients,
		sendTimeout: sendTimeout,
		logger:      logger,
		metrics:     m,
	}
}

// Dispatch запускает рассылку в отдельной горутине и сразу возвращается.
// Список получателей фиксируется в момент вызова. Канал получает один отчёт и закрывается.
func (d *Dispatcher) Dispatch(ctx context.Context, message string) <-chan DeliveryReport {
	done := make(chan DeliveryReport, 1)
	recipients := d.recipients.Approved()

	go func() {
		defer close(done)
		done <- d.deliver(ctx, recipients, message)
	}()
	return done
}

func (d *Dispatcher) deliver(ctx context.Context, recipients []int64, message string) DeliveryReport {
	log := d.logger.WithFields(logrus.Fields{
		"service":    "dispatcher",
		"method":     "Dispatch",
		"recipients": len(recipients),
	})

	report := DeliveryReport{Attempted: len(recipients)}
	for _, chatID := range recipients {
		if err := d.send(ctx, chatID, message); err != nil {
			report.Failed++
			d.metrics.Deliveries.WithLabelValues("failed").Inc()
			log.WithError(err).WithField("chat_id", chatID).Warn("Failed to deliver notification")
			continue
		}
		report.Delivered++
		d.metrics.Deliveries.WithLabelValues("delivered").Inc()
	}

	log.WithFields(logrus.Fields{
		"delivered": report.Delivered,
		"failed":    report.Failed,
	}).Info("Notification dispatched")
	return report
}

func (d *Dispatcher) send(ctx context.Context, chatID int64, message string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while sending: %v", r)
		}
	}()

	if d.sendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.sendTimeout)
		defer cancel()
	}
	return d.sender.SendText(ctx, chatID, message)
}
