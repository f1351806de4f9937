package service

//go:generate mockgen -source=registry.go -destination=mocks/mock_registry.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/shenikar/traffic_alert_bot/internal/metrics"
	"github.com/shenikar/traffic_alert_bot/internal/models"
)

// SubscriberRepository определяет контракт хранения реестра подписчиков
type SubscriberRepository interface {
	LoadSubscribers(ctx context.Context) (models.Subscribers, error)
	SaveSubscribers(ctx context.Context, subs models.Subscribers) error
}

// AdminRepository сохраняет назначенного администратора
type AdminRepository interface {
	SaveAdmin(ctx context.Context, chatID int64) error
}

// SubscriberService определяет контракт управления доступом к уведомлениям
type SubscriberService interface {
	RequestAccess(ctx context.Context, handle string, chatID int64) (AccessResult, error)
	Approve(ctx context.Context, handle string) (int64, error)
	Deny(ctx context.Context, handle string) (int64, error)
	Revoke(ctx context.Context, handle string) (int64, error)
	ClaimAdmin(ctx context.Context, chatID int64) error
	IsApproved(chatID int64) bool
	IsAdmin(chatID int64) bool
	Admin() (int64, bool)
	Snapshot() models.Subscribers
}

// AccessResult - исход запроса доступа
type AccessResult int

const (
	AccessSubmitted AccessResult = iota
	AccessAlreadySubscribed
	AccessAlreadyQueued
)

func (r AccessResult) String() string {
	switch r {
	case AccessSubmitted:
		return "submitted"
	case AccessAlreadySubscribed:
		return "already_subscribed"
	case AccessAlreadyQueued:
		return "already_queued"
	}
	return fmt.Sprintf("AccessResult(%d)", int(r))
}

var (
	ErrNotPending      = errors.New("handle is not pending")
	ErrUnknownHandle   = errors.New("unknown handle")
	ErrNotSubscribed   = errors.New("handle is not subscribed")
	ErrAdminAlreadySet = errors.New("administrator is already set")
)

// Registry владеет реестром подписчиков и администратором.
// Все изменения сериализуются мьютексом; новое состояние сначала
// сохраняется, и только после успешной записи становится видимым.
type Registry struct {
	mu        sync.RWMutex
	state     models.Subscribers
	admin     int64
	repo      SubscriberRepository
	adminRepo AdminRepository
	logger    *logrus.Logger
	metrics   *metrics.Metrics
}

// NewRegistry загружает реестр из хранилища. adminChatID == 0 - администратор не назначен.
func NewRegistry(ctx context.Context, repo SubscriberRepository, adminRepo AdminRepository, adminChatID int64, logger *logrus.Logger, m *metrics.Metrics) (*Registry, error) {
	state, err := repo.LoadSubscribers(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: could not load subscribers: %w", err)
	}
	if state.Pending == nil || state.Known == nil || state.Approved == nil {
		state = mergeDefaults(state)
	}

	r := &Registry{
		state:     dedupApproved(state),
		admin:     adminChatID,
		repo:      repo,
		adminRepo: adminRepo,
		logger:    logger,
		metrics:   m,
	}
	r.updateGauges()
	logger.WithFields(logrus.Fields{
		"service":  "registry",
		"approved": len(r.state.Approved),
		"pending":  len(r.state.Pending),
		"known":    len(r.state.Known),
	}).Info("Subscriber registry loaded")
	return r, nil
}

// RequestAccess ставит заявку в очередь. Уведомить администратора - задача вызывающего.
func (r *Registry) RequestAccess(ctx context.Context, handle string, chatID int64) (AccessResult, error) {
	handle = models.NormalizeHandle(handle)
	log := r.logger.WithFields(logrus.Fields{
		"service": "registry",
		"method":  "RequestAccess",
		"handle":  handle,
		"chat_id": chatID,
	})

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state.IsApproved(chatID) {
		return AccessAlreadySubscribed, nil
	}
	if _, ok := r.state.Pending[handle]; ok {
		return AccessAlreadyQueued, nil
	}

	err := r.commit(ctx, func(next *models.Subscribers) error {
		next.Pending[handle] = chatID
		next.Known[handle] = chatID
		return nil
	})
	if err != nil {
		log.WithError(err).Error("Failed to queue access request")
		return 0, err
	}
	log.Info("Access request queued")
	return AccessSubmitted, nil
}

// Approve переносит заявку в одобренные и возвращает chat id подписчика
func (r *Registry) Approve(ctx context.Context, handle string) (int64, error) {
	handle = models.NormalizeHandle(handle)
	log := r.logger.WithFields(logrus.Fields{"service": "registry", "method": "Approve", "handle": handle})

	r.mu.Lock()
	defer r.mu.Unlock()

	chatID, ok := r.state.Pending[handle]
	if !ok {
		return 0, fmt.Errorf("approve %q: %w", handle, ErrNotPending)
	}

	err := r.commit(ctx, func(next *models.Subscribers) error {
		// Заявки того же chat id под другими именами тоже закрываются
		for h, id := range next.Pending {
			if id == chatID {
				delete(next.Pending, h)
			}
		}
		if !next.IsApproved(chatID) {
			next.Approved = append(next.Approved, chatID)
		}
		return nil
	})
	if err != nil {
		log.WithError(err).Error("Failed to approve subscriber")
		return 0, err
	}
	log.WithField("chat_id", chatID).Info("Subscriber approved")
	return chatID, nil
}

// Deny отклоняет заявку, одобренных не трогает
func (r *Registry) Deny(ctx context.Context, handle string) (int64, error) {
	handle = models.NormalizeHandle(handle)
	log := r.logger.WithFields(logrus.Fields{"service": "registry", "method": "Deny", "handle": handle})

	r.mu.Lock()
	defer r.mu.Unlock()

	chatID, ok := r.state.Pending[handle]
	if !ok {
		return 0, fmt.Errorf("deny %q: %w", handle, ErrNotPending)
	}

	err := r.commit(ctx, func(next *models.Subscribers) error {
		delete(next.Pending, handle)
		return nil
	})
	if err != nil {
		log.WithError(err).Error("Failed to deny subscriber")
		return 0, err
	}
	log.WithField("chat_id", chatID).Info("Access request denied")
	return chatID, nil
}

// Revoke отзывает доступ у одобренного подписчика
func (r *Registry) Revoke(ctx context.Context, handle string) (int64, error) {
	handle = models.NormalizeHandle(handle)
	log := r.logger.WithFields(logrus.Fields{"service": "registry", "method": "Revoke", "handle": handle})

	r.mu.Lock()
	defer r.mu.Unlock()

	chatID, ok := r.state.Known[handle]
	if !ok {
		return 0, fmt.Errorf("revoke %q: %w", handle, ErrUnknownHandle)
	}
	if !r.state.IsApproved(chatID) {
		return 0, fmt.Errorf("revoke %q: %w", handle, ErrNotSubscribed)
	}

	err := r.commit(ctx, func(next *models.Subscribers) error {
		approved := next.Approved[:0]
		for _, id := range next.Approved {
			if id != chatID {
				approved = append(approved, id)
			}
		}
		next.Approved = approved
		return nil
	})
	if err != nil {
		log.WithError(err).Error("Failed to revoke subscriber")
		return 0, err
	}
	log.WithField("chat_id", chatID).Info("Subscriber revoked")
	return chatID, nil
}

// ClaimAdmin назначает администратора, если он ещё не назначен.
// Проверка и установка выполняются под одной блокировкой.
func (r *Registry) ClaimAdmin(ctx context.Context, chatID int64) error {
	log := r.logger.WithFields(logrus.Fields{"service": "registry", "method": "ClaimAdmin", "chat_id": chatID})

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.admin != 0 {
		return ErrAdminAlreadySet
	}
	if err := r.adminRepo.SaveAdmin(ctx, chatID); err != nil {
		log.WithError(err).Error("Failed to persist administrator")
		r.metrics.PersistenceErrors.WithLabelValues("admin").Inc()
		return fmt.Errorf("service: could not save administrator: %w", err)
	}
	r.admin = chatID
	log.Info("Administrator assigned")
	return nil
}

func (r *Registry) IsApproved(chatID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.IsApproved(chatID)
}

func (r *Registry) IsAdmin(chatID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.admin != 0 && r.admin == chatID
}

// Admin возвращает chat id администратора, если он назначен
func (r *Registry) Admin() (int64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.admin, r.admin != 0
}

// Approved возвращает копию списка одобренных chat id
func (r *Registry) Approved() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]int64{}, r.state.Approved...)
}

// Snapshot возвращает копию всего реестра
func (r *Registry) Snapshot() models.Subscribers {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.Clone()
}

// PendingHandles возвращает заявки в алфавитном порядке
func PendingHandles(subs models.Subscribers) []string {
	handles := make([]string, 0, len(subs.Pending))
	for h := range subs.Pending {
		handles = append(handles, h)
	}
	sort.Strings(handles)
	return handles
}

// commit применяет fn к копии состояния, сохраняет её и только затем публикует.
// Вызывается под r.mu.
func (r *Registry) commit(ctx context.Context, fn func(next *models.Subscribers) error) error {
	next := r.state.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	if err := r.repo.SaveSubscribers(ctx, next); err != nil {
		r.metrics.PersistenceErrors.WithLabelValues("subscribers").Inc()
		return fmt.Errorf("service: could not save subscribers: %w", err)
	}
	r.state = next
	r.updateGauges()
	return nil
}

func (r *Registry) updateGauges() {
	r.metrics.Subscribers.WithLabelValues("approved").Set(float64(len(r.state.Approved)))
	r.metrics.Subscribers.WithLabelValues("pending").Set(float64(len(r.state.Pending)))
	r.metrics.Subscribers.WithLabelValues("known").Set(float64(len(r.state.Known)))
}

func mergeDefaults(state models.Subscribers) models.Subscribers {
	out := models.NewSubscribers()
	out.Approved = append(out.Approved, state.Approved...)
	for k, v := range state.Pending {
		out.Pending[k] = v
	}
	for k, v := range state.Known {
		out.Known[k] = v
	}
	return out
}

func dedupApproved(state models.Subscribers) models.Subscribers {
	seen := make(map[int64]struct{}, len(state.Approved))
	approved := make([]int64, 0, len(state.Approved))
	for _, id := range state.Approved {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		approved = append(approved, id)
	}
	state.Approved = approved
	return state
}
