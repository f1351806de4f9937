package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shenikar/traffic_alert_bot/internal/models"
)

// PostgresStore хранит состояние в PostgreSQL. Каждое сохранение заменяет
// содержимое таблиц целиком в одной транзакции.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// LoadSubscribers читает реестр подписчиков
func (r *PostgresStore) LoadSubscribers(ctx context.Context) (models.Subscribers, error) {
	subs := models.NewSubscribers()

	rows, err := r.db.Query(ctx, `SELECT chat_id FROM approved_subscribers ORDER BY position;`)
	if err != nil {
		return models.Subscribers{}, fmt.Errorf("failed to query approved subscribers: %w", err)
	}
	approved, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return models.Subscribers{}, fmt.Errorf("failed to scan approved subscribers: %w", err)
	}
	subs.Approved = append(subs.Approved, approved...)

	if err := r.loadHandles(ctx, "pending_subscribers", subs.Pending); err != nil {
		return models.Subscribers{}, err
	}
	if err := r.loadHandles(ctx, "known_subscribers", subs.Known); err != nil {
		return models.Subscribers{}, err
	}
	return subs, nil
}

func (r *PostgresStore) loadHandles(ctx context.Context, table string, dst map[string]int64) error {
	rows, err := r.db.Query(ctx, fmt.Sprintf(`SELECT handle, chat_id FROM %s;`, table))
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			handle string
			chatID int64
		)
		if err := rows.Scan(&handle, &chatID); err != nil {
			return fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		dst[handle] = chatID
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error %s iteration: %w", table, err)
	}
	return nil
}

// SaveSubscribers заменяет три коллекции реестра
func (r *PostgresStore) SaveSubscribers(ctx context.Context, subs models.Subscribers) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM approved_subscribers;`)
	batch.Queue(`DELETE FROM pending_subscribers;`)
	batch.Queue(`DELETE FROM known_subscribers;`)
	for i, chatID := range subs.Approved {
		batch.Queue(`INSERT INTO approved_subscribers (chat_id, position) VALUES ($1, $2);`, chatID, i)
	}
	for handle, chatID := range subs.Pending {
		batch.Queue(`INSERT INTO pending_subscribers (handle, chat_id) VALUES ($1, $2);`, handle, chatID)
	}
	for handle, chatID := range subs.Known {
		batch.Queue(`INSERT INTO known_subscribers (handle, chat_id) VALUES ($1, $2);`, handle, chatID)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to save subscribers: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit subscribers: %w", err)
	}
	return nil
}

// LoadIncidents читает снимок ДТП
func (r *PostgresStore) LoadIncidents(ctx context.Context) (models.IncidentSet, error) {
	rows, err := r.db.Query(ctx, `SELECT latitude, longitude, description FROM incidents;`)
	if err != nil {
		return nil, fmt.Errorf("failed to query incidents: %w", err)
	}
	defer rows.Close()

	set := make(models.IncidentSet)
	for rows.Next() {
		var (
			key         models.IncidentKey
			description string
		)
		if err := rows.Scan(&key.Lat, &key.Lon, &description); err != nil {
			return nil, fmt.Errorf("failed to scan incident row: %w", err)
		}
		set[key] = description
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error incidents iteration: %w", err)
	}
	return set, nil
}

// SaveIncidents заменяет снимок ДТП
func (r *PostgresStore) SaveIncidents(ctx context.Context, set models.IncidentSet) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM incidents;`); err != nil {
		return fmt.Errorf("failed to clear incidents: %w", err)
	}

	rows := make([][]any, 0, len(set))
	for k, v := range set {
		rows = append(rows, []any{k.Lat, k.Lon, v})
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"incidents"}, []string{"latitude", "longitude", "description"}, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("failed to copy incidents: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit incidents: %w", err)
	}
	return nil
}
