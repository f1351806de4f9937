package v1

import (
	"time"

	"github.com/google/uuid"
)

// ListIncidentsQuery - параметры выборки текущих ДТП
type ListIncidentsQuery struct {
	Limit int `form:"limit" validate:"omitempty,gte=1,lte=1000"`
}

// IncidentResponse DTO для ответа с информацией о ДТП
type IncidentResponse struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Description string  `json:"description,omitempty"`
	MapURL      string  `json:"map_url"`
}

// CycleResponse DTO с итогом последнего цикла сверки
type CycleResponse struct {
	ID           uuid.UUID `json:"id"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	DurationMs   int64     `json:"duration_ms"`
	LayerVersion string    `json:"layer_version,omitempty"`
	TilesTotal   int       `json:"tiles_total"`
	TilesFailed  int       `json:"tiles_failed"`
	Incidents    int       `json:"incidents"`
	Appeared     int       `json:"appeared"`
	Resolved     int       `json:"resolved"`
}

// IncidentsResponse DTO для списка текущих ДТП
type IncidentsResponse struct {
	Total     int                `json:"total"`
	Incidents []IncidentResponse `json:"incidents"`
	LastCycle *CycleResponse     `json:"last_cycle,omitempty"`
}

// SubscriberStatsResponse DTO для ответа со статистикой подписчиков
type SubscriberStatsResponse struct {
	Approved int  `json:"approved"`
	Pending  int  `json:"pending"`
	Known    int  `json:"known"`
	HasAdmin bool `json:"has_admin"`
}

// HealthResponse DTO для health-check
type HealthResponse struct {
	Status      string     `json:"status"`
	Incidents   int        `json:"incidents"`
	LastCycleAt *time.Time `json:"last_cycle_at,omitempty"`
}
