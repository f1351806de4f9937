package models

import (
	"time"

	"github.com/google/uuid"
)

// CycleReport представляет итог одного цикла сверки
type CycleReport struct {
	ID          uuid.UUID `json:"id"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Version     string    `json:"layer_version,omitempty"`
	TilesTotal  int       `json:"tiles_total"`
	TilesFailed int       `json:"tiles_failed"`
	Incidents   int       `json:"incidents"`
	Appeared    int       `json:"appeared"`
	Resolved    int       `json:"resolved"`
}
