package v1

import (
	"strconv"

	"github.com/shenikar/traffic_alert_bot/internal/models"
)

// IncidentsToResponses преобразует набор ДТП в отсортированный слайс DTO.
// limit <= 0 означает без ограничения.
func IncidentsToResponses(set models.IncidentSet, limit int) []IncidentResponse {
	sorted := set.Sorted()
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	responses := make([]IncidentResponse, len(sorted))
	for i, incident := range sorted {
		lat := strconv.FormatFloat(incident.Lat, 'f', -1, 64)
		lon := strconv.FormatFloat(incident.Lon, 'f', -1, 64)
		responses[i] = IncidentResponse{
			Latitude:    incident.Lat,
			Longitude:   incident.Lon,
			Description: incident.Description,
			MapURL:      "https://yandex.ru/maps/?ll=" + lon + "," + lat + "&z=17",
		}
	}
	return responses
}

// CycleToResponse преобразует итог цикла в DTO
func CycleToResponse(report models.CycleReport) *CycleResponse {
	return &CycleResponse{
		ID:           report.ID,
		StartedAt:    report.StartedAt,
		FinishedAt:   report.FinishedAt,
		DurationMs:   report.FinishedAt.Sub(report.StartedAt).Milliseconds(),
		LayerVersion: report.Version,
		TilesTotal:   report.TilesTotal,
		TilesFailed:  report.TilesFailed,
		Incidents:    report.Incidents,
		Appeared:     report.Appeared,
		Resolved:     report.Resolved,
	}
}

// SubscribersToStats считает размеры реестра
func SubscribersToStats(subs models.Subscribers, hasAdmin bool) SubscriberStatsResponse {
	return SubscriberStatsResponse{
		Approved: len(subs.Approved),
		Pending:  len(subs.Pending),
		Known:    len(subs.Known),
		HasAdmin: hasAdmin,
	}
}
