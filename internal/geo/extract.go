package geo

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/shenikar/traffic_alert_bot/internal/models"
)

// AccidentEventType - значение properties.eventType, которым источник помечает ДТП
const AccidentEventType = 1

var errNotAccident = errors.New("not an accident")

// ExtractIncidents отбирает из сырых фич тайла ДТП внутри области.
// Сломанная фича пропускается, остальные обрабатываются как обычно.
// Координаты в источнике идут в порядке [lat, lon].
func ExtractIncidents(features []json.RawMessage, box BBox) (models.IncidentSet, int) {
	incidents := make(models.IncidentSet)
	skipped := 0
	for _, raw := range features {
		incident, err := parseAccident(raw)
		if err != nil {
			if !errors.Is(err, errNotAccident) {
				skipped++
			}
			continue
		}
		if !box.Contains(incident.Lat, incident.Lon) {
			continue
		}
		incidents[incident.IncidentKey] = incident.Description
	}
	return incidents, skipped
}

// rawFeature - фича тайла. Теги "type" у фичи и геометрии источник может не
// передавать, поэтому читаются только свойства и координаты.
type rawFeature struct {
	Properties geojson.Properties `json:"properties"`
	Geometry   struct {
		Type        string    `json:"type"`
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
}

func parseAccident(raw json.RawMessage) (models.Incident, error) {
	var feature rawFeature
	if err := json.Unmarshal(raw, &feature); err != nil {
		return models.Incident{}, fmt.Errorf("decode feature: %w", err)
	}

	eventType, ok := feature.Properties["eventType"].(float64)
	if !ok {
		return models.Incident{}, errors.New("eventType is missing or not a number")
	}
	if eventType != AccidentEventType {
		return models.Incident{}, errNotAccident
	}

	point, err := feature.point()
	if err != nil {
		return models.Incident{}, err
	}

	description, ok := feature.Properties["description"].(string)
	if !ok {
		return models.Incident{}, errors.New("description is missing or not a string")
	}

	return models.Incident{
		IncidentKey: models.IncidentKey{Lat: point[0], Lon: point[1]},
		Description: description,
	}, nil
}

func (f rawFeature) point() (orb.Point, error) {
	if f.Geometry.Type != "" && f.Geometry.Type != "Point" {
		return orb.Point{}, fmt.Errorf("geometry is %s, want point", f.Geometry.Type)
	}
	if len(f.Geometry.Coordinates) != 2 {
		return orb.Point{}, fmt.Errorf("point needs 2 coordinates, got %d", len(f.Geometry.Coordinates))
	}
	return orb.Point{f.Geometry.Coordinates[0], f.Geometry.Coordinates[1]}, nil
}
