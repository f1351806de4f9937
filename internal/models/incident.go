package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// IncidentKey - идентичность ДТП: точная пара координат из источника.
// Сравнение идёт по точному равенству float64, без допусков: если источник сдвинет
// координаты одного и того же ДТП, это будет "разрешено" + "новое".
type IncidentKey struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// String возвращает ключ в формате хранилища "lat,lon"
func (k IncidentKey) String() string {
	return strconv.FormatFloat(k.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(k.Lon, 'f', -1, 64)
}

// ParseIncidentKey разбирает ключ формата "lat,lon"
func ParseIncidentKey(s string) (IncidentKey, error) {
	latStr, lonStr, ok := strings.Cut(s, ",")
	if !ok {
		return IncidentKey{}, fmt.Errorf("invalid incident key %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return IncidentKey{}, fmt.Errorf("invalid latitude in incident key %q: %w", s, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return IncidentKey{}, fmt.Errorf("invalid longitude in incident key %q: %w", s, err)
	}
	return IncidentKey{Lat: lat, Lon: lon}, nil
}

// Incident - ДТП с описанием
type Incident struct {
	IncidentKey
	Description string `json:"description"`
}

// IncidentSet - активные ДТП на момент последнего завершённого цикла.
// После публикации набор не изменяется, вместо этого подменяется целиком.
type IncidentSet map[IncidentKey]string

// Merge добавляет записи other, при совпадении ключа побеждает последняя запись
func (s IncidentSet) Merge(other IncidentSet) {
	for k, v := range other {
		s[k] = v
	}
}

// Clone возвращает независимую копию набора
func (s IncidentSet) Clone() IncidentSet {
	out := make(IncidentSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Sorted возвращает ДТП, упорядоченные по (lat, lon)
func (s IncidentSet) Sorted() []Incident {
	out := make([]Incident, 0, len(s))
	for k, v := range s {
		out = append(out, Incident{IncidentKey: k, Description: v})
	}
	sortIncidents(out)
	return out
}

// Changes - результат сравнения двух наборов
type Changes struct {
	Appeared []Incident
	Resolved []Incident
}

// Empty сообщает, что изменений нет
func (c Changes) Empty() bool {
	return len(c.Appeared) == 0 && len(c.Resolved) == 0
}

// Diff сравнивает предыдущий набор с новым
func Diff(previous, current IncidentSet) Changes {
	var changes Changes
	for k, v := range current {
		if _, ok := previous[k]; !ok {
			changes.Appeared = append(changes.Appeared, Incident{IncidentKey: k, Description: v})
		}
	}
	for k, v := range previous {
		if _, ok := current[k]; !ok {
			changes.Resolved = append(changes.Resolved, Incident{IncidentKey: k, Description: v})
		}
	}
	sortIncidents(changes.Appeared)
	sortIncidents(changes.Resolved)
	return changes
}

func sortIncidents(list []Incident) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Lat != list[j].Lat {
			return list[i].Lat < list[j].Lat
		}
		return list[i].Lon < list[j].Lon
	})
}
