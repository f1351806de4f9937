package service

import (
	"strconv"
	"strings"

	"github.com/shenikar/traffic_alert_bot/internal/models"
)

const (
	changesHeader   = "НОВЫЕ СОБЫТИЯ\n\n"
	appearedPrefix  = "🆕 Новое ДТП: "
	resolvedPrefix  = "✅ ДТП разрешено: "
	actualHeader    = "ТЕКУЩИЕ ДТП\n\n"
	actualPrefix    = "⚠️ "
	NoIncidentsText = "Сейчас в заданной области нет ни одного ДТП"

	mapZoom = 17
)

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// MapLink возвращает Markdown-ссылку на точку ДТП в Яндекс.Картах
func MapLink(key models.IncidentKey) string {
	lat := strconv.FormatFloat(key.Lat, 'f', -1, 64)
	lon := strconv.FormatFloat(key.Lon, 'f', -1, 64)
	return "[" + lat + ", " + lon + "](https://yandex.ru/maps/?ll=" + lon + "," + lat + "&z=" + strconv.Itoa(mapZoom) + ")"
}

// FormatChanges собирает уведомление об изменениях. Для пустых изменений - пустая строка.
func FormatChanges(changes models.Changes) string {
	if changes.Empty() {
		return ""
	}

	var b strings.Builder
	b.WriteString(changesHeader)
	for i, inc := range changes.Appeared {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(appearedPrefix)
		b.WriteString(MapLink(inc.IncidentKey))
	}
	if len(changes.Appeared) > 0 && len(changes.Resolved) > 0 {
		b.WriteString("\n\n")
	}
	for i, inc := range changes.Resolved {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(resolvedPrefix)
		b.WriteString(MapLink(inc.IncidentKey))
	}
	return b.String()
}

// FormatActual собирает список активных ДТП для команды /actual
func FormatActual(set models.IncidentSet) string {
	if len(set) == 0 {
		return NoIncidentsText
	}

	lines := make([]string, 0, len(set))
	for _, inc := range set.Sorted() {
		line := actualPrefix + MapLink(inc.IncidentKey)
		if inc.Description != "" {
			line += " — " + markdownEscaper.Replace(inc.Description)
		}
		lines = append(lines, line)
	}
	return actualHeader + strings.Join(lines, "\n")
}
