package models

import (
	"sort"
	"strconv"
	"strings"
)

// Subscribers - снимок реестра подписчиков
type Subscribers struct {
	// Approved - одобренные chat id, без дубликатов
	Approved []int64 `json:"approved"`
	// Pending - заявки, ожидающие решения администратора: handle -> chat id
	Pending map[string]int64 `json:"pending"`
	// Known - все, кто когда-либо присылал /start: handle -> chat id
	Known map[string]int64 `json:"known"`
}

// NewSubscribers возвращает пустой реестр
func NewSubscribers() Subscribers {
	return Subscribers{
		Approved: []int64{},
		Pending:  map[string]int64{},
		Known:    map[string]int64{},
	}
}

// Clone возвращает глубокую копию
func (s Subscribers) Clone() Subscribers {
	out := Subscribers{
		Approved: append([]int64{}, s.Approved...),
		Pending:  make(map[string]int64, len(s.Pending)),
		Known:    make(map[string]int64, len(s.Known)),
	}
	for k, v := range s.Pending {
		out.Pending[k] = v
	}
	for k, v := range s.Known {
		out.Known[k] = v
	}
	return out
}

// IsApproved проверяет наличие chat id среди одобренных
func (s Subscribers) IsApproved(chatID int64) bool {
	for _, id := range s.Approved {
		if id == chatID {
			return true
		}
	}
	return false
}

// HandleFor ищет handle по chat id в Known. Среди нескольких совпадений берётся
// первый по алфавиту, чтобы вывод был стабильным.
func (s Subscribers) HandleFor(chatID int64) (string, bool) {
	var handles []string
	for h, id := range s.Known {
		if id == chatID {
			handles = append(handles, h)
		}
	}
	if len(handles) == 0 {
		return "", false
	}
	sort.Strings(handles)
	return handles[0], true
}

// NormalizeHandle приводит имя пользователя к виду без "@" в нижнем регистре
func NormalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimLeft(strings.TrimSpace(handle), "@"))
}

// HandleOrFallback возвращает нормализованный handle или "user_<chatID>", если имени нет
func HandleOrFallback(username string, chatID int64) string {
	if h := NormalizeHandle(username); h != "" {
		return h
	}
	return "user_" + strconv.FormatInt(chatID, 10)
}
