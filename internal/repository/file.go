package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/shenikar/traffic_alert_bot/internal/models"
)

const (
	ApprovedFile  = "users.json"
	PendingFile   = "pending.json"
	KnownFile     = "known_users.json"
	IncidentsFile = "accidents.json"
)

// FileStore хранит состояние в JSON-файлах. Каждый файл при сохранении
// переписывается целиком через временный файл и rename.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore создает хранилище в каталоге dir
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// LoadSubscribers читает три коллекции реестра; отсутствующие файлы дают пустые коллекции
func (s *FileStore) LoadSubscribers(_ context.Context) (models.Subscribers, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs := models.NewSubscribers()
	if err := s.readJSON(ApprovedFile, &subs.Approved); err != nil {
		return models.Subscribers{}, err
	}
	if err := s.readJSON(PendingFile, &subs.Pending); err != nil {
		return models.Subscribers{}, err
	}
	if err := s.readJSON(KnownFile, &subs.Known); err != nil {
		return models.Subscribers{}, err
	}
	// null в файле не должен превращаться в nil-карту
	if subs.Approved == nil {
		subs.Approved = []int64{}
	}
	if subs.Pending == nil {
		subs.Pending = map[string]int64{}
	}
	if subs.Known == nil {
		subs.Known = map[string]int64{}
	}
	return subs, nil
}

// SaveSubscribers перезаписывает все три коллекции. Порядок pending, known, approved:
// при сбое посередине уже записанные файлы восстанавливаются из прежнего содержимого,
// поэтому на диске остается последний подтвержденный реестр.
func (s *FileStore) SaveSubscribers(_ context.Context, subs models.Subscribers) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	approved := subs.Approved
	if approved == nil {
		approved = []int64{}
	}
	writes := []struct {
		name string
		v    any
	}{
		{name: PendingFile, v: nonNil(subs.Pending)},
		{name: KnownFile, v: nonNil(subs.Known)},
		{name: ApprovedFile, v: approved},
	}

	written := make([]fileBackup, 0, len(writes))
	for _, w := range writes {
		backup, err := s.backup(w.name)
		if err == nil {
			err = s.writeJSON(w.name, w.v)
		}
		if err != nil {
			if rerr := s.restore(written); rerr != nil {
				return errors.Join(err, rerr)
			}
			return err
		}
		written = append(written, backup)
	}
	return nil
}

// fileBackup - содержимое файла до перезаписи
type fileBackup struct {
	name   string
	data   []byte
	exists bool
}

func (s *FileStore) backup(name string) (fileBackup, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileBackup{name: name}, nil
		}
		return fileBackup{}, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return fileBackup{name: name, data: data, exists: true}, nil
}

// restore возвращает файлы к прежнему содержимому в обратном порядке записи
func (s *FileStore) restore(backups []fileBackup) error {
	var errs []error
	for i := len(backups) - 1; i >= 0; i-- {
		b := backups[i]
		path := filepath.Join(s.dir, b.name)
		if !b.exists {
			if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
				errs = append(errs, fmt.Errorf("failed to remove %s: %w", b.name, err))
			}
			continue
		}
		if err := writeFileAtomic(path, b.data); err != nil {
			errs = append(errs, fmt.Errorf("failed to restore %s: %w", b.name, err))
		}
	}
	return errors.Join(errs...)
}

// LoadIncidents читает снимок ДТП, ключи в формате "lat,lon"
func (s *FileStore) LoadIncidents(_ context.Context) (models.IncidentSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw := map[string]string{}
	if err := s.readJSON(IncidentsFile, &raw); err != nil {
		return nil, err
	}
	set := make(models.IncidentSet, len(raw))
	for k, v := range raw {
		key, err := models.ParseIncidentKey(k)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", IncidentsFile, err)
		}
		set[key] = v
	}
	return set, nil
}

// SaveIncidents перезаписывает снимок ДТП
func (s *FileStore) SaveIncidents(_ context.Context, set models.IncidentSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw := make(map[string]string, len(set))
	for k, v := range set {
		raw[k.String()] = v
	}
	return s.writeJSON(IncidentsFile, raw)
}

func (s *FileStore) readJSON(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", name, err)
	}
	return nil
}

func (s *FileStore) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	data = append(data, '\n')
	return writeFileAtomic(filepath.Join(s.dir, name), data)
}

// writeFileAtomic пишет во временный файл, делает fsync и rename поверх старого
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"

	file, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create temporary file for %s: %w", path, err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to sync %s: %w", tmp, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}

	if dir, err := os.Open(filepath.Dir(path)); err == nil {
		dir.Sync()
		dir.Close()
	}
	return nil
}

func nonNil(m map[string]int64) map[string]int64 {
	if m == nil {
		return map[string]int64{}
	}
	return m
}
