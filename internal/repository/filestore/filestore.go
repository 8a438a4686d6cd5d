// Package filestore хранит списки id корзины в JSON-файлах на диске —
// аналог localStorage браузера для настольного клиента
// хранилище best-effort: любая ошибка логируется и гасится,
// источником истины остаётся состояние в памяти
package filestore

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
)

// Store — файловое хранилище ключ → список id
type Store struct {
	dir string
	log *slog.Logger
}

// New создаёт хранилище в каталоге dir; каталог создаётся при первой записи
func New(dir string, log *slog.Logger) *Store {
	return &Store{dir: dir, log: log}
}

// Save записывает список id под ключом key
// ошибка записи не прерывает работу приложения
func (s *Store) Save(key string, ids []string) {
	const op = "repository.filestore.Store.Save"

	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		s.log.Warn("failed to marshal id list", slog.String("op", op), slog.String("error", err.Error()))
		return
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		s.log.Warn("failed to create storage dir", slog.String("op", op), slog.String("error", err.Error()))
		return
	}
	if err := os.WriteFile(s.path(key), data, 0o644); err != nil {
		s.log.Warn("failed to write id list", slog.String("op", op), slog.String("error", err.Error()))
	}
}

// Load возвращает сохранённый список id
// отсутствующий или испорченный файл — это пустой список, а не ошибка
func (s *Store) Load(key string) []string {
	const op = "repository.filestore.Store.Load"

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		// файла ещё нет — нормальная ситуация при первом запуске
		return []string{}
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		s.log.Warn("corrupt id list, starting empty", slog.String("op", op), slog.String("error", err.Error()))
		return []string{}
	}
	if ids == nil {
		ids = []string{}
	}
	return ids
}

// Clear удаляет запись под ключом key
func (s *Store) Clear(key string) {
	// отсутствие файла не считается ошибкой
	_ = os.Remove(s.path(key))
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}
