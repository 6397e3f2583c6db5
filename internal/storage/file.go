package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/subtrackhq/subtrack/internal/models"
)

const (
	dataPrefix  = "subtrack_data_"
	usersFile   = "subtrack_users.json"
	sessionFile = "subtrack_session"
)

// FileStorage хранит данные в каталоге пользователя: один JSON-документ
// с подписками на каждого пользователя плюс общий реестр учётных записей.
// Запись всегда идёт через временный файл и rename, поэтому видимое
// состояние меняется одним шагом: сдвинутая дата списания и парная ей
// запись истории попадают на диск вместе либо не попадают вовсе.
type FileStorage struct {
	dir string
}

// New создаёт FileStorage, при необходимости создавая каталог данных.
func New(dir string) (*FileStorage, error) {
	const op = "storage.New"
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &FileStorage{dir: dir}, nil
}

// LoadSubscriptions возвращает подписки пользователя. Отсутствующий файл
// трактуется как пустая коллекция.
func (s *FileStorage) LoadSubscriptions(_ context.Context, userID string) ([]models.Subscription, error) {
	const op = "storage.LoadSubscriptions"
	data, err := os.ReadFile(s.dataPath(userID))
	if os.IsNotExist(err) {
		return []models.Subscription{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var subs []models.Subscription
	if err := json.Unmarshal(data, &subs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return subs, nil
}

// SaveSubscriptions атомарно замещает коллекцию пользователя.
func (s *FileStorage) SaveSubscriptions(_ context.Context, userID string, subs []models.Subscription) error {
	const op = "storage.SaveSubscriptions"
	data, err := json.MarshalIndent(subs, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.writeAtomic(s.dataPath(userID), data); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CreateUser добавляет пользователя в реестр. Имя пользователя уникально.
func (s *FileStorage) CreateUser(_ context.Context, user models.User) error {
	const op = "storage.CreateUser"
	users, err := s.readUsers()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, ok := users[user.Username]; ok {
		return fmt.Errorf("%s: %w", op, ErrUserExists)
	}
	users[user.Username] = user
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.writeAtomic(filepath.Join(s.dir, usersFile), data); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetUser возвращает пользователя по имени.
func (s *FileStorage) GetUser(_ context.Context, username string) (*models.User, error) {
	const op = "storage.GetUser"
	users, err := s.readUsers()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user, ok := users[username]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return &user, nil
}

// SaveSession записывает токен текущей сессии.
func (s *FileStorage) SaveSession(token string) error {
	const op = "storage.SaveSession"
	if err := s.writeAtomic(filepath.Join(s.dir, sessionFile), []byte(token)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// LoadSession возвращает токен текущей сессии либо пустую строку,
// если сессии нет.
func (s *FileStorage) LoadSession() (string, error) {
	const op = "storage.LoadSession"
	data, err := os.ReadFile(filepath.Join(s.dir, sessionFile))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// ClearSession удаляет сохранённую сессию.
func (s *FileStorage) ClearSession() error {
	const op = "storage.ClearSession"
	err := os.Remove(filepath.Join(s.dir, sessionFile))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *FileStorage) dataPath(userID string) string {
	return filepath.Join(s.dir, dataPrefix+sanitize(userID)+".json")
}

func (s *FileStorage) readUsers() (map[string]models.User, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, usersFile))
	if os.IsNotExist(err) {
		return map[string]models.User{}, nil
	}
	if err != nil {
		return nil, err
	}
	var users map[string]models.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *FileStorage) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".subtrack-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// sanitize приводит идентификатор пользователя к безопасному имени файла.
func sanitize(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, id)
}
