// Package storage определяет контракт хранилища приложения и его файловую
// реализацию. Движок получает коллекцию подписок целиком и возвращает её
// после перехода; фиксация возвращённой коллекции — обязанность
// вызывающей стороны, и она выполняется одной записью.
package storage

import (
	"context"
	"errors"

	"github.com/subtrackhq/subtrack/internal/models"
)

// Ошибки уровня хранилища.
var (
	ErrUserExists           = errors.New("user already exists")
	ErrUserNotFound         = errors.New("user not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

// Repository описывает методы для работы с данными пользователей.
// Коллекция подписок сериализуется как единый JSON-документ на
// пользователя.
type Repository interface {
	// LoadSubscriptions возвращает все подписки пользователя.
	// Отсутствие данных — пустая коллекция, не ошибка.
	LoadSubscriptions(ctx context.Context, userID string) ([]models.Subscription, error)
	// SaveSubscriptions атомарно замещает коллекцию пользователя.
	SaveSubscriptions(ctx context.Context, userID string, subs []models.Subscription) error
	// CreateUser регистрирует пользователя; занятое имя — ErrUserExists.
	CreateUser(ctx context.Context, user models.User) error
	// GetUser возвращает пользователя по имени либо ErrUserNotFound.
	GetUser(ctx context.Context, username string) (*models.User, error)
}

// SessionStore хранит токен текущей локальной сессии.
type SessionStore interface {
	SaveSession(token string) error
	LoadSession() (string, error)
	ClearSession() error
}
