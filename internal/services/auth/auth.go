// Package services содержит бизнес-логику локальных учётных записей:
// регистрацию, вход, выход и определение текущего пользователя.
//
// Учётные записи необязательны: без сессии приложение работает под
// встроенным локальным пользователем. Сторонние провайдеры входа
// не поддерживаются.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/subtrackhq/subtrack/internal/lib/jwt"
	"github.com/subtrackhq/subtrack/internal/lib/password"
	"github.com/subtrackhq/subtrack/internal/lib/sl"
	"github.com/subtrackhq/subtrack/internal/models"
	"github.com/subtrackhq/subtrack/internal/storage"
)

// AuthService реализует операции с локальными учётными записями.
type AuthService struct {
	repo     storage.Repository
	sessions storage.SessionStore
	maker    jwt.Maker
	log      *slog.Logger
	validate *validator.Validate
}

// New создает новый экземпляр AuthService.
func New(repo storage.Repository, sessions storage.SessionStore, maker jwt.Maker, log *slog.Logger) *AuthService {
	return &AuthService{
		repo:     repo,
		sessions: sessions,
		maker:    maker,
		log:      log,
		validate: validator.New(),
	}
}

// Register создаёт локальную учётную запись с bcrypt-хэшем пароля.
func (a *AuthService) Register(ctx context.Context, req models.DummyUser) (*models.User, error) {
	const op = "services.auth.Register"

	if err := a.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	hash, err := password.GetHash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user := models.User{
		UUID:         uuid.NewString(),
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	if err := a.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.log.Info("registered user", slog.String("username", user.Username))
	return &user, nil
}

// Login проверяет пароль и открывает сессию, сохраняя подписанный токен.
func (a *AuthService) Login(ctx context.Context, username, pass string) error {
	const op = "services.auth.Login"

	user, err := a.repo.GetUser(ctx, username)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, pass); err != nil {
		return fmt.Errorf("%s: invalid credentials", op)
	}
	token, err := a.maker.GenerateToken(user.Username, user.UUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := a.sessions.SaveSession(token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	a.log.Info("logged in", slog.String("username", username))
	return nil
}

// Logout закрывает текущую сессию.
func (a *AuthService) Logout() error {
	const op = "services.auth.Logout"
	if err := a.sessions.ClearSession(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CurrentUserID возвращает идентификатор пользователя текущей сессии.
// Без сессии (или с истёкшей/битой) приложение работает под встроенным
// локальным пользователем.
func (a *AuthService) CurrentUserID() string {
	token, err := a.sessions.LoadSession()
	if err != nil {
		a.log.Warn("failed to load session", sl.Err(err))
		return models.LocalUserID
	}
	if token == "" {
		return models.LocalUserID
	}
	claims, err := a.maker.ParseToken(token)
	if err != nil {
		a.log.Warn("stale session, falling back to local user", sl.Err(err))
		return models.LocalUserID
	}
	return claims.UserUID
}
