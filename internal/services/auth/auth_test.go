package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/subtrackhq/subtrack/internal/lib/jwt"
	"github.com/subtrackhq/subtrack/internal/lib/password"
	"github.com/subtrackhq/subtrack/internal/models"
	"github.com/subtrackhq/subtrack/internal/storage"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) LoadSubscriptions(ctx context.Context, userID string) ([]models.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Subscription), args.Error(1)
}
func (m *RepoMock) SaveSubscriptions(ctx context.Context, userID string, subs []models.Subscription) error {
	return m.Called(ctx, userID, subs).Error(0)
}
func (m *RepoMock) CreateUser(ctx context.Context, user models.User) error {
	return m.Called(ctx, user).Error(0)
}
func (m *RepoMock) GetUser(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type SessionMock struct{ mock.Mock }

func (m *SessionMock) SaveSession(token string) error {
	return m.Called(token).Error(0)
}
func (m *SessionMock) LoadSession() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}
func (m *SessionMock) ClearSession() error {
	return m.Called().Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newMaker() jwt.Maker {
	return jwt.NewMaker("test-secret", time.Hour)
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name       string
		req        models.DummyUser
		setupMocks func(r *RepoMock)
		wantErr    bool
	}{
		{
			name: "success",
			req: models.DummyUser{
				Email:    "test@example.com",
				Username: "testuser",
				Password: "password123",
			},
			setupMocks: func(r *RepoMock) {
				r.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
					return u.Username == "testuser" &&
						u.Email == "test@example.com" &&
						u.UUID != "" &&
						u.PasswordHash != "" &&
						u.PasswordHash != "password123"
				})).Return(nil).Once()
			},
			wantErr: false,
		},
		{
			name: "invalid email",
			req: models.DummyUser{
				Email:    "not-an-email",
				Username: "testuser",
				Password: "password123",
			},
			setupMocks: func(_ *RepoMock) {},
			wantErr:    true,
		},
		{
			name: "short password",
			req: models.DummyUser{
				Email:    "test@example.com",
				Username: "testuser",
				Password: "short",
			},
			setupMocks: func(_ *RepoMock) {},
			wantErr:    true,
		},
		{
			name: "duplicate username",
			req: models.DummyUser{
				Email:    "test@example.com",
				Username: "testuser",
				Password: "password123",
			},
			setupMocks: func(r *RepoMock) {
				r.On("CreateUser", mock.Anything, mock.Anything).
					Return(storage.ErrUserExists).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			sessions := new(SessionMock)
			svc := New(repo, sessions, newMaker(), newNoopLogger())

			tt.setupMocks(repo)

			user, err := svc.Register(context.Background(), tt.req)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.req.Username, user.Username)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hash, err := password.GetHash("password123")
	require.NoError(t, err)
	user := &models.User{
		UUID:         "uuid-1",
		Username:     "testuser",
		PasswordHash: hash,
	}

	t.Run("success saves session token", func(t *testing.T) {
		repo := new(RepoMock)
		sessions := new(SessionMock)
		svc := New(repo, sessions, newMaker(), newNoopLogger())

		repo.On("GetUser", mock.Anything, "testuser").Return(user, nil).Once()
		sessions.On("SaveSession", mock.MatchedBy(func(token string) bool {
			claims, err := newMaker().ParseToken(token)
			return err == nil && claims.UserUID == "uuid-1"
		})).Return(nil).Once()

		err := svc.Login(context.Background(), "testuser", "password123")
		assert.NoError(t, err)

		repo.AssertExpectations(t)
		sessions.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(RepoMock)
		sessions := new(SessionMock)
		svc := New(repo, sessions, newMaker(), newNoopLogger())

		repo.On("GetUser", mock.Anything, "testuser").Return(user, nil).Once()

		err := svc.Login(context.Background(), "testuser", "wrongpass")
		assert.Error(t, err)

		sessions.AssertNotCalled(t, "SaveSession", mock.Anything)
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := new(RepoMock)
		sessions := new(SessionMock)
		svc := New(repo, sessions, newMaker(), newNoopLogger())

		repo.On("GetUser", mock.Anything, "ghost").
			Return(nil, storage.ErrUserNotFound).Once()

		err := svc.Login(context.Background(), "ghost", "password123")
		assert.ErrorIs(t, err, storage.ErrUserNotFound)
	})
}

func TestAuthService_CurrentUserID(t *testing.T) {
	maker := newMaker()

	t.Run("no session falls back to local user", func(t *testing.T) {
		sessions := new(SessionMock)
		svc := New(new(RepoMock), sessions, maker, newNoopLogger())

		sessions.On("LoadSession").Return("", nil).Once()
		assert.Equal(t, models.LocalUserID, svc.CurrentUserID())
	})

	t.Run("valid session returns user uid", func(t *testing.T) {
		token, err := maker.GenerateToken("testuser", "uuid-1")
		require.NoError(t, err)

		sessions := new(SessionMock)
		svc := New(new(RepoMock), sessions, maker, newNoopLogger())

		sessions.On("LoadSession").Return(token, nil).Once()
		assert.Equal(t, "uuid-1", svc.CurrentUserID())
	})

	t.Run("stale session falls back to local user", func(t *testing.T) {
		expired := jwt.NewMaker("test-secret", -time.Minute)
		token, err := expired.GenerateToken("testuser", "uuid-1")
		require.NoError(t, err)

		sessions := new(SessionMock)
		svc := New(new(RepoMock), sessions, maker, newNoopLogger())

		sessions.On("LoadSession").Return(token, nil).Once()
		assert.Equal(t, models.LocalUserID, svc.CurrentUserID())
	})
}

func TestAuthService_Logout(t *testing.T) {
	sessions := new(SessionMock)
	svc := New(new(RepoMock), sessions, newMaker(), newNoopLogger())

	sessions.On("ClearSession").Return(nil).Once()
	assert.NoError(t, svc.Logout())
	sessions.AssertExpectations(t)
}
