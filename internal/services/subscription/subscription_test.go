package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

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

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}
func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}
func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func validRequest() models.DummySubscription {
	return models.DummySubscription{
		Name:            "Netflix",
		Price:           9.99,
		Currency:        "USD",
		Cycle:           "Monthly",
		NextPaymentDate: "2024-03-01",
		Category:        "Entertainment",
	}
}

func TestSubscriptionService_Add(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(r *RepoMock, c *CacheMock)
		mutate     func(req *models.DummySubscription)
		wantErr    bool
	}{
		{
			name: "success",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				r.On("LoadSubscriptions", mock.Anything, "user1").
					Return([]models.Subscription{}, nil).Once()
				r.On("SaveSubscriptions", mock.Anything, "user1",
					mock.MatchedBy(func(subs []models.Subscription) bool {
						return len(subs) == 1 &&
							subs[0].Name == "Netflix" &&
							subs[0].Currency == models.CurrencyUSD &&
							subs[0].ID != ""
					})).Return(nil).Once()
				c.On("Invalidate", "subscriptions:user1").Return(nil).Once()
				c.On("Invalidate", "summary:user1").Return(nil).Once()
			},
			mutate:  func(_ *models.DummySubscription) {},
			wantErr: false,
		},
		{
			name:       "unknown currency",
			setupMocks: func(_ *RepoMock, _ *CacheMock) {},
			mutate:     func(req *models.DummySubscription) { req.Currency = "GBP" },
			wantErr:    true,
		},
		{
			name:       "unknown cycle",
			setupMocks: func(_ *RepoMock, _ *CacheMock) {},
			mutate:     func(req *models.DummySubscription) { req.Cycle = "Daily" },
			wantErr:    true,
		},
		{
			name:       "unknown category",
			setupMocks: func(_ *RepoMock, _ *CacheMock) {},
			mutate:     func(req *models.DummySubscription) { req.Category = "Gadgets" },
			wantErr:    true,
		},
		{
			name:       "invalid date",
			setupMocks: func(_ *RepoMock, _ *CacheMock) {},
			mutate:     func(req *models.DummySubscription) { req.NextPaymentDate = "2024-02-30" },
			wantErr:    true,
		},
		{
			name:       "negative price",
			setupMocks: func(_ *RepoMock, _ *CacheMock) {},
			mutate:     func(req *models.DummySubscription) { req.Price = -5 },
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			svc := NewSubscriptionService(repo, cache, time.Hour, newNoopLogger())

			tt.setupMocks(repo, cache)
			req := validRequest()
			tt.mutate(&req)

			got, err := svc.Add(context.Background(), "user1", req)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, got.ID)
				assert.Equal(t, models.CycleMonthly, got.Cycle)
			}

			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestSubscriptionService_MarkPaid(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := NewSubscriptionService(repo, cache, time.Hour, newNoopLogger())

	existing := []models.Subscription{{
		ID:              "sub-1",
		Name:            "Netflix",
		Price:           9.99,
		Currency:        models.CurrencyUSD,
		Cycle:           models.CycleMonthly,
		NextPaymentDate: "2024-03-01",
		Category:        models.CategoryEntertainment,
	}}

	repo.On("LoadSubscriptions", mock.Anything, "user1").Return(existing, nil).Once()
	repo.On("SaveSubscriptions", mock.Anything, "user1",
		mock.MatchedBy(func(subs []models.Subscription) bool {
			return len(subs) == 1 &&
				subs[0].NextPaymentDate == "2024-04-01" &&
				len(subs[0].PaymentHistory) == 1 &&
				subs[0].PaymentHistory[0].Date == "2024-03-01"
		})).Return(nil).Once()
	cache.On("Invalidate", "subscriptions:user1").Return(nil).Once()
	cache.On("Invalidate", "summary:user1").Return(nil).Once()

	updated, record, err := svc.MarkPaid(context.Background(), "user1", "sub-1", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "2024-04-01", updated.NextPaymentDate)
	assert.Equal(t, "2024-03-01", record.Date)
	assert.Equal(t, 9.99, record.Amount)

	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestSubscriptionService_MarkPaid_NotFound(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := NewSubscriptionService(repo, cache, time.Hour, newNoopLogger())

	repo.On("LoadSubscriptions", mock.Anything, "user1").
		Return([]models.Subscription{}, nil).Once()

	_, _, err := svc.MarkPaid(context.Background(), "user1", "missing", time.Now())
	assert.ErrorIs(t, err, storage.ErrSubscriptionNotFound)

	repo.AssertExpectations(t)
}

func TestSubscriptionService_Remove_NotFound(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := NewSubscriptionService(repo, cache, time.Hour, newNoopLogger())

	repo.On("LoadSubscriptions", mock.Anything, "user1").
		Return([]models.Subscription{{ID: "other"}}, nil).Once()

	err := svc.Remove(context.Background(), "user1", "missing")
	assert.ErrorIs(t, err, storage.ErrSubscriptionNotFound)

	repo.AssertExpectations(t)
}

func TestSubscriptionService_List_Search(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := NewSubscriptionService(repo, cache, time.Hour, newNoopLogger())

	subs := []models.Subscription{
		{ID: "1", Name: "Netflix"},
		{ID: "2", Name: "Net Insurance"},
		{ID: "3", Name: "Spotify"},
	}
	cache.On("Get", "subscriptions:user1", mock.Anything).Return(false, nil).Once()
	repo.On("LoadSubscriptions", mock.Anything, "user1").Return(subs, nil).Once()
	cache.On("Set", "subscriptions:user1", mock.Anything, time.Hour).Return(nil).Once()

	got, err := svc.List(context.Background(), "user1", "net")
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "Netflix", got[0].Name)
	assert.Equal(t, "Net Insurance", got[1].Name)

	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestSubscriptionService_List_CacheHit(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := NewSubscriptionService(repo, cache, time.Hour, newNoopLogger())

	cached := []models.Subscription{{ID: "1", Name: "Netflix"}}
	cache.On("Get", "subscriptions:user1", mock.Anything).
		Run(func(args mock.Arguments) {
			out := args.Get(1).(*[]models.Subscription)
			*out = cached
		}).Return(true, nil).Once()

	got, err := svc.List(context.Background(), "user1", "")
	require.NoError(t, err)
	assert.Equal(t, cached, got)

	// Репозиторий не трогается при попадании в кеш.
	repo.AssertNotCalled(t, "LoadSubscriptions", mock.Anything, mock.Anything)
	cache.AssertExpectations(t)
}

func TestSubscriptionService_Summary(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := NewSubscriptionService(repo, cache, time.Hour, newNoopLogger())

	subs := []models.Subscription{
		{ID: "1", Name: "Netflix", Price: 10, Currency: models.CurrencyUSD,
			Cycle: models.CycleMonthly, NextPaymentDate: "2024-06-15",
			Category: models.CategoryEntertainment},
		{ID: "2", Name: "Backup", Price: 120, Currency: models.CurrencyUSD,
			Cycle: models.CycleYearly, NextPaymentDate: "2024-06-03",
			Category: models.CategorySoftware},
	}
	cache.On("Get", "summary:user1", mock.Anything).Return(false, nil).Once()
	repo.On("LoadSubscriptions", mock.Anything, "user1").Return(subs, nil).Once()
	cache.On("Set", "summary:user1", mock.Anything, time.Hour).Return(nil).Once()

	got, err := svc.Summary(context.Background(), "user1")
	require.NoError(t, err)
	assert.Equal(t, 20.0, got.TotalByCurrency[models.CurrencyUSD])
	require.Len(t, got.ByCategory, 2)
	assert.Equal(t, models.CategoryEntertainment, got.ByCategory[0].Category)
	require.NotNil(t, got.NextUpcoming)
	assert.Equal(t, "2", got.NextUpcoming.ID)

	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestSubscriptionService_Update_KeepsHistory(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := NewSubscriptionService(repo, cache, time.Hour, newNoopLogger())

	history := []models.PaymentRecord{{ID: "rec-1", Date: "2024-02-01"}}
	existing := []models.Subscription{{
		ID: "sub-1", Name: "Netflix", Price: 9.99,
		Currency: models.CurrencyUSD, Cycle: models.CycleMonthly,
		NextPaymentDate: "2024-03-01", Category: models.CategoryEntertainment,
		PaymentHistory: history,
	}}

	repo.On("LoadSubscriptions", mock.Anything, "user1").Return(existing, nil).Once()
	repo.On("SaveSubscriptions", mock.Anything, "user1",
		mock.MatchedBy(func(subs []models.Subscription) bool {
			return len(subs) == 1 &&
				subs[0].ID == "sub-1" &&
				subs[0].Price == 12.99 &&
				len(subs[0].PaymentHistory) == 1
		})).Return(nil).Once()
	cache.On("Invalidate", "subscriptions:user1").Return(nil).Once()
	cache.On("Invalidate", "summary:user1").Return(nil).Once()

	req := validRequest()
	req.Price = 12.99

	got, err := svc.Update(context.Background(), "user1", "sub-1", req)
	require.NoError(t, err)
	assert.Equal(t, "sub-1", got.ID)
	assert.Equal(t, history, got.PaymentHistory)

	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestSubscriptionService_List_RepoError(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := NewSubscriptionService(repo, cache, time.Hour, newNoopLogger())

	cache.On("Get", "subscriptions:user1", mock.Anything).Return(false, nil).Once()
	repo.On("LoadSubscriptions", mock.Anything, "user1").
		Return(nil, errors.New("disk failure")).Once()

	_, err := svc.List(context.Background(), "user1", "")
	assert.Error(t, err)

	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}
