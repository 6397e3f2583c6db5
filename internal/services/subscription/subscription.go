// Package services содержит бизнес-логику для управления подписками
// и кешированием вычисленных представлений.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/subtrackhq/subtrack/internal/aggregate"
	"github.com/subtrackhq/subtrack/internal/billing"
	"github.com/subtrackhq/subtrack/internal/ledger"
	"github.com/subtrackhq/subtrack/internal/lib/datemath"
	"github.com/subtrackhq/subtrack/internal/lib/sl"
	"github.com/subtrackhq/subtrack/internal/models"
	"github.com/subtrackhq/subtrack/internal/reminder"
	"github.com/subtrackhq/subtrack/internal/storage"
)

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// Summary — сводка расходов пользователя в месячном эквиваленте.
type Summary struct {
	TotalByCurrency map[models.Currency]float64 `json:"total_by_currency"`
	ByCategory      []aggregate.CategoryTotal   `json:"by_category"`
	NextUpcoming    *models.Subscription        `json:"next_upcoming,omitempty"`
}

// SubscriptionService реализует бизнес-логику работы с подписками.
// Все операции читают коллекцию пользователя целиком и фиксируют
// результат одним сохранением.
type SubscriptionService struct {
	repo     storage.Repository
	cache    Cache
	cacheTTL time.Duration
	log      *slog.Logger
	validate *validator.Validate
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(repo storage.Repository, cache Cache, cacheTTL time.Duration, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      log,
		validate: validator.New(),
	}
}

// Add создает новую подписку пользователя и возвращает её.
func (s *SubscriptionService) Add(ctx context.Context, userID string, req models.DummySubscription) (*models.Subscription, error) {
	const op = "services.subscription.Add"

	sub, err := s.buildSubscription(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sub.ID = uuid.NewString()

	subs, err := s.repo.LoadSubscriptions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	subs = append(subs, *sub)
	if err := s.repo.SaveSubscriptions(ctx, userID, subs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("created new subscription",
		slog.String("id", sub.ID), slog.String("name", sub.Name))
	s.invalidate(userID)
	return sub, nil
}

// Update замещает данные подписки, сохраняя её идентификатор и историю.
func (s *SubscriptionService) Update(ctx context.Context, userID, id string, req models.DummySubscription) (*models.Subscription, error) {
	const op = "services.subscription.Update"

	updated, err := s.buildSubscription(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	subs, err := s.repo.LoadSubscriptions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	idx := findByID(subs, id)
	if idx < 0 {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrSubscriptionNotFound)
	}

	updated.ID = subs[idx].ID
	updated.PaymentHistory = subs[idx].PaymentHistory
	subs[idx] = *updated

	if err := s.repo.SaveSubscriptions(ctx, userID, subs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("updated subscription", slog.String("id", id))
	s.invalidate(userID)
	return updated, nil
}

// Remove удаляет подписку целиком, включая её историю оплат.
// История после удаления не сохраняется — намеренное упрощение.
func (s *SubscriptionService) Remove(ctx context.Context, userID, id string) error {
	const op = "services.subscription.Remove"

	subs, err := s.repo.LoadSubscriptions(ctx, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	idx := findByID(subs, id)
	if idx < 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrSubscriptionNotFound)
	}
	subs = append(subs[:idx], subs[idx+1:]...)

	if err := s.repo.SaveSubscriptions(ctx, userID, subs); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("removed subscription", slog.String("id", id))
	s.invalidate(userID)
	return nil
}

// List возвращает подписки пользователя. Непустой search фильтрует по
// вхождению в название без учёта регистра. Полный список кешируется.
func (s *SubscriptionService) List(ctx context.Context, userID, search string) ([]models.Subscription, error) {
	const op = "services.subscription.List"

	var subs []models.Subscription
	cacheKey := s.listKey(userID)
	found, err := s.cache.Get(cacheKey, &subs)
	if err != nil {
		s.log.Warn("cache lookup failed", slog.String("key", cacheKey), sl.Err(err))
	}
	if !found {
		subs, err = s.repo.LoadSubscriptions(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := s.cache.Set(cacheKey, subs, s.cacheTTL); err != nil {
			s.log.Warn("failed to cache subscriptions", slog.String("key", cacheKey), sl.Err(err))
		}
	}

	if search == "" {
		return subs, nil
	}
	query := strings.ToLower(search)
	var filtered []models.Subscription
	for _, sub := range subs {
		if strings.Contains(strings.ToLower(sub.Name), query) {
			filtered = append(filtered, sub)
		}
	}
	return filtered, nil
}

// MarkPaid закрывает текущую дату списания подписки: продвигает дату на
// один цикл и добавляет запись истории. Обновлённая коллекция фиксируется
// одним сохранением, поэтому дата и запись не могут разойтись.
func (s *SubscriptionService) MarkPaid(ctx context.Context, userID, id string, today time.Time) (*models.Subscription, *models.PaymentRecord, error) {
	const op = "services.subscription.MarkPaid"

	subs, err := s.repo.LoadSubscriptions(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	idx := findByID(subs, id)
	if idx < 0 {
		return nil, nil, fmt.Errorf("%s: %w", op, storage.ErrSubscriptionNotFound)
	}

	updated, record, err := billing.MarkPaid(subs[idx], today)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	subs[idx] = updated

	if err := s.repo.SaveSubscriptions(ctx, userID, subs); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("marked subscription as paid",
		slog.String("id", id),
		slog.String("paid_date", record.Date),
		slog.String("next_payment_date", updated.NextPaymentDate))
	s.invalidate(userID)
	return &updated, &record, nil
}

// Summary возвращает сводку расходов пользователя. Результат кешируется.
func (s *SubscriptionService) Summary(ctx context.Context, userID string) (*Summary, error) {
	const op = "services.subscription.Summary"

	var summary Summary
	cacheKey := s.summaryKey(userID)
	found, err := s.cache.Get(cacheKey, &summary)
	if err != nil {
		s.log.Warn("cache lookup failed", slog.String("key", cacheKey), sl.Err(err))
	}
	if found {
		return &summary, nil
	}

	subs, err := s.repo.LoadSubscriptions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	summary = Summary{
		TotalByCurrency: aggregate.TotalByCurrency(subs),
		ByCategory:      aggregate.TotalByCategory(subs),
		NextUpcoming:    aggregate.NextUpcoming(subs),
	}
	if err := s.cache.Set(cacheKey, summary, s.cacheTTL); err != nil {
		s.log.Warn("failed to cache summary", slog.String("key", cacheKey), sl.Err(err))
	}
	return &summary, nil
}

// History возвращает общую ленту оплат, сгруппированную по месяцам.
func (s *SubscriptionService) History(ctx context.Context, userID string) ([]ledger.MonthGroup, error) {
	const op = "services.subscription.History"

	subs, err := s.repo.LoadSubscriptions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ledger.GroupByMonth(ledger.AllRecords(subs)), nil
}

// DueSoon возвращает подписки, до списания которых осталось от 0 до
// windowDays дней включительно.
func (s *SubscriptionService) DueSoon(ctx context.Context, userID string, today time.Time, windowDays int) ([]models.Subscription, error) {
	const op = "services.subscription.DueSoon"

	subs, err := s.repo.LoadSubscriptions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	due, err := reminder.DueSoon(subs, today, windowDays)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return due, nil
}

// Export возвращает коллекцию пользователя как JSON-документ — в той же
// форме, в какой она хранится.
func (s *SubscriptionService) Export(ctx context.Context, userID string) ([]byte, error) {
	const op = "services.subscription.Export"

	subs, err := s.repo.LoadSubscriptions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	data, err := json.MarshalIndent(subs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return data, nil
}

// buildSubscription валидирует входные данные и собирает подписку
// с проверенными перечислениями и датой.
func (s *SubscriptionService) buildSubscription(req models.DummySubscription) (*models.Subscription, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	currency, err := models.ParseCurrency(req.Currency)
	if err != nil {
		return nil, err
	}
	cycle, err := models.ParseBillingCycle(req.Cycle)
	if err != nil {
		return nil, err
	}
	category, err := models.ParseCategory(req.Category)
	if err != nil {
		return nil, err
	}
	if _, err := datemath.ParseDate(req.NextPaymentDate, time.Local); err != nil {
		return nil, err
	}
	return &models.Subscription{
		Name:            req.Name,
		Price:           req.Price,
		Currency:        currency,
		Cycle:           cycle,
		NextPaymentDate: req.NextPaymentDate,
		Category:        category,
		Description:     req.Description,
		LogoURL:         req.LogoURL,
		AccountEmail:    req.AccountEmail,
		AccountPassword: req.AccountPassword,
	}, nil
}

func (s *SubscriptionService) listKey(userID string) string {
	return fmt.Sprintf("subscriptions:%s", userID)
}

func (s *SubscriptionService) summaryKey(userID string) string {
	return fmt.Sprintf("summary:%s", userID)
}

func (s *SubscriptionService) invalidate(userID string) {
	for _, key := range []string{s.listKey(userID), s.summaryKey(userID)} {
		if err := s.cache.Invalidate(key); err != nil {
			s.log.Warn("failed to invalidate cache", slog.String("key", key), sl.Err(err))
		}
	}
}

func findByID(subs []models.Subscription, id string) int {
	for i := range subs {
		if subs[i].ID == id {
			return i
		}
	}
	return -1
}
