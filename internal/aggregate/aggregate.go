// Package aggregate строит сводные представления по коллекции подписок:
// суммы в месячном эквиваленте по валютам и категориям, ближайшую оплату.
package aggregate

import (
	"math"

	"github.com/subtrackhq/subtrack/internal/billing"
	"github.com/subtrackhq/subtrack/internal/models"
)

// CategoryTotal — сумма месячных эквивалентов по одной категории.
type CategoryTotal struct {
	Category models.Category
	Total    float64
}

// TotalByCurrency суммирует месячные эквиваленты подписок по каждой
// валюте. Валюты без подписок в результат не попадают.
func TotalByCurrency(subs []models.Subscription) map[models.Currency]float64 {
	totals := make(map[models.Currency]float64)
	for _, sub := range subs {
		totals[sub.Currency] += billing.MonthlyEquivalent(sub.Price, sub.Cycle)
	}
	return totals
}

// TotalByCategory суммирует месячные эквиваленты по категориям в порядке
// их первого появления в коллекции. Каждая сумма округляется до двух
// знаков; нулевые категории исключаются.
func TotalByCategory(subs []models.Subscription) []CategoryTotal {
	totals := make(map[models.Category]float64)
	var order []models.Category
	for _, sub := range subs {
		if _, seen := totals[sub.Category]; !seen {
			order = append(order, sub.Category)
		}
		totals[sub.Category] = unsafeMixedCurrencySum(totals[sub.Category], sub)
	}

	result := make([]CategoryTotal, 0, len(order))
	for _, cat := range order {
		total := math.Round(totals[cat]*100) / 100
		if total > 0 {
			result = append(result, CategoryTotal{Category: cat, Total: total})
		}
	}
	return result
}

// unsafeMixedCurrencySum прибавляет месячный эквивалент подписки к acc
// без пересчёта курса: USD, EUR и TRY складываются как числа. Унаследованное
// упрощение; корректная реализация потребует разбивку категорий по валютам.
func unsafeMixedCurrencySum(acc float64, sub models.Subscription) float64 {
	return acc + billing.MonthlyEquivalent(sub.Price, sub.Cycle)
}

// NextUpcoming возвращает подписку с самой ранней датой списания.
// При равных датах побеждает более ранняя в коллекции; для пустой
// коллекции — nil. Сравнение строк YYYY-MM-DD совпадает с хронологией.
func NextUpcoming(subs []models.Subscription) *models.Subscription {
	var next *models.Subscription
	for i := range subs {
		if next == nil || subs[i].NextPaymentDate < next.NextPaymentDate {
			next = &subs[i]
		}
	}
	return next
}
