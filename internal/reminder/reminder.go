// Package reminder отбирает подписки, о которых пора напомнить
// пользователю.
package reminder

import (
	"fmt"
	"time"

	"github.com/subtrackhq/subtrack/internal/lib/datemath"
	"github.com/subtrackhq/subtrack/internal/models"
)

// DefaultWindowDays — окно напоминаний по умолчанию.
const DefaultWindowDays = 3

// DueSoon возвращает подписки, до списания которых осталось от 0 до
// windowDays дней включительно. Просроченные (отрицательное число дней)
// не попадают. Порядок входной коллекции сохраняется; отбор выполняется
// один раз при загрузке данных, показ напоминания — забота вызывающего слоя.
func DueSoon(subs []models.Subscription, today time.Time, windowDays int) ([]models.Subscription, error) {
	const op = "reminder.DueSoon"
	var due []models.Subscription
	for _, sub := range subs {
		days, err := datemath.DaysUntil(sub.NextPaymentDate, today)
		if err != nil {
			return nil, fmt.Errorf("%s: subscription %s: %w", op, sub.ID, err)
		}
		if days >= 0 && days <= windowDays {
			due = append(due, sub)
		}
	}
	return due, nil
}
