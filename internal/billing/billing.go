// Package billing реализует пересчёт стоимости подписки к месячной базе
// и переход состояния «отмечено как оплачено».
package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/subtrackhq/subtrack/internal/lib/datemath"
	"github.com/subtrackhq/subtrack/internal/models"
)

// MonthlyEquivalent приводит цену за цикл к цене за месяц.
// Недельный цикл считается как 4 недели в месяце (не 4.33) — намеренное
// упрощение, сохранённое для совместимости выводимых сумм.
func MonthlyEquivalent(price float64, cycle models.BillingCycle) float64 {
	switch cycle {
	case models.CycleMonthly:
		return price
	case models.CycleYearly:
		return price / 12
	case models.CycleWeekly:
		return price * 4
	}
	// Закрытое множество циклов: сюда попадает только значение,
	// не прошедшее ParseBillingCycle на границе.
	panic(fmt.Sprintf("billing.MonthlyEquivalent: unknown billing cycle: %q", cycle))
}

// MarkPaid закрывает текущую дату списания подписки: формирует запись
// истории с датой, равной дате списания ДО перехода (не today), и
// снимком текущих суммы, валюты, названия и категории, затем продвигает
// NextPaymentDate на один цикл. Возвращает обновлённую подписку и запись
// вместе — вызывающая сторона фиксирует обе одним сохранением, поэтому
// сдвинутая дата без записи в истории (или наоборот) невозможна.
//
// today в самом переходе не участвует: оплату можно отметить раньше или
// позже срока без отказа. Параметр сохранён для тестируемости и
// возможной будущей проверки сроков.
func MarkPaid(sub models.Subscription, _ time.Time) (models.Subscription, models.PaymentRecord, error) {
	const op = "billing.MarkPaid"

	record := models.PaymentRecord{
		ID:               uuid.NewString(),
		Date:             sub.NextPaymentDate,
		Amount:           sub.Price,
		Currency:         sub.Currency,
		SubscriptionName: sub.Name,
		Category:         sub.Category,
	}

	next, err := datemath.AdvanceByCycle(sub.NextPaymentDate, sub.Cycle)
	if err != nil {
		return models.Subscription{}, models.PaymentRecord{}, fmt.Errorf("%s: %w", op, err)
	}

	// История копируется: прежние записи не трогаем, подписка на входе
	// остаётся неизменной.
	history := make([]models.PaymentRecord, len(sub.PaymentHistory), len(sub.PaymentHistory)+1)
	copy(history, sub.PaymentHistory)
	history = append(history, record)

	updated := sub
	updated.NextPaymentDate = next
	updated.PaymentHistory = history

	return updated, record, nil
}
