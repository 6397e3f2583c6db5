// Package datemath реализует календарную арифметику над датами вида
// YYYY-MM-DD. Даты разбираются по полям и собираются в локальном
// календаре, а не через UTC-парсер: строка "2024-03-01", прочитанная как
// UTC-момент, в часовых поясах западнее Гринвича даёт предыдущий день.
package datemath

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/subtrackhq/subtrack/internal/models"
)

// Layout — формат хранения календарных дат.
const Layout = "2006-01-02"

// ParseDate разбирает строку YYYY-MM-DD в полночь локального времени loc.
// Некорректная дата (формат, нечисловые части, 30 февраля) — ошибка
// вызывающей стороны, возвращается с описанием.
func ParseDate(dateStr string, loc *time.Location) (time.Time, error) {
	const op = "datemath.ParseDate"
	parts := strings.Split(dateStr, "-")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("%s: %q is not a YYYY-MM-DD date", op, dateStr)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, fmt.Errorf("%s: %q is not a YYYY-MM-DD date: %w", op, dateStr, err)
		}
		nums[i] = n
	}
	t := time.Date(nums[0], time.Month(nums[1]), nums[2], 0, 0, 0, 0, loc)
	// time.Date нормализует переполнение полей, поэтому "2024-02-30"
	// молча стал бы 1 марта. Сверяем поля после сборки.
	if t.Year() != nums[0] || t.Month() != time.Month(nums[1]) || t.Day() != nums[2] {
		return time.Time{}, fmt.Errorf("%s: %q is not a valid calendar date", op, dateStr)
	}
	return t, nil
}

// FormatDate возвращает дату в формате YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(Layout)
}

// DaysUntil возвращает число календарных дней от today до dateStr:
// отрицательное для прошедших дат, 0 для сегодняшней, положительное для
// будущих. today усекается до полуночи своей локали; разница округляется,
// а не отбрасывается, чтобы 23- и 25-часовые сутки на переходах летнего
// времени не смещали результат.
func DaysUntil(dateStr string, today time.Time) (int, error) {
	const op = "datemath.DaysUntil"
	due, err := ParseDate(dateStr, today.Location())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	midnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	return int(math.Round(due.Sub(midnight).Hours() / 24)), nil
}

// AdvanceByCycle возвращает следующую дату списания: +7 дней для Weekly,
// +1 календарный месяц для Monthly, +1 календарный год для Yearly.
// Переполнение месяца следует нормализации time.AddDate: 31 января плюс
// месяц — 3 марта (2 марта в високосный год). Типичные даты списания
// (1–28 число) переносятся день в день.
func AdvanceByCycle(dateStr string, cycle models.BillingCycle) (string, error) {
	const op = "datemath.AdvanceByCycle"
	date, err := ParseDate(dateStr, time.Local)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	var next time.Time
	switch cycle {
	case models.CycleWeekly:
		next = date.AddDate(0, 0, 7)
	case models.CycleMonthly:
		next = date.AddDate(0, 1, 0)
	case models.CycleYearly:
		next = date.AddDate(1, 0, 0)
	default:
		return "", fmt.Errorf("%s: unknown billing cycle: %q", op, cycle)
	}
	return FormatDate(next), nil
}
