// Package ledger собирает историю оплат по всем подпискам в единую ленту
// и группирует её по месяцам для отображения.
package ledger

import (
	"sort"
	"time"

	"github.com/subtrackhq/subtrack/internal/lib/datemath"
	"github.com/subtrackhq/subtrack/internal/models"
)

// MonthGroup — записи одного календарного месяца под общим заголовком
// вида "January 2024".
type MonthGroup struct {
	Label   string
	Records []models.PaymentRecord
}

// AllRecords возвращает записи всех подписок, отсортированные по дате по
// убыванию (свежие первыми). Сортировка стабильная: записи с одинаковой
// датой сохраняют порядок конкатенации, поэтому повторный вызов на тех же
// данных даёт тот же результат.
func AllRecords(subs []models.Subscription) []models.PaymentRecord {
	var records []models.PaymentRecord
	for _, sub := range subs {
		records = append(records, sub.PaymentHistory...)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date > records[j].Date
	})
	return records
}

// GroupByMonth группирует записи по календарному месяцу их даты, сохраняя
// порядок первого появления группы. На уже отсортированном по убыванию
// входе группы идут от свежего месяца к старому.
func GroupByMonth(records []models.PaymentRecord) []MonthGroup {
	index := make(map[string]int)
	var groups []MonthGroup
	for _, record := range records {
		label := monthLabel(record.Date)
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, MonthGroup{Label: label})
		}
		groups[i].Records = append(groups[i].Records, record)
	}
	return groups
}

func monthLabel(dateStr string) string {
	date, err := datemath.ParseDate(dateStr, time.Local)
	if err != nil {
		// Записи создаются только из валидных дат списания; битая дата
		// в хранилище попадает в отдельную видимую группу, а не теряется.
		return "Unknown"
	}
	return date.Format("January 2006")
}
