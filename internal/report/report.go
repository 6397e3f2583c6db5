package report

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/subtrackhq/subtrack/internal/aggregate"
	"github.com/subtrackhq/subtrack/internal/ledger"
	"github.com/subtrackhq/subtrack/internal/lib/datemath"
	"github.com/subtrackhq/subtrack/internal/models"
)

// RenderSubscriptions печатает таблицу подписок с числом дней до списания.
func RenderSubscriptions(w io.Writer, subs []models.Subscription, today time.Time) {
	if len(subs) == 0 {
		fmt.Fprintln(w, "No subscriptions yet. Add one with: subtrack add")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"ID", "Name", "Category", "Price", "Cycle", "Next Payment", "Due In"})

	for _, sub := range subs {
		dueIn := "?"
		if days, err := datemath.DaysUntil(sub.NextPaymentDate, today); err == nil {
			switch {
			case days < 0:
				dueIn = text.FgRed.Sprintf("%d days ago", -days)
			case days == 0:
				dueIn = text.FgRed.Sprint("today")
			case days <= 3:
				dueIn = text.FgYellow.Sprintf("%d days", days)
			default:
				dueIn = fmt.Sprintf("%d days", days)
			}
		}
		t.AppendRow(table.Row{
			shortID(sub.ID),
			sub.Name,
			sub.Category,
			FormatAmount(sub.Price, sub.Currency),
			sub.Cycle,
			sub.NextPaymentDate,
			dueIn,
		})
	}

	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
	})
	t.Render()
}

// RenderSummary печатает сводку: месячные итоги по валютам, разбивку по
// категориям (в смешанных валютах) и ближайшее списание.
func RenderSummary(w io.Writer, totals map[models.Currency]float64, byCategory []aggregate.CategoryTotal, next *models.Subscription) {
	if len(totals) == 0 {
		fmt.Fprintln(w, "No subscriptions yet. Add one with: subtrack add")
		return
	}

	fmt.Fprintln(w, text.Bold.Sprint("Monthly totals"))
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Currency", "Per Month"})
	// Стабильный порядок валют вместо обхода map.
	for _, cur := range models.Currencies {
		if total, ok := totals[cur]; ok {
			t.AppendRow(table.Row{cur, FormatAmount(total, cur)})
		}
	}
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	t.Render()

	if len(byCategory) > 0 {
		fmt.Fprintln(w, text.Bold.Sprint("By category (mixed currencies)"))
		ct := table.NewWriter()
		ct.SetOutputMirror(w)
		ct.AppendHeader(table.Row{"Category", "Per Month"})
		for _, entry := range byCategory {
			ct.AppendRow(table.Row{entry.Category, fmt.Sprintf("%.2f", entry.Total)})
		}
		ct.SetStyle(table.StyleRounded)
		ct.Style().Format.Header = text.FormatDefault
		ct.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
		ct.Render()
	}

	if next != nil {
		fmt.Fprintf(w, "Next payment: %s (%s) on %s\n",
			next.Name, FormatAmount(next.Price, next.Currency), next.NextPaymentDate)
	}
}

// RenderHistory печатает ленту оплат, сгруппированную по месяцам.
func RenderHistory(w io.Writer, groups []ledger.MonthGroup) {
	if len(groups) == 0 {
		fmt.Fprintln(w, "No payment history yet. Mark subscriptions as paid to build your history log.")
		return
	}

	for _, group := range groups {
		fmt.Fprintln(w, text.Bold.Sprint(group.Label))
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.AppendHeader(table.Row{"Date", "Subscription", "Category", "Amount"})
		for _, record := range group.Records {
			t.AppendRow(table.Row{
				record.Date,
				record.SubscriptionName,
				record.Category,
				FormatAmount(record.Amount, record.Currency),
			})
		}
		t.SetStyle(table.StyleRounded)
		t.Style().Format.Header = text.FormatDefault
		t.SetColumnConfigs([]table.ColumnConfig{{Number: 4, Align: text.AlignRight}})
		t.Render()
	}
}

// RenderUpcoming печатает напоминание о ближайших списаниях.
func RenderUpcoming(w io.Writer, subs []models.Subscription, today time.Time, windowDays int) {
	if len(subs) == 0 {
		fmt.Fprintf(w, "Nothing due in the next %d days.\n", windowDays)
		return
	}

	fmt.Fprintf(w, "%s\n", text.FgYellow.Sprintf("You have %d upcoming payment(s):", len(subs)))
	for _, sub := range subs {
		days, err := datemath.DaysUntil(sub.NextPaymentDate, today)
		when := sub.NextPaymentDate
		if err == nil {
			switch days {
			case 0:
				when = "today"
			case 1:
				when = "tomorrow"
			default:
				when = fmt.Sprintf("in %d days (%s)", days, sub.NextPaymentDate)
			}
		}
		fmt.Fprintf(w, "  - %s: %s due %s\n",
			sub.Name, FormatAmount(sub.Price, sub.Currency), when)
	}
}

// RenderAnalysis печатает ответ AI-советника.
func RenderAnalysis(w io.Writer, result *models.AnalysisResult) {
	fmt.Fprintln(w, text.Bold.Sprint("Spending analysis"))
	fmt.Fprintf(w, "Estimated monthly total: %.2f\n", result.TotalMonthly)
	fmt.Fprintf(w, "Estimated yearly total:  %.2f\n", result.TotalYearly)
	fmt.Fprintf(w, "\n%s\n", result.Insight)
	if len(result.SavingsTips) > 0 {
		fmt.Fprintln(w, "\nTips:")
		for _, tip := range result.SavingsTips {
			fmt.Fprintf(w, "  - %s\n", tip)
		}
	}
}

// shortID обрезает UUID до первых восьми символов для компактных таблиц:
// команды принимают и полный, и сокращённый идентификатор.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
