package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/subtrackhq/subtrack/internal/advisor"
	"github.com/subtrackhq/subtrack/internal/lib/sl"
	"github.com/subtrackhq/subtrack/internal/lib/smtp"
	"github.com/subtrackhq/subtrack/internal/models"
	"github.com/subtrackhq/subtrack/internal/report"
	notifyservice "github.com/subtrackhq/subtrack/internal/services/notify"
	"github.com/subtrackhq/subtrack/internal/storage"
)

func (a *App) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "subtrack",
		Short:         "Track recurring subscription payments",
		Long:          "SubTrack records recurring payments, shows aggregate spending, reminds about upcoming charges and keeps a history of completed payments.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		a.addCmd(),
		a.listCmd(),
		a.updateCmd(),
		a.removeCmd(),
		a.paidCmd(),
		a.summaryCmd(),
		a.historyCmd(),
		a.upcomingCmd(),
		a.adviseCmd(),
		a.suggestCategoryCmd(),
		a.exportCmd(),
		a.registerCmd(),
		a.loginCmd(),
		a.logoutCmd(),
	)
	return root
}

// subscriptionFlags объявляет общие флаги команд add и update.
func subscriptionFlags(cmd *cobra.Command, req *models.DummySubscription) {
	cmd.Flags().StringVar(&req.Name, "name", "", "service name")
	cmd.Flags().Float64Var(&req.Price, "price", 0, "price per billing cycle")
	cmd.Flags().StringVar(&req.Currency, "currency", string(models.CurrencyUSD), "currency: USD, EUR or TRY")
	cmd.Flags().StringVar(&req.Cycle, "cycle", string(models.CycleMonthly), "billing cycle: Weekly, Monthly or Yearly")
	cmd.Flags().StringVar(&req.NextPaymentDate, "date", "", "next payment date, YYYY-MM-DD")
	cmd.Flags().StringVar(&req.Category, "category", "", "category: Entertainment, Utilities, Software, Fitness, Food or Other")
	cmd.Flags().StringVar(&req.Description, "description", "", "free-form description")
	cmd.Flags().StringVar(&req.LogoURL, "logo-url", "", "logo image URL")
	cmd.Flags().StringVar(&req.AccountEmail, "account-email", "", "account email for this service")
	cmd.Flags().StringVar(&req.AccountPassword, "account-password", "", "account password for this service")
}

func (a *App) addCmd() *cobra.Command {
	var req models.DummySubscription
	var suggest bool
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a subscription",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.Category == "" {
				req.Category = string(models.CategoryOther)
				if suggest {
					req.Category = string(a.suggestCategory(cmd, req.Name))
				}
			}
			sub, err := a.subs.Add(cmd.Context(), a.auth.CurrentUserID(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s), next payment %s\n",
				sub.Name, sub.ID, sub.NextPaymentDate)
			return nil
		},
	}
	subscriptionFlags(cmd, &req)
	cmd.Flags().BoolVar(&suggest, "suggest", false, "ask the AI advisor to pick a category")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func (a *App) listCmd() *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List subscriptions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			userID := a.auth.CurrentUserID()
			subs, err := a.subs.List(ctx, userID, search)
			if err != nil {
				return err
			}
			today := time.Now()
			report.RenderSubscriptions(cmd.OutOrStdout(), subs, today)

			// Напоминание показывается один раз за загрузку данных,
			// как и в исходном приложении.
			due, err := a.subs.DueSoon(ctx, userID, today, a.cfg.ReminderWindowDays)
			if err == nil && len(due) > 0 {
				report.RenderUpcoming(cmd.OutOrStdout(), due, today, a.cfg.ReminderWindowDays)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "filter by name substring")
	return cmd
}

func (a *App) updateCmd() *cobra.Command {
	var req models.DummySubscription
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a subscription (payment history is preserved)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID := a.auth.CurrentUserID()
			id, err := a.resolveID(cmd, userID, args[0])
			if err != nil {
				return err
			}
			if req.Category == "" {
				req.Category = string(models.CategoryOther)
			}
			sub, err := a.subs.Update(cmd.Context(), userID, id, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s, next payment %s\n", sub.Name, sub.NextPaymentDate)
			return nil
		},
	}
	subscriptionFlags(cmd, &req)
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func (a *App) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a subscription and its payment history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID := a.auth.CurrentUserID()
			id, err := a.resolveID(cmd, userID, args[0])
			if err != nil {
				return err
			}
			if err := a.subs.Remove(cmd.Context(), userID, id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Removed.")
			return nil
		},
	}
}

func (a *App) paidCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paid <id>",
		Short: "Mark a subscription as paid and advance its due date",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID := a.auth.CurrentUserID()
			id, err := a.resolveID(cmd, userID, args[0])
			if err != nil {
				return err
			}
			sub, record, err := a.subs.MarkPaid(cmd.Context(), userID, id, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded payment of %s for %s on %s; next payment %s\n",
				report.FormatAmount(record.Amount, record.Currency),
				sub.Name, record.Date, sub.NextPaymentDate)
			return nil
		},
		Args: cobra.ExactArgs(1),
	}
}

func (a *App) summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show monthly spending totals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			summary, err := a.subs.Summary(cmd.Context(), a.auth.CurrentUserID())
			if err != nil {
				return err
			}
			report.RenderSummary(cmd.OutOrStdout(), summary.TotalByCurrency, summary.ByCategory, summary.NextUpcoming)
			return nil
		},
	}
}

func (a *App) historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show payment history grouped by month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			groups, err := a.subs.History(cmd.Context(), a.auth.CurrentUserID())
			if err != nil {
				return err
			}
			report.RenderHistory(cmd.OutOrStdout(), groups)
			return nil
		},
	}
}

func (a *App) upcomingCmd() *cobra.Command {
	var window int
	var notifyTo string
	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "Show payments due within the reminder window",
		RunE: func(cmd *cobra.Command, _ []string) error {
			today := time.Now()
			due, err := a.subs.DueSoon(cmd.Context(), a.auth.CurrentUserID(), today, window)
			if err != nil {
				return err
			}
			report.RenderUpcoming(cmd.OutOrStdout(), due, today, window)

			if notifyTo != "" {
				if a.cfg.SMTP.Host == "" {
					return errors.New("smtp is not configured, set smtp host in config")
				}
				transport := smtp.NewTransport(a.cfg.SMTP, a.log)
				notify := notifyservice.New(transport, a.log)
				return notify.SendUpcoming(notifyTo, due)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&window, "window", a.cfg.ReminderWindowDays, "lookahead window in days")
	cmd.Flags().StringVar(&notifyTo, "notify", "", "also send the list to this email address")
	return cmd
}

func (a *App) adviseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "advise",
		Short: "Ask the AI advisor to analyze your spending",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			subs, err := a.subs.List(ctx, a.auth.CurrentUserID(), "")
			if err != nil {
				return err
			}
			if len(subs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No data to analyze. Add subscriptions first.")
				return nil
			}
			adv, err := advisor.New(ctx, a.cfg.Advisor.Model, a.cfg.Advisor.RequestsPerMinute, a.log)
			if err != nil {
				return err
			}
			reqCtx, cancel := contextWithTimeout(ctx, a.cfg.Advisor.Timeout)
			defer cancel()
			result, err := adv.Analyze(reqCtx, subs)
			if err != nil {
				return err
			}
			report.RenderAnalysis(cmd.OutOrStdout(), result)
			return nil
		},
	}
}

func (a *App) suggestCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest-category <name>",
		Short: "Ask the AI advisor to categorize a service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), a.suggestCategory(cmd, args[0]))
			return nil
		},
	}
}

func (a *App) exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export subscriptions as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := a.subs.Export(cmd.Context(), a.auth.CurrentUserID())
			if err != nil {
				return err
			}
			if out == "" {
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			if err := os.WriteFile(out, data, 0o600); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output file (default: stdout)")
	return cmd
}

func (a *App) registerCmd() *cobra.Command {
	var req models.DummyUser
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a local account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := a.auth.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s. Log in with: subtrack login --username %s\n",
				user.Username, user.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Username, "username", "", "unique username")
	cmd.Flags().StringVar(&req.Password, "password", "", "password, 8+ characters")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *App) loginCmd() *cobra.Command {
	var username, pass string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Open a local session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.auth.Login(cmd.Context(), username, pass); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", username)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "username")
	cmd.Flags().StringVar(&pass, "password", "", "password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Close the current session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.auth.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out, back to the local profile.")
			return nil
		},
	}
}

// resolveID принимает полный идентификатор подписки либо его уникальный
// префикс (таблицы показывают первые восемь символов).
func (a *App) resolveID(cmd *cobra.Command, userID, arg string) (string, error) {
	subs, err := a.subs.List(cmd.Context(), userID, "")
	if err != nil {
		return "", err
	}
	var matches []string
	for _, sub := range subs {
		if sub.ID == arg {
			return arg, nil
		}
		if strings.HasPrefix(sub.ID, arg) {
			matches = append(matches, sub.ID)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", fmt.Errorf("%w: %s", storage.ErrSubscriptionNotFound, arg)
	default:
		return "", fmt.Errorf("ambiguous id prefix %q matches %d subscriptions", arg, len(matches))
	}
}

// suggestCategory спрашивает советника; при любой ошибке возвращает Other,
// чтобы подсказка не мешала добавлению.
func (a *App) suggestCategory(cmd *cobra.Command, name string) models.Category {
	adv, err := advisor.New(cmd.Context(), a.cfg.Advisor.Model, a.cfg.Advisor.RequestsPerMinute, a.log)
	if err != nil {
		a.log.Warn("advisor unavailable", sl.Err(err))
		return models.CategoryOther
	}
	ctx, cancel := contextWithTimeout(cmd.Context(), a.cfg.Advisor.Timeout)
	defer cancel()
	return adv.SuggestCategory(ctx, name)
}
