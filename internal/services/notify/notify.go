// Package services содержит отправку почтовых напоминаний о предстоящих
// списаниях.
package services

import (
	"fmt"
	"log/slog"
	"strings"

	smtplib "github.com/subtrackhq/subtrack/internal/lib/smtp"
	"github.com/subtrackhq/subtrack/internal/lib/sl"
	"github.com/subtrackhq/subtrack/internal/models"
)

// NotifyService формирует и отправляет письмо со списком подписок,
// до списания которых осталось не больше окна напоминаний.
type NotifyService struct {
	transport smtplib.TransportInterface
	log       *slog.Logger
}

// New создает новый экземпляр NotifyService.
func New(transport smtplib.TransportInterface, log *slog.Logger) *NotifyService {
	return &NotifyService{
		transport: transport,
		log:       log,
	}
}

// SendUpcoming отправляет на адрес to список ближайших списаний.
// Пустой список — не ошибка: письмо просто не отправляется.
func (s *NotifyService) SendUpcoming(to string, subs []models.Subscription) error {
	const op = "services.notify.SendUpcoming"

	if len(subs) == 0 {
		s.log.Info("no upcoming payments, skipping reminder email")
		return nil
	}

	var lines []string
	for _, sub := range subs {
		lines = append(lines, fmt.Sprintf("  - %s: %s%.2f due %s",
			sub.Name, models.CurrencySymbols[sub.Currency], sub.Price, sub.NextPaymentDate))
	}
	bodyText := fmt.Sprintf("Hello!\n\nYou have %d upcoming subscription payment(s):\n\n%s\n\nSubTrack",
		len(subs), strings.Join(lines, "\n"))

	if err := s.sendEmail([]string{to}, "Upcoming subscription payments", bodyText); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("sent reminder email", slog.String("to", to), slog.Int("count", len(subs)))
	return nil
}

func (s *NotifyService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", sl.Err(err))
		return err
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		s.log.Error("failed to open DATA stream", sl.Err(err))
		return err
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write message body", sl.Err(err))
		return err
	}
	if err := w.Close(); err != nil {
		s.log.Error("failed to close DATA stream", sl.Err(err))
		return err
	}
	return client.Quit()
}
