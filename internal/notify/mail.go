package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"bookline/pkg/config"
	"bookline/pkg/model"
)

// MailNotifier delivers reminders to a configured inbox over SMTP. It is
// selected by the reminder worker when SMTP settings are present.
type MailNotifier struct {
	dialer *gomail.Dialer
	from   string
	to     string
}

func NewMailNotifier(cfg *config.Config) *MailNotifier {
	return &MailNotifier{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:   cfg.SMTPFrom,
		to:     cfg.SMTPNotifyTo,
	}
}

func (n *MailNotifier) Notify(_ context.Context, booking *model.Booking, kind string) error {
	message := gomail.NewMessage()
	message.SetHeader("From", n.from)
	message.SetHeader("To", n.to)
	message.SetHeader("Subject", fmt.Sprintf("Upcoming booking in %s: %s", kind, booking.ClientName))
	message.SetBody("text/plain", fmt.Sprintf(
		"Booking %s for %s starts at %s.\nPhone: %s\n",
		booking.ID,
		booking.ClientName,
		booking.StartTime.Format("2006-01-02 15:04 MST"),
		booking.ClientPhone,
	))

	if err := n.dialer.DialAndSend(message); err != nil {
		return fmt.Errorf("failed to send reminder mail: %w", err)
	}
	return nil
}
