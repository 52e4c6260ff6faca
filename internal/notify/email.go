package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

type SMTPConfig struct {
	Host string
	Port string
	From string
}

// EmailSender renders events into plain-text mails. Without an SMTP host it
// only logs what it would have sent, which is enough for development.
type EmailSender struct {
	cfg    SMTPConfig
	logger *zap.Logger
}

func NewEmailSender(cfg SMTPConfig, logger *zap.Logger) *EmailSender {
	return &EmailSender{cfg: cfg, logger: logger}
}

func (s *EmailSender) Send(ctx context.Context, ev Event) error {
	if ev.Recipient == "" {
		return nil
	}

	subject, body := render(ev)

	if s.cfg.Host == "" {
		s.logger.Info("email (dry run)",
			zap.String("to", ev.Recipient),
			zap.String("subject", subject))
		return nil
	}

	msg := strings.Join([]string{
		"From: " + s.cfg.From,
		"To: " + ev.Recipient,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	addr := s.cfg.Host + ":" + s.cfg.Port
	return smtp.SendMail(addr, nil, s.cfg.From, []string{ev.Recipient}, []byte(msg))
}

func render(ev Event) (subject, body string) {
	name := ev.GuestName
	if name == "" {
		name = "Guest"
	}

	switch ev.Kind {
	case KindBookingCreated:
		subject = fmt.Sprintf("Booking %s received", ev.Reference)
		body = fmt.Sprintf("Dear %s,\n\nWe have received your booking %s for %s, %s to %s. Complete payment to confirm your stay.",
			name, ev.Reference, ev.RoomName,
			ev.CheckIn.Format("2 Jan 2006"), ev.CheckOut.Format("2 Jan 2006"))
	case KindBookingConfirmed:
		subject = fmt.Sprintf("Booking %s confirmed", ev.Reference)
		body = fmt.Sprintf("Dear %s,\n\nYour booking %s is confirmed. We look forward to hosting you from %s.",
			name, ev.Reference, ev.CheckIn.Format("2 Jan 2006"))
	case KindPaymentReceipt:
		subject = fmt.Sprintf("Payment received for booking %s", ev.Reference)
		body = fmt.Sprintf("Dear %s,\n\nWe received KES %d for booking %s. M-PESA receipt: %s.",
			name, ev.Amount, ev.Reference, ev.Receipt)
	case KindBookingCancelled:
		subject = fmt.Sprintf("Booking %s cancelled", ev.Reference)
		body = fmt.Sprintf("Dear %s,\n\nYour booking %s has been cancelled. Reason: %s.",
			name, ev.Reference, ev.Reason)
	default:
		subject = fmt.Sprintf("Update on booking %s", ev.Reference)
		body = fmt.Sprintf("Dear %s,\n\nThere is an update on your booking %s.", name, ev.Reference)
	}
	return subject, body
}
