package notifier

import (
	"fmt"
	"net/smtp"

	"academy-svc/config"
	"academy-svc/kafka"

	"go.uber.org/zap"
)

// Mailer sends customer email for order events. It is best-effort: the
// order flow never waits on or fails because of it.
type Mailer struct {
	cfg    config.SMTP
	logger *zap.Logger
	// send is swapped out in tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func New(cfg config.SMTP, logger *zap.Logger) *Mailer {
	return &Mailer{cfg: cfg, logger: logger, send: smtp.SendMail}
}

func (m *Mailer) OrderApproved(evt kafka.Event) error {
	subject := fmt.Sprintf("Your order %s has been approved", evt.OrderID)
	body := fmt.Sprintf("Hi %s,\r\n\r\nYour order %s (%.2f) has been approved. You now have access to your courses.\r\n",
		evt.CustomerName, evt.OrderID, evt.TotalAmount)
	return m.mail(evt.CustomerEmail, subject, body)
}

func (m *Mailer) OrderCompleted(evt kafka.Event) error {
	subject := fmt.Sprintf("Payment received for order %s", evt.OrderID)
	body := fmt.Sprintf("Hi %s,\r\n\r\nWe received your payment of %.2f for order %s. Thank you!\r\n",
		evt.CustomerName, evt.TotalAmount, evt.OrderID)
	return m.mail(evt.CustomerEmail, subject, body)
}

func (m *Mailer) mail(to, subject, body string) error {
	if m.cfg.Host == "" {
		m.logger.Info("SMTP not configured, skipping notification", zap.String("to", to))
		return nil
	}

	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.cfg.From, to, subject, body))

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	addr := m.cfg.Host + ":" + m.cfg.Port
	if err := m.send(addr, auth, m.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}

	m.logger.Info("Notification sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
