package notify

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/grocerymarts/backend/internal/config"
	"github.com/grocerymarts/backend/internal/models"
)

// Notifier sends customer-facing messages. Delivery is best effort: callers
// treat failures as non-fatal and never block a transaction on it.
type Notifier interface {
	Welcome(to, name string) error
	OrderConfirmed(to string, order *models.Order) error
	OrderCancelled(to string, order *models.Order) error
	ReturnUpdated(to string, ret *models.ReturnRequest) error
}

// NewNotifier returns an SMTP-backed notifier, or a no-op one when no SMTP
// host is configured.
func NewNotifier(cfg config.SMTPConfig, logger *logrus.Logger) Notifier {
	if cfg.Host == "" {
		logger.Info("SMTP not configured, email notifications disabled")
		return noopNotifier{}
	}
	return &smtpNotifier{cfg: cfg, logger: logger}
}

type smtpNotifier struct {
	cfg    config.SMTPConfig
	logger *logrus.Logger
}

func (n *smtpNotifier) send(to, subject, body string) error {
	e := email.NewEmail()
	e.From = n.cfg.From
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", n.cfg.Host, n.cfg.Port)
	var auth smtp.Auth
	if n.cfg.User != "" {
		auth = smtp.PlainAuth("", n.cfg.User, n.cfg.Pass, n.cfg.Host)
	}

	if err := e.Send(addr, auth); err != nil {
		n.logger.WithError(err).WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Warn("failed to send email")
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func (n *smtpNotifier) Welcome(to, name string) error {
	body := fmt.Sprintf("Hi %s,\n\nYour account has been created. Happy shopping!\n", name)
	return n.send(to, "Welcome to GroceryMarts", body)
}

func (n *smtpNotifier) OrderConfirmed(to string, order *models.Order) error {
	body := fmt.Sprintf(
		"Your order %s has been placed.\n\nSubtotal: %s\nCredits used: %s\nCash due: %s\n",
		order.OrderNumber, order.Subtotal, order.CreditsUsed, order.CashAmount)
	return n.send(to, fmt.Sprintf("Order %s confirmed", order.OrderNumber), body)
}

func (n *smtpNotifier) OrderCancelled(to string, order *models.Order) error {
	body := fmt.Sprintf(
		"Your order %s has been cancelled. Any credits used have been refunded to your balance.\n",
		order.OrderNumber)
	return n.send(to, fmt.Sprintf("Order %s cancelled", order.OrderNumber), body)
}

func (n *smtpNotifier) ReturnUpdated(to string, ret *models.ReturnRequest) error {
	body := fmt.Sprintf(
		"Your return request for %s (quantity %d) is now %s.\n",
		ret.ProductName, ret.Quantity, ret.Status)
	return n.send(to, "Return request update", body)
}

type noopNotifier struct{}

func (noopNotifier) Welcome(string, string) error                      { return nil }
func (noopNotifier) OrderConfirmed(string, *models.Order) error        { return nil }
func (noopNotifier) OrderCancelled(string, *models.Order) error        { return nil }
func (noopNotifier) ReturnUpdated(string, *models.ReturnRequest) error { return nil }
