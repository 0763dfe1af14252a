package email

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/mbaxter/cashflow-service/internal/config"
	"github.com/mbaxter/cashflow-service/internal/models"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendBillReminder sends a reminder for upcoming scheduled bills
func (s *Sender) SendBillReminder(to string, bills []models.UpcomingItem) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Upcoming Bill Reminder"

	body := "Hello,\n\nThe following bills are coming up:\n\n"
	for _, bill := range bills {
		body += fmt.Sprintf("  %s — %s due on %s\n", bill.Name, bill.Amount.StringFixed(2), bill.Date)
	}
	body += "\nPlease ensure sufficient funds are available in your account.\n"
	body += "\nBest regards,\nCashflow Service"
	e.Text = []byte(body)

	if err := s.send(e); err != nil {
		s.logger.Errorf("Failed to send reminder to %s: %v", to, err)
		return fmt.Errorf("failed to send reminder: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}

// SendLowBalanceNotice warns that the projected balance dips below the
// configured threshold
func (s *Sender) SendLowBalanceNotice(to string, projected, threshold decimal.Decimal) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Low Balance Warning"

	body := "Hello,\n\n"
	body += fmt.Sprintf(
		"Your projected balance falls to %s, below your alert threshold of %s.\n"+
			"Consider moving an upcoming expense or adding funds.\n",
		projected.StringFixed(2), threshold.StringFixed(2),
	)
	body += "\nBest regards,\nCashflow Service"
	e.Text = []byte(body)

	if err := s.send(e); err != nil {
		s.logger.Errorf("Failed to send low balance notice to %s: %v", to, err)
		return fmt.Errorf("failed to send low balance notice: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}

func (s *Sender) send(e *email.Email) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	return e.Send(addr, auth)
}
