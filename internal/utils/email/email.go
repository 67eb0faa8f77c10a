package email

import (
	"fmt"
	"math"
	"net/smtp"
	"strings"
	"time"

	"github.com/fitgrow/fitgrow-backend/internal/config"
	"github.com/fitgrow/fitgrow-backend/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   func(e *email.Email, addr string, auth smtp.Auth) error
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// SendDailyDigest mails a user their totals for day against their goals
func (s *Sender) SendDailyDigest(to, username string, day time.Time, stats models.DailyStats, goals models.Goals) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Your FitGrow summary for %s", day.Format("Mon, Jan 2"))
	e.Text = []byte(DigestBody(username, stats, goals))

	// Send email
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := s.send(e, addr, auth); err != nil {
		s.logger.Errorf("Failed to send digest to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}

// DigestBody renders the plain-text digest
func DigestBody(username string, stats models.DailyStats, goals models.Goals) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nHere is how today went:\n\n", username)
	line := func(label string, value, goal float64, unit string) {
		fmt.Fprintf(&b, "  %-9s %s / %s %s (%d%%)\n", label, number(value), number(goal), unit, percent(value, goal))
	}
	line("Calories", stats.Calories, goals.Calories, "kcal")
	line("Steps", stats.Steps, goals.Steps, "steps")
	line("Water", stats.Water, goals.Water, "L")
	line("Sleep", stats.Sleep, goals.Sleep, "h")

	met := 0
	for _, pair := range [][2]float64{
		{stats.Calories, goals.Calories},
		{stats.Steps, goals.Steps},
		{stats.Water, goals.Water},
		{stats.Sleep, goals.Sleep},
	} {
		if pair[1] > 0 && pair[0] >= pair[1] {
			met++
		}
	}
	fmt.Fprintf(&b, "\nYou reached %d of 4 goals.\n", met)
	b.WriteString("\nKeep growing,\nFitGrow")
	return b.String()
}

func number(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}

// percent is capped at 100 like the dashboard progress bars
func percent(value, goal float64) int {
	if goal <= 0 {
		return 0
	}
	p := value / goal * 100
	if p > 100 {
		p = 100
	}
	if p < 0 {
		p = 0
	}
	return int(math.Round(p))
}
