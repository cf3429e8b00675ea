// Package mailer provides outbound email delivery for TaskTrack. The auth
// plugin hands it a destination, subject, and rendered body; everything
// about transport lives here. Delivery is attempted exactly once -- the
// caller decides what to do when it fails.
package mailer

import (
	"context"
	"log/slog"

	"github.com/tasktrackhq/tasktrack/internal/config"
)

// Sender is the interface other plugins use to send email.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// New returns the Sender appropriate for the given config: a real SMTP
// sender when a host is configured, otherwise a log-only sender so
// development works without an SMTP server.
func New(cfg config.SMTPConfig) Sender {
	if cfg.Host == "" {
		slog.Warn("SMTP_HOST not set, outbound mail will be logged instead of sent")
		return &logSender{}
	}
	return &smtpSender{cfg: cfg}
}

// logSender writes messages to the log instead of delivering them.
type logSender struct{}

func (l *logSender) Send(ctx context.Context, to, subject, body string) error {
	slog.Info("mail (delivery disabled)",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.String("body", body),
	)
	return nil
}
