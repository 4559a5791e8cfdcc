package email

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/hospiq/scheduling-api/pkg/logger"
)

// Service sends patient-facing booking notifications.
type Service interface {
	SendBookingConfirmation(ctx context.Context, to, patientName, doctorName string, startAt time.Time) error
	SendCancellation(ctx context.Context, to, patientName, doctorName string, startAt time.Time, reason string) error
	SendReschedule(ctx context.Context, to, patientName, doctorName string, oldStart, newStart time.Time) error
	SendCustom(ctx context.Context, to, subject, body string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPService returns a Service backed by a plain SMTP relay.
func NewSMTPService(cfg SMTPConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

func (s *smtpService) SendBookingConfirmation(_ context.Context, to, patientName, doctorName string, startAt time.Time) error {
	subject := "Your appointment is booked"
	body := fmt.Sprintf(
		"Hello %s,\n\nYour appointment with %s on %s has been booked.\n\nIf you cannot attend, please cancel or reschedule in advance.\n",
		patientName, doctorName, startAt.Format("Monday, 2 January 2006 at 15:04 MST"))
	return s.send(to, subject, body)
}

func (s *smtpService) SendCancellation(_ context.Context, to, patientName, doctorName string, startAt time.Time, reason string) error {
	subject := "Your appointment was cancelled"
	body := fmt.Sprintf(
		"Hello %s,\n\nYour appointment with %s on %s has been cancelled.\n",
		patientName, doctorName, startAt.Format("Monday, 2 January 2006 at 15:04 MST"))
	if reason != "" {
		body += fmt.Sprintf("\nReason: %s\n", reason)
	}
	return s.send(to, subject, body)
}

func (s *smtpService) SendReschedule(_ context.Context, to, patientName, doctorName string, oldStart, newStart time.Time) error {
	subject := "Your appointment was rescheduled"
	body := fmt.Sprintf(
		"Hello %s,\n\nYour appointment with %s has moved from %s to %s.\n",
		patientName, doctorName,
		oldStart.Format("Monday, 2 January 2006 at 15:04 MST"),
		newStart.Format("Monday, 2 January 2006 at 15:04 MST"))
	return s.send(to, subject, body)
}

func (s *smtpService) SendCustom(_ context.Context, to, subject, body string) error {
	return s.send(to, subject, body)
}

type logService struct {
	logger *logger.Logger
}

// NewLogService returns a Service that only logs, for environments
// without an SMTP relay.
func NewLogService(l *logger.Logger) Service {
	return &logService{logger: l}
}

func (s *logService) SendBookingConfirmation(_ context.Context, to, _, doctorName string, startAt time.Time) error {
	s.logger.Info("email suppressed: booking confirmation",
		"to", to, "doctor", doctorName, "start_at", startAt.Format(time.RFC3339))
	return nil
}

func (s *logService) SendCancellation(_ context.Context, to, _, doctorName string, startAt time.Time, reason string) error {
	s.logger.Info("email suppressed: cancellation",
		"to", to, "doctor", doctorName, "start_at", startAt.Format(time.RFC3339), "reason", reason)
	return nil
}

func (s *logService) SendReschedule(_ context.Context, to, _, doctorName string, oldStart, newStart time.Time) error {
	s.logger.Info("email suppressed: reschedule",
		"to", to, "doctor", doctorName,
		"old_start", oldStart.Format(time.RFC3339), "new_start", newStart.Format(time.RFC3339))
	return nil
}

func (s *logService) SendCustom(_ context.Context, to, subject, _ string) error {
	s.logger.Info("email suppressed: custom", "to", to, "subject", subject)
	return nil
}
