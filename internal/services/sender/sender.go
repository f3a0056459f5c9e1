// Package sender renders and delivers the queued account emails over
// SMTP.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/teamplaymate/coaching-backend/internal/lib/sl"
	"github.com/teamplaymate/coaching-backend/internal/models"
)

// Transport abstracts the SMTP connection so tests can stub delivery.
type Transport interface {
	Connect() (*smtp.Client, error)
	From() string
}

// SenderService consumes notification messages and sends them as mail.
type SenderService struct {
	transport Transport
	log       *slog.Logger
}

// NewSenderService creates a sender over the given transport.
func NewSenderService(transport Transport, log *slog.Logger) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendWelcome delivers the post-registration welcome email.
func (s *SenderService) SendWelcome(body []byte) error {
	var message models.WelcomeMessage
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal welcome message", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Welcome to TeamPlayMate"
	bodyText := fmt.Sprintf("Hi %s!\n\nYour coaching account is ready. "+
		"Log in and set up your first team to get started.\n\nThe TeamPlayMate team",
		firstName(message.Name))

	return s.sendEmail([]string{message.Email}, subject, bodyText)
}

// SendPasswordReset delivers the one-time reset code. The code expires
// ten minutes after it was issued.
func (s *SenderService) SendPasswordReset(body []byte) error {
	var message models.PasswordResetMessage
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal reset message", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Your password reset code"
	bodyText := fmt.Sprintf("Hi %s!\n\nYour password reset code is: %s\n\n"+
		"The code is valid for 10 minutes. If you did not request a reset, "+
		"you can ignore this email.",
		firstName(message.Name), message.Code)

	return s.sendEmail([]string{message.Email}, subject, bodyText)
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	const op = "sender.sendEmail"

	msg := strings.Join([]string{
		"From: " + s.transport.From(),
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
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = client.Quit()
	}()

	if err := client.Mail(s.transport.From()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		_ = w.Close()
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("email sent", slog.String("subject", subject))
	return nil
}

func firstName(full string) string {
	if i := strings.IndexByte(full, ' '); i > 0 {
		return full[:i]
	}
	return full
}
