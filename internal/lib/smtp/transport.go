// Package smtp implements the outbound mail transport used by the
// notification sender.
package smtp

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"

	"github.com/teamplaymate/coaching-backend/internal/config"
)

// Transport dials the SMTP server with STARTTLS and plain auth.
type Transport struct {
	cfg config.SMTP
}

// NewTransport creates a transport from the SMTP config section.
func NewTransport(cfg config.SMTP) *Transport {
	return &Transport{cfg: cfg}
}

// From returns the configured sender address.
func (t *Transport) From() string {
	return t.cfg.SMTPFrom
}

// Connect opens an authenticated SMTP client. The caller is
// responsible for Quit.
func (t *Transport) Connect() (*smtp.Client, error) {
	const op = "smtp.Connect"

	addr := net.JoinHostPort(t.cfg.SMTPHost, fmt.Sprintf("%d", t.cfg.SMTPPort))
	client, err := smtp.Dial(addr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if ok, _ := client.Extension("STARTTLS"); ok {
		tlsConfig := &tls.Config{ServerName: t.cfg.SMTPHost}
		if err := client.StartTLS(tlsConfig); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if t.cfg.SMTPUser != "" {
		auth := smtp.PlainAuth("", t.cfg.SMTPUser, t.cfg.SMTPPassword, t.cfg.SMTPHost)
		if err := client.Auth(auth); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return client, nil
}
