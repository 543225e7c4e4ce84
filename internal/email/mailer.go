// AngelaMos | 2026
// mailer.go

package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"github.com/BuildAppolis/Nexus-Forge/internal/config"
	"github.com/BuildAppolis/Nexus-Forge/internal/core"
)

const (
	dialTimeout = 8 * time.Second
	sendTimeout = 15 * time.Second
)

// Mailer delivers transactional email over SMTP with STARTTLS. In mock
// mode nothing leaves the process; the rendered content is logged so
// local flows can be completed by reading the log.
type Mailer struct {
	cfg    config.EmailConfig
	logger *slog.Logger
}

func NewMailer(cfg config.EmailConfig, logger *slog.Logger) *Mailer {
	return &Mailer{cfg: cfg, logger: logger}
}

func (m *Mailer) Send(ctx context.Context, to string, msg Message) error {
	body, err := msg.render()
	if err != nil {
		return err
	}

	if m.cfg.Mock {
		attrs := []any{"to", to, "subject", msg.subject()}
		switch v := msg.(type) {
		case VerificationEmail:
			attrs = append(attrs, "code", v.Code)
		case PasswordResetEmail:
			attrs = append(attrs, "link", v.Link)
		}
		m.logger.Info("mock email send", attrs...)
		return nil
	}

	raw := m.buildMIME(to, msg.subject(), body)

	if err := m.sendSMTP(ctx, to, raw); err != nil {
		return fmt.Errorf("%w: smtp send to %s: %v", core.ErrTransport, to, err)
	}

	m.logger.Info("email sent", "to", to, "subject", msg.subject())
	return nil
}

func (m *Mailer) buildMIME(to, subject, htmlBody string) []byte {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("From: %s\r\n", m.cfg.Sender))
	b.WriteString(fmt.Sprintf("To: %s\r\n", to))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}

func (m *Mailer) sendSMTP(ctx context.Context, to string, raw []byte) error {
	addr := net.JoinHostPort(m.cfg.Host, fmt.Sprintf("%d", m.cfg.Port))

	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}

	deadline := time.Now().Add(sendTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return fmt.Errorf("set deadline: %w", err)
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp client: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		tlsConfig := &tls.Config{ServerName: m.cfg.Host}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}

	if m.cfg.Username != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}

	// The configured sender may carry a display name; the envelope
	// wants the bare address.
	from := m.cfg.Sender
	if addr, err := mail.ParseAddress(m.cfg.Sender); err == nil {
		from = addr.Address
	}

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := wc.Write(raw); err != nil {
		wc.Close()
		return fmt.Errorf("write body: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("close body: %w", err)
	}

	return client.Quit()
}
