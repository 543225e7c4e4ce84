// AngelaMos | 2026
// mailer_test.go

package email

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuildAppolis/Nexus-Forge/internal/config"
)

func TestVerificationEmailRender(t *testing.T) {
	msg := VerificationEmail{Code: "12345678"}

	assert.Equal(t, "Verify your email address", msg.subject())

	body, err := msg.render()
	require.NoError(t, err)
	assert.Contains(t, body, "12345678")
	assert.Contains(t, body, "10 minutes")
}

func TestPasswordResetEmailRender(t *testing.T) {
	msg := PasswordResetEmail{
		Link: "https://app.example.com/reset-password/some-token",
	}

	assert.Equal(t, "Reset your password", msg.subject())

	body, err := msg.render()
	require.NoError(t, err)
	assert.Contains(t, body, "https://app.example.com/reset-password/some-token")
	assert.Contains(t, body, "2 hours")
}

func TestPasswordResetEmailEscapesLink(t *testing.T) {
	msg := PasswordResetEmail{
		Link: `https://app.example.com/reset"><script>alert(1)</script>`,
	}

	body, err := msg.render()
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")
}

func TestMockSendLogsContent(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	mailer := NewMailer(config.EmailConfig{Mock: true}, logger)

	err := mailer.Send(
		context.Background(),
		"alice@example.com",
		VerificationEmail{Code: "12345678"},
	)
	require.NoError(t, err)

	// Mock mode surfaces the code in the log so local flows can
	// complete without an SMTP server.
	log := buf.String()
	assert.Contains(t, log, "mock email send")
	assert.Contains(t, log, "alice@example.com")
	assert.Contains(t, log, "12345678")
}

func TestMockSendLogsResetLink(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	mailer := NewMailer(config.EmailConfig{Mock: true}, logger)

	err := mailer.Send(
		context.Background(),
		"alice@example.com",
		PasswordResetEmail{Link: "https://app.example.com/reset-password/tok"},
	)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "https://app.example.com/reset-password/tok")
}

func TestBuildMIME(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	mailer := NewMailer(config.EmailConfig{
		Sender: "noreply@example.com",
	}, logger)

	raw := string(mailer.buildMIME(
		"alice@example.com",
		"Verify your email address",
		"<p>hello</p>",
	))

	assert.Contains(t, raw, "From: noreply@example.com\r\n")
	assert.Contains(t, raw, "To: alice@example.com\r\n")
	assert.Contains(t, raw, "Subject: Verify your email address\r\n")
	assert.Contains(t, raw, "Content-Type: text/html")

	// Headers and body separated by a blank line.
	assert.True(t, strings.Contains(raw, "\r\n\r\n<p>hello</p>"))
}
