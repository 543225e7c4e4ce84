// AngelaMos | 2026
// templates.go

package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(
	template.ParseFS(templateFS, "templates/*.html"),
)

// Message is one of the outbound email kinds. Each kind knows its own
// subject line and template.
type Message interface {
	subject() string
	render() (string, error)
}

type VerificationEmail struct {
	Code string
}

func (m VerificationEmail) subject() string {
	return "Verify your email address"
}

func (m VerificationEmail) render() (string, error) {
	return renderTemplate("verify_email.html", m)
}

type PasswordResetEmail struct {
	Link string
}

func (m PasswordResetEmail) subject() string {
	return "Reset your password"
}

func (m PasswordResetEmail) render() (string, error) {
	return renderTemplate("reset_password.html", m)
}

func renderTemplate(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
