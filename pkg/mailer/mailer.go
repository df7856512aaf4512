package mailer

import (
	"fmt"
	"log"
	"mime/quotedprintable"
	"net/smtp"
	"os"
	"strings"
)

// Result reports the outcome of a send attempt. Send never returns an
// error value; callers inspect the result and log it.
type Result struct {
	Sent  bool   `json:"sent"`
	Error string `json:"error,omitempty"`
}

// Mailer is the outbound email channel.
type Mailer interface {
	Send(to, subject, htmlBody, textBody string) Result
}

// SMTPConfig holds the SMTP relay settings.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// ConfigFromEnv reads SMTP settings from environment variables.
func ConfigFromEnv() SMTPConfig {
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	return SMTPConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     port,
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
}

type smtpMailer struct {
	config SMTPConfig
}

func NewSMTPMailer(config SMTPConfig) Mailer {
	return &smtpMailer{config: config}
}

func (m *smtpMailer) Send(to, subject, htmlBody, textBody string) Result {
	if m.config.Host == "" {
		return Result{Sent: false, Error: "smtp not configured"}
	}

	msg := buildMessage(m.config.From, to, subject, htmlBody, textBody)
	addr := m.config.Host + ":" + m.config.Port
	auth := smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)

	if err := smtp.SendMail(addr, auth, m.config.From, []string{to}, msg); err != nil {
		return Result{Sent: false, Error: err.Error()}
	}
	return Result{Sent: true}
}

// buildMessage assembles a multipart/alternative MIME message with text and
// HTML parts.
func buildMessage(from, to, subject, htmlBody, textBody string) []byte {
	boundary := "=-procurement-alt-boundary"
	var b strings.Builder

	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	writePart(&b, boundary, "text/plain; charset=utf-8", textBody)
	writePart(&b, boundary, "text/html; charset=utf-8", htmlBody)
	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	return []byte(b.String())
}

func writePart(b *strings.Builder, boundary, contentType, body string) {
	fmt.Fprintf(b, "--%s\r\n", boundary)
	fmt.Fprintf(b, "Content-Type: %s\r\n", contentType)
	b.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")
	w := quotedprintable.NewWriter(b)
	if _, err := w.Write([]byte(body)); err != nil {
		log.Printf("mailer: encode body: %v", err)
	}
	w.Close()
	b.WriteString("\r\n")
}
