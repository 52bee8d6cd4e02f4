// Package mailer is the mail collaborator. Delivery is best-effort; callers
// that must not block send from a goroutine.
package mailer

import (
	"fmt"
	"net/smtp"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Mailer interface {
	Send(subject string, recipients []string, htmlBody string) error
}

type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// LoadConfig reads SMTP settings from the environment, loading .env first
// when running locally.
func LoadConfig() (*Config, error) {
	if os.Getenv("RENDER") == "" {
		if err := godotenv.Load(); err != nil {
			fmt.Println("Warning: .env file not loaded, fallback to OS env vars")
		}
	}

	config := &Config{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     os.Getenv("SMTP_PORT"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
	if config.From == "" {
		config.From = config.Username
	}
	if config.Host == "" || config.Port == "" {
		return nil, fmt.Errorf("SMTP configuration is incomplete")
	}
	return config, nil
}

type SMTPMailer struct {
	config *Config
}

func NewSMTPMailer(config *Config) *SMTPMailer {
	return &SMTPMailer{config: config}
}

func (m *SMTPMailer) Send(subject string, recipients []string, htmlBody string) error {
	auth := smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)

	headers := make(map[string]string)
	headers["From"] = m.config.From
	headers["To"] = strings.Join(recipients, ", ")
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var message strings.Builder
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n" + htmlBody)

	addr := m.config.Host + ":" + m.config.Port
	if err := smtp.SendMail(addr, auth, m.config.From, recipients, []byte(message.String())); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
