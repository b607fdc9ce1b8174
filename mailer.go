package auth

import (
	"context"
	"fmt"
	"net/smtp"
)

// SMTPConfig holds the configuration for the SMTP mail dispatcher
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func (c SMTPConfig) addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// SMTPMailer dispatches mail over plain SMTP
type SMTPMailer struct {
	config SMTPConfig
	logger Logger
}

// NewSMTPMailer creates a Mailer backed by net/smtp
func NewSMTPMailer(config SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		config: config,
		logger: defLogger{},
	}
}

func (m *SMTPMailer) WithLogger(logger Logger) *SMTPMailer {
	if logger != nil {
		m.logger = logger
	}
	return m
}

var _ Mailer = (*SMTPMailer)(nil)

// Send delivers a single message. The context deadline is honored before
// dialing, net/smtp itself does not take a context.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	auth := smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	msg := []byte(fmt.Sprintf("To: %s\r\nFrom: %s\r\nSubject: %s\r\n\r\n%s\r\n", to, m.config.From, subject, body))

	if err := smtp.SendMail(m.config.addr(), auth, m.config.From, []string{to}, msg); err != nil {
		m.logger.Error("smtp send to %s failed: %v", to, err)
		return err
	}

	m.logger.Debug("smtp send to %s ok: %s", to, subject)
	return nil
}

// LogMailer writes messages to the logger instead of dispatching them.
// Useful for development and tests.
type LogMailer struct {
	logger Logger
}

// NewLogMailer creates a Mailer that only logs
func NewLogMailer(logger Logger) *LogMailer {
	if logger == nil {
		logger = defLogger{}
	}
	return &LogMailer{logger: logger}
}

var _ Mailer = (*LogMailer)(nil)

func (m *LogMailer) Send(_ context.Context, to, subject, body string) error {
	m.logger.Info("mail (log only) to %s subject %q: %s", to, subject, body)
	return nil
}
