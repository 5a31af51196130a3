// Package notify delivers rentauth's outbound account mail over SMTP.
package notify

import (
	"context"
	"fmt"

	gomail "gopkg.in/gomail.v2"
)

// Config defines a public type used by rentauth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string

	// BaseURL is the public web root the mailed links point at, e.g.
	// "https://app.rentora.example". Paths are fixed by the web client.
	BaseURL string
}

// SMTPSender implements rentauth.NotificationSender over a gomail dialer.
type SMTPSender struct {
	config Config
	dialer *gomail.Dialer
}

// NewSMTPSender describes the newsmtpsender operation and its observable behavior.
//
// NewSMTPSender may return an error when input validation, dependency calls, or security checks fail.
// NewSMTPSender does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewSMTPSender(cfg Config) *SMTPSender {
	return &SMTPSender{
		config: cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// SendVerificationLink describes the sendverificationlink operation and its observable behavior.
//
// SendVerificationLink may return an error when input validation, dependency calls, or security checks fail.
// SendVerificationLink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *SMTPSender) SendVerificationLink(ctx context.Context, email, token string) error {
	link := fmt.Sprintf("%s/verify-email?token=%s", s.config.BaseURL, token)
	body := fmt.Sprintf(
		"Welcome to Rentora!\r\n\r\nPlease confirm your email address within 24 hours:\r\n\r\n%s\r\n", link)
	return s.send(ctx, email, "Confirm your email address", body)
}

// SendPasswordResetLink describes the sendpasswordresetlink operation and its observable behavior.
//
// SendPasswordResetLink may return an error when input validation, dependency calls, or security checks fail.
// SendPasswordResetLink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *SMTPSender) SendPasswordResetLink(ctx context.Context, email, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", s.config.BaseURL, token)
	body := fmt.Sprintf(
		"A password reset was requested for your account.\r\n\r\nThe link below is valid for one hour and can be used once:\r\n\r\n%s\r\n\r\nIf you did not request this, you can ignore this message.\r\n", link)
	return s.send(ctx, email, "Reset your password", body)
}

// SendWelcome describes the sendwelcome operation and its observable behavior.
//
// SendWelcome may return an error when input validation, dependency calls, or security checks fail.
// SendWelcome does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *SMTPSender) SendWelcome(ctx context.Context, email, name string) error {
	greeting := "Hello"
	if name != "" {
		greeting = "Hello " + name
	}
	body := fmt.Sprintf(
		"%s,\r\n\r\nYour identity verification is complete. You now have full access to Rentora.\r\n", greeting)
	return s.send(ctx, email, "You are fully verified", body)
}

func (s *SMTPSender) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	return s.dialer.DialAndSend(m)
}
