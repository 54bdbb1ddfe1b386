// Package mailer delivers verification codes over SMTP.
package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Mailer sends a verification code to a recipient.
type Mailer interface {
	SendVerificationCode(ctx context.Context, to, code string) error
}

type smtpMailer struct {
	host   string
	port   int
	user   string
	pass   string
	from   string
	logger *zap.Logger
}

// NewSMTPMailer creates an SMTP-backed Mailer.
func NewSMTPMailer(host string, port int, user, pass, from string, logger *zap.Logger) Mailer {
	return &smtpMailer{
		host:   host,
		port:   port,
		user:   user,
		pass:   pass,
		from:   from,
		logger: logger.Named("Mailer"),
	}
}

func (m *smtpMailer) SendVerificationCode(ctx context.Context, to, code string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject("Your verification code")
	msg.SetBodyString(mail.TypeTextPlain,
		fmt.Sprintf("Your verification code is: %s\n\nThis code will expire in 10 minutes.\n", code))

	client, err := mail.NewClient(m.host,
		mail.WithPort(m.port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.user),
		mail.WithPassword(m.pass),
	)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	m.logger.Info("Verification code sent", zap.String("to", to))
	return nil
}

// logMailer logs codes instead of sending them. Used when SMTP is not
// configured (local development).
type logMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a Mailer that only logs.
func NewLogMailer(logger *zap.Logger) Mailer {
	return &logMailer{logger: logger.Named("LogMailer")}
}

func (m *logMailer) SendVerificationCode(_ context.Context, to, code string) error {
	m.logger.Info("SMTP not configured, logging verification code",
		zap.String("to", to),
		zap.String("code", code))
	return nil
}
