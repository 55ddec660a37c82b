// Package mail implements outbound delivery of one-time codes over SMTP.
//
// The Sender interface is what services depend on; SMTPSender is the
// production implementation built on wneessen/go-mail. Delivery failures are
// reported as ErrDeliveryFailed so callers can surface them without rolling
// back the code issuance that preceded the send.
package mail

import (
	"context"
	"errors"
	"fmt"

	gomail "github.com/wneessen/go-mail"

	"github.com/mlevkov/go-fin-keeper/internal/config"
	"github.com/mlevkov/go-fin-keeper/internal/logger"
)

// ErrDeliveryFailed is returned when an outbound message could not be
// handed to the SMTP server. Callers should use [errors.Is] to match it.
var ErrDeliveryFailed = errors.New("mail delivery failed")

// Sender dispatches one-time codes to users.
type Sender interface {
	// SendVerificationCode delivers an email-verification code to the address.
	SendVerificationCode(ctx context.Context, to, name, code string) error

	// SendPasswordResetCode delivers a password-reset code to the address.
	SendPasswordResetCode(ctx context.Context, to, name, code string) error
}

// SMTPSender is the SMTP-backed implementation of [Sender].
type SMTPSender struct {
	client *gomail.Client
	from   string
	logger *logger.Logger
}

// NewSMTPSender constructs an [SMTPSender] from the mail configuration.
//
// The underlying client authenticates with PLAIN auth and upgrades the
// connection with STARTTLS when the server offers it. Construction fails if
// the host is empty or the client cannot be built.
func NewSMTPSender(cfg config.Mail, logger *logger.Logger) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, errors.New("mail host is not configured")
	}

	client, err := gomail.NewClient(cfg.Host,
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Username),
		gomail.WithPassword(cfg.Password),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating mail client: %w", err)
	}

	logger.Info().Str("host", cfg.Host).Int("port", cfg.Port).Msg("mail sender created")

	return &SMTPSender{
		client: client,
		from:   cfg.From,
		logger: logger,
	}, nil
}

// SendVerificationCode implements [Sender].
func (s *SMTPSender) SendVerificationCode(ctx context.Context, to, name, code string) error {
	subject := "Verify your email"
	body := fmt.Sprintf("Hello %s,\n\nYour verification code is: %s\n\nThe code expires in a few minutes.\n", name, code)

	return s.send(ctx, to, subject, body)
}

// SendPasswordResetCode implements [Sender].
func (s *SMTPSender) SendPasswordResetCode(ctx context.Context, to, name, code string) error {
	subject := "Reset your password"
	body := fmt.Sprintf("Hello %s,\n\nYour password reset code is: %s\n\nIf you did not request a reset, ignore this message.\n", name, code)

	return s.send(ctx, to, subject, body)
}

func (s *SMTPSender) send(ctx context.Context, to, subject, body string) error {
	log := logger.FromContext(ctx)

	msg := gomail.NewMsg()
	if err := msg.From(s.from); err != nil {
		log.Err(err).Str("from", s.from).Msg("invalid sender address")
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	if err := msg.To(to); err != nil {
		log.Err(err).Str("to", to).Msg("invalid recipient address")
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}

	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		log.Err(err).Str("to", to).Str("subject", subject).Msg("error sending mail")
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}

	log.Debug().Str("to", to).Str("subject", subject).Msg("mail sent")
	return nil
}
