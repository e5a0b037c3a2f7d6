// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

// Package mailer delivers HTML mail over SMTP.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wneessen/go-mail"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var ErrNotConfigured = errors.New("smtp host is not configured")

type Config struct {
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	ReplyTo     string
	DisplayName string
	Timeout     time.Duration
}

// SMTP opens a fresh connection per message.
type SMTP struct {
	cfg    Config
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *SMTP {
	return &SMTP{cfg: cfg, logger: logger}
}

// Message builds the mail for one recipient with the fixed sender identity.
func (s *SMTP) Message(to, subject, html string) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.FromFormat(s.cfg.DisplayName, s.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", s.cfg.From, err)
	}
	if err := m.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", to, err)
	}
	if s.cfg.ReplyTo != "" {
		if err := m.ReplyTo(s.cfg.ReplyTo); err != nil {
			return nil, fmt.Errorf("invalid reply-to %q: %w", s.cfg.ReplyTo, err)
		}
	}
	m.Subject(subject)
	m.SetDate()
	m.SetMessageID()
	m.SetBodyString(mail.TypeTextHTML, html)
	return m, nil
}

func (s *SMTP) client() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if s.cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(s.cfg.Timeout))
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}
	return mail.NewClient(s.cfg.Host, opts...)
}

func (s *SMTP) Send(ctx context.Context, to, subject, html string) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Send", trace.WithAttributes(
		attribute.String("smtp.host", s.cfg.Host),
	))
	defer span.End()

	err := s.send(ctx, to, subject, html)
	if err != nil {
		span.SetStatus(codes.Error, "send failed")
		span.RecordError(err)
		s.logger.WarnContext(ctx, "unable to send mail", "to", to, "error", err)
		return err
	}
	s.logger.DebugContext(ctx, "mail sent", "to", to)
	return nil
}

func (s *SMTP) send(ctx context.Context, to, subject, html string) error {
	if s.cfg.Host == "" {
		return ErrNotConfigured
	}
	msg, err := s.Message(to, subject, html)
	if err != nil {
		return err
	}
	c, err := s.client()
	if err != nil {
		return err
	}
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	return c.DialAndSendWithContext(ctx, msg)
}
