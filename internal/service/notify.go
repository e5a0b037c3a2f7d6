// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/thomascanham/wedding/internal/db"
	"github.com/thomascanham/wedding/internal/model"
)

// Mailer delivers one HTML message. The sender identity is fixed by the
// implementation.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

type Message struct {
	Subject string `json:"subject" validate:"required"`
	HTML    string `json:"html" validate:"required"`
}

type Recipient struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type Failure struct {
	Recipient
	Error string `json:"error"`
}

type BulkResult struct {
	Sent    int         `json:"sent"`
	Failed  int         `json:"failed"`
	Results []Recipient `json:"results"`
	Errors  []Failure   `json:"errors"`
}

type Notifier struct {
	guests  *GuestService
	mail    Mailer
	testTo  string
	workers int
	logger  *slog.Logger
}

// NewNotifier sends bulk mail with up to workers sends in flight. testTo is
// the fallback recipient of test mails.
func NewNotifier(guests db.GuestStore, mail Mailer, testTo string, workers int, logger *slog.Logger) *Notifier {
	return &Notifier{
		guests:  NewGuestService(guests, logger),
		mail:    mail,
		testTo:  testTo,
		workers: workers,
		logger:  logger,
	}
}

func (n *Notifier) ListGuestsWithEmail(ctx context.Context) ([]*model.Guest, error) {
	return n.guests.WithEmail(ctx)
}

func checkMessage(msg Message) (Message, error) {
	msg.Subject = strings.TrimSpace(msg.Subject)
	if strings.TrimSpace(msg.HTML) == "" {
		msg.HTML = ""
	}
	return msg, check(msg)
}

// SendToAllGuests mails every guest with an address. A failed recipient is
// recorded and the rest still get their mail.
func (n *Notifier) SendToAllGuests(ctx context.Context, msg Message) (*BulkResult, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "SendToAllGuests")
	defer span.End()

	msg, err := checkMessage(msg)
	if err != nil {
		return nil, fail(span, err)
	}
	guests, err := n.guests.WithEmail(ctx)
	if err != nil {
		return nil, fail(span, err)
	}
	if len(guests) == 0 {
		return nil, fail(span, ErrNoRecipients)
	}

	errs := make([]error, len(guests))
	each(ctx, n.workers, len(guests), func(ctx context.Context, i int) {
		if err := n.mail.Send(ctx, *guests[i].Email, msg.Subject, msg.HTML); err != nil {
			errs[i] = &TransportError{Op: "send mail", Err: err}
		}
	})

	res := &BulkResult{
		Results: []Recipient{},
		Errors:  []Failure{},
	}
	for i, g := range guests {
		r := Recipient{ID: g.ID, Name: g.Name, Email: *g.Email}
		if errs[i] != nil {
			res.Errors = append(res.Errors, Failure{Recipient: r, Error: errs[i].Error()})
			continue
		}
		res.Results = append(res.Results, r)
	}
	res.Sent = len(res.Results)
	res.Failed = len(res.Errors)

	span.SetAttributes(attribute.Int("sent", res.Sent), attribute.Int("failed", res.Failed))
	n.logger.InfoContext(ctx, "bulk mail done", "sent", res.Sent, "failed", res.Failed)
	return res, nil
}

func (n *Notifier) SendToGuest(ctx context.Context, email string, msg Message) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "SendToGuest")
	defer span.End()

	if err := n.send(ctx, email, msg); err != nil {
		return fail(span, err)
	}
	return nil
}

// SendTestEmail mails to, or the configured test address when to is empty.
func (n *Notifier) SendTestEmail(ctx context.Context, to string, msg Message) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "SendTestEmail")
	defer span.End()

	if strings.TrimSpace(to) == "" {
		to = n.testTo
	}
	if err := n.send(ctx, to, msg); err != nil {
		return fail(span, err)
	}
	return nil
}

func (n *Notifier) send(ctx context.Context, to string, msg Message) error {
	to = strings.TrimSpace(to)
	if err := validate.Var(to, "required,email"); err != nil {
		return &ValidationError{Field: "email", Message: "must be a valid email address"}
	}
	msg, err := checkMessage(msg)
	if err != nil {
		return err
	}
	if err := n.mail.Send(ctx, to, msg.Subject, msg.HTML); err != nil {
		return &TransportError{Op: "send mail", Err: err}
	}
	return nil
}
