// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/thomascanham/wedding/internal/db"
	"github.com/thomascanham/wedding/internal/model"
	"github.com/thomascanham/wedding/internal/relation"
)

// QRRenderer turns a url into SVG markup.
type QRRenderer interface {
	Render(ctx context.Context, content string) (string, error)
}

type NewInvite struct {
	Name     string      `json:"name" validate:"required"`
	GuestIDs []uuid.UUID `json:"guest"`
	// Attendance defaults to ceremony.
	Attendance model.Attendance `json:"attendance" validate:"required,oneof=ceremony reception"`
}

type QRResult struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type QRFailure struct {
	QRResult
	Error string `json:"error"`
}

// QRBatch reports a bulk QR run, both lists in invite name order.
type QRBatch struct {
	Generated []QRResult  `json:"data"`
	Failed    []QRFailure `json:"errors"`
}

type InviteService struct {
	store   db.InviteStore
	rel     *relation.Layer
	qr      QRRenderer
	workers int
	logger  *slog.Logger
}

// NewInviteService renders bulk QR codes with up to workers renders in
// flight.
func NewInviteService(store db.InviteStore, rel *relation.Layer, qr QRRenderer, workers int, logger *slog.Logger) *InviteService {
	return &InviteService{
		store:   store,
		rel:     rel,
		qr:      qr,
		workers: workers,
		logger:  logger,
	}
}

func (s *InviteService) views(ctx context.Context, invites []*model.Invite) ([]*model.InviteView, error) {
	rows, err := relation.Enrich(ctx, s.rel, model.EntityInvite, invites)
	if err != nil {
		return nil, storageErr("enrich invites", err)
	}
	res := make([]*model.InviteView, 0, len(rows))
	for _, r := range rows {
		res = append(res, model.NewInviteView(r.Parent, r.GuestIDs, r.Guests))
	}
	return res, nil
}

// List returns every invite ordered by name with its guests attached.
func (s *InviteService) List(ctx context.Context) ([]*model.InviteView, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "ListInvites")
	defer span.End()

	invites, err := s.store.ListInvites(ctx)
	if err != nil {
		return nil, fail(span, storageErr("list invites", err))
	}
	model.SortInvites(invites)
	views, err := s.views(ctx, invites)
	if err != nil {
		return nil, fail(span, err)
	}
	return views, nil
}

func (s *InviteService) Get(ctx context.Context, id uuid.UUID) (*model.InviteView, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "GetInvite")
	defer span.End()

	inv, err := s.store.GetInviteByID(ctx, id)
	if err != nil {
		return nil, fail(span, storageErr("get invite", err))
	}
	views, err := s.views(ctx, []*model.Invite{inv})
	if err != nil {
		return nil, fail(span, err)
	}
	return views[0], nil
}

// Create stores the invite and links its guests. If linking fails the
// invite is removed again.
func (s *InviteService) Create(ctx context.Context, in NewInvite) (*model.InviteView, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "CreateInvite")
	defer span.End()

	in.Name = strings.TrimSpace(in.Name)
	if in.Attendance == "" {
		in.Attendance = model.AttendanceCeremony
	}
	if err := check(in); err != nil {
		return nil, fail(span, err)
	}
	if err := s.rel.CheckGuests(ctx, in.GuestIDs); err != nil {
		return nil, fail(span, storageErr("check guests", err))
	}

	inv := &model.Invite{Name: in.Name, Attendance: in.Attendance}
	if _, err := s.store.CreateInvite(ctx, inv); err != nil {
		return nil, fail(span, storageErr("create invite", err))
	}
	if err := s.rel.ReplaceGuestSet(ctx, model.EntityInvite, inv.ID, in.GuestIDs); err != nil {
		if derr := s.store.DeleteInvite(ctx, inv.ID); derr != nil {
			s.logger.ErrorContext(ctx, "unable to remove half created invite", "id", inv.ID, "error", derr)
			err = errors.Join(err, derr)
		}
		return nil, fail(span, storageErr("link invite guests", err))
	}
	s.logger.InfoContext(ctx, "invite created", "id", inv.ID, "name", inv.Name)

	view, err := s.Get(ctx, inv.ID)
	if err != nil {
		return nil, fail(span, err)
	}
	return view, nil
}

// Update applies the allow-listed invite fields.
func (s *InviteService) Update(ctx context.Context, id uuid.UUID, patch model.InvitePatch) (*model.Invite, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "UpdateInvite")
	defer span.End()

	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, fail(span, &ValidationError{Field: "name", Message: "must not be empty"})
	}
	if patch.Attendance != nil && !patch.Attendance.Valid() {
		return nil, fail(span, &ValidationError{Field: "attendance", Message: "must be one of: ceremony reception"})
	}
	inv, err := s.store.UpdateInvite(ctx, id, patch)
	if err != nil {
		return nil, fail(span, storageErr("update invite", err))
	}
	return inv, nil
}

// SetGuests replaces the invite's guest set.
func (s *InviteService) SetGuests(ctx context.Context, id uuid.UUID, guestIDs []uuid.UUID) (*model.InviteView, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "SetInviteGuests", trace.WithAttributes(
		attribute.Int("guests", len(guestIDs)),
	))
	defer span.End()

	if err := s.rel.ReplaceGuestSet(ctx, model.EntityInvite, id, guestIDs); err != nil {
		return nil, fail(span, storageErr("set invite guests", err))
	}
	view, err := s.Get(ctx, id)
	if err != nil {
		return nil, fail(span, err)
	}
	return view, nil
}

func checkBaseURL(baseURL string) (string, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if err := validate.Var(baseURL, "required,url"); err != nil {
		return "", &ValidationError{Field: "baseUrl", Message: "must be an absolute url"}
	}
	return baseURL, nil
}

// GenerateQRCode renders {baseURL}/invite/{id} and stores the markup,
// replacing any earlier code.
func (s *InviteService) GenerateQRCode(ctx context.Context, id uuid.UUID, baseURL string) (*model.Invite, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "GenerateQRCode")
	defer span.End()

	baseURL, err := checkBaseURL(baseURL)
	if err != nil {
		return nil, fail(span, err)
	}
	if _, err := s.store.GetInviteByID(ctx, id); err != nil {
		return nil, fail(span, storageErr("get invite", err))
	}
	inv, err := s.generate(ctx, id, baseURL)
	if err != nil {
		return nil, fail(span, err)
	}
	return inv, nil
}

func (s *InviteService) generate(ctx context.Context, id uuid.UUID, baseURL string) (*model.Invite, error) {
	svg, err := s.qr.Render(ctx, model.InviteURL(baseURL, id))
	if err != nil {
		return nil, &TransportError{Op: "render qr code", Err: err}
	}
	inv, err := s.store.UpdateInvite(ctx, id, model.InvitePatch{QRSVG: &svg})
	if err != nil {
		return nil, storageErr("store qr code", err)
	}
	return inv, nil
}

// GenerateAllQRCodes regenerates the code of every invite. A failing
// invite is reported in the batch and does not stop the others.
func (s *InviteService) GenerateAllQRCodes(ctx context.Context, baseURL string) (*QRBatch, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "GenerateAllQRCodes")
	defer span.End()

	baseURL, err := checkBaseURL(baseURL)
	if err != nil {
		return nil, fail(span, err)
	}
	invites, err := s.store.ListInvites(ctx)
	if err != nil {
		return nil, fail(span, storageErr("list invites", err))
	}
	model.SortInvites(invites)

	errs := make([]error, len(invites))
	each(ctx, s.workers, len(invites), func(ctx context.Context, i int) {
		_, errs[i] = s.generate(ctx, invites[i].ID, baseURL)
	})

	batch := &QRBatch{
		Generated: []QRResult{},
		Failed:    []QRFailure{},
	}
	for i, inv := range invites {
		res := QRResult{ID: inv.ID, Name: inv.Name}
		if errs[i] != nil {
			s.logger.WarnContext(ctx, "unable to generate qr code", "id", inv.ID, "error", errs[i])
			batch.Failed = append(batch.Failed, QRFailure{QRResult: res, Error: errs[i].Error()})
			continue
		}
		batch.Generated = append(batch.Generated, res)
	}
	span.SetAttributes(
		attribute.Int("generated", len(batch.Generated)),
		attribute.Int("failed", len(batch.Failed)),
	)
	return batch, nil
}

// DeleteQRCode drops the stored markup.
func (s *InviteService) DeleteQRCode(ctx context.Context, id uuid.UUID) (*model.Invite, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "DeleteQRCode")
	defer span.End()

	empty := ""
	inv, err := s.store.UpdateInvite(ctx, id, model.InvitePatch{QRSVG: &empty})
	if err != nil {
		return nil, fail(span, storageErr("delete qr code", err))
	}
	return inv, nil
}

// Delete removes the invite and its guest links, the guests stay.
func (s *InviteService) Delete(ctx context.Context, id uuid.UUID) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "DeleteInvite")
	defer span.End()

	if err := s.store.DeleteInvite(ctx, id); err != nil {
		return fail(span, storageErr("delete invite", err))
	}
	s.logger.InfoContext(ctx, "invite deleted", "id", id)
	return nil
}
