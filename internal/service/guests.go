// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/thomascanham/wedding/internal/db"
	"github.com/thomascanham/wedding/internal/model"
)

type NewGuest struct {
	Firstname      string           `json:"firstname" validate:"required"`
	Surname        string           `json:"surname" validate:"required"`
	AttendanceType model.Attendance `json:"attendanceType" validate:"required,oneof=ceremony reception"`
}

type GuestService struct {
	store  db.GuestStore
	logger *slog.Logger
}

func NewGuestService(store db.GuestStore, logger *slog.Logger) *GuestService {
	return &GuestService{store: store, logger: logger}
}

// List returns every guest ordered by surname, then firstname.
func (s *GuestService) List(ctx context.Context) ([]*model.Guest, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "ListGuests")
	defer span.End()

	guests, err := s.store.ListGuests(ctx)
	if err != nil {
		return nil, fail(span, storageErr("list guests", err))
	}
	model.SortGuests(guests)
	span.SetAttributes(attribute.Int("guests", len(guests)))
	return guests, nil
}

func (s *GuestService) Get(ctx context.Context, id uuid.UUID) (*model.Guest, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "GetGuest")
	defer span.End()

	g, err := s.store.GetGuestByID(ctx, id)
	if err != nil {
		return nil, fail(span, storageErr("get guest", err))
	}
	return g, nil
}

func (s *GuestService) Create(ctx context.Context, in NewGuest) (*model.Guest, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "CreateGuest")
	defer span.End()

	in.Firstname = strings.TrimSpace(in.Firstname)
	in.Surname = strings.TrimSpace(in.Surname)
	if err := check(in); err != nil {
		return nil, fail(span, err)
	}

	g := model.NewGuest(in.Firstname, in.Surname, in.AttendanceType, time.Now().UTC())
	if _, err := s.store.CreateGuest(ctx, g); err != nil {
		return nil, fail(span, storageErr("create guest", err))
	}
	s.logger.InfoContext(ctx, "guest created", "id", g.ID, "name", g.Name)
	return g, nil
}

// Update applies the allow-listed fields of patch. Hoop is ignored here, it
// only changes through ToggleHoop.
func (s *GuestService) Update(ctx context.Context, id uuid.UUID, patch model.GuestPatch) (*model.Guest, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "UpdateGuest")
	defer span.End()

	patch.Hoop = nil
	if err := checkGuestPatch(patch); err != nil {
		return nil, fail(span, err)
	}
	g, err := s.store.UpdateGuest(ctx, id, patch)
	if err != nil {
		return nil, fail(span, storageErr("update guest", err))
	}
	return g, nil
}

func checkGuestPatch(p model.GuestPatch) error {
	if p.Firstname != nil && strings.TrimSpace(*p.Firstname) == "" {
		return &ValidationError{Field: "firstname", Message: "must not be empty"}
	}
	if p.Surname != nil && strings.TrimSpace(*p.Surname) == "" {
		return &ValidationError{Field: "surname", Message: "must not be empty"}
	}
	if p.AttendanceType != nil && !p.AttendanceType.Valid() {
		return &ValidationError{Field: "attendanceType", Message: "must be one of: ceremony reception"}
	}
	if p.RSVPStatus != nil && !p.RSVPStatus.Valid() {
		return &ValidationError{Field: "rsvpStatus", Message: "must be one of: attending not-attending"}
	}
	if p.Email != nil && *p.Email != "" {
		if err := validate.Var(*p.Email, "email"); err != nil {
			return &ValidationError{Field: "email", Message: "must be a valid email address"}
		}
	}
	return nil
}

// ToggleHoop stores the negation of current, the value the caller last saw.
// The stored value is not read first, so two toggles from the same stale
// view both store !current instead of flipping twice.
func (s *GuestService) ToggleHoop(ctx context.Context, id uuid.UUID, current bool) (*model.Guest, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "ToggleGuestHoop", trace.WithAttributes(
		attribute.Bool("current", current),
	))
	defer span.End()

	next := !current
	g, err := s.store.UpdateGuest(ctx, id, model.GuestPatch{Hoop: &next})
	if err != nil {
		return nil, fail(span, storageErr("toggle hoop", err))
	}
	return g, nil
}

// Delete removes the guest and every invite and room link to it.
func (s *GuestService) Delete(ctx context.Context, id uuid.UUID) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "DeleteGuest")
	defer span.End()

	if err := s.store.DeleteGuest(ctx, id); err != nil {
		return fail(span, storageErr("delete guest", err))
	}
	s.logger.InfoContext(ctx, "guest deleted", "id", id)
	return nil
}

// WithEmail returns the guests that have a non-empty email address.
func (s *GuestService) WithEmail(ctx context.Context) ([]*model.Guest, error) {
	guests, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return withEmail(guests), nil
}

func withEmail(guests []*model.Guest) []*model.Guest {
	res := make([]*model.Guest, 0, len(guests))
	for _, g := range guests {
		if g.HasEmail() {
			res = append(res, g)
		}
	}
	return res
}
