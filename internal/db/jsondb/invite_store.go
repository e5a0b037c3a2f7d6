// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package jsondb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/thomascanham/wedding/internal/db"
	"github.com/thomascanham/wedding/internal/model"
)

type InviteStore struct {
	f *file
}

func (s *InviteStore) CreateInvite(ctx context.Context, inv *model.Invite) (uuid.UUID, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "CreateInvite")
	defer span.End()

	if inv.ID == uuid.Nil {
		span.AddEvent("uuid is nil, generate a new id")
		inv.ID = uuid.New()
	}
	stamp(&inv.Created, &inv.Updated)

	err := s.f.update(ctx, func(data *snapshot) error {
		c := *inv
		data.Invites[inv.ID] = &c
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return inv.ID, nil
}

func (s *InviteStore) UpdateInvite(ctx context.Context, id uuid.UUID, patch model.InvitePatch) (*model.Invite, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "UpdateInvite")
	defer span.End()

	var res model.Invite
	err := s.f.update(ctx, func(data *snapshot) error {
		inv, ok := data.Invites[id]
		if !ok {
			return db.ErrNotFound
		}
		patch.Apply(inv, time.Now().UTC())
		res = *inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *InviteStore) DeleteInvite(ctx context.Context, id uuid.UUID) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "DeleteInvite")
	defer span.End()

	return s.f.update(ctx, func(data *snapshot) error {
		if _, ok := data.Invites[id]; !ok {
			return db.ErrNotFound
		}
		delete(data.Invites, id)
		delete(data.InviteGuests, id)
		return nil
	})
}

func (s *InviteStore) ListInvites(ctx context.Context) ([]*model.Invite, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "ListInvites")
	defer span.End()

	var res []*model.Invite
	err := s.f.view(ctx, func(data *snapshot) error {
		res = sorted(data.Invites, func(i *model.Invite) (int64, uuid.UUID) {
			return i.Created.UnixNano(), i.ID
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *InviteStore) GetInviteByID(ctx context.Context, id uuid.UUID) (*model.Invite, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "GetInviteByID")
	defer span.End()

	var res model.Invite
	err := s.f.view(ctx, func(data *snapshot) error {
		inv, ok := data.Invites[id]
		if !ok {
			return db.ErrNotFound
		}
		res = *inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}
