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

type GuestStore struct {
	f *file
}

func (s *GuestStore) CreateGuest(ctx context.Context, guest *model.Guest) (uuid.UUID, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "CreateGuest")
	defer span.End()

	if guest.ID == uuid.Nil {
		span.AddEvent("uuid is nil, generate a new id")
		guest.ID = uuid.New()
	}
	stamp(&guest.Created, &guest.Updated)

	err := s.f.update(ctx, func(data *snapshot) error {
		g := *guest
		data.Guests[guest.ID] = &g
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return guest.ID, nil
}

func (s *GuestStore) UpdateGuest(ctx context.Context, id uuid.UUID, patch model.GuestPatch) (*model.Guest, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "UpdateGuest")
	defer span.End()

	var res model.Guest
	err := s.f.update(ctx, func(data *snapshot) error {
		g, ok := data.Guests[id]
		if !ok {
			return db.ErrNotFound
		}
		patch.Apply(g, time.Now().UTC())
		res = *g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *GuestStore) DeleteGuest(ctx context.Context, id uuid.UUID) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "DeleteGuest")
	defer span.End()

	return s.f.update(ctx, func(data *snapshot) error {
		if _, ok := data.Guests[id]; !ok {
			return db.ErrNotFound
		}
		delete(data.Guests, id)
		for _, m := range []map[uuid.UUID][]uuid.UUID{data.InviteGuests, data.RoomGuests} {
			for parent, ids := range m {
				m[parent] = without(ids, id)
			}
		}
		return nil
	})
}

func (s *GuestStore) ListGuests(ctx context.Context) ([]*model.Guest, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "ListGuests")
	defer span.End()

	var res []*model.Guest
	err := s.f.view(ctx, func(data *snapshot) error {
		res = sorted(data.Guests, func(g *model.Guest) (int64, uuid.UUID) {
			return g.Created.UnixNano(), g.ID
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *GuestStore) GetGuestByID(ctx context.Context, id uuid.UUID) (*model.Guest, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "GetGuestByID")
	defer span.End()

	var res model.Guest
	err := s.f.view(ctx, func(data *snapshot) error {
		g, ok := data.Guests[id]
		if !ok {
			return db.ErrNotFound
		}
		res = *g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *GuestStore) GetGuestsByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Guest, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "GetGuestsByIDs")
	defer span.End()

	res := make([]*model.Guest, 0, len(ids))
	err := s.f.view(ctx, func(data *snapshot) error {
		for _, id := range ids {
			if g, ok := data.Guests[id]; ok {
				c := *g
				res = append(res, &c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func without(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	res := ids[:0]
	for _, v := range ids {
		if v != id {
			res = append(res, v)
		}
	}
	return res
}

func stamp(created, updated *time.Time) {
	now := time.Now().UTC()
	if created.IsZero() {
		*created = now
	}
	if updated.IsZero() {
		*updated = *created
	}
}
