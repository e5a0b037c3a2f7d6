// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package kvdb

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
	"go.opentelemetry.io/otel/trace"

	"github.com/thomascanham/wedding/internal/db"
	"github.com/thomascanham/wedding/internal/model"
)

func NewGuestStore(db *bolt.DB) (*GuestStore, error) {
	inviteLinks, err := newLinks(model.EntityInvite)
	if err != nil {
		return nil, err
	}
	roomLinks, err := newLinks(model.EntityRoom)
	if err != nil {
		return nil, err
	}
	s := &GuestStore{
		db:     db,
		guests: newCollection[model.Guest](model.EntityGuest),
		links:  []links{inviteLinks, roomLinks},
	}
	return s, createBuckets(db, model.EntityGuest, model.EntityInviteGuest, model.EntityRoomGuest)
}

type GuestStore struct {
	db     *bolt.DB
	guests collection[model.Guest]
	links  []links
}

func (g *GuestStore) CreateGuest(ctx context.Context, guest *model.Guest) (uuid.UUID, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "CreateGuest")
	defer span.End()

	if guest.ID == uuid.Nil {
		span.AddEvent("uuid is nil, generate a new id")
		guest.ID = uuid.New()
	}
	stamp(&guest.Created, &guest.Updated)

	span.AddEvent("Update bucket")
	err := g.db.Update(func(tx *bolt.Tx) error {
		return g.guests.put(tx, guest.ID, guest)
	})
	if err != nil {
		span.RecordError(err)
		return uuid.Nil, err
	}
	return guest.ID, nil
}

func (g *GuestStore) UpdateGuest(ctx context.Context, id uuid.UUID, patch model.GuestPatch) (*model.Guest, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "UpdateGuest")
	defer span.End()

	var guest *model.Guest
	span.AddEvent("Update bucket")
	err := g.db.Update(func(tx *bolt.Tx) error {
		var err error
		guest, err = g.guests.modify(tx, id, func(v *model.Guest) {
			patch.Apply(v, time.Now().UTC())
		})
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return guest, nil
}

func (g *GuestStore) DeleteGuest(ctx context.Context, id uuid.UUID) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "DeleteGuest")
	defer span.End()

	span.AddEvent("Update bucket")
	err := g.db.Update(func(tx *bolt.Tx) error {
		if err := g.guests.remove(tx, id); err != nil {
			return err
		}
		for _, l := range g.links {
			if err := l.dropGuest(tx, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (g *GuestStore) ListGuests(ctx context.Context) ([]*model.Guest, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "ListGuests")
	defer span.End()

	span.AddEvent("View bucket")
	var guests []*model.Guest
	err := g.db.View(func(tx *bolt.Tx) error {
		var err error
		guests, err = g.guests.list(tx)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return guests, nil
}

func (g *GuestStore) GetGuestByID(ctx context.Context, id uuid.UUID) (*model.Guest, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "GetGuestByID")
	defer span.End()

	span.AddEvent("View bucket")
	var guest *model.Guest
	err := g.db.View(func(tx *bolt.Tx) error {
		var err error
		guest, err = g.guests.get(tx, id)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return guest, nil
}

func (g *GuestStore) GetGuestsByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Guest, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "GetGuestsByIDs")
	defer span.End()

	span.AddEvent("View bucket")
	guests := make([]*model.Guest, 0, len(ids))
	err := g.db.View(func(tx *bolt.Tx) error {
		for _, id := range ids {
			guest, err := g.guests.get(tx, id)
			if errors.Is(err, db.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			guests = append(guests, guest)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return guests, nil
}

// stamp fills unset creation and update times.
func stamp(created, updated *time.Time) {
	now := time.Now().UTC()
	if created.IsZero() {
		*created = now
	}
	if updated.IsZero() {
		*updated = *created
	}
}
