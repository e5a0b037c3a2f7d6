// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package kvdb

import (
	"context"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
	"go.opentelemetry.io/otel/trace"

	"github.com/thomascanham/wedding/internal/model"
)

func NewInviteStore(db *bolt.DB) (*InviteStore, error) {
	l, err := newLinks(model.EntityInvite)
	if err != nil {
		return nil, err
	}
	s := &InviteStore{
		db:      db,
		invites: newCollection[model.Invite](model.EntityInvite),
		links:   l,
	}
	return s, createBuckets(db, model.EntityInvite, model.EntityInviteGuest)
}

type InviteStore struct {
	db      *bolt.DB
	invites collection[model.Invite]
	links   links
}

func (s *InviteStore) CreateInvite(ctx context.Context, inv *model.Invite) (uuid.UUID, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "CreateInvite")
	defer span.End()

	if inv.ID == uuid.Nil {
		span.AddEvent("uuid is nil, generate a new id")
		inv.ID = uuid.New()
	}
	stamp(&inv.Created, &inv.Updated)

	span.AddEvent("Update bucket")
	err := s.db.Update(func(tx *bolt.Tx) error {
		return s.invites.put(tx, inv.ID, inv)
	})
	if err != nil {
		span.RecordError(err)
		return uuid.Nil, err
	}
	return inv.ID, nil
}

func (s *InviteStore) UpdateInvite(ctx context.Context, id uuid.UUID, patch model.InvitePatch) (*model.Invite, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "UpdateInvite")
	defer span.End()

	var inv *model.Invite
	span.AddEvent("Update bucket")
	err := s.db.Update(func(tx *bolt.Tx) error {
		var err error
		inv, err = s.invites.modify(tx, id, func(v *model.Invite) {
			patch.Apply(v, time.Now().UTC())
		})
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return inv, nil
}

func (s *InviteStore) DeleteInvite(ctx context.Context, id uuid.UUID) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "DeleteInvite")
	defer span.End()

	span.AddEvent("Update bucket")
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := s.invites.remove(tx, id); err != nil {
			return err
		}
		return s.links.drop(tx, id)
	})
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (s *InviteStore) ListInvites(ctx context.Context) ([]*model.Invite, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "ListInvites")
	defer span.End()

	span.AddEvent("View bucket")
	var invites []*model.Invite
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		invites, err = s.invites.list(tx)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return invites, nil
}

func (s *InviteStore) GetInviteByID(ctx context.Context, id uuid.UUID) (*model.Invite, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "GetInviteByID")
	defer span.End()

	span.AddEvent("View bucket")
	var inv *model.Invite
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		inv, err = s.invites.get(tx, id)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return inv, nil
}
