// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package kvdb

import (
	"context"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/thomascanham/wedding/internal/db"
	"github.com/thomascanham/wedding/internal/model"
)

func NewLinkStore(bdb *bolt.DB) (*LinkStore, error) {
	inviteLinks, err := newLinks(model.EntityInvite)
	if err != nil {
		return nil, err
	}
	roomLinks, err := newLinks(model.EntityRoom)
	if err != nil {
		return nil, err
	}
	s := &LinkStore{
		db:          bdb,
		invites:     newCollection[model.Invite](model.EntityInvite),
		rooms:       newCollection[model.Room](model.EntityRoom),
		inviteLinks: inviteLinks,
		roomLinks:   roomLinks,
	}
	return s, createBuckets(bdb,
		model.EntityInvite,
		model.EntityRoom,
		model.EntityInviteGuest,
		model.EntityRoomGuest,
	)
}

type LinkStore struct {
	db          *bolt.DB
	invites     collection[model.Invite]
	rooms       collection[model.Room]
	inviteLinks links
	roomLinks   links
}

func (s *LinkStore) linksOf(parent model.EntityType) (links, error) {
	switch parent {
	case model.EntityInvite:
		return s.inviteLinks, nil
	case model.EntityRoom:
		return s.roomLinks, nil
	}
	_, err := db.LinkEntity(parent)
	return links{}, err
}

func (s *LinkStore) ListLinks(ctx context.Context, parent model.EntityType, parentIDs []uuid.UUID) ([]model.Link, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "ListLinks", trace.WithAttributes(
		attribute.String("parent", string(parent)),
		attribute.Int("parents", len(parentIDs)),
	))
	defer span.End()

	l, err := s.linksOf(parent)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.AddEvent("View bucket")
	var res []model.Link
	err = s.db.View(func(tx *bolt.Tx) error {
		for _, pid := range model.UniqueIDs(parentIDs) {
			ids, err := l.guestIDs(tx, pid)
			if err != nil {
				return err
			}
			for _, gid := range ids {
				res = append(res, model.Link{ParentID: pid, GuestID: gid})
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return res, nil
}

func (s *LinkStore) ReplaceLinks(ctx context.Context, parent model.EntityType, parentID uuid.UUID, guestIDs []uuid.UUID) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "ReplaceLinks", trace.WithAttributes(
		attribute.String("parent", string(parent)),
		attribute.Int("guests", len(guestIDs)),
	))
	defer span.End()

	l, err := s.linksOf(parent)
	if err != nil {
		span.RecordError(err)
		return err
	}

	span.AddEvent("Update bucket")
	err = s.db.Update(func(tx *bolt.Tx) error {
		now := time.Now().UTC()
		var err error
		switch parent {
		case model.EntityInvite:
			_, err = s.invites.modify(tx, parentID, func(v *model.Invite) { v.Updated = now })
		case model.EntityRoom:
			_, err = s.rooms.modify(tx, parentID, func(v *model.Room) { v.Updated = now })
		}
		if err != nil {
			return err
		}
		return l.replace(tx, parentID, guestIDs)
	})
	if err != nil {
		span.RecordError(err)
	}
	return err
}
