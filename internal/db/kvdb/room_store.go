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

func NewRoomStore(db *bolt.DB) (*RoomStore, error) {
	l, err := newLinks(model.EntityRoom)
	if err != nil {
		return nil, err
	}
	s := &RoomStore{
		db:    db,
		rooms: newCollection[model.Room](model.EntityRoom),
		links: l,
	}
	return s, createBuckets(db, model.EntityRoom, model.EntityRoomGuest)
}

type RoomStore struct {
	db    *bolt.DB
	rooms collection[model.Room]
	links links
}

func (s *RoomStore) CreateRoom(ctx context.Context, room *model.Room) (uuid.UUID, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "CreateRoom")
	defer span.End()

	if room.ID == uuid.Nil {
		span.AddEvent("uuid is nil, generate a new id")
		room.ID = uuid.New()
	}
	stamp(&room.Created, &room.Updated)

	span.AddEvent("Update bucket")
	err := s.db.Update(func(tx *bolt.Tx) error {
		return s.rooms.put(tx, room.ID, room)
	})
	if err != nil {
		span.RecordError(err)
		return uuid.Nil, err
	}
	return room.ID, nil
}

func (s *RoomStore) UpdateRoom(ctx context.Context, id uuid.UUID, patch model.RoomPatch) (*model.Room, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "UpdateRoom")
	defer span.End()

	var room *model.Room
	span.AddEvent("Update bucket")
	err := s.db.Update(func(tx *bolt.Tx) error {
		var err error
		room, err = s.rooms.modify(tx, id, func(v *model.Room) {
			patch.Apply(v, time.Now().UTC())
		})
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return room, nil
}

func (s *RoomStore) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "DeleteRoom")
	defer span.End()

	span.AddEvent("Update bucket")
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := s.rooms.remove(tx, id); err != nil {
			return err
		}
		return s.links.drop(tx, id)
	})
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (s *RoomStore) ListRooms(ctx context.Context) ([]*model.Room, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "ListRooms")
	defer span.End()

	span.AddEvent("View bucket")
	var rooms []*model.Room
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		rooms, err = s.rooms.list(tx)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return rooms, nil
}

func (s *RoomStore) GetRoomByID(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "GetRoomByID")
	defer span.End()

	span.AddEvent("View bucket")
	var room *model.Room
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		room, err = s.rooms.get(tx, id)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return room, nil
}
