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

type RoomStore struct {
	f *file
}

func (s *RoomStore) CreateRoom(ctx context.Context, room *model.Room) (uuid.UUID, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "CreateRoom")
	defer span.End()

	if room.ID == uuid.Nil {
		span.AddEvent("uuid is nil, generate a new id")
		room.ID = uuid.New()
	}
	stamp(&room.Created, &room.Updated)

	err := s.f.update(ctx, func(data *snapshot) error {
		c := *room
		data.Rooms[room.ID] = &c
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return room.ID, nil
}

func (s *RoomStore) UpdateRoom(ctx context.Context, id uuid.UUID, patch model.RoomPatch) (*model.Room, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "UpdateRoom")
	defer span.End()

	var res model.Room
	err := s.f.update(ctx, func(data *snapshot) error {
		room, ok := data.Rooms[id]
		if !ok {
			return db.ErrNotFound
		}
		patch.Apply(room, time.Now().UTC())
		res = *room
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *RoomStore) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "DeleteRoom")
	defer span.End()

	return s.f.update(ctx, func(data *snapshot) error {
		if _, ok := data.Rooms[id]; !ok {
			return db.ErrNotFound
		}
		delete(data.Rooms, id)
		delete(data.RoomGuests, id)
		return nil
	})
}

func (s *RoomStore) ListRooms(ctx context.Context) ([]*model.Room, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "ListRooms")
	defer span.End()

	var res []*model.Room
	err := s.f.view(ctx, func(data *snapshot) error {
		res = sorted(data.Rooms, func(r *model.Room) (int64, uuid.UUID) {
			return r.Created.UnixNano(), r.ID
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *RoomStore) GetRoomByID(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "GetRoomByID")
	defer span.End()

	var res model.Room
	err := s.f.view(ctx, func(data *snapshot) error {
		room, ok := data.Rooms[id]
		if !ok {
			return db.ErrNotFound
		}
		res = *room
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}
