// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/thomascanham/wedding/internal/db"
	"github.com/thomascanham/wedding/internal/model"
	"github.com/thomascanham/wedding/internal/relation"
)

type NewRoom struct {
	Name        string      `json:"name" validate:"required"`
	Description string      `json:"description"`
	Block       string      `json:"block"`
	Capacity    int         `json:"capacity" validate:"gte=0"`
	GuestIDs    []uuid.UUID `json:"guest"`
}

type RoomService struct {
	store  db.RoomStore
	rel    *relation.Layer
	logger *slog.Logger
}

func NewRoomService(store db.RoomStore, rel *relation.Layer, logger *slog.Logger) *RoomService {
	return &RoomService{store: store, rel: rel, logger: logger}
}

func (s *RoomService) views(ctx context.Context, rooms []*model.Room) ([]*model.RoomView, error) {
	rows, err := relation.Enrich(ctx, s.rel, model.EntityRoom, rooms)
	if err != nil {
		return nil, storageErr("enrich rooms", err)
	}
	res := make([]*model.RoomView, 0, len(rows))
	for _, r := range rows {
		res = append(res, model.NewRoomView(r.Parent, r.GuestIDs, r.Guests))
	}
	return res, nil
}

// List returns every room ordered by name with its guests attached.
func (s *RoomService) List(ctx context.Context) ([]*model.RoomView, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "ListRooms")
	defer span.End()

	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return nil, fail(span, storageErr("list rooms", err))
	}
	model.SortRooms(rooms)
	views, err := s.views(ctx, rooms)
	if err != nil {
		return nil, fail(span, err)
	}
	return views, nil
}

func (s *RoomService) Get(ctx context.Context, id uuid.UUID) (*model.RoomView, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "GetRoom")
	defer span.End()

	room, err := s.store.GetRoomByID(ctx, id)
	if err != nil {
		return nil, fail(span, storageErr("get room", err))
	}
	views, err := s.views(ctx, []*model.Room{room})
	if err != nil {
		return nil, fail(span, err)
	}
	return views[0], nil
}

// Create stores the room and assigns its guests. Capacity is not enforced.
func (s *RoomService) Create(ctx context.Context, in NewRoom) (*model.RoomView, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "CreateRoom")
	defer span.End()

	in.Name = strings.TrimSpace(in.Name)
	if err := check(in); err != nil {
		return nil, fail(span, err)
	}
	if err := s.rel.CheckGuests(ctx, in.GuestIDs); err != nil {
		return nil, fail(span, storageErr("check guests", err))
	}

	room := &model.Room{
		Name:        in.Name,
		Description: in.Description,
		Block:       in.Block,
		Capacity:    in.Capacity,
	}
	if _, err := s.store.CreateRoom(ctx, room); err != nil {
		return nil, fail(span, storageErr("create room", err))
	}
	if err := s.rel.ReplaceGuestSet(ctx, model.EntityRoom, room.ID, in.GuestIDs); err != nil {
		if derr := s.store.DeleteRoom(ctx, room.ID); derr != nil {
			s.logger.ErrorContext(ctx, "unable to remove half created room", "id", room.ID, "error", derr)
			err = errors.Join(err, derr)
		}
		return nil, fail(span, storageErr("assign room guests", err))
	}
	s.logger.InfoContext(ctx, "room created", "id", room.ID, "name", room.Name)

	view, err := s.Get(ctx, room.ID)
	if err != nil {
		return nil, fail(span, err)
	}
	return view, nil
}

// Update applies the allow-listed room fields.
func (s *RoomService) Update(ctx context.Context, id uuid.UUID, patch model.RoomPatch) (*model.Room, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "UpdateRoom")
	defer span.End()

	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, fail(span, &ValidationError{Field: "name", Message: "must not be empty"})
	}
	if patch.Capacity != nil && *patch.Capacity < 0 {
		return nil, fail(span, &ValidationError{Field: "capacity", Message: "must be at least 0"})
	}
	room, err := s.store.UpdateRoom(ctx, id, patch)
	if err != nil {
		return nil, fail(span, storageErr("update room", err))
	}
	return room, nil
}

// AddGuests replaces the room's guest set.
func (s *RoomService) AddGuests(ctx context.Context, id uuid.UUID, guestIDs []uuid.UUID) (*model.RoomView, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "AddGuestsToRoom")
	defer span.End()

	if err := s.rel.ReplaceGuestSet(ctx, model.EntityRoom, id, guestIDs); err != nil {
		return nil, fail(span, storageErr("assign room guests", err))
	}
	view, err := s.Get(ctx, id)
	if err != nil {
		return nil, fail(span, err)
	}
	return view, nil
}

func (s *RoomService) Delete(ctx context.Context, id uuid.UUID) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "DeleteRoom")
	defer span.End()

	if err := s.store.DeleteRoom(ctx, id); err != nil {
		return fail(span, storageErr("delete room", err))
	}
	s.logger.InfoContext(ctx, "room deleted", "id", id)
	return nil
}
