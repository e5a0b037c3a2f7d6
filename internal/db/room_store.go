// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package db

import (
	"context"

	"github.com/google/uuid"

	"github.com/thomascanham/wedding/internal/model"
)

type RoomStore interface {
	CreateRoom(context.Context, *model.Room) (uuid.UUID, error)
	UpdateRoom(context.Context, uuid.UUID, model.RoomPatch) (*model.Room, error)
	DeleteRoom(context.Context, uuid.UUID) error
	ListRooms(context.Context) ([]*model.Room, error)
	GetRoomByID(context.Context, uuid.UUID) (*model.Room, error)
}
