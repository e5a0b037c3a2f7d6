// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package db

import (
	"context"

	"github.com/google/uuid"

	"github.com/thomascanham/wedding/internal/model"
)

type GuestStore interface {
	CreateGuest(context.Context, *model.Guest) (uuid.UUID, error)
	UpdateGuest(context.Context, uuid.UUID, model.GuestPatch) (*model.Guest, error)
	// DeleteGuest removes the guest together with all its invite and room links.
	DeleteGuest(context.Context, uuid.UUID) error
	ListGuests(context.Context) ([]*model.Guest, error)
	GetGuestByID(context.Context, uuid.UUID) (*model.Guest, error)
	// GetGuestsByIDs skips ids that do not resolve.
	GetGuestsByIDs(context.Context, []uuid.UUID) ([]*model.Guest, error)
}
