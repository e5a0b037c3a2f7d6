// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package db

import (
	"context"

	"github.com/google/uuid"

	"github.com/thomascanham/wedding/internal/model"
)

type InviteStore interface {
	CreateInvite(context.Context, *model.Invite) (uuid.UUID, error)
	UpdateInvite(context.Context, uuid.UUID, model.InvitePatch) (*model.Invite, error)
	// DeleteInvite removes the invite and its guest links, never the guests.
	DeleteInvite(context.Context, uuid.UUID) error
	ListInvites(context.Context) ([]*model.Invite, error)
	GetInviteByID(context.Context, uuid.UUID) (*model.Invite, error)
}
