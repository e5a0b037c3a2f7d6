// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package db

import (
	"context"

	"github.com/google/uuid"

	"github.com/thomascanham/wedding/internal/model"
)

// LinkStore keeps the guest sets of invites and rooms. The parent argument is
// model.EntityInvite or model.EntityRoom.
type LinkStore interface {
	// ListLinks returns the links of the given parents, grouped by parent in
	// the order of parentIDs and in insertion order within a parent.
	ListLinks(ctx context.Context, parent model.EntityType, parentIDs []uuid.UUID) ([]model.Link, error)
	// ReplaceLinks swaps the whole guest set of a parent and stamps the
	// parent's update time in a single storage transaction. It returns
	// ErrNotFound without writing anything if the parent does not exist.
	ReplaceLinks(ctx context.Context, parent model.EntityType, parentID uuid.UUID, guestIDs []uuid.UUID) error
}
