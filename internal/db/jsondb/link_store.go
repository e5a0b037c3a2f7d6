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

type LinkStore struct {
	f *file
}

func (s *LinkStore) ListLinks(ctx context.Context, parent model.EntityType, parentIDs []uuid.UUID) ([]model.Link, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "ListLinks")
	defer span.End()

	var res []model.Link
	err := s.f.view(ctx, func(data *snapshot) error {
		m, err := data.links(parent)
		if err != nil {
			return err
		}
		for _, pid := range model.UniqueIDs(parentIDs) {
			for _, gid := range m[pid] {
				res = append(res, model.Link{ParentID: pid, GuestID: gid})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *LinkStore) ReplaceLinks(ctx context.Context, parent model.EntityType, parentID uuid.UUID, guestIDs []uuid.UUID) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "ReplaceLinks")
	defer span.End()

	return s.f.update(ctx, func(data *snapshot) error {
		m, err := data.links(parent)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		switch parent {
		case model.EntityInvite:
			inv, ok := data.Invites[parentID]
			if !ok {
				return db.ErrNotFound
			}
			inv.Updated = now
		case model.EntityRoom:
			room, ok := data.Rooms[parentID]
			if !ok {
				return db.ErrNotFound
			}
			room.Updated = now
		}
		ids := model.UniqueIDs(guestIDs)
		if len(ids) == 0 {
			delete(m, parentID)
			return nil
		}
		m[parentID] = ids
		return nil
	})
}
