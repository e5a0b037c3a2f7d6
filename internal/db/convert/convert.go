// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

// Package convert copies every record from one storage backend into another.
package convert

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/thomascanham/wedding/internal/db"
	"github.com/thomascanham/wedding/internal/model"
)

type Stats struct {
	Guests      int `json:"guests"`
	Invites     int `json:"invites"`
	Rooms       int `json:"rooms"`
	InviteLinks int `json:"inviteLinks"`
	RoomLinks   int `json:"roomLinks"`
}

// Into copies guests, invites, rooms and their guest sets from src to dst.
// Ids and creation times are kept. Guest sets are replaced, so the parent's
// updated time is the time of the copy.
func Into(ctx context.Context, dst, src db.Gateway) (*Stats, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Into")
	defer span.End()

	stats, err := into(ctx, dst, src)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("guests", stats.Guests),
		attribute.Int("invites", stats.Invites),
		attribute.Int("rooms", stats.Rooms),
	)
	return stats, nil
}

func into(ctx context.Context, dst, src db.Gateway) (*Stats, error) {
	stats := &Stats{}

	guests, err := src.ListGuests(ctx)
	if err != nil {
		return nil, fmt.Errorf("list guests: %w", err)
	}
	for _, g := range guests {
		if _, err := dst.CreateGuest(ctx, g); err != nil {
			return nil, fmt.Errorf("copy guest %s: %w", g.ID, err)
		}
		stats.Guests++
	}

	invites, err := src.ListInvites(ctx)
	if err != nil {
		return nil, fmt.Errorf("list invites: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(invites))
	for _, inv := range invites {
		if _, err := dst.CreateInvite(ctx, inv); err != nil {
			return nil, fmt.Errorf("copy invite %s: %w", inv.ID, err)
		}
		ids = append(ids, inv.ID)
		stats.Invites++
	}
	if stats.InviteLinks, err = links(ctx, dst, src, model.EntityInvite, ids); err != nil {
		return nil, err
	}

	rooms, err := src.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	ids = make([]uuid.UUID, 0, len(rooms))
	for _, r := range rooms {
		if _, err := dst.CreateRoom(ctx, r); err != nil {
			return nil, fmt.Errorf("copy room %s: %w", r.ID, err)
		}
		ids = append(ids, r.ID)
		stats.Rooms++
	}
	if stats.RoomLinks, err = links(ctx, dst, src, model.EntityRoom, ids); err != nil {
		return nil, err
	}
	return stats, nil
}

func links(ctx context.Context, dst, src db.Gateway, parent model.EntityType, ids []uuid.UUID) (int, error) {
	all, err := src.ListLinks(ctx, parent, ids)
	if err != nil {
		return 0, fmt.Errorf("list %s links: %w", parent, err)
	}
	sets := make(map[uuid.UUID][]uuid.UUID, len(ids))
	for _, l := range all {
		sets[l.ParentID] = append(sets[l.ParentID], l.GuestID)
	}
	for _, id := range ids {
		set, ok := sets[id]
		if !ok {
			continue
		}
		if err := dst.ReplaceLinks(ctx, parent, id, set); err != nil {
			return 0, fmt.Errorf("copy %s %s links: %w", parent, id, err)
		}
	}
	return len(all), nil
}
