// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

// Package relation maintains the invite and room guest sets and attaches
// the linked guests to their parents.
package relation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/thomascanham/wedding/internal/db"
	"github.com/thomascanham/wedding/internal/model"
)

// Store is the part of the gateway the join layer needs.
type Store interface {
	GetGuestsByIDs(context.Context, []uuid.UUID) ([]*model.Guest, error)
	db.LinkStore
}

// UnknownGuestsError lists guest ids that do not resolve.
type UnknownGuestsError struct {
	IDs []uuid.UUID
}

func (e *UnknownGuestsError) Error() string {
	ids := make([]string, 0, len(e.IDs))
	for _, id := range e.IDs {
		ids = append(ids, id.String())
	}
	return "unknown guest ids: " + strings.Join(ids, ", ")
}

type Layer struct {
	store  Store
	logger *slog.Logger
}

func New(store Store, logger *slog.Logger) *Layer {
	return &Layer{store: store, logger: logger}
}

// Row is a parent together with its current guest set.
type Row[P model.Record] struct {
	Parent   P
	GuestIDs []uuid.UUID
	Guests   []*model.Guest
}

// Enrich attaches the linked guests to every parent. Parent order is kept,
// guests follow link insertion order and ids that no longer resolve are
// dropped.
func Enrich[P model.Record](ctx context.Context, l *Layer, parent model.EntityType, parents []P) ([]Row[P], error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Enrich", trace.WithAttributes(
		attribute.String("parent", string(parent)),
		attribute.Int("rows", len(parents)),
	))
	defer span.End()

	rows := make([]Row[P], 0, len(parents))
	if len(parents) == 0 {
		return rows, nil
	}

	parentIDs := make([]uuid.UUID, 0, len(parents))
	for _, p := range parents {
		parentIDs = append(parentIDs, p.RecordID())
	}

	links, err := l.store.ListLinks(ctx, parent, parentIDs)
	if err != nil {
		span.SetStatus(codes.Error, "list links")
		span.RecordError(err)
		return nil, fmt.Errorf("list %s links: %w", parent, err)
	}

	byParent := make(map[uuid.UUID][]uuid.UUID, len(parents))
	var all []uuid.UUID
	for _, link := range links {
		byParent[link.ParentID] = append(byParent[link.ParentID], link.GuestID)
		all = append(all, link.GuestID)
	}

	guests, err := l.store.GetGuestsByIDs(ctx, model.UniqueIDs(all))
	if err != nil {
		span.SetStatus(codes.Error, "fetch guests")
		span.RecordError(err)
		return nil, fmt.Errorf("fetch linked guests: %w", err)
	}
	byID := make(map[uuid.UUID]*model.Guest, len(guests))
	for _, g := range guests {
		byID[g.ID] = g
	}

	for _, p := range parents {
		row := Row[P]{
			Parent:   p,
			GuestIDs: []uuid.UUID{},
			Guests:   []*model.Guest{},
		}
		for _, gid := range byParent[p.RecordID()] {
			g, ok := byID[gid]
			if !ok {
				l.logger.DebugContext(ctx, "dropping dangling guest link",
					"parent", parent, "parent-id", p.RecordID(), "guest-id", gid)
				continue
			}
			row.GuestIDs = append(row.GuestIDs, gid)
			row.Guests = append(row.Guests, g)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// EnrichOne is Enrich for a single parent.
func EnrichOne[P model.Record](ctx context.Context, l *Layer, parent model.EntityType, p P) (Row[P], error) {
	rows, err := Enrich(ctx, l, parent, []P{p})
	if err != nil {
		return Row[P]{}, err
	}
	return rows[0], nil
}

// CheckGuests returns an *UnknownGuestsError if any id does not resolve.
func (l *Layer) CheckGuests(ctx context.Context, ids []uuid.UUID) error {
	ids = model.UniqueIDs(ids)
	if len(ids) == 0 {
		return nil
	}
	guests, err := l.store.GetGuestsByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("fetch guests: %w", err)
	}
	if len(guests) == len(ids) {
		return nil
	}
	found := make(map[uuid.UUID]struct{}, len(guests))
	for _, g := range guests {
		found[g.ID] = struct{}{}
	}
	var missing []uuid.UUID
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return &UnknownGuestsError{IDs: missing}
}

// ReplaceGuestSet swaps the parent's whole guest set. Duplicates collapse,
// unknown guests are rejected before anything is written.
func (l *Layer) ReplaceGuestSet(ctx context.Context, parent model.EntityType, parentID uuid.UUID, guestIDs []uuid.UUID) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "ReplaceGuestSet", trace.WithAttributes(
		attribute.String("parent", string(parent)),
		attribute.String("parent-id", parentID.String()),
	))
	defer span.End()

	ids := model.UniqueIDs(guestIDs)
	if err := l.CheckGuests(ctx, ids); err != nil {
		span.SetStatus(codes.Error, "check guests")
		span.RecordError(err)
		return err
	}
	if err := l.store.ReplaceLinks(ctx, parent, parentID, ids); err != nil {
		span.SetStatus(codes.Error, "replace links")
		span.RecordError(err)
		return err
	}
	return nil
}
