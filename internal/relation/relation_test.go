// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package relation

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomascanham/wedding/internal/db"
	"github.com/thomascanham/wedding/internal/db/kvdb"
	"github.com/thomascanham/wedding/internal/model"
)

func newGateway(t *testing.T) db.Gateway {
	t.Helper()
	g, err := kvdb.Open(filepath.Join(t.TempDir(), "wedding.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })
	return g
}

func addGuest(t *testing.T, g db.Gateway, first, sur string) *model.Guest {
	t.Helper()
	guest := &model.Guest{Firstname: first, Surname: sur, Name: model.FullName(first, sur)}
	_, err := g.CreateGuest(context.Background(), guest)
	require.NoError(t, err)
	return guest
}

func addInvite(t *testing.T, g db.Gateway, name string) *model.Invite {
	t.Helper()
	inv := &model.Invite{Name: name, Attendance: model.AttendanceCeremony}
	_, err := g.CreateInvite(context.Background(), inv)
	require.NoError(t, err)
	return inv
}

func TestEnrichKeepsOrder(t *testing.T) {
	ctx := context.Background()
	g := newGateway(t)
	l := New(g, slog.Default())

	a := addGuest(t, g, "Zoe", "Adams")
	b := addGuest(t, g, "Amy", "Zeller")
	first := addInvite(t, g, "First")
	second := addInvite(t, g, "Second")
	empty := addInvite(t, g, "Empty")

	require.NoError(t, l.ReplaceGuestSet(ctx, model.EntityInvite, first.ID, []uuid.UUID{b.ID, a.ID}))
	require.NoError(t, l.ReplaceGuestSet(ctx, model.EntityInvite, second.ID, []uuid.UUID{a.ID}))

	rows, err := Enrich(ctx, l, model.EntityInvite, []*model.Invite{second, empty, first})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, second.ID, rows[0].Parent.ID)
	assert.Equal(t, []uuid.UUID{a.ID}, rows[0].GuestIDs)

	assert.Equal(t, empty.ID, rows[1].Parent.ID)
	assert.Empty(t, rows[1].GuestIDs)
	assert.NotNil(t, rows[1].Guests)

	assert.Equal(t, first.ID, rows[2].Parent.ID)
	assert.Equal(t, []uuid.UUID{b.ID, a.ID}, rows[2].GuestIDs, "join insertion order, not name order")
	require.Len(t, rows[2].Guests, 2)
	assert.Equal(t, "Amy Zeller", rows[2].Guests[0].Name)
}

func TestEnrichEmpty(t *testing.T) {
	l := New(newGateway(t), slog.Default())
	rows, err := Enrich(context.Background(), l, model.EntityRoom, []*model.Room{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReplaceGuestSetIdempotent(t *testing.T) {
	ctx := context.Background()
	g := newGateway(t)
	l := New(g, slog.Default())

	a := addGuest(t, g, "A", "One")
	b := addGuest(t, g, "B", "Two")
	inv := addInvite(t, g, "Party")

	for i := 0; i < 2; i++ {
		require.NoError(t, l.ReplaceGuestSet(ctx, model.EntityInvite, inv.ID, []uuid.UUID{a.ID, b.ID, a.ID}))
	}
	row, err := EnrichOne(ctx, l, model.EntityInvite, inv)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a.ID, b.ID}, row.GuestIDs)
}

func TestReplaceGuestSetUnknownGuest(t *testing.T) {
	ctx := context.Background()
	g := newGateway(t)
	l := New(g, slog.Default())

	a := addGuest(t, g, "A", "One")
	inv := addInvite(t, g, "Party")
	require.NoError(t, l.ReplaceGuestSet(ctx, model.EntityInvite, inv.ID, []uuid.UUID{a.ID}))

	missing := uuid.New()
	err := l.ReplaceGuestSet(ctx, model.EntityInvite, inv.ID, []uuid.UUID{missing})
	var unknown *UnknownGuestsError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, []uuid.UUID{missing}, unknown.IDs)

	row, err := EnrichOne(ctx, l, model.EntityInvite, inv)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a.ID}, row.GuestIDs, "rejected replace leaves the set untouched")
}

func TestReplaceGuestSetMissingParent(t *testing.T) {
	l := New(newGateway(t), slog.Default())
	err := l.ReplaceGuestSet(context.Background(), model.EntityRoom, uuid.New(), nil)
	assert.ErrorIs(t, err, db.ErrNotFound)
}

// danglingStore links to a guest that no longer exists.
type danglingStore struct {
	guest  *model.Guest
	parent uuid.UUID
	ghost  uuid.UUID
}

func (s *danglingStore) GetGuestsByIDs(_ context.Context, ids []uuid.UUID) ([]*model.Guest, error) {
	var res []*model.Guest
	for _, id := range ids {
		if id == s.guest.ID {
			res = append(res, s.guest)
		}
	}
	return res, nil
}

func (s *danglingStore) ListLinks(context.Context, model.EntityType, []uuid.UUID) ([]model.Link, error) {
	return []model.Link{
		{ParentID: s.parent, GuestID: s.ghost},
		{ParentID: s.parent, GuestID: s.guest.ID},
	}, nil
}

func (s *danglingStore) ReplaceLinks(context.Context, model.EntityType, uuid.UUID, []uuid.UUID) error {
	return nil
}

func TestEnrichDropsDanglingLinks(t *testing.T) {
	room := &model.Room{ID: uuid.New(), Name: "Loft", Capacity: 2}
	store := &danglingStore{
		guest:  &model.Guest{ID: uuid.New(), Name: "Sam Smith"},
		parent: room.ID,
		ghost:  uuid.New(),
	}
	l := New(store, slog.Default())

	row, err := EnrichOne(context.Background(), l, model.EntityRoom, room)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{store.guest.ID}, row.GuestIDs)
	require.Len(t, row.Guests, 1)
	assert.Equal(t, "Sam Smith", row.Guests[0].Name)
}
