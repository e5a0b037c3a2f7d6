// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

// Package dbtest holds behaviour checks shared by every storage backend.
package dbtest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomascanham/wedding/internal/db"
	"github.com/thomascanham/wedding/internal/model"
)

// Run executes the shared checks. open must return a fresh, empty gateway.
func Run(t *testing.T, open func(t *testing.T) db.Gateway) {
	t.Helper()
	tt := []struct {
		name string
		fn   func(*testing.T, db.Gateway)
	}{
		{"GuestCRUD", testGuestCRUD},
		{"GuestNotFound", testGuestNotFound},
		{"GetGuestsByIDs", testGetGuestsByIDs},
		{"InviteCRUD", testInviteCRUD},
		{"RoomCRUD", testRoomCRUD},
		{"ReplaceLinks", testReplaceLinks},
		{"ListLinksRepeatedParent", testListLinksRepeatedParent},
		{"ReplaceLinksMissingParent", testReplaceLinksMissingParent},
		{"ReplaceLinksUnknownParent", testReplaceLinksUnknownParent},
		{"DeleteGuestCascades", testDeleteGuestCascades},
		{"DeleteParentKeepsGuests", testDeleteParentKeepsGuests},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			g := open(t)
			t.Cleanup(func() { _ = g.Close() })
			tc.fn(t, g)
		})
	}
}

func createGuest(t *testing.T, g db.Gateway, first, sur string) *model.Guest {
	t.Helper()
	guest := model.NewGuest(first, sur, model.AttendanceCeremony, time.Now().UTC())
	id, err := g.CreateGuest(context.Background(), guest)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)
	return guest
}

func createInvite(t *testing.T, g db.Gateway, name string) *model.Invite {
	t.Helper()
	inv := &model.Invite{Name: name, Attendance: model.AttendanceReception}
	_, err := g.CreateInvite(context.Background(), inv)
	require.NoError(t, err)
	return inv
}

func createRoom(t *testing.T, g db.Gateway, name string) *model.Room {
	t.Helper()
	room := &model.Room{Name: name, Capacity: 2}
	_, err := g.CreateRoom(context.Background(), room)
	require.NoError(t, err)
	return room
}

func guestIDs(t *testing.T, g db.Gateway, parent model.EntityType, id uuid.UUID) []uuid.UUID {
	t.Helper()
	links, err := g.ListLinks(context.Background(), parent, []uuid.UUID{id})
	require.NoError(t, err)
	ids := make([]uuid.UUID, 0, len(links))
	for _, l := range links {
		assert.Equal(t, id, l.ParentID)
		ids = append(ids, l.GuestID)
	}
	return ids
}

func testGuestCRUD(t *testing.T, g db.Gateway) {
	ctx := context.Background()
	guest := createGuest(t, g, "Sam", "Smith")
	guest.Email = ptr("sam@example.com")
	_, err := g.UpdateGuest(ctx, guest.ID, model.GuestPatch{Email: guest.Email})
	require.NoError(t, err)

	got, err := g.GetGuestByID(ctx, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sam Smith", got.Name)
	require.NotNil(t, got.Email)
	assert.Equal(t, "sam@example.com", *got.Email)

	updated, err := g.UpdateGuest(ctx, guest.ID, model.GuestPatch{
		Firstname: ptr("Kim"),
		Email:     ptr(""),
		Hoop:      ptr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, "Kim Smith", updated.Name)
	assert.Nil(t, updated.Email)
	assert.True(t, updated.Hoop)
	assert.False(t, updated.Updated.Before(got.Updated))

	got, err = g.GetGuestByID(ctx, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kim", got.Firstname)
	assert.True(t, got.Hoop)

	createGuest(t, g, "Alex", "Adams")
	all, err := g.ListGuests(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, g.DeleteGuest(ctx, guest.ID))
	all, err = g.ListGuests(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func testGuestNotFound(t *testing.T, g db.Gateway) {
	ctx := context.Background()
	id := uuid.New()

	_, err := g.GetGuestByID(ctx, id)
	assert.ErrorIs(t, err, db.ErrNotFound)
	_, err = g.UpdateGuest(ctx, id, model.GuestPatch{Firstname: ptr("x")})
	assert.ErrorIs(t, err, db.ErrNotFound)
	assert.ErrorIs(t, g.DeleteGuest(ctx, id), db.ErrNotFound)

	_, err = g.GetInviteByID(ctx, id)
	assert.ErrorIs(t, err, db.ErrNotFound)
	assert.ErrorIs(t, g.DeleteInvite(ctx, id), db.ErrNotFound)
	_, err = g.GetRoomByID(ctx, id)
	assert.ErrorIs(t, err, db.ErrNotFound)
	_, err = g.UpdateRoom(ctx, id, model.RoomPatch{})
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func testGetGuestsByIDs(t *testing.T, g db.Gateway) {
	a := createGuest(t, g, "A", "One")
	b := createGuest(t, g, "B", "Two")

	got, err := g.GetGuestsByIDs(context.Background(), []uuid.UUID{b.ID, uuid.New(), a.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, b.ID, got[0].ID)
	assert.Equal(t, a.ID, got[1].ID)

	got, err = g.GetGuestsByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func testInviteCRUD(t *testing.T, g db.Gateway) {
	ctx := context.Background()
	inv := createInvite(t, g, "The Smiths")
	assert.False(t, inv.Created.IsZero())

	got, err := g.UpdateInvite(ctx, inv.ID, model.InvitePatch{Sent: ptr(true), QRSVG: ptr("<svg/>")})
	require.NoError(t, err)
	assert.True(t, got.Sent)
	assert.True(t, got.HasQR())

	got, err = g.GetInviteByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "The Smiths", got.Name)
	assert.Equal(t, model.AttendanceReception, got.Attendance)
	require.NotNil(t, got.QRSVG)
	assert.Equal(t, "<svg/>", *got.QRSVG)

	got, err = g.UpdateInvite(ctx, inv.ID, model.InvitePatch{QRSVG: ptr("")})
	require.NoError(t, err)
	assert.False(t, got.HasQR())

	list, err := g.ListInvites(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, g.DeleteInvite(ctx, inv.ID))
	list, err = g.ListInvites(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func testRoomCRUD(t *testing.T, g db.Gateway) {
	ctx := context.Background()
	room := createRoom(t, g, "Loft")

	got, err := g.UpdateRoom(ctx, room.ID, model.RoomPatch{Capacity: ptr(4), Block: ptr("East")})
	require.NoError(t, err)
	assert.Equal(t, 4, got.Capacity)

	got, err = g.GetRoomByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, "Loft", got.Name)
	assert.Equal(t, "East", got.Block)
	assert.Equal(t, 4, got.Capacity)

	list, err := g.ListRooms(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, g.DeleteRoom(ctx, room.ID))
	_, err = g.GetRoomByID(ctx, room.ID)
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func testReplaceLinks(t *testing.T, g db.Gateway) {
	ctx := context.Background()
	a := createGuest(t, g, "A", "One")
	b := createGuest(t, g, "B", "Two")
	c := createGuest(t, g, "C", "Three")
	inv := createInvite(t, g, "Party")
	other := createInvite(t, g, "Other")

	before, err := g.GetInviteByID(ctx, inv.ID)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	require.NoError(t, g.ReplaceLinks(ctx, model.EntityInvite, inv.ID, []uuid.UUID{c.ID, a.ID, c.ID}))
	assert.Equal(t, []uuid.UUID{c.ID, a.ID}, guestIDs(t, g, model.EntityInvite, inv.ID))

	after, err := g.GetInviteByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, after.Updated.After(before.Updated), "parent update time is stamped")

	// Same set again is a no-op on the membership.
	require.NoError(t, g.ReplaceLinks(ctx, model.EntityInvite, inv.ID, []uuid.UUID{c.ID, a.ID}))
	assert.Equal(t, []uuid.UUID{c.ID, a.ID}, guestIDs(t, g, model.EntityInvite, inv.ID))

	require.NoError(t, g.ReplaceLinks(ctx, model.EntityInvite, other.ID, []uuid.UUID{b.ID}))
	require.NoError(t, g.ReplaceLinks(ctx, model.EntityInvite, inv.ID, []uuid.UUID{b.ID}))
	assert.Equal(t, []uuid.UUID{b.ID}, guestIDs(t, g, model.EntityInvite, inv.ID))
	assert.Equal(t, []uuid.UUID{b.ID}, guestIDs(t, g, model.EntityInvite, other.ID))

	links, err := g.ListLinks(ctx, model.EntityInvite, []uuid.UUID{other.ID, inv.ID})
	require.NoError(t, err)
	assert.Equal(t, []model.Link{
		{ParentID: other.ID, GuestID: b.ID},
		{ParentID: inv.ID, GuestID: b.ID},
	}, links)

	require.NoError(t, g.ReplaceLinks(ctx, model.EntityInvite, inv.ID, nil))
	assert.Empty(t, guestIDs(t, g, model.EntityInvite, inv.ID))

	room := createRoom(t, g, "Loft")
	require.NoError(t, g.ReplaceLinks(ctx, model.EntityRoom, room.ID, []uuid.UUID{a.ID, b.ID}))
	assert.Equal(t, []uuid.UUID{a.ID, b.ID}, guestIDs(t, g, model.EntityRoom, room.ID))
	assert.Empty(t, guestIDs(t, g, model.EntityInvite, room.ID), "join collections are separate")
}

func testListLinksRepeatedParent(t *testing.T, g db.Gateway) {
	ctx := context.Background()
	a := createGuest(t, g, "A", "One")
	b := createGuest(t, g, "B", "Two")
	room := createRoom(t, g, "Loft")
	other := createRoom(t, g, "Barn")
	require.NoError(t, g.ReplaceLinks(ctx, model.EntityRoom, room.ID, []uuid.UUID{a.ID, b.ID}))
	require.NoError(t, g.ReplaceLinks(ctx, model.EntityRoom, other.ID, []uuid.UUID{b.ID}))

	links, err := g.ListLinks(ctx, model.EntityRoom, []uuid.UUID{room.ID, other.ID, room.ID, uuid.Nil})
	require.NoError(t, err)
	assert.Equal(t, []model.Link{
		{ParentID: room.ID, GuestID: a.ID},
		{ParentID: room.ID, GuestID: b.ID},
		{ParentID: other.ID, GuestID: b.ID},
	}, links)
}

func testReplaceLinksMissingParent(t *testing.T, g db.Gateway) {
	ctx := context.Background()
	a := createGuest(t, g, "A", "One")
	missing := uuid.New()

	err := g.ReplaceLinks(ctx, model.EntityRoom, missing, []uuid.UUID{a.ID})
	assert.ErrorIs(t, err, db.ErrNotFound)
	assert.Empty(t, guestIDs(t, g, model.EntityRoom, missing))
}

func testReplaceLinksUnknownParent(t *testing.T, g db.Gateway) {
	err := g.ReplaceLinks(context.Background(), model.EntityGuest, uuid.New(), nil)
	assert.ErrorIs(t, err, db.ErrUnknownParent)
	_, err = g.ListLinks(context.Background(), model.EntityGuest, nil)
	assert.ErrorIs(t, err, db.ErrUnknownParent)
}

func testDeleteGuestCascades(t *testing.T, g db.Gateway) {
	ctx := context.Background()
	a := createGuest(t, g, "A", "One")
	b := createGuest(t, g, "B", "Two")
	inv := createInvite(t, g, "Party")
	room := createRoom(t, g, "Loft")
	require.NoError(t, g.ReplaceLinks(ctx, model.EntityInvite, inv.ID, []uuid.UUID{a.ID, b.ID}))
	require.NoError(t, g.ReplaceLinks(ctx, model.EntityRoom, room.ID, []uuid.UUID{b.ID, a.ID}))

	require.NoError(t, g.DeleteGuest(ctx, a.ID))

	assert.Equal(t, []uuid.UUID{b.ID}, guestIDs(t, g, model.EntityInvite, inv.ID))
	assert.Equal(t, []uuid.UUID{b.ID}, guestIDs(t, g, model.EntityRoom, room.ID))
	_, err := g.GetInviteByID(ctx, inv.ID)
	assert.NoError(t, err, "parent survives guest removal")
}

func testDeleteParentKeepsGuests(t *testing.T, g db.Gateway) {
	ctx := context.Background()
	a := createGuest(t, g, "A", "One")
	inv := createInvite(t, g, "Party")
	room := createRoom(t, g, "Loft")
	require.NoError(t, g.ReplaceLinks(ctx, model.EntityInvite, inv.ID, []uuid.UUID{a.ID}))
	require.NoError(t, g.ReplaceLinks(ctx, model.EntityRoom, room.ID, []uuid.UUID{a.ID}))

	require.NoError(t, g.DeleteInvite(ctx, inv.ID))
	require.NoError(t, g.DeleteRoom(ctx, room.ID))

	_, err := g.GetGuestByID(ctx, a.ID)
	assert.NoError(t, err)
	assert.Empty(t, guestIDs(t, g, model.EntityInvite, inv.ID))
	assert.Empty(t, guestIDs(t, g, model.EntityRoom, room.ID))
}

func ptr[T any](v T) *T { return &v }
