// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomascanham/wedding/internal/model"
)

func TestCreateGuest(t *testing.T) {
	f := newFixture(t)
	g := f.guest(t, " Sam ", "Smith")

	assert.NotEqual(t, uuid.Nil, g.ID)
	assert.Equal(t, "Sam Smith", g.Name)
	assert.False(t, g.HasCheckedIn)
	assert.Equal(t, model.RSVPStatusNone, g.RSVPStatus)
	assert.False(t, g.Hoop)
	assert.Nil(t, g.Email)
	assert.False(t, g.Created.IsZero())
	assert.Equal(t, g.Created, g.Updated)
}

func TestCreateGuestValidation(t *testing.T) {
	tt := []struct {
		name  string
		in    NewGuest
		field string
	}{
		{"missing firstname", NewGuest{Surname: "Smith", AttendanceType: model.AttendanceCeremony}, "firstname"},
		{"blank surname", NewGuest{Firstname: "Sam", Surname: "  ", AttendanceType: model.AttendanceCeremony}, "surname"},
		{"missing attendance", NewGuest{Firstname: "Sam", Surname: "Smith"}, "attendanceType"},
		{"unknown attendance", NewGuest{Firstname: "Sam", Surname: "Smith", AttendanceType: "party"}, "attendanceType"},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.guests.Create(context.Background(), tc.in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)

			all, err := f.guests.List(context.Background())
			require.NoError(t, err)
			assert.Empty(t, all, "nothing stored")
		})
	}
}

func TestListGuestsSorted(t *testing.T) {
	f := newFixture(t)
	f.guest(t, "tom", "brown")
	f.guest(t, "Amy", "Zeller")
	f.guest(t, "anna", "Brown")
	f.guest(t, "Zoe", "adams")

	guests, err := f.guests.List(context.Background())
	require.NoError(t, err)
	var names []string
	for _, g := range guests {
		names = append(names, g.Name)
	}
	assert.Equal(t, []string{"Zoe adams", "anna Brown", "tom brown", "Amy Zeller"}, names)
}

func TestToggleHoopStaleValue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	g := f.guest(t, "Sam", "Smith")

	// Both callers saw hoop=false. The second toggle does not flip back.
	stale := g.Hoop
	_, err := f.guests.ToggleHoop(ctx, g.ID, stale)
	require.NoError(t, err)
	got, err := f.guests.ToggleHoop(ctx, g.ID, stale)
	require.NoError(t, err)
	assert.Equal(t, !stale, got.Hoop)

	got, err = f.guests.ToggleHoop(ctx, g.ID, got.Hoop)
	require.NoError(t, err)
	assert.False(t, got.Hoop)
}

func TestToggleHoopUnknownGuest(t *testing.T) {
	f := newFixture(t)
	_, err := f.guests.ToggleHoop(context.Background(), uuid.New(), false)
	assert.ErrorIs(t, err, ErrNotFound)
	var serr *StorageError
	assert.ErrorAs(t, err, &serr)
}

func TestUpdateGuest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	g := f.guest(t, "Sam", "Smith")

	got, err := f.guests.Update(ctx, g.ID, model.GuestPatch{
		Surname:    ptr("Jones"),
		Email:      ptr("sam@example.com"),
		RSVPStatus: ptr(model.RSVPStatusAttending),
		Hoop:       ptr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, "Sam Jones", got.Name)
	assert.Equal(t, model.RSVPStatusAttending, got.RSVPStatus)
	assert.False(t, got.Hoop, "hoop only changes through the toggle")
	require.NotNil(t, got.Email)
	assert.Equal(t, "sam@example.com", *got.Email)
}

func TestUpdateGuestValidation(t *testing.T) {
	tt := []struct {
		name  string
		patch model.GuestPatch
		field string
	}{
		{"empty firstname", model.GuestPatch{Firstname: ptr("")}, "firstname"},
		{"bad attendance", model.GuestPatch{AttendanceType: ptr(model.Attendance("brunch"))}, "attendanceType"},
		{"bad rsvp", model.GuestPatch{RSVPStatus: ptr(model.RSVPStatus("maybe"))}, "rsvpStatus"},
		{"bad email", model.GuestPatch{Email: ptr("nope")}, "email"},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			g := f.guest(t, "Sam", "Smith")
			_, err := f.guests.Update(context.Background(), g.ID, tc.patch)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestDeleteGuestCascades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.guest(t, "A", "One")
	b := f.guest(t, "B", "Two")

	inv, err := f.invites.Create(ctx, NewInvite{Name: "Party", GuestIDs: []uuid.UUID{a.ID, b.ID}})
	require.NoError(t, err)
	room, err := f.rooms.Create(ctx, NewRoom{Name: "Loft", Capacity: 2, GuestIDs: []uuid.UUID{a.ID}})
	require.NoError(t, err)

	require.NoError(t, f.guests.Delete(ctx, a.ID))

	assert.Equal(t, []uuid.UUID{b.ID}, linkedGuests(t, f.gw, model.EntityInvite, inv.ID))
	assert.Empty(t, linkedGuests(t, f.gw, model.EntityRoom, room.ID))

	assert.ErrorIs(t, f.guests.Delete(ctx, a.ID), ErrNotFound)
}

func TestGuestsWithEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.guest(t, "A", "Zed")
	b := f.guest(t, "B", "Able")
	c := f.guest(t, "C", "Mid")
	_, err := f.guests.Update(ctx, a.ID, model.GuestPatch{Email: ptr("a@example.com")})
	require.NoError(t, err)
	_, err = f.guests.Update(ctx, b.ID, model.GuestPatch{Email: ptr("b@example.com")})
	require.NoError(t, err)
	_, err = f.guests.Update(ctx, c.ID, model.GuestPatch{Email: ptr("")})
	require.NoError(t, err)

	got, err := f.guests.WithEmail(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, b.ID, got[0].ID)
	assert.Equal(t, a.ID, got[1].ID)
}
