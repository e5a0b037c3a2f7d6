// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package jsondb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomascanham/wedding/internal/db"
	"github.com/thomascanham/wedding/internal/db/dbtest"
	"github.com/thomascanham/wedding/internal/model"
)

func TestGateway(t *testing.T) {
	dbtest.Run(t, func(t *testing.T) db.Gateway {
		g, err := Open(t.TempDir())
		require.NoError(t, err)
		return g
	})
}

func TestReloadFromFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	g, err := Open(dir)
	require.NoError(t, err)
	room := &model.Room{Name: "Loft", Capacity: 2}
	_, err = g.CreateRoom(ctx, room)
	require.NoError(t, err)
	guest := &model.Guest{Firstname: "Sam", Surname: "Smith", Name: "Sam Smith"}
	_, err = g.CreateGuest(ctx, guest)
	require.NoError(t, err)
	require.NoError(t, g.ReplaceLinks(ctx, model.EntityRoom, room.ID, []uuid.UUID{guest.ID}))

	g, err = Open(dir)
	require.NoError(t, err)
	got, err := g.GetRoomByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, "Loft", got.Name)

	links, err := g.ListLinks(ctx, model.EntityRoom, []uuid.UUID{room.ID})
	require.NoError(t, err)
	assert.Equal(t, []model.Link{{ParentID: room.ID, GuestID: guest.ID}}, links)
}

func TestFailedWriteKeepsState(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	g, err := Open(dir)
	require.NoError(t, err)
	guest := &model.Guest{Firstname: "Sam", Surname: "Smith"}
	_, err = g.CreateGuest(ctx, guest)
	require.NoError(t, err)

	// A directory in place of the temp file makes the next write fail.
	require.NoError(t, os.Mkdir(filepath.Join(dir, filename+".tmp"), 0o755))

	err = g.DeleteGuest(ctx, guest.ID)
	require.Error(t, err)

	_, err = g.GetGuestByID(ctx, guest.ID)
	assert.NoError(t, err)
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	ctx := context.Background()
	g, err := Open(t.TempDir())
	require.NoError(t, err)

	guest := &model.Guest{Firstname: "Sam", Surname: "Smith"}
	_, err = g.CreateGuest(ctx, guest)
	require.NoError(t, err)

	got, err := g.GetGuestByID(ctx, guest.ID)
	require.NoError(t, err)
	got.Firstname = "changed"

	again, err := g.GetGuestByID(ctx, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sam", again.Firstname)
}
