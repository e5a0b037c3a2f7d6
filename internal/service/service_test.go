// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package service

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/thomascanham/wedding/internal/db"
	"github.com/thomascanham/wedding/internal/db/kvdb"
	"github.com/thomascanham/wedding/internal/model"
	"github.com/thomascanham/wedding/internal/relation"
)

func newGateway(t *testing.T) db.Gateway {
	t.Helper()
	g, err := kvdb.Open(filepath.Join(t.TempDir(), "wedding.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })
	return g
}

// fakeQR returns the content wrapped in a tag, or fails for listed urls.
type fakeQR struct {
	mu    sync.Mutex
	fail  map[string]bool
	calls []string
}

func (f *fakeQR) Render(_ context.Context, content string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, content)
	if f.fail[content] {
		return "", errors.New("render failed")
	}
	return "<svg>" + content + "</svg>", nil
}

// fakeMailer records deliveries and fails for listed recipients.
type fakeMailer struct {
	mu   sync.Mutex
	fail map[string]bool
	sent []string
}

func (f *fakeMailer) Send(_ context.Context, to, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[to] {
		return errors.New("mailbox unavailable")
	}
	f.sent = append(f.sent, to)
	return nil
}

type fixture struct {
	gw      db.Gateway
	guests  *GuestService
	invites *InviteService
	rooms   *RoomService
	qr      *fakeQR
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gw := newGateway(t)
	rel := relation.New(gw, slog.Default())
	qr := &fakeQR{fail: map[string]bool{}}
	return &fixture{
		gw:      gw,
		guests:  NewGuestService(gw, slog.Default()),
		invites: NewInviteService(gw, rel, qr, 1, slog.Default()),
		rooms:   NewRoomService(gw, rel, slog.Default()),
		qr:      qr,
	}
}

func (f *fixture) guest(t *testing.T, first, sur string) *model.Guest {
	t.Helper()
	g, err := f.guests.Create(context.Background(), NewGuest{
		Firstname:      first,
		Surname:        sur,
		AttendanceType: model.AttendanceCeremony,
	})
	require.NoError(t, err)
	return g
}

func linkedGuests(t *testing.T, gw db.Gateway, parent model.EntityType, id uuid.UUID) []uuid.UUID {
	t.Helper()
	links, err := gw.ListLinks(context.Background(), parent, []uuid.UUID{id})
	require.NoError(t, err)
	var ids []uuid.UUID
	for _, l := range links {
		ids = append(ids, l.GuestID)
	}
	return ids
}

func ptr[T any](v T) *T { return &v }
