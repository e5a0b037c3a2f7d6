// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package service

import (
	"context"
	"log/slog"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomascanham/wedding/internal/model"
)

func withMail(t *testing.T, f *fixture, first, sur, email string) *model.Guest {
	t.Helper()
	g := f.guest(t, first, sur)
	g, err := f.guests.Update(context.Background(), g.ID, model.GuestPatch{Email: ptr(email)})
	require.NoError(t, err)
	return g
}

func TestSendToAllGuestsIsolatesFailures(t *testing.T) {
	for _, workers := range []int{1, 3} {
		ctx := context.Background()
		f := newFixture(t)
		g1 := withMail(t, f, "A", "Able", "a@example.com")
		g2 := withMail(t, f, "B", "Baker", "bounce@example.com")
		g3 := withMail(t, f, "C", "Cole", "c@example.com")
		f.guest(t, "D", "NoMail")

		mail := &fakeMailer{fail: map[string]bool{"bounce@example.com": true}}
		n := NewNotifier(f.gw, mail, "", workers, slog.Default())

		res, err := n.SendToAllGuests(ctx, Message{Subject: "Save the date", HTML: "<p>hi</p>"})
		require.NoError(t, err)
		assert.Equal(t, 2, res.Sent)
		assert.Equal(t, 1, res.Failed)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, g2.ID, res.Errors[0].ID)
		assert.Contains(t, res.Errors[0].Error, "mailbox unavailable")
		require.Len(t, res.Results, 2)
		assert.Equal(t, g1.ID, res.Results[0].ID)
		assert.Equal(t, g3.ID, res.Results[1].ID)

		sent := append([]string(nil), mail.sent...)
		sort.Strings(sent)
		assert.Equal(t, []string{"a@example.com", "c@example.com"}, sent)
	}
}

func TestSendToAllGuestsNoRecipients(t *testing.T) {
	f := newFixture(t)
	f.guest(t, "A", "Able")
	n := NewNotifier(f.gw, &fakeMailer{}, "", 1, slog.Default())

	_, err := n.SendToAllGuests(context.Background(), Message{Subject: "s", HTML: "b"})
	assert.ErrorIs(t, err, ErrNoRecipients)
}

func TestSendValidation(t *testing.T) {
	f := newFixture(t)
	withMail(t, f, "A", "Able", "a@example.com")
	mail := &fakeMailer{}
	n := NewNotifier(f.gw, mail, "", 1, slog.Default())
	ctx := context.Background()

	tt := []struct {
		name  string
		run   func() error
		field string
	}{
		{"bulk without subject", func() error {
			_, err := n.SendToAllGuests(ctx, Message{HTML: "b"})
			return err
		}, "subject"},
		{"bulk with blank body", func() error {
			_, err := n.SendToAllGuests(ctx, Message{Subject: "s", HTML: "  "})
			return err
		}, "html"},
		{"single bad address", func() error {
			return n.SendToGuest(ctx, "nobody", Message{Subject: "s", HTML: "b"})
		}, "email"},
		{"test without address", func() error {
			return n.SendTestEmail(ctx, "", Message{Subject: "s", HTML: "b"})
		}, "email"},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			var verr *ValidationError
			require.ErrorAs(t, tc.run(), &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
	assert.Empty(t, mail.sent, "nothing sent on validation errors")
}

func TestSendToGuest(t *testing.T) {
	mail := &fakeMailer{fail: map[string]bool{"bounce@example.com": true}}
	n := NewNotifier(newGateway(t), mail, "", 1, slog.Default())
	ctx := context.Background()

	require.NoError(t, n.SendToGuest(ctx, "guest@example.com", Message{Subject: "s", HTML: "b"}))
	assert.Equal(t, []string{"guest@example.com"}, mail.sent)

	err := n.SendToGuest(ctx, "bounce@example.com", Message{Subject: "s", HTML: "b"})
	var terr *TransportError
	assert.ErrorAs(t, err, &terr)
}

func TestSendTestEmail(t *testing.T) {
	mail := &fakeMailer{}
	n := NewNotifier(newGateway(t), mail, "test@example.com", 1, slog.Default())
	ctx := context.Background()

	require.NoError(t, n.SendTestEmail(ctx, "", Message{Subject: "s", HTML: "b"}))
	require.NoError(t, n.SendTestEmail(ctx, "other@example.com", Message{Subject: "s", HTML: "b"}))
	assert.Equal(t, []string{"test@example.com", "other@example.com"}, mail.sent)
}
