// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomascanham/wedding/internal/db/kvdb"
	"github.com/thomascanham/wedding/internal/qr"
	"github.com/thomascanham/wedding/internal/relation"
	"github.com/thomascanham/wedding/internal/service"
)

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

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Total   int             `json:"total"`
	Success bool            `json:"success"`
	Error   json.RawMessage `json:"error"`
}

func (e envelope) message(t *testing.T) string {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(e.Error, &body))
	return body.Message
}

type testServer struct {
	t    *testing.T
	srv  *Server
	mail *fakeMailer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	t.Setenv("GIN_MODE", "test")

	gw, err := kvdb.Open(filepath.Join(t.TempDir(), "wedding.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = gw.Close() })

	renderer, err := qr.NewRenderer(qr.DefaultOptions())
	require.NoError(t, err)

	logger := slog.Default()
	mail := &fakeMailer{fail: map[string]bool{"bounce@example.com": true}}
	rel := relation.New(gw, logger)
	srv := NewServer(Options{
		ServiceName:   "wedding-test",
		AdminUser:     "admin",
		AdminPassword: "secret",
		BaseURL:       "https://example.com",
	}, Services{
		Guests:    service.NewGuestService(gw, logger),
		Invites:   service.NewInviteService(gw, rel, renderer, 2, logger),
		Rooms:     service.NewRoomService(gw, rel, logger),
		Notifier:  service.NewNotifier(gw, mail, "", 2, logger),
		Dashboard: service.NewDashboard(gw, time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC)),
	})
	return &testServer{t: t, srv: srv, mail: mail}
}

func (ts *testServer) do(method, path string, body any, auth bool) (int, envelope) {
	ts.t.Helper()
	var r *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(ts.t, err)
		r = httptest.NewRequest(method, path, bytes.NewReader(b))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	if auth {
		r.SetBasicAuth("admin", "secret")
	}
	w := httptest.NewRecorder()
	ts.srv.ServeHTTP(w, r)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(ts.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func (ts *testServer) admin(method, path string, body any) (int, envelope) {
	ts.t.Helper()
	return ts.do(method, path, body, true)
}

func (ts *testServer) createGuest(first, sur string) string {
	ts.t.Helper()
	code, env := ts.admin(http.MethodPost, "/admin/guests", map[string]any{
		"firstname":      first,
		"surname":        sur,
		"attendanceType": "ceremony",
	})
	require.Equal(ts.t, http.StatusCreated, code)
	var g struct {
		ID string `json:"id"`
	}
	require.NoError(ts.t, json.Unmarshal(env.Data, &g))
	return g.ID
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	ts.srv.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminRequiresAuth(t *testing.T) {
	ts := newTestServer(t)
	r := httptest.NewRequest(http.MethodGet, "/admin/guests", nil)
	w := httptest.NewRecorder()
	ts.srv.ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	r.SetBasicAuth("admin", "wrong")
	w = httptest.NewRecorder()
	ts.srv.ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGuestRoutes(t *testing.T) {
	ts := newTestServer(t)
	ts.createGuest("Zoe", "Adams")
	id := ts.createGuest("Amy", "Zeller")

	code, env := ts.admin(http.MethodGet, "/admin/guests", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, env.Total)
	assert.JSONEq(t, "false", string(env.Error))
	var guests []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &guests))
	assert.Equal(t, "Zoe Adams", guests[0].Name)

	code, env = ts.admin(http.MethodPatch, "/admin/guests/"+id, map[string]any{"email": "amy@example.com", "hoop": true})
	require.Equal(t, http.StatusOK, code)
	var g struct {
		Email *string `json:"email"`
		Hoop  bool    `json:"hoop"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &g))
	require.NotNil(t, g.Email)
	assert.Equal(t, "amy@example.com", *g.Email)
	assert.False(t, g.Hoop, "hoop only changes through its own route")

	code, env = ts.admin(http.MethodPost, "/admin/guests/"+id+"/hoop", map[string]any{"current": false})
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &g))
	assert.True(t, g.Hoop)

	code, env = ts.admin(http.MethodGet, "/admin/guests/email", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, env.Total)

	code, env = ts.admin(http.MethodDelete, "/admin/guests/"+id, nil)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	code, _ = ts.admin(http.MethodGet, "/admin/guests/"+id, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestErrorEnvelope(t *testing.T) {
	ts := newTestServer(t)

	tt := []struct {
		name    string
		method  string
		path    string
		body    any
		status  int
		message string
	}{
		{
			name:    "validation",
			method:  http.MethodPost,
			path:    "/admin/guests",
			body:    map[string]any{"firstname": "Sam", "attendanceType": "ceremony"},
			status:  http.StatusBadRequest,
			message: "surname",
		},
		{
			name:    "malformed body",
			method:  http.MethodPost,
			path:    "/admin/rooms",
			body:    "not an object",
			status:  http.StatusBadRequest,
			message: "invalid request body",
		},
		{
			name:    "unknown id",
			method:  http.MethodGet,
			path:    "/admin/invites/951812f2-9bbd-481b-a798-6653c355b9c0",
			status:  http.StatusNotFound,
			message: "not found",
		},
		{
			name:   "bad id",
			method: http.MethodDelete,
			path:   "/admin/rooms/nope",
			status: http.StatusNotFound,
		},
		{
			name:    "no recipients",
			method:  http.MethodPost,
			path:    "/admin/comms/all",
			body:    map[string]any{"subject": "Hi", "html": "<p>hi</p>"},
			status:  http.StatusBadRequest,
			message: "no guests",
		},
		{
			name:    "transport failure",
			method:  http.MethodPost,
			path:    "/admin/comms/guest",
			body:    map[string]any{"email": "bounce@example.com", "subject": "Hi", "html": "<p>hi</p>"},
			status:  http.StatusBadGateway,
			message: "mailbox unavailable",
		},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			code, env := ts.admin(tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, code)
			assert.Contains(t, env.message(t), tc.message)
		})
	}
}

func TestInviteRoutes(t *testing.T) {
	ts := newTestServer(t)
	gid := ts.createGuest("Sam", "Smith")

	code, env := ts.admin(http.MethodPost, "/admin/invites", map[string]any{"name": "Smiths", "guest": []string{gid, gid}})
	require.Equal(t, http.StatusCreated, code)
	var inv struct {
		ID         string   `json:"id"`
		Attendance string   `json:"attendance"`
		GuestIDs   []string `json:"guest"`
		QRSVG      *string  `json:"qr_svg"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &inv))
	assert.Equal(t, []string{gid}, inv.GuestIDs)
	assert.Equal(t, "ceremony", inv.Attendance)

	code, env = ts.admin(http.MethodPost, "/admin/invites/"+inv.ID+"/qr", nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &inv))
	require.NotNil(t, inv.QRSVG)
	assert.True(t, strings.HasPrefix(*inv.QRSVG, "<svg"))

	code, env = ts.admin(http.MethodPost, "/admin/invites/qr", map[string]any{"baseUrl": "https://wedding.example.org/"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, env.Total)

	code, env = ts.admin(http.MethodPost, "/admin/invites/"+inv.ID+"/qr", map[string]any{"baseUrl": "not a url"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = ts.admin(http.MethodDelete, "/admin/invites/"+inv.ID+"/qr", nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &inv))
	assert.Nil(t, inv.QRSVG)

	code, env = ts.admin(http.MethodPut, "/admin/invites/"+inv.ID+"/guests", map[string]any{"guest": []string{}})
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &inv))
	assert.Empty(t, inv.GuestIDs)

	code, _ = ts.admin(http.MethodPatch, "/admin/invites/"+inv.ID, map[string]any{"sent": true})
	require.Equal(t, http.StatusOK, code)

	code, env = ts.admin(http.MethodGet, "/admin/overview", nil)
	require.Equal(t, http.StatusOK, code)
	var o service.Overview
	require.NoError(t, json.Unmarshal(env.Data, &o))
	assert.Equal(t, 1, o.Invites)
	assert.Equal(t, 1, o.InvitesSent)
	assert.Equal(t, 1, o.Guests)

	code, _ = ts.admin(http.MethodDelete, "/admin/invites/"+inv.ID, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = ts.admin(http.MethodGet, "/admin/invites", nil)
	require.Equal(t, http.StatusOK, code)
}

func TestPublicInvite(t *testing.T) {
	ts := newTestServer(t)
	gid := ts.createGuest("Sam", "Smith")
	code, _ := ts.admin(http.MethodPatch, "/admin/guests/"+gid, map[string]any{
		"email":     "sam@example.com",
		"phone":     "+44 1234 567890",
		"allergies": "peanuts",
	})
	require.Equal(t, http.StatusOK, code)
	_, env := ts.admin(http.MethodPost, "/admin/invites", map[string]any{"name": "Smiths", "guest": []string{gid}})
	var inv struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &inv))

	code, env = ts.do(http.MethodGet, "/invite/"+inv.ID, nil, false)
	require.Equal(t, http.StatusOK, code)
	var got struct {
		Name   string           `json:"name"`
		Guests []map[string]any `json:"guests"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "Smiths", got.Name)
	require.Len(t, got.Guests, 1)
	assert.Equal(t, "Sam Smith", got.Guests[0]["name"])
	assert.Equal(t, gid, got.Guests[0]["id"])
	for _, field := range []string{"email", "phone", "allergies", "hoop", "hasCheckedIn"} {
		assert.NotContains(t, got.Guests[0], field)
	}
	assert.NotContains(t, string(env.Data), "sam@example.com")
	assert.NotContains(t, string(env.Data), "567890")
	assert.NotContains(t, string(env.Data), "peanuts")

	code, _ = ts.do(http.MethodGet, "/invite/nope", nil, false)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRoomRoutes(t *testing.T) {
	ts := newTestServer(t)
	a := ts.createGuest("A", "One")
	b := ts.createGuest("B", "Two")

	code, env := ts.admin(http.MethodPost, "/admin/rooms", map[string]any{"name": "Loft", "capacity": 1, "guest": []string{a}})
	require.Equal(t, http.StatusCreated, code)
	var room struct {
		ID   string `json:"id"`
		Free int    `json:"free"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &room))
	assert.Equal(t, 0, room.Free)

	code, env = ts.admin(http.MethodPut, "/admin/rooms/"+room.ID+"/guests", map[string]any{"guest": []string{a, b}})
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &room))
	assert.Equal(t, -1, room.Free)

	code, _ = ts.admin(http.MethodPatch, "/admin/rooms/"+room.ID, map[string]any{"capacity": -1})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = ts.admin(http.MethodDelete, "/admin/rooms/"+room.ID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
}

func TestCommsRoutes(t *testing.T) {
	ts := newTestServer(t)
	for _, email := range []string{"a@example.com", "bounce@example.com"} {
		id := ts.createGuest("Guest", email)
		code, _ := ts.admin(http.MethodPatch, "/admin/guests/"+id, map[string]any{"email": email})
		require.Equal(t, http.StatusOK, code)
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/admin/comms/all", strings.NewReader(`{"subject":"Hi","html":"<p>hi</p>"}`))
	r.SetBasicAuth("admin", "secret")
	ts.srv.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)
	var res struct {
		Success bool `json:"success"`
		Sent    int  `json:"sent"`
		Failed  int  `json:"failed"`
		Errors  []struct {
			Email string `json:"email"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Success, "the batch ran, failures are listed per recipient")
	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "bounce@example.com", res.Errors[0].Email)

	code, env := ts.admin(http.MethodPost, "/admin/comms/test", map[string]any{"to": "me@example.com", "subject": "Hi", "html": "x"})
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	code, _ = ts.admin(http.MethodPost, "/admin/comms/test", map[string]any{"subject": "Hi", "html": "x"})
	assert.Equal(t, http.StatusBadRequest, code, "no test address configured")
}

func TestNoRoute(t *testing.T) {
	ts := newTestServer(t)
	code, env := ts.do(http.MethodGet, "/missing", nil, false)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "page not found", env.message(t))
}
