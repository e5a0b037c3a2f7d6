// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package service

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/thomascanham/wedding/internal/db"
	"github.com/thomascanham/wedding/internal/model"
)

type Overview struct {
	DaysUntil int `json:"daysUntil"`

	Guests       int `json:"guests"`
	Attending    int `json:"attending"`
	NotAttending int `json:"notAttending"`
	NoResponse   int `json:"noResponse"`
	CheckedIn    int `json:"checkedIn"`
	Ceremony     int `json:"ceremony"`
	Reception    int `json:"reception"`
	WithEmail    int `json:"withEmail"`

	Invites     int `json:"invites"`
	InvitesSent int `json:"invitesSent"`
	InvitesQR   int `json:"invitesWithQr"`

	Rooms    int `json:"rooms"`
	Capacity int `json:"capacity"`
	Assigned int `json:"assigned"`
}

type Dashboard struct {
	store   db.Gateway
	wedding time.Time
	now     func() time.Time
}

func NewDashboard(store db.Gateway, wedding time.Time) *Dashboard {
	return &Dashboard{store: store, wedding: wedding, now: time.Now}
}

// DaysUntil counts whole days from today's midnight to the wedding, never
// below zero.
func DaysUntil(wedding, now time.Time) int {
	now = now.In(wedding.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, wedding.Location())
	days := int(math.Ceil(wedding.Sub(today).Hours() / 24))
	return max(days, 0)
}

func (d *Dashboard) Overview(ctx context.Context) (*Overview, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Overview")
	defer span.End()

	o := &Overview{DaysUntil: DaysUntil(d.wedding, d.now())}

	guests, err := d.store.ListGuests(ctx)
	if err != nil {
		return nil, fail(span, storageErr("list guests", err))
	}
	o.Guests = len(guests)
	for _, g := range guests {
		switch g.RSVPStatus {
		case model.RSVPStatusAttending:
			o.Attending++
		case model.RSVPStatusNotAttending:
			o.NotAttending++
		default:
			o.NoResponse++
		}
		switch g.AttendanceType {
		case model.AttendanceCeremony:
			o.Ceremony++
		case model.AttendanceReception:
			o.Reception++
		}
		if g.HasCheckedIn {
			o.CheckedIn++
		}
		if g.HasEmail() {
			o.WithEmail++
		}
	}

	invites, err := d.store.ListInvites(ctx)
	if err != nil {
		return nil, fail(span, storageErr("list invites", err))
	}
	o.Invites = len(invites)
	for _, inv := range invites {
		if inv.Sent {
			o.InvitesSent++
		}
		if inv.HasQR() {
			o.InvitesQR++
		}
	}

	rooms, err := d.store.ListRooms(ctx)
	if err != nil {
		return nil, fail(span, storageErr("list rooms", err))
	}
	o.Rooms = len(rooms)
	ids := make([]uuid.UUID, 0, len(rooms))
	for _, r := range rooms {
		o.Capacity += r.Capacity
		ids = append(ids, r.ID)
	}
	links, err := d.store.ListLinks(ctx, model.EntityRoom, ids)
	if err != nil {
		return nil, fail(span, storageErr("list room links", err))
	}
	assigned := make(map[uuid.UUID]struct{}, len(links))
	for _, l := range links {
		assigned[l.GuestID] = struct{}{}
	}
	o.Assigned = len(assigned)
	return o, nil
}
