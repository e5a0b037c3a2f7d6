// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package model

import (
	"time"

	"github.com/google/uuid"
)

type Invite struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Attendance Attendance `json:"attendance"`
	Sent       bool       `json:"sent"`
	QRSVG      *string    `json:"qr_svg"`
	Created    time.Time  `json:"created"`
	Updated    time.Time  `json:"updated"`
}

func (i *Invite) RecordID() uuid.UUID { return i.ID }

func (i *Invite) HasQR() bool {
	return i.QRSVG != nil && *i.QRSVG != ""
}

// InvitePatch holds the only invite fields that may be changed after
// creation. Anything else in a request body is dropped while decoding.
type InvitePatch struct {
	Name       *string     `json:"name"`
	Attendance *Attendance `json:"attendance"`
	Sent       *bool       `json:"sent"`
	// QRSVG replaces the cached QR markup, an empty string removes it.
	QRSVG *string `json:"qr_svg"`
}

func (p InvitePatch) Apply(inv *Invite, now time.Time) {
	if p.Name != nil {
		inv.Name = *p.Name
	}
	if p.Attendance != nil {
		inv.Attendance = *p.Attendance
	}
	if p.Sent != nil {
		inv.Sent = *p.Sent
	}
	setOptional(&inv.QRSVG, p.QRSVG)
	inv.Updated = now
}

// InviteURL is the guest facing address encoded into an invite's QR code.
func InviteURL(baseURL string, id uuid.UUID) string {
	return baseURL + "/invite/" + id.String()
}
