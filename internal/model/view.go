// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package model

import "github.com/google/uuid"

type Expand struct {
	Guest []*Guest `json:"guest"`
}

// InviteView is an invite with its current guest set attached.
type InviteView struct {
	*Invite
	GuestIDs []uuid.UUID `json:"guest"`
	Expand   Expand      `json:"expand"`
}

func NewInviteView(inv *Invite, guestIDs []uuid.UUID, guests []*Guest) *InviteView {
	return &InviteView{
		Invite:   inv,
		GuestIDs: nonNil(guestIDs),
		Expand:   Expand{Guest: nonNil(guests)},
	}
}

type RoomView struct {
	*Room
	GuestIDs []uuid.UUID `json:"guest"`
	Expand   Expand      `json:"expand"`
	Free     int         `json:"free"`
}

func NewRoomView(room *Room, guestIDs []uuid.UUID, guests []*Guest) *RoomView {
	return &RoomView{
		Room:     room,
		GuestIDs: nonNil(guestIDs),
		Expand:   Expand{Guest: nonNil(guests)},
		Free:     room.Free(len(guests)),
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// PublicGuest is the part of a guest shown to whoever holds the invite link.
type PublicGuest struct {
	ID         uuid.UUID  `json:"id"`
	Firstname  string     `json:"firstname"`
	Surname    string     `json:"surname"`
	Name       string     `json:"name"`
	RSVPStatus RSVPStatus `json:"rsvpStatus"`
}

// PublicInvite is an invite as served outside the admin area. Contact
// details, menu choices and admin flags are left out.
type PublicInvite struct {
	ID         uuid.UUID     `json:"id"`
	Name       string        `json:"name"`
	Attendance Attendance    `json:"attendance"`
	Guests     []PublicGuest `json:"guests"`
}

func NewPublicInvite(v *InviteView) *PublicInvite {
	res := &PublicInvite{
		ID:         v.ID,
		Name:       v.Name,
		Attendance: v.Attendance,
		Guests:     make([]PublicGuest, 0, len(v.Expand.Guest)),
	}
	for _, g := range v.Expand.Guest {
		res.Guests = append(res.Guests, PublicGuest{
			ID:         g.ID,
			Firstname:  g.Firstname,
			Surname:    g.Surname,
			Name:       g.Name,
			RSVPStatus: g.RSVPStatus,
		})
	}
	return res
}
