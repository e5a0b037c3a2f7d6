// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package model

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// EntityType names a collection in every storage backend.
type EntityType string

const (
	EntityGuest       EntityType = "guests"
	EntityInvite      EntityType = "invites"
	EntityRoom        EntityType = "rooms"
	EntityInviteGuest EntityType = "invite_guests"
	EntityRoomGuest   EntityType = "room_guests"
)

// LinkEntity returns the join collection of a parent entity that owns a
// guest set.
func (e EntityType) LinkEntity() (EntityType, bool) {
	switch e {
	case EntityInvite:
		return EntityInviteGuest, true
	case EntityRoom:
		return EntityRoomGuest, true
	}
	return "", false
}

// Record is implemented by entities that own a guest set.
type Record interface {
	RecordID() uuid.UUID
}

// Link is one edge between an invite or room and a guest.
type Link struct {
	ParentID uuid.UUID `json:"parent_id"`
	GuestID  uuid.UUID `json:"guest_id"`
}

// UniqueIDs drops nil and repeated ids, keeping the first occurrence.
func UniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	res := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		res = append(res, id)
	}
	return res
}

func SortInvites(invites []*Invite) {
	sort.SliceStable(invites, func(i, j int) bool {
		return strings.ToLower(invites[i].Name) < strings.ToLower(invites[j].Name)
	})
}

func SortRooms(rooms []*Room) {
	sort.SliceStable(rooms, func(i, j int) bool {
		return strings.ToLower(rooms[i].Name) < strings.ToLower(rooms[j].Name)
	})
}
