// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package model

import (
	"time"

	"github.com/google/uuid"
)

// Room is a lodging unit. Capacity is informational, assignments beyond it
// are allowed.
type Room struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Block       string    `json:"block"`
	Capacity    int       `json:"capacity"`
	Created     time.Time `json:"created"`
	Updated     time.Time `json:"updated"`
}

func (r *Room) RecordID() uuid.UUID { return r.ID }

// Free returns the number of unassigned beds, negative when overbooked.
func (r *Room) Free(assigned int) int {
	return r.Capacity - assigned
}

type RoomPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Block       *string `json:"block"`
	Capacity    *int    `json:"capacity"`
}

func (p RoomPatch) Apply(r *Room, now time.Time) {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Block != nil {
		r.Block = *p.Block
	}
	if p.Capacity != nil {
		r.Capacity = *p.Capacity
	}
	r.Updated = now
}
