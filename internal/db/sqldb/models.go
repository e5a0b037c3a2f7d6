// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package sqldb

import (
	"time"

	"github.com/google/uuid"

	"github.com/thomascanham/wedding/internal/model"
)

type guestRow struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Firstname      string    `gorm:"size:255;not null"`
	Surname        string    `gorm:"size:255;not null"`
	Name           string    `gorm:"size:512;not null"`
	AttendanceType string    `gorm:"size:32;not null"`
	RSVPStatus     string    `gorm:"column:rsvp_status;size:32"`
	HasCheckedIn   bool      `gorm:"not null"`
	Hoop           bool      `gorm:"not null"`
	Phone          *string   `gorm:"size:64"`
	Email          *string   `gorm:"size:255;index"`
	Starter        *string
	Main           *string
	Dessert        *string
	Dietry         *string
	Allergies      *string
	Created        time.Time `gorm:"not null;index"`
	Updated        time.Time `gorm:"not null"`
}

func (guestRow) TableName() string { return string(model.EntityGuest) }

func toGuestRow(g *model.Guest) *guestRow {
	return &guestRow{
		ID:             g.ID,
		Firstname:      g.Firstname,
		Surname:        g.Surname,
		Name:           g.Name,
		AttendanceType: string(g.AttendanceType),
		RSVPStatus:     string(g.RSVPStatus),
		HasCheckedIn:   g.HasCheckedIn,
		Hoop:           g.Hoop,
		Phone:          g.Phone,
		Email:          g.Email,
		Starter:        g.Starter,
		Main:           g.Main,
		Dessert:        g.Dessert,
		Dietry:         g.Dietry,
		Allergies:      g.Allergies,
		Created:        g.Created,
		Updated:        g.Updated,
	}
}

func (r *guestRow) toModel() *model.Guest {
	return &model.Guest{
		ID:             r.ID,
		Firstname:      r.Firstname,
		Surname:        r.Surname,
		Name:           r.Name,
		AttendanceType: model.Attendance(r.AttendanceType),
		RSVPStatus:     model.RSVPStatus(r.RSVPStatus),
		HasCheckedIn:   r.HasCheckedIn,
		Hoop:           r.Hoop,
		Phone:          r.Phone,
		Email:          r.Email,
		Starter:        r.Starter,
		Main:           r.Main,
		Dessert:        r.Dessert,
		Dietry:         r.Dietry,
		Allergies:      r.Allergies,
		Created:        r.Created,
		Updated:        r.Updated,
	}
}

type inviteRow struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name       string    `gorm:"size:255;not null"`
	Attendance string    `gorm:"size:32;not null"`
	Sent       bool      `gorm:"not null"`
	QRSVG      *string   `gorm:"column:qr_svg"`
	Created    time.Time `gorm:"not null;index"`
	Updated    time.Time `gorm:"not null"`
}

func (inviteRow) TableName() string { return string(model.EntityInvite) }

func toInviteRow(i *model.Invite) *inviteRow {
	return &inviteRow{
		ID:         i.ID,
		Name:       i.Name,
		Attendance: string(i.Attendance),
		Sent:       i.Sent,
		QRSVG:      i.QRSVG,
		Created:    i.Created,
		Updated:    i.Updated,
	}
}

func (r *inviteRow) toModel() *model.Invite {
	return &model.Invite{
		ID:         r.ID,
		Name:       r.Name,
		Attendance: model.Attendance(r.Attendance),
		Sent:       r.Sent,
		QRSVG:      r.QRSVG,
		Created:    r.Created,
		Updated:    r.Updated,
	}
}

type roomRow struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"size:255;not null"`
	Description string
	Block       string    `gorm:"size:255"`
	Capacity    int       `gorm:"not null"`
	Created     time.Time `gorm:"not null;index"`
	Updated     time.Time `gorm:"not null"`
}

func (roomRow) TableName() string { return string(model.EntityRoom) }

func toRoomRow(r *model.Room) *roomRow {
	return &roomRow{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Block:       r.Block,
		Capacity:    r.Capacity,
		Created:     r.Created,
		Updated:     r.Updated,
	}
}

func (r *roomRow) toModel() *model.Room {
	return &model.Room{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Block:       r.Block,
		Capacity:    r.Capacity,
		Created:     r.Created,
		Updated:     r.Updated,
	}
}

// linkRow is the shape shared by both join tables. Seq keeps insertion order.
type linkRow struct {
	Seq      uint64    `gorm:"primaryKey;autoIncrement"`
	ParentID uuid.UUID `gorm:"type:uuid;not null"`
	GuestID  uuid.UUID `gorm:"type:uuid;not null"`
}

// The join tables are migrated through their own types so index names stay
// unique per schema.
type inviteGuestRow struct {
	Seq      uint64    `gorm:"primaryKey;autoIncrement"`
	ParentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_invite_guests_pair"`
	GuestID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_invite_guests_pair;index:idx_invite_guests_guest"`
}

func (inviteGuestRow) TableName() string { return string(model.EntityInviteGuest) }

type roomGuestRow struct {
	Seq      uint64    `gorm:"primaryKey;autoIncrement"`
	ParentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_room_guests_pair"`
	GuestID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_room_guests_pair;index:idx_room_guests_guest"`
}

func (roomGuestRow) TableName() string { return string(model.EntityRoomGuest) }
