// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package model

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Attendance string

const (
	AttendanceCeremony  Attendance = "ceremony"
	AttendanceReception Attendance = "reception"
)

func (a Attendance) Valid() bool {
	return a == AttendanceCeremony || a == AttendanceReception
}

// RSVPStatus is empty until the guest answered. The empty status is encoded
// as JSON null.
type RSVPStatus string

const (
	RSVPStatusNone         RSVPStatus = ""
	RSVPStatusAttending    RSVPStatus = "attending"
	RSVPStatusNotAttending RSVPStatus = "not-attending"
)

func (s RSVPStatus) Valid() bool {
	switch s {
	case RSVPStatusNone, RSVPStatusAttending, RSVPStatusNotAttending:
		return true
	}
	return false
}

func (s RSVPStatus) MarshalJSON() ([]byte, error) {
	if s == RSVPStatusNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(s))
}

func (s *RSVPStatus) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = RSVPStatusNone
		return nil
	}
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*s = RSVPStatus(raw)
	return nil
}

type Guest struct {
	ID             uuid.UUID  `json:"id"`
	Firstname      string     `json:"firstname"`
	Surname        string     `json:"surname"`
	Name           string     `json:"name"`
	AttendanceType Attendance `json:"attendanceType"`
	RSVPStatus     RSVPStatus `json:"rsvpStatus"`
	HasCheckedIn   bool       `json:"hasCheckedIn"`
	Hoop           bool       `json:"hoop"`
	Phone          *string    `json:"phone"`
	Email          *string    `json:"email"`
	Starter        *string    `json:"starter"`
	Main           *string    `json:"main"`
	Dessert        *string    `json:"dessert"`
	Dietry         *string    `json:"dietry"`
	Allergies      *string    `json:"allergies"`
	Created        time.Time  `json:"created"`
	Updated        time.Time  `json:"updated"`
}

// NewGuest returns a guest with every optional field unset.
func NewGuest(firstname, surname string, attendance Attendance, now time.Time) *Guest {
	return &Guest{
		Firstname:      firstname,
		Surname:        surname,
		Name:           FullName(firstname, surname),
		AttendanceType: attendance,
		Created:        now,
		Updated:        now,
	}
}

func FullName(firstname, surname string) string {
	return firstname + " " + surname
}

// HasEmail reports whether the guest is eligible for bulk mail.
func (g *Guest) HasEmail() bool {
	return g.Email != nil && *g.Email != ""
}

// SortGuests orders guests by surname, then firstname, ignoring case. Equal
// names keep their relative order.
func SortGuests(guests []*Guest) {
	sort.SliceStable(guests, func(i, j int) bool {
		si, sj := strings.ToLower(guests[i].Surname), strings.ToLower(guests[j].Surname)
		if si != sj {
			return si < sj
		}
		return strings.ToLower(guests[i].Firstname) < strings.ToLower(guests[j].Firstname)
	})
}

// GuestPatch lists the guest fields an admin may change. Hoop is only set
// through the toggle operation and never decoded from a request.
type GuestPatch struct {
	Firstname      *string     `json:"firstname"`
	Surname        *string     `json:"surname"`
	AttendanceType *Attendance `json:"attendanceType"`
	RSVPStatus     *RSVPStatus `json:"rsvpStatus"`
	HasCheckedIn   *bool       `json:"hasCheckedIn"`
	Hoop           *bool       `json:"-"`
	Phone          *string     `json:"phone"`
	Email          *string     `json:"email"`
	Starter        *string     `json:"starter"`
	Main           *string     `json:"main"`
	Dessert        *string     `json:"dessert"`
	Dietry         *string     `json:"dietry"`
	Allergies      *string     `json:"allergies"`
}

// Apply merges the patch into g and stamps the update time. The derived name
// follows firstname and surname. Optional text fields are cleared by an
// empty string.
func (p GuestPatch) Apply(g *Guest, now time.Time) {
	if p.Firstname != nil {
		g.Firstname = *p.Firstname
	}
	if p.Surname != nil {
		g.Surname = *p.Surname
	}
	if p.Firstname != nil || p.Surname != nil {
		g.Name = FullName(g.Firstname, g.Surname)
	}
	if p.AttendanceType != nil {
		g.AttendanceType = *p.AttendanceType
	}
	if p.RSVPStatus != nil {
		g.RSVPStatus = *p.RSVPStatus
	}
	if p.HasCheckedIn != nil {
		g.HasCheckedIn = *p.HasCheckedIn
	}
	if p.Hoop != nil {
		g.Hoop = *p.Hoop
	}
	setOptional(&g.Phone, p.Phone)
	setOptional(&g.Email, p.Email)
	setOptional(&g.Starter, p.Starter)
	setOptional(&g.Main, p.Main)
	setOptional(&g.Dessert, p.Dessert)
	setOptional(&g.Dietry, p.Dietry)
	setOptional(&g.Allergies, p.Allergies)
	g.Updated = now
}

func setOptional(dst **string, src *string) {
	if src == nil {
		return
	}
	if *src == "" {
		*dst = nil
		return
	}
	v := *src
	*dst = &v
}
