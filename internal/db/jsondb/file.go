// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package jsondb

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/thomascanham/wedding/internal/db"
	"github.com/thomascanham/wedding/internal/model"
)

const filename = "wedding.json"

type snapshot struct {
	Guests       map[uuid.UUID]*model.Guest  `json:"guests"`
	Invites      map[uuid.UUID]*model.Invite `json:"invites"`
	Rooms        map[uuid.UUID]*model.Room   `json:"rooms"`
	InviteGuests map[uuid.UUID][]uuid.UUID   `json:"invite_guests"`
	RoomGuests   map[uuid.UUID][]uuid.UUID   `json:"room_guests"`
}

func newSnapshot() *snapshot {
	return &snapshot{
		Guests:       make(map[uuid.UUID]*model.Guest),
		Invites:      make(map[uuid.UUID]*model.Invite),
		Rooms:        make(map[uuid.UUID]*model.Room),
		InviteGuests: make(map[uuid.UUID][]uuid.UUID),
		RoomGuests:   make(map[uuid.UUID][]uuid.UUID),
	}
}

func (s *snapshot) links(parent model.EntityType) (map[uuid.UUID][]uuid.UUID, error) {
	switch parent {
	case model.EntityInvite:
		return s.InviteGuests, nil
	case model.EntityRoom:
		return s.RoomGuests, nil
	}
	_, err := db.LinkEntity(parent)
	return nil, err
}

// clone copies every record so a failed write leaves the live state alone.
func (s *snapshot) clone() *snapshot {
	c := newSnapshot()
	for k, v := range s.Guests {
		g := *v
		c.Guests[k] = &g
	}
	for k, v := range s.Invites {
		i := *v
		c.Invites[k] = &i
	}
	for k, v := range s.Rooms {
		r := *v
		c.Rooms[k] = &r
	}
	for k, v := range s.InviteGuests {
		c.InviteGuests[k] = append([]uuid.UUID(nil), v...)
	}
	for k, v := range s.RoomGuests {
		c.RoomGuests[k] = append([]uuid.UUID(nil), v...)
	}
	return c
}

// file keeps the whole data set in memory and rewrites it on every change.
type file struct {
	mu   sync.RWMutex
	path string
	data *snapshot
}

func openFile(dir string) (*file, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	f := &file{
		path: filepath.Join(dir, filename),
		data: newSnapshot(),
	}
	return f, f.loadFromFile()
}

func (f *file) view(ctx context.Context, fn func(*snapshot) error) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "View")
	defer span.End()

	span.AddEvent("RLock")
	f.mu.RLock()
	defer span.AddEvent("RUnlock")
	defer f.mu.RUnlock()

	if err := fn(f.data); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// update runs fn on a copy of the data and swaps it in once it is on disk.
func (f *file) update(ctx context.Context, fn func(*snapshot) error) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Update")
	defer span.End()

	span.AddEvent("Lock")
	f.mu.Lock()
	defer span.AddEvent("Unlock")
	defer f.mu.Unlock()

	next := f.data.clone()
	if err := fn(next); err != nil {
		span.RecordError(err)
		return err
	}
	if err := f.saveToFile(ctx, next); err != nil {
		return err
	}
	f.data = next
	return nil
}

func (f *file) saveToFile(ctx context.Context, data *snapshot) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "SaveToFile")
	defer span.End()

	fileData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		span.RecordError(err)
		return err
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, fileData, 0o644); err != nil {
		span.RecordError(err)
		return err
	}
	if err := os.Rename(tmp, f.path); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (f *file) loadFromFile() error {
	fileData, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(fileData)) == 0 {
		return nil
	}

	data := newSnapshot()
	if err := json.Unmarshal(fileData, data); err != nil {
		return err
	}
	// Collections missing from older files decode as nil maps.
	empty := newSnapshot()
	if data.Guests == nil {
		data.Guests = empty.Guests
	}
	if data.Invites == nil {
		data.Invites = empty.Invites
	}
	if data.Rooms == nil {
		data.Rooms = empty.Rooms
	}
	if data.InviteGuests == nil {
		data.InviteGuests = empty.InviteGuests
	}
	if data.RoomGuests == nil {
		data.RoomGuests = empty.RoomGuests
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = data
	return nil
}

// sorted returns copies of the records ordered by creation time, then id.
func sorted[T any](m map[uuid.UUID]*T, created func(*T) (int64, uuid.UUID)) []*T {
	res := make([]*T, 0, len(m))
	for _, v := range m {
		c := *v
		res = append(res, &c)
	}
	sort.Slice(res, func(i, j int) bool {
		ti, idi := created(res[i])
		tj, idj := created(res[j])
		if ti != tj {
			return ti < tj
		}
		return idi.String() < idj.String()
	})
	return res
}
