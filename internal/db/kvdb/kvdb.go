// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package kvdb

import (
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/thomascanham/wedding/internal/db"
)

// Open opens or creates the bolt file at path and returns all stores backed
// by it. Closing the result closes the file.
func Open(path string) (*db.Stores, error) {
	bdb, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, err
	}
	stores, err := New(bdb)
	if err != nil {
		bdb.Close()
		return nil, err
	}
	stores.CloseFN = bdb.Close
	return stores, nil
}

// New wires all stores onto an already opened database. The caller keeps
// ownership of bdb.
func New(bdb *bolt.DB) (*db.Stores, error) {
	guests, err := NewGuestStore(bdb)
	if err != nil {
		return nil, err
	}
	invites, err := NewInviteStore(bdb)
	if err != nil {
		return nil, err
	}
	rooms, err := NewRoomStore(bdb)
	if err != nil {
		return nil, err
	}
	links, err := NewLinkStore(bdb)
	if err != nil {
		return nil, err
	}
	return &db.Stores{
		GuestStore:  guests,
		InviteStore: invites,
		RoomStore:   rooms,
		LinkStore:   links,
	}, nil
}
