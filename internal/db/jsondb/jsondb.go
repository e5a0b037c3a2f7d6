// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package jsondb

import "github.com/thomascanham/wedding/internal/db"

// Open loads or creates the data file inside dir.
func Open(dir string) (*db.Stores, error) {
	f, err := openFile(dir)
	if err != nil {
		return nil, err
	}
	return &db.Stores{
		GuestStore:  &GuestStore{f: f},
		InviteStore: &InviteStore{f: f},
		RoomStore:   &RoomStore{f: f},
		LinkStore:   &LinkStore{f: f},
	}, nil
}
