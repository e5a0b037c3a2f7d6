// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package db

import (
	"errors"
	"fmt"

	"github.com/thomascanham/wedding/internal/model"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrUnknownParent = errors.New("entity does not own a guest set")
)

// Gateway is a complete storage backend.
type Gateway interface {
	GuestStore
	InviteStore
	RoomStore
	LinkStore
	Close() error
}

// Stores bundles the stores of one backend into a Gateway.
type Stores struct {
	GuestStore
	InviteStore
	RoomStore
	LinkStore

	CloseFN func() error
}

func (s *Stores) Close() error {
	if s.CloseFN == nil {
		return nil
	}
	return s.CloseFN()
}

// LinkEntity resolves the join collection of parent or fails with
// ErrUnknownParent.
func LinkEntity(parent model.EntityType) (model.EntityType, error) {
	e, ok := parent.LinkEntity()
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownParent, parent)
	}
	return e, nil
}
