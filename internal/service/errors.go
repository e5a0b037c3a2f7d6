// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package service

import (
	"errors"
	"fmt"

	"github.com/thomascanham/wedding/internal/db"
	"github.com/thomascanham/wedding/internal/relation"
)

var (
	ErrNotFound     = db.ErrNotFound
	ErrNoRecipients = errors.New("no guests with email addresses found")
)

// ValidationError is returned before any side effect happened.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + " " + e.Message
}

// StorageError wraps a failed persistence call. Earlier steps of the same
// operation are not rolled back unless the operation says so.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *StorageError) Unwrap() error { return e.Err }

// TransportError wraps a failed mail delivery or QR rendering.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	var unknown *relation.UnknownGuestsError
	if errors.As(err, &unknown) {
		return &ValidationError{Field: "guest", Message: fmt.Sprintf("references %d unknown guest(s)", len(unknown.IDs))}
	}
	return &StorageError{Op: op, Err: err}
}
