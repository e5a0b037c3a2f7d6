// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

// Package dbopen selects a storage backend from a connection string.
package dbopen

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/thomascanham/wedding/internal/db"
	"github.com/thomascanham/wedding/internal/db/jsondb"
	"github.com/thomascanham/wedding/internal/db/kvdb"
	"github.com/thomascanham/wedding/internal/db/sqldb"
)

var ErrUnknownBackend = errors.New("unknown storage backend")

// Open understands kvdb://path, jsondb://dir, sqlite://path and
// postgres://dsn (postgresql:// too).
func Open(conn string) (db.Gateway, error) {
	u, err := url.Parse(conn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse db connection string: %w", err)
	}

	path := u.Host + u.Path
	switch u.Scheme {
	case "kvdb":
		return gateway(kvdb.Open(path))
	case "jsondb":
		return gateway(jsondb.Open(path))
	case "sqlite":
		if u.RawQuery != "" {
			path += "?" + u.RawQuery
		}
		return gateway(sqldb.OpenSQLite(path))
	case "postgres", "postgresql":
		return gateway(sqldb.OpenPostgres(conn))
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, u.Scheme)
}

// gateway keeps a nil backend from turning into a non-nil interface.
func gateway[T db.Gateway](g T, err error) (db.Gateway, error) {
	if err != nil {
		return nil, err
	}
	return g, nil
}
