// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package dbopen

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	tt := []struct {
		name string
		conn func(dir string) string
	}{
		{"kvdb", func(dir string) string { return "kvdb://" + filepath.Join(dir, "wedding.db") }},
		{"jsondb", func(dir string) string { return "jsondb://" + dir }},
		{"sqlite", func(dir string) string { return "sqlite://" + filepath.Join(dir, "wedding.sqlite") }},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			g, err := Open(tc.conn(t.TempDir()))
			require.NoError(t, err)
			defer g.Close()

			guests, err := g.ListGuests(context.Background())
			require.NoError(t, err)
			assert.Empty(t, guests)
		})
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open("mongodb://localhost/wedding")
	assert.ErrorIs(t, err, ErrUnknownBackend)
}
