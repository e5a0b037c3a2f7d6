// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/thomascanham/wedding/internal/db/convert"
	"github.com/thomascanham/wedding/internal/db/dbopen"
)

func main() {
	var (
		from = flag.String("from", "jsondb://testdata", "source database connection string")
		to   = flag.String("to", "kvdb://output.db", "target database connection string")
	)
	flag.Parse()

	jsonHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{})
	logger := slog.New(jsonHandler)

	src, err := dbopen.Open(*from)
	if err != nil {
		logger.Error("unable to open source", "db", *from, "error", err)
		os.Exit(1)
	}
	defer src.Close()

	dst, err := dbopen.Open(*to)
	if err != nil {
		logger.Error("unable to open target", "db", *to, "error", err)
		os.Exit(1)
	}
	defer dst.Close()

	logger.Info("start converting", "from", *from, "to", *to)
	stats, err := convert.Into(context.Background(), dst, src)
	if err != nil {
		logger.Error("conversion failed", "error", err)
		os.Exit(1)
	}
	logger.Info("finished converting",
		"guests", stats.Guests,
		"invites", stats.Invites,
		"rooms", stats.Rooms,
		"invite_links", stats.InviteLinks,
		"room_links", stats.RoomLinks,
	)
}
