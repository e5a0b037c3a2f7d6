// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thomascanham/wedding/internal/model"
	"github.com/thomascanham/wedding/internal/service"
)

func (s *Server) listRooms(c *gin.Context) {
	rooms, err := s.svc.Rooms.List(c.Request.Context())
	if err != nil {
		s.respondError(c, "list rooms", err)
		return
	}
	respondList(c, rooms)
}

func (s *Server) getRoom(c *gin.Context) {
	id, ok := s.id(c)
	if !ok {
		return
	}
	room, err := s.svc.Rooms.Get(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, "get room", err)
		return
	}
	respondData(c, http.StatusOK, room)
}

func (s *Server) createRoom(c *gin.Context) {
	var in service.NewRoom
	if !s.bind(c, &in) {
		return
	}
	room, err := s.svc.Rooms.Create(c.Request.Context(), in)
	if err != nil {
		s.respondError(c, "create room", err)
		return
	}
	respondData(c, http.StatusCreated, room)
}

func (s *Server) updateRoom(c *gin.Context) {
	id, ok := s.id(c)
	if !ok {
		return
	}
	var patch model.RoomPatch
	if !s.bind(c, &patch) {
		return
	}
	room, err := s.svc.Rooms.Update(c.Request.Context(), id, patch)
	if err != nil {
		s.respondError(c, "update room", err)
		return
	}
	respondData(c, http.StatusOK, room)
}

func (s *Server) setRoomGuests(c *gin.Context) {
	id, ok := s.id(c)
	if !ok {
		return
	}
	var req guestSet
	if !s.bind(c, &req) {
		return
	}
	room, err := s.svc.Rooms.AddGuests(c.Request.Context(), id, req.GuestIDs)
	if err != nil {
		s.respondError(c, "assign room guests", err)
		return
	}
	respondData(c, http.StatusOK, room)
}

func (s *Server) deleteRoom(c *gin.Context) {
	id, ok := s.id(c)
	if !ok {
		return
	}
	if err := s.svc.Rooms.Delete(c.Request.Context(), id); err != nil {
		s.respondError(c, "delete room", err)
		return
	}
	respondSuccess(c)
}
