// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thomascanham/wedding/internal/model"
	"github.com/thomascanham/wedding/internal/service"
)

func (s *Server) listGuests(c *gin.Context) {
	guests, err := s.svc.Guests.List(c.Request.Context())
	if err != nil {
		s.respondError(c, "list guests", err)
		return
	}
	respondList(c, guests)
}

func (s *Server) listGuestsWithEmail(c *gin.Context) {
	guests, err := s.svc.Notifier.ListGuestsWithEmail(c.Request.Context())
	if err != nil {
		s.respondError(c, "list guests with email", err)
		return
	}
	respondList(c, guests)
}

func (s *Server) getGuest(c *gin.Context) {
	id, ok := s.id(c)
	if !ok {
		return
	}
	g, err := s.svc.Guests.Get(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, "get guest", err)
		return
	}
	respondData(c, http.StatusOK, g)
}

func (s *Server) createGuest(c *gin.Context) {
	var in service.NewGuest
	if !s.bind(c, &in) {
		return
	}
	g, err := s.svc.Guests.Create(c.Request.Context(), in)
	if err != nil {
		s.respondError(c, "create guest", err)
		return
	}
	respondData(c, http.StatusCreated, g)
}

func (s *Server) updateGuest(c *gin.Context) {
	id, ok := s.id(c)
	if !ok {
		return
	}
	var patch model.GuestPatch
	if !s.bind(c, &patch) {
		return
	}
	g, err := s.svc.Guests.Update(c.Request.Context(), id, patch)
	if err != nil {
		s.respondError(c, "update guest", err)
		return
	}
	respondData(c, http.StatusOK, g)
}

func (s *Server) toggleHoop(c *gin.Context) {
	id, ok := s.id(c)
	if !ok {
		return
	}
	var req struct {
		Current bool `json:"current"`
	}
	if !s.bind(c, &req) {
		return
	}
	g, err := s.svc.Guests.ToggleHoop(c.Request.Context(), id, req.Current)
	if err != nil {
		s.respondError(c, "toggle hoop", err)
		return
	}
	respondData(c, http.StatusOK, g)
}

func (s *Server) deleteGuest(c *gin.Context) {
	id, ok := s.id(c)
	if !ok {
		return
	}
	if err := s.svc.Guests.Delete(c.Request.Context(), id); err != nil {
		s.respondError(c, "delete guest", err)
		return
	}
	respondSuccess(c)
}
