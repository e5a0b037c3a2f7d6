// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thomascanham/wedding/internal/service"
)

type directMessage struct {
	Email string `json:"email"`
	service.Message
}

type testMessage struct {
	To string `json:"to"`
	service.Message
}

func (s *Server) overview(c *gin.Context) {
	o, err := s.svc.Dashboard.Overview(c.Request.Context())
	if err != nil {
		s.respondError(c, "overview", err)
		return
	}
	respondData(c, http.StatusOK, o)
}

func (s *Server) sendToAll(c *gin.Context) {
	var msg service.Message
	if !s.bind(c, &msg) {
		return
	}
	res, err := s.svc.Notifier.SendToAllGuests(c.Request.Context(), msg)
	if err != nil {
		s.respondError(c, "send to all guests", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"sent":    res.Sent,
		"failed":  res.Failed,
		"results": res.Results,
		"errors":  res.Errors,
		"error":   false,
	})
}

func (s *Server) sendToGuest(c *gin.Context) {
	var req directMessage
	if !s.bind(c, &req) {
		return
	}
	if err := s.svc.Notifier.SendToGuest(c.Request.Context(), req.Email, req.Message); err != nil {
		s.respondError(c, "send to guest", err)
		return
	}
	respondSuccess(c)
}

func (s *Server) sendTest(c *gin.Context) {
	var req testMessage
	if !s.bind(c, &req) {
		return
	}
	if err := s.svc.Notifier.SendTestEmail(c.Request.Context(), req.To, req.Message); err != nil {
		s.respondError(c, "send test email", err)
		return
	}
	respondSuccess(c)
}
