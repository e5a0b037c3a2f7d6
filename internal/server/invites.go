// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/thomascanham/wedding/internal/model"
	"github.com/thomascanham/wedding/internal/service"
)

type guestSet struct {
	GuestIDs []uuid.UUID `json:"guest"`
}

type qrRequest struct {
	BaseURL string `json:"baseUrl"`
}

// publicInvite is the target of the invite QR code. It serves the public
// projection only, guest contact details stay behind /admin.
func (s *Server) publicInvite(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "Handler.publicInvite")
	defer span.End()

	id, ok := s.id(c)
	if !ok {
		return
	}
	span.SetAttributes(attribute.String("invite", id.String()))
	inv, err := s.svc.Invites.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		s.respondError(c, "lookup invite", err)
		return
	}
	respondData(c, http.StatusOK, model.NewPublicInvite(inv))
}

func (s *Server) listInvites(c *gin.Context) {
	invites, err := s.svc.Invites.List(c.Request.Context())
	if err != nil {
		s.respondError(c, "list invites", err)
		return
	}
	respondList(c, invites)
}

func (s *Server) getInvite(c *gin.Context) {
	id, ok := s.id(c)
	if !ok {
		return
	}
	inv, err := s.svc.Invites.Get(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, "get invite", err)
		return
	}
	respondData(c, http.StatusOK, inv)
}

func (s *Server) createInvite(c *gin.Context) {
	var in service.NewInvite
	if !s.bind(c, &in) {
		return
	}
	inv, err := s.svc.Invites.Create(c.Request.Context(), in)
	if err != nil {
		s.respondError(c, "create invite", err)
		return
	}
	respondData(c, http.StatusCreated, inv)
}

func (s *Server) updateInvite(c *gin.Context) {
	id, ok := s.id(c)
	if !ok {
		return
	}
	var patch model.InvitePatch
	if !s.bind(c, &patch) {
		return
	}
	inv, err := s.svc.Invites.Update(c.Request.Context(), id, patch)
	if err != nil {
		s.respondError(c, "update invite", err)
		return
	}
	respondData(c, http.StatusOK, inv)
}

func (s *Server) setInviteGuests(c *gin.Context) {
	id, ok := s.id(c)
	if !ok {
		return
	}
	var req guestSet
	if !s.bind(c, &req) {
		return
	}
	inv, err := s.svc.Invites.SetGuests(c.Request.Context(), id, req.GuestIDs)
	if err != nil {
		s.respondError(c, "set invite guests", err)
		return
	}
	respondData(c, http.StatusOK, inv)
}

// baseURL reads an optional {baseUrl} body and falls back to the configured
// public address.
func (s *Server) baseURL(c *gin.Context) (string, bool) {
	var req qrRequest
	if c.Request.ContentLength != 0 && !s.bind(c, &req) {
		return "", false
	}
	if req.BaseURL == "" {
		req.BaseURL = s.opts.BaseURL
	}
	return req.BaseURL, true
}

func (s *Server) generateQRCode(c *gin.Context) {
	id, ok := s.id(c)
	if !ok {
		return
	}
	base, ok := s.baseURL(c)
	if !ok {
		return
	}
	inv, err := s.svc.Invites.GenerateQRCode(c.Request.Context(), id, base)
	if err != nil {
		s.respondError(c, "generate qr code", err)
		return
	}
	respondData(c, http.StatusOK, inv)
}

func (s *Server) generateAllQRCodes(c *gin.Context) {
	base, ok := s.baseURL(c)
	if !ok {
		return
	}
	res, err := s.svc.Invites.GenerateAllQRCodes(c.Request.Context(), base)
	if err != nil {
		s.respondError(c, "generate all qr codes", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":   res.Generated,
		"errors": res.Failed,
		"total":  len(res.Generated),
		"error":  false,
	})
}

func (s *Server) deleteQRCode(c *gin.Context) {
	id, ok := s.id(c)
	if !ok {
		return
	}
	inv, err := s.svc.Invites.DeleteQRCode(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, "delete qr code", err)
		return
	}
	respondData(c, http.StatusOK, inv)
}

func (s *Server) deleteInvite(c *gin.Context) {
	id, ok := s.id(c)
	if !ok {
		return
	}
	if err := s.svc.Invites.Delete(c.Request.Context(), id); err != nil {
		s.respondError(c, "delete invite", err)
		return
	}
	respondSuccess(c)
}
