// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/thomascanham/wedding/internal/service"
)

type errorBody struct {
	Message string `json:"message"`
}

func respondData(c *gin.Context, status int, v any) {
	c.JSON(status, gin.H{"data": v, "error": false})
}

func respondList[T any](c *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, gin.H{"data": items, "total": len(items), "error": false})
}

func respondSuccess(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "error": false})
}

func statusOf(err error) int {
	var (
		verr *service.ValidationError
		terr *service.TransportError
	)
	switch {
	case errors.As(err, &verr), errors.Is(err, service.ErrNoRecipients):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &terr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *Server) respondError(c *gin.Context, op string, err error) {
	status := statusOf(err)
	ctx := c.Request.Context()
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(ctx, op, "error", err)
	} else {
		s.logger.WarnContext(ctx, op, "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"data": nil, "error": errorBody{Message: err.Error()}})
}

func (s *Server) bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		s.respondError(c, "decode request", &service.ValidationError{Message: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func (s *Server) id(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		s.respondError(c, "parse id", service.ErrNotFound)
		return uuid.Nil, false
	}
	return id, true
}
