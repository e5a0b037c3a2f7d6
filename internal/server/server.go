// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package server

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	"github.com/thomascanham/wedding/internal/service"
)

type Options struct {
	ServiceName   string
	AdminUser     string
	AdminPassword string
	AllowOrigins  []string
	// BaseURL is used for invite links when a request does not name one.
	BaseURL string
}

// Services bundles the operations exposed over HTTP.
type Services struct {
	Guests    *service.GuestService
	Invites   *service.InviteService
	Rooms     *service.RoomService
	Notifier  *service.Notifier
	Dashboard *service.Dashboard
}

type Server struct {
	opts   Options
	svc    Services
	logger *slog.Logger
	mux    *gin.Engine
}

func NewServer(opts Options, svc Services) *Server {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	s := &Server{
		opts:   opts,
		svc:    svc,
		logger: slog.Default().WithGroup("http"),
	}
	s.mux = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() *gin.Engine {
	mux := gin.New()
	mux.Use(
		sloggin.NewWithConfig(s.logger,
			sloggin.Config{
				DefaultLevel:     slog.LevelInfo,
				ClientErrorLevel: slog.LevelWarn,
				ServerErrorLevel: slog.LevelError,
			},
		),
		gin.Recovery(), otelgin.Middleware(s.opts.ServiceName), slogAddTraceAttributes,
	)
	if len(s.opts.AllowOrigins) > 0 {
		cfg := cors.DefaultConfig()
		cfg.AllowOrigins = s.opts.AllowOrigins
		cfg.AllowCredentials = true
		cfg.AllowHeaders = []string{"Authorization", "Content-Type", "Origin", "Accept"}
		cfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
		cfg.MaxAge = 12 * time.Hour
		mux.Use(cors.New(cfg))
	}

	mux.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	mux.GET("/invite/:id", s.publicInvite)

	adminArea := mux.Group("/admin")
	adminArea.Use(gin.BasicAuth(gin.Accounts{
		s.opts.AdminUser: s.opts.AdminPassword,
	}))

	adminArea.GET("/overview", s.overview)

	guests := adminArea.Group("/guests")
	guests.GET("", s.listGuests)
	guests.GET("/email", s.listGuestsWithEmail)
	guests.POST("", s.createGuest)
	guests.GET("/:id", s.getGuest)
	guests.PATCH("/:id", s.updateGuest)
	guests.POST("/:id/hoop", s.toggleHoop)
	guests.DELETE("/:id", s.deleteGuest)

	invites := adminArea.Group("/invites")
	invites.GET("", s.listInvites)
	invites.POST("", s.createInvite)
	invites.POST("/qr", s.generateAllQRCodes)
	invites.GET("/:id", s.getInvite)
	invites.PATCH("/:id", s.updateInvite)
	invites.PUT("/:id/guests", s.setInviteGuests)
	invites.POST("/:id/qr", s.generateQRCode)
	invites.DELETE("/:id/qr", s.deleteQRCode)
	invites.DELETE("/:id", s.deleteInvite)

	rooms := adminArea.Group("/rooms")
	rooms.GET("", s.listRooms)
	rooms.POST("", s.createRoom)
	rooms.GET("/:id", s.getRoom)
	rooms.PATCH("/:id", s.updateRoom)
	rooms.PUT("/:id/guests", s.setRoomGuests)
	rooms.DELETE("/:id", s.deleteRoom)

	comms := adminArea.Group("/comms")
	comms.POST("/all", s.sendToAll)
	comms.POST("/guest", s.sendToGuest)
	comms.POST("/test", s.sendTest)

	mux.NoRoute(notFound)
	return mux
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "page not found"}})
}

func slogAddTraceAttributes(c *gin.Context) {
	sloggin.AddCustomAttributes(c,
		slog.String("trace-id", trace.SpanFromContext(c.Request.Context()).SpanContext().TraceID().String()),
	)
	sloggin.AddCustomAttributes(c,
		slog.String("span-id", trace.SpanFromContext(c.Request.Context()).SpanContext().SpanID().String()),
	)
	c.Next()
}
