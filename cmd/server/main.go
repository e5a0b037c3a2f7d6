// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/thomascanham/wedding/internal/config"
	"github.com/thomascanham/wedding/internal/db/dbopen"
	"github.com/thomascanham/wedding/internal/mailer"
	"github.com/thomascanham/wedding/internal/qr"
	"github.com/thomascanham/wedding/internal/relation"
	"github.com/thomascanham/wedding/internal/server"
	"github.com/thomascanham/wedding/internal/service"
)

func main() {
	var (
		configPath  = flag.String("config", config.Path(), "path to a yaml config file")
		serviceName = flag.String("service-name", "", "otel service name")
		addr        = flag.String("addr", "", "server address, overrides HTTP_ADDRESS")
		dbStr       = flag.String("db", "", "database connection string, e.g. kvdb://testdata/wedding.db")
		otlpAddr    = flag.String("otlp-grpc", "", "otlp/gRPC address, by default disabled. Example value: localhost:4317")
		logLevelArg = flag.String("log-level", "", "log level")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("unable to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}
	override(&cfg.ServiceName, *serviceName)
	override(&cfg.HTTP.Address, *addr)
	override(&cfg.Database, *dbStr)
	override(&cfg.OTLPGRPC, *otlpAddr)
	override(&cfg.LogLevel, *logLevelArg)

	var logLevel slog.Level
	err = logLevel.UnmarshalText([]byte(cfg.LogLevel))
	jsonHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(jsonHandler)
	if err != nil {
		logger.Error("unable to parse log level", "level-input", cfg.LogLevel, "error", err)
		os.Exit(1)
	}

	slog.SetDefault(logger)
	logger.Info("start and listen", "address", cfg.HTTP.Address)
	logger.Info("otlp/gRPC", "address", cfg.OTLPGRPC, "service", cfg.ServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.OTLPGRPC != "" {
		shutdown, err := setupTracing(ctx, cfg.OTLPGRPC)
		if err != nil {
			logger.Error("failed to set up tracing", "error", err)
			os.Exit(1)
		}
		defer shutdown()
	}

	wedding, err := cfg.Wedding.Day()
	if err != nil {
		logger.Error("failed to parse wedding date", "error", err)
		os.Exit(1)
	}

	store, err := dbopen.Open(cfg.Database)
	if err != nil {
		logger.Error("could not initialize storage", "db", cfg.Database, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	opts := qr.DefaultOptions()
	opts.Timeout = cfg.QR.Timeout
	renderer, err := qr.NewRenderer(opts)
	if err != nil {
		logger.Error("invalid qr options", "error", err)
		os.Exit(1)
	}

	smtp := mailer.New(mailer.Config{
		Host:        cfg.Mail.Host,
		Port:        cfg.Mail.Port,
		Username:    cfg.Mail.User,
		Password:    cfg.Mail.Password,
		From:        cfg.Mail.From,
		ReplyTo:     cfg.Mail.ReplyTo,
		DisplayName: cfg.Mail.DisplayName,
		Timeout:     cfg.Mail.Timeout,
	}, logger.WithGroup("mail"))
	if cfg.Mail.Host == "" {
		logger.Warn("smtp host not set, mail delivery disabled")
	}

	svcLogger := logger.WithGroup("service")
	rel := relation.New(store, svcLogger)
	handler := server.NewServer(server.Options{
		ServiceName:   cfg.ServiceName,
		AdminUser:     cfg.Admin.User,
		AdminPassword: cfg.Admin.Password,
		AllowOrigins:  cfg.HTTP.AllowOrigins,
		BaseURL:       cfg.HTTP.BaseURL,
	}, server.Services{
		Guests:    service.NewGuestService(store, svcLogger),
		Invites:   service.NewInviteService(store, rel, renderer, cfg.QR.Workers, svcLogger),
		Rooms:     service.NewRoomService(store, rel, svcLogger),
		Notifier:  service.NewNotifier(store, smtp, cfg.Mail.TestTo, cfg.Mail.Workers, svcLogger),
		Dashboard: service.NewDashboard(store, wedding),
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("error during listen and serve", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown")
}

func override(dst *string, flagValue string) {
	if flagValue != "" {
		*dst = flagValue
	}
}

func setupTracing(ctx context.Context, addr string) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	grpcOptions := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials()), grpc.WithBlock()}
	conn, err := grpc.DialContext(ctx, addr, grpcOptions...)
	if err != nil {
		return nil, err
	}

	otelExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		conn.Close()
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(otelExporter))
	otel.SetTracerProvider(tp)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(ctx)
		conn.Close()
	}, nil
}
