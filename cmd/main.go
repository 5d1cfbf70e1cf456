package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"

	"github.com/arunjadaun2002/FlyPrep/config"
	"github.com/arunjadaun2002/FlyPrep/internal/interview"
	"github.com/arunjadaun2002/FlyPrep/internal/memstore"
	"github.com/arunjadaun2002/FlyPrep/internal/notify"
	"github.com/arunjadaun2002/FlyPrep/internal/postgres"
	httpserver "github.com/arunjadaun2002/FlyPrep/internal/server/http"
	"github.com/arunjadaun2002/FlyPrep/internal/service"
	grpcx "github.com/arunjadaun2002/FlyPrep/internal/transport/grpc"
	httpx "github.com/arunjadaun2002/FlyPrep/internal/transport/http"
	"github.com/arunjadaun2002/FlyPrep/internal/transport/ws"
	"github.com/arunjadaun2002/FlyPrep/pkg/logger"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.ParseEnv(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		Level:     logger.ParseLevel(cfg.Logging.Level),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	defer func() { _ = logger.Sync() }()
	slog.Info("starting flyprep",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server error", "err", err)
		_ = logger.Sync()
		os.Exit(1)
	}
	slog.Info("stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	// --- submission archive (optional) ---
	var archive service.Archive
	if cfg.Postgres.DSN != "" {
		if err := postgres.Migrate(ctx, cfg.Postgres.DSN); err != nil {
			return err
		}
		pool, err := postgres.NewPool(ctx, postgres.Config{
			DSN:             cfg.Postgres.DSN,
			MaxConns:        cfg.Postgres.MaxConns,
			MinConns:        cfg.Postgres.MinConns,
			MaxConnLifetime: cfg.Postgres.MaxConnLifetime,
			MaxConnIdleTime: cfg.Postgres.MaxConnIdleTime,
			ApplicationName: cfg.Logging.Service,
		})
		if err != nil {
			return err
		}
		defer pool.Close()
		archive = postgres.NewSubmissionRepo(pool)
		slog.Info("submission archive enabled")
	}

	// --- notification sink ---
	var sink notify.Sink = notify.NewLogSink(slog.Default())
	if cfg.Mail.Enabled() {
		smtp, err := notify.NewSMTPSink(notify.SMTPConfig{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
			To:       cfg.Mail.Recipient,
			Timeout:  cfg.Mail.Timeout,
		})
		if err != nil {
			return err
		}
		sink = smtp
	} else {
		slog.Warn("smtp credentials missing, notifications are only logged")
	}

	// --- rooms ---
	repo := memstore.NewRoomRepository(memstore.WithIDRetries(cfg.Rooms.IDRetries))
	defer repo.Close()

	hub := ws.NewHub()
	roomSvc := service.NewRoomService(repo, hub, service.Limits{
		MinParticipants: cfg.Rooms.MinParticipants,
		MaxParticipants: cfg.Rooms.MaxParticipants,
	})
	hub.OnEmpty(func(roomID string) { roomSvc.Teardown(context.Background(), roomID) })
	memberSvc := service.NewMemberService(roomSvc)
	feedbackSvc := service.NewFeedbackService(sink, archive)

	wsServer := ws.NewServer(hub, roomSvc, ws.Options{
		HandshakeTimeout: cfg.WS.HandshakeTimeout,
		PingEvery:        cfg.WS.PingEvery,
		WriteTimeout:     cfg.WS.WriteTimeout,
		ReadLimit:        cfg.WS.ReadLimit,
		SendBuffer:       cfg.WS.SendBuffer,
		FrameRate:        cfg.WS.FrameRate,
		FrameBurst:       cfg.WS.FrameBurst,
		AllowedOrigins:   cfg.HTTP.AllowedOrigins,
	})

	// --- HTTP ---
	router := httpx.NewRouter(httpx.Deps{
		Rooms:    httpx.NewHandler(roomSvc, memberSvc),
		Feedback: &httpx.FeedbackHandlers{Feedback: feedbackSvc},
		Interview: &httpx.InterviewHandlers{
			Oracle:         interview.NewHeuristicOracle(cfg.Interview.QuestionCount),
			MaxResumeBytes: cfg.Interview.MaxResumeBytes,
		},
		WS:             wsServer,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	})
	httpSrv := httpserver.New(httpserver.Config{
		Addr:         cfg.HTTP.Addr,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}, router)

	// --- gRPC (health + reflection) ---
	grpcSrv := grpcx.NewServer()
	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		return err
	}

	// --- run both servers ---
	errCh := make(chan error, 2)
	httpDone := make(chan struct{})
	go func() {
		defer close(httpDone)
		if err := httpSrv.Run(ctx); err != nil {
			errCh <- err
		}
	}()
	go func() {
		slog.Info("grpc listen", "addr", cfg.GRPC.Addr)
		if err := grpcSrv.GRPC.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("shutdown signal")
	case runErr = <-errCh:
	}

	// --- graceful shutdown ---
	grpcSrv.Stop()
	hub.CloseAll()
	if runErr == nil {
		<-httpDone
	}
	return runErr
}
