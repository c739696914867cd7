package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shirtful/wareneingang/server/internal/config"
	"github.com/shirtful/wareneingang/server/internal/db"
	"github.com/shirtful/wareneingang/server/internal/httpapi"
	"github.com/shirtful/wareneingang/server/internal/wareneingang/decoder"
	"github.com/shirtful/wareneingang/server/internal/wareneingang/dedup"
	"github.com/shirtful/wareneingang/server/internal/wareneingang/events"
	"github.com/shirtful/wareneingang/server/internal/wareneingang/service"
	"github.com/shirtful/wareneingang/server/internal/wareneingang/store/sqlite"

	_ "modernc.org/sqlite"
)

func main() {
	logger := log.New(os.Stdout, "wareneingang-server ", log.LstdFlags|log.LUTC)

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
	if err != nil {
		logger.Fatalf("db open: %v", err)
	}
	defer conn.Close()

	writer := db.NewWorker(conn)
	defer writer.Close()

	// Stores
	identityStore := sqlite.NewIdentityStore(conn)
	sessionStore := sqlite.NewSessionStore(conn, writer)
	scanRecordStore := sqlite.NewScanRecordStore(conn, writer)

	// Notification boundary
	hub := events.NewHub(nil)

	eventLog, unsubscribe := hub.Subscribe(64)
	defer unsubscribe()
	go func() {
		for ev := range eventLog {
			logger.Printf("event %s session=%d tag=%s status=%s", ev.Type, ev.SessionID, ev.Tag, ev.Status)
		}
	}()

	// Dedup guard
	locks := dedup.NewInFlight()
	cache := dedup.NewCache(nil)
	guard := dedup.NewGuard(locks, cache, scanRecordStore, cfg.DuplicateWindow(), logger, nil)

	sweeper := dedup.NewSweeper(cache, cfg.DuplicateWindow(), cfg.CacheSweepInterval(), logger)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	// Services
	sessionSvc := service.NewSessionService(sessionStore, hub, logger, nil)
	loginSvc := service.NewLoginService(identityStore, sessionSvc, logger, nil)
	scanSvc := service.NewScanService(sessionStore, guard, hub, logger, nil)

	// Decoder fed by the wedge bridge
	pipeline := service.NewTagPipeline(ctx, loginSvc, hub, logger)
	dec := decoder.New(decoder.Config{
		InputTimeout:    cfg.InputTimeout(),
		MinScanInterval: cfg.MinScanInterval(),
		MaxBufferLength: cfg.MaxBufferLength,
		TagLengthMin:    cfg.TagLengthMin,
		TagLengthMax:    cfg.TagLengthMax,
	}, pipeline, logger)

	// HTTP
	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:         logger,
		Addr:           cfg.HTTPAddr,
		LoginService:   loginSvc,
		ScanService:    scanSvc,
		SessionService: sessionSvc,
		Decoder:        dec,
	})

	go func() {
		logger.Printf("listening on %s (env=%s)", cfg.HTTPAddr, cfg.Env)
		if err := srv.Start(); err != nil {
			logger.Printf("server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
