package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"migrator/bot/internal/app"
	"migrator/bot/internal/approval"
	"migrator/bot/internal/bot"
	"migrator/bot/internal/config"
	"migrator/bot/internal/export"
	"migrator/bot/internal/gateway"
	_ "migrator/bot/internal/gateway/memory"
	"migrator/bot/internal/intake"
	"migrator/bot/internal/notify"
	"migrator/bot/internal/report"
	"migrator/bot/internal/request"
	"migrator/bot/internal/roster"
	"migrator/bot/internal/search"
	"migrator/bot/internal/session"
	"migrator/bot/internal/shots"
	"migrator/bot/internal/ticket"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	requests, err := request.OpenFileStore(cfg.RequestsFile)
	if err != nil {
		log.Fatalf("request store failed: %v", err)
	}

	// Roster database is optional. Without it the bot still runs intake
	// and approvals; only the dashboard roster features go dark.
	var players *roster.PostgresStore
	var searchService *search.Service
	var exporter *export.Service
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		db, err := roster.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		defer db.Close()

		if err := roster.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
		players = roster.NewPostgresStore(db)

		pgfts := search.NewPgFTS(db)
		var meiliClient *search.Meili
		if strings.TrimSpace(cfg.MeiliURL) != "" {
			meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
			defer meiliClient.Close()
		}
		searchService = search.NewService(meiliClient, pgfts)
		searchService.ReindexAllFromPG(ctx)

		exporter = export.NewService(players)
	} else {
		log.Printf("DATABASE_URL not set, roster features disabled")
	}

	var sessions intake.SessionStore
	if strings.TrimSpace(cfg.RedisURL) != "" {
		log.Printf("Using Redis for intake session storage")
		redisStore, err := session.NewRedisStore(cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		defer redisStore.Close()
		sessions = redisStore
	} else {
		log.Printf("Using in-memory intake session storage")
		sessions = session.NewMemoryStore()
	}

	gw, err := gateway.Open(cfg.GatewayDriver, gateway.Options{Token: cfg.GatewayToken})
	if err != nil {
		log.Fatalf("gateway %q failed: %v", cfg.GatewayDriver, err)
	}
	defer gw.Close()

	dispatcher := notify.NewDispatcher(gw)
	reporter := report.NewReporter(cfg.SinkURL)
	tickets := ticket.NewManager(gw, cfg.ReviewerRoleID, cfg.TicketCloseDelay)

	var rosterMirror approval.Roster
	if players != nil {
		rosterMirror = players
	}
	coord := approval.NewCoordinator(gw, requests, dispatcher, reporter, tickets, rosterMirror, cfg.ReviewerIDs, cfg.ApprovalChannelID)
	intakeMgr := intake.NewManager(gw, sessions, coord, tickets, cfg.RequireDeathsShot)

	var uploads *shots.Service
	if players != nil {
		storage, err := screenshotStorage(ctx, cfg)
		if err != nil {
			log.Fatalf("screenshot storage failed: %v", err)
		}
		uploads = shots.NewService(storage, players, cfg.MaxFileSize)
	}

	var rosterAPI app.RosterStore
	if players != nil {
		rosterAPI = players
	}
	service := app.NewService(rosterAPI, requests, searchService, uploads, exporter, cfg.AdminTokenHash)
	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin, cfg.UploadDir)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Dashboard listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("Migration bot running on gateway %q", cfg.GatewayDriver)
	if err := bot.New(gw, intakeMgr, coord).Run(runCtx); err != nil {
		log.Printf("bot stopped: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func screenshotStorage(ctx context.Context, cfg config.Config) (shots.Storage, error) {
	if strings.TrimSpace(cfg.MinioEndpoint) != "" {
		return shots.NewMinioStorage(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	}
	return shots.NewLocalStorage(cfg.UploadDir)
}
