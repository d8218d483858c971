package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"auctionhouse/internal/cache"
	"auctionhouse/internal/config"
	"auctionhouse/internal/http/http_server"
	"auctionhouse/internal/services/auction"
	"auctionhouse/internal/services/user"
	"auctionhouse/internal/snapsync"
	"auctionhouse/internal/store"
	"auctionhouse/internal/store/memstore"
	"auctionhouse/internal/store/pgstore"
)

var (
	Log, _ = zap.NewDevelopment()
)

func main() {
	defer Log.Sync()
	zap.ReplaceGlobals(Log)

	// 1. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		Log.Fatal("Failed to load configuration", zap.Error(err))
	}
	Log.Debug("Configuration loaded successfully", zap.Any("config", cfg))

	// 2. Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	// 3. Storage backend
	var (
		auctions store.AuctionStore
		users    store.UserStore
	)
	switch cfg.StoreBackend {
	case "postgres":
		db, err := pgstore.Open(cfg.PostgresHost, cfg.PostgresPort,
			cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDb)
		if err != nil {
			Log.Fatal("pg-open", zap.Error(err))
		}
		defer db.Close()
		pg := pgstore.New(db)
		if err := pg.Init(ctx); err != nil {
			Log.Fatal("pg-init", zap.Error(err))
		}
		auctions, users = pg, pg
	default:
		mem := memstore.New()
		auctions, users = mem, mem
	}

	// 4. Optional Redis snapshot cache
	syncInterval := time.Duration(cfg.SyncIntervalSeconds) * time.Second
	var snaps *cache.Snapshots
	if cfg.RedisHost != "" {
		redisClient, err := cache.NewClient(cfg.RedisHost, int(cfg.RedisPort))
		if err != nil {
			Log.Fatal("Failed to create Redis client", zap.Error(err))
		}
		defer redisClient.Close()
		snaps = cache.NewSnapshots(redisClient, syncInterval)
		Log.Debug("Redis snapshot cache enabled")
	}

	// 5. Services
	auctionService := auction.NewAuctionService(auctions, snaps)
	userService := user.NewUserService(users, cfg.JwtSecret,
		time.Duration(cfg.TokenTTLMinutes)*time.Minute, cfg.AdminEmail)

	// 6. Background: snapshot warmer for polling clients
	if snaps != nil {
		snapsync.Run(ctx, auctionService, syncInterval)
	}

	// 7. HTTP server
	httpServer := http_server.NewHttpServer(cfg.HttpServerPort, auctionService, userService)
	go func() {
		<-ctx.Done()
		_ = httpServer.Dispose()
	}()
	if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		Log.Fatal("Failed to start HTTP server", zap.Error(err))
	}
}
