package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"msgboard/internal/config"
	"msgboard/internal/feed"
	"msgboard/internal/handler"
	"msgboard/internal/logging"
	"msgboard/internal/storage"
)

func main() {
	// .envファイルを読み込み
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  .env file not found, using environment only: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("❌ Failed to build logger: %v", err)
	}

	ctx := context.Background()

	// データベース接続を初期化
	store, err := storage.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("open database", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}

	if cfg.AutoMigrate {
		migrateCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
		err := store.Migrate(migrateCtx)
		cancel()
		if err != nil {
			logger.Fatal("migrate database", zap.Error(err))
		}
	}

	// WebSocket フィードは FEED_ADDR が設定された場合のみ起動
	feedCtx, stopFeed := context.WithCancel(ctx)
	var (
		publisher  handler.Publisher
		feedServer *http.Server
	)
	if cfg.FeedAddr != "" {
		hub := feed.NewHub(logger, cfg.AllowedOrigins)
		go hub.Run(feedCtx)
		publisher = hub

		feedServer = &http.Server{
			Addr:              cfg.FeedAddr,
			Handler:           hub.Router(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := feedServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal("feed server error", zap.Error(err))
			}
		}()
	}

	h := handler.New(store, cfg, logger, publisher)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           withCORS(cfg, h.SetupRouter()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.RequestTimeout,
		WriteTimeout:      2 * cfg.RequestTimeout,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("🚀 Server started",
		zap.String("env", cfg.Env),
		zap.String("addr", cfg.ListenAddr),
		zap.String("feed_addr", cfg.FeedAddr),
		zap.String("driver", cfg.DBDriver),
		zap.Strings("allowed_origins", cfg.AllowedOrigins),
	)

	// Drain HTTP first, then the feed, then the pool.
	wait := gfshutdown.GracefulShutdown(
		ctx,
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"msgboard": func(ctx context.Context) error {
				logger.Info("graceful shutdown initiated")
				var errs []error
				errs = append(errs, server.Shutdown(ctx))
				stopFeed()
				if feedServer != nil {
					errs = append(errs, feedServer.Shutdown(ctx))
				}
				store.Close()
				return errors.Join(errs...)
			},
		},
	)

	exitCode := <-wait
	logger.Info("server exited", zap.Int("code", exitCode))
	_ = logger.Sync()
	os.Exit(exitCode)
}

// withCORS wraps the board router. Preflight requests (OPTIONS carrying
// Access-Control-Request-Method) are answered here and never reach the router.
func withCORS(cfg config.Config, next http.Handler) http.Handler {
	// CORS対応
	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:         300,
	})
	return c.Handler(next)
}
