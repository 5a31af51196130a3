package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rentora/rentauth"
	"github.com/rentora/rentauth/notify"
	"github.com/rentora/rentauth/provider/google"
	"github.com/rentora/rentauth/store/postgres"
	"github.com/rentora/rentauth/store/redisstore"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := newLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	store, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		logger.Fatal("init store", zap.Error(err))
	}
	defer closeStore()

	engine, err := newEngine(cfg, store)
	if err != nil {
		logger.Fatal("build engine", zap.Error(err))
	}
	defer engine.Close()

	router := newRouter(engine, newHandlers(engine, logger), logger)

	srv := &http.Server{
		Addr:              cfg.httpAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("rentauthd listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", zap.Error(err))
	}
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newStore(ctx context.Context, cfg appConfig) (rentauth.AccountStore, func(), error) {
	if cfg.DatabaseURL != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		pool, err := pgxpool.New(connectCtx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := pool.Ping(connectCtx); err != nil {
			pool.Close()
			return nil, nil, err
		}

		store := postgres.New(pool, postgres.Config{EnforceUniquePhone: cfg.EnforceUniquePhone})
		if err := store.Migrate(connectCtx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	store := redisstore.New(client, redisstore.Config{
		Prefix:             cfg.RedisPrefix,
		EnforceUniquePhone: cfg.EnforceUniquePhone,
	})
	return store, func() { _ = client.Close() }, nil
}

func newEngine(cfg appConfig, store rentauth.AccountStore) (*rentauth.Engine, error) {
	key, err := cfg.cipherKey()
	if err != nil {
		return nil, err
	}

	engineCfg := rentauth.DefaultConfig()
	engineCfg.JWT.AccessSecret = []byte(cfg.AccessSecret)
	engineCfg.JWT.RefreshSecret = []byte(cfg.RefreshSecret)
	engineCfg.JWT.AccessTTL = cfg.AccessTokenTTL
	engineCfg.JWT.RefreshTTL = cfg.RefreshTokenTTL
	engineCfg.Cipher.Key = key
	engineCfg.Account.EnforceUniquePhone = cfg.EnforceUniquePhone

	builder := rentauth.New().
		WithConfig(engineCfg).
		WithStore(store).
		WithIdentityProvider(google.New(google.Config{UserinfoURL: cfg.GoogleUserinfoURL})).
		WithAuditSink(rentauth.NewJSONWriterSink(os.Stdout))

	if cfg.smtpConfigured() {
		builder = builder.WithNotifier(notify.NewSMTPSender(notify.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			BaseURL:  cfg.PublicBaseURL,
		}))
	}

	return builder.Build()
}
