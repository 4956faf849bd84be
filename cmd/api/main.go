package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"auth-service/internal/config"
	"auth-service/internal/db"
	"auth-service/internal/email"
	apihttp "auth-service/internal/http"
	"auth-service/internal/repository"
	"auth-service/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	tokenSvc, err := service.NewTokenService(cfg.JWTSecret, service.WithIssuer(cfg.JWTIssuer))
	if err != nil {
		logger.Fatal("token service", zap.Error(err))
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if cfg.DBAutoMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
	}

	userRepo := repository.NewPgUserRepository(pool)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	revoked := service.NewMemoryRevocationStore()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory revocation list", zap.Error(err))
		} else {
			revoked = service.NewRedisRevocationStore(redisClient)
		}
		cancel()
	}

	var passwords service.PasswordMatcher = service.PlainPasswordMatcher{}
	if cfg.PasswordBcrypt {
		passwords = service.BcryptPasswordMatcher{}
	}

	authSvc := service.NewAuthService(logger, userRepo, tokenSvc, passwords, revoked, emailSender, service.AuthConfig{
		SessionTTL:      cfg.SessionTTL,
		VerificationTTL: cfg.VerificationTTL,
		TokenTTL:        cfg.TokenTTL,
	})

	metrics := apihttp.NewMetrics()
	authHandler := apihttp.NewAuthHandler(logger, authSvc, metrics)
	router := apihttp.NewRouter(
		logger,
		authHandler,
		apihttp.NewCredentialGuard(authSvc),
		apihttp.NewTokenGuard(authSvc),
		metrics,
		func(ctx context.Context) error { return db.Ping(ctx, pool) },
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdown(logger, server)
}

func shutdown(logger *zap.Logger, server *http.Server) {
	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
}
