package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"progresshub/internal/config"
	"progresshub/internal/db"
	"progresshub/internal/email"
	apihttp "progresshub/internal/http"
	"progresshub/internal/repository"
	"progresshub/internal/service"

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
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
	}

	txRunner := db.NewPgTxRunner(pool)
	userRepo := repository.NewPgUserRepository(pool)
	sessionRepo := repository.NewPgSessionRepository(pool)
	teamRepo := repository.NewPgTeamRepository(pool)
	membershipRepo := repository.NewPgMembershipRepository(pool)
	invitationRepo := repository.NewPgInvitationRepository(pool)
	projectRepo := repository.NewPgProjectRepository(pool)
	documentRepo := repository.NewPgDocumentRepository(pool)
	activityRepo := repository.NewPgActivityRepository(pool)
	taskRepo := repository.NewPgTaskRepository(pool)
	messageRepo := repository.NewPgMessageRepository(pool)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	var (
		confirmLimiter service.RateLimiter
		inviteLimiter  service.RateLimiter
		tokenStore     = service.NewPgRefreshTokenStore(sessionRepo)
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using postgres token store", zap.Error(err))
		} else {
			confirmLimiter = service.NewRedisRateLimiter(redisClient, logger, "rl:confirm:", 10*time.Minute, 5)
			inviteLimiter = service.NewRedisRateLimiter(redisClient, logger, "rl:invite:", time.Hour, 50)
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
		}
		cancel()
	}

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	userSvc := service.NewUserService(logger, userRepo, emailSender, confirmLimiter)
	inviteSvc := service.NewInvitationService(logger, teamRepo, membershipRepo, invitationRepo, txRunner, emailSender, inviteLimiter, cfg.AppBaseURL)
	workspaceSvc := service.NewWorkspaceService(logger, projectRepo, documentRepo, activityRepo, txRunner)
	taskSvc := service.NewTaskService(logger, projectRepo, taskRepo, activityRepo, txRunner)
	messageSvc := service.NewMessageService(messageRepo, membershipRepo)

	router := apihttp.NewRouter(apihttp.RouterDeps{
		Logger:    logger,
		APIKey:    cfg.APIPublicKey,
		JWT:       jwtSvc,
		Users:     apihttp.NewUserHandler(logger, userSvc, jwtSvc),
		Invites:   apihttp.NewInvitationHandler(logger, inviteSvc),
		Workspace: apihttp.NewWorkspaceHandler(logger, workspaceSvc),
		Tasks:     apihttp.NewTaskHandler(logger, taskSvc),
		Chat:      apihttp.NewChatHandler(logger, messageSvc),
		HealthPing: func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Ping(pingCtx)
		},
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}
