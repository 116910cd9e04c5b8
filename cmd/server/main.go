package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/contacts-api/internal/auth"
	"github.com/iliyamo/contacts-api/internal/cache"
	"github.com/iliyamo/contacts-api/internal/config"
	"github.com/iliyamo/contacts-api/internal/database"
	"github.com/iliyamo/contacts-api/internal/handler"
	"github.com/iliyamo/contacts-api/internal/mailer"
	"github.com/iliyamo/contacts-api/internal/middleware"
	"github.com/iliyamo/contacts-api/internal/queue"
	"github.com/iliyamo/contacts-api/internal/repository"
	"github.com/iliyamo/contacts-api/internal/router"
	"github.com/iliyamo/contacts-api/internal/storage"
	"github.com/iliyamo/contacts-api/internal/utils"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		// The user cache sits on the hot path of every authenticated
		// request; without redis the service cannot meet its contract.
		log.Fatal("redis: connection failed")
	}

	codec, err := utils.NewTokenCodec(cfg.JWTSecret, cfg.JWTAlg)
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}

	cacheCfg := config.LoadUserCacheConfig()
	users := repository.NewUserRepo(db)
	contacts := repository.NewContactRepo(db)
	userCache := cache.NewUserCache(rdb, cacheCfg)
	authSvc := auth.New(users, userCache, codec, cfg, cacheCfg)

	avatars, err := storage.NewAvatarStore(context.Background(), config.LoadS3Config())
	if err != nil {
		// Avatar upload degrades gracefully; everything else keeps working.
		log.Printf("avatar storage disabled: %v", err)
		avatars = nil
	}

	// Verification emails are consumed off the broker in the background.
	go queue.StartEmailConsumer(mailer.New(config.LoadMailConfig()))

	e := echo.New()
	e.HideBanner = true

	rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	router.RegisterRoutes(e, router.Handlers{
		Health:   handler.NewHealthHandler(db),
		Auth:     handler.NewAuthHandler(cfg, users, authSvc),
		Users:    handler.NewUserHandler(users, authSvc, avatars),
		Contacts: handler.NewContactHandler(contacts),
	}, authSvc, rateLimit)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
