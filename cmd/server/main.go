package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/snooker-house-api/internal/config"
	"github.com/iliyamo/snooker-house-api/internal/database"
	"github.com/iliyamo/snooker-house-api/internal/handler"
	custommw "github.com/iliyamo/snooker-house-api/internal/middleware"
	"github.com/iliyamo/snooker-house-api/internal/queue"
	"github.com/iliyamo/snooker-house-api/internal/repository"
	"github.com/iliyamo/snooker-house-api/internal/router"
	"github.com/iliyamo/snooker-house-api/internal/service"
)

func main() {
	// Load .env when present; real deployments set the environment
	// directly and the file is simply absent.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis powers rate limiting and the analytics response cache.
	// A nil client disables both; the API stays up without Redis.
	rdb := config.NewRedisClient()

	// Repositories.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	venues := repository.NewVenueRepo(db)
	tables := repository.NewTableRepo(db)
	products := repository.NewProductRepo(db)
	sessions := repository.NewSessionRepo(db, products, tables)
	sales := repository.NewSaleRepo(db, products)
	analytics := repository.NewAnalyticsRepo(db)

	publisher := service.NewQueuePublisher(queue.BrokerURL())

	// Handlers.
	authH := handler.NewAuthHandler(cfg, users, tokens)
	venueH := handler.NewVenueHandler(venues)
	tableH := handler.NewTableHandler(tables, venues)
	productH := handler.NewProductHandler(products, venues)
	sessionH := handler.NewSessionHandler(sessions, publisher)
	saleH := handler.NewSaleHandler(sales)
	analyticsH := handler.NewAnalyticsHandler(analytics)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	limiter := custommw.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := custommw.ResponseCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret, limiter)
	router.RegisterVenueRoutes(e, cfg.JWTSecret, limiter, venueH, tableH, productH, saleH)
	router.RegisterSessionRoutes(e, cfg.JWTSecret, limiter, sessionH)
	router.RegisterAnalyticsRoutes(e, cfg.JWTSecret, limiter, cache, analyticsH)

	// Background consumer that logs completed sessions from the broker.
	go func() {
		if err := queue.StartSessionConsumer(); err != nil {
			log.Printf("session-consumer stopped: %v", err)
		}
	}()

	// Hourly sweep of expired refresh tokens.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if n, err := tokens.DeleteExpired(ctx); err != nil {
				log.Printf("token sweep: %v", err)
			} else if n > 0 {
				log.Printf("token sweep: removed %d expired tokens", n)
			}
			cancel()
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
