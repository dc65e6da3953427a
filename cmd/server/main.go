package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/openfms/facility-desk/internal/config"
	"github.com/openfms/facility-desk/internal/database"
	"github.com/openfms/facility-desk/internal/engine"
	"github.com/openfms/facility-desk/internal/handler"
	"github.com/openfms/facility-desk/internal/middleware"
	"github.com/openfms/facility-desk/internal/queue"
	"github.com/openfms/facility-desk/internal/repository"
	"github.com/openfms/facility-desk/internal/router"
	"github.com/openfms/facility-desk/internal/service/queue_publisher"
	"github.com/openfms/facility-desk/internal/storage"
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

	// Redis is optional: a nil client turns the rate limiter and the
	// response cache into pass-throughs.
	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	requests := repository.NewRequestRepo(db)
	bookings := repository.NewBookingRepo(db)
	remarks := repository.NewRemarkRepo(db)

	notifier := queue_publisher.New()
	requestSvc := engine.NewRequestService(requests, remarks, users, notifier, nil)
	bookingSvc := engine.NewBookingService(bookings, users, notifier, nil)

	attachments, err := storage.NewAttachmentStore(cfg.AttachmentDir)
	if err != nil {
		log.Fatalf("attachment store: %v", err)
	}

	authH := handler.NewAuthHandler(cfg, users, tokens)
	requestH := handler.NewRequestHandler(requestSvc)
	bookingH := handler.NewBookingHandler(bookingSvc)
	staffH := handler.NewStaffHandler(users)
	attachH := handler.NewAttachmentHandler(attachments)

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterRequester(e, requestH, bookingH, attachH, cfg.JWTSecret)
	router.RegisterStaff(e, requestH, bookingH, cfg.JWTSecret)
	router.RegisterAdmin(e, requestH, bookingH, staffH, cfg.JWTSecret,
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	// The consumer drains lifecycle events into the notification log and
	// reconnects on broker failures.
	go queue.StartEventsConsumer()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
