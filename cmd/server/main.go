// Entry point for the front-desk billing API.
package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/gvan1961/frontdivan/internal/config"
	"github.com/gvan1961/frontdivan/internal/database"
	"github.com/gvan1961/frontdivan/internal/handler"
	"github.com/gvan1961/frontdivan/internal/lock"
	"github.com/gvan1961/frontdivan/internal/middleware"
	"github.com/gvan1961/frontdivan/internal/queue"
	"github.com/gvan1961/frontdivan/internal/repository"
	"github.com/gvan1961/frontdivan/internal/router"
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

	// Redis backs the response cache and the rate limiter.  A nil
	// client disables both; the API itself keeps working.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; response cache and rate limiting disabled")
	}
	cacheCfg := config.LoadCacheConfig()
	rlCfg := config.LoadRateLimitConfig()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	reservations := repository.NewReservationRepo(db)
	statements := repository.NewStatementRepo(db)
	discounts := repository.NewDiscountRepo(db)
	payments := repository.NewPaymentRepo(db)
	amendments := repository.NewAmendmentRepo(db)
	transfers := repository.NewTransferRepo(db)
	rooms := repository.NewRoomRepo(db)
	products := repository.NewProductRepo(db)
	tills := repository.NewTillRepo(db)
	receivables := repository.NewReceivableRepo(db)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	resH := handler.NewReservationHandler(
		reservations, statements, discounts, payments, amendments,
		transfers, rooms, products, tills, receivables,
		lock.NewKeyed(), rdb, cacheCfg,
	)
	tillH := handler.NewTillHandler(tills, payments)
	prodH := handler.NewProductHandler(products)
	roomH := handler.NewRoomHandler(rooms)

	e := echo.New()
	e.Use(middleware.NewTokenBucket(rlCfg, rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)

	var cacheMW echo.MiddlewareFunc
	if rdb != nil {
		cacheMW = middleware.NewRedisCache(cacheCfg, rdb)
	}
	router.RegisterFrontDesk(e, resH, tillH, prodH, roomH, cfg.JWTSecret, cacheMW)

	// The housekeeping consumer tails reservation.finalized and keeps
	// its own reconnect loop; it never brings the API down.
	go func() {
		if err := queue.StartHousekeepingConsumer(); err != nil {
			log.Printf("housekeeping consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
