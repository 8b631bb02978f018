package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"videohalls/internal/config"
	"videohalls/internal/database"
	"videohalls/internal/handler"
	"videohalls/internal/middleware"
	"videohalls/internal/repository"
	"videohalls/internal/router"
	queue_publisher "videohalls/internal/service"
	"videohalls/internal/youtube"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	halls := repository.NewHallRepo(db)
	videos := repository.NewVideoRepo(db)

	meta := youtube.New(cfg.YouTubeKey, cfg.YouTubeTimeout)

	e := echo.New()
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	// Redis is optional: without it, rate limiting and the page cache
	// become pass-throughs.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, rate limiting and page cache disabled")
	}
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	pageCache := middleware.NewPageCache(config.LoadCacheConfig(), rdb)

	hallHandler := handler.NewHallHandler(halls, videos)
	hallHandler.Invalidate = pageCache.Invalidate

	videoHandler := handler.NewVideoHandler(halls, videos, meta)
	videoHandler.Publish = queue_publisher.PublishVideoAdded
	videoHandler.Invalidate = pageCache.Invalidate

	h := router.Handlers{
		Auth:   handler.NewAuthHandler(cfg, users, tokens),
		Halls:  hallHandler,
		Videos: videoHandler,
		Search: handler.NewSearchHandler(meta),
	}

	router.Register(e, h, cfg.JWTSecret, pageCache.Middleware())

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
