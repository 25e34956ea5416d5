package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"tutorcrm/docs"
	"tutorcrm/internal/auth"
	"tutorcrm/internal/cache"
	"tutorcrm/internal/config"
	"tutorcrm/internal/db"
	"tutorcrm/internal/handler"
	"tutorcrm/internal/model"
	"tutorcrm/internal/repository"
	"tutorcrm/internal/router"
	"tutorcrm/internal/service"
)

// @title Tutor CRM API
// @version 1.0
// @description Lesson scheduling backend for private tutors: accounts, weekly lesson series and per-lesson notes.
// @host localhost:8000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	e := echo.New()
	e.HideBanner = true

	gormDB, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if cfg.AutoMigrate {
		if err := gormDB.AutoMigrate(&model.User{}, &model.Lesson{}); err != nil {
			log.Fatalf("auto-migrate: %v", err)
		}
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := cacheClient.Ping(pingCtx); err != nil {
		log.Printf("redis unavailable at %s, continuing without cache: %v", cfg.RedisAddr, err)
	}
	cancel()

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	lessonRepo := repository.NewLessonRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.AccessTokenTTL)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	userService := service.NewUserService(userRepo, cacheClient)
	authService := service.NewAuthService(userRepo, userService, jwtService, tokenStore)
	lessonService := service.NewLessonService(lessonRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	lessonHandler := handler.NewLessonHandler(lessonService)

	router.Register(e, cfg, authService, authHandler, lessonHandler)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}

	log.Printf("Swagger documentation available at: %s", swaggerURL(cfg))

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/swagger/index.html"
}
