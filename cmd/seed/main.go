package main

import (
	"context"
	stderrors "errors"
	"log"
	"os"
	"time"

	"gorm.io/gorm"

	"tutorcrm/internal/auth"
	"tutorcrm/internal/cache"
	"tutorcrm/internal/config"
	"tutorcrm/internal/db"
	"tutorcrm/internal/errors"
	"tutorcrm/internal/model"
	"tutorcrm/internal/repository"
	"tutorcrm/internal/service"
)

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.Lesson{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// shared with the server so a reset evicts the cached demo user
	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	userRepo := repository.NewUserRepository(gormDB)
	userService := service.NewUserService(userRepo, cacheClient)
	authService := service.NewAuthService(
		userRepo,
		userService,
		auth.NewJWTService(cfg.JWTSecret, cfg.AccessTokenTTL),
		auth.NewTokenStore(cacheClient),
	)
	lessonService := service.NewLessonService(repository.NewLessonRepository(gormDB))

	ctx := context.Background()
	email := getEnv("SEED_EMAIL", "demo@example.com")
	password := getEnv("SEED_PASSWORD", "demo123")

	if os.Getenv("SEED_RESET") == "true" {
		existing, err := userRepo.FindByEmail(ctx, email)
		switch {
		case err == nil:
			if err := userService.DeleteUser(ctx, existing.ID); err != nil {
				log.Fatalf("Failed to reset %s: %v", email, err)
			}
			log.Printf("SEED_RESET=true, removed %s and its lessons", email)
		case !stderrors.Is(err, gorm.ErrRecordNotFound):
			log.Fatalf("Failed to look up %s: %v", email, err)
		}
	}

	token, err := authService.Register(ctx, email, password, password)
	switch {
	case stderrors.Is(err, errors.ErrEmailTaken):
		log.Printf("User %s already exists, logging in", email)
		token, err = authService.Login(ctx, email, password)
		if err != nil {
			log.Fatalf("Failed to log in as %s: %v", email, err)
		}
	case err != nil:
		log.Fatalf("Failed to register %s: %v", email, err)
	default:
		log.Printf("Registered %s", email)
	}

	user, err := authService.Authenticate(ctx, token)
	if err != nil {
		log.Fatalf("Failed to resolve seeded user: %v", err)
	}

	lessons, err := lessonService.BulkCreate(ctx, user.ID, service.BulkLessonRequest{
		StudentName:       "Demo Student",
		ParentName:        "Demo Parent",
		CourseName:        "Mathematics",
		FirstLessonNumber: 1,
		Duration:          model.DefaultLessonDuration,
		StartDate:         nextMonday(time.Now()).Format("2006-01-02"),
		Slots: []service.TimeSlot{
			{DayOfWeek: 0, Hour: 16},
			{DayOfWeek: 3, Hour: 17, Minute: 30},
		},
	})
	if err != nil {
		log.Fatalf("Failed to create lessons: %v", err)
	}

	log.Printf("Seed completed: %d lessons for user %d", len(lessons), user.ID)
	log.Printf("Access token: %s", token)
}

func nextMonday(now time.Time) time.Time {
	days := (int(time.Monday) - int(now.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return now.AddDate(0, 0, days)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
