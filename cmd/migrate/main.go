package main

import (
	"context"
	"flag"
	"os"
	"strings"

	"tradie-recovery-be/internal/entity"
	"tradie-recovery-be/internal/model"
	"tradie-recovery-be/internal/pkg/logger"
	"tradie-recovery-be/internal/repository/implementation"
	"tradie-recovery-be/internal/repository/specification"
	"tradie-recovery-be/internal/repository/unitofwork"
	"tradie-recovery-be/internal/service"
	"tradie-recovery-be/pkg/database"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

var (
	info = color.New(color.FgCyan).PrintfFunc()
	ok   = color.New(color.FgGreen).PrintfFunc()
	warn = color.New(color.FgYellow).PrintfFunc()
	fail = color.New(color.FgRed, color.Bold).PrintfFunc()
)

func main() {
	promote := flag.String("promote", "", "email of an existing user to make admin")
	flag.Parse()

	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		info("Info: No .env file found, using system env\n")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		fail("Error: DB_CONNECTION_STRING is not set\n")
		os.Exit(1)
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		fail("Error: Failed to connect to database: %v\n", err)
		os.Exit(1)
	}

	info("Step 1: Setting up extensions...\n")
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		warn("Warn: Failed to create pgcrypto: %v. Continuing...\n", err)
	}

	models := model.All()
	info("Step 2: Running AutoMigrate for %d tables...\n", len(models))
	if err := db.AutoMigrate(models...); err != nil {
		fail("Error: AutoMigrate failed: %v\n", err)
		os.Exit(1)
	}
	ok("AutoMigrate complete\n")

	ctx := context.Background()
	log := logger.NewZapLogger(getEnv("LOG_FILE_PATH", "logs/app.log"), false)
	uowFactory := unitofwork.NewRepositoryFactory(db)

	info("Step 3: Seeding reference data...\n")
	types, err := implementation.NewNotificationRepository(db).EnsureNotificationTypes(ctx, service.DefaultNotificationTypes)
	if err != nil {
		fail("Error: Seeding notification types failed: %v\n", err)
		os.Exit(1)
	}
	tags, err := service.NewTagService(uowFactory, nil, nil, log).Seed(ctx)
	if err != nil {
		fail("Error: Seeding tags failed: %v\n", err)
		os.Exit(1)
	}
	ok("Seeded %d notification types and %d tags\n", types, tags)

	if email := strings.ToLower(strings.TrimSpace(*promote)); email != "" {
		info("Step 4: Promoting %s to admin...\n", email)
		users := uowFactory.NewUnitOfWork(ctx).UserRepository()
		user, err := users.FindOne(ctx, specification.ByEmail{Email: email})
		if err != nil || user == nil {
			fail("Error: No user with email %s\n", email)
			os.Exit(1)
		}
		user.Role = entity.UserRoleAdmin
		if err := users.Update(ctx, user); err != nil {
			fail("Error: Promotion failed: %v\n", err)
			os.Exit(1)
		}
		ok("%s is now an admin\n", email)
	}

	ok("Migration finished\n")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
