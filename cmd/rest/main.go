package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"tradie-recovery-be/internal/bootstrap"
	"tradie-recovery-be/internal/config"
	"tradie-recovery-be/internal/pkg/logger"
	"tradie-recovery-be/internal/server"
	"tradie-recovery-be/internal/tracer"
	"tradie-recovery-be/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Tracer
	shutdownTracer := tracer.InitTracer(cfg.App, sysLogger)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracer(ctx)
	}()

	// 3. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 4. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(gormDB, cfg, bootstrap.WithLogger(sysLogger))
	if err != nil {
		log.Panicf("Unable to build container: %v", err)
	}
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := container.Seed(ctx); err != nil {
		log.Panicf("Unable to seed reference data: %v", err)
	}

	// 5. Start Background Services
	if err := container.Start(ctx); err != nil {
		log.Panicf("Unable to start background services: %v", err)
	}

	// 6. Run Server
	srv := server.New(cfg, container)
	go func() {
		if err := srv.Run(); err != nil {
			sysLogger.Error("Server", "Server stopped", map[string]interface{}{"error": err.Error()})
			stop()
		}
	}()

	<-ctx.Done()
	sysLogger.Info("Server", "Shutting down", nil)
	if err := srv.Shutdown(); err != nil {
		sysLogger.Error("Server", "Shutdown failed", map[string]interface{}{"error": err.Error()})
	}
}
