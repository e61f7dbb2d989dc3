package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lvidal/tasklist-be/internal/api"
	"github.com/lvidal/tasklist-be/internal/auth"
	"github.com/lvidal/tasklist-be/internal/config"
	"github.com/lvidal/tasklist-be/internal/database"
	"github.com/lvidal/tasklist-be/internal/logger"
	"github.com/lvidal/tasklist-be/internal/monitoring"
	"github.com/lvidal/tasklist-be/internal/services"
	"github.com/lvidal/tasklist-be/internal/session"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(cfg.Log.Level)

	// Set up database
	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply database migrations: %v", err)
	}

	// Set up services
	codec := session.New(session.Config{Secret: []byte(cfg.Session.Secret)})
	userService := services.NewUserService(db)
	todoService := services.NewTodoService(db)
	authService := auth.NewService(userService, codec)

	// Set up and run the background stat reporter
	statReporter, err := monitoring.NewStatReporter()
	if err != nil {
		log.Fatalf("Failed to initialize stat reporter: %v", err)
	}
	go statReporter.Run()

	// Set up and run the background maintenance worker
	maintenance, err := monitoring.NewMaintenance(db, cfg.Maintenance.Schedule)
	if err != nil {
		log.Fatalf("Failed to initialize maintenance worker: %v", err)
	}
	go maintenance.Run()

	// Set up router
	router := api.NewRouter(authService, userService, todoService, statReporter, cfg.Server.FrontendOrigin)

	// Set up server
	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on %s\n", cfg.Addr())
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	statReporter.Stop()
	maintenance.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
