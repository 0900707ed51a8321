package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/minutesdesk/minutes-manager/internal/config"
	"github.com/minutesdesk/minutes-manager/internal/database"
	"github.com/minutesdesk/minutes-manager/internal/handlers"
	"github.com/minutesdesk/minutes-manager/internal/jobs"
	"github.com/minutesdesk/minutes-manager/internal/repository"
	cron "github.com/minutesdesk/minutes-manager/internal/scheduler"
	"github.com/minutesdesk/minutes-manager/internal/services"
	"github.com/minutesdesk/minutes-manager/pkg/email"
	"github.com/minutesdesk/minutes-manager/pkg/logger"
	"github.com/minutesdesk/minutes-manager/pkg/middleware"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	if err := userRepo.EnsureIndexes(context.Background()); err != nil {
		log.Fatalf("Failed to ensure user indexes: %v", err)
	}
	minuteRepo := repository.NewMinuteRepository(db)
	deadlineRepo := repository.NewDeadlineRepository(db)
	reminderRepo := repository.NewReminderRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	// --- Services ---
	userService := services.NewUserService(userRepo)
	deadlineService := services.NewDeadlineService(deadlineRepo, minuteRepo, reminderRepo)
	reminderService := services.NewReminderService(reminderRepo)
	auditService := services.NewAuditService(auditRepo)

	// --- Dispatch engine ---
	var notifier jobs.Notifier = jobs.LogNotifier{}
	if cfg.SMTPHost != "" {
		notifier = email.NewSMTPSender(cfg)
	}
	dispatcher := jobs.NewReminderDispatcher(deadlineService, reminderRepo, minuteRepo, userRepo, notifier)

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService, cfg)
	deadlineHandler := handlers.NewDeadlineHandler(deadlineService, auditService)
	reminderHandler := handlers.NewReminderHandler(reminderService, dispatcher)
	auditHandler := handlers.NewAuditHandler(auditService)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	// Public user routes
	router.HandleFunc("/users/register", userHandler.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/users/login", userHandler.LoginUserHandler).Methods("POST")

	// Protected user routes
	protectedUserRoutes := router.PathPrefix("/users").Subrouter()
	protectedUserRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedUserRoutes.HandleFunc("/{id}", userHandler.GetUserHandler).Methods("GET")

	// Deadline routes scoped to a minute
	protectedMinuteRoutes := router.PathPrefix("/minutes").Subrouter()
	protectedMinuteRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedMinuteRoutes.HandleFunc("/{id}/deadlines", deadlineHandler.CreateDeadlineHandler).Methods("POST")
	protectedMinuteRoutes.HandleFunc("/{id}/deadlines", deadlineHandler.ListMinuteDeadlinesHandler).Methods("GET")

	// Deadline routes
	protectedDeadlineRoutes := router.PathPrefix("/deadlines").Subrouter()
	protectedDeadlineRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedDeadlineRoutes.HandleFunc("", deadlineHandler.ListMyDeadlinesHandler).Methods("GET")
	protectedDeadlineRoutes.HandleFunc("/{id}", deadlineHandler.GetDeadlineHandler).Methods("GET")
	protectedDeadlineRoutes.HandleFunc("/{id}", deadlineHandler.UpdateDeadlineHandler).Methods("PUT")
	protectedDeadlineRoutes.HandleFunc("/{id}", deadlineHandler.DeleteDeadlineHandler).Methods("DELETE")

	// Reminder routes
	protectedReminderRoutes := router.PathPrefix("/reminders").Subrouter()
	protectedReminderRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedReminderRoutes.HandleFunc("", reminderHandler.GetMyRemindersHandler).Methods("GET")
	protectedReminderRoutes.HandleFunc("/{id}/read", reminderHandler.MarkAsReadHandler).Methods("POST")

	// Audit routes
	protectedAuditRoutes := router.PathPrefix("/audit").Subrouter()
	protectedAuditRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedAuditRoutes.HandleFunc("", auditHandler.ListMyAuditHandler).Methods("GET")

	// Admin routes
	adminRoutes := router.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	adminRoutes.Use(middleware.RequireRole("admin"))
	adminRoutes.HandleFunc("/sweep", reminderHandler.RunSweepHandler).Methods("POST")

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	// Start the daily reminder sweeps (09:00 and 14:00 server time)
	cron.StartReminderCronJobs(dispatcher)

	port := cfg.Port
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
