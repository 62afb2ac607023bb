package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"ascendAPI/handlers"
	"ascendAPI/internal/notification"
	"ascendAPI/middleware"
	"ascendAPI/services"

	_ "net/http/pprof"
)

var (
	dbPool           *pgxpool.Pool
	userService      *services.UserService
	visionService    *services.VisionService
	habitService     *services.HabitService
	checkInService   *services.CheckInService
	insightService   *services.InsightService
	analyticsService *services.AnalyticsService
	coachService     *services.CoachService
	lessonService    *services.LessonService
	reminderService  *services.ReminderService
	fcmService       *notification.FCMService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey == "" {
		log.Fatal("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(clerkSecretKey)
	log.Println("Clerk initialized successfully")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Successfully connected to database")

	userService = services.NewUserService(dbPool)
	visionService = services.NewVisionService(dbPool)
	habitService = services.NewHabitService(dbPool)
	checkInService = services.NewCheckInService(dbPool)
	insightService = services.NewInsightService(dbPool)
	analyticsService = services.NewAnalyticsService(dbPool)
	lessonService = services.NewLessonService(dbPool)
	coachService = services.NewCoachService(
		dbPool,
		os.Getenv("COACH_API_URL"),
		os.Getenv("COACH_API_KEY"),
		os.Getenv("COACH_MODEL"),
	)

	fcmService, err = notification.NewFCMService("./serviceAccountKey.json")
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
		reminderService = services.NewReminderService(dbPool, nil)
	} else {
		log.Println("FCM Push Provider initialized successfully")
		reminderService = services.NewReminderService(dbPool, fcmService)
	}

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	visionHandler := handlers.NewVisionHandler(visionService)
	habitHandler := handlers.NewHabitHandler(habitService)
	checkInHandler := handlers.NewCheckInHandler(checkInService)
	insightHandler := handlers.NewInsightHandler(insightService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	coachHandler := handlers.NewCoachHandler(coachService)
	lessonHandler := handlers.NewLessonHandler(lessonService)
	notificationHandler := handlers.NewNotificationHandler(reminderService)
	webhookHandler := handlers.NewWebhookHandler(userService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "ascend-api"}`))
	}).Methods("GET")

	r.HandleFunc("/webhooks/clerk", webhookHandler.HandleClerkWebhook).Methods("POST")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER (REQUIRES AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := r.PathPrefix("/api/v1").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/user", userHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/user", userHandler.DeleteAccount).Methods("DELETE")

	protected.HandleFunc("/visions", visionHandler.GetVisions).Methods("GET")
	protected.HandleFunc("/visions", visionHandler.CreateVision).Methods("POST")
	protected.HandleFunc("/visions/{id}", visionHandler.GetVision).Methods("GET")
	protected.HandleFunc("/visions/{id}", visionHandler.UpdateVision).Methods("PUT")
	protected.HandleFunc("/visions/{id}", visionHandler.DeleteVision).Methods("DELETE")
	protected.HandleFunc("/visions/{id}/archive", visionHandler.ArchiveVision).Methods("POST")
	protected.HandleFunc("/visions/{id}/unarchive", visionHandler.UnarchiveVision).Methods("POST")
	protected.HandleFunc("/visions/{id}/paths", visionHandler.GetPaths).Methods("GET")
	protected.HandleFunc("/visions/{id}/paths", visionHandler.CreatePath).Methods("POST")
	protected.HandleFunc("/paths/{pathId}", visionHandler.UpdatePath).Methods("PUT")
	protected.HandleFunc("/paths/{pathId}", visionHandler.DeletePath).Methods("DELETE")

	protected.HandleFunc("/habits", habitHandler.GetHabits).Methods("GET")
	protected.HandleFunc("/habits", habitHandler.CreateHabit).Methods("POST")
	protected.HandleFunc("/habits/today", habitHandler.GetTodayHabits).Methods("GET")
	protected.HandleFunc("/habits/{id}", habitHandler.GetHabitDetail).Methods("GET")
	protected.HandleFunc("/habits/{id}", habitHandler.UpdateHabit).Methods("PUT")
	protected.HandleFunc("/habits/{id}", habitHandler.DeleteHabit).Methods("DELETE")
	protected.HandleFunc("/habits/{id}/complete", habitHandler.RecordCompletion).Methods("POST")
	protected.HandleFunc("/habits/{id}/pause", habitHandler.SetPaused).Methods("POST")
	protected.HandleFunc("/habits/{id}/calendar", habitHandler.GetCalendar).Methods("GET")

	protected.HandleFunc("/check-ins", checkInHandler.SubmitCheckIn).Methods("POST")
	protected.HandleFunc("/check-ins/today", checkInHandler.GetToday).Methods("GET")
	protected.HandleFunc("/check-ins", checkInHandler.GetHistory).Methods("GET")
	protected.HandleFunc("/check-ins/streak", checkInHandler.GetStreak).Methods("GET")

	protected.HandleFunc("/insights", insightHandler.GetInsights).Methods("GET")
	protected.HandleFunc("/insights/generate", insightHandler.GenerateInsights).Methods("POST")
	protected.HandleFunc("/insights/{id}/dismiss", insightHandler.DismissInsight).Methods("PUT")

	protected.HandleFunc("/analytics/overview", analyticsHandler.GetOverview).Methods("GET")

	protected.HandleFunc("/coach/chat", coachHandler.Chat).Methods("POST")
	protected.HandleFunc("/coach/history", coachHandler.GetHistory).Methods("GET")

	protected.HandleFunc("/lessons", lessonHandler.GetLessons).Methods("GET")
	protected.HandleFunc("/lessons/{id}", lessonHandler.GetLesson).Methods("GET")
	protected.HandleFunc("/lessons/{id}/complete", lessonHandler.MarkComplete).Methods("POST")

	protected.HandleFunc("/notifications/register-device", notificationHandler.RegisterDevice).Methods("POST")

	// Background jobs: habit reminders every minute, insight sweep nightly.
	scheduler := cron.New()
	scheduler.AddFunc("@every 1m", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := reminderService.DispatchDue(ctx); err != nil {
			log.Printf("Reminder dispatch failed: %v", err)
		}
	})
	scheduler.AddFunc("0 6 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := insightService.GenerateAll(ctx); err != nil {
			log.Printf("Insight sweep failed: %v", err)
		}
	})
	scheduler.Start()
	defer scheduler.Stop()

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:    port,
		Handler: corsHandler(r),
		// WriteTimeout stays 0 so /coach/chat can stream; handlers bound
		// their own work with per-request contexts.
		ReadTimeout: 5 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
