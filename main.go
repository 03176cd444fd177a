package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"workforce/auth"
	"workforce/availability"
	"workforce/config"
	"workforce/db"
	"workforce/handlers"
	"workforce/middleware"
	"workforce/models"
	"workforce/roster"
	"workforce/timeclock"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found, using system environment variables")
	}

	cfg := config.Load()
	cfg.Validate()
	setupLogging(cfg)

	logrus.WithFields(logrus.Fields{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
	}).Info("starting workforce API server")

	ctx := context.Background()
	firestoreDB, err := db.NewFirestoreDB(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsPath)
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize Firestore")
	}
	defer firestoreDB.Close()

	jwtManager := auth.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.Expiration,
		cfg.JWT.RefreshTokenExpiration,
	)

	rosterService := roster.NewService(firestoreDB)
	availabilityService := availability.NewService(firestoreDB, cfg.Shop.OpenTime, cfg.Shop.CloseTime)
	clockService := timeclock.NewService(firestoreDB)

	authHandler := handlers.NewAuthHandler(firestoreDB, jwtManager)
	staffHandler := handlers.NewStaffHandler(firestoreDB, availabilityService, clockService)
	adminHandler := handlers.NewAdminHandler(firestoreDB, rosterService, cfg.Shop)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	rateLimiter.CleanupOldLimiters()

	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("/api/login", authHandler.Login)
	mux.HandleFunc("/api/refresh", authHandler.RefreshToken)

	authMiddleware := middleware.AuthMiddleware(jwtManager, firestoreDB)
	staffOrAdmin := middleware.RequireRole(models.RoleStaff, models.RoleAdmin)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	// Staff endpoints
	mux.Handle("/api/availability", authMiddleware(staffOrAdmin(http.HandlerFunc(staffHandler.GetAvailability))))
	mux.Handle("/api/availability/previous", authMiddleware(staffOrAdmin(http.HandlerFunc(staffHandler.GetPreviousAvailability))))
	mux.Handle("/api/availability/submit", authMiddleware(staffOrAdmin(http.HandlerFunc(staffHandler.SubmitAvailability))))
	mux.Handle("/api/roster", authMiddleware(staffOrAdmin(http.HandlerFunc(staffHandler.GetRoster))))
	mux.Handle("/api/hours", authMiddleware(staffOrAdmin(http.HandlerFunc(staffHandler.GetHours))))
	mux.Handle("/api/clock/status", authMiddleware(staffOrAdmin(http.HandlerFunc(staffHandler.ClockStatus))))
	mux.Handle("/api/clock/in", authMiddleware(staffOrAdmin(http.HandlerFunc(staffHandler.ClockIn))))
	mux.Handle("/api/clock/out", authMiddleware(staffOrAdmin(http.HandlerFunc(staffHandler.ClockOut))))

	// Admin endpoints
	mux.Handle("/api/admin/staff", authMiddleware(adminOnly(muxByMethod(map[string]http.HandlerFunc{
		http.MethodGet:  adminHandler.ListStaff,
		http.MethodPost: adminHandler.CreateStaff,
	}))))
	mux.Handle("/api/admin/staff/", authMiddleware(adminOnly(http.HandlerFunc(adminHandler.StaffByID))))
	mux.Handle("/api/admin/reset-password", authMiddleware(adminOnly(http.HandlerFunc(adminHandler.ResetPassword))))
	mux.Handle("/api/admin/availability", authMiddleware(adminOnly(http.HandlerFunc(adminHandler.GetAvailability))))
	mux.Handle("/api/admin/roster", authMiddleware(adminOnly(http.HandlerFunc(adminHandler.GetRoster))))
	mux.Handle("/api/admin/roster/save", authMiddleware(adminOnly(http.HandlerFunc(adminHandler.SaveShift))))
	mux.Handle("/api/admin/roster/remove", authMiddleware(adminOnly(http.HandlerFunc(adminHandler.RemoveShift))))
	mux.Handle("/api/admin/roster/watch", authMiddleware(adminOnly(http.HandlerFunc(adminHandler.WatchRoster))))
	mux.Handle("/api/admin/hours", authMiddleware(adminOnly(http.HandlerFunc(adminHandler.GetHours))))
	mux.Handle("/api/admin/hours/export", authMiddleware(adminOnly(http.HandlerFunc(adminHandler.ExportHours))))
	mux.Handle("/api/admin/audit", authMiddleware(adminOnly(http.HandlerFunc(adminHandler.GetAuditLogs))))

	// Global middleware
	handler := middleware.LoggingMiddleware(mux)
	handler = middleware.CORSMiddleware(cfg.CORS.AllowedOrigins)(handler)
	handler = rateLimiter.Middleware()(handler)

	server := &http.Server{
		Addr:        fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: the roster watch endpoint holds its
		// response open for the lifetime of the connection.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.WithField("addr", server.Addr).Info("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("server forced to shutdown")
	}

	logrus.Info("server stopped")
}

func setupLogging(cfg *config.Config) {
	if cfg.Logging.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

// muxByMethod routes a single path to different handlers per HTTP method.
func muxByMethod(routes map[string]http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := routes[r.Method]; ok {
			h(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		fmt.Fprint(w, `{"error":"Method not allowed"}`)
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","timestamp":%d,"version":"1.0.0"}`, time.Now().Unix())
}
