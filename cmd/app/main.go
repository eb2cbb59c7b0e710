package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"pulse-service/internal/config"
	"pulse-service/internal/dashboard"
	dashboardGet "pulse-service/internal/http-server/handlers/dashboard/get"
	loginHandler "pulse-service/internal/http-server/handlers/auth/login"
	logoutHandler "pulse-service/internal/http-server/handlers/auth/logout"
	signupHandler "pulse-service/internal/http-server/handlers/auth/signup"
	statusGet "pulse-service/internal/http-server/handlers/status/get"
	statusSet "pulse-service/internal/http-server/handlers/status/set"
	syncCreate "pulse-service/internal/http-server/handlers/syncs/create"
	syncGet "pulse-service/internal/http-server/handlers/syncs/get"
	syncRespond "pulse-service/internal/http-server/handlers/syncs/respond"
	taskCreate "pulse-service/internal/http-server/handlers/tasks/create"
	taskDelete "pulse-service/internal/http-server/handlers/tasks/delete"
	taskGet "pulse-service/internal/http-server/handlers/tasks/get"
	taskUpdate "pulse-service/internal/http-server/handlers/tasks/update"
	teamGet "pulse-service/internal/http-server/handlers/team/get"
	"pulse-service/internal/issues"
	"pulse-service/internal/lock"
	"pulse-service/internal/protocol"
	"pulse-service/internal/schedule"
	svc "pulse-service/internal/service"
	"pulse-service/internal/sessions"
	"pulse-service/internal/storage/postgres"
	slogpretty "pulse-service/pkg/handlers/slogPretty"
	"pulse-service/pkg/middleware/mwAuth"
	"pulse-service/pkg/middleware/mwLogger"
	"pulse-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {

	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting API", slog.String("env", cfg.Env))
	log.Debug("Debug messages are enabled")

	week, err := schedule.Load(cfg.SchedulePath)
	if err != nil {
		log.Error("Failed to load weekly schedule", sl.Err(err))
		os.Exit(1)
	}

	classifier := protocol.NewClassifier(week.Opportunities, week.Stealth)

	storage, err := postgres.New(cfg.StoragePath)
	if err != nil {
		log.Error("Failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	locker, err := lock.NewRedisLock(cfg.RedisAddr)
	if err != nil {
		log.Error("Failed to init redis lock", sl.Err(err))
		os.Exit(1)
	}

	sessionStore, err := sessions.New(cfg.RedisAddr)
	if err != nil {
		log.Error("Failed to init session store", sl.Err(err))
		os.Exit(1)
	}

	service := svc.NewService(storage, locker, sessionStore, svc.Options{
		SessionTTL: cfg.Sessions.TTL,
		SyncExpiry: cfg.Sync.Expiry,
	})

	issueClient := issues.New(log, cfg.Issues)

	poller := dashboard.New(log, week, classifier, cfg.Dashboard.ClockInterval, nil, nil)

	pollCtx, stopPollers := context.WithCancel(context.Background())

	go poller.Run(pollCtx)
	go issueClient.Run(pollCtx, cfg.Dashboard.PollInterval)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwLogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(CORS)

	requireSession := mwAuth.New(log, sessionStore)

	// Auth
	router.Post("/auth/signup", signupHandler.New(log, service))
	router.Post("/auth/login", loginHandler.New(log, service))

	// Dashboard (read-only, drives the live view)
	router.Get("/dashboard", dashboardGet.New(log, poller, issueClient, service))

	router.Group(func(r chi.Router) {
		r.Use(requireSession)

		// Auth
		r.Post("/auth/logout", logoutHandler.New(log, service))

		// Status
		r.Get("/status", statusGet.New(log, service))
		r.Put("/status", statusSet.New(log, service))

		// Team
		r.Get("/team", teamGet.New(log, service))

		// Tasks
		r.Post("/tasks", taskCreate.New(log, service))
		r.Get("/tasks", taskGet.New(log, service))
		r.Put("/tasks/{id}", taskUpdate.New(log, service))
		r.Delete("/tasks/{id}", taskDelete.New(log, service))

		// Sync requests
		r.Post("/syncs", syncCreate.New(log, service))
		r.Get("/syncs", syncGet.New(log, service))
		r.Put("/syncs/{id}/respond", syncRespond.New(log, service))
	})

	serv := &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	serverErrCh := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", slog.String("addr", cfg.Address))
		if err := serv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErrCh:
		if err != nil {
			log.Error("HTTP server stopped unexpectedly", sl.Err(err))
		} else {
			log.Info("HTTP server stopped gracefully")
		}
	}

	stopPollers()

	shutdownTimeout := cfg.HTTPServer.ShutdownTimeout

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("Shutting down HTTP server", slog.String("timeout", shutdownTimeout.String()))

	if err := serv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", sl.Err(err))
	} else {
		log.Info("Server shutdown complete")
	}

	if storage != nil {
		if err := storage.Close(); err != nil {
			log.Error("Failed to close storage", sl.Err(err))
		} else {
			log.Info("Storage closed")
		}
	}

	if locker != nil {
		if err := locker.Close(); err != nil {
			log.Error("Failed to close locker", sl.Err(err))
		}
	}

	if sessionStore != nil {
		if err := sessionStore.Close(); err != nil {
			log.Error("Failed to close session store", sl.Err(err))
		}
	}

	log.Info("Shutdown finished, server stopped")

}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
