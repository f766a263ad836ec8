package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/inamate/sketch/internal/auth"
	"github.com/inamate/sketch/internal/codec"
	"github.com/inamate/sketch/internal/config"
	"github.com/inamate/sketch/internal/media"
	mw "github.com/inamate/sketch/internal/middleware"
	"github.com/inamate/sketch/internal/session"
	"github.com/inamate/sketch/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var repo store.Repository
	if cfg.DatabaseURL == "" {
		slog.Warn("DATABASE_URL not set, scenes are kept in memory")
		repo = store.NewMemory()
	} else {
		pool, err := store.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		pg := store.NewPostgres(pool)
		if err := pg.Migrate(ctx); err != nil {
			slog.Error("migrate database", "error", err)
			os.Exit(1)
		}
		repo = pg
	}

	sceneCodec := codec.New(cfg.Codec())
	authService := auth.NewService(cfg.JWTSecret)

	sceneService := store.NewService(repo, sceneCodec)
	sceneHandler := store.NewHandler(sceneService)

	editorOpts := cfg.Editor()
	editorOpts.Codec = sceneCodec
	editorOpts.Images = media.NewDecoder(cfg.MaxImageSide)

	hub := session.NewHub()
	go hub.Run()
	sessionHandler := session.NewHandler(hub, editorOpts, sceneService, cfg.OriginHosts())

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","sessions":%d}`, hub.Count())
	}).Methods("GET")

	// Stateless conversion (public)
	r.HandleFunc("/scenes/normalize", sceneHandler.Normalize).Methods("POST", "OPTIONS")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)

	api.HandleFunc("/scenes", sceneHandler.List).Methods("GET")
	api.HandleFunc("/scenes", sceneHandler.Create).Methods("POST")
	api.HandleFunc("/scenes/{sceneId}", sceneHandler.Get).Methods("GET")
	api.HandleFunc("/scenes/{sceneId}", sceneHandler.Replace).Methods("PUT")
	api.HandleFunc("/scenes/{sceneId}", sceneHandler.Delete).Methods("DELETE")
	api.HandleFunc("/scenes/{sceneId}/summary", sceneHandler.Summary).Methods("GET")

	// WebSocket endpoint; anonymous sessions edit without storage
	r.Handle("/ws/session", authService.OptionalAuth(http.HandlerFunc(sessionHandler.ServeWS)))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server", "sessions", hub.Count())
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
