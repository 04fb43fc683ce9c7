package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/averma/chitchat/internal/auth"
	"github.com/averma/chitchat/internal/config"
	"github.com/averma/chitchat/internal/handlers"
	"github.com/averma/chitchat/internal/logging"
	"github.com/averma/chitchat/internal/middleware"
	"github.com/averma/chitchat/internal/store/sqlstore"
	"github.com/averma/chitchat/internal/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug(".env not found, using environment", "error", err)
	}
	logging.Setup()

	cfg := config.Load()

	store, err := sqlstore.New(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		slog.Error("open store", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	var bridge *ws.Bridge
	if cfg.RedisAddr != "" {
		bridge = ws.NewBridge(cfg.RedisAddr)
		slog.Info("relay bridge enabled", "redis", cfg.RedisAddr)
	}

	hub := ws.NewHub(bridge)
	go hub.Run()
	if bridge != nil {
		go bridge.Subscribe(context.Background(), hub.ApplyRemote)
	}

	userHandler := &handlers.UserHandler{Store: store, JWT: jwtManager}
	chatHandler := &handlers.ChatHandler{Store: store}
	messageHandler := &handlers.MessageHandler{Store: store}

	r := mux.NewRouter()
	r.Use(middleware.Logging, middleware.Metrics)

	handlers.RegisterRoutes(r, jwtManager, userHandler, chatHandler, messageHandler)

	upgrader := ws.NewUpgrader(cfg.AllowedOrigins)
	r.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWs(hub, jwtManager, upgrader, w, r)
	})

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	slog.Info("starting server", "addr", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, c.Handler(r)); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
