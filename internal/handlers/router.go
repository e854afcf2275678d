package handlers

import (
	"context"
	"net/http"

	"chatpay/internal/bot"
	"chatpay/internal/config"
	"chatpay/internal/middleware"
	"chatpay/internal/models"
	"chatpay/internal/store"
	"chatpay/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type BotRouter interface {
	HandleEvent(ctx context.Context, from models.Profile, ev bot.Event) ([]bot.Outbound, error)
}

type Messenger interface {
	Send(ctx context.Context, out bot.Outbound) error
	AnswerCallback(ctx context.Context, callbackID string) error
}

type Ledger interface {
	ListAllTransfers(ctx context.Context) ([]store.TransferWithParties, error)
}

type Handler struct {
	cfg       config.Config
	router    BotRouter
	messenger Messenger
	ledger    Ledger
	hub       *websocket.Hub
	limiter   *middleware.AccountLimiter
}

func New(cfg config.Config, router BotRouter, messenger Messenger, ledger Ledger, hub *websocket.Hub, limiter *middleware.AccountLimiter) *Handler {
	return &Handler{
		cfg:       cfg,
		router:    router,
		messenger: messenger,
		ledger:    ledger,
		hub:       hub,
		limiter:   limiter,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Post("/webhook", h.Webhook)
	router.Post("/auth/login", h.Login)
	router.Get("/ws/events", h.WSEvents)
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/admin", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Get("/transfers", h.ListTransfers)
		r.Get("/export.csv", h.ExportCSV)
	})

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}
