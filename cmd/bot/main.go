package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatpay/internal/bot"
	"chatpay/internal/config"
	"chatpay/internal/db"
	"chatpay/internal/handlers"
	"chatpay/internal/middleware"
	"chatpay/internal/services"
	"chatpay/internal/session"
	"chatpay/internal/store"
	"chatpay/internal/telegram"
	"chatpay/internal/websocket"
)

func main() {
	cfg := config.Load()
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer database.Close()

	users := store.NewUserStore(database)
	transfers := store.NewTransferStore(database)
	receipts := store.NewReceiptStore(database)
	txRunner := db.NewTxRunner(database)

	hub := websocket.NewHub()
	ledger := services.NewLedgerService(txRunner, transfers, receipts, users, hub)
	userService := services.NewUserService(users, transfers)

	sessions := session.NewManager(cfg.SessionTTL)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sessions.Run(ctx)

	messenger := telegram.NewClient(cfg.BotAPIURL, cfg.BotToken)
	router := bot.NewRouter(userService, ledger, sessions)
	limiter := middleware.NewAccountLimiter(cfg.EventsPerMinute, 10)
	go limiter.Run(ctx, time.Hour)

	handler := handlers.New(cfg, router, messenger, ledger, hub, limiter)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("chatpay webhook listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
