package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"chatpay/internal/bot"
	"chatpay/internal/telegram"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	webhookLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "chatpay_webhook_duration_seconds",
		Help:    "Webhook handling latency",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})
	eventsThrottled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatpay_events_throttled_total",
		Help: "Inbound events dropped by the per-account rate limit",
	})
	sendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatpay_send_failures_total",
		Help: "Outbound messages that could not be delivered",
	})
)

// Webhook always acknowledges with 200 once the payload parses; the chat
// platform retries anything else and that only amplifies failures.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(webhookLatency)
	defer timer.ObserveDuration()

	var update telegram.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	profile, event, ok := telegram.ParseEvent(update)
	if !ok {
		respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}
	if !h.limiter.Allow(profile.ID) {
		eventsThrottled.Inc()
		respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}

	outbound, err := h.router.HandleEvent(r.Context(), profile, event)
	if err != nil {
		log.Printf("handle event for account %d: %v", profile.ID, err)
		outbound = []bot.Outbound{{ChatID: profile.ID, Text: "Something went wrong. Please try again later."}}
	}
	if update.CallbackQuery != nil {
		if err := h.messenger.AnswerCallback(r.Context(), update.CallbackQuery.ID); err != nil {
			log.Printf("answer callback: %v", err)
		}
	}
	for _, out := range outbound {
		if err := h.messenger.Send(r.Context(), out); err != nil {
			sendFailures.Inc()
			log.Printf("send to %d: %v", out.ChatID, err)
		}
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
