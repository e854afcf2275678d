package handlers

import (
	"crypto/subtle"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"chatpay/internal/auth"
	"chatpay/internal/money"
	"chatpay/internal/websocket"
)

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if h.cfg.AdminPasswordHash == "" {
		respondError(w, http.StatusForbidden, "admin access not configured")
		return
	}
	loginMatches := subtle.ConstantTimeCompare([]byte(req.Login), []byte(h.cfg.AdminLogin)) == 1
	if !loginMatches || !auth.CheckPassword(h.cfg.AdminPasswordHash, req.Password) {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, err := auth.GenerateToken(h.cfg.JWTSecret, req.Login, h.cfg.TokenTTL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) ListTransfers(w http.ResponseWriter, r *http.Request) {
	transfers, err := h.ledger.ListAllTransfers(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load transfers")
		return
	}
	payload := make([]map[string]any, 0, len(transfers))
	for _, t := range transfers {
		payload = append(payload, map[string]any{
			"id":              t.ID,
			"sender_id":       t.SenderID,
			"sender_login":    derefString(t.SenderLogin),
			"recipient_id":    t.RecipientID,
			"recipient_login": derefString(t.RecipientLogin),
			"amount":          money.FormatMinor(t.AmountMinor),
			"remaining":       money.FormatMinor(t.RemainingMinor),
			"status":          t.Status,
			"created_at":      t.CreatedAt,
			"updated_at":      t.UpdatedAt,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"transfers": payload})
}

func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	transfers, err := h.ledger.ListAllTransfers(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load transfers")
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="transfers.csv"`)
	writer := csv.NewWriter(w)
	_ = writer.Write([]string{"id", "sender_id", "sender_login", "recipient_id", "recipient_login", "amount", "remaining", "status", "created_at", "updated_at"})
	for _, t := range transfers {
		_ = writer.Write([]string{
			strconv.FormatInt(t.ID, 10),
			strconv.FormatInt(t.SenderID, 10),
			derefString(t.SenderLogin),
			strconv.FormatInt(t.RecipientID, 10),
			derefString(t.RecipientLogin),
			money.FormatMinor(t.AmountMinor),
			money.FormatMinor(t.RemainingMinor),
			t.Status,
			t.CreatedAt.Format(time.RFC3339),
			t.UpdatedAt.Format(time.RFC3339),
		})
	}
	writer.Flush()
}

func (h *Handler) WSEvents(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		authHeader := r.Header.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}
	if token == "" {
		respondError(w, http.StatusUnauthorized, "missing token")
		return
	}
	if _, err := auth.ParseToken(h.cfg.JWTSecret, token); err != nil {
		respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	websocket.ServeWS(w, r, h.hub)
}
