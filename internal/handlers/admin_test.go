package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chatpay/internal/auth"
	"chatpay/internal/middleware"
	"chatpay/internal/models"
	"chatpay/internal/store"
	"chatpay/internal/websocket"
)

func adminHandler(t *testing.T, ledger Ledger) *Handler {
	t.Helper()
	hash, err := auth.HashPassword("s3cret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg := testConfig()
	cfg.AdminPasswordHash = hash
	return New(cfg, stubBotRouter{}, &stubMessenger{}, ledger, websocket.NewHub(), middleware.NewAccountLimiter(600, 100))
}

func TestLoginIssuesToken(t *testing.T) {
	h := adminHandler(t, stubLedgerReader{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"login":"admin","password":"s3cret"}`))
	h.Login(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d, body %s", rec.Code, rec.Body.String())
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	claims, err := auth.ParseToken("test-secret", body["token"])
	if err != nil {
		t.Fatalf("issued token invalid: %v", err)
	}
	if claims.Login != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestLoginRejectsWrongCredentials(t *testing.T) {
	h := adminHandler(t, stubLedgerReader{})
	for _, payload := range []string{
		`{"login":"admin","password":"wrong"}`,
		`{"login":"intruder","password":"s3cret"}`,
	} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(payload))
		h.Login(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("payload %s: unexpected status %d", payload, rec.Code)
		}
	}
}

func TestLoginForbiddenWhenUnconfigured(t *testing.T) {
	h := newTestHandler(stubBotRouter{}, &stubMessenger{}, stubLedgerReader{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"login":"admin","password":"anything"}`))
	h.Login(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func sampleTransfers() []store.TransferWithParties {
	sender := "alice"
	recipient := "bob"
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return []store.TransferWithParties{{
		Transfer: models.Transfer{
			ID: 11, SenderID: 1, RecipientID: 2,
			AmountMinor: 10000, RemainingMinor: 4000,
			Status: models.TransferConfirmed, CreatedAt: created, UpdatedAt: created,
		},
		SenderLogin:    &sender,
		RecipientLogin: &recipient,
	}}
}

func TestListTransfers(t *testing.T) {
	h := adminHandler(t, stubLedgerReader{transfers: sampleTransfers()})
	rec := httptest.NewRecorder()
	h.ListTransfers(rec, httptest.NewRequest(http.MethodGet, "/admin/transfers", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var body struct {
		Transfers []map[string]any `json:"transfers"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Transfers) != 1 {
		t.Fatalf("unexpected transfers: %#v", body.Transfers)
	}
	row := body.Transfers[0]
	if row["amount"] != "100.00" || row["remaining"] != "40.00" || row["sender_login"] != "alice" {
		t.Fatalf("unexpected row: %#v", row)
	}
}

func TestListTransfersStoreError(t *testing.T) {
	h := adminHandler(t, stubLedgerReader{err: errors.New("db down")})
	rec := httptest.NewRecorder()
	h.ListTransfers(rec, httptest.NewRequest(http.MethodGet, "/admin/transfers", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestExportCSV(t *testing.T) {
	h := adminHandler(t, stubLedgerReader{transfers: sampleTransfers()})
	rec := httptest.NewRecorder()
	h.ExportCSV(rec, httptest.NewRequest(http.MethodGet, "/admin/export.csv", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("unexpected content type: %q", ct)
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("unexpected csv: %q", rec.Body.String())
	}
	if !strings.HasPrefix(lines[0], "id,sender_id,sender_login") {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if !strings.Contains(lines[1], "11,1,alice,2,bob,100.00,40.00,confirmed,2024-05-01T12:00:00Z") {
		t.Fatalf("unexpected row: %q", lines[1])
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	h := adminHandler(t, stubLedgerReader{})
	server := httptest.NewServer(h.Routes())
	defer server.Close()

	resp, err := http.Get(server.URL + "/admin/transfers")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}

	token, err := auth.GenerateToken("test-secret", "admin", time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL+"/admin/transfers", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestWSEventsRequiresToken(t *testing.T) {
	h := adminHandler(t, stubLedgerReader{})
	rec := httptest.NewRecorder()
	h.WSEvents(rec, httptest.NewRequest(http.MethodGet, "/ws/events", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.WSEvents(rec, httptest.NewRequest(http.MethodGet, "/ws/events?token=garbage", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}
