package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chatpay/internal/auth"
)

func TestAuthRejectsMissingHeader(t *testing.T) {
	handler := Auth("secret")(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler reached without token")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/transfers", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestAuthRejectsMalformedHeader(t *testing.T) {
	handler := Auth("secret")(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler reached without token")
	}))
	for _, header := range []string{"Basic abc", "Bearer", "token-only"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin/transfers", nil)
		req.Header.Set("Authorization", header)
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: unexpected status %d", header, rec.Code)
		}
	}
}

func TestAuthRejectsBadToken(t *testing.T) {
	handler := Auth("secret")(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler reached without token")
	}))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/transfers", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestAuthPassesClaimsThrough(t *testing.T) {
	token, err := auth.GenerateToken("secret", "admin", time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var gotLogin string
	handler := Auth("secret")(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotLogin, _ = AdminLoginFromContext(r.Context())
	}))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/transfers", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if gotLogin != "admin" {
		t.Fatalf("unexpected login: %q", gotLogin)
	}
}
