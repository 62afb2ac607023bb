package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClerkAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	handler := ClerkAuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached without auth")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/habits", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestClerkAuthMiddlewareRejectsBadFormat(t *testing.T) {
	handler := ClerkAuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached with a malformed header")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/habits", nil)
	req.Header.Set("Authorization", "token-without-bearer-prefix")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
