package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"livechess/internal/auth"
	"livechess/internal/storage"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: bad json", errBadRequest), http.StatusBadRequest},
		{auth.ErrBadRequest, http.StatusBadRequest},
		{storage.ErrBadColor, http.StatusBadRequest},
		{auth.ErrUnauthorized, http.StatusUnauthorized},
		{storage.ErrAlreadyTaken, http.StatusForbidden},
		{storage.ErrUsernameTaken, http.StatusForbidden},
		{fmt.Errorf("game 3: %w", storage.ErrNotFound), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusFor(tc.err); got != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.want, got)
		}
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	if got := ClientIP(req); got != "10.0.0.1" {
		t.Fatalf("expected remote host, got %s", got)
	}
	req.Header.Set("X-Forwarded-For", "1.2.3.4, 10.0.0.1")
	if got := ClientIP(req); got != "1.2.3.4" {
		t.Fatalf("expected forwarded address, got %s", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("preflight reached the handler")
	})
	h := cors([]string{"http://localhost:3000"}, next)

	req := httptest.NewRequest(http.MethodOptions, "/game", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("unexpected allow-origin %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/game", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unlisted origin allowed: %q", got)
	}
}

func TestOriginAllowed(t *testing.T) {
	if !originAllowed([]string{"*"}, "http://anything") {
		t.Fatalf("wildcard should allow any origin")
	}
	if originAllowed(nil, "http://anything") {
		t.Fatalf("empty allowlist should allow nothing")
	}
}
