package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"livechess/internal/auth"
	"livechess/internal/game"
	"livechess/internal/storage"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
	hub     *game.Hub
	store   *storage.Memory
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := storage.NewMemory()
	accounts := auth.NewService(store, auth.NewMemorySessions(), "test-secret", time.Hour)
	hub := game.NewHub(accounts, store, zap.NewNop())
	t.Cleanup(hub.Close)
	h := NewHandler(accounts, store, hub, zap.NewNop())
	h.Origins = []string{"*"}
	h.Version = map[string]string{"commit": "test"}
	return &testServer{t: t, handler: h.Routes(), hub: hub, store: store}
}

func (s *testServer) call(method, path, token, body string) (*httptest.ResponseRecorder, map[string]any) {
	s.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		s.t.Fatalf("%s %s: decode: %v", method, path, err)
	}
	return w, resp
}

func (s *testServer) register(name string) string {
	s.t.Helper()
	w, resp := s.call("POST", "/user", "", `{"username":"`+name+`","password":"pw","email":"x@y.z"}`)
	if w.Code != http.StatusOK {
		s.t.Fatalf("register %s: %d %v", name, w.Code, resp)
	}
	token, _ := resp["authToken"].(string)
	if token == "" || resp["username"] != name {
		s.t.Fatalf("register %s: unexpected response %v", name, resp)
	}
	return token
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, resp map[string]any, status int) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("expected status %d, got %d (%v)", status, w.Code, resp)
	}
	msg, _ := resp["message"].(string)
	if !strings.HasPrefix(msg, "Error: ") {
		t.Fatalf("error body lacks prefix: %v", resp)
	}
}

func TestAccounts(t *testing.T) {
	s := newTestServer(t)
	token := s.register("alice")

	w, resp := s.call("POST", "/user", "", `{"username":"alice","password":"pw"}`)
	expectError(t, w, resp, http.StatusForbidden)

	w, resp = s.call("POST", "/user", "", `{"username":"bob"}`)
	expectError(t, w, resp, http.StatusBadRequest)

	w, resp = s.call("POST", "/user", "", `not json`)
	expectError(t, w, resp, http.StatusBadRequest)

	w, resp = s.call("POST", "/session", "", `{"username":"alice","password":"nope"}`)
	expectError(t, w, resp, http.StatusUnauthorized)

	w, resp = s.call("POST", "/session", "", `{"username":"alice","password":"pw"}`)
	if w.Code != http.StatusOK || resp["authToken"] == "" {
		t.Fatalf("login: %d %v", w.Code, resp)
	}

	w, resp = s.call("DELETE", "/session", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("logout: %d %v", w.Code, resp)
	}
	w, resp = s.call("GET", "/game", token, "")
	expectError(t, w, resp, http.StatusUnauthorized)
}

func TestGames(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("alice")
	bob := s.register("bob")

	w, resp := s.call("POST", "/game", "", `{"gameName":"g"}`)
	expectError(t, w, resp, http.StatusUnauthorized)

	w, resp = s.call("POST", "/game", alice, `{}`)
	expectError(t, w, resp, http.StatusBadRequest)

	w, resp = s.call("POST", "/game", alice, `{"gameName":"first"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("create: %d %v", w.Code, resp)
	}
	id := int(resp["gameID"].(float64))
	body := func(color string) string {
		return `{"playerColor":"` + color + `","gameID":` + itoa(id) + `}`
	}

	w, resp = s.call("PUT", "/game", alice, body("WHITE"))
	if w.Code != http.StatusOK {
		t.Fatalf("join: %d %v", w.Code, resp)
	}
	w, resp = s.call("PUT", "/game", bob, body("WHITE"))
	expectError(t, w, resp, http.StatusForbidden)
	w, resp = s.call("PUT", "/game", bob, body("PURPLE"))
	expectError(t, w, resp, http.StatusBadRequest)
	w, resp = s.call("PUT", "/game", bob, `{"playerColor":"BLACK"}`)
	expectError(t, w, resp, http.StatusBadRequest)
	w, resp = s.call("PUT", "/game", bob, `{"playerColor":"BLACK","gameID":999}`)
	expectError(t, w, resp, http.StatusNotFound)
	if w, resp = s.call("PUT", "/game", bob, body("black")); w.Code != http.StatusOK {
		t.Fatalf("join black: %d %v", w.Code, resp)
	}

	w, resp = s.call("GET", "/game", bob, "")
	if w.Code != http.StatusOK {
		t.Fatalf("list: %d %v", w.Code, resp)
	}
	games := resp["games"].([]any)
	if len(games) != 1 {
		t.Fatalf("expected one game, got %v", games)
	}
	g := games[0].(map[string]any)
	if g["gameName"] != "first" || g["whiteUsername"] != "alice" || g["blackUsername"] != "bob" {
		t.Fatalf("unexpected game %v", g)
	}

	w, _ = s.call("DELETE", "/db", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("clear: %d", w.Code)
	}
	w, resp = s.call("GET", "/game", alice, "")
	expectError(t, w, resp, http.StatusUnauthorized)
}

func TestHealthAndVersion(t *testing.T) {
	s := newTestServer(t)
	if w, resp := s.call("GET", "/healthz", "", ""); w.Code != http.StatusOK || resp["ok"] != true {
		t.Fatalf("healthz: %d %v", w.Code, resp)
	}
	if w, resp := s.call("GET", "/version", "", ""); w.Code != http.StatusOK || resp["commit"] != "test" {
		t.Fatalf("version: %d %v", w.Code, resp)
	}
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}
