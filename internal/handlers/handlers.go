package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"livechess/internal/chess"
	"livechess/internal/storage"
	"livechess/internal/ws"
)

// Accounts is the account and session service.
type Accounts interface {
	Register(ctx context.Context, username, password, email string) (string, error)
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (string, error)
	Clear(ctx context.Context) error
}

// Games is the game store as seen by the HTTP surface.
type Games interface {
	CreateGame(ctx context.Context, name string, g *chess.Game) (int, error)
	ListGames(ctx context.Context) ([]storage.GameRecord, error)
	JoinGame(ctx context.Context, id int, color chess.Color, username string) error
	Clear(ctx context.Context) error
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	Accounts Accounts
	Games    Games
	Hub      ws.Handler
	Log      *zap.Logger
	Origins  []string
	Version  any
}

// NewHandler creates a new handler instance
func NewHandler(accounts Accounts, games Games, hub ws.Handler, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Accounts: accounts, Games: games, Hub: hub, Log: log}
}

// Routes registers every endpoint on a new mux wrapped in the middleware.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /user", h.HandleRegister)
	mux.HandleFunc("POST /session", h.HandleLogin)
	mux.HandleFunc("DELETE /session", h.HandleLogout)
	mux.HandleFunc("GET /game", h.HandleListGames)
	mux.HandleFunc("POST /game", h.HandleCreateGame)
	mux.HandleFunc("PUT /game", h.HandleJoinGame)
	mux.HandleFunc("DELETE /db", h.HandleClear)
	mux.HandleFunc("GET /ws", h.HandleWS)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	mux.HandleFunc("GET /version", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, h.Version)
	})
	return h.logRequests(cors(h.Origins, mux))
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type sessionResponse struct {
	Username  string `json:"username"`
	AuthToken string `json:"authToken"`
}

// HandleRegister creates an account and returns a session token.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	token, err := h.Accounts.Register(r.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		h.writeError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, sessionResponse{Username: req.Username, AuthToken: token})
}

// HandleLogin returns a session token for valid credentials.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	token, err := h.Accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, sessionResponse{Username: req.Username, AuthToken: token})
}

// HandleLogout revokes the caller's token.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.Accounts.Logout(r.Context(), r.Header.Get("Authorization")); err != nil {
		h.writeError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, struct{}{})
}

type gameSummary struct {
	ID            int    `json:"gameID"`
	Name          string `json:"gameName"`
	WhiteUsername string `json:"whiteUsername,omitempty"`
	BlackUsername string `json:"blackUsername,omitempty"`
	GameOver      bool   `json:"gameOver"`
}

// HandleListGames lists every game.
func (h *Handler) HandleListGames(w http.ResponseWriter, r *http.Request) {
	if _, err := h.authenticate(r); err != nil {
		h.writeError(w, err)
		return
	}
	recs, err := h.Games.ListGames(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	games := make([]gameSummary, 0, len(recs))
	for _, rec := range recs {
		games = append(games, gameSummary{
			ID:            rec.ID,
			Name:          rec.Name,
			WhiteUsername: rec.WhiteUsername,
			BlackUsername: rec.BlackUsername,
			GameOver:      rec.Game.IsOver(),
		})
	}
	WriteJSON(w, http.StatusOK, map[string]any{"games": games})
}

// HandleCreateGame creates a game in the starting position.
func (h *Handler) HandleCreateGame(w http.ResponseWriter, r *http.Request) {
	if _, err := h.authenticate(r); err != nil {
		h.writeError(w, err)
		return
	}
	var req struct {
		Name string `json:"gameName"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if req.Name == "" {
		h.writeError(w, fmt.Errorf("%w: gameName is required", errBadRequest))
		return
	}
	id, err := h.Games.CreateGame(r.Context(), req.Name, chess.NewGame())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.Log.Info("game created", zap.Int("gameID", id), zap.String("name", req.Name))
	WriteJSON(w, http.StatusOK, map[string]int{"gameID": id})
}

// HandleJoinGame claims a seat in a game for the caller.
func (h *Handler) HandleJoinGame(w http.ResponseWriter, r *http.Request) {
	username, err := h.authenticate(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req struct {
		PlayerColor string `json:"playerColor"`
		GameID      *int   `json:"gameID"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if req.GameID == nil {
		h.writeError(w, fmt.Errorf("%w: gameID is required", errBadRequest))
		return
	}
	color, err := chess.ParseColor(req.PlayerColor)
	if err != nil {
		h.writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if err := h.Games.JoinGame(r.Context(), *req.GameID, color, username); err != nil {
		h.writeError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, struct{}{})
}

// HandleClear deletes all users, games and sessions.
func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.Games.Clear(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.Accounts.Clear(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	h.Log.Info("database cleared", zap.String("ip", ClientIP(r)))
	WriteJSON(w, http.StatusOK, struct{}{})
}

// HandleWS upgrades to a websocket and hands the connection to the hub.
func (h *Handler) HandleWS(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin != "" && !originAllowed(h.Origins, origin) {
		http.Error(w, "forbidden origin", http.StatusForbidden)
		return
	}
	c, err := ws.Accept(w, r, h.Log)
	if err != nil {
		h.Log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	c.Serve(r.Context(), h.Hub)
}

func (h *Handler) authenticate(r *http.Request) (string, error) {
	return h.Accounts.Authenticate(r.Context(), r.Header.Get("Authorization"))
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: bad json", errBadRequest)
	}
	return nil
}

var errBadRequest = errors.New("bad request")
