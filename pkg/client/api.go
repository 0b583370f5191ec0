package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// Game is one entry of the game list.
type Game struct {
	ID            int    `json:"gameID"`
	Name          string `json:"gameName"`
	WhiteUsername string `json:"whiteUsername,omitempty"`
	BlackUsername string `json:"blackUsername,omitempty"`
	GameOver      bool   `json:"gameOver"`
}

// API calls the HTTP endpoints. Token is sent as the Authorization header
// once set by Register or Login.
type API struct {
	BaseURL string
	HTTP    *http.Client
	Token   string
}

func NewAPI(baseURL string) *API {
	return &API{BaseURL: strings.TrimSuffix(baseURL, "/"), HTTP: http.DefaultClient}
}

type session struct {
	Username  string `json:"username"`
	AuthToken string `json:"authToken"`
}

func (a *API) Register(ctx context.Context, username, password, email string) error {
	var s session
	body := map[string]string{"username": username, "password": password, "email": email}
	if err := a.do(ctx, http.MethodPost, "/user", body, &s); err != nil {
		return err
	}
	a.Token = s.AuthToken
	return nil
}

func (a *API) Login(ctx context.Context, username, password string) error {
	var s session
	body := map[string]string{"username": username, "password": password}
	if err := a.do(ctx, http.MethodPost, "/session", body, &s); err != nil {
		return err
	}
	a.Token = s.AuthToken
	return nil
}

func (a *API) Logout(ctx context.Context) error {
	if err := a.do(ctx, http.MethodDelete, "/session", nil, nil); err != nil {
		return err
	}
	a.Token = ""
	return nil
}

func (a *API) ListGames(ctx context.Context) ([]Game, error) {
	var out struct {
		Games []Game `json:"games"`
	}
	err := a.do(ctx, http.MethodGet, "/game", nil, &out)
	return out.Games, err
}

func (a *API) CreateGame(ctx context.Context, name string) (int, error) {
	var out struct {
		ID int `json:"gameID"`
	}
	err := a.do(ctx, http.MethodPost, "/game", map[string]string{"gameName": name}, &out)
	return out.ID, err
}

// JoinGame claims the WHITE or BLACK seat.
func (a *API) JoinGame(ctx context.Context, gameID int, color string) error {
	body := map[string]any{"gameID": gameID, "playerColor": color}
	return a.do(ctx, http.MethodPut, "/game", body, nil)
}

func (a *API) Clear(ctx context.Context) error {
	return a.do(ctx, http.MethodDelete, "/db", nil, nil)
}

func (a *API) do(ctx context.Context, method, path string, in, out any) error {
	var body bytes.Buffer
	if in != nil {
		if err := json.NewEncoder(&body).Encode(in); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, a.BaseURL+path, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if a.Token != "" {
		req.Header.Set("Authorization", a.Token)
	}
	resp, err := a.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var e struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &APIError{Status: resp.StatusCode, Message: e.Message}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
