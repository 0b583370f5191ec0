// Package client talks to a livechess server: the HTTP account and lobby
// endpoints, and the websocket game protocol.
package client

import (
	"context"
	"strings"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"livechess/internal/chess"
	"livechess/internal/game"
)

// Conn is a websocket connection carrying game commands for one user.
type Conn struct {
	ws    *websocket.Conn
	token string
}

// Dial opens the game websocket at serverURL, an http(s) or ws(s) base URL.
func Dial(ctx context.Context, serverURL, token string) (*Conn, error) {
	c, _, err := websocket.Dial(ctx, wsURL(serverURL), nil)
	if err != nil {
		return nil, err
	}
	return &Conn{ws: c, token: token}, nil
}

func wsURL(base string) string {
	base = strings.TrimSuffix(base, "/")
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	if !strings.HasSuffix(base, "/ws") {
		base += "/ws"
	}
	return base
}

// Send writes a raw command.
func (c *Conn) Send(ctx context.Context, cmd game.Command) error {
	return wsjson.Write(ctx, c.ws, cmd)
}

func (c *Conn) command(ctx context.Context, typ game.CommandType, gameID int, m *chess.Move) error {
	return c.Send(ctx, game.Command{Type: typ, AuthToken: c.token, GameID: &gameID, Move: m})
}

func (c *Conn) Connect(ctx context.Context, gameID int) error {
	return c.command(ctx, game.CommandConnect, gameID, nil)
}

func (c *Conn) MakeMove(ctx context.Context, gameID int, m chess.Move) error {
	return c.command(ctx, game.CommandMakeMove, gameID, &m)
}

func (c *Conn) Leave(ctx context.Context, gameID int) error {
	return c.command(ctx, game.CommandLeave, gameID, nil)
}

func (c *Conn) Resign(ctx context.Context, gameID int) error {
	return c.command(ctx, game.CommandResign, gameID, nil)
}

// Next blocks until the server sends a message.
func (c *Conn) Next(ctx context.Context) (game.ServerMessage, error) {
	var msg game.ServerMessage
	err := wsjson.Read(ctx, c.ws, &msg)
	return msg, err
}

// Close ends the connection normally.
func (c *Conn) Close() error {
	return c.ws.Close(websocket.StatusNormalClosure, "")
}
