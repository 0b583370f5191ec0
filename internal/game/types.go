package game

import (
	"encoding/json"
	"errors"
	"fmt"

	"livechess/internal/auth"
	"livechess/internal/chess"
)

var (
	// ErrUnauthorized is returned when a command carries no valid token.
	ErrUnauthorized = auth.ErrUnauthorized
	// ErrNotFound is returned for an unknown game id.
	ErrNotFound = errors.New("game not found")
	// ErrForbidden is returned when an observer tries a player action.
	ErrForbidden = errors.New("forbidden")
	// ErrProtocol is returned for a malformed command.
	ErrProtocol = errors.New("bad command")

	errInternal = errors.New("internal server error")
)

// CommandType names a client command.
type CommandType string

const (
	CommandConnect  CommandType = "CONNECT"
	CommandMakeMove CommandType = "MAKE_MOVE"
	CommandLeave    CommandType = "LEAVE"
	CommandResign   CommandType = "RESIGN"
)

// Command is a client message sent over the websocket.
type Command struct {
	Type      CommandType `json:"commandType"`
	AuthToken string      `json:"authToken"`
	GameID    *int        `json:"gameID"`
	Move      *chess.Move `json:"move,omitempty"`
}

// DecodeCommand parses and checks a raw client message.
func DecodeCommand(data []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	switch cmd.Type {
	case CommandConnect, CommandLeave, CommandResign:
	case CommandMakeMove:
		if cmd.Move == nil {
			return Command{}, fmt.Errorf("%w: MAKE_MOVE needs a move", ErrProtocol)
		}
	case "":
		return Command{}, fmt.Errorf("%w: missing commandType", ErrProtocol)
	default:
		return Command{}, fmt.Errorf("%w: unknown commandType %q", ErrProtocol, cmd.Type)
	}
	if cmd.GameID == nil {
		return Command{}, fmt.Errorf("%w: missing gameID", ErrProtocol)
	}
	return cmd, nil
}

// MessageType names a server message.
type MessageType string

const (
	MessageLoadGame     MessageType = "LOAD_GAME"
	MessageNotification MessageType = "NOTIFICATION"
	MessageError        MessageType = "ERROR"
)

// ServerMessage is sent from the server to a client.
type ServerMessage struct {
	Type         MessageType `json:"serverMessageType"`
	Game         *chess.Game `json:"game,omitempty"`
	Message      string      `json:"message,omitempty"`
	ErrorMessage string      `json:"errorMessage,omitempty"`
}

// LoadGame carries a snapshot of g.
func LoadGame(g *chess.Game) ServerMessage {
	return ServerMessage{Type: MessageLoadGame, Game: g.Clone()}
}

func Notification(msg string) ServerMessage {
	return ServerMessage{Type: MessageNotification, Message: msg}
}

func Error(err error) ServerMessage {
	return ServerMessage{Type: MessageError, ErrorMessage: "Error: " + err.Error()}
}

// Role is how an identity takes part in a game.
type Role int

const (
	Observer Role = iota
	WhitePlayer
	BlackPlayer
)

func roleFor(c chess.Color) Role {
	switch c {
	case chess.White:
		return WhitePlayer
	case chess.Black:
		return BlackPlayer
	}
	return Observer
}

// Color is the side a player controls, NoColor for observers.
func (r Role) Color() chess.Color {
	switch r {
	case WhitePlayer:
		return chess.White
	case BlackPlayer:
		return chess.Black
	}
	return chess.NoColor
}

func (r Role) String() string {
	switch r {
	case WhitePlayer:
		return "white"
	case BlackPlayer:
		return "black"
	}
	return "observer"
}

// Transport delivers server messages to one client connection.
// Send must not block.
type Transport interface {
	Send(ServerMessage) error
	Close() error
}
