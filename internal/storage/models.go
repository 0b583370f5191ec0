package storage

import (
	"time"

	"livechess/internal/chess"
)

// User is a registered account.
type User struct {
	Username     string `gorm:"primaryKey"`
	PasswordHash string
	Email        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Game represents a stored chess game. The board and side to move live in FEN.
type Game struct {
	ID            int `gorm:"primaryKey;autoIncrement"`
	Name          string
	WhiteUsername *string `gorm:"index"`
	BlackUsername *string `gorm:"index"`
	FEN           string
	GameOver      bool `gorm:"index"`
	Winner        string
	Reason        string
	CompletedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// GameRecord is a game together with the usernames holding each seat.
// An empty username means the seat is vacant.
type GameRecord struct {
	ID            int         `json:"gameID"`
	Name          string      `json:"gameName"`
	WhiteUsername string      `json:"whiteUsername,omitempty"`
	BlackUsername string      `json:"blackUsername,omitempty"`
	Game          *chess.Game `json:"-"`
}

// PlayerColor returns the seat username holds, or NoColor for an observer.
func (r GameRecord) PlayerColor(username string) chess.Color {
	switch {
	case username == "":
		return chess.NoColor
	case username == r.WhiteUsername:
		return chess.White
	case username == r.BlackUsername:
		return chess.Black
	}
	return chess.NoColor
}

// Seat returns the username in color's seat.
func (r GameRecord) Seat(color chess.Color) string {
	if color == chess.Black {
		return r.BlackUsername
	}
	return r.WhiteUsername
}

func (m *Game) record() (GameRecord, error) {
	g, err := chess.FromFEN(m.FEN)
	if err != nil {
		return GameRecord{}, err
	}
	var winner chess.Color
	if m.Winner != "" {
		if winner, err = chess.ParseColor(m.Winner); err != nil {
			return GameRecord{}, err
		}
	}
	g, err = chess.Restore(g.Board(), g.Turn(), m.GameOver, chess.Result{Winner: winner, Reason: m.Reason})
	if err != nil {
		return GameRecord{}, err
	}
	return GameRecord{
		ID:            m.ID,
		Name:          m.Name,
		WhiteUsername: deref(m.WhiteUsername),
		BlackUsername: deref(m.BlackUsername),
		Game:          g,
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func seatColumn(color chess.Color) (string, error) {
	switch color {
	case chess.White:
		return "white_username", nil
	case chess.Black:
		return "black_username", nil
	}
	return "", ErrBadColor
}
