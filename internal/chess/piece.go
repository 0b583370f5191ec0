package chess

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Color is the side a piece belongs to.
type Color uint8

const (
	NoColor Color = iota
	White
	Black
)

// Opponent returns the other side.
func (c Color) Opponent() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	}
	return NoColor
}

func (c Color) String() string {
	switch c {
	case White:
		return "WHITE"
	case Black:
		return "BLACK"
	}
	return ""
}

// ParseColor accepts WHITE/BLACK in any case.
func ParseColor(s string) (Color, error) {
	switch strings.ToUpper(s) {
	case "WHITE", "W":
		return White, nil
	case "BLACK", "B":
		return Black, nil
	}
	return NoColor, fmt.Errorf("unknown color %q", s)
}

func (c Color) MarshalJSON() ([]byte, error) {
	if c == NoColor {
		return []byte("null"), nil
	}
	return json.Marshal(c.String())
}

func (c *Color) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = NoColor
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// PieceType is the kind of a piece. The zero value means no piece.
type PieceType uint8

const (
	NoPieceType PieceType = iota
	King
	Queen
	Rook
	Bishop
	Knight
	Pawn
)

// PromotionTypes are the kinds a pawn may promote to, in emission order.
var PromotionTypes = [...]PieceType{Queen, Rook, Bishop, Knight}

var pieceTypeNames = map[PieceType]string{
	King:   "KING",
	Queen:  "QUEEN",
	Rook:   "ROOK",
	Bishop: "BISHOP",
	Knight: "KNIGHT",
	Pawn:   "PAWN",
}

func (t PieceType) String() string {
	return pieceTypeNames[t]
}

// ParsePieceType parses the upper-case wire name of a piece kind.
func ParsePieceType(s string) (PieceType, error) {
	for t, name := range pieceTypeNames {
		if name == s {
			return t, nil
		}
	}
	return NoPieceType, fmt.Errorf("unknown piece type %q", s)
}

func (t PieceType) MarshalJSON() ([]byte, error) {
	if t == NoPieceType {
		return []byte("null"), nil
	}
	return json.Marshal(t.String())
}

func (t *PieceType) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = NoPieceType
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParsePieceType(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Piece is an immutable (color, kind) pair. The zero Piece is an empty square.
type Piece struct {
	Color Color     `json:"teamColor"`
	Type  PieceType `json:"pieceType"`
}

// NoPiece marks an empty square.
var NoPiece = Piece{}

// NewPiece builds a piece value.
func NewPiece(c Color, t PieceType) Piece {
	return Piece{Color: c, Type: t}
}

// Empty reports whether p is the empty-square marker.
func (p Piece) Empty() bool {
	return p.Type == NoPieceType
}

func (p Piece) String() string {
	if p.Empty() {
		return "-"
	}
	return p.Color.String() + " " + p.Type.String()
}
