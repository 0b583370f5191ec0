package chess

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Move is a from/to pair with an optional promotion kind. Moves are comparable with ==.
type Move struct {
	Start     Position  `json:"startPosition"`
	End       Position  `json:"endPosition"`
	Promotion PieceType `json:"promotionPiece,omitempty"`
}

// NewMove builds a non-promoting move.
func NewMove(start, end Position) Move {
	return Move{Start: start, End: end}
}

// ParseMove reads coordinate notation: "e2e4", "e7e8q".
func ParseMove(s string) (Move, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 4 && len(s) != 5 {
		return Move{}, fmt.Errorf("bad move %q", s)
	}
	start, err := ParsePosition(s[0:2])
	if err != nil {
		return Move{}, err
	}
	end, err := ParsePosition(s[2:4])
	if err != nil {
		return Move{}, err
	}
	m := Move{Start: start, End: end}
	if len(s) == 5 {
		switch s[4] {
		case 'q':
			m.Promotion = Queen
		case 'r':
			m.Promotion = Rook
		case 'b':
			m.Promotion = Bishop
		case 'n':
			m.Promotion = Knight
		default:
			return Move{}, fmt.Errorf("bad promotion in %q", s)
		}
	}
	return m, nil
}

// MustParseMove panics on malformed input; for tests and fixed scripts.
func MustParseMove(s string) Move {
	m, err := ParseMove(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Move) String() string {
	s := m.Start.String() + m.End.String()
	switch m.Promotion {
	case Queen:
		s += "q"
	case Rook:
		s += "r"
	case Bishop:
		s += "b"
	case Knight:
		s += "n"
	}
	return s
}

func (m *Move) UnmarshalJSON(data []byte) error {
	var raw struct {
		Start     *Position `json:"startPosition"`
		End       *Position `json:"endPosition"`
		Promotion PieceType `json:"promotionPiece"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Start == nil || raw.End == nil {
		return errors.New("move needs startPosition and endPosition")
	}
	if raw.Promotion == King || raw.Promotion == Pawn {
		return fmt.Errorf("cannot promote to %s", raw.Promotion)
	}
	*m = Move{Start: *raw.Start, End: *raw.End, Promotion: raw.Promotion}
	return nil
}
