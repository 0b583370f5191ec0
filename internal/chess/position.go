package chess

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidPosition is returned for coordinates outside the board.
var ErrInvalidPosition = errors.New("row and column must be between 1 and 8")

// Position is a board coordinate. Row 1 is white's back rank, col 1 is the a-file.
type Position struct {
	row, col int
}

// NewPosition validates and builds a coordinate.
func NewPosition(row, col int) (Position, error) {
	if !onBoard(row, col) {
		return Position{}, fmt.Errorf("%w: (%d,%d)", ErrInvalidPosition, row, col)
	}
	return Position{row: row, col: col}, nil
}

// MustPosition is NewPosition for literals known to be valid.
func MustPosition(row, col int) Position {
	p, err := NewPosition(row, col)
	if err != nil {
		panic(err)
	}
	return p
}

// ParsePosition reads algebraic notation such as "e4".
func ParsePosition(s string) (Position, error) {
	if len(s) != 2 {
		return Position{}, fmt.Errorf("%w: %q", ErrInvalidPosition, s)
	}
	return NewPosition(int(s[1]-'0'), int(s[0]-'a')+1)
}

func onBoard(row, col int) bool {
	return row >= 1 && row <= 8 && col >= 1 && col <= 8
}

func (p Position) Row() int { return p.row }
func (p Position) Col() int { return p.col }

// Valid is false for the zero Position.
func (p Position) Valid() bool {
	return onBoard(p.row, p.col)
}

// offset returns the position shifted by (dr, dc), if still on the board.
func (p Position) offset(dr, dc int) (Position, bool) {
	r, c := p.row+dr, p.col+dc
	if !onBoard(r, c) {
		return Position{}, false
	}
	return Position{row: r, col: c}, true
}

func (p Position) index() int {
	return (p.row-1)*8 + (p.col - 1)
}

func positionAt(i int) Position {
	return Position{row: i/8 + 1, col: i%8 + 1}
}

// String renders algebraic notation.
func (p Position) String() string {
	if !p.Valid() {
		return "??"
	}
	return string(rune('a'+p.col-1)) + string(rune('0'+p.row))
}

type positionJSON struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal(positionJSON{Row: p.row, Col: p.col})
}

func (p *Position) UnmarshalJSON(data []byte) error {
	var raw positionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := NewPosition(raw.Row, raw.Col)
	if err != nil {
		return err
	}
	*p = v
	return nil
}
