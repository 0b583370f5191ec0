package chess

import (
	"encoding/json"
	"fmt"
)

// gameJSON is the wire form of a Game carried by LOAD_GAME messages.
// board[0] is row 1 (white's back rank); a null entry is an empty square.
type gameJSON struct {
	Board    [8][8]*Piece `json:"board"`
	TeamTurn Color        `json:"teamTurn"`
	GameOver bool         `json:"gameOver"`
	FEN      string       `json:"fen"`
	Result   *Result      `json:"result,omitempty"`
}

func (g *Game) MarshalJSON() ([]byte, error) {
	out := gameJSON{
		TeamTurn: g.turn,
		GameOver: g.over,
		FEN:      g.FEN(),
	}
	for r, row := range g.board.Rows() {
		for c, pc := range row {
			if pc.Empty() {
				continue
			}
			pc := pc
			out.Board[r][c] = &pc
		}
	}
	if g.over {
		res := g.result
		out.Result = &res
	}
	return json.Marshal(out)
}

func (g *Game) UnmarshalJSON(data []byte) error {
	var in gameJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	b := &Board{}
	for r, row := range in.Board {
		for c, pc := range row {
			if pc == nil {
				continue
			}
			if pc.Type == NoPieceType || pc.Color == NoColor {
				return fmt.Errorf("incomplete piece at row %d col %d", r+1, c+1)
			}
			b.Set(Position{row: r + 1, col: c + 1}, *pc)
		}
	}
	var res Result
	if in.Result != nil {
		res = *in.Result
	}
	restored, err := Restore(b, in.TeamTurn, in.GameOver, res)
	if err != nil {
		return err
	}
	*g = *restored
	return nil
}
