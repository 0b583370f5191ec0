package chess

import (
	"fmt"

	nchess "github.com/corentings/chess/v2"
)

var (
	fromLibType = map[nchess.PieceType]PieceType{
		nchess.King:   King,
		nchess.Queen:  Queen,
		nchess.Rook:   Rook,
		nchess.Bishop: Bishop,
		nchess.Knight: Knight,
		nchess.Pawn:   Pawn,
	}
	toLibType = map[PieceType]nchess.PieceType{
		King:   nchess.King,
		Queen:  nchess.Queen,
		Rook:   nchess.Rook,
		Bishop: nchess.Bishop,
		Knight: nchess.Knight,
		Pawn:   nchess.Pawn,
	}
)

// FromFEN loads a game from Forsyth-Edwards notation. Only piece placement and
// side to move are used; castling rights and the en passant square are ignored
// because this engine does not play those moves.
func FromFEN(fen string) (*Game, error) {
	opt, err := nchess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse fen: %w", err)
	}
	pos := nchess.NewGame(opt).Position()

	b := &Board{}
	for sq, pc := range pos.Board().SquareMap() {
		t, ok := fromLibType[pc.Type()]
		if !ok {
			continue
		}
		color := White
		if pc.Color() == nchess.Black {
			color = Black
		}
		b.Set(Position{row: int(sq.Rank()) + 1, col: int(sq.File()) + 1}, NewPiece(color, t))
	}

	turn := White
	if pos.Turn() == nchess.Black {
		turn = Black
	}
	return NewGameFromBoard(b, turn)
}

// FEN renders the game. Castling and en passant fields are always "-".
func (g *Game) FEN() string {
	return BoardFEN(&g.board) + " " + turnLetter(g.turn) + " - - 0 1"
}

// BoardFEN renders only the piece placement field.
func BoardFEN(b *Board) string {
	m := make(map[nchess.Square]nchess.Piece)
	for i, pc := range b.squares {
		if pc.Empty() {
			continue
		}
		p := positionAt(i)
		color := nchess.White
		if pc.Color == Black {
			color = nchess.Black
		}
		sq := nchess.NewSquare(nchess.File(p.col-1), nchess.Rank(p.row-1))
		m[sq] = nchess.NewPiece(toLibType[pc.Type], color)
	}
	return nchess.NewBoard(m).String()
}

func turnLetter(c Color) string {
	if c == Black {
		return "b"
	}
	return "w"
}
