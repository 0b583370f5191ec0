package chess

import "strings"

// Board is an 8x8 grid stored flat, indexed by (row-1)*8 + (col-1).
// It is a plain value: assigning a Board copies it.
type Board struct {
	squares [64]Piece
}

var backRank = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewBoard returns a board in the standard starting position.
func NewBoard() *Board {
	b := &Board{}
	b.Reset()
	return b
}

// Reset puts every piece on its starting square.
func (b *Board) Reset() {
	b.squares = [64]Piece{}
	for col := 1; col <= 8; col++ {
		b.squares[Position{1, col}.index()] = NewPiece(White, backRank[col-1])
		b.squares[Position{2, col}.index()] = NewPiece(White, Pawn)
		b.squares[Position{7, col}.index()] = NewPiece(Black, Pawn)
		b.squares[Position{8, col}.index()] = NewPiece(Black, backRank[col-1])
	}
}

// Clone returns an independent copy.
func (b *Board) Clone() *Board {
	c := *b
	return &c
}

// Piece returns the piece on p, or NoPiece.
func (b *Board) Piece(p Position) Piece {
	if !p.Valid() {
		return NoPiece
	}
	return b.squares[p.index()]
}

// Set places piece on p; NoPiece clears the square.
func (b *Board) Set(p Position, piece Piece) {
	b.squares[p.index()] = piece
}

// Clear empties p.
func (b *Board) Clear(p Position) {
	b.squares[p.index()] = NoPiece
}

// KingPosition locates color's king.
func (b *Board) KingPosition(color Color) (Position, bool) {
	for i, pc := range b.squares {
		if pc.Type == King && pc.Color == color {
			return positionAt(i), true
		}
	}
	return Position{}, false
}

// Occupied lists the squares holding a piece of color, in index order.
func (b *Board) Occupied(color Color) []Position {
	var out []Position
	for i, pc := range b.squares {
		if !pc.Empty() && pc.Color == color {
			out = append(out, positionAt(i))
		}
	}
	return out
}

// apply relocates the moving piece and substitutes the promotion kind if any.
// No legality check is made.
func (b *Board) apply(m Move) {
	pc := b.Piece(m.Start)
	if m.Promotion != NoPieceType && pc.Type == Pawn {
		pc = NewPiece(pc.Color, m.Promotion)
	}
	b.Set(m.End, pc)
	b.Clear(m.Start)
}

// Rows returns the grid as rows 1..8, columns 1..8.
func (b *Board) Rows() [8][8]Piece {
	var rows [8][8]Piece
	for i, pc := range b.squares {
		rows[i/8][i%8] = pc
	}
	return rows
}

var pieceLetters = map[PieceType]byte{King: 'k', Queen: 'q', Rook: 'r', Bishop: 'b', Knight: 'n', Pawn: 'p'}

// String draws the board from black's back rank down, upper case for white.
func (b *Board) String() string {
	var sb strings.Builder
	for row := 8; row >= 1; row-- {
		for col := 1; col <= 8; col++ {
			pc := b.squares[Position{row, col}.index()]
			if pc.Empty() {
				sb.WriteByte('.')
				continue
			}
			ch := pieceLetters[pc.Type]
			if pc.Color == White {
				ch -= 'a' - 'A'
			}
			sb.WriteByte(ch)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
