package chess

type direction struct{ dr, dc int }

var (
	straightDirs = []direction{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	diagonalDirs = []direction{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	knightJumps  = []direction{{2, 1}, {2, -1}, {-2, 1}, {-2, -1}, {1, 2}, {1, -2}, {-1, 2}, {-1, -2}}
	kingSteps    = []direction{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// PseudoMoves enumerates the moves the piece on from could make by its movement
// pattern alone. Whether the mover's king is left in check is not considered.
// An empty square yields no moves.
func PseudoMoves(b *Board, from Position) []Move {
	pc := b.Piece(from)
	switch pc.Type {
	case Pawn:
		return pawnMoves(b, from, pc.Color)
	case Rook:
		return slide(b, from, pc.Color, straightDirs)
	case Bishop:
		return slide(b, from, pc.Color, diagonalDirs)
	case Queen:
		return append(slide(b, from, pc.Color, straightDirs), slide(b, from, pc.Color, diagonalDirs)...)
	case Knight:
		return step(b, from, pc.Color, knightJumps)
	case King:
		return step(b, from, pc.Color, kingSteps)
	}
	return nil
}

func pawnMoves(b *Board, from Position, color Color) []Move {
	dir, startRow, lastRow := 1, 2, 8
	if color == Black {
		dir, startRow, lastRow = -1, 7, 1
	}

	var moves []Move
	add := func(to Position) {
		if to.Row() == lastRow {
			for _, t := range PromotionTypes {
				moves = append(moves, Move{Start: from, End: to, Promotion: t})
			}
			return
		}
		moves = append(moves, NewMove(from, to))
	}

	if one, ok := from.offset(dir, 0); ok && b.Piece(one).Empty() {
		add(one)
		if from.Row() == startRow {
			if two, ok := from.offset(2*dir, 0); ok && b.Piece(two).Empty() {
				add(two)
			}
		}
	}
	for _, dc := range []int{-1, 1} {
		to, ok := from.offset(dir, dc)
		if !ok {
			continue
		}
		if target := b.Piece(to); !target.Empty() && target.Color != color {
			add(to)
		}
	}
	return moves
}

func slide(b *Board, from Position, color Color, dirs []direction) []Move {
	var moves []Move
	for _, d := range dirs {
		to := from
		for {
			var ok bool
			to, ok = to.offset(d.dr, d.dc)
			if !ok {
				break
			}
			target := b.Piece(to)
			if target.Empty() {
				moves = append(moves, NewMove(from, to))
				continue
			}
			if target.Color != color {
				moves = append(moves, NewMove(from, to))
			}
			break
		}
	}
	return moves
}

func step(b *Board, from Position, color Color, offsets []direction) []Move {
	var moves []Move
	for _, d := range offsets {
		to, ok := from.offset(d.dr, d.dc)
		if !ok {
			continue
		}
		if target := b.Piece(to); target.Empty() || target.Color != color {
			moves = append(moves, NewMove(from, to))
		}
	}
	return moves
}
