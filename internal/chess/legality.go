package chess

// InCheck reports whether any pseudo-move of color's opponent lands on color's king.
// A board without a king for color is never in check.
func InCheck(b *Board, color Color) bool {
	king, ok := b.KingPosition(color)
	if !ok {
		return false
	}
	for _, from := range b.Occupied(color.Opponent()) {
		for _, m := range PseudoMoves(b, from) {
			if m.End == king {
				return true
			}
		}
	}
	return false
}

// LegalMoves filters the pseudo-moves from a square down to those that do not
// leave the mover's own king in check. Each candidate is tried on a copy of b;
// b itself is never modified.
func LegalMoves(b *Board, from Position) []Move {
	pc := b.Piece(from)
	if pc.Empty() {
		return nil
	}
	var legal []Move
	for _, m := range PseudoMoves(b, from) {
		sim := *b
		sim.apply(m)
		if !InCheck(&sim, pc.Color) {
			legal = append(legal, m)
		}
	}
	return legal
}

// AllLegalMoves is the union of LegalMoves over every piece of color.
func AllLegalMoves(b *Board, color Color) []Move {
	var all []Move
	for _, from := range b.Occupied(color) {
		all = append(all, LegalMoves(b, from)...)
	}
	return all
}

func hasLegalMove(b *Board, color Color) bool {
	for _, from := range b.Occupied(color) {
		if len(LegalMoves(b, from)) > 0 {
			return true
		}
	}
	return false
}

// Checkmate reports check with no legal reply.
func Checkmate(b *Board, color Color) bool {
	return InCheck(b, color) && !hasLegalMove(b, color)
}

// Stalemate reports no legal move while not in check.
func Stalemate(b *Board, color Color) bool {
	return !InCheck(b, color) && !hasLegalMove(b, color)
}

// IsLegal reports whether m is among the legal moves from its start square.
func IsLegal(b *Board, m Move) bool {
	for _, lm := range LegalMoves(b, m.Start) {
		if lm == m {
			return true
		}
	}
	return false
}
