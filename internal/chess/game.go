package chess

import (
	"errors"
	"fmt"
)

var (
	// ErrIllegalMove covers wrong turn, wrong color, empty origin and moves
	// rejected by the legality filter.
	ErrIllegalMove = errors.New("illegal move")
	// ErrGameOver is returned by every transition on a finished game.
	ErrGameOver = errors.New("game is over")
	// ErrInvalidBoard is returned when a setup lacks exactly one king per side.
	ErrInvalidBoard = errors.New("board must have exactly one king per color")
)

// State is the phase of the turn state machine.
type State uint8

const (
	TurnWhite State = iota
	TurnBlack
	Over
)

func (s State) String() string {
	switch s {
	case TurnWhite:
		return "TURN_WHITE"
	case TurnBlack:
		return "TURN_BLACK"
	}
	return "OVER"
}

// Reasons a game can end.
const (
	ReasonResignation = "resignation"
	ReasonCheckmate   = "checkmate"
	ReasonStalemate   = "stalemate"
)

// Result describes how a finished game ended. Winner is NoColor for a draw.
type Result struct {
	Winner Color  `json:"winner"`
	Reason string `json:"reason"`
}

// Game owns a board, whose turn it is and whether play has ended.
// It is not safe for concurrent use; callers serialize access per game.
type Game struct {
	board  Board
	turn   Color
	over   bool
	result Result
}

// NewGame starts from the standard position with white to move.
func NewGame() *Game {
	g := &Game{turn: White}
	g.board.Reset()
	return g
}

// NewGameFromBoard starts from an arbitrary setup.
func NewGameFromBoard(b *Board, turn Color) (*Game, error) {
	if err := validateKings(b); err != nil {
		return nil, err
	}
	if turn != White && turn != Black {
		return nil, fmt.Errorf("invalid turn %v", turn)
	}
	return &Game{board: *b, turn: turn}, nil
}

func validateKings(b *Board) error {
	kings := map[Color]int{}
	for _, pc := range b.squares {
		if pc.Type == King {
			kings[pc.Color]++
		}
	}
	if kings[White] != 1 || kings[Black] != 1 {
		return ErrInvalidBoard
	}
	return nil
}

// Board returns a copy of the current board.
func (g *Game) Board() *Board {
	return g.board.Clone()
}

// Turn is the side to move. It keeps its last value once the game is over.
func (g *Game) Turn() Color { return g.turn }

// IsOver reports whether the game has ended.
func (g *Game) IsOver() bool { return g.over }

// Result is meaningful only once IsOver is true.
func (g *Game) Result() Result { return g.result }

// State maps the game onto TURN_WHITE, TURN_BLACK or OVER.
func (g *Game) State() State {
	switch {
	case g.over:
		return Over
	case g.turn == Black:
		return TurnBlack
	}
	return TurnWhite
}

// Clone returns an independent copy of g.
func (g *Game) Clone() *Game {
	c := *g
	return &c
}

// ValidMoves lists the legal moves of the piece on from, regardless of turn.
func (g *Game) ValidMoves(from Position) []Move {
	return LegalMoves(&g.board, from)
}

func (g *Game) InCheck(c Color) bool     { return InCheck(&g.board, c) }
func (g *Game) InCheckmate(c Color) bool { return Checkmate(&g.board, c) }
func (g *Game) InStalemate(c Color) bool { return Stalemate(&g.board, c) }

// ApplyMove plays m for mover. On success the board is updated and the turn flips.
func (g *Game) ApplyMove(mover Color, m Move) error {
	if g.over {
		return ErrGameOver
	}
	if mover != g.turn {
		return fmt.Errorf("%w: not your turn", ErrIllegalMove)
	}
	pc := g.board.Piece(m.Start)
	if pc.Empty() {
		return fmt.Errorf("%w: no piece at %s", ErrIllegalMove, m.Start)
	}
	if pc.Color != mover {
		return fmt.Errorf("%w: piece at %s is not yours", ErrIllegalMove, m.Start)
	}
	if !IsLegal(&g.board, m) {
		return fmt.Errorf("%w: %s", ErrIllegalMove, m)
	}
	g.board.apply(m)
	g.turn = g.turn.Opponent()
	return nil
}

// Resign ends the game with color's opponent as winner.
func (g *Game) Resign(color Color) error {
	if g.over {
		return ErrGameOver
	}
	if color != White && color != Black {
		return fmt.Errorf("invalid color %v", color)
	}
	g.over = true
	g.result = Result{Winner: color.Opponent(), Reason: ReasonResignation}
	return nil
}

// End terminates the game with the given result. Callers decide when a
// position is terminal; End does no inference of its own.
func (g *Game) End(r Result) error {
	if g.over {
		return ErrGameOver
	}
	g.over = true
	g.result = r
	return nil
}

// Terminal inspects the side to move and reports the result the position
// would end with, if it is checkmate or stalemate.
func (g *Game) Terminal() (Result, bool) {
	switch {
	case g.InCheckmate(g.turn):
		return Result{Winner: g.turn.Opponent(), Reason: ReasonCheckmate}, true
	case g.InStalemate(g.turn):
		return Result{Reason: ReasonStalemate}, true
	}
	return Result{}, false
}

// Restore rebuilds a game from stored fields.
func Restore(b *Board, turn Color, over bool, r Result) (*Game, error) {
	g, err := NewGameFromBoard(b, turn)
	if err != nil {
		return nil, err
	}
	g.over = over
	g.result = r
	return g, nil
}
