package chess

import (
	"encoding/json"
	"errors"
	"testing"
)

func playAll(t *testing.T, g *Game, moves ...string) {
	t.Helper()
	for _, s := range moves {
		if err := g.ApplyMove(g.Turn(), MustParseMove(s)); err != nil {
			t.Fatalf("%s: %v", s, err)
		}
	}
}

func TestTurnAlternates(t *testing.T) {
	g := NewGame()
	script := []string{"e2e4", "e7e5", "g1f3", "b8c6", "f1c4", "g8f6", "d2d3"}
	for n, s := range script {
		if err := g.ApplyMove(g.Turn(), MustParseMove(s)); err != nil {
			t.Fatalf("%s: %v", s, err)
		}
		want := White
		if (n+1)%2 == 1 {
			want = Black
		}
		if g.Turn() != want {
			t.Fatalf("after %d moves expected %s to move, got %s", n+1, want, g.Turn())
		}
	}
	if g.State() != TurnBlack {
		t.Fatalf("expected TURN_BLACK, got %s", g.State())
	}
}

func TestApplyMoveRejections(t *testing.T) {
	g := NewGame()
	cases := []struct {
		name  string
		mover Color
		move  string
	}{
		{"out of turn", Black, "e7e5"},
		{"empty origin", White, "e4e5"},
		{"wrong color", White, "e7e5"},
		{"not a legal move", White, "e2e5"},
		{"blocked rook", White, "a1a3"},
	}
	for _, tc := range cases {
		err := g.ApplyMove(tc.mover, MustParseMove(tc.move))
		if !errors.Is(err, ErrIllegalMove) {
			t.Fatalf("%s: expected ErrIllegalMove, got %v", tc.name, err)
		}
	}
	if g.Turn() != White || *g.Board() != *NewBoard() {
		t.Fatalf("rejected moves changed the game")
	}
}

func TestFoolsMate(t *testing.T) {
	g := NewGame()
	playAll(t, g, "f2f3", "e7e5", "g2g4", "d8h4")

	if !g.InCheck(White) {
		t.Fatalf("expected white in check")
	}
	if !g.InCheckmate(White) {
		t.Fatalf("expected white checkmated")
	}
	if g.InStalemate(White) {
		t.Fatalf("checkmate reported as stalemate")
	}
	if !g.InCheckmate(White) {
		t.Fatalf("checkmate detection changed between calls")
	}
	if g.IsOver() {
		t.Fatalf("state machine must not end the game on its own")
	}

	res, ok := g.Terminal()
	if !ok || res.Winner != Black || res.Reason != ReasonCheckmate {
		t.Fatalf("unexpected terminal result %+v %v", res, ok)
	}
	if err := g.End(res); err != nil {
		t.Fatalf("end: %v", err)
	}
	if g.State() != Over {
		t.Fatalf("expected OVER, got %s", g.State())
	}
	if err := g.ApplyMove(White, MustParseMove("a2a3")); !errors.Is(err, ErrGameOver) {
		t.Fatalf("expected ErrGameOver, got %v", err)
	}
	if err := g.Resign(White); !errors.Is(err, ErrGameOver) {
		t.Fatalf("expected ErrGameOver on resign, got %v", err)
	}
	if err := g.End(res); !errors.Is(err, ErrGameOver) {
		t.Fatalf("expected ErrGameOver on second end, got %v", err)
	}
}

func TestResign(t *testing.T) {
	g := NewGame()
	if err := g.Resign(Black); err != nil {
		t.Fatalf("resign: %v", err)
	}
	if !g.IsOver() {
		t.Fatalf("expected game over")
	}
	if r := g.Result(); r.Winner != White || r.Reason != ReasonResignation {
		t.Fatalf("unexpected result %+v", r)
	}
}

func TestPromotionMustBeDeclared(t *testing.T) {
	b := boardWith("a7:WP", "e1:WK", "e8:BK")
	g, err := NewGameFromBoard(b, White)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := g.ApplyMove(White, MustParseMove("a7a8")); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("undeclared promotion should be illegal, got %v", err)
	}
	if err := g.ApplyMove(White, MustParseMove("a7a8n")); err != nil {
		t.Fatalf("promotion: %v", err)
	}
	if pc := g.Board().Piece(pos("a8")); pc != NewPiece(White, Knight) {
		t.Fatalf("expected white knight on a8, got %s", pc)
	}
	if !g.Board().Piece(pos("a7")).Empty() {
		t.Fatalf("origin not cleared")
	}
}

func TestNewGameFromBoardNeedsKings(t *testing.T) {
	if _, err := NewGameFromBoard(&Board{}, White); !errors.Is(err, ErrInvalidBoard) {
		t.Fatalf("expected ErrInvalidBoard, got %v", err)
	}
	b := boardWith("e1:WK", "d1:WK", "e8:BK")
	if _, err := NewGameFromBoard(b, White); !errors.Is(err, ErrInvalidBoard) {
		t.Fatalf("expected ErrInvalidBoard for two white kings, got %v", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g := NewGame()
	c := g.Clone()
	playAll(t, c, "e2e4")
	if g.Turn() != White || !g.Board().Piece(pos("e4")).Empty() {
		t.Fatalf("clone shares state with original")
	}
}

func TestFENRoundTrip(t *testing.T) {
	const start = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1"
	if got := NewGame().FEN(); got != start {
		t.Fatalf("expected %s, got %s", start, got)
	}

	g, err := FromFEN("rnbqkbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	if err != nil {
		t.Fatalf("from fen: %v", err)
	}
	if g.Turn() != White {
		t.Fatalf("expected white to move")
	}
	if pc := g.Board().Piece(pos("h4")); pc != NewPiece(Black, Queen) {
		t.Fatalf("expected black queen on h4, got %s", pc)
	}
	if !g.InCheckmate(White) {
		t.Fatalf("expected checkmate position")
	}

	again, err := FromFEN(g.FEN())
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if *again.Board() != *g.Board() || again.Turn() != g.Turn() {
		t.Fatalf("fen round trip changed the game")
	}
}

func TestGameJSONRoundTrip(t *testing.T) {
	g := NewGame()
	playAll(t, g, "e2e4", "d7d5")
	if err := g.Resign(White); err != nil {
		t.Fatalf("resign: %v", err)
	}
	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Game
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if *got.Board() != *g.Board() || got.Turn() != g.Turn() || !got.IsOver() || got.Result() != g.Result() {
		t.Fatalf("round trip mismatch: %s", data)
	}
}

func TestMoveJSON(t *testing.T) {
	var m Move
	err := json.Unmarshal([]byte(`{"startPosition":{"row":7,"col":1},"endPosition":{"row":8,"col":1},"promotionPiece":"QUEEN"}`), &m)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m != MustParseMove("a7a8q") {
		t.Fatalf("unexpected move %s", m)
	}
	if err := json.Unmarshal([]byte(`{"startPosition":{"row":0,"col":1},"endPosition":{"row":1,"col":1}}`), &m); err == nil {
		t.Fatalf("expected out-of-range row to fail")
	}
	if err := json.Unmarshal([]byte(`{"startPosition":{"row":2,"col":1}}`), &m); err == nil {
		t.Fatalf("expected missing end to fail")
	}
	if err := json.Unmarshal([]byte(`{"startPosition":{"row":7,"col":1},"endPosition":{"row":8,"col":1},"promotionPiece":"KING"}`), &m); err == nil {
		t.Fatalf("expected king promotion to fail")
	}
}
