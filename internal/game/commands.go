package game

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"livechess/internal/chess"
	"livechess/internal/storage"
)

// operation is one command, or one implicit leave, running inside a game's
// section. Sends that fail are collected and turned into leaves by flush
// before the section is released.
type operation struct {
	hub       *Hub
	ctx       context.Context
	gameID    int
	requester Transport
	identity  string
	failed    []Member
}

func (op *operation) run(cmd Command) error {
	identity, err := op.hub.auth.Authenticate(op.ctx, cmd.AuthToken)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return err
		}
		return fmt.Errorf("authenticate: %w", err)
	}
	if identity == "" {
		return ErrUnauthorized
	}
	op.identity = identity

	switch cmd.Type {
	case CommandConnect:
		return op.connect()
	case CommandMakeMove:
		if cmd.Move == nil {
			return fmt.Errorf("%w: MAKE_MOVE needs a move", ErrProtocol)
		}
		return op.makeMove(*cmd.Move)
	case CommandLeave:
		return op.leave()
	case CommandResign:
		return op.resign()
	}
	return fmt.Errorf("%w: unknown commandType %q", ErrProtocol, cmd.Type)
}

func (op *operation) load() (storage.GameRecord, error) {
	rec, err := op.hub.store.GetGame(op.ctx, op.gameID)
	if errors.Is(err, storage.ErrNotFound) {
		return rec, fmt.Errorf("%w: %d", ErrNotFound, op.gameID)
	}
	return rec, err
}

func (op *operation) connect() error {
	rec, err := op.load()
	if err != nil {
		return err
	}
	prev, moved, err := op.hub.reg.Attach(op.identity, op.gameID, op.requester)
	if err != nil {
		return err
	}
	if moved {
		op.hub.log.Debug("moved to another game",
			zap.String("identity", op.identity),
			zap.Int("from", prev),
			zap.Int("to", op.gameID),
		)
	}
	role := roleFor(rec.PlayerColor(op.identity))
	op.reply(LoadGame(rec.Game))
	op.broadcast(Notification(fmt.Sprintf("%s connected as %s", op.identity, role)), op.identity)
	return nil
}

func (op *operation) makeMove(m chess.Move) error {
	rec, err := op.load()
	if err != nil {
		return err
	}
	color := rec.PlayerColor(op.identity)
	if color == chess.NoColor {
		return fmt.Errorf("%w: observers can't make moves", ErrForbidden)
	}
	g := rec.Game
	if err := g.ApplyMove(color, m); err != nil {
		return err
	}

	// Termination is the hub's call, the state machine only reports it.
	opponent := color.Opponent()
	result, ended := g.Terminal()
	if ended {
		if err := g.End(result); err != nil {
			return err
		}
	}
	if err := op.hub.store.SaveGame(op.ctx, op.gameID, g); err != nil {
		return fmt.Errorf("save game: %w", err)
	}

	op.toAll(LoadGame(g))
	op.broadcast(Notification(fmt.Sprintf("%s moved %s", op.identity, describeMove(m))), op.identity)

	name := seatName(rec, opponent)
	switch {
	case ended && result.Reason == chess.ReasonCheckmate:
		op.toAll(Notification(fmt.Sprintf("%s is in checkmate. %s wins.", name, seatName(rec, result.Winner))))
	case ended:
		op.toAll(Notification(fmt.Sprintf("%s is in stalemate. The game is a draw.", name)))
	case g.InCheck(opponent):
		op.toAll(Notification(fmt.Sprintf("%s is in check.", name)))
	}
	return nil
}

func (op *operation) leave() error {
	role, err := op.roleOf(op.identity)
	if err != nil {
		return err
	}
	op.hub.reg.Detach(op.identity, op.gameID)
	return op.departed(op.identity, role)
}

// roleOf resolves identity's seat. A game that no longer exists leaves
// everyone an observer.
func (op *operation) roleOf(identity string) (Role, error) {
	role, err := op.hub.reg.RoleOf(op.ctx, identity, op.gameID)
	if errors.Is(err, ErrNotFound) {
		return Observer, nil
	}
	return role, err
}

// departed vacates the seat of a player who left and tells whoever is still
// attached. The others are told even if the seat could not be vacated.
func (op *operation) departed(identity string, role Role) error {
	var err error
	if color := role.Color(); color != chess.NoColor {
		if err = op.hub.store.SetRoleSlot(op.ctx, op.gameID, color, ""); err != nil {
			err = fmt.Errorf("vacate seat: %w", err)
		}
	}
	op.broadcast(Notification(identity+" left the game."), identity)
	return err
}

// drop is the implicit LEAVE of identity when transport t goes away. It is a
// no-op if identity has since reattached through another transport.
func (op *operation) drop(identity string, t Transport) {
	role, roleErr := op.roleOf(identity)
	if !op.hub.reg.DetachTransport(identity, op.gameID, t) {
		return
	}
	if roleErr != nil {
		op.hub.log.Warn("role lookup failed",
			zap.String("identity", identity),
			zap.Int("gameID", op.gameID),
			zap.Error(roleErr),
		)
	}
	if err := op.departed(identity, role); err != nil {
		op.hub.log.Warn("implicit leave failed",
			zap.String("identity", identity),
			zap.Int("gameID", op.gameID),
			zap.Error(err),
		)
	}
}

func (op *operation) resign() error {
	rec, err := op.load()
	if err != nil {
		return err
	}
	color := rec.PlayerColor(op.identity)
	if color == chess.NoColor {
		return fmt.Errorf("%w: observers can't resign", ErrForbidden)
	}
	if err := rec.Game.Resign(color); err != nil {
		return err
	}
	if err := op.hub.store.SaveGame(op.ctx, op.gameID, rec.Game); err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	op.toAll(Notification(fmt.Sprintf("%s resigned. %s wins.", op.identity, seatName(rec, color.Opponent()))))
	op.toAll(LoadGame(rec.Game))
	return nil
}

func (op *operation) reply(msg ServerMessage) {
	if op.requester == nil {
		return
	}
	op.deliver(Member{Identity: op.identity, Transport: op.requester}, msg)
}

// broadcast sends msg to every member except the one named by except.
func (op *operation) broadcast(msg ServerMessage, except string) {
	for _, m := range op.hub.reg.MembersOf(op.gameID) {
		if m.Identity == except {
			continue
		}
		op.deliver(m, msg)
	}
}

// toAll sends msg to every member, and to the requester even when it is
// not attached to this game.
func (op *operation) toAll(msg ServerMessage) {
	reached := false
	for _, m := range op.hub.reg.MembersOf(op.gameID) {
		if m.Transport == op.requester {
			reached = true
		}
		op.deliver(m, msg)
	}
	if !reached {
		op.reply(msg)
	}
}

func (op *operation) deliver(m Member, msg ServerMessage) {
	if err := m.Transport.Send(msg); err != nil {
		op.hub.log.Warn("send failed",
			zap.String("identity", m.Identity),
			zap.Int("gameID", op.gameID),
			zap.Error(err),
		)
		op.failed = append(op.failed, m)
	}
}

// flush treats every failed send as a LEAVE of that identity. Leaves can
// fail further sends, so it runs until nothing new has failed.
func (op *operation) flush() {
	for len(op.failed) > 0 {
		m := op.failed[0]
		op.failed = op.failed[1:]
		_ = m.Transport.Close()
		switch {
		case m.Identity == "":
		case op.hub.closing.Load():
			op.hub.reg.DetachTransport(m.Identity, op.gameID, m.Transport)
		default:
			op.drop(m.Identity, m.Transport)
		}
	}
}

func describeMove(m chess.Move) string {
	s := fmt.Sprintf("%s to %s", m.Start, m.End)
	if m.Promotion != chess.NoPieceType {
		s += fmt.Sprintf(" (promoted to %s)", m.Promotion)
	}
	return s
}

func seatName(rec storage.GameRecord, color chess.Color) string {
	if name := rec.Seat(color); name != "" {
		return name
	}
	return color.String()
}
