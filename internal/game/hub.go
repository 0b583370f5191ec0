package game

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"livechess/internal/chess"
	"livechess/internal/storage"
)

// Authenticator resolves a session token to a username.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

// GameStore loads and saves games.
type GameStore interface {
	GetGame(ctx context.Context, id int) (storage.GameRecord, error)
	SaveGame(ctx context.Context, id int, g *chess.Game) error
	SetRoleSlot(ctx context.Context, id int, color chess.Color, username string) error
}

// Hub runs client commands against stored games and keeps every connected
// client of a game in sync. Commands for one game run one at a time, in the
// order they acquire the game; commands for different games run in parallel.
type Hub struct {
	auth  Authenticator
	store GameStore
	reg   *Registry
	log   *zap.Logger

	mu    sync.Mutex
	rooms map[int]*room

	// closing is set by Close. Transports that drop afterwards are detached
	// without giving up their seats.
	closing   atomic.Bool
	closeOnce sync.Once
}

// NewHub creates a hub.
func NewHub(authn Authenticator, store GameStore, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		auth:  authn,
		store: store,
		reg:   NewRegistry(store),
		log:   log,
		rooms: make(map[int]*room),
	}
}

// Registry exposes the connection registry.
func (h *Hub) Registry() *Registry { return h.reg }

// Submit decodes raw and executes it. Malformed input is answered with an
// ERROR to t without touching any game.
func (h *Hub) Submit(ctx context.Context, t Transport, raw []byte) error {
	cmd, err := DecodeCommand(raw)
	if err != nil {
		if sendErr := t.Send(Error(err)); sendErr != nil {
			h.log.Debug("error reply failed", zap.Error(sendErr))
		}
		return err
	}
	return h.Execute(ctx, t, cmd)
}

// Execute runs cmd for the client on t while holding the game's section.
// Any failure is reported to t only, and returned.
func (h *Hub) Execute(ctx context.Context, t Transport, cmd Command) (err error) {
	if cmd.GameID == nil {
		err = fmt.Errorf("%w: missing gameID", ErrProtocol)
		_ = t.Send(Error(err))
		return err
	}
	gameID := *cmd.GameID
	r := h.acquire(gameID)
	defer h.release(gameID, r)

	op := &operation{hub: h, ctx: ctx, gameID: gameID, requester: t}
	defer op.flush()

	defer func() {
		if p := recover(); p != nil {
			h.log.Error("command panicked",
				zap.Any("panic", p),
				zap.String("command", string(cmd.Type)),
				zap.Int("gameID", gameID),
			)
			err = errInternal
			op.reply(Error(err))
		}
	}()

	err = op.run(cmd)
	if err != nil {
		h.log.Debug("command rejected",
			zap.String("command", string(cmd.Type)),
			zap.Int("gameID", gameID),
			zap.String("identity", op.identity),
			zap.Error(err),
		)
		op.reply(Error(err))
	}
	return err
}

// Disconnect performs an implicit LEAVE for every identity still attached
// through t. Call it once the transport is closed.
func (h *Hub) Disconnect(ctx context.Context, t Transport) {
	for identity, gameID := range h.reg.AttachedThrough(t) {
		h.disconnect(ctx, t, identity, gameID)
	}
}

func (h *Hub) disconnect(ctx context.Context, t Transport, identity string, gameID int) {
	if h.closing.Load() {
		h.reg.DetachTransport(identity, gameID, t)
		return
	}
	r := h.acquire(gameID)
	defer h.release(gameID, r)
	op := &operation{hub: h, ctx: ctx, gameID: gameID, identity: identity}
	defer op.flush()
	op.drop(identity, t)
}

// Close closes every attached transport. Seats held by their identities are
// kept so a restarted server can resume the games.
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		h.closing.Store(true)
		for _, t := range h.reg.Transports() {
			_ = t.Close()
		}
	})
}
