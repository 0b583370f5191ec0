package game

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"livechess/internal/storage"
)

// Member is an identity attached to a game and the transport it uses.
type Member struct {
	Identity  string
	Transport Transport
}

type attachment struct {
	transport Transport
	gameID    int
}

// Registry tracks which identity is connected to which game and through
// which transport. An identity has one transport and one game at a time.
type Registry struct {
	store GameStore

	mu       sync.RWMutex
	byIdent  map[string]attachment
	byGameID map[int]map[string]struct{}
}

// NewRegistry creates an empty registry resolving roles through store.
func NewRegistry(store GameStore) *Registry {
	return &Registry{
		store:    store,
		byIdent:  make(map[string]attachment),
		byGameID: make(map[int]map[string]struct{}),
	}
}

// Attach binds identity to gameID through t, replacing any earlier binding.
// It returns the game the identity was attached to before, if any.
func (r *Registry) Attach(identity string, gameID int, t Transport) (prev int, moved bool, err error) {
	if identity == "" {
		return 0, false, ErrUnauthorized
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.byIdent[identity]; ok {
		r.removeLocked(identity, old.gameID)
		prev, moved = old.gameID, old.gameID != gameID
	}
	r.byIdent[identity] = attachment{transport: t, gameID: gameID}
	members := r.byGameID[gameID]
	if members == nil {
		members = make(map[string]struct{})
		r.byGameID[gameID] = members
	}
	members[identity] = struct{}{}
	return prev, moved, nil
}

// Detach removes identity if it is attached to gameID.
func (r *Registry) Detach(identity string, gameID int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byIdent[identity]
	if !ok || a.gameID != gameID {
		return false
	}
	delete(r.byIdent, identity)
	r.removeLocked(identity, gameID)
	return true
}

// DetachTransport removes identity only while it is still attached to gameID
// through t, so a stale close cannot evict a newer connection.
func (r *Registry) DetachTransport(identity string, gameID int, t Transport) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byIdent[identity]
	if !ok || a.gameID != gameID || a.transport != t {
		return false
	}
	delete(r.byIdent, identity)
	r.removeLocked(identity, gameID)
	return true
}

func (r *Registry) removeLocked(identity string, gameID int) {
	members := r.byGameID[gameID]
	delete(members, identity)
	if len(members) == 0 {
		delete(r.byGameID, gameID)
	}
}

// MembersOf lists the identities attached to gameID, ordered by identity.
func (r *Registry) MembersOf(gameID int) []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Member, 0, len(r.byGameID[gameID]))
	for id := range r.byGameID[gameID] {
		out = append(out, Member{Identity: id, Transport: r.byIdent[id].transport})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identity < out[j].Identity })
	return out
}

// Lookup returns the game and transport identity is attached through.
func (r *Registry) Lookup(identity string) (gameID int, t Transport, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byIdent[identity]
	return a.gameID, a.transport, ok
}

// AttachedThrough lists the identities currently bound to t with their games.
func (r *Registry) AttachedThrough(t Transport) map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]int)
	for id, a := range r.byIdent {
		if a.transport == t {
			out[id] = a.gameID
		}
	}
	return out
}

// Transports returns every attached transport once.
func (r *Registry) Transports() []Transport {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[Transport]struct{})
	out := make([]Transport, 0, len(r.byIdent))
	for _, a := range r.byIdent {
		if _, ok := seen[a.transport]; ok {
			continue
		}
		seen[a.transport] = struct{}{}
		out = append(out, a.transport)
	}
	return out
}

// RoleOf derives identity's role in gameID from the stored seats.
func (r *Registry) RoleOf(ctx context.Context, identity string, gameID int) (Role, error) {
	rec, err := r.store.GetGame(ctx, gameID)
	if errors.Is(err, storage.ErrNotFound) {
		return Observer, fmt.Errorf("%w: %d", ErrNotFound, gameID)
	}
	if err != nil {
		return Observer, err
	}
	return roleFor(rec.PlayerColor(identity)), nil
}
