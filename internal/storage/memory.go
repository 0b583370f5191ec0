package storage

import (
	"context"
	"sort"
	"sync"

	"livechess/internal/chess"
)

// Memory is an in-process store with the same behaviour as Store. It backs
// the server when no database is configured, and the tests.
type Memory struct {
	mu     sync.Mutex
	users  map[string]User
	games  map[int]*GameRecord
	nextID int
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:  make(map[string]User),
		games:  make(map[int]*GameRecord),
		nextID: 1,
	}
}

func (m *Memory) CreateUser(_ context.Context, username, passwordHash, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[username]; ok {
		return ErrUsernameTaken
	}
	m.users[username] = User{Username: username, PasswordHash: passwordHash, Email: email}
	return nil
}

func (m *Memory) GetUser(_ context.Context, username string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (m *Memory) CreateGame(_ context.Context, name string, g *chess.Game) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.games[id] = &GameRecord{ID: id, Name: name, Game: g.Clone()}
	return id, nil
}

func (m *Memory) GetGame(_ context.Context, id int) (GameRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.games[id]
	if !ok {
		return GameRecord{}, ErrNotFound
	}
	return copyRecord(rec), nil
}

func (m *Memory) ListGames(_ context.Context) ([]GameRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]GameRecord, 0, len(m.games))
	for _, rec := range m.games {
		out = append(out, copyRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) SaveGame(_ context.Context, id int, g *chess.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.games[id]
	if !ok {
		return ErrNotFound
	}
	rec.Game = g.Clone()
	return nil
}

func (m *Memory) SetRoleSlot(_ context.Context, id int, color chess.Color, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.games[id]
	if !ok {
		return ErrNotFound
	}
	return setSeat(rec, color, username)
}

func (m *Memory) JoinGame(_ context.Context, id int, color chess.Color, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.games[id]
	if !ok {
		return ErrNotFound
	}
	if color != chess.White && color != chess.Black {
		return ErrBadColor
	}
	if cur := rec.Seat(color); cur != "" && cur != username {
		return ErrAlreadyTaken
	}
	return setSeat(rec, color, username)
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = make(map[string]User)
	m.games = make(map[int]*GameRecord)
	return nil
}

func setSeat(rec *GameRecord, color chess.Color, username string) error {
	switch color {
	case chess.White:
		rec.WhiteUsername = username
	case chess.Black:
		rec.BlackUsername = username
	default:
		return ErrBadColor
	}
	return nil
}

func copyRecord(rec *GameRecord) GameRecord {
	out := *rec
	out.Game = rec.Game.Clone()
	return out
}
