package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"livechess/internal/chess"
)

// ErrNotFound is returned when a record is not found.
var ErrNotFound = gorm.ErrRecordNotFound

var (
	// ErrAlreadyTaken is returned when joining a seat someone else holds.
	ErrAlreadyTaken = errors.New("already taken")
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrBadColor is returned for a seat color other than white or black.
	ErrBadColor = errors.New("color must be WHITE or BLACK")
)

// Store wraps a gorm DB instance and provides helper methods for persisting users and games.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new store helper from a gorm DB.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying gorm DB instance.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// CreateUser inserts a user, failing with ErrUsernameTaken on a duplicate.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash, email string) error {
	user := User{Username: username, PasswordHash: passwordHash, Email: email}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&user)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUsernameTaken
	}
	return nil
}

// GetUser fetches a user by name.
func (s *Store) GetUser(ctx context.Context, username string) (User, error) {
	var user User
	err := s.db.WithContext(ctx).First(&user, "username = ?", username).Error
	return user, err
}

// CreateGame inserts a new game and returns its id.
func (s *Store) CreateGame(ctx context.Context, name string, g *chess.Game) (int, error) {
	game := Game{Name: name, FEN: g.FEN()}
	if err := s.db.WithContext(ctx).Create(&game).Error; err != nil {
		return 0, err
	}
	return game.ID, nil
}

// GetGame loads a game and its seats.
func (s *Store) GetGame(ctx context.Context, id int) (GameRecord, error) {
	var game Game
	if err := s.db.WithContext(ctx).First(&game, "id = ?", id).Error; err != nil {
		return GameRecord{}, err
	}
	return game.record()
}

// ListGames returns every stored game ordered by id.
func (s *Store) ListGames(ctx context.Context) ([]GameRecord, error) {
	var games []Game
	if err := s.db.WithContext(ctx).Order("id").Find(&games).Error; err != nil {
		return nil, err
	}
	out := make([]GameRecord, 0, len(games))
	for i := range games {
		rec, err := games[i].record()
		if err != nil {
			return nil, fmt.Errorf("game %d: %w", games[i].ID, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// SaveGame writes the board, turn and result of g.
func (s *Store) SaveGame(ctx context.Context, id int, g *chess.Game) error {
	updates := map[string]any{
		"fen":       g.FEN(),
		"game_over": g.IsOver(),
	}
	if g.IsOver() {
		res := g.Result()
		updates["winner"] = res.Winner.String()
		updates["reason"] = res.Reason
		updates["completed_at"] = time.Now()
	}
	res := s.db.WithContext(ctx).Model(&Game{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetRoleSlot puts username into color's seat; an empty username vacates it.
func (s *Store) SetRoleSlot(ctx context.Context, id int, color chess.Color, username string) error {
	col, err := seatColumn(color)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(&Game{}).Where("id = ?", id).Update(col, nullable(username))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// JoinGame claims color's seat for username if it is vacant or already theirs.
func (s *Store) JoinGame(ctx context.Context, id int, color chess.Color, username string) error {
	col, err := seatColumn(color)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).
		Model(&Game{}).
		Where("id = ? AND ("+col+" IS NULL OR "+col+" = ?)", id, username).
		Update(col, username)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	if _, err := s.GetGame(ctx, id); err != nil {
		return err
	}
	return ErrAlreadyTaken
}

// Clear deletes every user and game.
func (s *Store) Clear(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&Game{}).Error; err != nil {
			return err
		}
		return tx.Where("1 = 1").Delete(&User{}).Error
	})
}
