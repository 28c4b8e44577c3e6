package storage

import (
	"context"

	"github.com/mcoot/rpgroster-go/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// User operations
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)

	// Character operations
	CreateCharacter(ctx context.Context, c *model.Character) error
	GetCharacter(ctx context.Context, id model.CharacterID) (*model.Character, error)
	ListCharacters(ctx context.Context, q model.CharacterQuery) ([]*model.Character, error)
	CountCharacters(ctx context.Context, f model.CharacterFilter) (int, error)
	// UpdateCharacter writes c only if the stored version still equals c.Version,
	// then advances c.Version. A stale version yields model.ErrVersionConflict.
	UpdateCharacter(ctx context.Context, c *model.Character) error
	DeleteCharacter(ctx context.Context, id model.CharacterID) error
	DeleteCharacters(ctx context.Context, ids []model.CharacterID) (int, error)

	Close() error
}

// Leaderboard tracks battle wins and losses per character
type Leaderboard interface {
	RecordBattle(ctx context.Context, winner, loser model.CharacterID) error
	// Top returns up to n records ordered by wins descending
	Top(ctx context.Context, n int) ([]model.BattleRecord, error)
	Remove(ctx context.Context, ids ...model.CharacterID) error
}
