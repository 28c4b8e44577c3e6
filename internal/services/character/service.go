package character

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/mcoot/rpgroster-go/internal/dependencies/clock"
	"github.com/mcoot/rpgroster-go/internal/dependencies/ids"
	"github.com/mcoot/rpgroster-go/internal/metrics"
	"github.com/mcoot/rpgroster-go/internal/model"
	"github.com/mcoot/rpgroster-go/internal/services/progression"
	"github.com/mcoot/rpgroster-go/internal/storage"
)

const (
	// maxConflictRetries is how many times a read-modify-write is redone after losing a race
	maxConflictRetries = 3

	// DefaultLeaderboardSize is used when no limit is requested
	DefaultLeaderboardSize = 10
)

// CreateInput describes a new character. Nil fields take their defaults.
type CreateInput struct {
	Name       string
	Class      model.Class
	Level      *int
	Experience *int
	Rarity     *model.Rarity
	Stats      *model.Stats
	Skills     []string
	IsActive   *bool
	UserID     *model.UserID
}

// Service manages characters and applies the progression rules to them
type Service struct {
	storage     storage.Storage
	leaderboard storage.Leaderboard
	clock       clock.Clock
	ids         ids.Generator
	logger      *slog.Logger
}

// New creates a new CharacterService
func New(
	storage storage.Storage,
	leaderboard storage.Leaderboard,
	clock clock.Clock,
	ids ids.Generator,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage:     storage,
		leaderboard: leaderboard,
		clock:       clock,
		ids:         ids,
		logger:      logger,
	}
}

// Create stores a new character. Stats default to the class defaults and the owner
// defaults to the authenticated user.
func (s *Service) Create(ctx context.Context, in CreateInput, owner model.UserID) (*model.Character, error) {
	now := s.clock.Now()
	c := &model.Character{
		ID:        s.ids.NewCharacterID(),
		Name:      strings.TrimSpace(in.Name),
		Class:     in.Class,
		Level:     model.DefaultLevel,
		Rarity:    model.DefaultRarity,
		Skills:    slices.Clone(in.Skills),
		IsActive:  true,
		UserID:    owner,
		Version:   model.InitialVersion,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if c.Skills == nil {
		c.Skills = []string{}
	}
	if in.Level != nil {
		c.Level = *in.Level
	}
	if in.Experience != nil {
		c.Experience = *in.Experience
	}
	if in.Rarity != nil {
		c.Rarity = *in.Rarity
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if in.UserID != nil {
		c.UserID = *in.UserID
	}

	if !c.Class.Valid() {
		return nil, model.NewInvalidInput("class", "is not a valid class")
	}
	if in.Stats != nil {
		c.Stats = *in.Stats
	} else {
		stats, err := progression.DefaultStats(c.Class)
		if err != nil {
			return nil, err
		}
		c.Stats = stats
	}

	if err := progression.ValidateCharacter(c); err != nil {
		return nil, err
	}

	if err := s.storage.CreateCharacter(ctx, c); err != nil {
		return nil, err
	}

	metrics.RecordCharacterCreated(string(c.Class))
	s.logger.Info("character created", "character_id", c.ID, "class", c.Class, "user_id", c.UserID)
	return c, nil
}

// Get returns a character by ID
func (s *Service) Get(ctx context.Context, id model.CharacterID) (*model.Character, error) {
	return s.storage.GetCharacter(ctx, id)
}

// List returns one page of characters matching the query
func (s *Service) List(ctx context.Context, q model.CharacterQuery) (*model.CharacterPage, error) {
	q, err := q.Normalize()
	if err != nil {
		return nil, err
	}

	total, err := s.storage.CountCharacters(ctx, q.Filter)
	if err != nil {
		return nil, err
	}

	list, err := s.storage.ListCharacters(ctx, q)
	if err != nil {
		return nil, err
	}

	return &model.CharacterPage{
		Characters: list,
		PageInfo:   model.NewPageInfo(q, total),
	}, nil
}

// Update applies a partial update
func (s *Service) Update(ctx context.Context, id model.CharacterID, patch model.CharacterPatch) (*model.Character, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		patch.Name = &name
	}
	if err := progression.ValidatePatch(patch); err != nil {
		return nil, err
	}

	return s.mutate(ctx, id, func(c *model.Character) error {
		patch.Apply(c)
		return nil
	})
}

// Delete removes a character and returns it as it was
func (s *Service) Delete(ctx context.Context, id model.CharacterID) (*model.Character, error) {
	c, err := s.storage.GetCharacter(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.storage.DeleteCharacter(ctx, id); err != nil {
		return nil, err
	}

	if err := s.leaderboard.Remove(ctx, id); err != nil {
		s.logger.Warn("failed to remove character from leaderboard", "character_id", id, "error", err)
	}
	s.logger.Info("character deleted", "character_id", id)
	return c, nil
}

// BulkDelete removes every listed character that exists and returns how many were removed
func (s *Service) BulkDelete(ctx context.Context, ids []model.CharacterID) (int, error) {
	if len(ids) == 0 {
		return 0, model.NewInvalidInput("ids", "must contain at least one id")
	}

	n, err := s.storage.DeleteCharacters(ctx, ids)
	if err != nil {
		return 0, err
	}

	if err := s.leaderboard.Remove(ctx, ids...); err != nil {
		s.logger.Warn("failed to remove characters from leaderboard", "count", len(ids), "error", err)
	}
	s.logger.Info("characters bulk deleted", "requested", len(ids), "deleted", n)
	return n, nil
}

// LevelUp raises a character by one level
func (s *Service) LevelUp(ctx context.Context, id model.CharacterID) (*model.Character, error) {
	c, err := s.mutate(ctx, id, progression.LevelUp)
	if err != nil {
		return nil, err
	}
	metrics.RecordLevelUp(string(c.Class))
	return c, nil
}

// AddExperience grants experience, levelling up at most once
func (s *Service) AddExperience(ctx context.Context, id model.CharacterID, amount int) (*model.Character, error) {
	if amount <= 0 {
		return nil, model.NewInvalidInput("experience", "must be a positive number")
	}

	var leveled bool
	c, err := s.mutate(ctx, id, func(c *model.Character) error {
		var err error
		leveled, err = progression.AddExperience(c, amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	if leveled {
		metrics.RecordLevelUp(string(c.Class))
	}
	return c, nil
}

// Battle pits two characters against each other. The winner earns battle experience
// and is returned in its updated state; the loser is returned as loaded.
func (s *Service) Battle(ctx context.Context, id1, id2 model.CharacterID) (*model.BattleResult, error) {
	if id1 == "" || id2 == "" {
		return nil, model.NewInvalidInput("ids", "both character ids are required")
	}
	if id1 == id2 {
		return nil, model.NewInvalidInput("ids", "a character cannot battle itself")
	}

	c1, err := s.storage.GetCharacter(ctx, id1)
	if err != nil {
		return nil, err
	}
	c2, err := s.storage.GetCharacter(ctx, id2)
	if err != nil {
		return nil, err
	}

	winner, loser := progression.ResolveBattle(c1, c2)

	updated, err := s.AddExperience(ctx, winner.ID, model.BattleExperience)
	if err != nil {
		return nil, err
	}

	if err := s.leaderboard.RecordBattle(ctx, winner.ID, loser.ID); err != nil {
		s.logger.Warn("failed to record battle on leaderboard", "winner", winner.ID, "loser", loser.ID, "error", err)
	}
	metrics.RecordBattle(string(winner.Class))
	s.logger.Info("battle resolved",
		"winner", winner.ID,
		"loser", loser.ID,
		"winner_power", progression.Power(winner),
		"loser_power", progression.Power(loser),
	)

	return &model.BattleResult{Winner: updated, Loser: loser}, nil
}

// Leaderboard returns the top characters by battle wins
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if limit < 1 {
		limit = DefaultLeaderboardSize
	}

	records, err := s.leaderboard.Top(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]model.LeaderboardEntry, 0, len(records))
	for _, r := range records {
		c, err := s.storage.GetCharacter(ctx, r.CharacterID)
		if errors.Is(err, model.ErrCharacterNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, model.LeaderboardEntry{
			CharacterID: c.ID,
			Name:        c.Name,
			Class:       c.Class,
			Level:       c.Level,
			Wins:        r.Wins,
			Losses:      r.Losses,
			Rank:        len(entries) + 1,
		})
	}
	return entries, nil
}

// mutate re-reads the character, applies fn and writes it back with a version check,
// starting over from a fresh read when another writer got there first
func (s *Service) mutate(ctx context.Context, id model.CharacterID, fn func(*model.Character) error) (*model.Character, error) {
	for attempt := 0; ; attempt++ {
		c, err := s.storage.GetCharacter(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := fn(c); err != nil {
			return nil, err
		}
		c.UpdatedAt = s.clock.Now()

		err = s.storage.UpdateCharacter(ctx, c)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, model.ErrVersionConflict) || attempt >= maxConflictRetries {
			return nil, err
		}
		metrics.RecordVersionConflict()
		s.logger.Debug("retrying character write after version conflict", "character_id", id, "attempt", attempt+1)
	}
}
