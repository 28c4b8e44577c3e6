// Package sql is the relational storage backend, built on gorm with sqlite or postgres.
package sql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mcoot/rpgroster-go/internal/model"
	"github.com/mcoot/rpgroster-go/internal/storage"
)

// Supported drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds database connection settings
type Config struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Storage is a gorm-backed implementation of the storage interface
type Storage struct {
	db *gorm.DB
}

// Open connects to the configured database and migrates the schema
func Open(cfg Config, log *slog.Logger) (*Storage, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverSQLite:
		dialector = sqlite.Open(cfg.DSN)
	case DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(log),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL database: %w", err)
	}

	// every connection to an in-memory sqlite database sees its own empty database
	if cfg.Driver == DriverSQLite && strings.Contains(cfg.DSN, ":memory:") {
		sqlDB.SetMaxOpenConns(1)
	} else if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s, err := NewWithDB(db)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	log.Info("database connection established", "driver", cfg.Driver)
	return s, nil
}

// NewWithDB wraps an existing gorm handle and migrates the schema
func NewWithDB(db *gorm.DB) (*Storage, error) {
	if err := db.AutoMigrate(&userRecord{}, &characterRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying SQL database: %w", err)
	}
	return sqlDB.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	err := s.db.WithContext(ctx).Create(userToRecord(user)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return model.ErrUserExists
	}
	return err
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	return s.findUser(ctx, "id = ?", string(id))
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findUser(ctx, "email = ?", email)
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.findUser(ctx, "username = ?", username)
}

func (s *Storage) findUser(ctx context.Context, query string, arg string) (*model.User, error) {
	var rec userRecord
	if err := s.db.WithContext(ctx).Where(query, arg).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}
	return userFromRecord(&rec), nil
}

// Character operations

func (s *Storage) CreateCharacter(ctx context.Context, c *model.Character) error {
	return s.db.WithContext(ctx).Create(characterToRecord(c)).Error
}

func (s *Storage) GetCharacter(ctx context.Context, id model.CharacterID) (*model.Character, error) {
	var rec characterRecord
	if err := s.db.WithContext(ctx).Where("id = ?", string(id)).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrCharacterNotFound
		}
		return nil, err
	}
	return characterFromRecord(&rec), nil
}

func (s *Storage) ListCharacters(ctx context.Context, q model.CharacterQuery) ([]*model.Character, error) {
	offset, ok := q.Offset()
	if !ok {
		return []*model.Character{}, nil
	}

	var recs []characterRecord
	err := s.db.WithContext(ctx).
		Scopes(s.filterScope(q.Filter), orderScope(q), pageScope(offset, q.Limit)).
		Find(&recs).Error
	if err != nil {
		return nil, err
	}

	out := make([]*model.Character, len(recs))
	for i := range recs {
		out[i] = characterFromRecord(&recs[i])
	}
	return out, nil
}

func (s *Storage) CountCharacters(ctx context.Context, f model.CharacterFilter) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&characterRecord{}).
		Scopes(s.filterScope(f)).
		Count(&n).Error
	return int(n), err
}

func (s *Storage) UpdateCharacter(ctx context.Context, c *model.Character) error {
	rec := characterToRecord(c)
	res := s.db.WithContext(ctx).
		Model(&characterRecord{}).
		Where("id = ? AND version = ?", rec.ID, c.Version).
		Updates(map[string]any{
			"name":        rec.Name,
			"name_folded": rec.NameFolded,
			"class":       rec.Class,
			"level":       rec.Level,
			"experience":  rec.Experience,
			"rarity":      rec.Rarity,
			"health":      rec.Health,
			"attack":      rec.Attack,
			"defense":     rec.Defense,
			"speed":       rec.Speed,
			"mana":        rec.Mana,
			"skills":      rec.Skills,
			"is_active":   rec.IsActive,
			"user_id":     rec.UserID,
			"version":     c.Version + 1,
			"updated_at":  rec.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := s.db.WithContext(ctx).Model(&characterRecord{}).Where("id = ?", rec.ID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return model.ErrCharacterNotFound
		}
		return model.ErrVersionConflict
	}
	c.Version++
	return nil
}

func (s *Storage) DeleteCharacter(ctx context.Context, id model.CharacterID) error {
	res := s.db.WithContext(ctx).Where("id = ?", string(id)).Delete(&characterRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrCharacterNotFound
	}
	return nil
}

func (s *Storage) DeleteCharacters(ctx context.Context, ids []model.CharacterID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = string(id)
	}
	res := s.db.WithContext(ctx).Where("id IN ?", keys).Delete(&characterRecord{})
	return int(res.RowsAffected), res.Error
}
