package sql

import (
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/mcoot/rpgroster-go/internal/model"
)

// userRecord is the users table row
type userRecord struct {
	ID           string `gorm:"primaryKey;size:36"`
	Username     string `gorm:"size:30;not null;uniqueIndex"`
	Email        string `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string `gorm:"size:100;not null"`
	IsActive     bool   `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userRecord) TableName() string {
	return "users"
}

// characterRecord is the characters table row. Stats are flattened into columns
// so they can be sorted on. NameFolded is the Unicode lowercase name that search
// matches against, since sqlite's LOWER only folds ASCII.
type characterRecord struct {
	ID         string                      `gorm:"primaryKey;size:36"`
	Name       string                      `gorm:"size:50;not null;index"`
	NameFolded string                      `gorm:"size:200;not null;default:''"`
	Class      string                      `gorm:"size:20;not null;index"`
	Level      int                         `gorm:"not null;index"`
	Experience int                         `gorm:"not null"`
	Rarity     string                      `gorm:"size:20;not null;index"`
	Health     int                         `gorm:"not null"`
	Attack     int                         `gorm:"not null"`
	Defense    int                         `gorm:"not null"`
	Speed      int                         `gorm:"not null"`
	Mana       int                         `gorm:"not null"`
	Skills     datatypes.JSONSlice[string] `gorm:"not null"`
	IsActive   bool                        `gorm:"not null"`
	UserID     *string                     `gorm:"size:36;index"`
	Version    int                         `gorm:"not null"`
	CreatedAt  time.Time                   `gorm:"index"`
	UpdatedAt  time.Time
}

func (characterRecord) TableName() string {
	return "characters"
}

func userToRecord(u *model.User) *userRecord {
	return &userRecord{
		ID:           string(u.ID),
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func userFromRecord(r *userRecord) *model.User {
	return &model.User{
		ID:           model.UserID(r.ID),
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		IsActive:     r.IsActive,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func characterToRecord(c *model.Character) *characterRecord {
	skills := datatypes.JSONSlice[string]{}
	skills = append(skills, c.Skills...)
	return &characterRecord{
		ID:         string(c.ID),
		Name:       c.Name,
		NameFolded: strings.ToLower(c.Name),
		Class:      string(c.Class),
		Level:      c.Level,
		Experience: c.Experience,
		Rarity:     string(c.Rarity),
		Health:     c.Stats.Health,
		Attack:     c.Stats.Attack,
		Defense:    c.Stats.Defense,
		Speed:      c.Stats.Speed,
		Mana:       c.Stats.Mana,
		Skills:     skills,
		IsActive:   c.IsActive,
		UserID:     ownerColumn(c.UserID),
		Version:    c.Version,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func characterFromRecord(r *characterRecord) *model.Character {
	c := &model.Character{
		ID:         model.CharacterID(r.ID),
		Name:       r.Name,
		Class:      model.Class(r.Class),
		Level:      r.Level,
		Experience: r.Experience,
		Rarity:     model.Rarity(r.Rarity),
		Stats: model.Stats{
			Health:  r.Health,
			Attack:  r.Attack,
			Defense: r.Defense,
			Speed:   r.Speed,
			Mana:    r.Mana,
		},
		Skills:    append([]string{}, r.Skills...),
		IsActive:  r.IsActive,
		Version:   r.Version,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.UserID != nil {
		c.UserID = model.UserID(*r.UserID)
	}
	return c
}

// ownerColumn stores an unowned character as NULL
func ownerColumn(id model.UserID) *string {
	if id == "" {
		return nil
	}
	s := string(id)
	return &s
}
