package model

import (
	"slices"
	"time"
)

// CharacterID uniquely identifies a character
type CharacterID string

// Class is the archetype governing default stats and growth
type Class string

const (
	ClassWarrior  Class = "warrior"
	ClassMage     Class = "mage"
	ClassArcher   Class = "archer"
	ClassAssassin Class = "assassin"
	ClassHealer   Class = "healer"
)

// AllClasses lists every class in declaration order
var AllClasses = []Class{ClassWarrior, ClassMage, ClassArcher, ClassAssassin, ClassHealer}

// Valid reports whether c is a known class
func (c Class) Valid() bool {
	return slices.Contains(AllClasses, c)
}

// Rarity is a tier label with no mechanical effect
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// AllRarities lists every rarity from lowest to highest
var AllRarities = []Rarity{RarityCommon, RarityRare, RarityEpic, RarityLegendary}

// Valid reports whether r is a known rarity
func (r Rarity) Valid() bool {
	return slices.Contains(AllRarities, r)
}

// Level and name bounds
const (
	MinLevel         = 1
	MaxLevel         = 100
	MinNameLength    = 2
	MaxNameLength    = 50
	DefaultLevel     = MinLevel
	DefaultRarity    = RarityCommon
	InitialVersion   = 1
	BattleExperience = 100
)

// Stats are the five combat attributes of a character
type Stats struct {
	Health  int
	Attack  int
	Defense int
	Speed   int
	Mana    int
}

// Add returns the element-wise sum of s and o
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Health:  s.Health + o.Health,
		Attack:  s.Attack + o.Attack,
		Defense: s.Defense + o.Defense,
		Speed:   s.Speed + o.Speed,
		Mana:    s.Mana + o.Mana,
	}
}

// NonNegative reports whether every stat is >= 0
func (s Stats) NonNegative() bool {
	return s.Health >= 0 && s.Attack >= 0 && s.Defense >= 0 && s.Speed >= 0 && s.Mana >= 0
}

// Character is a player-ownable game entity
type Character struct {
	ID         CharacterID
	Name       string
	Class      Class
	Level      int
	Experience int
	Rarity     Rarity
	Stats      Stats
	Skills     []string
	IsActive   bool
	UserID     UserID // empty when unowned
	Version    int    // revision counter, incremented on every write
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Clone returns a deep copy of the character
func (c *Character) Clone() *Character {
	cp := *c
	cp.Skills = slices.Clone(c.Skills)
	if cp.Skills == nil {
		cp.Skills = []string{}
	}
	return &cp
}

// StatsPatch holds optional per-stat replacements
type StatsPatch struct {
	Health  *int
	Attack  *int
	Defense *int
	Speed   *int
	Mana    *int
}

// CharacterPatch is a partial update; nil fields are left unchanged
type CharacterPatch struct {
	Name       *string
	Class      *Class
	Level      *int
	Experience *int
	Rarity     *Rarity
	Stats      *StatsPatch
	Skills     *[]string
	IsActive   *bool
	UserID     *UserID
}

// Apply writes the set fields of p onto c
func (p CharacterPatch) Apply(c *Character) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Class != nil {
		c.Class = *p.Class
	}
	if p.Level != nil {
		c.Level = *p.Level
	}
	if p.Experience != nil {
		c.Experience = *p.Experience
	}
	if p.Rarity != nil {
		c.Rarity = *p.Rarity
	}
	if p.Skills != nil {
		c.Skills = slices.Clone(*p.Skills)
	}
	if p.IsActive != nil {
		c.IsActive = *p.IsActive
	}
	if p.UserID != nil {
		c.UserID = *p.UserID
	}
	if s := p.Stats; s != nil {
		if s.Health != nil {
			c.Stats.Health = *s.Health
		}
		if s.Attack != nil {
			c.Stats.Attack = *s.Attack
		}
		if s.Defense != nil {
			c.Stats.Defense = *s.Defense
		}
		if s.Speed != nil {
			c.Stats.Speed = *s.Speed
		}
		if s.Mana != nil {
			c.Stats.Mana = *s.Mana
		}
	}
}

// BattleResult is the outcome of a battle between two characters
type BattleResult struct {
	Winner *Character
	Loser  *Character
}

// LeaderboardEntry is one ranked row of the battle leaderboard
type LeaderboardEntry struct {
	CharacterID CharacterID
	Name        string
	Class       Class
	Level       int
	Wins        int
	Losses      int
	Rank        int
}

// BattleRecord is the raw win/loss tally for one character
type BattleRecord struct {
	CharacterID CharacterID
	Wins        int
	Losses      int
}
