// Package progression holds the pure character growth and battle rules.
// Nothing here touches storage; callers pass characters in and persist the result.
package progression

import (
	"fmt"
	"unicode/utf8"

	"github.com/mcoot/rpgroster-go/internal/model"
)

var defaultStats = map[model.Class]model.Stats{
	model.ClassWarrior:  {Health: 150, Attack: 80, Defense: 90, Speed: 60, Mana: 30},
	model.ClassMage:     {Health: 80, Attack: 120, Defense: 50, Speed: 70, Mana: 150},
	model.ClassArcher:   {Health: 100, Attack: 100, Defense: 60, Speed: 110, Mana: 50},
	model.ClassAssassin: {Health: 90, Attack: 110, Defense: 50, Speed: 130, Mana: 40},
	model.ClassHealer:   {Health: 110, Attack: 50, Defense: 70, Speed: 80, Mana: 140},
}

var statBoosts = map[model.Class]model.Stats{
	model.ClassWarrior:  {Health: 15, Attack: 8, Defense: 9, Speed: 6, Mana: 3},
	model.ClassMage:     {Health: 8, Attack: 12, Defense: 5, Speed: 7, Mana: 15},
	model.ClassArcher:   {Health: 10, Attack: 10, Defense: 6, Speed: 11, Mana: 5},
	model.ClassAssassin: {Health: 9, Attack: 11, Defense: 5, Speed: 13, Mana: 4},
	model.ClassHealer:   {Health: 11, Attack: 5, Defense: 7, Speed: 8, Mana: 14},
}

// CheckTables verifies that every class has starting stats and a level-up boost
func CheckTables() error {
	for _, class := range model.AllClasses {
		if _, ok := defaultStats[class]; !ok {
			return fmt.Errorf("no default stats for class %q", class)
		}
		if _, ok := statBoosts[class]; !ok {
			return fmt.Errorf("no stat boost for class %q", class)
		}
	}
	return nil
}

// DefaultStats returns the starting stats for a class
func DefaultStats(class model.Class) (model.Stats, error) {
	s, ok := defaultStats[class]
	if !ok {
		return model.Stats{}, model.NewInvalidInput("class", "is not a valid class")
	}
	return s, nil
}

// StatBoost returns the per-level stat increase for a class
func StatBoost(class model.Class) (model.Stats, error) {
	s, ok := statBoosts[class]
	if !ok {
		return model.Stats{}, model.NewInvalidInput("class", "is not a valid class")
	}
	return s, nil
}

// ExperienceForNextLevel is the experience needed to leave the given level
func ExperienceForNextLevel(level int) int {
	return level * 100
}

// LevelUp raises c by one level, resets experience and applies the class boost.
// A character at MaxLevel is left untouched.
func LevelUp(c *model.Character) error {
	if c.Level >= model.MaxLevel {
		return model.ErrMaxLevel
	}
	boost, err := StatBoost(c.Class)
	if err != nil {
		return err
	}
	c.Level++
	c.Experience = 0
	c.Stats = c.Stats.Add(boost)
	return nil
}

// AddExperience grants amount experience. Reaching the threshold triggers exactly one
// level-up and any excess is discarded. Reports whether a level-up happened.
func AddExperience(c *model.Character, amount int) (bool, error) {
	if amount <= 0 {
		return false, model.NewInvalidInput("experience", "must be a positive number")
	}
	if c.Experience+amount >= ExperienceForNextLevel(c.Level) {
		if err := LevelUp(c); err != nil {
			return false, err
		}
		return true, nil
	}
	c.Experience += amount
	return false, nil
}

// Power is a character's battle rating
func Power(c *model.Character) int {
	return c.Stats.Attack + c.Stats.Speed + c.Level*10
}

// ResolveBattle picks a winner. The first combatant must be strictly stronger;
// ties go to the second.
func ResolveBattle(a, b *model.Character) (winner, loser *model.Character) {
	if Power(a) > Power(b) {
		return a, b
	}
	return b, a
}

// ValidateInput checks a supplied name and level; nil values are skipped
func ValidateInput(name *string, level *int) error {
	if name != nil {
		if n := utf8.RuneCountInString(*name); n < model.MinNameLength || n > model.MaxNameLength {
			return model.NewInvalidInput("name",
				fmt.Sprintf("must be between %d and %d characters", model.MinNameLength, model.MaxNameLength))
		}
	}
	if level != nil && (*level < model.MinLevel || *level > model.MaxLevel) {
		return model.NewInvalidInput("level",
			fmt.Sprintf("must be between %d and %d", model.MinLevel, model.MaxLevel))
	}
	return nil
}

// ValidateCharacter checks every field of a fully populated character
func ValidateCharacter(c *model.Character) error {
	if err := ValidateInput(&c.Name, &c.Level); err != nil {
		return err
	}
	if !c.Class.Valid() {
		return model.NewInvalidInput("class", "is not a valid class")
	}
	if !c.Rarity.Valid() {
		return model.NewInvalidInput("rarity", "is not a valid rarity")
	}
	if c.Experience < 0 {
		return model.NewInvalidInput("experience", "must not be negative")
	}
	if !c.Stats.NonNegative() {
		return model.NewInvalidInput("stats", "must not be negative")
	}
	return nil
}

// ValidatePatch checks the fields a patch sets
func ValidatePatch(p model.CharacterPatch) error {
	if err := ValidateInput(p.Name, p.Level); err != nil {
		return err
	}
	if p.Class != nil && !p.Class.Valid() {
		return model.NewInvalidInput("class", "is not a valid class")
	}
	if p.Rarity != nil && !p.Rarity.Valid() {
		return model.NewInvalidInput("rarity", "is not a valid rarity")
	}
	if p.Experience != nil && *p.Experience < 0 {
		return model.NewInvalidInput("experience", "must not be negative")
	}
	if s := p.Stats; s != nil {
		for _, v := range []*int{s.Health, s.Attack, s.Defense, s.Speed, s.Mana} {
			if v != nil && *v < 0 {
				return model.NewInvalidInput("stats", "must not be negative")
			}
		}
	}
	return nil
}
