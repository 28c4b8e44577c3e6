package sql

import (
	"encoding/json"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mcoot/rpgroster-go/internal/model"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// filterScope ANDs every set constraint of f onto the query
func (s *Storage) filterScope(f model.CharacterFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Class != "" {
			db = db.Where("class = ?", string(f.Class))
		}
		if f.Rarity != "" {
			db = db.Where("rarity = ?", string(f.Rarity))
		}
		if f.MinLevel > 0 {
			db = db.Where("level >= ?", f.MinLevel)
		}
		if f.MaxLevel > 0 {
			db = db.Where("level <= ?", f.MaxLevel)
		}
		if f.UserID != "" {
			db = db.Where("user_id = ?", string(f.UserID))
		}
		if f.IsActive != nil {
			db = db.Where("is_active = ?", *f.IsActive)
		}
		if f.Search != "" {
			pattern := "%" + likeEscaper.Replace(strings.ToLower(f.Search)) + "%"
			skillSQL, skillArg := s.skillMatch(f.Search)
			db = db.Where(
				s.db.Where(`name_folded LIKE ? ESCAPE '\'`, pattern).Or(skillSQL, skillArg),
			)
		}
		return db
	}
}

// skillMatch returns a dialect-specific predicate for exact membership in the skills array
func (s *Storage) skillMatch(skill string) (string, any) {
	if s.db.Dialector.Name() == DriverPostgres {
		arr, _ := json.Marshal([]string{skill})
		return "characters.skills @> ?::jsonb", string(arr)
	}
	return "EXISTS (SELECT 1 FROM json_each(characters.skills) WHERE json_each.value = ?)", skill
}

// orderScope sorts by the whitelisted column with id as a tiebreak
func orderScope(q model.CharacterQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		col, ok := q.SortBy.Column()
		if !ok {
			col = "created_at"
		}
		return db.
			Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: q.SortOrder == model.SortDesc}).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	}
}

func pageScope(offset, limit int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(offset).Limit(limit)
	}
}
