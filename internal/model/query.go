package model

import (
	"cmp"
	"math"
	"slices"
	"strings"
)

// Pagination defaults
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// SortField names a sortable character attribute as exposed by the API
type SortField string

const (
	SortCreatedAt  SortField = "createdAt"
	SortUpdatedAt  SortField = "updatedAt"
	SortName       SortField = "name"
	SortClass      SortField = "class"
	SortLevel      SortField = "level"
	SortExperience SortField = "experience"
	SortRarity     SortField = "rarity"
	SortHealth     SortField = "health"
	SortAttack     SortField = "attack"
	SortDefense    SortField = "defense"
	SortSpeed      SortField = "speed"
	SortMana       SortField = "mana"
)

// sortColumns is the whitelist of sortable fields and their storage columns
var sortColumns = map[SortField]string{
	SortCreatedAt:  "created_at",
	SortUpdatedAt:  "updated_at",
	SortName:       "name",
	SortClass:      "class",
	SortLevel:      "level",
	SortExperience: "experience",
	SortRarity:     "rarity",
	SortHealth:     "health",
	SortAttack:     "attack",
	SortDefense:    "defense",
	SortSpeed:      "speed",
	SortMana:       "mana",
}

// Column returns the storage column for the field
func (f SortField) Column() (string, bool) {
	col, ok := sortColumns[f]
	return col, ok
}

// SortOrder is the direction of a sort
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// CharacterFilter selects characters. Zero-valued fields do not constrain.
type CharacterFilter struct {
	Class    Class
	Rarity   Rarity
	MinLevel int
	MaxLevel int
	Search   string
	UserID   UserID
	IsActive *bool
}

// Matches reports whether c satisfies every set constraint.
// Search matches a case-insensitive substring of the name or an exact skill.
func (f CharacterFilter) Matches(c *Character) bool {
	if f.Class != "" && c.Class != f.Class {
		return false
	}
	if f.Rarity != "" && c.Rarity != f.Rarity {
		return false
	}
	if f.MinLevel > 0 && c.Level < f.MinLevel {
		return false
	}
	if f.MaxLevel > 0 && c.Level > f.MaxLevel {
		return false
	}
	if f.UserID != "" && c.UserID != f.UserID {
		return false
	}
	if f.IsActive != nil && c.IsActive != *f.IsActive {
		return false
	}
	if f.Search != "" {
		inName := strings.Contains(strings.ToLower(c.Name), strings.ToLower(f.Search))
		if !inName && !slices.Contains(c.Skills, f.Search) {
			return false
		}
	}
	return true
}

// CharacterQuery is a filtered, sorted page request
type CharacterQuery struct {
	Filter    CharacterFilter
	Page      int
	Limit     int
	SortBy    SortField
	SortOrder SortOrder
}

// Normalize fills defaults and rejects unknown sort fields.
// Page and limit have no upper bound.
func (q CharacterQuery) Normalize() (CharacterQuery, error) {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.SortBy == "" {
		q.SortBy = SortCreatedAt
	}
	if _, ok := q.SortBy.Column(); !ok {
		return q, NewInvalidInput("sortBy", "is not a sortable field")
	}
	if q.SortOrder != SortAsc {
		q.SortOrder = SortDesc
	}
	if q.Filter.Class != "" && !q.Filter.Class.Valid() {
		return q, NewInvalidInput("class", "is not a valid class")
	}
	if q.Filter.Rarity != "" && !q.Filter.Rarity.Valid() {
		return q, NewInvalidInput("rarity", "is not a valid rarity")
	}
	return q, nil
}

// Offset is the number of records skipped before this page. ok is false when the
// offset does not fit in an int, in which case the page lies past every record.
func (q CharacterQuery) Offset() (offset int, ok bool) {
	if q.Page <= 1 || q.Limit <= 0 {
		return 0, true
	}
	if q.Page-1 > math.MaxInt/q.Limit {
		return 0, false
	}
	return (q.Page - 1) * q.Limit, true
}

// Compare orders a before b according to the query's sort, breaking ties by ID ascending
func (q CharacterQuery) Compare(a, b *Character) int {
	var c int
	switch q.SortBy {
	case SortUpdatedAt:
		c = a.UpdatedAt.Compare(b.UpdatedAt)
	case SortName:
		c = cmp.Compare(a.Name, b.Name)
	case SortClass:
		c = cmp.Compare(a.Class, b.Class)
	case SortLevel:
		c = cmp.Compare(a.Level, b.Level)
	case SortExperience:
		c = cmp.Compare(a.Experience, b.Experience)
	case SortRarity:
		c = cmp.Compare(a.Rarity, b.Rarity)
	case SortHealth:
		c = cmp.Compare(a.Stats.Health, b.Stats.Health)
	case SortAttack:
		c = cmp.Compare(a.Stats.Attack, b.Stats.Attack)
	case SortDefense:
		c = cmp.Compare(a.Stats.Defense, b.Stats.Defense)
	case SortSpeed:
		c = cmp.Compare(a.Stats.Speed, b.Stats.Speed)
	case SortMana:
		c = cmp.Compare(a.Stats.Mana, b.Stats.Mana)
	default:
		c = a.CreatedAt.Compare(b.CreatedAt)
	}
	if q.SortOrder == SortDesc {
		c = -c
	}
	if c == 0 {
		c = cmp.Compare(a.ID, b.ID)
	}
	return c
}

// PageInfo describes where a page sits in the full result set
type PageInfo struct {
	CurrentPage  int
	TotalPages   int
	TotalItems   int
	ItemsPerPage int
}

// NewPageInfo computes page metadata; TotalPages is ceil(total/limit)
func NewPageInfo(q CharacterQuery, total int) PageInfo {
	pages := 0
	if q.Limit > 0 {
		pages = total / q.Limit
		if total%q.Limit != 0 {
			pages++
		}
	}
	return PageInfo{
		CurrentPage:  q.Page,
		TotalPages:   pages,
		TotalItems:   total,
		ItemsPerPage: q.Limit,
	}
}

// CharacterPage is one page of a character listing
type CharacterPage struct {
	Characters []*Character
	PageInfo   PageInfo
}
