package response

import (
	"time"

	"github.com/mcoot/rpgroster-go/internal/model"
	"github.com/mcoot/rpgroster-go/internal/services/auth"
)

// Envelope is the uniform success response body
type Envelope struct {
	Success      bool        `json:"success"`
	Message      string      `json:"message,omitempty"`
	Data         any         `json:"data,omitempty"`
	Pagination   *Pagination `json:"pagination,omitempty"`
	DeletedCount *int        `json:"deletedCount,omitempty"`
}

// OK wraps data in a successful envelope
func OK(message string, data any) Envelope {
	return Envelope{Success: true, Message: message, Data: data}
}

// Stats represents a stat block in API responses
type Stats struct {
	Health  int `json:"health"`
	Attack  int `json:"attack"`
	Defense int `json:"defense"`
	Speed   int `json:"speed"`
	Mana    int `json:"mana"`
}

// Character represents a character in API responses
type Character struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Class      string    `json:"class"`
	Level      int       `json:"level"`
	Experience int       `json:"experience"`
	Rarity     string    `json:"rarity"`
	Stats      Stats     `json:"stats"`
	Skills     []string  `json:"skills"`
	IsActive   bool      `json:"isActive"`
	UserID     string    `json:"userId,omitempty"`
	Version    int       `json:"version"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// CharacterFromModel converts a model.Character to a response Character
func CharacterFromModel(c *model.Character) Character {
	skills := c.Skills
	if skills == nil {
		skills = []string{}
	}
	return Character{
		ID:         string(c.ID),
		Name:       c.Name,
		Class:      string(c.Class),
		Level:      c.Level,
		Experience: c.Experience,
		Rarity:     string(c.Rarity),
		Stats: Stats{
			Health:  c.Stats.Health,
			Attack:  c.Stats.Attack,
			Defense: c.Stats.Defense,
			Speed:   c.Stats.Speed,
			Mana:    c.Stats.Mana,
		},
		Skills:    skills,
		IsActive:  c.IsActive,
		UserID:    string(c.UserID),
		Version:   c.Version,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// CharactersFromModel converts a slice of characters
func CharactersFromModel(cs []*model.Character) []Character {
	out := make([]Character, 0, len(cs))
	for _, c := range cs {
		out = append(out, CharacterFromModel(c))
	}
	return out
}

// Pagination describes where a page sits in the full result set
type Pagination struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// PaginationFromModel converts model.PageInfo
func PaginationFromModel(p model.PageInfo) *Pagination {
	return &Pagination{
		CurrentPage:  p.CurrentPage,
		TotalPages:   p.TotalPages,
		TotalItems:   p.TotalItems,
		ItemsPerPage: p.ItemsPerPage,
	}
}

// User is the public summary of a user
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// AuthData is the payload of register and login responses
type AuthData struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// AuthDataFromResult converts an auth.Result
func AuthDataFromResult(r *auth.Result) AuthData {
	return AuthData{
		Token: r.Token,
		User: User{
			ID:       string(r.User.ID),
			Username: r.User.Username,
			Email:    r.User.Email,
		},
	}
}

// BattleData is the payload of a battle response
type BattleData struct {
	Winner Character `json:"winner"`
	Loser  Character `json:"loser"`
}

// BattleDataFromResult converts a model.BattleResult
func BattleDataFromResult(r *model.BattleResult) BattleData {
	return BattleData{
		Winner: CharacterFromModel(r.Winner),
		Loser:  CharacterFromModel(r.Loser),
	}
}

// LeaderboardEntry is one ranked row of the leaderboard
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	CharacterID string `json:"characterId"`
	Name        string `json:"name"`
	Class       string `json:"class"`
	Level       int    `json:"level"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
}

// LeaderboardFromModel converts leaderboard entries
func LeaderboardFromModel(entries []model.LeaderboardEntry) []LeaderboardEntry {
	out := make([]LeaderboardEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, LeaderboardEntry{
			Rank:        e.Rank,
			CharacterID: string(e.CharacterID),
			Name:        e.Name,
			Class:       string(e.Class),
			Level:       e.Level,
			Wins:        e.Wins,
			Losses:      e.Losses,
		})
	}
	return out
}

// Banner describes the service at the root path
type Banner struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

// Health is the health check payload
type Health struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}
