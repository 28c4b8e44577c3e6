package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	w      io.Writer
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(w io.Writer, format string) *Output {
	return &Output{w: w, format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case AuthResult:
		o.printAuthResult(v)
	case Character:
		o.printCharacter(v)
	case CharacterList:
		o.printCharacterList(v)
	case BattleResult:
		o.printBattleResult(v)
	case Leaderboard:
		o.printLeaderboard(v)
	case DeleteResult:
		fmt.Fprintf(o.w, "Deleted: %d\n", v.DeletedCount)
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// User response type (matches API)
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// AuthResult combines user and token
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Stats response type
type Stats struct {
	Health  int `json:"health"`
	Attack  int `json:"attack"`
	Defense int `json:"defense"`
	Speed   int `json:"speed"`
	Mana    int `json:"mana"`
}

// Character response type
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

// Pagination response type
type Pagination struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// CharacterList is one page of characters
type CharacterList struct {
	Characters []Character `json:"characters"`
	Pagination Pagination  `json:"pagination"`
}

// BattleResult response type
type BattleResult struct {
	Winner Character `json:"winner"`
	Loser  Character `json:"loser"`
}

// LeaderboardEntry response type
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	CharacterID string `json:"characterId"`
	Name        string `json:"name"`
	Class       string `json:"class"`
	Level       int    `json:"level"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
}

// Leaderboard is the ranked list of characters
type Leaderboard []LeaderboardEntry

// DeleteResult is the outcome of a bulk delete
type DeleteResult struct {
	DeletedCount int `json:"deletedCount"`
}

// HealthResult response type
type HealthResult struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}

func (o *Output) printAuthResult(a AuthResult) {
	fmt.Fprintf(o.w, "User: %s <%s> (%s)\n", a.User.Username, a.User.Email, a.User.ID)
	fmt.Fprintf(o.w, "Token: %s\n", a.Token)
}

func (o *Output) printCharacter(c Character) {
	fmt.Fprintf(o.w, "Character: %s (%s)\n", c.Name, c.ID)
	fmt.Fprintf(o.w, "Class: %s  Rarity: %s\n", c.Class, c.Rarity)
	fmt.Fprintf(o.w, "Level: %d  XP: %d/%d\n", c.Level, c.Experience, c.Level*100)
	fmt.Fprintf(o.w, "Stats: HP %d  ATK %d  DEF %d  SPD %d  MP %d\n",
		c.Stats.Health, c.Stats.Attack, c.Stats.Defense, c.Stats.Speed, c.Stats.Mana)
	if len(c.Skills) > 0 {
		fmt.Fprintf(o.w, "Skills: %s\n", strings.Join(c.Skills, ", "))
	}
	if !c.IsActive {
		fmt.Fprintln(o.w, "Inactive")
	}
	if c.UserID != "" {
		fmt.Fprintf(o.w, "Owner: %s\n", c.UserID)
	}
}

func (o *Output) printCharacterList(l CharacterList) {
	tw := tabwriter.NewWriter(o.w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCLASS\tLEVEL\tRARITY")
	for _, c := range l.Characters {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", c.ID, c.Name, c.Class, c.Level, c.Rarity)
	}
	_ = tw.Flush()
	p := l.Pagination
	fmt.Fprintf(o.w, "Page %d of %d (%d total)\n", p.CurrentPage, p.TotalPages, p.TotalItems)
}

func (o *Output) printBattleResult(b BattleResult) {
	fmt.Fprintf(o.w, "Winner: %s (%s), now level %d with %d XP\n", b.Winner.Name, b.Winner.ID, b.Winner.Level, b.Winner.Experience)
	fmt.Fprintf(o.w, "Loser: %s (%s)\n", b.Loser.Name, b.Loser.ID)
}

func (o *Output) printLeaderboard(entries Leaderboard) {
	if len(entries) == 0 {
		fmt.Fprintln(o.w, "No battles recorded yet")
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tNAME\tCLASS\tLEVEL\tWINS\tLOSSES")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\n", e.Rank, e.Name, e.Class, e.Level, e.Wins, e.Losses)
	}
	_ = tw.Flush()
}
