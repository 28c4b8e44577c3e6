package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/mcoot/rpgroster-go/internal/model"
	"github.com/mcoot/rpgroster-go/internal/storage"
)

// Leaderboard is an in-memory battle tally
type Leaderboard struct {
	mu      sync.Mutex
	records map[model.CharacterID]*model.BattleRecord
}

// NewLeaderboard creates an empty in-memory leaderboard
func NewLeaderboard() *Leaderboard {
	return &Leaderboard{records: make(map[model.CharacterID]*model.BattleRecord)}
}

var _ storage.Leaderboard = (*Leaderboard)(nil)

func (l *Leaderboard) record(id model.CharacterID) *model.BattleRecord {
	r, ok := l.records[id]
	if !ok {
		r = &model.BattleRecord{CharacterID: id}
		l.records[id] = r
	}
	return r
}

func (l *Leaderboard) RecordBattle(ctx context.Context, winner, loser model.CharacterID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.record(winner).Wins++
	l.record(loser).Losses++
	return nil
}

// Top orders by wins descending, then losses ascending, then id
func (l *Leaderboard) Top(ctx context.Context, n int) ([]model.BattleRecord, error) {
	l.mu.Lock()
	out := make([]model.BattleRecord, 0, len(l.records))
	for _, r := range l.records {
		if r.Wins > 0 {
			out = append(out, *r)
		}
	}
	l.mu.Unlock()

	slices.SortFunc(out, func(a, b model.BattleRecord) int {
		if c := cmp.Compare(b.Wins, a.Wins); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Losses, b.Losses); c != 0 {
			return c
		}
		return cmp.Compare(a.CharacterID, b.CharacterID)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (l *Leaderboard) Remove(ctx context.Context, ids ...model.CharacterID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range ids {
		delete(l.records, id)
	}
	return nil
}
