package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/rpgroster-go/internal/model"
)

type LeaderboardSuite struct {
	suite.Suite
	mini  *miniredis.Miniredis
	board *Leaderboard
	ctx   context.Context
}

func TestLeaderboardSuite(t *testing.T) {
	suite.Run(t, new(LeaderboardSuite))
}

func (s *LeaderboardSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.board = NewWithClient(client)
	s.ctx = context.Background()
}

func (s *LeaderboardSuite) TearDownTest() {
	if s.board != nil {
		_ = s.board.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *LeaderboardSuite) TestRecordBattleUsesSortedSets() {
	err := s.board.RecordBattle(s.ctx, "char-a", "char-b")
	s.Require().NoError(err)

	wins, err := s.mini.ZScore("rpg:leaderboard:wins", "char-a")
	s.Require().NoError(err)
	s.Equal(1.0, wins)

	losses, err := s.mini.ZScore("rpg:leaderboard:losses", "char-b")
	s.Require().NoError(err)
	s.Equal(1.0, losses)
}

func (s *LeaderboardSuite) TestTopOrdersByWins() {
	s.Require().NoError(s.board.RecordBattle(s.ctx, "char-a", "char-b"))
	s.Require().NoError(s.board.RecordBattle(s.ctx, "char-a", "char-c"))
	s.Require().NoError(s.board.RecordBattle(s.ctx, "char-b", "char-c"))

	top, err := s.board.Top(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(top, 2)
	s.Equal(model.BattleRecord{CharacterID: "char-a", Wins: 2, Losses: 0}, top[0])
	s.Equal(model.BattleRecord{CharacterID: "char-b", Wins: 1, Losses: 1}, top[1])
}

func (s *LeaderboardSuite) TestTopLimit() {
	s.Require().NoError(s.board.RecordBattle(s.ctx, "char-a", "char-b"))
	s.Require().NoError(s.board.RecordBattle(s.ctx, "char-b", "char-c"))

	top, err := s.board.Top(s.ctx, 1)
	s.Require().NoError(err)
	s.Len(top, 1)

	top, err = s.board.Top(s.ctx, 0)
	s.Require().NoError(err)
	s.Empty(top)
}

func (s *LeaderboardSuite) TestTopEmpty() {
	top, err := s.board.Top(s.ctx, 5)
	s.Require().NoError(err)
	s.Empty(top)
}

func (s *LeaderboardSuite) TestRemove() {
	s.Require().NoError(s.board.RecordBattle(s.ctx, "char-a", "char-b"))

	s.Require().NoError(s.board.Remove(s.ctx, "char-a", "char-b"))

	top, err := s.board.Top(s.ctx, 10)
	s.Require().NoError(err)
	s.Empty(top)
	s.False(s.mini.Exists("rpg:leaderboard:losses"))
}
