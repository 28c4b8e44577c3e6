package character

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/rpgroster-go/internal/dependencies/mocks"
	"github.com/mcoot/rpgroster-go/internal/model"
	"github.com/mcoot/rpgroster-go/internal/storage/memory"
	"github.com/mcoot/rpgroster-go/internal/testutil"
)

// conflictingStorage fails the next conflicts updates with a version conflict
type conflictingStorage struct {
	*memory.Storage
	conflicts int
	updates   int
}

func (c *conflictingStorage) UpdateCharacter(ctx context.Context, ch *model.Character) error {
	c.updates++
	if c.conflicts > 0 {
		c.conflicts--
		return model.ErrVersionConflict
	}
	return c.Storage.UpdateCharacter(ctx, ch)
}

// brokenLeaderboard fails every call
type brokenLeaderboard struct{}

func (brokenLeaderboard) RecordBattle(context.Context, model.CharacterID, model.CharacterID) error {
	return errors.New("leaderboard unavailable")
}

func (brokenLeaderboard) Top(context.Context, int) ([]model.BattleRecord, error) {
	return nil, errors.New("leaderboard unavailable")
}

func (brokenLeaderboard) Remove(context.Context, ...model.CharacterID) error {
	return errors.New("leaderboard unavailable")
}

type ServiceSuite struct {
	suite.Suite
	storage     *conflictingStorage
	leaderboard *memory.Leaderboard
	clock       *mocks.MockClock
	ids         *mocks.MockIDs
	service     *Service
	ctx         context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = &conflictingStorage{Storage: memory.New()}
	s.leaderboard = memory.NewLeaderboard()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.ids = mocks.NewMockIDs()
	s.service = New(s.storage, s.leaderboard, s.clock, s.ids, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) create(name string, class model.Class) *model.Character {
	c, err := s.service.Create(s.ctx, CreateInput{Name: name, Class: class}, "user-1")
	s.Require().NoError(err)
	s.clock.Advance(time.Second)
	return c
}

func intPtr(v int) *int { return &v }

// Create tests

func (s *ServiceSuite) TestCreateUsesClassDefaults() {
	c := s.create("Aria", model.ClassWarrior)

	s.Equal(model.CharacterID("char-1"), c.ID)
	s.Equal(1, c.Level)
	s.Equal(0, c.Experience)
	s.Equal(model.RarityCommon, c.Rarity)
	s.True(c.IsActive)
	s.Empty(c.Skills)
	s.Equal(model.UserID("user-1"), c.UserID)
	s.Equal(model.Stats{Health: 150, Attack: 80, Defense: 90, Speed: 60, Mana: 30}, c.Stats)
}

func (s *ServiceSuite) TestCreatePreservesSuppliedStats() {
	stats := model.Stats{Health: 1, Attack: 2, Defense: 3, Speed: 4, Mana: 5}
	rarity := model.RarityEpic
	owner := model.UserID("someone-else")

	c, err := s.service.Create(s.ctx, CreateInput{
		Name:   "Custom",
		Class:  model.ClassMage,
		Level:  intPtr(7),
		Rarity: &rarity,
		Stats:  &stats,
		Skills: []string{"fireball"},
		UserID: &owner,
	}, "user-1")
	s.Require().NoError(err)

	s.Equal(stats, c.Stats)
	s.Equal(7, c.Level)
	s.Equal(model.RarityEpic, c.Rarity)
	s.Equal([]string{"fireball"}, c.Skills)
	s.Equal(owner, c.UserID)

	stored, err := s.service.Get(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(stats, stored.Stats)
}

func (s *ServiceSuite) TestCreateRejectsInvalidInput() {
	cases := []CreateInput{
		{Name: "A", Class: model.ClassWarrior},
		{Name: "Aria", Class: "bard"},
		{Name: "Aria", Class: model.ClassWarrior, Level: intPtr(0)},
		{Name: "Aria", Class: model.ClassWarrior, Level: intPtr(101)},
		{Name: "Aria", Class: model.ClassWarrior, Stats: &model.Stats{Health: -1}},
	}
	for _, in := range cases {
		_, err := s.service.Create(s.ctx, in, "")
		s.ErrorIs(err, model.ErrInvalidInput, "%+v", in)
	}
}

// Get tests

func (s *ServiceSuite) TestGetNotFound() {
	_, err := s.service.Get(s.ctx, "missing")
	s.ErrorIs(err, model.ErrCharacterNotFound)
}

// Update tests

func (s *ServiceSuite) TestUpdateAppliesPatch() {
	c := s.create("Aria", model.ClassWarrior)

	name := "Aria the Bold"
	updated, err := s.service.Update(s.ctx, c.ID, model.CharacterPatch{
		Name:  &name,
		Stats: &model.StatsPatch{Attack: intPtr(200)},
	})
	s.Require().NoError(err)

	s.Equal("Aria the Bold", updated.Name)
	s.Equal(200, updated.Stats.Attack)
	s.Equal(150, updated.Stats.Health)
	s.Equal(model.InitialVersion+1, updated.Version)
	s.True(updated.UpdatedAt.After(c.UpdatedAt))
}

func (s *ServiceSuite) TestUpdateValidatesLevel() {
	c := s.create("Aria", model.ClassWarrior)

	_, err := s.service.Update(s.ctx, c.ID, model.CharacterPatch{Level: intPtr(150)})
	s.ErrorIs(err, model.ErrInvalidInput)

	stored, _ := s.service.Get(s.ctx, c.ID)
	s.Equal(1, stored.Level)
}

func (s *ServiceSuite) TestUpdateNotFound() {
	_, err := s.service.Update(s.ctx, "missing", model.CharacterPatch{Level: intPtr(2)})
	s.ErrorIs(err, model.ErrCharacterNotFound)
}

func (s *ServiceSuite) TestUpdateRetriesVersionConflict() {
	c := s.create("Aria", model.ClassWarrior)
	s.storage.conflicts = 2

	updated, err := s.service.Update(s.ctx, c.ID, model.CharacterPatch{Level: intPtr(5)})
	s.Require().NoError(err)
	s.Equal(5, updated.Level)
	s.Equal(3, s.storage.updates)
}

func (s *ServiceSuite) TestUpdateGivesUpAfterRepeatedConflicts() {
	c := s.create("Aria", model.ClassWarrior)
	s.storage.conflicts = 10

	_, err := s.service.Update(s.ctx, c.ID, model.CharacterPatch{Level: intPtr(5)})
	s.ErrorIs(err, model.ErrVersionConflict)
	s.Equal(maxConflictRetries+1, s.storage.updates)
}

// Delete tests

func (s *ServiceSuite) TestDeleteReturnsCharacter() {
	c := s.create("Aria", model.ClassWarrior)

	deleted, err := s.service.Delete(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(c.ID, deleted.ID)

	_, err = s.service.Get(s.ctx, c.ID)
	s.ErrorIs(err, model.ErrCharacterNotFound)

	_, err = s.service.Delete(s.ctx, c.ID)
	s.ErrorIs(err, model.ErrCharacterNotFound)
}

func (s *ServiceSuite) TestBulkDelete() {
	a := s.create("Aria", model.ClassWarrior)
	b := s.create("Bran", model.ClassMage)

	n, err := s.service.BulkDelete(s.ctx, []model.CharacterID{a.ID, b.ID, "missing"})
	s.Require().NoError(err)
	s.Equal(2, n)
}

func (s *ServiceSuite) TestBulkDeleteRequiresIDs() {
	_, err := s.service.BulkDelete(s.ctx, nil)
	s.ErrorIs(err, model.ErrInvalidInput)
}

// Progression tests

func (s *ServiceSuite) TestLevelUp() {
	c := s.create("Aria", model.ClassWarrior)

	updated, err := s.service.LevelUp(s.ctx, c.ID)
	s.Require().NoError(err)

	s.Equal(2, updated.Level)
	s.Equal(model.Stats{Health: 165, Attack: 88, Defense: 99, Speed: 66, Mana: 33}, updated.Stats)
}

func (s *ServiceSuite) TestLevelUpAtMaxLevel() {
	c, err := s.service.Create(s.ctx, CreateInput{Name: "Elder", Class: model.ClassHealer, Level: intPtr(100)}, "")
	s.Require().NoError(err)

	_, err = s.service.LevelUp(s.ctx, c.ID)
	s.ErrorIs(err, model.ErrMaxLevel)

	stored, _ := s.service.Get(s.ctx, c.ID)
	s.Equal(100, stored.Level)
	s.Equal(c.Stats, stored.Stats)
}

func (s *ServiceSuite) TestAddExperienceLevelsUpOnce() {
	c := s.create("Aria", model.ClassWarrior)

	updated, err := s.service.AddExperience(s.ctx, c.ID, 250)
	s.Require().NoError(err)
	s.Equal(2, updated.Level)
	s.Equal(0, updated.Experience)
}

func (s *ServiceSuite) TestAddExperienceAccumulates() {
	c := s.create("Aria", model.ClassWarrior)

	_, err := s.service.AddExperience(s.ctx, c.ID, 40)
	s.Require().NoError(err)
	updated, err := s.service.AddExperience(s.ctx, c.ID, 40)
	s.Require().NoError(err)

	s.Equal(1, updated.Level)
	s.Equal(80, updated.Experience)
}

func (s *ServiceSuite) TestAddExperienceRejectsNonPositive() {
	c := s.create("Aria", model.ClassWarrior)

	_, err := s.service.AddExperience(s.ctx, c.ID, 0)
	s.ErrorIs(err, model.ErrInvalidInput)
}

// Battle tests

func (s *ServiceSuite) TestBattleStrongerWins() {
	weak := s.create("Weak", model.ClassHealer)   // power 50+80+10
	strong := s.create("Strong", model.ClassArcher) // power 100+110+10

	result, err := s.service.Battle(s.ctx, weak.ID, strong.ID)
	s.Require().NoError(err)

	s.Equal(strong.ID, result.Winner.ID)
	s.Equal(weak.ID, result.Loser.ID)
	s.Equal(2, result.Winner.Level)
	s.Equal(0, result.Winner.Experience)
}

func (s *ServiceSuite) TestBattleTieGoesToSecond() {
	a := s.create("Aria", model.ClassWarrior)
	b := s.create("Bree", model.ClassWarrior)

	result, err := s.service.Battle(s.ctx, a.ID, b.ID)
	s.Require().NoError(err)
	s.Equal(b.ID, result.Winner.ID)
	s.Equal(a.ID, result.Loser.ID)
}

func (s *ServiceSuite) TestBattleAddsExperienceBelowThreshold() {
	a := s.create("Aria", model.ClassWarrior)
	b, err := s.service.Create(s.ctx, CreateInput{Name: "Vet", Class: model.ClassWarrior, Level: intPtr(3)}, "")
	s.Require().NoError(err)

	result, err := s.service.Battle(s.ctx, a.ID, b.ID)
	s.Require().NoError(err)
	s.Equal(b.ID, result.Winner.ID)
	s.Equal(3, result.Winner.Level)
	s.Equal(100, result.Winner.Experience)
}

func (s *ServiceSuite) TestBattleRejectsSameOrMissingIDs() {
	a := s.create("Aria", model.ClassWarrior)

	_, err := s.service.Battle(s.ctx, a.ID, a.ID)
	s.ErrorIs(err, model.ErrInvalidInput)

	_, err = s.service.Battle(s.ctx, a.ID, "")
	s.ErrorIs(err, model.ErrInvalidInput)

	_, err = s.service.Battle(s.ctx, a.ID, "missing")
	s.ErrorIs(err, model.ErrCharacterNotFound)
}

func (s *ServiceSuite) TestBattleSurvivesLeaderboardFailure() {
	s.service = New(s.storage, brokenLeaderboard{}, s.clock, s.ids, testutil.NopLogger())
	a := s.create("Aria", model.ClassWarrior)
	b := s.create("Bree", model.ClassMage)

	_, err := s.service.Battle(s.ctx, a.ID, b.ID)
	s.NoError(err)
}

// Leaderboard tests

func (s *ServiceSuite) TestLeaderboardRanksByWins() {
	champ := s.create("Champ", model.ClassAssassin)
	a := s.create("Aria", model.ClassHealer)
	b := s.create("Bree", model.ClassHealer)

	_, err := s.service.Battle(s.ctx, a.ID, champ.ID)
	s.Require().NoError(err)
	_, err = s.service.Battle(s.ctx, b.ID, champ.ID)
	s.Require().NoError(err)
	_, err = s.service.Battle(s.ctx, a.ID, b.ID)
	s.Require().NoError(err)

	entries, err := s.service.Leaderboard(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal(champ.ID, entries[0].CharacterID)
	s.Equal("Champ", entries[0].Name)
	s.Equal(2, entries[0].Wins)
	s.Equal(1, entries[0].Rank)
	s.Equal(b.ID, entries[1].CharacterID)
	s.Equal(1, entries[1].Losses)
}

func (s *ServiceSuite) TestLeaderboardDropsDeletedCharacters() {
	a := s.create("Aria", model.ClassHealer)
	b := s.create("Bree", model.ClassAssassin)
	_, err := s.service.Battle(s.ctx, a.ID, b.ID)
	s.Require().NoError(err)

	_, err = s.service.Delete(s.ctx, b.ID)
	s.Require().NoError(err)

	entries, err := s.service.Leaderboard(s.ctx, 10)
	s.Require().NoError(err)
	s.Empty(entries)
}

// List tests

func (s *ServiceSuite) TestListPaginationCoversAllMatches() {
	for i := range 23 {
		s.create(fmt.Sprintf("Hero %02d", i), model.AllClasses[i%len(model.AllClasses)])
	}

	var seen []model.CharacterID
	page, err := s.service.List(s.ctx, model.CharacterQuery{Page: 1, Limit: 5})
	s.Require().NoError(err)
	s.Equal(model.PageInfo{CurrentPage: 1, TotalPages: 5, TotalItems: 23, ItemsPerPage: 5}, page.PageInfo)

	for p := 1; p <= page.PageInfo.TotalPages; p++ {
		res, err := s.service.List(s.ctx, model.CharacterQuery{Page: p, Limit: 5})
		s.Require().NoError(err)
		for _, c := range res.Characters {
			seen = append(seen, c.ID)
		}
	}
	s.Len(seen, 23)
	unique := map[model.CharacterID]bool{}
	for _, id := range seen {
		unique[id] = true
	}
	s.Len(unique, 23)
}

func (s *ServiceSuite) TestListNormalizesPaging() {
	s.create("Aria", model.ClassWarrior)

	page, err := s.service.List(s.ctx, model.CharacterQuery{Page: -3, Limit: 0, SortOrder: "sideways"})
	s.Require().NoError(err)
	s.Equal(1, page.PageInfo.CurrentPage)
	s.Equal(10, page.PageInfo.ItemsPerPage)
	s.Len(page.Characters, 1)
}

func (s *ServiceSuite) TestListRejectsUnknownSortField() {
	_, err := s.service.List(s.ctx, model.CharacterQuery{SortBy: "password"})
	s.ErrorIs(err, model.ErrInvalidInput)
}

func (s *ServiceSuite) TestListEmpty() {
	page, err := s.service.List(s.ctx, model.CharacterQuery{})
	s.Require().NoError(err)
	s.Empty(page.Characters)
	s.Equal(0, page.PageInfo.TotalPages)
	s.Equal(0, page.PageInfo.TotalItems)
}
