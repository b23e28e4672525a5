package services

import (
	"context"
	"testing"

	"github.com/Dosada05/club-ranking/models"
	"github.com/Dosada05/club-ranking/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type matchFixture struct {
	tx         *fakeTxRunner
	matchRepo  *fakeMatchRepo
	seasonRepo *fakeSeasonRepo
	boxRepo    *fakeBoxRepo
	service    MatchService
}

func newMatchFixture() *matchFixture {
	f := &matchFixture{
		tx:         &fakeTxRunner{},
		matchRepo:  newFakeMatchRepo(),
		seasonRepo: newFakeSeasonRepo(),
		boxRepo:    newFakeBoxRepo(),
	}
	f.service = NewMatchService(f.tx, f.matchRepo, f.seasonRepo, f.boxRepo, testLogger())
	return f
}

func TestCreateMatch_LadderSeason(t *testing.T) {
	f := newMatchFixture()
	f.seasonRepo.seasons[1] = &models.Season{ID: 1, Type: models.SeasonLadder}

	match, err := f.service.CreateMatch(context.Background(), CreateMatchInput{
		SeasonID: 1, PlayerAID: 10, PlayerBID: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, models.MatchPending, match.Status)
	assert.Nil(t, match.BoxID)
}

func TestCreateMatch_SamePlayerRejected(t *testing.T) {
	f := newMatchFixture()
	f.seasonRepo.seasons[1] = &models.Season{ID: 1, Type: models.SeasonLadder}

	_, err := f.service.CreateMatch(context.Background(), CreateMatchInput{
		SeasonID: 1, PlayerAID: 10, PlayerBID: 10,
	})
	assert.ErrorIs(t, err, ErrSamePlayer)
}

func TestCreateMatch_BoxSeasonRequiresBox(t *testing.T) {
	f := newMatchFixture()
	f.seasonRepo.seasons[1] = &models.Season{ID: 1, Type: models.SeasonBox}

	_, err := f.service.CreateMatch(context.Background(), CreateMatchInput{
		SeasonID: 1, PlayerAID: 10, PlayerBID: 20,
	})
	assert.ErrorIs(t, err, ErrSeasonValidationFailed)

	boxID := 5
	match, err := f.service.CreateMatch(context.Background(), CreateMatchInput{
		SeasonID: 1, BoxID: &boxID, PlayerAID: 10, PlayerBID: 20,
	})
	require.NoError(t, err)
	require.NotNil(t, match.BoxID)
	assert.Equal(t, 5, *match.BoxID)
}

func TestCreateMatch_LadderSeasonRejectsBox(t *testing.T) {
	f := newMatchFixture()
	f.seasonRepo.seasons[1] = &models.Season{ID: 1, Type: models.SeasonLadder}

	boxID := 5
	_, err := f.service.CreateMatch(context.Background(), CreateMatchInput{
		SeasonID: 1, BoxID: &boxID, PlayerAID: 10, PlayerBID: 20,
	})
	assert.ErrorIs(t, err, ErrSeasonValidationFailed)
}

func TestCreateMatch_UnknownPlayerMapped(t *testing.T) {
	f := newMatchFixture()
	f.seasonRepo.seasons[1] = &models.Season{ID: 1, Type: models.SeasonLadder}
	f.matchRepo.createErr = repositories.ErrMatchPlayerInvalid

	_, err := f.service.CreateMatch(context.Background(), CreateMatchInput{
		SeasonID: 1, PlayerAID: 10, PlayerBID: 999,
	})
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestListSeasonMatches_Filter(t *testing.T) {
	f := newMatchFixture()
	f.matchRepo.add(&models.Match{SeasonID: 1, PlayerAID: 10, PlayerBID: 20, Status: models.MatchPending})
	f.matchRepo.add(&models.Match{SeasonID: 1, PlayerAID: 10, PlayerBID: 30, Status: models.MatchPlayed})
	f.matchRepo.add(&models.Match{SeasonID: 2, PlayerAID: 10, PlayerBID: 20, Status: models.MatchPending})

	pending := models.MatchPending
	matches, err := f.service.ListSeasonMatches(context.Background(), 1, repositories.MatchFilter{Status: &pending})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 20, matches[0].PlayerBID)
}

func TestRecordWalkover(t *testing.T) {
	f := newMatchFixture()
	match := f.matchRepo.add(&models.Match{SeasonID: 1, PlayerAID: 10, PlayerBID: 20, Status: models.MatchPending})

	updated, err := f.service.RecordWalkover(context.Background(), match.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, models.MatchWalkover, updated.Status)

	// Walkover — конечное состояние: повторная попытка отклоняется.
	_, err = f.service.RecordWalkover(context.Background(), match.ID, 10)
	assert.ErrorIs(t, err, ErrMatchNotPending)
}

func TestRecordWalkover_WinnerMustPlay(t *testing.T) {
	f := newMatchFixture()
	match := f.matchRepo.add(&models.Match{SeasonID: 1, PlayerAID: 10, PlayerBID: 20, Status: models.MatchPending})

	_, err := f.service.RecordWalkover(context.Background(), match.ID, 999)
	assert.ErrorIs(t, err, ErrInvalidWinner)
}

func TestCancelMatch(t *testing.T) {
	f := newMatchFixture()
	match := f.matchRepo.add(&models.Match{SeasonID: 1, PlayerAID: 10, PlayerBID: 20, Status: models.MatchPending})

	updated, err := f.service.CancelMatch(context.Background(), match.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchCancelled, updated.Status)
}

func TestCancelMatch_PlayedRejected(t *testing.T) {
	f := newMatchFixture()
	match := f.matchRepo.add(&models.Match{SeasonID: 1, PlayerAID: 10, PlayerBID: 20, Status: models.MatchPlayed})

	_, err := f.service.CancelMatch(context.Background(), match.ID)
	assert.ErrorIs(t, err, ErrMatchNotPending)
}

func TestGenerateBoxFixtures_AllPairsOnce(t *testing.T) {
	f := newMatchFixture()
	box := f.boxRepo.addBox(1, "Premier", 0)
	for seed, playerID := range []int{10, 20, 30, 40} {
		f.boxRepo.addMembership(box.ID, playerID, seed+1)
	}

	matches, err := f.service.GenerateBoxFixtures(context.Background(), box.ID)
	require.NoError(t, err)
	// C(4, 2) = 6 пар.
	assert.Len(t, matches, 6)
	assert.Equal(t, 1, f.tx.commits)

	seen := map[[2]int]int{}
	for _, m := range matches {
		a, b := m.PlayerAID, m.PlayerBID
		if a > b {
			a, b = b, a
		}
		seen[[2]int{a, b}]++
		assert.Equal(t, models.MatchPending, m.Status)
		require.NotNil(t, m.BoxID)
		assert.Equal(t, box.ID, *m.BoxID)
	}
	assert.Len(t, seen, 6)
}

func TestGenerateBoxFixtures_IdempotentForExistingPairs(t *testing.T) {
	f := newMatchFixture()
	box := f.boxRepo.addBox(1, "Premier", 0)
	for seed, playerID := range []int{10, 20, 30} {
		f.boxRepo.addMembership(box.ID, playerID, seed+1)
	}

	first, err := f.service.GenerateBoxFixtures(context.Background(), box.ID)
	require.NoError(t, err)
	assert.Len(t, first, 3)

	// Повторный вызов не плодит дубликаты пар.
	second, err := f.service.GenerateBoxFixtures(context.Background(), box.ID)
	require.NoError(t, err)
	assert.Empty(t, second)
	assert.Equal(t, 1, f.tx.commits)
}

func TestGenerateBoxFixtures_TooFewPlayers(t *testing.T) {
	f := newMatchFixture()
	box := f.boxRepo.addBox(1, "Premier", 0)
	f.boxRepo.addMembership(box.ID, 10, 1)

	_, err := f.service.GenerateBoxFixtures(context.Background(), box.ID)
	assert.ErrorIs(t, err, ErrSeasonValidationFailed)
}

func TestCancelMatch_ConcurrentTransition(t *testing.T) {
	f := newMatchFixture()
	match := f.matchRepo.add(&models.Match{SeasonID: 1, PlayerAID: 10, PlayerBID: 20, Status: models.MatchPending})

	// Между загрузкой и UPDATE статус сменили: условный апдейт не находит
	// строку в pending.
	f.matchRepo.statusErr = repositories.ErrMatchNotFound

	_, err := f.service.CancelMatch(context.Background(), match.ID)
	assert.ErrorIs(t, err, ErrMatchNotPending)
}
