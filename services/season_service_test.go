package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dosada05/club-ranking/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seasonFixture struct {
	tx         *fakeTxRunner
	seasonRepo *fakeSeasonRepo
	ladderRepo *fakeLadderRepo
	boxRepo    *fakeBoxRepo
	matchRepo  *fakeMatchRepo
	notifier   *fakeNotifier
	uploader   *fakeUploader
	service    SeasonService
}

func newSeasonFixture() *seasonFixture {
	f := &seasonFixture{
		tx:         &fakeTxRunner{},
		seasonRepo: newFakeSeasonRepo(),
		ladderRepo: newFakeLadderRepo(),
		boxRepo:    newFakeBoxRepo(),
		matchRepo:  newFakeMatchRepo(),
		notifier:   &fakeNotifier{},
		uploader:   &fakeUploader{},
	}
	standings := NewStandingsService(f.seasonRepo, f.ladderRepo, f.boxRepo, f.matchRepo)
	promotions := NewPromotionService(f.seasonRepo, f.boxRepo, standings)
	f.service = NewSeasonService(
		f.tx, f.seasonRepo, f.ladderRepo, f.boxRepo,
		standings, promotions, f.uploader, f.notifier, testLogger(),
	)
	return f
}

func seasonDates() (time.Time, time.Time) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 3, 0)
}

func TestCreateSeason_Ladder(t *testing.T) {
	f := newSeasonFixture()
	start, end := seasonDates()

	season, err := f.service.CreateSeason(context.Background(), CreateSeasonInput{
		ClubID: 1, Name: "Spring Ladder", Type: models.SeasonLadder,
		StartDate: start, EndDate: end,
	})
	require.NoError(t, err)
	assert.True(t, season.IsActive)
	require.NotNil(t, season.Ladder)
	assert.Equal(t, "elo", season.Ladder.Algorithm)
	assert.Equal(t, 1, f.tx.commits)
}

func TestCreateSeason_BoxWithRule(t *testing.T) {
	f := newSeasonFixture()
	start, end := seasonDates()

	season, err := f.service.CreateSeason(context.Background(), CreateSeasonInput{
		ClubID: 1, Name: "Spring Boxes", Type: models.SeasonBox,
		StartDate: start, EndDate: end,
		Boxes: []string{"Premier", "Division 1"}, UpCount: 1, DownCount: 1,
	})
	require.NoError(t, err)
	require.Len(t, season.Boxes, 2)
	assert.Equal(t, 0, season.Boxes[0].Position)
	assert.Equal(t, "Premier", season.Boxes[0].Name)
	require.NotNil(t, season.PromotionRule)
	assert.Equal(t, 1, season.PromotionRule.UpCount)
}

func TestCreateSeason_Validation(t *testing.T) {
	f := newSeasonFixture()
	start, end := seasonDates()

	cases := []struct {
		name string
		in   CreateSeasonInput
		want error
	}{
		{
			"empty name",
			CreateSeasonInput{Type: models.SeasonLadder, StartDate: start, EndDate: end},
			ErrSeasonValidationFailed,
		},
		{
			"unknown type",
			CreateSeasonInput{Name: "X", Type: "swiss", StartDate: start, EndDate: end},
			ErrSeasonValidationFailed,
		},
		{
			"dates inverted",
			CreateSeasonInput{Name: "X", Type: models.SeasonLadder, StartDate: end, EndDate: start},
			ErrSeasonValidationFailed,
		},
		{
			"box season without boxes",
			CreateSeasonInput{Name: "X", Type: models.SeasonBox, StartDate: start, EndDate: end},
			ErrSeasonValidationFailed,
		},
		{
			"negative rule",
			CreateSeasonInput{Name: "X", Type: models.SeasonBox, StartDate: start, EndDate: end, Boxes: []string{"A"}, UpCount: -1},
			ErrInvalidPromotionRule,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.service.CreateSeason(context.Background(), tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Equal(t, 0, f.tx.commits)
}

func TestGetSeason_LoadsRelations(t *testing.T) {
	f := newSeasonFixture()
	f.seasonRepo.seasons[1] = &models.Season{ID: 1, Type: models.SeasonBox}
	f.seasonRepo.rules[1] = &models.PromotionRule{SeasonID: 1, UpCount: 2, DownCount: 2}
	f.boxRepo.addBox(1, "Premier", 0)
	f.boxRepo.addBox(1, "Division 1", 1)

	season, err := f.service.GetSeason(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, season.Boxes, 2)
	require.NotNil(t, season.PromotionRule)
	assert.Equal(t, 2, season.PromotionRule.UpCount)
}

func TestRolloverSeason_AppliesMovementsAndArchives(t *testing.T) {
	f := newSeasonFixture()
	f.seasonRepo.seasons[1] = &models.Season{ID: 1, Type: models.SeasonBox, IsActive: true}
	f.seasonRepo.rules[1] = &models.PromotionRule{SeasonID: 1, UpCount: 1, DownCount: 1}

	top := f.boxRepo.addBox(1, "Premier", 0)
	bottom := f.boxRepo.addBox(1, "Division 1", 1)
	for seed, playerID := range []int{11, 12, 13} {
		f.boxRepo.addMembership(top.ID, playerID, seed+1)
	}
	for seed, playerID := range []int{21, 22, 23} {
		f.boxRepo.addMembership(bottom.ID, playerID, seed+1)
	}
	// Premier: 11 > 12 > 13; Division 1: 21 > 22 > 23.
	f.matchRepo.playedByBox[top.ID] = []*models.Match{
		playedMatch(top.ID, 11, 12, 11),
		playedMatch(top.ID, 11, 13, 11),
		playedMatch(top.ID, 12, 13, 12),
	}
	f.matchRepo.playedByBox[bottom.ID] = []*models.Match{
		playedMatch(bottom.ID, 21, 22, 21),
		playedMatch(bottom.ID, 21, 23, 21),
		playedMatch(bottom.ID, 22, 23, 22),
	}

	out, err := f.service.RolloverSeason(context.Background(), 1)
	require.NoError(t, err)

	// Последний из Premier вниз, лучший из Division 1 вверх.
	expect := []models.Movement{
		{PlayerID: 13, FromBoxID: top.ID, ToBoxID: bottom.ID, Direction: models.MovementDown},
		{PlayerID: 21, FromBoxID: bottom.ID, ToBoxID: top.ID, Direction: models.MovementUp},
	}
	assert.ElementsMatch(t, expect, out.Movements)
	assert.Len(t, f.boxRepo.moves, 2)

	// Сезон закрыт, снимок выгружен, факт опубликован.
	assert.False(t, f.seasonRepo.seasons[1].IsActive)
	assert.Equal(t, 1, f.tx.commits)
	require.Len(t, f.uploader.keys, 1)
	assert.Contains(t, out.SnapshotURL, "snapshots/season_1_")
	require.Len(t, f.notifier.rolloverFacts, 1)
	assert.Equal(t, out.SnapshotURL, f.notifier.rolloverFacts[0].SnapshotURL)
}

func TestRolloverSeason_MoveFailureRollsBack(t *testing.T) {
	f := newSeasonFixture()
	f.seasonRepo.seasons[1] = &models.Season{ID: 1, Type: models.SeasonBox, IsActive: true}
	f.seasonRepo.rules[1] = &models.PromotionRule{SeasonID: 1, UpCount: 1, DownCount: 1}
	top := f.boxRepo.addBox(1, "Premier", 0)
	bottom := f.boxRepo.addBox(1, "Division 1", 1)
	f.boxRepo.addMembership(top.ID, 11, 1)
	f.boxRepo.addMembership(top.ID, 12, 2)
	f.boxRepo.addMembership(bottom.ID, 21, 1)
	f.boxRepo.addMembership(bottom.ID, 22, 2)

	f.boxRepo.moveErr = errors.New("membership gone")

	_, err := f.service.RolloverSeason(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, 0, f.tx.commits)
	assert.Equal(t, 1, f.tx.rollbacks)
	// Сезон остаётся активным, снимок не выгружается, факт не публикуется.
	assert.True(t, f.seasonRepo.seasons[1].IsActive)
	assert.Empty(t, f.uploader.keys)
	assert.Empty(t, f.notifier.rolloverFacts)
}

func TestRolloverSeason_UploadFailureIsBestEffort(t *testing.T) {
	f := newSeasonFixture()
	f.seasonRepo.seasons[1] = &models.Season{ID: 1, Type: models.SeasonBox, IsActive: true}
	f.seasonRepo.rules[1] = &models.PromotionRule{SeasonID: 1, UpCount: 0, DownCount: 0}
	box := f.boxRepo.addBox(1, "Only", 0)
	f.boxRepo.addMembership(box.ID, 11, 1)

	f.uploader.uploadErr = errors.New("bucket unavailable")

	out, err := f.service.RolloverSeason(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, out.SnapshotURL)
	assert.False(t, f.seasonRepo.seasons[1].IsActive)
	require.Len(t, f.notifier.rolloverFacts, 1)
}

func TestRolloverSeason_LadderSeasonRejected(t *testing.T) {
	f := newSeasonFixture()
	f.seasonRepo.seasons[1] = &models.Season{ID: 1, Type: models.SeasonLadder, IsActive: true}

	_, err := f.service.RolloverSeason(context.Background(), 1)
	assert.ErrorIs(t, err, ErrSeasonNotBox)
	assert.True(t, f.seasonRepo.seasons[1].IsActive)
}
