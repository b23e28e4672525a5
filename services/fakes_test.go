package services

import (
	"context"
	"io"
	"log/slog"
	"sort"

	"github.com/Dosada05/club-ranking/models"
	"github.com/Dosada05/club-ranking/notify"
	"github.com/Dosada05/club-ranking/repositories"
	"github.com/Dosada05/club-ranking/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTxRunner исполняет fn напрямую, считая коммиты и откаты. Ошибка fn
// трактуется как откат, как в sqlTxRunner.
type fakeTxRunner struct {
	commits   int
	rollbacks int
	beginErr  error
}

func (r *fakeTxRunner) InTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	if r.beginErr != nil {
		return r.beginErr
	}
	if err := fn(nil); err != nil {
		r.rollbacks++
		return err
	}
	r.commits++
	return nil
}

type fakeMatchRepo struct {
	matches       map[int]*models.Match
	playedByBox   map[int][]*models.Match
	nextID        int
	createErr     error
	statusUpdates []models.MatchStatus
	statusErr     error
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: map[int]*models.Match{}, playedByBox: map[int][]*models.Match{}, nextID: 1}
}

func (r *fakeMatchRepo) add(m *models.Match) *models.Match {
	if m.ID == 0 {
		m.ID = r.nextID
		r.nextID++
	}
	r.matches[m.ID] = m
	return m
}

func (r *fakeMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	if r.createErr != nil {
		return r.createErr
	}
	if match.PlayerAID == match.PlayerBID {
		return repositories.ErrMatchSamePlayer
	}
	r.add(match)
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id int) (*models.Match, error) {
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMatchRepo) ListBySeason(_ context.Context, seasonID int, filter repositories.MatchFilter) ([]*models.Match, error) {
	out := make([]*models.Match, 0)
	for _, m := range r.matches {
		if m.SeasonID != seasonID {
			continue
		}
		if filter.Status != nil && m.Status != *filter.Status {
			continue
		}
		if filter.PlayerID != nil && !m.HasPlayer(*filter.PlayerID) {
			continue
		}
		if filter.BoxID != nil && (m.BoxID == nil || *m.BoxID != *filter.BoxID) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeMatchRepo) ListPlayedByBox(_ context.Context, boxID int) ([]*models.Match, error) {
	return r.playedByBox[boxID], nil
}

func (r *fakeMatchRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, from, to models.MatchStatus) error {
	if r.statusErr != nil {
		return r.statusErr
	}
	m, ok := r.matches[id]
	if !ok || m.Status != from {
		return repositories.ErrMatchNotFound
	}
	m.Status = to
	r.statusUpdates = append(r.statusUpdates, to)
	return nil
}

type fakeResultRepo struct {
	byMatch   map[int]*models.Result
	createErr error
	nextID    int
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{byMatch: map[int]*models.Result{}, nextID: 1}
}

func (r *fakeResultRepo) Create(_ context.Context, _ repositories.SQLExecutor, result *models.Result) error {
	if r.createErr != nil {
		return r.createErr
	}
	if _, exists := r.byMatch[result.MatchID]; exists {
		return repositories.ErrResultConflict
	}
	result.ID = r.nextID
	r.nextID++
	r.byMatch[result.MatchID] = result
	return nil
}

func (r *fakeResultRepo) GetByMatchID(_ context.Context, matchID int) (*models.Result, error) {
	res, ok := r.byMatch[matchID]
	if !ok {
		return nil, repositories.ErrResultNotFound
	}
	return res, nil
}

type fakePlayerRepo struct {
	players      map[int]*models.Player
	nextID       int
	incrementErr error
	ratingErr    error
	increments   []int
}

func newFakePlayerRepo(players ...*models.Player) *fakePlayerRepo {
	repo := &fakePlayerRepo{players: map[int]*models.Player{}, nextID: 1}
	for _, p := range players {
		repo.players[p.ID] = p
		if p.ID >= repo.nextID {
			repo.nextID = p.ID + 1
		}
	}
	return repo
}

func (r *fakePlayerRepo) Create(_ context.Context, _ repositories.SQLExecutor, player *models.Player) error {
	player.ID = r.nextID
	r.nextID++
	r.players[player.ID] = player
	return nil
}

func (r *fakePlayerRepo) GetByID(_ context.Context, id int) (*models.Player, error) {
	p, ok := r.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakePlayerRepo) ListByClub(_ context.Context, clubID int) ([]*models.Player, error) {
	out := make([]*models.Player, 0)
	for _, p := range r.players {
		if p.ClubID == clubID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakePlayerRepo) UpdateRating(_ context.Context, _ repositories.SQLExecutor, id int, newRating float64) error {
	if r.ratingErr != nil {
		return r.ratingErr
	}
	p, ok := r.players[id]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.Rating = newRating
	return nil
}

func (r *fakePlayerRepo) IncrementGamesPlayed(_ context.Context, _ repositories.SQLExecutor, id int) error {
	if r.incrementErr != nil {
		return r.incrementErr
	}
	p, ok := r.players[id]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.GamesPlayed++
	r.increments = append(r.increments, id)
	return nil
}

type fakeSeasonRepo struct {
	seasons map[int]*models.Season
	rules   map[int]*models.PromotionRule
	nextID  int
}

func newFakeSeasonRepo(seasons ...*models.Season) *fakeSeasonRepo {
	repo := &fakeSeasonRepo{seasons: map[int]*models.Season{}, rules: map[int]*models.PromotionRule{}, nextID: 1}
	for _, s := range seasons {
		repo.seasons[s.ID] = s
		if s.ID >= repo.nextID {
			repo.nextID = s.ID + 1
		}
	}
	return repo
}

func (r *fakeSeasonRepo) Create(_ context.Context, _ repositories.SQLExecutor, season *models.Season) error {
	season.ID = r.nextID
	r.nextID++
	r.seasons[season.ID] = season
	return nil
}

func (r *fakeSeasonRepo) GetByID(_ context.Context, id int) (*models.Season, error) {
	s, ok := r.seasons[id]
	if !ok {
		return nil, repositories.ErrSeasonNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSeasonRepo) ListByClub(_ context.Context, clubID int) ([]*models.Season, error) {
	out := make([]*models.Season, 0)
	for _, s := range r.seasons {
		if s.ClubID == clubID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeSeasonRepo) SetActive(_ context.Context, _ repositories.SQLExecutor, id int, active bool) error {
	s, ok := r.seasons[id]
	if !ok {
		return repositories.ErrSeasonNotFound
	}
	s.IsActive = active
	return nil
}

func (r *fakeSeasonRepo) CreatePromotionRule(_ context.Context, _ repositories.SQLExecutor, rule *models.PromotionRule) error {
	rule.ID = len(r.rules) + 1
	r.rules[rule.SeasonID] = rule
	return nil
}

func (r *fakeSeasonRepo) GetPromotionRule(_ context.Context, seasonID int) (*models.PromotionRule, error) {
	rule, ok := r.rules[seasonID]
	if !ok {
		return nil, repositories.ErrPromotionRuleNotFound
	}
	return rule, nil
}

type membershipKey struct {
	ladderID int
	playerID int
}

type fakeLadderRepo struct {
	ladders     map[int]*models.Ladder // по season_id
	memberships map[membershipKey]*models.LadderMembership
	players     map[int]*models.Player
	nextID      int
}

func newFakeLadderRepo() *fakeLadderRepo {
	return &fakeLadderRepo{
		ladders:     map[int]*models.Ladder{},
		memberships: map[membershipKey]*models.LadderMembership{},
		players:     map[int]*models.Player{},
		nextID:      1,
	}
}

func (r *fakeLadderRepo) addLadder(seasonID int) *models.Ladder {
	ladder := &models.Ladder{ID: r.nextID, SeasonID: seasonID, Algorithm: "elo"}
	r.nextID++
	r.ladders[seasonID] = ladder
	return ladder
}

func (r *fakeLadderRepo) addMembership(ladderID int, player *models.Player) {
	r.memberships[membershipKey{ladderID, player.ID}] = &models.LadderMembership{
		ID:       len(r.memberships) + 1,
		LadderID: ladderID,
		PlayerID: player.ID,
		Rating:   player.Rating,
	}
	r.players[player.ID] = player
}

func (r *fakeLadderRepo) Create(_ context.Context, _ repositories.SQLExecutor, ladder *models.Ladder) error {
	ladder.ID = r.nextID
	r.nextID++
	r.ladders[ladder.SeasonID] = ladder
	return nil
}

func (r *fakeLadderRepo) GetBySeasonID(_ context.Context, seasonID int) (*models.Ladder, error) {
	ladder, ok := r.ladders[seasonID]
	if !ok {
		return nil, repositories.ErrLadderNotFound
	}
	return ladder, nil
}

func (r *fakeLadderRepo) CreateMembership(_ context.Context, _ repositories.SQLExecutor, membership *models.LadderMembership) error {
	membership.ID = len(r.memberships) + 1
	r.memberships[membershipKey{membership.LadderID, membership.PlayerID}] = membership
	return nil
}

func (r *fakeLadderRepo) GetMembership(_ context.Context, ladderID, playerID int) (*models.LadderMembership, error) {
	m, ok := r.memberships[membershipKey{ladderID, playerID}]
	if !ok {
		return nil, repositories.ErrLadderMembershipNotFound
	}
	return m, nil
}

func (r *fakeLadderRepo) ListMemberships(_ context.Context, ladderID int) ([]*models.LadderMembership, []*models.Player, error) {
	memberships := make([]*models.LadderMembership, 0)
	for _, m := range r.memberships {
		if m.LadderID == ladderID {
			memberships = append(memberships, m)
		}
	}
	sort.Slice(memberships, func(i, j int) bool {
		if memberships[i].Rating != memberships[j].Rating {
			return memberships[i].Rating > memberships[j].Rating
		}
		return memberships[i].PlayerID < memberships[j].PlayerID
	})
	players := make([]*models.Player, len(memberships))
	for i, m := range memberships {
		players[i] = r.players[m.PlayerID]
	}
	return memberships, players, nil
}

func (r *fakeLadderRepo) UpdateMembershipRating(_ context.Context, _ repositories.SQLExecutor, ladderID, playerID int, newRating float64) error {
	m, ok := r.memberships[membershipKey{ladderID, playerID}]
	if !ok {
		return repositories.ErrLadderMembershipNotFound
	}
	m.Rating = newRating
	return nil
}

type fakeBoxRepo struct {
	boxes       map[int]*models.Box
	memberships map[int][]*models.BoxMembership // по box_id
	moves       []models.Movement
	moveErr     error
	nextID      int
}

func newFakeBoxRepo() *fakeBoxRepo {
	return &fakeBoxRepo{boxes: map[int]*models.Box{}, memberships: map[int][]*models.BoxMembership{}, nextID: 1}
}

func (r *fakeBoxRepo) addBox(seasonID int, name string, position int) *models.Box {
	box := &models.Box{ID: r.nextID, SeasonID: seasonID, Name: name, Position: position}
	r.nextID++
	r.boxes[box.ID] = box
	return box
}

func (r *fakeBoxRepo) addMembership(boxID, playerID, seed int) {
	r.memberships[boxID] = append(r.memberships[boxID], &models.BoxMembership{
		ID:       seed,
		BoxID:    boxID,
		PlayerID: playerID,
		Seed:     seed,
	})
}

func (r *fakeBoxRepo) Create(_ context.Context, _ repositories.SQLExecutor, box *models.Box) error {
	box.ID = r.nextID
	r.nextID++
	r.boxes[box.ID] = box
	return nil
}

func (r *fakeBoxRepo) GetByID(_ context.Context, id int) (*models.Box, error) {
	box, ok := r.boxes[id]
	if !ok {
		return nil, repositories.ErrBoxNotFound
	}
	return box, nil
}

func (r *fakeBoxRepo) ListBySeason(_ context.Context, seasonID int) ([]*models.Box, error) {
	out := make([]*models.Box, 0)
	for _, b := range r.boxes {
		if b.SeasonID == seasonID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *fakeBoxRepo) CreateMembership(_ context.Context, _ repositories.SQLExecutor, membership *models.BoxMembership) error {
	r.memberships[membership.BoxID] = append(r.memberships[membership.BoxID], membership)
	return nil
}

func (r *fakeBoxRepo) ListMemberships(_ context.Context, boxID int) ([]*models.BoxMembership, error) {
	members := r.memberships[boxID]
	sort.Slice(members, func(i, j int) bool {
		if members[i].Seed != members[j].Seed {
			return members[i].Seed < members[j].Seed
		}
		return members[i].PlayerID < members[j].PlayerID
	})
	return members, nil
}

func (r *fakeBoxRepo) MovePlayer(_ context.Context, _ repositories.SQLExecutor, fromBoxID, playerID, toBoxID int) error {
	if r.moveErr != nil {
		return r.moveErr
	}
	r.moves = append(r.moves, models.Movement{PlayerID: playerID, FromBoxID: fromBoxID, ToBoxID: toBoxID})
	return nil
}

type fakeNotifier struct {
	resultFacts   []notify.ResultFact
	rolloverFacts []notify.RolloverFact
	err           error
}

func (n *fakeNotifier) ResultRecorded(_ context.Context, fact notify.ResultFact) error {
	if n.err != nil {
		return n.err
	}
	n.resultFacts = append(n.resultFacts, fact)
	return nil
}

func (n *fakeNotifier) SeasonRolledOver(_ context.Context, fact notify.RolloverFact) error {
	if n.err != nil {
		return n.err
	}
	n.rolloverFacts = append(n.rolloverFacts, fact)
	return nil
}

type fakeUploader struct {
	keys      []string
	uploadErr error
}

func (u *fakeUploader) Upload(_ context.Context, key string, _ string, _ io.Reader) (*storage.UploadResult, error) {
	if u.uploadErr != nil {
		return nil, u.uploadErr
	}
	u.keys = append(u.keys, key)
	return &storage.UploadResult{Key: key, Location: "https://cdn.example.com/" + key}, nil
}

func (u *fakeUploader) Delete(_ context.Context, key string) error { return nil }

func (u *fakeUploader) GetPublicURL(key string) string { return "https://cdn.example.com/" + key }
