package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dosada05/club-ranking/models"
	"github.com/Dosada05/club-ranking/repositories"
	"github.com/Dosada05/club-ranking/services"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMatchService struct {
	match    *models.Match
	matches  []*models.Match
	err      error
	fixtures []*models.Match
}

func (s *stubMatchService) CreateMatch(context.Context, services.CreateMatchInput) (*models.Match, error) {
	return s.match, s.err
}

func (s *stubMatchService) GetMatch(context.Context, int) (*models.Match, error) {
	return s.match, s.err
}

func (s *stubMatchService) ListSeasonMatches(context.Context, int, repositories.MatchFilter) ([]*models.Match, error) {
	return s.matches, s.err
}

func (s *stubMatchService) RecordWalkover(context.Context, int, int) (*models.Match, error) {
	return s.match, s.err
}

func (s *stubMatchService) CancelMatch(context.Context, int) (*models.Match, error) {
	return s.match, s.err
}

func (s *stubMatchService) GenerateBoxFixtures(context.Context, int) ([]*models.Match, error) {
	return s.fixtures, s.err
}

type stubResultService struct {
	out     *services.SubmitResultOutput
	preview []models.RatingChange
	err     error

	gotMatchID int
	gotInput   services.SubmitResultInput
}

func (s *stubResultService) SubmitResult(_ context.Context, matchID int, in services.SubmitResultInput) (*services.SubmitResultOutput, error) {
	s.gotMatchID = matchID
	s.gotInput = in
	return s.out, s.err
}

func (s *stubResultService) PreviewRatingChange(context.Context, int, int) ([]models.RatingChange, error) {
	return s.preview, s.err
}

func newMatchRouter(ms services.MatchService, rs services.ResultService) *chi.Mux {
	h := NewMatchHandler(ms, rs)
	router := chi.NewRouter()
	router.Post("/matches/{matchID}/result", h.SubmitResultHandler)
	router.Get("/matches/{matchID}/rating-preview", h.PreviewRatingHandler)
	router.Get("/matches/{matchID}", h.GetByIDHandler)
	router.Post("/matches/{matchID}/walkover", h.WalkoverHandler)
	return router
}

func TestSubmitResultHandler_Created(t *testing.T) {
	rs := &stubResultService{
		out: &services.SubmitResultOutput{
			Result: &models.Result{ID: 1, MatchID: 7, WinnerID: 10},
			RatingChanges: []models.RatingChange{
				{PlayerID: 10, OldRating: 1200, NewRating: 1220, Delta: 20},
				{PlayerID: 20, OldRating: 1300, NewRating: 1280, Delta: -20},
			},
		},
	}
	router := newMatchRouter(&stubMatchService{}, rs)

	body := `{"winner_id": 10, "sets": [{"a": 6, "b": 4}, {"a": 6, "b": 3}], "reported_by_player_id": 10}`
	req := httptest.NewRequest(http.MethodPost, "/matches/7/result", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 7, rs.gotMatchID)
	assert.Equal(t, 10, rs.gotInput.WinnerID)
	require.Len(t, rs.gotInput.Sets, 2)

	var resp struct {
		Result        *models.Result        `json:"result"`
		RatingChanges []models.RatingChange `json:"rating_changes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.RatingChanges, 2)
	assert.Equal(t, 20, resp.RatingChanges[0].Delta)
}

func TestSubmitResultHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"duplicate result", services.ErrDuplicateResult, http.StatusConflict},
		{"match not found", services.ErrMatchNotFound, http.StatusNotFound},
		{"invalid winner", services.ErrInvalidWinner, http.StatusBadRequest},
		{"bad score", services.ErrInvalidScoreFormat, http.StatusBadRequest},
		{"match not pending", services.ErrMatchNotPending, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newMatchRouter(&stubMatchService{}, &stubResultService{err: tc.err})

			body := `{"winner_id": 10, "sets": [{"a": 6, "b": 4}], "reported_by_player_id": 10}`
			req := httptest.NewRequest(http.MethodPost, "/matches/7/result", strings.NewReader(body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}

func TestSubmitResultHandler_BadJSON(t *testing.T) {
	router := newMatchRouter(&stubMatchService{}, &stubResultService{})

	cases := []struct {
		name string
		body string
	}{
		{"malformed", `{"winner_id": `},
		{"empty", ``},
		{"unknown field", `{"winner": 10}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/matches/7/result", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSubmitResultHandler_BadMatchID(t *testing.T) {
	router := newMatchRouter(&stubMatchService{}, &stubResultService{})

	req := httptest.NewRequest(http.MethodPost, "/matches/abc/result", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreviewRatingHandler(t *testing.T) {
	rs := &stubResultService{
		preview: []models.RatingChange{
			{PlayerID: 10, Delta: 16},
			{PlayerID: 20, Delta: -16},
		},
	}
	router := newMatchRouter(&stubMatchService{}, rs)

	req := httptest.NewRequest(http.MethodGet, "/matches/7/rating-preview?winner_id=10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		RatingChanges []models.RatingChange `json:"rating_changes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.RatingChanges, 2)
}

func TestPreviewRatingHandler_MissingWinner(t *testing.T) {
	router := newMatchRouter(&stubMatchService{}, &stubResultService{})

	req := httptest.NewRequest(http.MethodGet, "/matches/7/rating-preview", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWalkoverHandler(t *testing.T) {
	ms := &stubMatchService{match: &models.Match{ID: 7, Status: models.MatchWalkover}}
	router := newMatchRouter(ms, &stubResultService{})

	req := httptest.NewRequest(http.MethodPost, "/matches/7/walkover", strings.NewReader(`{"winner_id": 10}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Match *models.Match `json:"match"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.MatchWalkover, resp.Match.Status)
}
