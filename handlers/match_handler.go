package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Dosada05/club-ranking/models"
	"github.com/Dosada05/club-ranking/repositories"
	"github.com/Dosada05/club-ranking/services"
)

type MatchHandler struct {
	matchService  services.MatchService
	resultService services.ResultService
}

func NewMatchHandler(ms services.MatchService, rs services.ResultService) *MatchHandler {
	return &MatchHandler{
		matchService:  ms,
		resultService: rs,
	}
}

// CreateHandler обрабатывает POST /matches
func (h *MatchHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.CreateMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.CreateMatch(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler обрабатывает GET /matches/{matchID}
func (h *MatchHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetMatch(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListBySeasonHandler обрабатывает GET /seasons/{seasonID}/matches
func (h *MatchHandler) ListBySeasonHandler(w http.ResponseWriter, r *http.Request) {
	seasonID, err := getIDFromURL(r, "seasonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var filter repositories.MatchFilter
	query := r.URL.Query()

	if playerIDStr := query.Get("player_id"); playerIDStr != "" {
		if id, parseErr := strconv.Atoi(playerIDStr); parseErr == nil && id > 0 {
			filter.PlayerID = &id
		} else {
			badRequestResponse(w, r, errors.New("invalid player_id query parameter"))
			return
		}
	}
	if boxIDStr := query.Get("box_id"); boxIDStr != "" {
		if id, parseErr := strconv.Atoi(boxIDStr); parseErr == nil && id > 0 {
			filter.BoxID = &id
		} else {
			badRequestResponse(w, r, errors.New("invalid box_id query parameter"))
			return
		}
	}
	if statusStr := query.Get("status"); statusStr != "" {
		status := models.MatchStatus(statusStr)
		switch status {
		case models.MatchPending, models.MatchPlayed, models.MatchWalkover, models.MatchCancelled:
			filter.Status = &status
		default:
			badRequestResponse(w, r, errors.New("invalid status query parameter"))
			return
		}
	}

	matches, err := h.matchService.ListSeasonMatches(r.Context(), seasonID, filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GenerateFixturesHandler обрабатывает POST /boxes/{boxID}/fixtures
func (h *MatchHandler) GenerateFixturesHandler(w http.ResponseWriter, r *http.Request) {
	boxID, err := getIDFromURL(r, "boxID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.GenerateBoxFixtures(r.Context(), boxID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SubmitResultHandler обрабатывает POST /matches/{matchID}/result
func (h *MatchHandler) SubmitResultHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		WinnerID           int              `json:"winner_id"`
		Sets               models.SetScores `json:"sets"`
		ReportedByPlayerID int              `json:"reported_by_player_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	out, err := h.resultService.SubmitResult(r.Context(), id, services.SubmitResultInput{
		WinnerID:           input.WinnerID,
		Sets:               input.Sets,
		ReportedByPlayerID: input.ReportedByPlayerID,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{
		"result":         out.Result,
		"rating_changes": out.RatingChanges,
	}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PreviewRatingHandler обрабатывает GET /matches/{matchID}/rating-preview?winner_id=N
func (h *MatchHandler) PreviewRatingHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	winnerID, err := strconv.Atoi(r.URL.Query().Get("winner_id"))
	if err != nil || winnerID <= 0 {
		badRequestResponse(w, r, errors.New("invalid winner_id query parameter"))
		return
	}

	changes, err := h.resultService.PreviewRatingChange(r.Context(), id, winnerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rating_changes": changes}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// WalkoverHandler обрабатывает POST /matches/{matchID}/walkover
func (h *MatchHandler) WalkoverHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		WinnerID int `json:"winner_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.RecordWalkover(r.Context(), id, input.WinnerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CancelHandler обрабатывает POST /matches/{matchID}/cancel
func (h *MatchHandler) CancelHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.CancelMatch(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
