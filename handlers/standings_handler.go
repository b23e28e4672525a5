package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/club-ranking/services"
)

type StandingsHandler struct {
	standingsService services.StandingsService
	promotionService services.PromotionService
}

func NewStandingsHandler(ss services.StandingsService, ps services.PromotionService) *StandingsHandler {
	return &StandingsHandler{
		standingsService: ss,
		promotionService: ps,
	}
}

// SeasonStandingsHandler обрабатывает GET /seasons/{seasonID}/standings.
// Форма ответа зависит от типа сезона: лестница отдаёт один список,
// box-сезон — таблицу на каждый бокс.
func (h *StandingsHandler) SeasonStandingsHandler(w http.ResponseWriter, r *http.Request) {
	seasonID, err := getIDFromURL(r, "seasonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entries, err := h.standingsService.ComputeLadderStandings(r.Context(), seasonID)
	if err == nil {
		if err := writeJSON(w, http.StatusOK, jsonResponse{"ladder_standings": entries}, nil); err != nil {
			serverErrorResponse(w, r, err)
		}
		return
	}
	if !errors.Is(err, services.ErrSeasonNotLadder) {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	boxStandings, err := h.standingsService.ComputeSeasonStandings(r.Context(), seasonID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"box_standings": boxStandings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// BoxStandingsHandler обрабатывает GET /boxes/{boxID}/standings
func (h *StandingsHandler) BoxStandingsHandler(w http.ResponseWriter, r *http.Request) {
	boxID, err := getIDFromURL(r, "boxID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.standingsService.ComputeBoxStandings(r.Context(), boxID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PromotionsPreviewHandler обрабатывает GET /seasons/{seasonID}/promotions.
// Возвращает директивы перемещений, которые применил бы ролловер, ничего
// не записывая.
func (h *StandingsHandler) PromotionsPreviewHandler(w http.ResponseWriter, r *http.Request) {
	seasonID, err := getIDFromURL(r, "seasonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	movements, err := h.promotionService.ComputePromotions(r.Context(), seasonID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"movements": movements}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
