package handlers

import (
	"net/http"

	"github.com/tabcore/debate-tab/services"
)

type BreakHandler struct {
	service services.BreakService
}

func NewBreakHandler(service services.BreakService) *BreakHandler {
	return &BreakHandler{service: service}
}

// Announce godoc
// @Summary Объявить брейк
// @Tags break
// @Router /tournaments/{tournamentID}/break [post]
func (h *BreakHandler) Announce(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	result, err := h.service.AnnounceBreak(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	_ = writeJSON(w, http.StatusCreated, jsonResponse{"break": result}, nil)
}

func (h *BreakHandler) Quarterfinals(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	result, err := h.service.GenerateQuarterfinals(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	_ = writeJSON(w, http.StatusCreated, jsonResponse{"draw": result}, nil)
}

func (h *BreakHandler) Semifinals(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	priorRoundID, err := h.priorRoundID(w, r)
	if err != nil {
		return
	}
	result, err := h.service.GenerateSemifinals(r.Context(), tournamentID, priorRoundID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	_ = writeJSON(w, http.StatusCreated, jsonResponse{"draw": result}, nil)
}

func (h *BreakHandler) GrandFinal(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	priorRoundID, err := h.priorRoundID(w, r)
	if err != nil {
		return
	}
	result, err := h.service.GenerateGrandFinal(r.Context(), tournamentID, priorRoundID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	_ = writeJSON(w, http.StatusCreated, jsonResponse{"draw": result}, nil)
}

func (h *BreakHandler) Bracket(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	bracket, err := h.service.GetBracket(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, jsonResponse{"bracket": bracket}, nil)
}

func (h *BreakHandler) Complete(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	tournament, err := h.service.CompleteTournament(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil)
}

func (h *BreakHandler) priorRoundID(w http.ResponseWriter, r *http.Request) (int, error) {
	priorRoundID, err := urlParamInt(r, "priorRoundID")
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, err
	}
	return priorRoundID, nil
}
