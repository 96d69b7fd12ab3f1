package handlers

import (
	"net/http"

	"github.com/tabcore/debate-tab/services"
)

type DrawHandler struct {
	service services.DrawService
}

func NewDrawHandler(service services.DrawService) *DrawHandler {
	return &DrawHandler{service: service}
}

// Generate godoc
// @Summary Сгенерировать жеребьёвку раунда
// @Tags draws
// @Router /tournaments/{tournamentID}/rounds/{roundNumber}/draw [post]
func (h *DrawHandler) Generate(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	roundNumber, err := urlParamInt(r, "roundNumber")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.service.GenerateDraw(r.Context(), tournamentID, roundNumber)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	_ = writeJSON(w, http.StatusCreated, jsonResponse{"draw": result}, nil)
}

func (h *DrawHandler) Get(w http.ResponseWriter, r *http.Request) {
	roundID, err := urlParamInt(r, "roundID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	round, err := h.service.GetDraw(r.Context(), roundID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, jsonResponse{"round": round}, nil)
}

func (h *DrawHandler) Delete(w http.ResponseWriter, r *http.Request) {
	roundID, err := urlParamInt(r, "roundID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.service.DeleteDraw(r.Context(), roundID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
