package handlers

import (
	"net/http"

	"github.com/tabcore/debate-tab/services"
)

type StandingsHandler struct {
	service services.StandingsService
	export  services.ExportService
}

func NewStandingsHandler(service services.StandingsService, export services.ExportService) *StandingsHandler {
	return &StandingsHandler{service: service, export: export}
}

func (h *StandingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	table, err := h.service.GetStandings(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, jsonResponse{"standings": table}, nil)
}

// Export выгружает текущий tab в CSV и возвращает публичную ссылку.
func (h *StandingsHandler) Export(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	result, err := h.export.ExportStandings(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	_ = writeJSON(w, http.StatusCreated, jsonResponse{"export": result}, nil)
}
