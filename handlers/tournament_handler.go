package handlers

import (
	"net/http"

	"github.com/tabcore/debate-tab/middleware"
	"github.com/tabcore/debate-tab/models"
	"github.com/tabcore/debate-tab/services"
)

type TournamentHandler struct {
	service services.TournamentService
}

func NewTournamentHandler(service services.TournamentService) *TournamentHandler {
	return &TournamentHandler{service: service}
}

// Create godoc
// @Summary Создать турнир с предварительными раундами
// @Tags tournaments
// @Router /tournaments [post]
func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	organizerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	input.OrganizerID = organizerID

	tournament, err := h.service.CreateTournament(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	_ = writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil)
}

func (h *TournamentHandler) Get(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	tournament, err := h.service.GetTournament(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil)
}

func (h *TournamentHandler) AddTeam(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input struct {
		Name        string   `json:"name"`
		Institution string   `json:"institution"`
		Members     []string `json:"members"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	team := &models.Team{
		TournamentID: tournamentID,
		Name:         input.Name,
		Institution:  input.Institution,
		Members:      input.Members,
		Status:       models.TeamStatusPending,
	}
	if err := h.service.AddTeam(r.Context(), team); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	_ = writeJSON(w, http.StatusCreated, jsonResponse{"team": team}, nil)
}

func (h *TournamentHandler) AddJudge(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input struct {
		Name                 string           `json:"name"`
		Institution          string           `json:"institution"`
		Tier                 models.JudgeTier `json:"tier"`
		ConflictInstitutions []string         `json:"conflict_institutions"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	judge := &models.Judge{
		TournamentID:         tournamentID,
		Name:                 input.Name,
		Institution:          input.Institution,
		Tier:                 input.Tier,
		ConflictInstitutions: input.ConflictInstitutions,
		Available:            true,
	}
	if err := h.service.AddJudge(r.Context(), judge); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	_ = writeJSON(w, http.StatusCreated, jsonResponse{"judge": judge}, nil)
}

func (h *TournamentHandler) ConfirmTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := urlParamInt(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.service.ConfirmTeam(r.Context(), teamID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, jsonResponse{"status": models.TeamStatusConfirmed}, nil)
}

func (h *TournamentHandler) WithdrawTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := urlParamInt(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.service.WithdrawTeam(r.Context(), teamID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, jsonResponse{"status": models.TeamStatusWithdrawn}, nil)
}
