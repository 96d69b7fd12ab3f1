package handlers

import (
	"net/http"

	"github.com/tabcore/debate-tab/middleware"
	"github.com/tabcore/debate-tab/services"
)

type BallotHandler struct {
	service services.BallotService
}

func NewBallotHandler(service services.BallotService) *BallotHandler {
	return &BallotHandler{service: service}
}

// Submit godoc
// @Summary Подать бюллетень судьи
// @Tags ballots
// @Router /tournaments/{tournamentID}/rooms/{roomID}/ballots [post]
func (h *BallotHandler) Submit(w http.ResponseWriter, r *http.Request) {
	roomID, err := urlParamInt(r, "roomID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	// Судья подаёт от собственного имени: ID берётся из токена.
	judgeID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input services.BallotInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	ballot, err := h.service.SubmitBallot(r.Context(), roomID, judgeID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	_ = writeJSON(w, http.StatusCreated, jsonResponse{"ballot": ballot}, nil)
}

func (h *BallotHandler) Status(w http.ResponseWriter, r *http.Request) {
	roomID, err := urlParamInt(r, "roomID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	status, err := h.service.GetBallotStatus(r.Context(), roomID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, jsonResponse{"ballot_status": status}, nil)
}
