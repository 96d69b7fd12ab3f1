package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tabcore/debate-tab/models"
	"github.com/tabcore/debate-tab/services"
)

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"tournament not found", services.ErrTournamentNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("get round: %w", services.ErrRoundNotFound), http.StatusNotFound},
		{"draw already exists", services.ErrDrawAlreadyExists, http.StatusConflict},
		{"draw locked", services.ErrDrawLocked, http.StatusConflict},
		{"ballot resubmission", services.ErrBallotAlreadySubmitted, http.StatusConflict},
		{"bracket stage exists", services.ErrBracketStageExists, http.StatusConflict},
		{"not enough teams", services.ErrInsufficientTeams, http.StatusBadRequest},
		{"prelims incomplete", services.ErrPrelimsIncomplete, http.StatusBadRequest},
		{"champion undecided", services.ErrChampionUndecided, http.StatusBadRequest},
		{"room transition", models.ErrRoomInvalidTransition, http.StatusBadRequest},
		{"duplicate ranks", services.ErrDuplicateRanks, http.StatusUnprocessableEntity},
		{"score out of range", services.ErrScoreOutOfRange, http.StatusUnprocessableEntity},
		{"ballot incomplete", services.ErrBallotIncomplete, http.StatusUnprocessableEntity},
		{"judge not assigned", services.ErrJudgeNotAssigned, http.StatusForbidden},
		{"export unavailable", services.ErrExportUnavailable, http.StatusServiceUnavailable},
		{"unknown error", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)

			mapServiceErrorToHTTP(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}
