package handlers

import (
	"net/http"

	"github.com/tabcore/debate-tab/services"
)

type RoomHandler struct {
	service services.RoomService
}

func NewRoomHandler(service services.RoomService) *RoomHandler {
	return &RoomHandler{service: service}
}

func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	roomID, err := urlParamInt(r, "roomID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	room, err := h.service.GetRoom(r.Context(), roomID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, jsonResponse{"room": room}, nil)
}

// Advance — идемпотентный poll: проверяет дедлайны комнаты и возвращает
// её текущее состояние.
func (h *RoomHandler) Advance(w http.ResponseWriter, r *http.Request) {
	roomID, err := urlParamInt(r, "roomID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	room, err := h.service.AdvanceClock(r.Context(), roomID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, jsonResponse{"room": room}, nil)
}

func (h *RoomHandler) MarkJudging(w http.ResponseWriter, r *http.Request) {
	roomID, err := urlParamInt(r, "roomID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	room, err := h.service.MarkJudging(r.Context(), roomID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, jsonResponse{"room": room}, nil)
}
