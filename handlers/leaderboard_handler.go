package handlers

import (
	"net/http"

	"github.com/esports-arena/tournament-hub/livequery"
	"github.com/esports-arena/tournament-hub/models"
	"github.com/esports-arena/tournament-hub/services"
)

type LeaderboardHandler struct {
	leaderboardService services.LeaderboardService
	live               *livequery.Binding[models.LeaderboardEntry]
}

// NewLeaderboardHandler принимает необязательную живую привязку: если она
// задана, публичное чтение отдаёт её снимок вместо похода в базу, а
// привязка сама перечитывает таблицу на каждое событие шины.
func NewLeaderboardHandler(ls services.LeaderboardService, live *livequery.Binding[models.LeaderboardEntry]) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: ls, live: live}
}

// ListHandler обрабатывает GET /leaderboard
func (h *LeaderboardHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if h.live != nil {
		snap := h.live.Snapshot()
		// Ошибка перечитывания не роняет чтение: отдаём последний
		// хороший снимок.
		if !snap.Loading || snap.Data != nil {
			if err := writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": snap.Data}, nil); err != nil {
				serverErrorResponse(w, r, err)
			}
			return
		}
	}

	entries, err := h.leaderboardService.ListEntries(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpsertHandler обрабатывает PUT /admin/leaderboard
func (h *LeaderboardHandler) UpsertHandler(w http.ResponseWriter, r *http.Request) {
	var input services.UpsertLeaderboardInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entry, err := h.leaderboardService.UpsertEntry(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"entry": entry}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler обрабатывает DELETE /admin/leaderboard/{entryID}
func (h *LeaderboardHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "entryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.leaderboardService.DeleteEntry(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
