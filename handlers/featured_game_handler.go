package handlers

import (
	"errors"
	"net/http"

	"github.com/esports-arena/tournament-hub/services"
)

type FeaturedGameHandler struct {
	featuredGameService services.FeaturedGameService
}

func NewFeaturedGameHandler(fs services.FeaturedGameService) *FeaturedGameHandler {
	return &FeaturedGameHandler{featuredGameService: fs}
}

// ListHandler обрабатывает GET /featured-games
func (h *FeaturedGameHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	games, err := h.featuredGameService.ListFeaturedGames(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"featured_games": games}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CreateHandler обрабатывает POST /admin/featured-games
func (h *FeaturedGameHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.FeaturedGameInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.featuredGameService.CreateFeaturedGame(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"featured_game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateHandler обрабатывает PUT /admin/featured-games/{gameID}
func (h *FeaturedGameHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.FeaturedGameInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.featuredGameService.UpdateFeaturedGame(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"featured_game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// MoveHandler обрабатывает POST /admin/featured-games/{gameID}/move
func (h *FeaturedGameHandler) MoveHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Direction services.MoveDirection `json:"direction"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.featuredGameService.MoveFeaturedGame(r.Context(), id, input.Direction); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadImageHandler обрабатывает POST /admin/featured-games/{gameID}/image
func (h *FeaturedGameHandler) UploadImageHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		badRequestResponse(w, r, errors.New("Content-Type header is required"))
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxUploadBytes)
	game, err := h.featuredGameService.UploadFeaturedGameImage(r.Context(), id, contentType, body)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"featured_game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler обрабатывает DELETE /admin/featured-games/{gameID}
func (h *FeaturedGameHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.featuredGameService.DeleteFeaturedGame(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
