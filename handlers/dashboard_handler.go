package handlers

import (
	"net/http"

	"github.com/esports-arena/tournament-hub/services"
)

type DashboardHandler struct {
	dashboardService services.DashboardService
}

func NewDashboardHandler(ds services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: ds}
}

// GetHandler обрабатывает GET /admin/dashboard
func (h *DashboardHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	view, err := h.dashboardService.GetDashboard(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"dashboard": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
