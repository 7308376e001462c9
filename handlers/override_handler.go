package handlers

import (
	"net/http"

	"github.com/Dosada05/card-league/models"
	"github.com/Dosada05/card-league/services"
)

type OverrideHandler struct {
	overrideService services.OverrideService
}

func NewOverrideHandler(ovs services.OverrideService) *OverrideHandler {
	return &OverrideHandler{overrideService: ovs}
}

func (h *OverrideHandler) List(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	overrides, err := h.overrideService.List(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"overrides": overrides}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Set принимает плоскую карту "{teamId}_{round}_{field}" -> значение.
func (h *OverrideHandler) Set(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var values models.Overrides
	if err := readJSON(w, r, &values); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	overrides, err := h.overrideService.Set(r.Context(), tournamentID, values)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"overrides": overrides}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Delete removes the overrides named by repeated ?key= parameters, or all
// of them when none is given.
func (h *OverrideHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.overrideService.Delete(r.Context(), tournamentID, r.URL.Query()["key"]); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
