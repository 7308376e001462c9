package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/card-league/middleware"
	"github.com/Dosada05/card-league/services"
)

// PortalHandler serves the team-facing pages. Every route except Login reads
// the team and tournament from the token.
type PortalHandler struct {
	portalService services.PortalService
}

func NewPortalHandler(ps services.PortalService) *PortalHandler {
	return &PortalHandler{portalService: ps}
}

type portalLoginInput struct {
	TournamentID int    `json:"tournament_id"`
	TeamNumber   int    `json:"team_number"`
	AccessCode   string `json:"access_code"`
}

func (h *PortalHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input portalLoginInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.TournamentID <= 0 || input.TeamNumber <= 0 || input.AccessCode == "" {
		badRequestResponse(w, r, errors.New("tournament_id, team_number and access_code are required"))
		return
	}

	session, err := h.portalService.Login(r.Context(), input.TournamentID, input.TeamNumber, input.AccessCode)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, session, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PortalHandler) Standings(w http.ResponseWriter, r *http.Request) {
	teamID, tournamentID, err := middleware.GetTeamFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "team token required")
		return
	}

	view, err := h.portalService.Standings(r.Context(), tournamentID, teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, view, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PortalHandler) Games(w http.ResponseWriter, r *http.Request) {
	teamID, tournamentID, err := middleware.GetTeamFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "team token required")
		return
	}

	games, err := h.portalService.Games(r.Context(), tournamentID, teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"games": games}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PortalHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	teamID, tournamentID, err := middleware.GetTeamFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "team token required")
		return
	}
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.portalService.Confirm(r.Context(), tournamentID, teamID, gameID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
