package handlers

import (
	"fmt"
	"net/http"

	"github.com/Dosada05/card-league/export"
	"github.com/Dosada05/card-league/services"
)

type StandingsHandler struct {
	standingsService services.StandingsService
	exportService    services.ExportService
}

func NewStandingsHandler(ss services.StandingsService, es services.ExportService) *StandingsHandler {
	return &StandingsHandler{
		standingsService: ss,
		exportService:    es,
	}
}

// Get godoc
// @Summary Current standings of a tournament
// @Tags standings
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} standings.Result
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/standings [get]
func (h *StandingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	res, err := h.standingsService.Compute(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, res, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StandingsHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	data, err := h.exportService.XLSX(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeFile(w, r, export.ContentTypeXLSX, fmt.Sprintf("standings-%d.xlsx", tournamentID), data)
}

func (h *StandingsHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	data, err := h.exportService.CSV(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeFile(w, r, export.ContentTypeCSV, fmt.Sprintf("standings-%d.csv", tournamentID), data)
}

func (h *StandingsHandler) WinsChart(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	data, err := h.exportService.WinsChart(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeFile(w, r, "image/png", "", data)
}

// Upload сохраняет xlsx в объектное хранилище и возвращает ссылку.
func (h *StandingsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	artifact, err := h.exportService.Upload(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"export": artifact}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Playoffs обрабатывает GET /tournaments/{tournamentID}/playoffs?size=n
func (h *StandingsHandler) Playoffs(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	size, err := optionalIntQuery(r, "size")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	n := 0
	if size != nil {
		n = *size
	}

	bracket, err := h.standingsService.Playoffs(r.Context(), tournamentID, n)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"playoffs": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
