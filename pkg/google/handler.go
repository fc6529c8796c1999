package google

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pennyplan/pennyplan/pkg/budget"
)

type exportResultDto struct {
	SpreadsheetUrl string `json:"spreadsheetUrl"`
}

type Handler struct {
	service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{s}
}

func (h *Handler) ExportSummary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	spreadsheetUrl, err := h.service.ExportSummary(r.Context())
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if errors.Is(err, budget.ErrNoCurrentBudget) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(exportResultDto{SpreadsheetUrl: spreadsheetUrl}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}
