package income

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
)

type IncomeEntryDTO struct {
	Id         int       `json:"id"`
	Name       string    `json:"name"`
	Amount     float64   `json:"amount"`
	ReceivedAt time.Time `json:"receivedAt"`
}

type incomeTotalDTO struct {
	Total float64 `json:"total"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto IncomeEntryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), IncomeEntry{
		Name:       dto.Name,
		Amount:     dto.Amount,
		ReceivedAt: dto.ReceivedAt,
	})
	if err != nil {
		if errors.Is(err, ErrEmptyName) || errors.Is(err, ErrNonPositiveAmount) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(entryToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	entries, err := h.service.GetAll(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]IncomeEntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, entryToDTO(e))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	entryId, err := strconv.Atoi(mux.Vars(r)["entryId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	deleted, err := h.service.Delete(r.Context(), entryId)
	if err != nil && !errors.Is(err, ErrEntryNotFound) {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "Income entry not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Total(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	total, err := h.service.Total(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(incomeTotalDTO{Total: total}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func entryToDTO(e IncomeEntry) IncomeEntryDTO {
	return IncomeEntryDTO{
		Id:         e.Id,
		Name:       e.Name,
		Amount:     e.Amount,
		ReceivedAt: e.ReceivedAt,
	}
}
