package expense

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/pennyplan/pennyplan/internal/rest"
	"github.com/pennyplan/pennyplan/pkg/budget"
	"github.com/pennyplan/pennyplan/pkg/budget_item"
)

type RecordExpenseDTO struct {
	ItemId     int     `json:"itemId"`
	Amount     float64 `json:"amount"`
	SubItemIds []int   `json:"subItemIds,omitempty"`
}

type ExpenseDTO struct {
	Id         int       `json:"id"`
	ItemId     int       `json:"itemId"`
	SubItemId  *int      `json:"subItemId,omitempty"`
	Amount     float64   `json:"amount"`
	RecordedAt time.Time `json:"recordedAt"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto RecordExpenseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	item, err := h.service.Record(r.Context(), dto.ItemId, dto.Amount, dto.SubItemIds)
	if err != nil {
		switch {
		case errors.Is(err, ErrNonPositiveAmount), errors.Is(err, ErrUnknownSubItem):
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
		case errors.Is(err, budget.ErrNoCurrentBudget):
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(rest.ErrorResponse{
				Error:   "No current budget",
				Details: "initialize a budget period before recording expenses",
			})
		case errors.Is(err, budget_item.ErrItemNotFound):
			http.Error(w, "Item not found", http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(budget_item.ItemToDTO(item)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) ListForItem(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	itemId, err := strconv.Atoi(r.URL.Query().Get("itemId"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Invalid itemId",
			Details: "itemId must be an integer",
		})
		return
	}

	expenses, err := h.service.ListForItem(r.Context(), itemId)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]ExpenseDTO, 0, len(expenses))
	for _, e := range expenses {
		dtos = append(dtos, ExpenseDTO{
			Id:         e.Id,
			ItemId:     e.ItemId,
			SubItemId:  e.SubItemId,
			Amount:     e.Amount,
			RecordedAt: e.RecordedAt,
		})
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
