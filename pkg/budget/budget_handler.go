package budget

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/pennyplan/pennyplan/internal/rest"
	"github.com/pennyplan/pennyplan/pkg/budget_item"
	log "github.com/sirupsen/logrus"
)

type BudgetDTO struct {
	Id        int                  `json:"id"`
	Uid       string               `json:"uid"`
	Period    string               `json:"period"`
	Amount    float64              `json:"amount"`
	CreatedAt time.Time            `json:"createdAt"`
	StartDate time.Time            `json:"startDate"`
	EndDate   time.Time            `json:"endDate"`
	Expired   bool                 `json:"expired"`
	Items     []budget_item.ItemDTO `json:"items"`
}

type initializeDTO struct {
	Period string  `json:"period"`
	Amount float64 `json:"amount"`
}

type rolloverItemDTO struct {
	Id          int     `json:"id"`
	Name        string  `json:"name"`
	Mode        string  `json:"mode"`
	CarryAmount float64 `json:"carryAmount"`
}

type rolloverDTO struct {
	Items    []rolloverItemDTO `json:"items"`
	Leftover float64           `json:"leftover"`
}

type loadResultDTO struct {
	Loaded bool `json:"loaded"`
}

type BudgetHandler struct {
	service BudgetService
}

func NewBudgetHandler(service BudgetService) *BudgetHandler {
	return &BudgetHandler{service}
}

func (h *BudgetHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	snapshot, err := h.service.Current(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !snapshot.Exists {
		http.Error(w, "No budget found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(snapshotToDTO(snapshot)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *BudgetHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	log.Debug("Initializing new budget period")
	w.Header().Set("Content-Type", "application/json")

	var dto initializeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	snapshot, err := h.service.Initialize(r.Context(), Period(dto.Period), dto.Amount)
	if err != nil {
		if errors.Is(err, ErrInvalidPeriod) || errors.Is(err, ErrNonPositiveAmount) {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(snapshotToDTO(snapshot)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *BudgetHandler) Reload(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	loaded, err := h.service.Load(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(loadResultDTO{Loaded: loaded}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *BudgetHandler) PrepareRollover(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	rollover, err := h.service.PrepareRollover(r.Context())
	if err != nil {
		if errors.Is(err, ErrNoCurrentBudget) {
			http.Error(w, "No budget found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(rolloverToDTO(rollover)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func snapshotToDTO(s Snapshot) BudgetDTO {
	items := make([]budget_item.ItemDTO, 0, len(s.Items))
	for _, item := range s.Items {
		items = append(items, budget_item.ItemToDTO(item))
	}
	return BudgetDTO{
		Id:        s.Budget.Id,
		Uid:       s.Budget.Uid,
		Period:    string(s.Budget.Period),
		Amount:    s.Budget.Amount,
		CreatedAt: s.Budget.CreatedAt,
		StartDate: s.DateRange.Start,
		EndDate:   s.DateRange.End,
		Expired:   s.Expired,
		Items:     items,
	}
}

func rolloverToDTO(rollover Rollover) rolloverDTO {
	items := make([]rolloverItemDTO, 0, len(rollover.ContinuousItems)+len(rollover.RecurringItems))
	for _, item := range rollover.ContinuousItems {
		carry := item.Amount - item.Spent
		if carry < 0 {
			carry = 0
		}
		items = append(items, rolloverItemDTO{Id: item.Id, Name: item.Name, Mode: "continuous", CarryAmount: carry})
	}
	for _, item := range rollover.RecurringItems {
		items = append(items, rolloverItemDTO{Id: item.Id, Name: item.Name, Mode: "recurring", CarryAmount: item.Amount})
	}
	return rolloverDTO{Items: items, Leftover: rollover.Leftover}
}
