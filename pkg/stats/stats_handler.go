package stats

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/pennyplan/pennyplan/internal/rest"
	"github.com/pennyplan/pennyplan/pkg/budget"
	"github.com/pennyplan/pennyplan/pkg/budget_item"
)

type ItemStatsDTO struct {
	Item        budget_item.ItemDTO `json:"item"`
	Remaining   float64             `json:"remaining"`
	PercentUsed float64             `json:"percentUsed"`
	OverBudget  bool                `json:"overBudget"`
}

type StatsSummaryDTO struct {
	Period          string         `json:"period"`
	StartDate       time.Time      `json:"startDate"`
	EndDate         time.Time      `json:"endDate"`
	Items           []ItemStatsDTO `json:"items"`
	TotalBudget     float64        `json:"totalBudget"`
	TotalAllocated  float64        `json:"totalAllocated"`
	TotalSpent      float64        `json:"totalSpent"`
	TotalRemaining  float64        `json:"totalRemaining"`
	OverBudgetCount int            `json:"overBudgetCount"`
}

type StatsHandler struct {
	statsService     StatsService
	csvStatsRenderer StatsRenderer
}

func NewStatsHandler(statsService StatsService, csvStatsRenderer StatsRenderer) *StatsHandler {
	return &StatsHandler{statsService, csvStatsRenderer}
}

func (handler *StatsHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := handler.statsService.GetSummary(r.Context())
	if err != nil {
		if errors.Is(err, budget.ErrNoCurrentBudget) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(rest.ErrorResponse{
				Error:   "No current budget",
				Details: "Initialize a budget period before requesting a summary",
			})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if r.Header.Get("Accept") == "text/csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		csv, err := handler.csvStatsRenderer.RenderStats(summary)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if _, err := w.Write([]byte(csv)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(convertToJsonResponse(&summary)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func convertToJsonResponse(summary *StatsSummary) *StatsSummaryDTO {
	itemStats := make([]ItemStatsDTO, 0, len(summary.Items))
	for _, itemStat := range summary.Items {
		itemStats = append(itemStats, ItemStatsDTO{
			Item:        budget_item.ItemToDTO(itemStat.Item),
			Remaining:   itemStat.Remaining,
			PercentUsed: itemStat.PercentUsed,
			OverBudget:  itemStat.OverBudget,
		})
	}

	return &StatsSummaryDTO{
		Period:          string(summary.Period),
		StartDate:       summary.StartDate,
		EndDate:         summary.EndDate,
		Items:           itemStats,
		TotalBudget:     summary.TotalBudget,
		TotalAllocated:  summary.TotalAllocated,
		TotalSpent:      summary.TotalSpent,
		TotalRemaining:  summary.TotalRemaining,
		OverBudgetCount: summary.OverBudgetCount,
	}
}
