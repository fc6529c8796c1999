package stats

import (
	"time"

	"github.com/pennyplan/pennyplan/pkg/budget"
	"github.com/pennyplan/pennyplan/pkg/budget_item"
)

type ItemStats struct {
	Item        budget_item.BudgetItem
	Remaining   float64
	PercentUsed float64
	OverBudget  bool
}

type StatsSummary struct {
	Period          budget.Period
	StartDate       time.Time
	EndDate         time.Time
	Items           []ItemStats
	TotalBudget     float64
	TotalAllocated  float64
	TotalSpent      float64
	TotalRemaining  float64
	OverBudgetCount int
}

type StatsRenderer interface {
	RenderStats(stats StatsSummary) (string, error)
}
