package stats

import (
	"context"

	"github.com/pennyplan/pennyplan/pkg/budget"
	"github.com/pennyplan/pennyplan/pkg/budget_item"
	log "github.com/sirupsen/logrus"
)

type StatsService interface {
	GetSummary(ctx context.Context) (StatsSummary, error)
}

type StatsServiceImpl struct {
	budgetService budget.BudgetService
}

func NewStatsServiceImpl(budgetService budget.BudgetService) *StatsServiceImpl {
	return &StatsServiceImpl{budgetService: budgetService}
}

func (s *StatsServiceImpl) GetSummary(ctx context.Context) (StatsSummary, error) {
	snapshot, err := s.budgetService.Current(ctx)
	if err != nil {
		return StatsSummary{}, err
	}
	if !snapshot.Exists {
		return StatsSummary{}, budget.ErrNoCurrentBudget
	}
	log.Tracef("Calculating summary for budget %d with %d items", snapshot.Budget.Id, len(snapshot.Items))

	itemStats := make([]ItemStats, 0, len(snapshot.Items))
	overBudgetCount := 0
	for _, item := range snapshot.Items {
		overBudget := item.Spent > item.Amount
		if overBudget {
			overBudgetCount++
		}
		itemStats = append(itemStats, ItemStats{
			Item:        item,
			Remaining:   item.Remaining(),
			PercentUsed: budget_item.PercentUsed(item.Amount, item.Spent),
			OverBudget:  overBudget,
		})
	}

	return StatsSummary{
		Period:          snapshot.Budget.Period,
		StartDate:       snapshot.DateRange.Start,
		EndDate:         snapshot.DateRange.End,
		Items:           itemStats,
		TotalBudget:     snapshot.Budget.Amount,
		TotalAllocated:  budget_item.TotalAllocated(snapshot.Items),
		TotalSpent:      budget_item.TotalSpent(snapshot.Items),
		TotalRemaining:  budget_item.Remaining(snapshot.Budget.Amount, snapshot.Items),
		OverBudgetCount: overBudgetCount,
	}, nil
}
