package stats

import (
	"context"

	"github.com/pennyplan/pennyplan/pkg/budget"
)

// stubBudgetService serves a canned snapshot for stats tests.
type stubBudgetService struct {
	snapshot budget.Snapshot
	err      error
}

func (s *stubBudgetService) Load(ctx context.Context) (bool, error) {
	return s.err == nil, s.err
}

func (s *stubBudgetService) Current(ctx context.Context) (budget.Snapshot, error) {
	return s.snapshot, s.err
}

func (s *stubBudgetService) Initialize(ctx context.Context, period budget.Period, amount float64) (budget.Snapshot, error) {
	return s.snapshot, s.err
}

func (s *stubBudgetService) PrepareRollover(ctx context.Context) (budget.Rollover, error) {
	return budget.Rollover{}, s.err
}
