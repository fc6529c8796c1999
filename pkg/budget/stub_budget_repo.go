package budget

import "context"

type StubBudgetRepo struct {
	nextId  int
	budgets []Budget
	// FailNext makes the next repository call fail with the given error.
	FailNext error
}

func NewStubBudgetRepo() *StubBudgetRepo {
	return &StubBudgetRepo{}
}

func (s *StubBudgetRepo) Cleanup() {
	s.nextId = 0
	s.budgets = nil
	s.FailNext = nil
}

func (s *StubBudgetRepo) Store(ctx context.Context, userId int, budget Budget) (int, error) {
	if err := s.takeFailure(); err != nil {
		return 0, err
	}
	s.nextId++
	budget.Id = s.nextId
	s.budgets = append(s.budgets, budget)
	return budget.Id, nil
}

func (s *StubBudgetRepo) FindLatest(ctx context.Context, userId int) (Budget, error) {
	if err := s.takeFailure(); err != nil {
		return Budget{}, err
	}
	if len(s.budgets) == 0 {
		return Budget{}, ErrBudgetNotFound
	}
	latest := s.budgets[0]
	for _, b := range s.budgets[1:] {
		if b.CreatedAt.After(latest.CreatedAt) || (b.CreatedAt.Equal(latest.CreatedAt) && b.Id > latest.Id) {
			latest = b
		}
	}
	return latest, nil
}

func (s *StubBudgetRepo) takeFailure() error {
	err := s.FailNext
	s.FailNext = nil
	return err
}
