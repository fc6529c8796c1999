package expense

import "context"

type RepositoryStub struct {
	nextId   int
	expenses []Expense
	// FailNext makes the next Append fail with the given error.
	FailNext error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{}
}

func (s *RepositoryStub) Cleanup() {
	s.nextId = 0
	s.expenses = nil
	s.FailNext = nil
}

func (s *RepositoryStub) Append(ctx context.Context, userId int, expense Expense) (int, error) {
	if err := s.FailNext; err != nil {
		s.FailNext = nil
		return 0, err
	}
	s.nextId++
	expense.Id = s.nextId
	s.expenses = append(s.expenses, expense)
	return expense.Id, nil
}

func (s *RepositoryStub) ListForItem(ctx context.Context, userId int, itemId int) ([]Expense, error) {
	var result []Expense
	for _, e := range s.expenses {
		if e.ItemId == itemId {
			result = append(result, e)
		}
	}
	return result, nil
}
